package styles

import (
	"image/color"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/charmbracelet/datagrid/internal/grid/editor"
	"github.com/charmbracelet/x/exp/charmtone"
)

const (
	CheckIcon   string = "✓"
	ErrorIcon   string = "×"
	WarningIcon string = "⚠"
	InfoIcon    string = "ⓘ"
	EditIcon    string = "✎"

	SortAscIcon  string = "▲"
	SortDescIcon string = "▼"
)

// Class names the application attaches to cells.
const (
	ClassHighlight = "highlight"
	ClassChanged   = "changed"
)

type Styles struct {
	WindowTooSmall lipgloss.Style

	// Reusable text styles
	Base   lipgloss.Style
	Muted  lipgloss.Style
	Subtle lipgloss.Style

	// Inputs
	TextInput textinput.Styles
	TextArea  textarea.Styles

	// Help
	Help help.Styles

	// Buttons
	ButtonFocus lipgloss.Style
	ButtonBlur  lipgloss.Style

	// Borders
	BorderFocus lipgloss.Style

	// Background
	Background color.Color

	Status struct {
		Bar     lipgloss.Style
		Key     lipgloss.Style
		Value   lipgloss.Style
		Editing lipgloss.Style
		Info    lipgloss.Style
		Success lipgloss.Style
		Warn    lipgloss.Style
		Error   lipgloss.Style
	}

	Grid grid.Styles
}

func DefaultStyles() Styles {
	var (
		primary   = charmtone.Charple
		secondary = charmtone.Dolly
		tertiary  = charmtone.Bok

		bgBase        = charmtone.Pepper
		bgBaseLighter = charmtone.BBQ
		bgSubtle      = charmtone.Charcoal
		bgOverlay     = charmtone.Iron

		fgBase   = charmtone.Ash
		fgMuted  = charmtone.Squid
		fgSubtle = charmtone.Oyster

		border      = charmtone.Charcoal
		borderFocus = charmtone.Charple

		warning = charmtone.Zest
		info    = charmtone.Malibu

		white = charmtone.Butter

		green = charmtone.Julep

		red     = charmtone.Coral
		redDark = charmtone.Sriracha
	)

	base := lipgloss.NewStyle().Foreground(fgBase)

	s := Styles{}

	s.Background = bgBase

	s.TextInput = textinput.Styles{
		Focused: textinput.StyleState{
			Text:        base,
			Placeholder: base.Foreground(fgSubtle),
			Prompt:      base.Foreground(tertiary),
			Suggestion:  base.Foreground(fgSubtle),
		},
		Blurred: textinput.StyleState{
			Text:        base.Foreground(fgMuted),
			Placeholder: base.Foreground(fgSubtle),
			Prompt:      base.Foreground(fgMuted),
			Suggestion:  base.Foreground(fgSubtle),
		},
		Cursor: textinput.CursorStyle{
			Color: secondary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	}

	s.TextArea = textarea.Styles{
		Focused: textarea.StyleState{
			Base:             base.Background(bgOverlay),
			Text:             base,
			LineNumber:       base.Foreground(fgSubtle),
			CursorLine:       base,
			CursorLineNumber: base.Foreground(fgSubtle),
			Placeholder:      base.Foreground(fgSubtle),
			Prompt:           base.Foreground(tertiary),
		},
		Blurred: textarea.StyleState{
			Base:             base,
			Text:             base.Foreground(fgMuted),
			LineNumber:       base.Foreground(fgMuted),
			CursorLine:       base,
			CursorLineNumber: base.Foreground(fgMuted),
			Placeholder:      base.Foreground(fgSubtle),
			Prompt:           base.Foreground(fgMuted),
		},
		Cursor: textarea.CursorStyle{
			Color: secondary,
			Shape: tea.CursorBar,
			Blink: true,
		},
	}

	s.Help = help.Styles{
		ShortKey:       base.Foreground(fgMuted),
		ShortDesc:      base.Foreground(fgSubtle),
		ShortSeparator: base.Foreground(border),
		Ellipsis:       base.Foreground(border),
		FullKey:        base.Foreground(fgMuted),
		FullDesc:       base.Foreground(fgSubtle),
		FullSeparator:  base.Foreground(border),
	}

	s.Base = lipgloss.NewStyle().Foreground(fgBase)
	s.Muted = lipgloss.NewStyle().Foreground(fgMuted)
	s.Subtle = lipgloss.NewStyle().Foreground(fgSubtle)

	s.WindowTooSmall = s.Muted

	s.ButtonFocus = lipgloss.NewStyle().Foreground(white).Background(secondary)
	s.ButtonBlur = s.Base.Background(bgSubtle)

	s.BorderFocus = lipgloss.NewStyle().BorderForeground(borderFocus).Border(lipgloss.RoundedBorder()).Padding(1, 2)

	s.Status.Bar = lipgloss.NewStyle().Background(bgBaseLighter).Foreground(fgBase)
	s.Status.Key = s.Status.Bar.Foreground(fgMuted)
	s.Status.Value = s.Status.Bar.Foreground(fgBase)
	s.Status.Editing = s.Status.Bar.Foreground(primary).Bold(true)
	s.Status.Info = s.Status.Bar.Foreground(info)
	s.Status.Success = s.Status.Bar.Foreground(green)
	s.Status.Warn = s.Status.Bar.Foreground(warning)
	s.Status.Error = s.Status.Bar.Foreground(red)

	s.Grid = grid.Styles{
		Cell:        base,
		CellOdd:     lipgloss.NewStyle().Background(bgSubtle),
		Active:      lipgloss.NewStyle().Foreground(white).Background(primary),
		ActiveBlur:  lipgloss.NewStyle().Foreground(fgBase).Background(bgOverlay),
		Editing:     lipgloss.NewStyle().Foreground(fgBase).Background(bgOverlay).Bold(true),
		Invalid:     lipgloss.NewStyle().Foreground(white).Background(redDark),
		Selected:    lipgloss.NewStyle().Background(bgBaseLighter).Foreground(secondary),
		AddNewRow:   s.Subtle.Italic(true),
		Header:      lipgloss.NewStyle().Foreground(primary).Bold(true),
		HeaderGroup: lipgloss.NewStyle().Foreground(fgMuted).Bold(true),
		HeaderSort:  lipgloss.NewStyle().Foreground(secondary).Bold(true),
		HeaderRow:   s.Muted,
		FooterRow:   s.Muted.Italic(true),
		Scrollbar:   lipgloss.NewStyle().Foreground(border),
		ScrollThumb: lipgloss.NewStyle().Foreground(fgMuted),
		Classes: map[string]lipgloss.Style{
			ClassHighlight: lipgloss.NewStyle().Foreground(warning),
			ClassChanged:   lipgloss.NewStyle().Foreground(green),
		},
		SortAsc:  SortAscIcon,
		SortDesc: SortDescIcon,
	}

	return s
}

// Apply styles the components that are not built by the UI itself.
func (s *Styles) Apply() {
	editor.SetStyles(editor.Styles{
		TextInput: s.TextInput,
		TextArea:  s.TextArea,
	})
}
