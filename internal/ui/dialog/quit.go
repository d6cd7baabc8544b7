package dialog

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/common"
)

// QuitID is the identifier of the quit dialog.
const QuitID = "quit"

// quitKeys are the bindings of the quit dialog. Pressing q again confirms.
type quitKeys struct {
	Switch, Confirm, Quit, Stay key.Binding
}

func defaultQuitKeys() quitKeys {
	return quitKeys{
		Switch: key.NewBinding(
			key.WithKeys("left", "right", "tab"),
			key.WithHelp("←/→", "switch"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", "space"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "y", "Y", "ctrl+c"),
			key.WithHelp("q/y", "quit"),
		),
		Stay: key.NewBinding(
			key.WithKeys("s", "n", "N", "esc"),
			key.WithHelp("s/esc", "stay"),
		),
	}
}

// Quit asks for confirmation before quitting. It warns about edits that
// have not been saved.
type Quit struct {
	com        *common.Common
	keys       quitKeys
	unsaved    int
	selectedNo bool // true if "No" button is selected
}

var _ Dialog = (*Quit)(nil)

// NewQuit creates a new quit confirmation dialog. unsaved is the number of
// edits not written back to the data file.
func NewQuit(com *common.Common, unsaved int) *Quit {
	return &Quit{
		com:     com,
		keys:    defaultQuitKeys(),
		unsaved: unsaved,
		// Default to the safe answer when edits would be lost.
		selectedNo: unsaved > 0,
	}
}

// ID implements [Dialog].
func (*Quit) ID() string {
	return QuitID
}

// Update implements [Dialog].
func (q *Quit) Update(msg tea.Msg) tea.Msg {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, q.keys.Switch):
		q.selectedNo = !q.selectedNo
	case key.Matches(keyMsg, q.keys.Confirm):
		if !q.selectedNo {
			return ActionQuit{}
		}
		return ActionClose{}
	case key.Matches(keyMsg, q.keys.Quit):
		return ActionQuit{}
	case key.Matches(keyMsg, q.keys.Stay):
		return ActionClose{}
	}
	return nil
}

// SelectedNo reports whether the "Stay" button has focus.
func (q *Quit) SelectedNo() bool { return q.selectedNo }

func (q *Quit) question() string {
	switch q.unsaved {
	case 0:
		return "Are you sure you want to quit?"
	case 1:
		return "1 edit is not saved. Quit anyway?"
	default:
		return fmt.Sprintf("%d edits are not saved. Quit anyway?", q.unsaved)
	}
}

// View implements [Dialog].
func (q *Quit) View() string {
	t := q.com.Styles
	question := q.question()

	yesStyle, noStyle := t.ButtonFocus, t.ButtonBlur
	if q.selectedNo {
		yesStyle, noStyle = noStyle, yesStyle
	}

	const horizontalPadding = 3
	yesButton := yesStyle.PaddingLeft(horizontalPadding).Underline(true).Render("Q") +
		yesStyle.PaddingRight(horizontalPadding).Render("uit")
	noButton := noStyle.PaddingLeft(horizontalPadding).Underline(true).Render("S") +
		noStyle.PaddingRight(horizontalPadding).Render("tay")

	buttons := lipgloss.NewStyle().Width(lipgloss.Width(question)).Align(lipgloss.Right).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, yesButton, "  ", noButton),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		t.Base.Render(question),
		"",
		buttons,
	)

	return t.BorderFocus.Render(content)
}

// ShortHelp implements [help.KeyMap].
func (q *Quit) ShortHelp() []key.Binding {
	return []key.Binding{q.keys.Switch, q.keys.Confirm}
}

// FullHelp implements [help.KeyMap].
func (q *Quit) FullHelp() [][]key.Binding {
	return [][]key.Binding{{q.keys.Switch, q.keys.Confirm, q.keys.Quit, q.keys.Stay}}
}
