package grid

import "charm.land/lipgloss/v2"

// Styles holds the styles of the grid chrome and of the cell states.
type Styles struct {
	Cell        lipgloss.Style
	CellOdd     lipgloss.Style
	Active      lipgloss.Style
	ActiveBlur  lipgloss.Style
	Editing     lipgloss.Style
	Invalid     lipgloss.Style
	Selected    lipgloss.Style
	AddNewRow   lipgloss.Style
	Header      lipgloss.Style
	HeaderGroup lipgloss.Style
	HeaderSort  lipgloss.Style
	HeaderRow   lipgloss.Style
	FooterRow   lipgloss.Style
	Scrollbar   lipgloss.Style
	ScrollThumb lipgloss.Style

	// Classes styles the CSS classes attached by metadata, columns and
	// [Grid.SetCellCssStyles].
	Classes map[string]lipgloss.Style

	SortAsc  string
	SortDesc string
}

// DefaultStyles returns a plain style set using the terminal palette.
func DefaultStyles() Styles {
	return Styles{
		Cell:        lipgloss.NewStyle(),
		CellOdd:     lipgloss.NewStyle(),
		Active:      lipgloss.NewStyle().Reverse(true),
		ActiveBlur:  lipgloss.NewStyle().Underline(true),
		Editing:     lipgloss.NewStyle().Bold(true),
		Invalid:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Selected:    lipgloss.NewStyle().Background(lipgloss.Color("8")),
		AddNewRow:   lipgloss.NewStyle().Faint(true),
		Header:      lipgloss.NewStyle().Bold(true),
		HeaderGroup: lipgloss.NewStyle().Bold(true).Faint(true),
		HeaderSort:  lipgloss.NewStyle().Bold(true).Underline(true),
		HeaderRow:   lipgloss.NewStyle().Faint(true),
		FooterRow:   lipgloss.NewStyle().Faint(true),
		Scrollbar:   lipgloss.NewStyle().Faint(true),
		ScrollThumb: lipgloss.NewStyle(),
		Classes:     map[string]lipgloss.Style{},
		SortAsc:     "▲",
		SortDesc:    "▼",
	}
}

// Cell state classes. They are matched against [Styles] fields before the
// Classes map is consulted.
const (
	ClassActive     = "active"
	ClassActiveBlur = "active-blur"
	ClassEditing    = "editing"
	ClassInvalid    = "invalid"
	ClassSelected   = "selected"
	ClassOdd        = "odd"
	ClassNewRow     = "new-row"
)

// cellStyle composes the style of a cell from its classes. Later classes
// take precedence.
func (s *Styles) cellStyle(classes []string) lipgloss.Style {
	st := lipgloss.NewStyle()
	for i := len(classes) - 1; i >= 0; i-- {
		st = st.Inherit(s.classStyle(classes[i]))
	}
	return st.Inherit(s.Cell)
}

func (s *Styles) classStyle(class string) lipgloss.Style {
	switch class {
	case ClassActive:
		return s.Active
	case ClassActiveBlur:
		return s.ActiveBlur
	case ClassEditing:
		return s.Editing
	case ClassInvalid:
		return s.Invalid
	case ClassSelected:
		return s.Selected
	case ClassOdd:
		return s.CellOdd
	case ClassNewRow:
		return s.AddNewRow
	}
	return s.Classes[class]
}
