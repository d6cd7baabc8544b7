package editor

import (
	"fmt"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/grid"
)

const (
	longTextWidth  = 40
	longTextHeight = 6
)

// LongText edits multi-line text in a popup larger than the cell. Shift+enter
// and ctrl+j insert a newline.
type LongText struct {
	base
	area    textarea.Model
	initial string
}

var _ grid.Editor = (*LongText)(nil)

// NewLongText is the factory of the long text editor.
func NewLongText(args grid.EditorArgs) grid.Editor {
	ta := textarea.New()
	ta.SetStyles(styles.Get().TextArea)
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.Prompt = ""
	ta.KeyMap.InsertNewline.SetKeys("shift+enter", "ctrl+j")
	ta.SetWidth(max(longTextWidth, args.Box.Width))
	ta.SetHeight(longTextHeight)
	return &LongText{base: newBase(args), area: ta}
}

func (e *LongText) Focus() { e.area.Focus() }

func (e *LongText) SetDirectValue(v any) {
	if v != nil {
		e.area.SetValue(fmt.Sprint(v))
	}
}

func (e *LongText) LoadValue(item grid.Item) {
	e.initial = ""
	if v, ok := item[e.field()]; ok && v != nil {
		e.initial = fmt.Sprint(v)
	}
	e.area.SetValue(e.initial)
}

func (e *LongText) SerializeValue() any { return e.area.Value() }

func (e *LongText) ApplyValue(item grid.Item, v any) { item[e.field()] = v }

func (e *LongText) IsValueChanged() bool { return e.area.Value() != e.initial }

func (e *LongText) Validate() grid.ValidationResult { return e.validate(e.area.Value()) }

func (e *LongText) Position(box grid.Box) {
	e.base.Position(box)
	e.area.SetWidth(max(longTextWidth, box.Width))
}

func (e *LongText) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd
}

// View renders the popup. It is not clipped to the cell.
func (e *LongText) View() string {
	if e.hidden {
		return ""
	}
	return e.area.View()
}
