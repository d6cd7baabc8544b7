// Package editor provides the built-in in-place cell editors.
package editor

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	"github.com/charmbracelet/datagrid/internal/csync"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/charmbracelet/x/ansi"
)

// Names of the built-in editors in a [grid.Registry].
const (
	TextName     = "text"
	IntegerName  = "integer"
	FloatName    = "float"
	CheckboxName = "checkbox"
	YesNoName    = "yesno"
	DateName     = "date"
	LongTextName = "longtext"
)

// Register adds the built-in editors to r.
func Register(r *grid.Registry) {
	r.RegisterEditor(TextName, NewText)
	r.RegisterEditor(IntegerName, NewInteger)
	r.RegisterEditor(FloatName, NewFloat(2))
	r.RegisterEditor(CheckboxName, NewCheckbox)
	r.RegisterEditor(YesNoName, NewYesNo)
	r.RegisterEditor(DateName, NewDate())
	r.RegisterEditor(LongTextName, NewLongText)
}

func init() {
	Register(grid.DefaultRegistry)
}

// base implements the parts of [grid.Editor] shared by every editor.
type base struct {
	args   grid.EditorArgs
	box    grid.Box
	hidden bool
}

func newBase(args grid.EditorArgs) base {
	return base{args: args, box: args.Box}
}

func (b *base) Init()    {}
func (b *base) Destroy() {}

func (b *base) Hide() { b.hidden = true }
func (b *base) Show() { b.hidden = false }

func (b *base) Position(box grid.Box) { b.box = box }

// Save asks the grid to commit the session.
func (b *base) Save() {
	if b.args.Commit != nil {
		b.args.Commit()
	}
}

// Cancel asks the grid to cancel the session.
func (b *base) Cancel() {
	if b.args.Cancel != nil {
		b.args.Cancel()
	}
}

func (b *base) field() string {
	if b.args.Column == nil {
		return ""
	}
	return b.args.Column.Field
}

// validate runs the column validator, if any.
func (b *base) validate(v any) grid.ValidationResult {
	if b.args.Column != nil && b.args.Column.Validator != nil {
		return b.args.Column.Validator(v)
	}
	return grid.ValidationResult{Valid: true}
}

// fit truncates a rendered editor line to the cell width.
func (b *base) fit(s string) string {
	if b.hidden {
		return ""
	}
	if b.box.Width <= 0 {
		return s
	}
	return ansi.Truncate(s, b.box.Width, "")
}

// Styles are the input styles of the editors.
type Styles struct {
	TextInput textinput.Styles
	TextArea  textarea.Styles
}

var styles = csync.NewValue(Styles{
	TextInput: textinput.DefaultDarkStyles(),
	TextArea:  textarea.DefaultDarkStyles(),
})

// SetStyles styles the editors created from now on.
func SetStyles(s Styles) { styles.Set(s) }

// CurrentStyles returns the styles applied to new editors.
func CurrentStyles() Styles { return styles.Get() }

func newInput() textinput.Model {
	in := textinput.New()
	in.SetStyles(styles.Get().TextInput)
	in.Prompt = ""
	in.SetVirtualCursor(true)
	return in
}
