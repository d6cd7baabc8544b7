package editor

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/rivo/uniseg"
)

// Checkbox edits a boolean value. Space toggles it.
type Checkbox struct {
	base
	checked bool
	initial bool
	focused bool
}

var _ grid.Editor = (*Checkbox)(nil)

// NewCheckbox is the factory of the checkbox editor.
func NewCheckbox(args grid.EditorArgs) grid.Editor {
	return &Checkbox{base: newBase(args)}
}

func (e *Checkbox) Focus() { e.focused = true }

// SetDirectValue sets the state from a boolean or from text such as "x" or
// "true".
func (e *Checkbox) SetDirectValue(v any) {
	if b, ok := truthy(v); ok {
		e.checked = b
	}
}

func (e *Checkbox) LoadValue(item grid.Item) {
	e.initial, _ = truthy(item[e.field()])
	e.checked = e.initial
}

func (e *Checkbox) SerializeValue() any { return e.checked }

func (e *Checkbox) ApplyValue(item grid.Item, v any) { item[e.field()] = v }

func (e *Checkbox) IsValueChanged() bool { return e.checked != e.initial }

func (e *Checkbox) Validate() grid.ValidationResult { return e.validate(e.checked) }

func (e *Checkbox) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "space" {
		e.checked = !e.checked
	}
	return nil
}

func (e *Checkbox) View() string {
	if e.checked {
		return e.fit("[x]")
	}
	return e.fit("[ ]")
}

// YesNo edits a boolean value shown as Yes or No. Left, right, y and n
// change it.
type YesNo struct {
	base
	yes     bool
	initial bool
}

var _ grid.Editor = (*YesNo)(nil)

// NewYesNo is the factory of the yes/no editor.
func NewYesNo(args grid.EditorArgs) grid.Editor {
	return &YesNo{base: newBase(args)}
}

func (e *YesNo) Focus() {}

func (e *YesNo) SetDirectValue(v any) {
	if b, ok := truthy(v); ok {
		e.yes = b
	}
}

func (e *YesNo) LoadValue(item grid.Item) {
	e.initial, _ = truthy(item[e.field()])
	e.yes = e.initial
}

func (e *YesNo) SerializeValue() any { return e.yes }

func (e *YesNo) ApplyValue(item grid.Item, v any) { item[e.field()] = v }

func (e *YesNo) IsValueChanged() bool { return e.yes != e.initial }

func (e *YesNo) Validate() grid.ValidationResult { return e.validate(e.yes) }

func (e *YesNo) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "left", "right", "space":
		e.yes = !e.yes
	case "y":
		e.yes = true
	case "n":
		e.yes = false
	}
	return nil
}

func (e *YesNo) View() string {
	if e.yes {
		return e.fit("‹Yes›")
	}
	return e.fit("‹No›")
}

// truthy interprets booleans and common textual spellings of them. Only the
// first grapheme of text is considered.
func truthy(v any) (bool, bool) {
	switch v := v.(type) {
	case nil:
		return false, true
	case bool:
		return v, true
	case int:
		return v != 0, true
	case float64:
		return v != 0, true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "", "false", "no", "off", "0":
			return false, true
		case "true", "yes", "on", "1":
			return true, true
		}
		first, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
		switch first {
		case "x", "y", "✓", "✔":
			return true, true
		case "n":
			return false, true
		}
		return false, false
	}
	return truthy(fmt.Sprint(v))
}
