package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/rivo/uniseg"
)

// Text edits a string value.
type Text struct {
	base
	input textinput.Model
	// initial is the loaded value; hasInitial is false when the field was
	// unset.
	initial    string
	hasInitial bool
}

var _ grid.Editor = (*Text)(nil)

// NewText is the factory of the text editor.
func NewText(args grid.EditorArgs) grid.Editor {
	return &Text{base: newBase(args), input: newInput()}
}

func (e *Text) Focus() { e.input.Focus() }

// SetDirectValue replaces the content with the typed text.
func (e *Text) SetDirectValue(v any) {
	if v == nil {
		return
	}
	e.input.SetValue(fmt.Sprint(v))
	e.input.CursorEnd()
}

func (e *Text) LoadValue(item grid.Item) {
	v, ok := item[e.field()]
	e.hasInitial = ok && v != nil
	e.initial = ""
	if e.hasInitial {
		e.initial = fmt.Sprint(v)
	}
	e.input.SetValue(e.initial)
	e.input.CursorEnd()
}

func (e *Text) SerializeValue() any { return e.input.Value() }

func (e *Text) ApplyValue(item grid.Item, v any) { item[e.field()] = v }

func (e *Text) IsValueChanged() bool {
	v := e.input.Value()
	if v == "" && !e.hasInitial {
		return false
	}
	return v != e.initial
}

func (e *Text) Validate() grid.ValidationResult { return e.validate(e.SerializeValue()) }

func (e *Text) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *Text) View() string { return e.fit(e.input.View()) }

// Length returns the number of user-perceived characters entered.
func (e *Text) Length() int { return uniseg.GraphemeClusterCount(e.input.Value()) }

// Integer edits an integer value.
type Integer struct {
	Text
}

// NewInteger is the factory of the integer editor.
func NewInteger(args grid.EditorArgs) grid.Editor {
	return &Integer{Text: Text{base: newBase(args), input: newInput()}}
}

// SerializeValue returns the parsed integer, or 0 when the text is not a
// number.
func (e *Integer) SerializeValue() any {
	n, err := strconv.Atoi(strings.TrimSpace(e.input.Value()))
	if err != nil {
		return 0
	}
	return n
}

func (e *Integer) Validate() grid.ValidationResult {
	if _, err := strconv.Atoi(strings.TrimSpace(e.input.Value())); err != nil {
		return grid.ValidationResult{Msg: "Please enter a valid integer"}
	}
	return e.validate(e.SerializeValue())
}

// Float edits a floating point value rounded to a number of decimals.
type Float struct {
	Text
	decimals int
}

// NewFloat returns the factory of a float editor rounding to decimals
// places. A negative value disables rounding.
func NewFloat(decimals int) grid.EditorFactory {
	return func(args grid.EditorArgs) grid.Editor {
		return &Float{Text: Text{base: newBase(args), input: newInput()}, decimals: decimals}
	}
}

func (e *Float) parse() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(e.input.Value()), 64)
}

// SerializeValue returns the rounded number, or 0 when the text is not a
// number.
func (e *Float) SerializeValue() any {
	f, err := e.parse()
	if err != nil {
		return 0.0
	}
	if e.decimals >= 0 {
		p := math.Pow10(e.decimals)
		f = math.Round(f*p) / p
	}
	return f
}

func (e *Float) LoadValue(item grid.Item) {
	e.Text.LoadValue(item)
	if f, ok := item[e.field()].(float64); ok && e.decimals >= 0 {
		e.initial = strconv.FormatFloat(f, 'f', e.decimals, 64)
		e.input.SetValue(e.initial)
		e.input.CursorEnd()
	}
}

func (e *Float) Validate() grid.ValidationResult {
	if _, err := e.parse(); err != nil {
		return grid.ValidationResult{Msg: "Please enter a valid number"}
	}
	return e.validate(e.SerializeValue())
}
