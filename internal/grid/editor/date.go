package editor

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/rivo/uniseg"
)

// DefaultDateLayouts are tried in order when parsing a date.
var DefaultDateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// Date edits a date. Text that matches none of the layouts fails
// validation.
type Date struct {
	base
	input   textinput.Model
	layouts []string
	initial string
}

var _ grid.Editor = (*Date)(nil)

// NewDate returns the factory of a date editor. The first layout is used to
// display and serialize values.
func NewDate(layouts ...string) grid.EditorFactory {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return func(args grid.EditorArgs) grid.Editor {
		in := newInput()
		in.Placeholder = layouts[0]
		return &Date{base: newBase(args), input: in, layouts: layouts}
	}
}

func (e *Date) Focus() { e.input.Focus() }

func (e *Date) SetDirectValue(v any) {
	if v != nil {
		e.input.SetValue(sanitizeDate(fmt.Sprint(v)))
		e.input.CursorEnd()
	}
}

func (e *Date) LoadValue(item grid.Item) {
	e.initial = ""
	switch v := item[e.field()].(type) {
	case time.Time:
		e.initial = v.Format(e.layouts[0])
	case string:
		if t, err := e.parse(v); err == nil {
			e.initial = t.Format(e.layouts[0])
		} else {
			e.initial = v
		}
	}
	e.input.SetValue(e.initial)
	e.input.CursorEnd()
}

func (e *Date) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range e.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches no date layout", s)
}

// SerializeValue returns the date in the first layout, or the raw text when
// it does not parse.
func (e *Date) SerializeValue() any {
	v := e.input.Value()
	if t, err := e.parse(v); err == nil {
		return t.Format(e.layouts[0])
	}
	return v
}

func (e *Date) ApplyValue(item grid.Item, v any) { item[e.field()] = v }

func (e *Date) IsValueChanged() bool {
	return e.SerializeValue() != any(e.initial)
}

func (e *Date) Validate() grid.ValidationResult {
	v := e.input.Value()
	if strings.TrimSpace(v) == "" {
		return e.validate("")
	}
	if _, err := e.parse(v); err != nil {
		return grid.ValidationResult{Msg: "Please enter a valid date (" + e.layouts[0] + ")"}
	}
	return e.validate(e.SerializeValue())
}

func (e *Date) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	if s := sanitizeDate(e.input.Value()); s != e.input.Value() {
		e.input.SetValue(s)
		e.input.CursorEnd()
	}
	return cmd
}

func (e *Date) View() string { return e.fit(e.input.View()) }

// sanitizeDate drops graphemes that cannot appear in a date, such as control
// characters and emoji.
func sanitizeDate(s string) string {
	var sb strings.Builder
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		r := g.Runes()
		if len(r) != 1 {
			continue
		}
		if unicode.IsLetter(r[0]) || unicode.IsDigit(r[0]) || strings.ContainsRune(" -/.:,+", r[0]) {
			sb.WriteRune(r[0])
		}
	}
	return sb.String()
}
