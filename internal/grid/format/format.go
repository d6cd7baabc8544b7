// Package format provides the built-in cell formatters.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/dustin/go-humanize"
)

// Names of the built-in formatters in a [grid.Registry].
const (
	PlainName        = "plain"
	NumberName       = "number"
	PercentName      = "percent"
	CheckmarkName    = "checkmark"
	YesNoName        = "yesno"
	RelativeTimeName = "relativetime"
	BytesName        = "bytes"
	GroupHeaderName  = "group"
	TotalsName       = "totals"
)

// Register adds the built-in formatters to r.
func Register(r *grid.Registry) {
	r.RegisterFormatter(PlainName, grid.PlainFormatter)
	r.RegisterFormatter(NumberName, Number)
	r.RegisterFormatter(PercentName, PercentBar(lipgloss.NewStyle().Foreground(lipgloss.Color("2"))))
	r.RegisterFormatter(CheckmarkName, Checkmark)
	r.RegisterFormatter(YesNoName, YesNo)
	r.RegisterFormatter(RelativeTimeName, RelativeTime(time.Now))
	r.RegisterFormatter(BytesName, Bytes)
	r.RegisterFormatter(GroupHeaderName, GroupHeader)
	r.RegisterFormatter(TotalsName, Totals)
}

func init() {
	Register(grid.DefaultRegistry)
}

// toFloat converts numeric values and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscan(n, &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Number renders numbers with thousands separators.
func Number(row, cell int, value any, col *grid.Column, item grid.Item, meta *grid.ColumnMetadata) string {
	switch n := value.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	}
	f, ok := toFloat(value)
	if !ok {
		return grid.PlainFormatter(row, cell, value, col, item, meta)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return humanize.Comma(int64(f))
	}
	return humanize.CommafWithDigits(f, 2)
}

// Bytes renders a byte count in SI units.
func Bytes(row, cell int, value any, col *grid.Column, item grid.Item, meta *grid.ColumnMetadata) string {
	f, ok := toFloat(value)
	if !ok || f < 0 {
		return grid.PlainFormatter(row, cell, value, col, item, meta)
	}
	return humanize.Bytes(uint64(f))
}

// PercentBar returns a formatter drawing a bar filled to the percentage of
// the value, followed by the number. The bar uses the column width.
func PercentBar(style lipgloss.Style) grid.Formatter {
	return func(row, cell int, value any, col *grid.Column, item grid.Item, meta *grid.ColumnMetadata) string {
		f, ok := toFloat(value)
		if !ok {
			return ""
		}
		f = math.Max(0, math.Min(100, f))
		label := fmt.Sprintf("%3.0f%%", f)
		width := col.Width - len(label) - 1
		if width <= 0 {
			return label
		}
		filled := int(math.Round(f / 100 * float64(width)))
		bar := style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
		return bar + " " + label
	}
}

// Checkmark renders a check for truthy values and nothing otherwise.
func Checkmark(_, _ int, value any, _ *grid.Column, _ grid.Item, _ *grid.ColumnMetadata) string {
	if truthy(value) {
		return "✓"
	}
	return ""
}

// YesNo renders truthy values as Yes and everything else as No.
func YesNo(_, _ int, value any, _ *grid.Column, _ grid.Item, _ *grid.ColumnMetadata) string {
	if truthy(value) {
		return "Yes"
	}
	return "No"
}

func truthy(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "", "false", "no", "0":
			return false
		}
		return true
	case nil:
		return false
	}
	f, ok := toFloat(v)
	return ok && f != 0
}

// RelativeTime returns a formatter rendering times relative to now, such as
// "3 days ago". Strings are parsed as RFC 3339 or as dates.
func RelativeTime(now func() time.Time) grid.Formatter {
	return func(row, cell int, value any, col *grid.Column, item grid.Item, meta *grid.ColumnMetadata) string {
		var t time.Time
		switch v := value.(type) {
		case time.Time:
			t = v
		case string:
			var err error
			if t, err = time.Parse(time.RFC3339, v); err != nil {
				if t, err = time.Parse(time.DateOnly, v); err != nil {
					return v
				}
			}
		default:
			return grid.PlainFormatter(row, cell, value, col, item, meta)
		}
		return humanize.RelTime(t, now(), "ago", "from now")
	}
}
