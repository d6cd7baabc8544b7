package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/datagrid/internal/dataview"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/dustin/go-humanize"
)

// GroupHeader renders a dataview group row with an expand marker.
func GroupHeader(_, _ int, _ any, _ *grid.Column, item grid.Item, _ *grid.ColumnMetadata) string {
	g, ok := item[dataview.GroupKey].(*dataview.Group)
	if !ok {
		return ""
	}
	marker := "▾"
	if g.Collapsed {
		marker = "▸"
	}
	return marker + " " + g.Title
}

// Totals renders the aggregates of a dataview totals row for the field of
// the column, such as "sum: 1,200".
func Totals(_, _ int, _ any, col *grid.Column, item grid.Item, _ *grid.ColumnMetadata) string {
	t, ok := item[dataview.TotalsKey].(*dataview.Totals)
	if !ok || col == nil {
		return ""
	}
	var parts []string
	for _, a := range t.Aggregators() {
		if a.Field != col.Field {
			continue
		}
		v, ok := t.Value(a.Kind, a.Field)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", a.Kind, aggregate(v)))
	}
	return strings.Join(parts, " ")
}

func aggregate(v any) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case float64:
		return humanize.CommafWithDigits(n, 2)
	}
	return fmt.Sprint(v)
}
