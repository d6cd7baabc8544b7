package app

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/charmbracelet/datagrid/internal/grid/editor"
	"github.com/charmbracelet/datagrid/internal/grid/format"
	"github.com/tidwall/gjson"
)

// longTextLen is the string length from which inferred columns get the
// multi-line editor.
const longTextLen = 40

// InferColumns builds column specs from the keys of the first object of the
// JSON array at path, in document order. The id field is not editable.
func InferColumns(data []byte, path, idField string) []config.ColumnSpec {
	res := gjson.ParseBytes(data)
	if path != "" {
		res = res.Get(path)
	}
	first := res.Get("0")
	if !first.IsObject() {
		return nil
	}
	var specs []config.ColumnSpec
	first.ForEach(func(key, val gjson.Result) bool {
		s := config.ColumnSpec{ID: key.String(), Sortable: true}
		switch val.Type {
		case gjson.True, gjson.False:
			s.Formatter = format.CheckmarkName
			s.Editor = editor.CheckboxName
			s.Width = 6
		case gjson.Number:
			s.Formatter = format.NumberName
			if val.Num == float64(int64(val.Num)) {
				s.Editor = editor.IntegerName
			} else {
				s.Editor = editor.FloatName
			}
		case gjson.String:
			s.Editor = editor.TextName
			if len(val.Str) >= longTextLen {
				s.Editor = editor.LongTextName
				s.Width = 30
			} else if isDate(val.Str) {
				s.Editor = editor.DateName
				s.Formatter = format.RelativeTimeName
			}
		}
		if s.ID == idField {
			s.Editor = ""
		}
		specs = append(specs, s)
		return true
	})
	return specs
}

func isDate(s string) bool {
	for _, layout := range editor.DefaultDateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// SampleColumns describes the data produced by [Generate].
func SampleColumns(idField string) []config.ColumnSpec {
	no := false
	return []config.ColumnSpec{
		{ID: idField, Name: "#", Width: 6, Sortable: true, Focusable: &no, Formatter: format.NumberName},
		{ID: "item", Name: "Item", Children: []config.ColumnSpec{
			{ID: "name", Name: "Name", Width: 16, Sortable: true, Editor: editor.TextName},
			{ID: "category", Name: "Category", Width: 10, Sortable: true, Editor: editor.TextName},
		}},
		{ID: "stock", Name: "Stock", Children: []config.ColumnSpec{
			{ID: "qty", Name: "Qty", Width: 6, Sortable: true, Formatter: format.NumberName, Editor: editor.IntegerName},
			{ID: "price", Name: "Price", Width: 9, Sortable: true, Formatter: format.NumberName, Editor: editor.FloatName},
			{ID: "size", Name: "Size", Width: 9, Sortable: true, Formatter: format.BytesName, Editor: editor.IntegerName},
		}},
		{ID: "done", Name: "Done", Width: 6, Sortable: true, Formatter: format.CheckmarkName, Editor: editor.CheckboxName},
		{ID: "updated", Name: "Updated", Width: 12, Sortable: true, Formatter: format.RelativeTimeName, Editor: editor.DateName},
		{ID: "notes", Name: "Notes", Width: 24, Editor: editor.LongTextName},
	}
}

var (
	sampleNames      = []string{"Widget", "Gadget", "Sprocket", "Gizmo", "Doohickey", "Flange", "Bracket", "Spindle"}
	sampleCategories = []string{"Hardware", "Tools", "Parts", "Misc"}
	sampleNotes      = []string{"", "Backordered", "Check supplier", "Reorder soon\nSupplier changed pricing"}
)

// Generate returns n deterministic sample items.
func Generate(n int, idField string) []grid.Item {
	r := rand.New(rand.NewPCG(1, 2))
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	items := make([]grid.Item, n)
	for i := range items {
		items[i] = grid.Item{
			idField:    float64(i + 1),
			"name":     fmt.Sprintf("%s %d", sampleNames[r.IntN(len(sampleNames))], i+1),
			"category": sampleCategories[r.IntN(len(sampleCategories))],
			"qty":      float64(r.IntN(500)),
			"price":    float64(r.IntN(100000)) / 100,
			"size":     float64(r.Int64N(1 << 30)),
			"done":     r.IntN(3) == 0,
			"updated":  base.AddDate(0, 0, r.IntN(365)).Format(time.DateOnly),
			"notes":    sampleNotes[r.IntN(len(sampleNotes))],
		}
	}
	return items
}
