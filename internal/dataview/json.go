package dataview

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidJSON is returned by LoadJSON for malformed input.
var ErrInvalidJSON = errors.New("dataview: invalid JSON")

// LoadJSON replaces the items with the objects of a JSON array. With a
// non-empty path the array is looked up with gjson path syntax, such as
// "data.rows". Numbers load as float64.
func (v *View) LoadJSON(data []byte, path string) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	res := gjson.ParseBytes(data)
	if path != "" {
		res = res.Get(path)
	}
	if !res.IsArray() {
		return fmt.Errorf("dataview: %q is not an array", path)
	}
	var items []grid.Item
	var err error
	res.ForEach(func(_, el gjson.Result) bool {
		obj, ok := el.Value().(map[string]any)
		if !ok {
			err = fmt.Errorf("dataview: element %d is not an object", len(items))
			return false
		}
		items = append(items, grid.Item(obj))
		return true
	})
	if err != nil {
		return err
	}
	return v.SetItems(items)
}

// ExportJSON writes every item, including edits, as a JSON array.
func (v *View) ExportJSON() ([]byte, error) {
	out := []byte("[]")
	for _, it := range v.items {
		var err error
		out, err = sjson.SetBytes(out, "-1", map[string]any(it))
		if err != nil {
			return nil, fmt.Errorf("dataview: export: %w", err)
		}
	}
	return out, nil
}

// SetField changes one field of the item with id and refreshes its row.
func (v *View) SetField(id, field string, value any) error {
	it, ok := v.ItemByID(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	if field == v.opts.IDField {
		next := grid.Item{}
		for k, val := range it {
			next[k] = val
		}
		next[field] = value
		return v.UpdateItem(id, next)
	}
	it[field] = value
	v.updated[id] = struct{}{}
	v.Refresh()
	return nil
}
