package dataview

import (
	"cmp"
	"fmt"
	"time"

	"github.com/charmbracelet/datagrid/internal/grid"
)

// Comparer orders two items.
type Comparer func(a, b grid.Item) int

// SortSpec sorts by one field.
type SortSpec struct {
	Field string
	Asc   bool
}

// SetSort sorts by the given fields, the first one taking precedence. The
// sort is stable.
func (v *View) SetSort(specs ...SortSpec) {
	v.sorts = specs
	v.compare = nil
	v.Refresh()
}

// Sort orders items with a custom comparer.
func (v *View) Sort(c Comparer) {
	v.sorts = nil
	v.compare = c
	v.Refresh()
}

// SortSpecs returns the field sort order.
func (v *View) SortSpecs() []SortSpec { return v.sorts }

func (v *View) comparer() Comparer {
	if v.compare != nil {
		return v.compare
	}
	if len(v.sorts) == 0 {
		return nil
	}
	specs := v.sorts
	return func(a, b grid.Item) int {
		for _, s := range specs {
			c := CompareValues(a[s.Field], b[s.Field])
			if !s.Asc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
}

// CompareValues orders field values. Nil sorts first, numbers compare
// numerically, and values of different kinds compare by their text.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
