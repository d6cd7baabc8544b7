package dataview

import (
	"fmt"

	"github.com/charmbracelet/datagrid/internal/grid"
)

// AggregateKind names an aggregate function.
type AggregateKind string

// Aggregate functions.
const (
	Sum   AggregateKind = "sum"
	Avg   AggregateKind = "avg"
	Min   AggregateKind = "min"
	Max   AggregateKind = "max"
	Count AggregateKind = "count"
)

// Aggregator computes one aggregate over a field of the items of a group.
type Aggregator struct {
	Kind  AggregateKind
	Field string
}

func (a Aggregator) compute(items []grid.Item) (any, bool) {
	if a.Kind == Count {
		n := 0
		for _, it := range items {
			if it[a.Field] != nil {
				n++
			}
		}
		return n, true
	}
	var sum, lo, hi float64
	n := 0
	for _, it := range items {
		f, ok := number(it[a.Field])
		if !ok {
			continue
		}
		if n == 0 || f < lo {
			lo = f
		}
		if n == 0 || f > hi {
			hi = f
		}
		sum += f
		n++
	}
	if n == 0 {
		return nil, false
	}
	switch a.Kind {
	case Sum:
		return sum, true
	case Avg:
		return sum / float64(n), true
	case Min:
		return lo, true
	case Max:
		return hi, true
	}
	return nil, false
}

// Group is a group header row and the items under it.
type Group struct {
	// Key is the text form of Value, used to track collapsed groups.
	Key       string
	Value     any
	Title     string
	Count     int
	Collapsed bool
	Items     []grid.Item
	// Totals is nil when the view has no aggregators.
	Totals *Totals

	view *View
}

// Totals holds the aggregates of a group.
type Totals struct {
	Group  *Group
	values map[Aggregator]any
}

// Value returns the aggregate of kind over field.
func (t *Totals) Value(kind AggregateKind, field string) (any, bool) {
	v, ok := t.values[Aggregator{Kind: kind, Field: field}]
	return v, ok
}

// Aggregators returns the aggregators of the view that computed t.
func (t *Totals) Aggregators() []Aggregator { return t.Group.view.aggregators }

// SetGrouping groups items by field. Title renders the group header text;
// nil uses "value (count)". Aggregators add a totals row after each group.
// An empty field removes grouping.
func (v *View) SetGrouping(field string, title func(value any, count int) string, aggregators ...Aggregator) {
	v.groupField = field
	v.groupTitle = title
	v.aggregators = aggregators
	v.Refresh()
}

// Groups returns the groups of the last refresh.
func (v *View) Groups() []*Group { return v.groups }

// CollapseGroup hides the items of the group whose value prints as key.
func (v *View) CollapseGroup(key string) {
	v.collapsed[key] = true
	v.Refresh()
}

// ExpandGroup shows the items of the group whose value prints as key.
func (v *View) ExpandGroup(key string) {
	delete(v.collapsed, key)
	v.Refresh()
}

// ToggleGroupAt collapses or expands the group whose header is at row. It
// reports whether row is a group header.
func (v *View) ToggleGroupAt(r int) bool {
	if r < 0 || r >= len(v.rows) || v.rows[r].kind != rowGroup {
		return false
	}
	g := v.rows[r].group
	if g.Collapsed {
		v.ExpandGroup(g.Key)
	} else {
		v.CollapseGroup(g.Key)
	}
	return true
}

// group splits items, already sorted, into groups in order of first
// appearance.
func (v *View) group(items []grid.Item) []*Group {
	var groups []*Group
	byKey := make(map[string]*Group)
	for _, it := range items {
		val := it[v.groupField]
		key := fmt.Sprint(val)
		g := byKey[key]
		if g == nil {
			g = &Group{Key: key, Value: val, Collapsed: v.collapsed[key], view: v}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.Items = append(g.Items, it)
	}
	for _, g := range groups {
		g.Count = len(g.Items)
		if v.groupTitle != nil {
			g.Title = v.groupTitle(g.Value, g.Count)
		} else {
			g.Title = fmt.Sprintf("%v (%d)", g.Value, g.Count)
		}
		if len(v.aggregators) == 0 {
			continue
		}
		g.Totals = &Totals{Group: g, values: make(map[Aggregator]any)}
		for _, a := range v.aggregators {
			if val, ok := a.compute(g.Items); ok {
				g.Totals.values[a] = val
			}
		}
	}
	return groups
}
