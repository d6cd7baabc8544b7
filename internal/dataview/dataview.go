// Package dataview is an id-keyed, filterable, sortable and groupable data
// source for the grid.
package dataview

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/charmbracelet/datagrid/internal/csync"
	"github.com/charmbracelet/datagrid/internal/grid"
)

var (
	// ErrDuplicateID is returned when two items share an id.
	ErrDuplicateID = errors.New("dataview: duplicate id")
	// ErrMissingID is returned for an item without an id.
	ErrMissingID = errors.New("dataview: item has no id")
	// ErrUnknownID is returned when no item has the requested id.
	ErrUnknownID = errors.New("dataview: unknown id")
)

// Keys of the synthetic items returned for group and totals rows.
const (
	GroupKey  = "__group"
	TotalsKey = "__totals"
)

// DefaultIDField is the id field used when [Options.IDField] is empty.
const DefaultIDField = "id"

// Options configures a view.
type Options struct {
	// IDField names the field holding the unique id of an item.
	IDField string
	// GroupFormatter renders group header rows. It receives the synthetic
	// item holding the *Group under GroupKey.
	GroupFormatter grid.Formatter
	// TotalsFormatter renders totals rows. It receives the synthetic item
	// holding the *Totals under TotalsKey.
	TotalsFormatter grid.Formatter
}

type rowKind uint8

const (
	rowItem rowKind = iota
	rowGroup
	rowTotals
)

// row is one visible row of the view.
type row struct {
	kind  rowKind
	key   string
	item  grid.Item
	group *Group
}

// View implements grid.DataSource and grid.ChangeNotifier.
type View struct {
	opts Options

	items []grid.Item
	index map[string]int

	filter  func(grid.Item) bool
	sorts   []SortSpec
	compare Comparer

	groupField  string
	groupTitle  func(value any, count int) string
	aggregators []Aggregator
	collapsed   map[string]bool
	groups      []*Group

	rows    []row
	rowByID map[string]int

	// updated holds ids changed since the last refresh.
	updated   map[string]struct{}
	suspended int

	countListeners *csync.Map[int, func(previous, current int)]
	rowsListeners  *csync.Map[int, func(rows []int)]
	nextListener   int
}

var (
	_ grid.DataSource     = (*View)(nil)
	_ grid.ChangeNotifier = (*View)(nil)
)

// New returns an empty view.
func New(opts Options) *View {
	if opts.IDField == "" {
		opts.IDField = DefaultIDField
	}
	return &View{
		opts:           opts,
		index:          make(map[string]int),
		rowByID:        make(map[string]int),
		collapsed:      make(map[string]bool),
		updated:        make(map[string]struct{}),
		countListeners: csync.NewMap[int, func(int, int)](),
		rowsListeners:  csync.NewMap[int, func([]int)](),
	}
}

func (v *View) idOf(item grid.Item) (string, error) {
	id, ok := item[v.opts.IDField]
	if !ok || id == nil {
		return "", fmt.Errorf("%w: field %q", ErrMissingID, v.opts.IDField)
	}
	return fmt.Sprint(id), nil
}

// SetItems replaces every item. Items must carry unique ids.
func (v *View) SetItems(items []grid.Item) error {
	index := make(map[string]int, len(items))
	for i, it := range items {
		id, err := v.idOf(it)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if _, dup := index[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		index[id] = i
	}
	v.items = slices.Clone(items)
	v.index = index
	v.Refresh()
	return nil
}

// Items returns every item, filtered or not, in insertion order.
func (v *View) Items() []grid.Item { return slices.Clone(v.items) }

// ItemByID returns the item with id.
func (v *View) ItemByID(id string) (grid.Item, bool) {
	i, ok := v.index[id]
	if !ok {
		return nil, false
	}
	return v.items[i], true
}

// RowByID returns the row showing the item with id. Filtered out items and
// items in collapsed groups have no row.
func (v *View) RowByID(id string) (int, bool) {
	r, ok := v.rowByID[id]
	return r, ok
}

// IDOfRow returns the id of the item shown at row.
func (v *View) IDOfRow(r int) (string, bool) {
	if r < 0 || r >= len(v.rows) || v.rows[r].kind != rowItem {
		return "", false
	}
	id, err := v.idOf(v.rows[r].item)
	return id, err == nil
}

// AddItem appends an item.
func (v *View) AddItem(item grid.Item) error {
	id, err := v.idOf(item)
	if err != nil {
		return err
	}
	if _, dup := v.index[id]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	v.index[id] = len(v.items)
	v.items = append(v.items, item)
	v.updated[id] = struct{}{}
	v.Refresh()
	return nil
}

// UpdateItem replaces the item with id. The new item may carry a new id as
// long as it stays unique.
func (v *View) UpdateItem(id string, item grid.Item) error {
	i, ok := v.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	newID, err := v.idOf(item)
	if err != nil {
		return err
	}
	if newID != id {
		if _, dup := v.index[newID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, newID)
		}
		delete(v.index, id)
		v.index[newID] = i
	}
	v.items[i] = item
	v.updated[id] = struct{}{}
	v.updated[newID] = struct{}{}
	v.Refresh()
	return nil
}

// DeleteItem removes the item with id.
func (v *View) DeleteItem(id string) error {
	i, ok := v.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	v.items = slices.Delete(v.items, i, i+1)
	delete(v.index, id)
	for k, j := range v.index {
		if j > i {
			v.index[k] = j - 1
		}
	}
	v.Refresh()
	return nil
}

// BeginUpdate suspends refreshes until the matching EndUpdate.
func (v *View) BeginUpdate() { v.suspended++ }

// EndUpdate resumes refreshes and refreshes once.
func (v *View) EndUpdate() {
	v.suspended = max(v.suspended-1, 0)
	v.Refresh()
}

// SetFilter sets the predicate deciding which items are shown. Nil shows
// every item.
func (v *View) SetFilter(fn func(grid.Item) bool) {
	v.filter = fn
	v.Refresh()
}

// Length implements grid.DataSource.
func (v *View) Length() int { return len(v.rows) }

// Item implements grid.DataSource. Group and totals rows return a synthetic
// item holding the group under GroupKey or the totals under TotalsKey.
func (v *View) Item(r int) grid.Item {
	if r < 0 || r >= len(v.rows) {
		return nil
	}
	switch rw := v.rows[r]; rw.kind {
	case rowGroup:
		return grid.Item{GroupKey: rw.group}
	case rowTotals:
		return grid.Item{TotalsKey: rw.group.Totals}
	default:
		return rw.item
	}
}

// ItemMetadata implements grid.DataSource.
func (v *View) ItemMetadata(r int) *grid.ItemMetadata {
	if r < 0 || r >= len(v.rows) {
		return nil
	}
	switch v.rows[r].kind {
	case rowGroup:
		f := v.opts.GroupFormatter
		if f == nil {
			f = plainGroup
		}
		return &grid.ItemMetadata{
			CSSClasses: []string{"group"},
			Focusable:  grid.Bool(true),
			Selectable: grid.Bool(false),
			ColumnsByIndex: map[int]*grid.ColumnMetadata{
				0: {Colspan: grid.ColspanToEnd, Formatter: f},
			},
		}
	case rowTotals:
		f := v.opts.TotalsFormatter
		if f == nil {
			f = plainTotals
		}
		return &grid.ItemMetadata{
			CSSClasses: []string{"group-totals"},
			Focusable:  grid.Bool(false),
			Selectable: grid.Bool(false),
			Formatter:  f,
		}
	}
	return nil
}

// OnRowCountChanged implements grid.ChangeNotifier.
func (v *View) OnRowCountChanged(fn func(previous, current int)) func() {
	id := v.nextListener
	v.nextListener++
	v.countListeners.Set(id, fn)
	return func() { v.countListeners.Del(id) }
}

// OnRowsChanged implements grid.ChangeNotifier.
func (v *View) OnRowsChanged(fn func(rows []int)) func() {
	id := v.nextListener
	v.nextListener++
	v.rowsListeners.Set(id, fn)
	return func() { v.rowsListeners.Del(id) }
}

// Refresh recomputes the visible rows. Listeners hear about a change of the
// row count and about rows whose content changed.
func (v *View) Refresh() {
	if v.suspended > 0 {
		return
	}
	prev := v.rows
	v.rows, v.groups = v.build()
	v.rowByID = make(map[string]int, len(v.rows))
	for r, rw := range v.rows {
		if rw.kind == rowItem {
			v.rowByID[rw.key] = r
		}
	}

	var changed []int
	for r, rw := range v.rows {
		_, updated := v.updated[rw.key]
		if r >= len(prev) || prev[r].key != rw.key || updated || rw.kind != rowItem {
			changed = append(changed, r)
		}
	}
	clear(v.updated)

	if len(prev) != len(v.rows) {
		slog.Debug("Data view row count changed", "previous", len(prev), "current", len(v.rows))
		for _, fn := range v.countListeners.Seq2() {
			fn(len(prev), len(v.rows))
		}
	}
	if len(changed) > 0 {
		for _, fn := range v.rowsListeners.Seq2() {
			fn(changed)
		}
	}
}

func (v *View) build() ([]row, []*Group) {
	visible := make([]grid.Item, 0, len(v.items))
	for _, it := range v.items {
		if v.filter == nil || v.filter(it) {
			visible = append(visible, it)
		}
	}
	if cmp := v.comparer(); cmp != nil {
		slices.SortStableFunc(visible, cmp)
	}

	rows := make([]row, 0, len(visible))
	if v.groupField == "" {
		for _, it := range visible {
			id, _ := v.idOf(it)
			rows = append(rows, row{kind: rowItem, key: id, item: it})
		}
		return rows, nil
	}

	groups := v.group(visible)
	for _, g := range groups {
		rows = append(rows, row{kind: rowGroup, key: "g\x00" + g.Key, group: g})
		if g.Collapsed {
			continue
		}
		for _, it := range g.Items {
			id, _ := v.idOf(it)
			rows = append(rows, row{kind: rowItem, key: id, item: it})
		}
		if g.Totals != nil {
			rows = append(rows, row{kind: rowTotals, key: "t\x00" + g.Key, group: g})
		}
	}
	return rows, groups
}

func plainGroup(_, _ int, _ any, _ *grid.Column, item grid.Item, _ *grid.ColumnMetadata) string {
	if g, ok := item[GroupKey].(*Group); ok {
		return g.Title
	}
	return ""
}

func plainTotals(_, _ int, _ any, col *grid.Column, item grid.Item, _ *grid.ColumnMetadata) string {
	t, ok := item[TotalsKey].(*Totals)
	if !ok || col == nil {
		return ""
	}
	for _, a := range t.Group.view.aggregators {
		if a.Field == col.Field {
			if val, ok := t.Value(a.Kind, a.Field); ok {
				return fmt.Sprint(val)
			}
		}
	}
	return ""
}
