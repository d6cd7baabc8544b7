package grid

import (
	"fmt"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
)

// CellStyles maps a row to column ids and the class applied to that cell.
type CellStyles map[int]map[string]string

// SetCellCssStyles sets or replaces a decoration layer. Affected rows are
// refreshed.
func (g *Grid) SetCellCssStyles(key string, styles CellStyles) {
	prev := g.cssStyles[key]
	if styles == nil {
		delete(g.cssStyles, key)
		g.cssOrder = slices.DeleteFunc(g.cssOrder, func(k string) bool { return k == key })
	} else {
		if _, ok := g.cssStyles[key]; !ok {
			g.cssOrder = append(g.cssOrder, key)
		}
		g.cssStyles[key] = styles
	}
	g.refreshStyledRows(prev, styles)
	g.events.OnCellCSSStylesChanged.Notify(CSSStylesChangedArgs{Key: key, Styles: styles})
}

// AddCellCssStyles adds a new decoration layer. Adding an existing key is
// an error.
func (g *Grid) AddCellCssStyles(key string, styles CellStyles) error {
	if _, ok := g.cssStyles[key]; ok {
		return fmt.Errorf("grid: cell css styles %q already exist", key)
	}
	g.SetCellCssStyles(key, styles)
	return nil
}

// RemoveCellCssStyles drops a decoration layer.
func (g *Grid) RemoveCellCssStyles(key string) {
	if _, ok := g.cssStyles[key]; !ok {
		return
	}
	g.SetCellCssStyles(key, nil)
}

// CellCssStyles returns a decoration layer.
func (g *Grid) CellCssStyles(key string) CellStyles { return g.cssStyles[key] }

func (g *Grid) cssClassesFor(row int, columnID string) []string {
	var classes []string
	for _, key := range g.cssOrder {
		if cls, ok := g.cssStyles[key][row][columnID]; ok && cls != "" {
			classes = append(classes, cls)
		}
	}
	return classes
}

func (g *Grid) refreshStyledRows(layers ...CellStyles) {
	seen := make(map[int]struct{})
	for _, layer := range layers {
		for row := range layer {
			seen[row] = struct{}{}
		}
	}
	for row := range seen {
		g.refreshRow(row)
	}
}

// flash is the state of a flashing cell.
type flash struct {
	seq       int
	remaining int
	on        bool
}

type flashTickMsg struct {
	grid  string
	coord Coord
	seq   int
}

// FlashCell toggles the highlight of a rendered cell a few times.
func (g *Grid) FlashCell(row, cell int) {
	if g.cache.Node(row, cell) == nil {
		return
	}
	c := Coord{Row: row, Cell: cell}
	f := g.flashes[c]
	if f == nil {
		f = &flash{}
		g.flashes[c] = f
	}
	f.seq++
	f.remaining = g.opts.FlashCount
	f.on = false
	g.scheduleFlash(c, f.seq)
}

func (g *Grid) scheduleFlash(c Coord, seq int) {
	id := g.id
	g.queue(tea.Tick(g.opts.FlashInterval, func(time.Time) tea.Msg {
		return flashTickMsg{grid: id, coord: c, seq: seq}
	}))
}

func (g *Grid) handleFlashTick(msg flashTickMsg) {
	f := g.flashes[msg.coord]
	if f == nil || f.seq != msg.seq {
		return
	}
	f.on = !f.on
	f.remaining--
	if f.remaining <= 0 {
		delete(g.flashes, msg.coord)
		return
	}
	g.scheduleFlash(msg.coord, f.seq)
}

// Flashing reports whether the highlight of (row, cell) is currently on.
func (g *Grid) Flashing(row, cell int) bool {
	f := g.flashes[Coord{Row: row, Cell: cell}]
	return f != nil && f.on
}

// SetSelectedRows replaces the selected rows. Rows outside the data are
// ignored.
func (g *Grid) SetSelectedRows(rows []int) {
	length := g.DataLength()
	next := make([]int, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < length && !slices.Contains(next, r) {
			next = append(next, r)
		}
	}
	if !g.opts.MultiSelect && len(next) > 1 {
		next = next[len(next)-1:]
	}
	slices.Sort(next)
	prev := g.selected
	g.selected = next
	for _, r := range prev {
		if !slices.Contains(next, r) {
			g.refreshRow(r)
		}
	}
	for _, r := range next {
		if !slices.Contains(prev, r) {
			g.refreshRow(r)
		}
	}
	if !slices.Equal(prev, next) {
		g.events.OnSelectedRowsChanged.Notify(slices.Clone(next))
	}
}

// SelectedRows returns the selected rows in ascending order.
func (g *Grid) SelectedRows() []int { return slices.Clone(g.selected) }

// ToggleRowSelection adds row to or removes it from the selection.
func (g *Grid) ToggleRowSelection(row int) {
	if i := slices.Index(g.selected, row); i >= 0 {
		g.SetSelectedRows(slices.Delete(slices.Clone(g.selected), i, i+1))
		return
	}
	if g.opts.MultiSelect {
		g.SetSelectedRows(append(slices.Clone(g.selected), row))
		return
	}
	g.SetSelectedRows([]int{row})
}

func (g *Grid) isRowSelected(row int) bool {
	_, found := slices.BinarySearch(g.selected, row)
	return found
}

// SortColumn is one entry of the sort order.
type SortColumn struct {
	ColumnID string
	Asc      bool
}

// SetSortColumns sets the sort indicators shown in the header. It does not
// sort the data; subscribe to OnSort for that.
func (g *Grid) SetSortColumns(cols []SortColumn) {
	g.sortCols = slices.DeleteFunc(slices.Clone(cols), func(sc SortColumn) bool {
		_, ok := g.cols.byID[sc.ColumnID]
		return !ok
	})
}

// SortColumns returns the current sort order.
func (g *Grid) SortColumns() []SortColumn { return slices.Clone(g.sortCols) }

// toggleSort handles a click on a sortable header.
func (g *Grid) toggleSort(col *Column) {
	if !col.Sortable {
		return
	}
	next := SortColumn{ColumnID: col.ID, Asc: true}
	for _, sc := range g.sortCols {
		if sc.ColumnID == col.ID {
			next.Asc = !sc.Asc
		}
	}
	g.sortCols = []SortColumn{next}
	g.events.OnSort.Notify(SortArgs{SortColumns: g.SortColumns()})
}
