// Package grid implements a virtualized data grid for terminal programs.
//
// Only the rows around the viewport have rendered cell nodes. Offsets of
// variable height rows are kept in a [PositionCache], row and column spans in
// a [SpanIndex] and rendered nodes in a [RenderCache]. The grid is a
// bubbletea component: feed it messages with [Grid.Update] and draw it with
// [Grid.Draw].
package grid

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
)

// ErrNoDataSource is returned when a grid is created without data.
var ErrNoDataSource = errors.New("grid: no data source")

// Grid is a virtualized data grid.
type Grid struct {
	id     string
	opts   Options
	caps   Capabilities
	styles Styles
	keyMap KeyMap
	events Events

	data        DataSource
	unsubscribe []func()

	cols   *columnSet
	pos    *PositionCache
	spans  *SpanIndex
	cache  *RenderCache
	vp     *Viewport
	sched  scheduler
	post   postRender
	hits   hitMap
	layout layout

	// reconciledGen is the render cache generation last reconciled by
	// UpdateRowCount, at row count rowCount.
	reconciledGen int
	rowCount      int

	active   activeCell
	session  *editSession
	lock     *EditLock
	ctrl     *editController
	focus    focusTracker
	transfer focusTransfer
	focused  bool

	cssStyles map[string]CellStyles
	cssOrder  []string
	flashes   map[Coord]*flash
	selected  []int
	sortCols  []SortColumn

	width, height int
	// originX and originY are the screen position of the last Draw.
	originX, originY int
	measured         bool
	measureTries     int
	destroyed        bool

	click   clickState
	pending []tea.Cmd
	now     func() time.Time
}

// New creates a grid over data with the given column tree. Configuration
// errors are returned wrapped around ErrNoDataSource, ErrNoColumns,
// ErrInvalidColumn or ErrDuplicateColumnID.
func New(data DataSource, columns []*Column, opts Options) (*Grid, error) {
	if data == nil {
		return nil, ErrNoDataSource
	}
	opts.normalize()
	cols, err := flattenColumns(columns, opts.DefaultColumnWidth)
	if err != nil {
		return nil, fmt.Errorf("configure columns: %w", err)
	}

	g := &Grid{
		id:        uuid.NewString(),
		opts:      opts,
		data:      data,
		cols:      cols,
		cache:     NewRenderCache(),
		cssStyles: make(map[string]CellStyles),
		flashes:   make(map[Coord]*flash),
		now:       opts.Clock,
	}
	if opts.Capabilities != nil {
		g.caps = *opts.Capabilities
	} else {
		g.caps = DetectCapabilities()
	}
	if opts.MaxCanvasHeight > 0 {
		g.caps.MaxCanvasHeight = opts.MaxCanvasHeight
	}
	g.styles = DefaultStyles()
	if opts.Styles != nil {
		g.styles = *opts.Styles
	}
	g.keyMap = DefaultKeyMap()
	if opts.KeyMap != nil {
		g.keyMap = *opts.KeyMap
	}
	g.lock = opts.EditLock
	if g.lock == nil {
		g.lock = NewEditLock()
	}
	g.ctrl = &editController{g: g}

	g.pos = NewPositionCache(opts.RowHeight, opts.DefaultColumnWidth, g.DataLength, g.rowHeightOverride)
	g.pos.SetColumnWidths(g.columnWidths())
	g.spans = NewSpanIndex(func() DataSource { return g.data }, func() []*Column { return g.cols.leaves })
	g.spans.onInvalidate = g.cache.MarkSpanDirty
	g.cache.onRemove = g.nodeRemoved
	g.vp = NewViewport(g.caps, g.pos, g.DataLengthIncludingAddNew, opts.MinBuffer, opts.MaxBuffer)

	g.subscribe()
	g.rowCount = data.Length()
	g.vp.UpdateCanvasHeight()
	slog.Debug("Created grid", "id", g.id, "rows", data.Length(), "columns", len(cols.leaves))
	return g, nil
}

// ID returns the unique id of the grid.
func (g *Grid) ID() string { return g.id }

// Events returns the notifications raised by the grid.
func (g *Grid) Events() *Events { return &g.events }

// Options returns the effective options.
func (g *Grid) Options() Options { return g.opts }

// Capabilities returns the capability descriptor used by the grid.
func (g *Grid) Capabilities() Capabilities { return g.caps }

// EditLock returns the lock guarding edit sessions.
func (g *Grid) EditLock() *EditLock { return g.lock }

// PositionCache exposes the row and column offsets.
func (g *Grid) PositionCache() *PositionCache { return g.pos }

// SpanIndex exposes the span relationships.
func (g *Grid) SpanIndex() *SpanIndex { return g.spans }

// RenderCache exposes the rendered nodes.
func (g *Grid) RenderCache() *RenderCache { return g.cache }

// Viewport exposes the scroll controller.
func (g *Grid) Viewport() *Viewport { return g.vp }

// Data returns the bound data source.
func (g *Grid) Data() DataSource { return g.data }

// DataLength returns the number of data rows.
func (g *Grid) DataLength() int {
	if g.data == nil {
		return 0
	}
	return g.data.Length()
}

// DataLengthIncludingAddNew returns the number of addressable rows, counting
// the add-new row when enabled.
func (g *Grid) DataLengthIncludingAddNew() int {
	n := g.DataLength()
	if g.opts.EnableAddRow {
		n++
	}
	return n
}

// Item returns the record at row, or nil for the add-new row.
func (g *Grid) Item(row int) Item {
	if row < 0 || row >= g.DataLength() {
		return nil
	}
	return g.data.Item(row)
}

func (g *Grid) itemMetadata(row int) *ItemMetadata {
	if row < 0 || row >= g.DataLength() {
		return nil
	}
	return g.data.ItemMetadata(row)
}

func (g *Grid) rowHeightOverride(row int) int {
	if meta := g.itemMetadata(row); meta != nil {
		return meta.Height
	}
	return 0
}

func (g *Grid) subscribe() {
	cn, ok := g.data.(ChangeNotifier)
	if !ok {
		return
	}
	g.unsubscribe = append(g.unsubscribe,
		cn.OnRowCountChanged(func(_, _ int) {
			g.UpdateRowCount()
			g.Render()
		}),
		cn.OnRowsChanged(func(rows []int) {
			g.InvalidateRows(rows...)
			g.Render()
		}),
	)
}

func (g *Grid) unsubscribeData() {
	for _, fn := range g.unsubscribe {
		fn()
	}
	g.unsubscribe = nil
}

// SetData binds a new data source. With scrollToTop the viewport returns to
// the first row.
func (g *Grid) SetData(data DataSource, scrollToTop bool) error {
	if data == nil {
		return ErrNoDataSource
	}
	g.lock.CommitCurrentEdit()
	g.unsubscribeData()
	g.data = data
	g.subscribe()
	g.invalidateAllRowsStructurally()
	g.UpdateRowCount()
	if scrollToTop {
		g.ScrollTo(0)
	}
	g.Render()
	return nil
}

// Columns returns the leaf columns in display order.
func (g *Grid) Columns() []*Column { return g.cols.leaves }

// ColumnTree returns the columns as declared, including header groups.
func (g *Grid) ColumnTree() []*Column { return g.cols.roots }

// ColumnIndex returns the leaf index of the column with id.
func (g *Grid) ColumnIndex(id string) (int, bool) {
	i, ok := g.cols.byID[id]
	return i, ok
}

func (g *Grid) columnWidths() []int {
	widths := make([]int, len(g.cols.leaves))
	for i, c := range g.cols.leaves {
		widths[i] = c.Width
	}
	return widths
}

// SetColumns replaces the column tree. Cached nodes beyond the new column
// count are dropped regardless of their state.
func (g *Grid) SetColumns(columns []*Column) error {
	cols, err := flattenColumns(columns, g.opts.DefaultColumnWidth)
	if err != nil {
		return fmt.Errorf("configure columns: %w", err)
	}
	g.lock.CommitCurrentEdit()
	prev := len(g.cols.leaves)
	g.cols = cols
	n := len(cols.leaves)
	if n < prev {
		g.cache.TruncateColumns(n)
	}
	if g.active.set && g.active.cell >= n {
		g.ResetActiveCell()
	}
	g.pos.SetColumnWidths(g.columnWidths())
	g.spans.InvalidateAll()
	g.cache.MarkAllDirty()
	if g.opts.ForceFitColumns {
		g.AutosizeColumns()
	}
	g.vp.ScrollLeftTo(g.vp.ScrollLeft())
	g.Render()
	return nil
}

// UpdateColumnWidths applies the Width of every leaf column.
func (g *Grid) UpdateColumnWidths() {
	for i, c := range g.cols.leaves {
		c.Width = clampWidth(c, c.Width)
		if g.pos.ColumnWidth(i) != c.Width {
			g.pos.SetColumnWidth(i, c.Width)
			g.cache.MarkColumnDirty(i)
		}
	}
	// Spanning nodes change width with any column they cover.
	g.cache.MarkAllDirty()
	g.events.OnColumnsResized.Notify(ColumnsResizedArgs{Columns: g.cols.leaves})
	g.Render()
}

// SetColumnWidth resizes one leaf column.
func (g *Grid) SetColumnWidth(cell, width int) {
	if cell < 0 || cell >= len(g.cols.leaves) {
		return
	}
	g.cols.leaves[cell].Width = width
	g.UpdateColumnWidths()
}

// AutosizeColumns distributes the viewport width over the resizable
// columns within their bounds.
func (g *Grid) AutosizeColumns() {
	avail, _ := g.vp.Size()
	if avail <= 0 {
		return
	}
	leaves := g.cols.leaves
	widths := make([]int, len(leaves))
	total := 0
	for i, c := range leaves {
		widths[i] = clampWidth(c, c.Width)
		total += widths[i]
	}

	// Shrink proportionally until the columns fit or none can shrink.
	for total > avail {
		shrinkable := 0
		for i, c := range leaves {
			if c.Resizable && widths[i] > max(c.MinWidth, 1) {
				shrinkable++
			}
		}
		if shrinkable == 0 {
			break
		}
		step := max(1, (total-avail)/shrinkable)
		for i, c := range leaves {
			if total <= avail {
				break
			}
			if !c.Resizable {
				continue
			}
			d := min(step, widths[i]-max(c.MinWidth, 1), total-avail)
			if d > 0 {
				widths[i] -= d
				total -= d
			}
		}
	}

	// Grow into the remaining space.
	for total < avail {
		growable := 0
		for i, c := range leaves {
			if c.Resizable && (c.MaxWidth == 0 || widths[i] < c.MaxWidth) {
				growable++
			}
		}
		if growable == 0 {
			break
		}
		step := max(1, (avail-total)/growable)
		for i, c := range leaves {
			if total >= avail {
				break
			}
			if !c.Resizable || (c.MaxWidth > 0 && widths[i] >= c.MaxWidth) {
				continue
			}
			d := min(step, avail-total)
			if c.MaxWidth > 0 {
				d = min(d, c.MaxWidth-widths[i])
			}
			widths[i] += d
			total += d
		}
	}

	changed := false
	for i, c := range leaves {
		if c.Width != widths[i] {
			c.Width = widths[i]
			changed = true
		}
	}
	if changed {
		g.UpdateColumnWidths()
	}
}

// UpdateRowCount reconciles the caches with the current data length. Rows
// past the end are evicted, and the active cell is reset when its row is
// gone.
func (g *Grid) UpdateRowCount() {
	length := g.DataLength()
	withNew := g.DataLengthIncludingAddNew()

	// Spans clamped at the old end of the data may extend now.
	g.pos.Truncate(length)
	g.spans.InvalidateFrom(max(0, min(length, g.rowCount)-1))
	g.rowCount = length

	for _, row := range g.cache.Rows() {
		if row >= withNew {
			g.cache.RemoveRow(row)
		}
	}
	g.reconciledGen = g.cache.Generation()

	if g.active.set && g.active.row >= withNew {
		g.ResetActiveCell()
	}
	if g.vp.UpdateCanvasHeight() {
		g.invalidateAllRowsStructurally()
	}
	g.selected = slices.DeleteFunc(g.selected, func(r int) bool { return r >= length })
}

// Invalidate refreshes everything: row count, every node and the render.
func (g *Grid) Invalidate() {
	g.UpdateRowCount()
	g.InvalidateAllRows()
	g.Render()
}

// InvalidateAllRows flags every rendered node as stale.
func (g *Grid) InvalidateAllRows() {
	g.pos.InvalidateRowsFrom(0)
	g.spans.InvalidateAll()
	g.cache.MarkAllDirty()
}

// invalidateAllRowsStructurally drops every cached row except the active
// cell. It is used when cached nodes no longer line up with their rows.
func (g *Grid) invalidateAllRowsStructurally() {
	g.pos.InvalidateRowsFrom(0)
	g.spans.InvalidateAll()
	for _, row := range g.cache.Rows() {
		rc := g.cache.Row(row)
		for _, cell := range rc.SortedCells() {
			if g.isActiveCoord(row, cell) {
				rc.setDirty(cell)
				continue
			}
			g.cache.RemoveCell(row, cell)
		}
		if len(rc.Cells) == 0 {
			g.cache.RemoveRow(row)
		}
	}
	g.cache.generation++
}

// InvalidateRows flags the given rows as stale. Offsets and spans from the
// lowest row onward are recomputed.
func (g *Grid) InvalidateRows(rows ...int) {
	if len(rows) == 0 {
		return
	}
	lowest := slices.Min(rows)
	g.pos.InvalidateRowsFrom(lowest)
	g.spans.InvalidateRows(rows...)
	for _, r := range rows {
		g.cache.MarkRowDirty(r)
	}
	// Rows below shift when a height changes.
	for _, r := range g.cache.Rows() {
		if r > lowest {
			rc := g.cache.Row(r)
			rc.Top = g.pos.RowTop(r) - g.vp.Offset()
		}
	}
}

// InvalidateRow flags one row as stale.
func (g *Grid) InvalidateRow(row int) { g.InvalidateRows(row) }

// InvalidateColumns flags the given leaf columns as stale in every row.
func (g *Grid) InvalidateColumns(cells ...int) {
	for _, c := range cells {
		g.cache.MarkColumnDirty(c)
	}
}

// InvalidateColumn flags one leaf column as stale.
func (g *Grid) InvalidateColumn(cell int) { g.InvalidateColumns(cell) }

// InvalidateCell flags one cell as stale.
func (g *Grid) InvalidateCell(row, cell int) {
	g.cache.MarkCellDirty(row, cell)
}

// UpdateCell refreshes one cell immediately. An editor open on the cell
// reloads its value.
func (g *Grid) UpdateCell(row, cell int) {
	g.reloadEditor(row, cell)
	g.InvalidateCell(row, cell)
	g.refreshNow(row, cell)
}

// UpdateRow refreshes one row immediately.
func (g *Grid) UpdateRow(row int) {
	g.reloadEditor(row, -1)
	g.refreshRow(row)
}

// refreshRow rebuilds the stale nodes of row, leaving an open editor alone.
func (g *Grid) refreshRow(row int) {
	g.cache.MarkRowDirty(row)
	rc := g.cache.Row(row)
	if rc == nil {
		return
	}
	batch := &renderBatch{}
	for _, cell := range rc.SortedCells() {
		g.refreshCell(rc, cell, batch)
	}
	batch.flush()
	g.restoreFocus()
}

func (g *Grid) reloadEditor(row, cell int) {
	s := g.session
	if s == nil || s.row != row || (cell >= 0 && s.cell != cell) {
		return
	}
	if item := g.Item(row); item != nil {
		s.editor.LoadValue(item)
	}
}

// SetSize sets the area of the grid in cells.
func (g *Grid) SetSize(width, height int) {
	if width == g.width && height == g.height && g.measured {
		return
	}
	g.width, g.height = max(width, 0), max(height, 0)
	g.measured = true
	g.ResizeCanvas()
}

// Size returns the area of the grid in cells.
func (g *Grid) Size() (width, height int) { return g.width, g.height }

// ResizeCanvas recomputes the layout after a size or chrome change.
func (g *Grid) ResizeCanvas() {
	g.layout = g.computeLayout()
	g.vp.SetSize(g.layout.viewport.Dx(), g.layout.viewport.Dy())
	if g.opts.ForceFitColumns {
		g.AutosizeColumns()
	}
	if g.vp.UpdateCanvasHeight() {
		g.invalidateAllRowsStructurally()
	}
	g.vp.ScrollLeftTo(g.vp.ScrollLeft())
	g.Render()
	g.events.OnViewportChanged.Notify(g.vp.CurrentVisibleRange())
}

// Focus gives keyboard focus to the grid.
func (g *Grid) Focus() {
	if g.focused {
		return
	}
	g.focused = true
	g.syncFocus()
	if g.active.set {
		g.cache.MarkCellDirty(g.active.row, g.active.cell)
		g.refreshNow(g.active.row, g.active.cell)
	}
}

// Blur removes keyboard focus from the grid. A pending edit is committed
// when CommitOnBlur is set, unless focus is only parked during a render.
func (g *Grid) Blur() {
	if g.transfer.inProgress() || !g.focused {
		return
	}
	g.focused = false
	if g.session != nil && g.opts.CommitOnBlur {
		g.lock.CommitCurrentEdit()
	}
	g.focus = focusTracker{}
	if g.active.set {
		g.cache.MarkCellDirty(g.active.row, g.active.cell)
		g.refreshNow(g.active.row, g.active.cell)
	}
}

// Focused reports whether the grid has keyboard focus.
func (g *Grid) Focused() bool { return g.focused }

// Destroy releases the edit lock, clears every cache and returns the grid
// to idle. The grid must not be used afterwards.
func (g *Grid) Destroy() {
	if g.destroyed {
		return
	}
	g.events.OnBeforeDestroy.Notify(struct{}{})
	if g.lock.IsActive(g.ctrl) {
		g.lock.CancelCurrentEdit()
	}
	g.makeActiveCellNormal()
	g.unsubscribeData()
	g.active = activeCell{}
	g.focus = focusTracker{}
	g.transfer = focusTransfer{}
	for _, row := range g.cache.Rows() {
		g.cache.RemoveRow(row)
	}
	g.sched.cancel()
	g.post.cancel()
	g.hits.reset()
	g.pending = nil
	g.events.clear()
	g.destroyed = true
	slog.Debug("Destroyed grid", "id", g.id)
}

// queue adds a command to be returned by the next Update or Flush.
func (g *Grid) queue(cmd tea.Cmd) {
	if cmd != nil {
		g.pending = append(g.pending, cmd)
	}
}

// Flush returns the commands produced by direct method calls since the
// last Update.
func (g *Grid) Flush() tea.Cmd {
	if len(g.pending) == 0 {
		return nil
	}
	cmds := g.pending
	g.pending = nil
	return tea.Batch(cmds...)
}
