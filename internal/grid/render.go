package grid

import (
	"log/slog"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
)

// renderTickMsg drives a deferred render pass and its continuations.
type renderTickMsg struct {
	grid string
	seq  int
}

// postRenderTickMsg drives asynchronous post-render processing.
type postRenderTickMsg struct {
	grid string
	seq  int
}

// renderTask is a resumable render pass. rows lists the rows to build, the
// visible rows first; cursor is the next row to build.
type renderTask struct {
	rng      Range
	visible  Range
	rows     []int
	cursor   int
	rendered []int
}

func (t *renderTask) done() bool { return t.cursor >= len(t.rows) }

// scheduler owns the single debounce timer of the grid. A new request bumps
// seq, which discards any pending tick and task.
type scheduler struct {
	seq       int
	scheduled bool
	task      *renderTask
}

func (s *scheduler) cancel() {
	s.seq++
	s.scheduled = false
	s.task = nil
}

// RenderPending reports whether a deferred render or a continuation is
// outstanding.
func (g *Grid) RenderPending() bool { return g.sched.scheduled || g.sched.task != nil }

func (g *Grid) ready() bool {
	return !g.destroyed && g.measured && g.vp.height > 0
}

// Render synchronously renders the current rendered range. A pending
// deferred render is discarded.
func (g *Grid) Render() {
	g.sched.cancel()
	if !g.ready() {
		return
	}
	task := g.beginPass()
	g.runTask(task, time.Time{})
}

// RequestRender schedules a deferred render. The active cell is refreshed
// immediately.
func (g *Grid) RequestRender() {
	if !g.ready() {
		return
	}
	g.ensureActiveCellRendered()
	if g.opts.RenderDelay <= 0 && g.opts.RenderBudget <= 0 {
		g.Render()
		return
	}
	g.sched.cancel()
	g.sched.scheduled = true
	seq := g.sched.seq
	id := g.id
	g.queue(tea.Tick(g.opts.RenderDelay, func(time.Time) tea.Msg {
		return renderTickMsg{grid: id, seq: seq}
	}))
}

func (g *Grid) handleRenderTick(msg renderTickMsg) {
	if msg.seq != g.sched.seq || !g.ready() {
		return
	}
	g.sched.scheduled = false
	if g.sched.task == nil {
		g.sched.task = g.beginPass()
	}
	var deadline time.Time
	if g.opts.RenderBudget > 0 {
		deadline = g.now().Add(g.opts.RenderBudget)
	}
	if g.runTask(g.sched.task, deadline) {
		g.sched.task = nil
		return
	}
	// Yield and continue with the remaining rows on the next tick.
	seq, id := msg.seq, g.id
	g.queue(func() tea.Msg { return renderTickMsg{grid: id, seq: seq} })
}

// beginPass evicts everything outside the rendered range and prepares a
// task over the rows inside it.
func (g *Grid) beginPass() *renderTask {
	if g.cache.Generation() != g.reconciledGen {
		g.UpdateRowCount()
	}
	visible := g.vp.CurrentVisibleRange()
	rendered := g.vp.CurrentRenderedRange()
	g.events.OnRenderStart.Notify(RenderArgs{Range: rendered})

	g.cleanUpRows(rendered)
	g.ensureActiveCellRendered()

	t := &renderTask{rng: rendered, visible: visible}
	if g.DataLengthIncludingAddNew() == 0 {
		return t
	}
	for r := visible.Top; r <= visible.Bottom; r++ {
		t.rows = append(t.rows, r)
	}
	if g.vp.ScrollDirection() < 0 {
		for r := visible.Top - 1; r >= rendered.Top; r-- {
			t.rows = append(t.rows, r)
		}
		for r := visible.Bottom + 1; r <= rendered.Bottom; r++ {
			t.rows = append(t.rows, r)
		}
	} else {
		for r := visible.Bottom + 1; r <= rendered.Bottom; r++ {
			t.rows = append(t.rows, r)
		}
		for r := visible.Top - 1; r >= rendered.Top; r-- {
			t.rows = append(t.rows, r)
		}
	}
	return t
}

// runTask builds rows until the task is done or the deadline passes. A zero
// deadline never yields. It reports whether the task completed.
func (g *Grid) runTask(t *renderTask, deadline time.Time) bool {
	batch := &renderBatch{}
	for !t.done() {
		row := t.rows[t.cursor]
		if g.renderRow(row, t.rng, batch) {
			t.rendered = append(t.rendered, row)
		}
		t.cursor++
		if !deadline.IsZero() && !t.done() && g.now().After(deadline) {
			break
		}
	}
	batch.flush()
	g.restoreFocus()

	if !t.done() {
		slog.Debug("Render pass yielded", "grid", g.id, "done", t.cursor, "rows", len(t.rows))
		g.events.OnRenderEnd.Notify(RenderArgs{Range: t.rng, Complete: false})
		return false
	}

	g.vp.markRendered()
	if len(t.rendered) > 0 {
		slices.Sort(t.rendered)
		g.events.OnRowsRendered.Notify(RowsRenderedArgs{Rows: t.rendered})
	}
	g.startPostProcessing(t.visible)
	g.events.OnRenderEnd.Notify(RenderArgs{Range: t.rng, Complete: true})
	return true
}

// cleanUpRows evicts every node outside rng. The active cell survives, and so
// do span owners above or left of the range whose span reaches into it.
func (g *Grid) cleanUpRows(rng Range) {
	evicted := 0
	for _, row := range g.cache.Rows() {
		rc := g.cache.Row(row)
		for _, cell := range rc.SortedCells() {
			if g.isActiveCoord(row, cell) {
				continue
			}
			if g.nodeIntersects(rc.Cells[cell], rng) && g.spans.IsOwner(row, cell) {
				continue
			}
			g.cache.RemoveCell(row, cell)
			evicted++
		}
		if len(rc.Cells) == 0 && len(rc.RenderQueue) == 0 {
			g.cache.RemoveRow(row)
		}
	}
	if evicted > 0 {
		slog.Debug("Evicted cell nodes", "grid", g.id, "count", evicted, "top", rng.Top, "bottom", rng.Bottom)
	}
}

func (g *Grid) nodeIntersects(n *CellNode, rng Range) bool {
	rowspan := max(n.Rowspan, 1)
	colspan := max(n.Colspan, 1)
	if n.Row > rng.Bottom || n.Row+rowspan-1 < rng.Top {
		return false
	}
	return n.Cell <= rng.RightCell && n.Cell+colspan-1 >= rng.LeftCell
}

// renderRow creates the missing nodes of row inside rng and refreshes the
// stale ones. It reports whether anything was built.
func (g *Grid) renderRow(row int, rng Range, batch *renderBatch) bool {
	before := len(batch.jobs)
	n := len(g.cols.leaves)
	for cell := rng.LeftCell; cell <= rng.RightCell && cell < n; {
		or, oc := g.spans.Owner(row, cell)
		g.ensureCell(or, oc, batch)
		cell = oc + max(g.spans.Colspan(or, oc), 1)
	}
	if rc := g.cache.Row(row); rc != nil && rc.DirtyCount > 0 {
		for _, cell := range rc.SortedCells() {
			if rc.Dirty[cell] {
				g.refreshCell(rc, cell, batch)
			}
		}
	}
	return len(batch.jobs) > before
}

func (g *Grid) rowTop(row int) int {
	return g.pos.RowTop(row) - g.vp.Offset()
}

// ensureCell queues a node for (row, cell) unless one is queued. An existing
// stale node is refreshed, which covers span owners whose row lies outside
// the rendered range.
func (g *Grid) ensureCell(row, cell int, batch *renderBatch) {
	rc := g.cache.ensureRow(row, g.rowTop(row))
	if rc.Cells[cell] != nil {
		if rc.Dirty[cell] {
			g.refreshCell(rc, cell, batch)
		}
		return
	}
	if slices.Contains(rc.RenderQueue, cell) {
		return
	}
	node := g.cache.newNode(row, cell)
	content, classes := g.cellContent(row, cell)
	g.sizeNode(node)
	node.Content, node.Classes = content, classes
	node.Hash = contentHash(content, classes)
	rc.RenderQueue = append(rc.RenderQueue, cell)
	batch.add(cellJob{
		node:    node,
		row:     rc,
		content: content,
		style:   g.styles.cellStyle(classes),
		fresh:   true,
	})
}

func (g *Grid) sizeNode(node *CellNode) {
	node.Colspan = max(g.spans.Colspan(node.Row, node.Cell), 1)
	node.Rowspan = max(g.spans.Rowspan(node.Row, node.Cell), 1)
	node.Width = g.pos.ColumnOffset(node.Cell+node.Colspan) - g.pos.ColumnOffset(node.Cell)
	node.Height = g.pos.RowTop(node.Row+node.Rowspan) - g.pos.RowTop(node.Row)
}

// refreshCell rebuilds a stale node. Nodes that lost span ownership are
// dropped; identical content is not rebuilt.
func (g *Grid) refreshCell(rc *RowCache, cell int, batch *renderBatch) {
	node := rc.Cells[cell]
	rc.clearDirty(cell)
	if node == nil {
		return
	}
	if !g.spans.IsOwner(rc.Row, cell) || rc.Row >= g.DataLengthIncludingAddNew() || cell >= len(g.cols.leaves) {
		g.cache.RemoveCell(rc.Row, cell)
		return
	}
	rc.Top = g.rowTop(rc.Row)
	content, classes := g.cellContent(rc.Row, cell)
	w, h, hash := node.Width, node.Height, contentHash(content, classes)
	g.sizeNode(node)
	if hash == node.Hash && w == node.Width && h == node.Height && node.Buffer != nil {
		return
	}
	node.Content, node.Classes, node.Hash = content, classes, hash
	node.postProcessed = false
	batch.add(cellJob{
		node:    node,
		row:     rc,
		content: content,
		style:   g.styles.cellStyle(classes),
	})
}

// refreshNow synchronously refreshes one node if it is stale.
func (g *Grid) refreshNow(row, cell int) {
	rc := g.cache.Row(row)
	if rc == nil || !rc.Dirty[cell] {
		return
	}
	batch := &renderBatch{}
	g.refreshCell(rc, cell, batch)
	batch.flush()
	g.restoreFocus()
}

// ensureActiveCellRendered builds or refreshes the node of the active cell
// right away. Focus continuity never waits for a deferred pass.
func (g *Grid) ensureActiveCellRendered() {
	if !g.active.set || g.active.row >= g.DataLengthIncludingAddNew() {
		return
	}
	batch := &renderBatch{}
	g.ensureCell(g.active.row, g.active.cell, batch)
	batch.flush()
	g.restoreFocus()
}

// cellContent formats a cell and collects its classes.
func (g *Grid) cellContent(row, cell int) (string, []string) {
	col := g.cols.leaves[cell]
	meta := g.itemMetadata(row)
	cm := meta.column(col.ID, cell)

	var classes []string
	if col.CSSClass != "" {
		classes = append(classes, col.CSSClass)
	}
	if row%2 == 1 {
		classes = append(classes, ClassOdd)
	}
	if row == g.DataLength() && g.opts.EnableAddRow {
		classes = append(classes, ClassNewRow)
	}
	if meta != nil {
		classes = append(classes, meta.CSSClasses...)
	}
	if cm != nil {
		classes = append(classes, cm.CSSClasses...)
	}
	if g.isRowSelected(row) && g.CanCellBeSelected(row, cell) {
		classes = append(classes, ClassSelected)
	}
	classes = append(classes, g.cssClassesFor(row, col.ID)...)
	if g.isActiveCoord(row, cell) {
		if g.focused {
			classes = append(classes, ClassActive)
		} else {
			classes = append(classes, ClassActiveBlur)
		}
		if g.session != nil {
			classes = append(classes, ClassEditing)
			if g.session.invalid {
				classes = append(classes, ClassInvalid)
			}
		}
	}

	item := g.Item(row)
	if item == nil {
		return "", classes
	}
	f := g.formatterFor(col, meta, cm)
	return f(row, cell, g.opts.ValueExtractor(item, col), col, item, cm), classes
}

// formatterFor resolves the most specific formatter: cell metadata, row
// metadata, column, then the default.
func (g *Grid) formatterFor(col *Column, meta *ItemMetadata, cm *ColumnMetadata) Formatter {
	switch {
	case cm != nil && cm.Formatter != nil:
		return cm.Formatter
	case meta != nil && meta.Formatter != nil:
		return meta.Formatter
	case col.Formatter != nil:
		return col.Formatter
	}
	return g.opts.DefaultFormatter
}

// postRender tracks the rows waiting for asynchronous post-processing as a
// watermark rather than a queue.
type postRender struct {
	seq      int
	active   bool
	from, to int
}

func (p *postRender) cancel() {
	p.seq++
	p.active = false
}

func (g *Grid) hasAsyncColumns() bool {
	for _, c := range g.cols.leaves {
		if c.AsyncPostRender != nil {
			return true
		}
	}
	return false
}

func (g *Grid) startPostProcessing(visible Range) {
	if !g.opts.EnableAsyncPostRender || !g.hasAsyncColumns() {
		return
	}
	from, to := visible.Top, min(visible.Bottom, g.DataLength()-1)
	if to < from {
		return
	}
	if g.post.active {
		from, to = min(from, g.post.from), max(to, g.post.to)
	}
	g.post.from, g.post.to = from, to
	g.post.active = true
	g.post.seq++
	g.schedulePostRender()
}

func (g *Grid) schedulePostRender() {
	seq, id := g.post.seq, g.id
	g.queue(tea.Tick(g.opts.AsyncPostRenderDelay, func(time.Time) tea.Msg {
		return postRenderTickMsg{grid: id, seq: seq}
	}))
}

func (g *Grid) handlePostRenderTick(msg postRenderTickMsg) {
	if msg.seq != g.post.seq || !g.post.active || g.destroyed {
		return
	}
	var deadline time.Time
	if g.opts.AsyncPostRenderBudget > 0 {
		deadline = g.now().Add(g.opts.AsyncPostRenderBudget)
	}
	for g.post.from <= g.post.to {
		row := g.post.from
		g.post.from++
		g.postProcessRow(row)
		if !deadline.IsZero() && g.post.from <= g.post.to && g.now().After(deadline) {
			g.schedulePostRender()
			return
		}
	}
	g.post.active = false
}

func (g *Grid) postProcessRow(row int) {
	rc := g.cache.Row(row)
	item := g.Item(row)
	if rc == nil || item == nil {
		return
	}
	batch := &renderBatch{}
	for _, cell := range rc.SortedCells() {
		node := rc.Cells[cell]
		col := g.cols.leaves[cell]
		if col.AsyncPostRender == nil || node.postProcessed || rc.Dirty[cell] {
			continue
		}
		node.postProcessed = true
		content := col.AsyncPostRender(row, cell, item, col, node.Content)
		if content == node.Content {
			continue
		}
		node.Content = content
		node.Hash = contentHash(content, node.Classes)
		batch.add(cellJob{
			node:    node,
			row:     rc,
			content: content,
			style:   g.styles.cellStyle(node.Classes),
		})
	}
	batch.flush()
}
