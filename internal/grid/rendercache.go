package grid

import (
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/zeebo/xxh3"
)

// CellNode is a rendered cell. Its ID changes whenever the node is recreated,
// which is how focus continuity is tracked.
type CellNode struct {
	ID   uint64
	Row  int
	Cell int

	Colspan int
	Rowspan int
	Width   int
	Height  int

	Content string
	Classes []string
	Hash    uint64
	Buffer  *uv.ScreenBuffer

	postProcessed bool
}

// RowCache holds the rendered cells of one row.
type RowCache struct {
	Row int
	// Top is the row offset on the canvas, page offset applied.
	Top int

	Cells map[int]*CellNode
	// Dirty flags cells whose content must be refreshed. DirtyCount is the
	// number of true entries.
	Dirty      map[int]bool
	DirtyCount int
	// RenderQueue holds cells created in the current batch that have not
	// been attached to the row yet.
	RenderQueue []int
}

func (rc *RowCache) setDirty(cell int) {
	if _, ok := rc.Cells[cell]; !ok || rc.Dirty[cell] {
		return
	}
	rc.Dirty[cell] = true
	rc.DirtyCount++
}

func (rc *RowCache) clearDirty(cell int) {
	if rc.Dirty[cell] {
		delete(rc.Dirty, cell)
		rc.DirtyCount--
	}
}

// SortedCells returns the cached cell indexes in ascending order.
func (rc *RowCache) SortedCells() []int {
	cells := make([]int, 0, len(rc.Cells))
	for c := range rc.Cells {
		cells = append(cells, c)
	}
	slices.Sort(cells)
	return cells
}

// RenderCache is the only mapping from coordinates to rendered nodes.
type RenderCache struct {
	rows   map[int]*RowCache
	nextID uint64

	// generation is bumped by wholesale invalidation; UpdateRowCount
	// reconciles it by evicting rows past the data length.
	generation int

	// onRemove is called before a node leaves the cache.
	onRemove func(*CellNode)
}

// NewRenderCache returns an empty cache.
func NewRenderCache() *RenderCache {
	return &RenderCache{rows: make(map[int]*RowCache)}
}

// Row returns the cache entry of row, or nil.
func (c *RenderCache) Row(row int) *RowCache { return c.rows[row] }

// Node returns the node at (row, cell), or nil.
func (c *RenderCache) Node(row, cell int) *CellNode {
	rc := c.rows[row]
	if rc == nil {
		return nil
	}
	return rc.Cells[cell]
}

// Rows returns the cached rows in ascending order.
func (c *RenderCache) Rows() []int {
	rows := make([]int, 0, len(c.rows))
	for r := range c.rows {
		rows = append(rows, r)
	}
	slices.Sort(rows)
	return rows
}

// Len returns the number of cached rows.
func (c *RenderCache) Len() int { return len(c.rows) }

// NodeCount returns the number of cached nodes.
func (c *RenderCache) NodeCount() int {
	n := 0
	for _, rc := range c.rows {
		n += len(rc.Cells)
	}
	return n
}

// Generation returns the wholesale invalidation counter.
func (c *RenderCache) Generation() int { return c.generation }

func (c *RenderCache) ensureRow(row, top int) *RowCache {
	rc := c.rows[row]
	if rc == nil {
		rc = &RowCache{
			Row:   row,
			Cells: make(map[int]*CellNode),
			Dirty: make(map[int]bool),
		}
		c.rows[row] = rc
	}
	rc.Top = top
	return rc
}

// MarkCellDirty flags a node for refresh.
func (c *RenderCache) MarkCellDirty(row, cell int) {
	if rc := c.rows[row]; rc != nil {
		rc.setDirty(cell)
	}
}

// MarkRowDirty flags every node of row for refresh.
func (c *RenderCache) MarkRowDirty(row int) {
	rc := c.rows[row]
	if rc == nil {
		return
	}
	for cell := range rc.Cells {
		rc.setDirty(cell)
	}
}

// MarkColumnDirty flags every node in column cell for refresh.
func (c *RenderCache) MarkColumnDirty(cell int) {
	for _, rc := range c.rows {
		rc.setDirty(cell)
	}
}

// MarkAllDirty flags every node and bumps the generation.
func (c *RenderCache) MarkAllDirty() {
	for row := range c.rows {
		c.MarkRowDirty(row)
	}
	c.generation++
}

// MarkSpanDirty flags every node covered by s.
func (c *RenderCache) MarkSpanDirty(s *Span) {
	for r := s.Row; r <= s.LastRow(); r++ {
		for cell := s.Cell; cell <= s.LastCell(); cell++ {
			c.MarkCellDirty(r, cell)
		}
	}
}

// RemoveCell drops the node at (row, cell).
func (c *RenderCache) RemoveCell(row, cell int) {
	rc := c.rows[row]
	if rc == nil {
		return
	}
	node := rc.Cells[cell]
	if node == nil {
		return
	}
	if c.onRemove != nil {
		c.onRemove(node)
	}
	rc.clearDirty(cell)
	delete(rc.Cells, cell)
}

// RemoveRow drops row and all its nodes.
func (c *RenderCache) RemoveRow(row int) {
	rc := c.rows[row]
	if rc == nil {
		return
	}
	for _, cell := range rc.SortedCells() {
		c.RemoveCell(row, cell)
	}
	delete(c.rows, row)
}

// RemoveRowsFrom drops every row at or beyond row.
func (c *RenderCache) RemoveRowsFrom(row int) []int {
	var removed []int
	for _, r := range c.Rows() {
		if r >= row {
			c.RemoveRow(r)
			removed = append(removed, r)
		}
	}
	return removed
}

// TruncateColumns drops every node whose column index is at or beyond n,
// regardless of its state.
func (c *RenderCache) TruncateColumns(n int) {
	for _, row := range c.Rows() {
		rc := c.rows[row]
		for _, cell := range rc.SortedCells() {
			if cell >= n {
				c.RemoveCell(row, cell)
			}
		}
	}
}

func (c *RenderCache) newNode(row, cell int) *CellNode {
	c.nextID++
	return &CellNode{ID: c.nextID, Row: row, Cell: cell}
}

// cellJob is one cell waiting to be built by a batch.
type cellJob struct {
	node    *CellNode
	row     *RowCache
	content string
	style   lipgloss.Style
	fresh   bool
}

// renderBatch accumulates cell content and turns it into buffers with a
// single draw into a scratch buffer.
type renderBatch struct {
	jobs  []cellJob
	width int
	lines int
}

func (b *renderBatch) add(j cellJob) {
	b.jobs = append(b.jobs, j)
	b.width = max(b.width, j.node.Width)
	b.lines += j.node.Height
}

func (b *renderBatch) empty() bool { return len(b.jobs) == 0 }

// flush draws every queued cell into one scratch buffer and copies each
// cell's region into its own buffer.
func (b *renderBatch) flush() {
	if b.empty() {
		return
	}
	var sb strings.Builder
	for i, j := range b.jobs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(fitBlock(j.content, j.node.Width, j.node.Height, j.style))
	}
	scratch := uv.NewScreenBuffer(max(b.width, 1), max(b.lines, 1))
	uv.NewStyledString(sb.String()).Draw(&scratch, scratch.Bounds())

	y := 0
	for _, j := range b.jobs {
		n := j.node
		buf := uv.NewScreenBuffer(max(n.Width, 1), max(n.Height, 1))
		for dy := 0; dy < n.Height; dy++ {
			line := scratch.Buffer.Line(y + dy)
			for x := 0; x < n.Width && x < len(line); x++ {
				if c := line.At(x); !c.IsZero() {
					buf.SetCell(x, dy, c)
				}
			}
		}
		n.Buffer = &buf
		y += n.Height
		if j.fresh {
			j.row.Cells[n.Cell] = n
			j.row.RenderQueue = slices.DeleteFunc(j.row.RenderQueue, func(c int) bool { return c == n.Cell })
		}
	}
	b.jobs = b.jobs[:0]
	b.width, b.lines = 0, 0
}

// fitBlock truncates and pads content to exactly width x height cells and
// applies style line by line.
func fitBlock(content string, width, height int, style lipgloss.Style) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := make([]string, height)
	for i := range height {
		var line string
		if i < len(lines) {
			line = ansi.Truncate(lines[i], width, "…")
		}
		if w := ansi.StringWidth(line); w < width {
			line += strings.Repeat(" ", width-w)
		}
		out[i] = style.Render(line)
	}
	return strings.Join(out, "\n")
}

func contentHash(content string, classes []string) uint64 {
	if len(classes) == 0 {
		return xxh3.HashString(content)
	}
	return xxh3.HashString(content + "\x00" + strings.Join(classes, "\x00"))
}
