package grid

import (
	"strings"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
)

// layout is the placement of the grid chrome, relative to the grid origin.
type layout struct {
	area      uv.Rectangle
	header    uv.Rectangle
	headerRow uv.Rectangle
	footerRow uv.Rectangle
	viewport  uv.Rectangle
	scrollbar uv.Rectangle
}

func (g *Grid) computeLayout() layout {
	l := layout{area: uv.Rect(0, 0, g.width, g.height)}
	rest := l.area
	if g.opts.ShowColumnHeader {
		l.header, rest = uv.SplitVertical(rest, uv.Fixed(min(len(g.cols.headerRows), rest.Dy())))
	}
	if g.opts.ShowHeaderRow {
		l.headerRow, rest = uv.SplitVertical(rest, uv.Fixed(min(1, rest.Dy())))
	}
	if g.opts.ShowFooterRow {
		rest, l.footerRow = uv.SplitVertical(rest, uv.Fixed(max(rest.Dy()-1, 0)))
	}
	sw := min(max(g.caps.ScrollbarWidth, 0), rest.Dx())
	l.viewport, l.scrollbar = uv.SplitHorizontal(rest, uv.Fixed(rest.Dx()-sw))
	return l
}

// hitEntry is the node drawn at one screen cell of the viewport.
type hitEntry struct {
	id        uint64
	row, cell int
}

// hitMap records which node was drawn where by the last Draw.
type hitMap struct {
	area  uv.Rectangle
	cells []hitEntry
}

func (h *hitMap) reset() {
	h.area = uv.Rectangle{}
	h.cells = h.cells[:0]
}

func (h *hitMap) begin(area uv.Rectangle) {
	h.area = area
	n := area.Dx() * area.Dy()
	if cap(h.cells) < n {
		h.cells = make([]hitEntry, n)
	}
	h.cells = h.cells[:n]
	clear(h.cells)
}

func (h *hitMap) record(x, y int, n *CellNode) {
	if !uv.Pos(x, y).In(h.area) {
		return
	}
	i := (y-h.area.Min.Y)*h.area.Dx() + x - h.area.Min.X
	h.cells[i] = hitEntry{id: n.ID, row: n.Row, cell: n.Cell}
}

func (h *hitMap) lookup(x, y int) (hitEntry, bool) {
	if len(h.cells) == 0 || !uv.Pos(x, y).In(h.area) {
		return hitEntry{}, false
	}
	e := h.cells[(y-h.area.Min.Y)*h.area.Dx()+x-h.area.Min.X]
	return e, e.id != 0
}

// Draw draws the grid into area of scr. The grid is resized to area when
// they differ.
func (g *Grid) Draw(scr uv.Screen, area uv.Rectangle) {
	if g.destroyed || area.Empty() {
		return
	}
	if area.Dx() != g.width || area.Dy() != g.height || !g.measured {
		g.SetSize(area.Dx(), area.Dy())
	}
	g.originX, g.originY = area.Min.X, area.Min.Y
	at := func(r uv.Rectangle) uv.Rectangle { return r.Add(area.Min) }

	clearArea(scr, area)
	g.drawHeader(scr, at(g.layout.header))
	g.drawChromeRow(scr, at(g.layout.headerRow), g.opts.HeaderRowContent, g.styles.HeaderRow)
	g.drawChromeRow(scr, at(g.layout.footerRow), g.opts.FooterRowContent, g.styles.FooterRow)
	g.drawCells(scr, at(g.layout.viewport))
	g.drawEditor(scr, area.Min)
	g.drawScrollbar(scr, at(g.layout.scrollbar))
}

// View renders the grid to a string.
func (g *Grid) View() string {
	if g.width <= 0 || g.height <= 0 {
		return ""
	}
	buf := uv.NewScreenBuffer(g.width, g.height)
	g.Draw(&buf, buf.Bounds())
	return buf.Render()
}

func clearArea(scr uv.Screen, area uv.Rectangle) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			scr.SetCell(x, y, nil)
		}
	}
}

// blit copies src onto scr with src column srcX at dst.Min.X, clipped to
// dst.
func blit(scr uv.Screen, dst uv.Rectangle, src *uv.ScreenBuffer, srcX, srcY int) {
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		sy := srcY + y - dst.Min.Y
		if sy < 0 || sy >= src.Height() {
			continue
		}
		line := src.Line(sy)
		for x := dst.Min.X; x < dst.Max.X; x++ {
			sx := srcX + x - dst.Min.X
			if sx < 0 || sx >= len(line) {
				continue
			}
			// Wide cell placeholders are written by their leading cell.
			if c := line.At(sx); !c.IsZero() {
				scr.SetCell(x, y, c)
			}
		}
	}
}

// headerLine renders one full-width chrome line over the leaf columns.
func (g *Grid) headerLine(label func(c *Column) (string, lipgloss.Style), cols []*Column) *uv.ScreenBuffer {
	buf := uv.NewScreenBuffer(max(g.pos.TotalWidth(), 1), 1)
	for _, c := range cols {
		first, last := leafSpan(c)
		x := g.pos.ColumnOffset(first)
		w := g.pos.ColumnOffset(last+1) - x
		if w <= 0 {
			continue
		}
		text, style := label(c)
		uv.NewStyledString(fitBlock(text, w, 1, style)).Draw(&buf, uv.Rect(x, 0, w, 1))
	}
	return &buf
}

func (g *Grid) drawHeader(scr uv.Screen, area uv.Rectangle) {
	if area.Empty() {
		return
	}
	for depth, cols := range g.cols.headerRows {
		if depth >= area.Dy() {
			break
		}
		leafRow := depth == len(g.cols.headerRows)-1
		line := g.headerLine(func(c *Column) (string, lipgloss.Style) {
			if !leafRow && len(c.Children) > 0 {
				return g.headerLabel(c), g.styles.HeaderGroup
			}
			if len(c.Children) == 0 && c.depth < depth && !leafRow {
				// Shallow leaves are labeled on the leaf row only.
				return "", g.styles.Header
			}
			style := g.styles.Header
			if c.HeaderCSSClass != "" {
				style = g.styles.Classes[c.HeaderCSSClass].Inherit(style)
			}
			label := g.headerLabel(c)
			for _, sc := range g.sortCols {
				if sc.ColumnID == c.ID {
					style = g.styles.HeaderSort
					if sc.Asc {
						label += " " + g.styles.SortAsc
					} else {
						label += " " + g.styles.SortDesc
					}
				}
			}
			return label, style
		}, cols)
		row := uv.Rect(area.Min.X, area.Min.Y+depth, area.Dx(), 1)
		blit(scr, row, line, g.vp.ScrollLeft(), 0)
	}
}

func (g *Grid) headerLabel(c *Column) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

func (g *Grid) drawChromeRow(scr uv.Screen, area uv.Rectangle, content func(*Column) string, style lipgloss.Style) {
	if area.Empty() {
		return
	}
	line := g.headerLine(func(c *Column) (string, lipgloss.Style) {
		if content == nil {
			return "", style
		}
		return content(c), style
	}, g.cols.leaves)
	blit(scr, area, line, g.vp.ScrollLeft(), 0)
}

func (g *Grid) drawCells(scr uv.Screen, area uv.Rectangle) {
	g.hits.begin(area.Sub(uv.Pos(g.originX, g.originY)))
	if area.Empty() {
		return
	}
	scrollTop, scrollLeft := g.vp.ScrollTop(), g.vp.ScrollLeft()
	for _, row := range g.cache.Rows() {
		rc := g.cache.Row(row)
		top := g.rowTop(row) - scrollTop
		for _, cell := range rc.SortedCells() {
			n := rc.Cells[cell]
			if n.Buffer == nil {
				continue
			}
			left := g.pos.ColumnOffset(cell) - scrollLeft
			dst := uv.Rect(area.Min.X+left, area.Min.Y+top, n.Width, n.Height).Intersect(area)
			if dst.Empty() {
				continue
			}
			src := n.Buffer
			if g.Flashing(row, cell) {
				src = reversed(n.Buffer)
			}
			blit(scr, dst, src, dst.Min.X-(area.Min.X+left), dst.Min.Y-(area.Min.Y+top))
			for y := dst.Min.Y; y < dst.Max.Y; y++ {
				for x := dst.Min.X; x < dst.Max.X; x++ {
					g.hits.record(x-g.originX, y-g.originY, n)
				}
			}
		}
	}
}

// reversed returns a copy of buf with reverse video toggled on every cell.
func reversed(buf *uv.ScreenBuffer) *uv.ScreenBuffer {
	out := uv.NewScreenBuffer(buf.Width(), buf.Height())
	for y := range buf.Height() {
		line := buf.Line(y)
		for x := range len(line) {
			cell := line.At(x)
			if cell == nil || cell.IsZero() {
				continue
			}
			cell = cell.Clone()
			if cell.Style.Attrs&uv.AttrReverse != 0 {
				cell.Style.Attrs &^= uv.AttrReverse
			} else {
				cell.Style.Attrs |= uv.AttrReverse
			}
			out.SetCell(x, y, cell)
		}
	}
	return &out
}

func (g *Grid) drawEditor(scr uv.Screen, origin uv.Position) {
	s := g.session
	if s == nil {
		return
	}
	box := g.CellBox(s.row, s.cell)
	if !box.Visible {
		return
	}
	s.editor.Position(box)
	view := s.editor.View()
	if view == "" {
		return
	}
	lines := strings.Split(view, "\n")
	w := box.Width
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	h := max(box.Height, len(lines))
	rect := uv.Rect(box.X, box.Y, w, h).Add(origin).Intersect(g.layout.area.Add(origin))
	if rect.Empty() {
		return
	}
	clearArea(scr, rect)
	uv.NewStyledString(view).Draw(scr, rect)
}

func (g *Grid) drawScrollbar(scr uv.Screen, area uv.Rectangle) {
	if area.Empty() {
		return
	}
	height := area.Dy()
	content := g.vp.ContentHeight()
	track := g.styles.Scrollbar.Render("│")
	thumb := g.styles.ScrollThumb.Render("┃")
	size, pos := height, 0
	if content > height {
		size = max(1, height*height/content)
		top := g.vp.ScrollTop() + g.vp.Offset()
		pos = min(height-size, top*(height-size)/max(content-height, 1))
	}
	var sb strings.Builder
	for y := range height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		if y >= pos && y < pos+size && content > height {
			sb.WriteString(thumb)
		} else {
			sb.WriteString(track)
		}
	}
	uv.NewStyledString(sb.String()).Draw(scr, area)
}
