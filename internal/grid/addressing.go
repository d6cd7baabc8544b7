package grid

import (
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/exp/ordered"
)

// Zone is the part of the grid a point falls in.
type Zone uint8

// Possible Zone values.
const (
	ZoneOutside Zone = iota
	ZoneViewport
	ZoneHeader
	ZoneHeaderRow
	ZoneFooterRow
	ZoneScrollbar
)

func (z Zone) String() string {
	return [...]string{"outside", "viewport", "header", "header-row", "footer-row", "scrollbar"}[z]
}

// CellPoint is a resolved point. Row is -1 for chrome zones, which only map
// to a column.
type CellPoint struct {
	Row, Cell    int
	RowFraction  float64
	CellFraction float64
	// Span is the span covering the point, if any.
	Span *Span
	Zone Zone
}

// Coord returns the row and cell of the point.
func (p CellPoint) Coord() Coord { return Coord{Row: p.Row, Cell: p.Cell} }

// GetCellFromPoint resolves a position on the canvas of the current page to
// a cell. With clip the result is limited to the data;
// otherwise points past the edges extrapolate by the default row height and
// column width.
func (g *Grid) GetCellFromPoint(x, y int, clip bool) CellPoint {
	rows := g.DataLengthIncludingAddNew()
	r := g.pos.RowWithFractionFromPosition(y+g.vp.Offset(), false)
	c := g.pos.ColumnWithFractionFromPosition(x, false)
	if clip {
		r = g.clipRow(r, rows)
		c = g.pos.ColumnWithFractionFromPosition(x, true)
	}
	p := CellPoint{
		Row:          r.Position,
		Cell:         c.Position,
		RowFraction:  r.Fraction,
		CellFraction: c.Fraction,
		Zone:         ZoneViewport,
	}
	if p.Row >= 0 && p.Row < rows && p.Cell >= 0 && p.Cell < len(g.cols.leaves) {
		p.Span = g.spans.Spans(p.Row, p.Cell)
	}
	return p
}

// clipRow clamps an unclipped row lookup to [0, rows-1]. The add-new row
// lies past the data and is reached by the unclipped lookup.
func (g *Grid) clipRow(r Position, rows int) Position {
	if rows == 0 {
		return Position{Size: g.pos.DefaultRowHeight()}
	}
	if r.Position < 0 {
		return Position{Position: 0, Size: g.pos.RowHeight(0)}
	}
	if r.Position >= rows {
		last := rows - 1
		return Position{Position: last, Fraction: 0.999, Size: g.pos.RowHeight(last)}
	}
	return r
}

// GetCellFromEvent resolves a screen position, such as a mouse event, to a
// cell. Points on a rendered node resolve through the hit map of the last
// Draw. Points on the header chrome map to a column only, and points outside
// the grid clamp to the nearest edge of the viewport.
func (g *Grid) GetCellFromEvent(screenX, screenY int) CellPoint {
	x, y := screenX-g.originX, screenY-g.originY

	if e, ok := g.hits.lookup(x, y); ok {
		if n := g.cache.Node(e.row, e.cell); n != nil && n.ID == e.id {
			vp := g.layout.viewport
			p := g.GetCellFromPoint(x-vp.Min.X+g.vp.ScrollLeft(), y-vp.Min.Y+g.vp.ScrollTop(), true)
			p.Row, p.Cell = n.Row, n.Cell
			p.Span = g.spans.Spans(n.Row, n.Cell)
			return p
		}
	}

	l := g.layout
	chrome := func(zone Zone) CellPoint {
		c := g.pos.ColumnWithFractionFromPosition(x-l.viewport.Min.X+g.vp.ScrollLeft(), true)
		return CellPoint{Row: -1, Cell: c.Position, CellFraction: c.Fraction, Zone: zone}
	}
	switch {
	case inRect(x, y, l.viewport):
		return g.GetCellFromPoint(x-l.viewport.Min.X+g.vp.ScrollLeft(), y-l.viewport.Min.Y+g.vp.ScrollTop(), true)
	case inRect(x, y, l.header):
		return chrome(ZoneHeader)
	case inRect(x, y, l.headerRow):
		return chrome(ZoneHeaderRow)
	case inRect(x, y, l.footerRow):
		return chrome(ZoneFooterRow)
	case inRect(x, y, l.scrollbar):
		p := g.GetCellFromPoint(g.vp.ScrollLeft(), y-l.viewport.Min.Y+g.vp.ScrollTop(), true)
		p.Zone = ZoneScrollbar
		return p
	}

	// Outside the grid: clamp to the nearest edge of the viewport.
	vp := l.viewport
	if vp.Empty() {
		return CellPoint{Row: -1, Cell: -1, Zone: ZoneOutside}
	}
	cx := ordered.Clamp(x, vp.Min.X, vp.Max.X-1)
	cy := ordered.Clamp(y, vp.Min.Y, vp.Max.Y-1)
	p := g.GetCellFromPoint(cx-vp.Min.X+g.vp.ScrollLeft(), cy-vp.Min.Y+g.vp.ScrollTop(), true)
	p.Zone = ZoneOutside
	return p
}

func inRect(x, y int, r uv.Rectangle) bool { return uv.Pos(x, y).In(r) }
