package grid

import (
	"log/slog"
	"math"

	"github.com/charmbracelet/x/exp/ordered"
)

// Range is a window of rows and canvas columns.
type Range struct {
	// Top and Bottom are inclusive row indexes.
	Top, Bottom int
	// LeftPx and RightPx bound the horizontal window on the canvas.
	LeftPx, RightPx int
	// LeftCell and RightCell are inclusive column indexes.
	LeftCell, RightCell int

	// TopFraction is the part of the top row hidden above the viewport.
	// BottomFraction is the part of the bottom row that is visible.
	TopFraction    float64
	BottomFraction float64
}

// ContainsRow reports whether row lies in the range.
func (r Range) ContainsRow(row int) bool { return row >= r.Top && row <= r.Bottom }

// Viewport maps scroll offsets onto logical row and column ranges. Content
// taller than Capabilities.MaxCanvasHeight is split into pages: the canvas
// keeps a capped height and offset is added to every scroll position.
type Viewport struct {
	caps Capabilities
	pos  *PositionCache

	// rows returns the row count including the add-new row.
	rows func() int

	width, height int

	scrollTop, scrollLeft         int
	prevScrollTop, prevScrollLeft int
	lastRenderedScrollTop         int
	lastRenderedScrollLeft        int
	vScrollDir                    int

	// Paging: th is the real content height, h the canvas height, ph the
	// page height, n the number of pages and cj the jump per page.
	th, h, ph, n int
	cj           float64
	page         int
	offset       int

	minBuffer, maxBuffer int
}

// NewViewport returns a viewport over pos.
func NewViewport(caps Capabilities, pos *PositionCache, rows func() int, minBuffer, maxBuffer int) *Viewport {
	v := &Viewport{
		caps:       caps,
		pos:        pos,
		rows:       rows,
		vScrollDir: 1,
		n:          1,
		minBuffer:  max(minBuffer, 0),
		maxBuffer:  max(maxBuffer, minBuffer),
	}
	return v
}

// SetSize sets the visible area of the viewport.
func (v *Viewport) SetSize(width, height int) {
	v.width, v.height = max(width, 0), max(height, 0)
}

// Size returns the visible area of the viewport.
func (v *Viewport) Size() (width, height int) { return v.width, v.height }

// ScrollTop returns the canvas scroll position of the current page.
func (v *Viewport) ScrollTop() int { return v.scrollTop }

// ScrollLeft returns the horizontal scroll position.
func (v *Viewport) ScrollLeft() int { return v.scrollLeft }

// Offset returns the page offset added to the canvas scroll position.
func (v *Viewport) Offset() int { return v.offset }

// Page returns the current page and the number of pages.
func (v *Viewport) Page() (page, pages int) { return v.page, v.n }

// CanvasHeight returns the height of the capped canvas.
func (v *Viewport) CanvasHeight() int { return v.h }

// ContentHeight returns the real height of the content.
func (v *Viewport) ContentHeight() int { return v.th }

// ScrollDirection returns 1 when the last vertical scroll went down, -1 when
// it went up.
func (v *Viewport) ScrollDirection() int { return v.vScrollDir }

func (v *Viewport) contentRowsHeight() int {
	return v.pos.RowTop(v.rows())
}

// UpdateCanvasHeight recomputes paging after the row count or heights
// changed. It reports whether the page offset moved.
func (v *Viewport) UpdateCanvasHeight() bool {
	oldOffset := v.offset
	v.th = max(v.contentRowsHeight(), v.height-v.caps.ScrollbarHeight)
	maxH := max(v.caps.MaxCanvasHeight, 1)
	if v.th < maxH {
		v.h, v.ph, v.n, v.cj = v.th, v.th, 1, 0
	} else {
		v.h = maxH
		v.ph = max(v.h/100, 1)
		v.n = int(math.Floor(float64(v.th) / float64(v.ph)))
		v.cj = float64(v.th-v.h) / float64(v.n-1)
	}
	if v.page >= v.n {
		v.page = v.n - 1
	}
	v.offset = int(math.Round(float64(v.page) * v.cj))
	v.scrollTop = ordered.Clamp(v.scrollTop, 0, max(v.h-v.height, 0))
	v.prevScrollTop = v.scrollTop
	return v.offset != oldOffset
}

// ScrollTo scrolls so that content offset y is at the top. It reports
// whether the page offset changed, in which case every rendered row must be
// repositioned.
func (v *Viewport) ScrollTo(y int) bool {
	y = ordered.Clamp(y, 0, max(v.th-v.height+v.caps.ScrollbarHeight, 0))
	oldOffset := v.offset
	v.page = min(v.n-1, y/max(v.ph, 1))
	v.offset = int(math.Round(float64(v.page) * v.cj))
	newScrollTop := y - v.offset
	if v.prevScrollTop != newScrollTop {
		if v.prevScrollTop+oldOffset < newScrollTop+v.offset {
			v.vScrollDir = 1
		} else {
			v.vScrollDir = -1
		}
		v.scrollTop = newScrollTop
		v.prevScrollTop = newScrollTop
	}
	if v.offset != oldOffset {
		slog.Debug("Viewport page switched", "page", v.page, "pages", v.n, "offset", v.offset)
		return true
	}
	return false
}

// HandleScroll applies raw canvas scroll positions. Small vertical moves
// stay on the current page; jumps of a viewport or more pick the page
// proportionally to the scrollbar position.
func (v *Viewport) HandleScroll(scrollTop, scrollLeft int) (vertical, horizontal, pageChanged bool) {
	scrollTop = ordered.Clamp(scrollTop, 0, max(v.h-v.height, 0))
	scrollLeft = ordered.Clamp(scrollLeft, 0, max(v.pos.TotalWidth()-v.width, 0))

	if scrollLeft != v.prevScrollLeft {
		v.prevScrollLeft = scrollLeft
		v.scrollLeft = scrollLeft
		horizontal = true
	}

	dist := scrollTop - v.prevScrollTop
	if dist == 0 {
		return false, horizontal, false
	}
	vertical = true
	if dist > 0 {
		v.vScrollDir = 1
	} else {
		v.vScrollDir = -1
	}
	v.prevScrollTop = scrollTop
	v.scrollTop = scrollTop

	if abs(dist) < v.height {
		return vertical, horizontal, v.ScrollTo(scrollTop + v.offset)
	}
	oldOffset := v.offset
	if v.h == v.height || v.h <= v.height {
		v.page = 0
	} else {
		ratio := float64(v.th-v.height) / float64(v.h-v.height)
		v.page = min(v.n-1, int(math.Floor(float64(scrollTop)*ratio/float64(v.ph))))
	}
	v.offset = int(math.Round(float64(v.page) * v.cj))
	return vertical, horizontal, v.offset != oldOffset
}

// ScrollBy scrolls by delta content lines.
func (v *Viewport) ScrollBy(delta int) bool {
	return v.ScrollTo(v.scrollTop + v.offset + delta)
}

// ScrollLeftTo sets the horizontal scroll position.
func (v *Viewport) ScrollLeftTo(x int) bool {
	x = ordered.Clamp(x, 0, max(v.pos.TotalWidth()-v.width, 0))
	if x == v.scrollLeft {
		return false
	}
	v.scrollLeft, v.prevScrollLeft = x, x
	return true
}

// VisibleRange returns the partially visible rows and columns for the given
// canvas scroll positions.
func (v *Viewport) VisibleRange(viewportTop, viewportLeft int) Range {
	// Unclipped lookups reach the add-new row past the data.
	rows := v.rows()
	y := viewportTop + v.offset
	top := v.pos.RowWithFractionFromPosition(y, false)
	lastY := y + max(v.height, 1) - 1
	bottom := v.pos.RowWithFractionFromPosition(lastY, false)
	top.Position = ordered.Clamp(top.Position, 0, max(rows-1, 0))
	bottom.Position = ordered.Clamp(bottom.Position, 0, max(rows-1, 0))

	r := Range{
		Top:         top.Position,
		Bottom:      bottom.Position,
		LeftPx:      viewportLeft,
		RightPx:     viewportLeft + v.width,
		TopFraction: top.Fraction,
	}
	if bottom.Size > 0 {
		bottomTop := v.pos.RowTop(bottom.Position)
		r.BottomFraction = math.Min(1, float64(lastY-bottomTop+1)/float64(bottom.Size))
	}
	r.LeftCell = v.pos.ColumnWithFractionFromPosition(r.LeftPx, true).Position
	r.RightCell = v.pos.ColumnWithFractionFromPosition(max(r.RightPx-1, 0), true).Position
	return r
}

// CurrentVisibleRange returns the visible range at the current scroll
// position.
func (v *Viewport) CurrentVisibleRange() Range {
	return v.VisibleRange(v.scrollTop, v.scrollLeft)
}

// RenderedRange returns the visible range widened by a buffer that favors
// the current scroll direction.
func (v *Viewport) RenderedRange(viewportTop, viewportLeft int) Range {
	r := v.VisibleRange(viewportTop, viewportLeft)
	buffer := int(math.Round(float64(v.height) / float64(v.pos.DefaultRowHeight())))
	buffer = ordered.Clamp(buffer, v.minBuffer, v.maxBuffer)

	switch v.vScrollDir {
	case -1:
		r.Top -= buffer
		r.Bottom += v.minBuffer
	case 1:
		r.Top -= v.minBuffer
		r.Bottom += buffer
	default:
		r.Top -= v.minBuffer
		r.Bottom += v.minBuffer
	}
	r.Top = max(0, r.Top)
	r.Bottom = min(v.rows()-1, r.Bottom)

	total := v.pos.TotalWidth()
	r.LeftPx = max(0, r.LeftPx-v.width)
	r.RightPx = min(total, r.RightPx+v.width)
	r.LeftCell = v.pos.ColumnWithFractionFromPosition(r.LeftPx, true).Position
	r.RightCell = v.pos.ColumnWithFractionFromPosition(max(r.RightPx-1, 0), true).Position
	return r
}

// CurrentRenderedRange returns the rendered range at the current scroll
// position.
func (v *Viewport) CurrentRenderedRange() Range {
	return v.RenderedRange(v.scrollTop, v.scrollLeft)
}

// markRendered records the scroll position of the last render pass.
func (v *Viewport) markRendered() {
	v.lastRenderedScrollTop = v.scrollTop
	v.lastRenderedScrollLeft = v.scrollLeft
}

// needsRender reports whether the viewport moved far enough since the last
// render that new rows may be exposed.
func (v *Viewport) needsRender() bool {
	dv := abs(v.scrollTop - v.lastRenderedScrollTop)
	dh := abs(v.scrollLeft - v.lastRenderedScrollLeft)
	return dv > 0 || dh > 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
