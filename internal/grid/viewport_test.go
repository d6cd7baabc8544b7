package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestViewport(rows, rowHeight, maxCanvas, height int) *Viewport {
	p := NewPositionCache(rowHeight, 10, func() int { return rows }, nil)
	p.SetColumnWidths([]int{10, 10, 10, 10, 10})
	v := NewViewport(Capabilities{MaxCanvasHeight: maxCanvas}, p, func() int { return rows }, 3, 50)
	v.SetSize(30, height)
	v.UpdateCanvasHeight()
	return v
}

func TestViewport_VisibleRange(t *testing.T) {
	t.Parallel()

	v := newTestViewport(100, 25, DefaultMaxCanvasHeight, 100)
	r := v.VisibleRange(0, 0)
	require.Equal(t, 0, r.Top)
	require.Equal(t, 3, r.Bottom)
	require.Equal(t, 0, r.LeftCell)
	require.Equal(t, 2, r.RightCell)

	r = v.VisibleRange(30, 15)
	require.Equal(t, 1, r.Top)
	require.InDelta(t, 0.2, r.TopFraction, 1e-9)
	require.Equal(t, 5, r.Bottom)
	require.Equal(t, 1, r.LeftCell)
	require.Equal(t, 4, r.RightCell)
}

func TestViewport_RenderedRangeFollowsScrollDirection(t *testing.T) {
	t.Parallel()

	v := newTestViewport(1000, 1, DefaultMaxCanvasHeight, 10)
	require.False(t, v.ScrollTo(500))
	require.Equal(t, 1, v.ScrollDirection())

	r := v.CurrentRenderedRange()
	require.Equal(t, 497, r.Top)
	require.Equal(t, 519, r.Bottom)

	v.ScrollTo(400)
	require.Equal(t, -1, v.ScrollDirection())
	r = v.CurrentRenderedRange()
	require.Equal(t, 390, r.Top)
	require.Equal(t, 412, r.Bottom)
}

func TestViewport_RenderedRangeClamps(t *testing.T) {
	t.Parallel()

	v := newTestViewport(5, 1, DefaultMaxCanvasHeight, 10)
	r := v.CurrentRenderedRange()
	require.Equal(t, 0, r.Top)
	require.Equal(t, 4, r.Bottom)
	require.Equal(t, 0, r.LeftPx)
	require.Equal(t, 50, r.RightPx)
	require.Equal(t, 4, r.RightCell)
}

func TestViewport_Paging(t *testing.T) {
	t.Parallel()

	v := newTestViewport(5000, 1, 1000, 10)
	page, pages := v.Page()
	require.Equal(t, 0, page)
	require.Equal(t, 500, pages)
	require.Equal(t, 1000, v.CanvasHeight())
	require.Equal(t, 5000, v.ContentHeight())

	require.True(t, v.ScrollTo(4000))
	page, _ = v.Page()
	require.Equal(t, 400, page)
	require.Equal(t, 3206, v.Offset())
	require.Equal(t, 794, v.ScrollTop())
	require.Equal(t, 4000, v.CurrentVisibleRange().Top)

	// The last page maps the bottom of the canvas onto the last row.
	v.ScrollTo(1 << 30)
	require.Equal(t, 4000, v.Offset())
	require.Equal(t, 990, v.ScrollTop())
	r := v.CurrentVisibleRange()
	require.Equal(t, 4990, r.Top)
	require.Equal(t, 4999, r.Bottom)

	require.True(t, v.ScrollTo(0))
	require.Equal(t, 0, v.Offset())
	require.Equal(t, 0, v.ScrollTop())
}

func TestViewport_HandleScroll(t *testing.T) {
	t.Parallel()

	v := newTestViewport(5000, 1, 1000, 10)

	// A small move stays on the page.
	vertical, horizontal, paged := v.HandleScroll(3, 0)
	require.True(t, vertical)
	require.False(t, horizontal)
	require.False(t, paged)
	require.Equal(t, 3, v.CurrentVisibleRange().Top)

	// A jump picks the page proportionally to the thumb position.
	_, _, paged = v.HandleScroll(500, 0)
	require.True(t, paged)
	page, _ := v.Page()
	require.Equal(t, 252, page)
	require.Equal(t, 2020, v.Offset())
	require.Equal(t, 2520, v.CurrentVisibleRange().Top)

	_, horizontal, _ = v.HandleScroll(500, 7)
	require.True(t, horizontal)
	require.Equal(t, 7, v.ScrollLeft())
}

func TestViewport_ScrollLeftClamps(t *testing.T) {
	t.Parallel()

	v := newTestViewport(10, 1, DefaultMaxCanvasHeight, 5)
	require.True(t, v.ScrollLeftTo(100))
	require.Equal(t, 20, v.ScrollLeft())
	require.False(t, v.ScrollLeftTo(100))
}
