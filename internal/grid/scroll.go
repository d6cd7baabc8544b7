package grid

// scrollTo moves the viewport so content offset y is at the top. A page
// switch invalidates every cached row.
func (g *Grid) scrollTo(y int) {
	if g.vp.ScrollTo(y) {
		g.InvalidateAllRows()
	}
	g.notifyScroll()
}

func (g *Grid) notifyScroll() {
	g.events.OnScroll.Notify(ScrollArgs{
		ScrollTop:  g.vp.ScrollTop() + g.vp.Offset(),
		ScrollLeft: g.vp.ScrollLeft(),
	})
}

// ScrollTo scrolls so that content offset y is at the top and schedules a
// render.
func (g *Grid) ScrollTo(y int) {
	g.scrollTo(y)
	g.RequestRender()
}

// ScrollBy scrolls the canvas by delta lines, as a mouse wheel does.
func (g *Grid) ScrollBy(delta int) {
	g.HandleScroll(g.vp.ScrollTop()+delta, g.vp.ScrollLeft())
}

// ScrollHorizontallyBy scrolls the canvas by delta columns.
func (g *Grid) ScrollHorizontallyBy(delta int) {
	g.HandleScroll(g.vp.ScrollTop(), g.vp.ScrollLeft()+delta)
}

// HandleScroll applies raw canvas scroll positions and schedules a render
// when the viewport moved.
func (g *Grid) HandleScroll(scrollTop, scrollLeft int) {
	vertical, horizontal, pageChanged := g.vp.HandleScroll(scrollTop, scrollLeft)
	if pageChanged {
		g.InvalidateAllRows()
	}
	if !vertical && !horizontal {
		return
	}
	g.notifyScroll()
	g.events.OnViewportChanged.Notify(g.vp.CurrentVisibleRange())
	g.RequestRender()
}

// ScrollRowToTop scrolls row to the top of the viewport.
func (g *Grid) ScrollRowToTop(row int) {
	g.scrollTo(g.pos.RowTop(row))
	g.Render()
}

// ScrollRowIntoView scrolls the least amount needed to show row. With
// doPaging, a row below the viewport is brought to the top and a row above
// it to the bottom.
func (g *Grid) ScrollRowIntoView(row int, doPaging bool) {
	if !g.ready() {
		return
	}
	_, vh := g.vp.Size()
	top := g.pos.RowTop(row)
	bottom := g.pos.RowBottom(row)
	atTop := top
	atBottom := bottom - vh + g.caps.ScrollbarHeight
	current := g.vp.ScrollTop() + g.vp.Offset()

	switch {
	case bottom > current+vh:
		if doPaging {
			g.scrollTo(atTop)
		} else {
			g.scrollTo(atBottom)
		}
		g.Render()
	case top < current:
		if doPaging {
			g.scrollTo(atBottom)
		} else {
			g.scrollTo(atTop)
		}
		g.Render()
	}
}

// ScrollColumnIntoView scrolls horizontally until cell is visible.
func (g *Grid) ScrollColumnIntoView(cell int) {
	if !g.ready() || cell < 0 || cell >= len(g.cols.leaves) {
		return
	}
	w, _ := g.vp.Size()
	left := g.pos.ColumnOffset(cell)
	right := g.pos.ColumnOffset(cell + 1)
	scrollLeft := g.vp.ScrollLeft()
	switch {
	case left < scrollLeft:
		scrollLeft = left
	case right > scrollLeft+w:
		scrollLeft = min(left, right-w)
	default:
		return
	}
	if g.vp.ScrollLeftTo(scrollLeft) {
		g.notifyScroll()
		g.Render()
	}
}

// ScrollCellIntoView scrolls until (row, cell) is visible.
func (g *Grid) ScrollCellIntoView(row, cell int, doPaging bool) {
	g.ScrollRowIntoView(row, doPaging)
	g.ScrollColumnIntoView(cell)
}

// CurrentVisibleRange returns the rows and columns at least partially
// visible in the viewport.
func (g *Grid) CurrentVisibleRange() Range { return g.vp.CurrentVisibleRange() }

// CurrentRenderedRange returns the range that has live cell nodes after a
// completed render.
func (g *Grid) CurrentRenderedRange() Range { return g.vp.CurrentRenderedRange() }
