package grid

import "github.com/charmbracelet/x/exp/ordered"

// Direction is a navigation direction.
type Direction uint8

// Navigation directions.
const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
	DirPrev
	DirNext
	DirHome
	DirEnd
)

func (d Direction) String() string {
	return [...]string{"up", "down", "left", "right", "prev", "next", "home", "end"}[d]
}

// navPos is the result of a step: the owner to activate and the cursor.
type navPos struct {
	row, cell  int
	posY, posX int
}

// Step returns the coordinate reached from the span owner (row, cell) with
// the cursor at (posY, posX), without changing any state. Prev and Next
// accept row and cell of -1 to start before the first cell.
func (g *Grid) Step(dir Direction, row, cell, posY, posX int) (Coord, bool) {
	p, ok := g.step(dir, navPos{row: row, cell: cell, posY: posY, posX: posX})
	return Coord{Row: p.row, Cell: p.cell}, ok
}

func (g *Grid) step(dir Direction, from navPos) (navPos, bool) {
	if dir != DirPrev && dir != DirNext {
		// Keep the cursor inside the footprint of the owner.
		from.posY = ordered.Clamp(from.posY, from.row, from.row+max(g.spans.Rowspan(from.row, from.cell), 1)-1)
		from.posX = ordered.Clamp(from.posX, from.cell, from.cell+max(g.spans.Colspan(from.row, from.cell), 1)-1)
	}
	switch dir {
	case DirUp:
		return g.gotoUp(from)
	case DirDown:
		return g.gotoDown(from)
	case DirLeft:
		return g.gotoLeft(from)
	case DirRight:
		return g.gotoRight(from)
	case DirPrev:
		return g.gotoPrev(from)
	case DirNext:
		return g.gotoNext(from)
	case DirHome:
		return g.gotoRowStart(from)
	case DirEnd:
		return g.gotoRowEnd(from)
	}
	return navPos{}, false
}

func (g *Grid) colspanAt(row, cell int) int { return max(g.spans.Colspan(row, cell), 1) }
func (g *Grid) rowspanAt(row, cell int) int { return max(g.spans.Rowspan(row, cell), 1) }

func (g *Grid) gotoRight(p navPos) (navPos, bool) {
	n := len(g.cols.leaves)
	for c := p.cell + g.colspanAt(p.row, p.cell); c < n; {
		or, oc := g.spans.Owner(p.posY, c)
		if g.CanCellBeActive(or, oc) {
			return navPos{row: or, cell: oc, posY: p.posY, posX: c}, true
		}
		c = oc + g.colspanAt(or, oc)
	}
	return navPos{}, false
}

func (g *Grid) gotoLeft(p navPos) (navPos, bool) {
	for c := p.cell - 1; c >= 0; {
		or, oc := g.spans.Owner(p.posY, c)
		if g.CanCellBeActive(or, oc) {
			return navPos{row: or, cell: oc, posY: p.posY, posX: oc}, true
		}
		c = oc - 1
	}
	return navPos{}, false
}

func (g *Grid) gotoDown(p navPos) (navPos, bool) {
	rows := g.DataLengthIncludingAddNew()
	for r := p.row + g.rowspanAt(p.row, p.cell); r < rows; {
		or, oc := g.spans.Owner(r, p.posX)
		if g.CanCellBeActive(or, oc) {
			return navPos{row: or, cell: oc, posY: r, posX: p.posX}, true
		}
		r = or + g.rowspanAt(or, oc)
	}
	return navPos{}, false
}

func (g *Grid) gotoUp(p navPos) (navPos, bool) {
	for r := p.row - 1; r >= 0; {
		or, oc := g.spans.Owner(r, p.posX)
		if g.CanCellBeActive(or, oc) {
			return navPos{row: or, cell: oc, posY: r, posX: p.posX}, true
		}
		r = or - 1
	}
	return navPos{}, false
}

func (g *Grid) gotoRowStart(p navPos) (navPos, bool) {
	n := len(g.cols.leaves)
	for c := 0; c < n; {
		or, oc := g.spans.Owner(p.posY, c)
		if g.CanCellBeActive(or, oc) {
			return navPos{row: or, cell: oc, posY: p.posY, posX: oc}, true
		}
		c = oc + g.colspanAt(or, oc)
	}
	return navPos{}, false
}

func (g *Grid) gotoRowEnd(p navPos) (navPos, bool) {
	n := len(g.cols.leaves)
	var last navPos
	found := false
	for c := 0; c < n; {
		or, oc := g.spans.Owner(p.posY, c)
		if g.CanCellBeActive(or, oc) {
			last, found = navPos{row: or, cell: oc, posY: p.posY, posX: oc}, true
		}
		c = oc + g.colspanAt(or, oc)
	}
	return last, found
}

// gotoNext walks owners in row-major order, wrapping at the end. A full
// cycle visits every focusable owner once; a single focusable owner steps
// onto itself.
func (g *Grid) gotoNext(p navPos) (navPos, bool) {
	return g.cycle(p, 1)
}

func (g *Grid) gotoPrev(p navPos) (navPos, bool) {
	return g.cycle(p, -1)
}

func (g *Grid) cycle(p navPos, dir int) (navPos, bool) {
	n := len(g.cols.leaves)
	total := g.DataLengthIncludingAddNew() * n
	if total == 0 {
		return navPos{}, false
	}
	start := p.row*n + p.cell
	if p.row < 0 || p.cell < 0 {
		start = -1
		if dir < 0 {
			start = total
		}
	}
	idx := start
	for range total {
		idx += dir
		switch {
		case idx >= total:
			idx = 0
		case idx < 0:
			idx = total - 1
		}
		r, c := idx/n, idx%n
		if g.CanCellBeActive(r, c) {
			return navPos{row: r, cell: c, posY: r, posX: c}, true
		}
	}
	return navPos{}, false
}

// Navigate moves the active cell one step in dir. It reports whether the
// active cell moved; when no focusable cell remains in that direction the
// active cell stays and its node is re-synchronized.
func (g *Grid) Navigate(dir Direction) bool {
	if g.destroyed || !g.opts.EnableCellNavigation {
		return false
	}
	if !g.active.set && dir != DirPrev && dir != DirNext {
		return false
	}
	if !g.lock.CommitCurrentEdit() {
		return true
	}
	g.syncFocus()

	from := navPos{row: -1, cell: -1, posY: -1, posX: -1}
	if g.active.set {
		from = navPos{row: g.active.row, cell: g.active.cell, posY: g.active.posY, posX: g.active.posX}
	}
	p, ok := g.step(dir, from)
	if !ok {
		if g.active.set {
			g.setActiveCellInternal(g.active.row, g.active.cell, editOff)
		}
		return false
	}
	isAddNewRow := p.row == g.DataLength()
	g.ScrollCellIntoView(p.row, p.cell, !isAddNewRow)
	g.setActiveCellInternal(p.row, p.cell, editAuto)
	g.active.posY, g.active.posX = p.posY, p.posX
	return true
}

// NavigateUp moves the active cell up.
func (g *Grid) NavigateUp() bool { return g.Navigate(DirUp) }

// NavigateDown moves the active cell down.
func (g *Grid) NavigateDown() bool { return g.Navigate(DirDown) }

// NavigateLeft moves the active cell left.
func (g *Grid) NavigateLeft() bool { return g.Navigate(DirLeft) }

// NavigateRight moves the active cell right.
func (g *Grid) NavigateRight() bool { return g.Navigate(DirRight) }

// NavigatePrev moves to the previous focusable cell, wrapping around.
func (g *Grid) NavigatePrev() bool { return g.Navigate(DirPrev) }

// NavigateNext moves to the next focusable cell, wrapping around.
func (g *Grid) NavigateNext() bool { return g.Navigate(DirNext) }

// NavigateHome moves to the first focusable cell of the cursor row.
func (g *Grid) NavigateHome() bool { return g.Navigate(DirHome) }

// NavigateEnd moves to the last focusable cell of the cursor row.
func (g *Grid) NavigateEnd() bool { return g.Navigate(DirEnd) }

// NavigatePageDown scrolls one page down and moves the active cell along.
func (g *Grid) NavigatePageDown() bool { return g.scrollPage(1) }

// NavigatePageUp scrolls one page up and moves the active cell along.
func (g *Grid) NavigatePageUp() bool { return g.scrollPage(-1) }

func (g *Grid) scrollPage(dir int) bool {
	if g.destroyed || !g.lock.CommitCurrentEdit() {
		return false
	}
	visible := g.vp.CurrentVisibleRange()
	delta := dir * max(1, visible.Bottom-visible.Top)
	rows := g.DataLengthIncludingAddNew()
	if rows == 0 {
		return false
	}
	top := ordered.Clamp(visible.Top+delta, 0, rows-1)
	g.scrollTo(g.pos.RowTop(top))
	g.Render()

	if !g.opts.EnableCellNavigation || !g.active.set {
		return true
	}
	row := ordered.Clamp(g.active.row+delta, 0, rows-1)
	posX := g.active.posX
	found := false
	var target Coord
	for c := 0; c <= posX && c < len(g.cols.leaves); {
		or, oc := g.spans.Owner(row, c)
		if g.CanCellBeActive(or, oc) {
			target, found = Coord{Row: or, Cell: oc}, true
		}
		c = oc + g.colspanAt(or, oc)
	}
	if !found {
		g.ResetActiveCell()
		return true
	}
	g.setActiveCellInternal(target.Row, target.Cell, editAuto)
	g.active.posY, g.active.posX = row, posX
	return true
}
