package grid

import (
	"github.com/charmbracelet/x/exp/ordered"
)

// Position is the result of a pixel-to-index lookup. Fraction is the offset
// within the row or column, in [0, 1).
type Position struct {
	Position int
	Fraction float64
	Size     int
}

// rowEntry is a single row slot. Rows below validRows hold their final top.
type rowEntry struct {
	top    int
	height int
}

// PositionCache keeps cumulative offsets of variable height rows and variable
// width columns. Offsets are computed lazily by walking forward from the last
// valid entry.
type PositionCache struct {
	defaultRowHeight   int
	defaultColumnWidth int

	length func() int
	height func(row int) int

	rows      []rowEntry
	validRows int

	widths    []int
	lefts     []int // len(widths)+1; lefts[len(widths)] is the right edge
	validCols int   // lefts[0:validCols] are current
}

// NewPositionCache returns a cache for a data set of length() rows where
// height(row) reports the height override of a row, or 0 for the default.
func NewPositionCache(defaultRowHeight, defaultColumnWidth int, length func() int, height func(row int) int) *PositionCache {
	return &PositionCache{
		defaultRowHeight:   max(1, defaultRowHeight),
		defaultColumnWidth: max(1, defaultColumnWidth),
		length:             length,
		height:             height,
		lefts:              []int{0},
		validCols:          1,
	}
}

// DefaultRowHeight returns the height used for rows without an override.
func (p *PositionCache) DefaultRowHeight() int { return p.defaultRowHeight }

// SetDefaultRowHeight changes the default row height and invalidates every
// row.
func (p *PositionCache) SetDefaultRowHeight(h int) {
	p.defaultRowHeight = max(1, h)
	p.InvalidateRowsFrom(0)
}

func (p *PositionCache) rowHeight(row int) int {
	if p.height != nil {
		if h := p.height(row); h > 0 {
			return h
		}
	}
	return p.defaultRowHeight
}

// ensureRow computes entries up to and including row.
func (p *PositionCache) ensureRow(row int) {
	if row < p.validRows {
		return
	}
	if need := row + 1; need > len(p.rows) {
		if need <= cap(p.rows) {
			p.rows = p.rows[:need]
		} else {
			grown := make([]rowEntry, need, max(need, 2*cap(p.rows)))
			copy(grown, p.rows)
			p.rows = grown
		}
	}
	for i := p.validRows; i <= row; i++ {
		top := 0
		if i > 0 {
			top = p.rows[i-1].top + p.rows[i-1].height
		}
		p.rows[i] = rowEntry{top: top, height: p.rowHeight(i)}
	}
	p.validRows = row + 1
}

// InvalidateRow marks row and every row after it as needing recompute.
func (p *PositionCache) InvalidateRow(row int) {
	p.InvalidateRowsFrom(row)
}

// InvalidateRowsFrom marks every row from row onward as needing recompute.
func (p *PositionCache) InvalidateRowsFrom(row int) {
	row = max(row, 0)
	if row < p.validRows {
		p.validRows = row
	}
}

// Truncate drops entries at or beyond length. It is called when the data set
// shrinks.
func (p *PositionCache) Truncate(length int) {
	length = max(length, 0)
	if length < len(p.rows) {
		p.rows = p.rows[:length]
	}
	p.validRows = min(p.validRows, length)
}

// RowTop returns the top offset of row. Rows outside the data range are
// extrapolated with the default row height.
func (p *PositionCache) RowTop(row int) int {
	if row < 0 {
		return row * p.defaultRowHeight
	}
	n := p.length()
	if row >= n {
		return p.TotalHeight() + (row-n)*p.defaultRowHeight
	}
	p.ensureRow(row)
	return p.rows[row].top
}

// RowHeight returns the height of row.
func (p *PositionCache) RowHeight(row int) int {
	if row < 0 || row >= p.length() {
		return p.defaultRowHeight
	}
	p.ensureRow(row)
	return p.rows[row].height
}

// RowBottom returns the offset just past row.
func (p *PositionCache) RowBottom(row int) int {
	return p.RowTop(row) + p.RowHeight(row)
}

// TotalHeight returns the height of all rows.
func (p *PositionCache) TotalHeight() int {
	n := p.length()
	if n == 0 {
		return 0
	}
	p.ensureRow(n - 1)
	last := p.rows[n-1]
	return last.top + last.height
}

// RowFromPosition returns the row containing y, clipped to the data range.
func (p *PositionCache) RowFromPosition(y int) int {
	return p.RowWithFractionFromPosition(y, true).Position
}

// RowWithFractionFromPosition resolves y to a row. With clip unset, y values
// outside the data range produce extrapolated, out of range rows.
func (p *PositionCache) RowWithFractionFromPosition(y int, clip bool) Position {
	n := p.length()
	def := p.defaultRowHeight
	total := p.TotalHeight()

	switch {
	case n == 0 || y < 0 || y >= total:
		if clip {
			if n == 0 {
				return Position{Size: def}
			}
			y = ordered.Clamp(y, 0, total-1)
			break
		}
		base, start := 0, 0
		if y >= total {
			base, start = total, n
		}
		off := y - base
		idx := floorDiv(off, def)
		return Position{
			Position: start + idx,
			Fraction: float64(off-idx*def) / float64(def),
			Size:     def,
		}
	}

	row := searchOffsets(y, n, def, p.RowTop, p.RowHeight)
	top, h := p.RowTop(row), p.RowHeight(row)
	return Position{Position: row, Fraction: float64(y-top) / float64(h), Size: h}
}

// searchOffsets finds the index whose [start, start+size) contains v, where
// 0 <= v < total. It seeds a probe at v/def, takes up to two corrective
// probes, then falls back to a binary search over the remaining bracket.
func searchOffsets(v, n, def int, start, size func(int) int) int {
	lo, hi := 0, n-1
	probe := ordered.Clamp(v/def, lo, hi)
	step := max(1, n/1000)
	for range 3 {
		s := start(probe)
		if v < s {
			hi = probe - 1
			probe = max(lo, probe-step)
		} else if v >= s+size(probe) {
			lo = probe + 1
			probe = min(hi, probe+step)
		} else {
			return probe
		}
		if lo > hi {
			break
		}
	}
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if start(mid) <= v {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// SetColumnWidths replaces the column widths and invalidates all offsets.
func (p *PositionCache) SetColumnWidths(widths []int) {
	p.widths = append(p.widths[:0], widths...)
	if cap(p.lefts) >= len(widths)+1 {
		p.lefts = p.lefts[:len(widths)+1]
	} else {
		p.lefts = make([]int, len(widths)+1)
	}
	p.lefts[0] = 0
	p.validCols = 1
}

// SetColumnWidth changes one column width. Offsets after it are rebuilt
// lazily in a single pass on the next query.
func (p *PositionCache) SetColumnWidth(cell, width int) {
	if cell < 0 || cell >= len(p.widths) {
		return
	}
	p.widths[cell] = width
	p.validCols = min(p.validCols, cell+1)
}

// ColumnCount returns the number of columns.
func (p *PositionCache) ColumnCount() int { return len(p.widths) }

func (p *PositionCache) ensureColumn(edge int) {
	for i := p.validCols; i <= edge; i++ {
		p.lefts[i] = p.lefts[i-1] + p.widths[i-1]
	}
	p.validCols = max(p.validCols, edge+1)
}

// ColumnOffset returns the left offset of cell. ColumnOffset(ColumnCount())
// is the right edge of the last column.
func (p *PositionCache) ColumnOffset(cell int) int {
	n := len(p.widths)
	if cell < 0 {
		return cell * p.defaultColumnWidth
	}
	if cell > n {
		return p.ColumnOffset(n) + (cell-n)*p.defaultColumnWidth
	}
	p.ensureColumn(cell)
	return p.lefts[cell]
}

// ColumnWidth returns the width of cell.
func (p *PositionCache) ColumnWidth(cell int) int {
	if cell < 0 || cell >= len(p.widths) {
		return p.defaultColumnWidth
	}
	return p.widths[cell]
}

// TotalWidth returns the width of all columns.
func (p *PositionCache) TotalWidth() int {
	return p.ColumnOffset(len(p.widths))
}

// ColumnWithFractionFromPosition mirrors RowWithFractionFromPosition for
// columns.
func (p *PositionCache) ColumnWithFractionFromPosition(x int, clip bool) Position {
	n := len(p.widths)
	def := p.defaultColumnWidth
	total := p.TotalWidth()

	if n == 0 || x < 0 || x >= total {
		if clip {
			if n == 0 {
				return Position{Size: def}
			}
			x = ordered.Clamp(x, 0, total-1)
		} else {
			base, start := 0, 0
			if x >= total {
				base, start = total, n
			}
			off := x - base
			idx := floorDiv(off, def)
			return Position{
				Position: start + idx,
				Fraction: float64(off-idx*def) / float64(def),
				Size:     def,
			}
		}
	}

	cell := searchOffsets(x, n, def, p.ColumnOffset, p.ColumnWidth)
	left, w := p.ColumnOffset(cell), p.ColumnWidth(cell)
	return Position{Position: cell, Fraction: float64(x-left) / float64(w), Size: w}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
