package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newPositions(rows, height int, overrides map[int]int) *PositionCache {
	return NewPositionCache(height, 10, func() int { return rows }, func(row int) int { return overrides[row] })
}

func TestPositionCache_UniformRows(t *testing.T) {
	t.Parallel()

	p := newPositions(100, 25, nil)
	require.Equal(t, 0, p.RowTop(0))
	require.Equal(t, 1250, p.RowTop(50))
	require.Equal(t, 2500, p.TotalHeight())
	require.Equal(t, 50, p.RowFromPosition(1250))
	require.Equal(t, 50, p.RowFromPosition(1274))
	require.Equal(t, 51, p.RowFromPosition(1275))
}

func TestPositionCache_VariableHeights(t *testing.T) {
	t.Parallel()

	p := newPositions(10, 1, map[int]int{2: 3, 5: 4})
	tops := []int{0, 1, 2, 5, 6, 7, 11, 12, 13, 14}
	for row, top := range tops {
		require.Equal(t, top, p.RowTop(row), "row %d", row)
	}
	require.Equal(t, 15, p.TotalHeight())

	pos := p.RowWithFractionFromPosition(3, true)
	require.Equal(t, 2, pos.Position)
	require.Equal(t, 3, pos.Size)
	require.InDelta(t, 1.0/3, pos.Fraction, 1e-9)

	pos = p.RowWithFractionFromPosition(10, true)
	require.Equal(t, 5, pos.Position)
	require.InDelta(t, 0.75, pos.Fraction, 1e-9)
}

func TestPositionCache_FindsEveryRow(t *testing.T) {
	t.Parallel()

	overrides := map[int]int{}
	for r := 0; r < 500; r += 7 {
		overrides[r] = 1 + r%5
	}
	p := newPositions(500, 2, overrides)
	for row := range 500 {
		top := p.RowTop(row)
		for y := top; y < p.RowBottom(row); y++ {
			require.Equal(t, row, p.RowFromPosition(y), "y %d", y)
		}
	}
}

func TestPositionCache_InvalidateFrom(t *testing.T) {
	t.Parallel()

	overrides := map[int]int{}
	p := newPositions(10, 1, overrides)
	require.Equal(t, 10, p.TotalHeight())

	overrides[3] = 5
	require.Equal(t, 10, p.TotalHeight(), "offsets are cached until invalidated")

	p.InvalidateRowsFrom(3)
	require.Equal(t, 3, p.RowTop(3))
	require.Equal(t, 8, p.RowTop(4))
	require.Equal(t, 14, p.TotalHeight())
}

func TestPositionCache_Extrapolation(t *testing.T) {
	t.Parallel()

	p := newPositions(4, 2, nil)
	require.Equal(t, 12, p.RowTop(6))
	require.Equal(t, -4, p.RowTop(-2))

	pos := p.RowWithFractionFromPosition(13, false)
	require.Equal(t, 6, pos.Position)
	require.InDelta(t, 0.5, pos.Fraction, 1e-9)

	pos = p.RowWithFractionFromPosition(-3, false)
	require.Equal(t, -2, pos.Position)
	require.InDelta(t, 0.5, pos.Fraction, 1e-9)

	pos = p.RowWithFractionFromPosition(100, true)
	require.Equal(t, 3, pos.Position)
	pos = p.RowWithFractionFromPosition(-5, true)
	require.Equal(t, 0, pos.Position)
}

func TestPositionCache_Columns(t *testing.T) {
	t.Parallel()

	p := newPositions(1, 1, nil)
	p.SetColumnWidths([]int{4, 6, 10})
	require.Equal(t, 0, p.ColumnOffset(0))
	require.Equal(t, 4, p.ColumnOffset(1))
	require.Equal(t, 10, p.ColumnOffset(2))
	require.Equal(t, 20, p.ColumnOffset(3))
	require.Equal(t, 20, p.TotalWidth())

	pos := p.ColumnWithFractionFromPosition(7, true)
	require.Equal(t, 1, pos.Position)
	require.InDelta(t, 0.5, pos.Fraction, 1e-9)

	p.SetColumnWidth(0, 8)
	require.Equal(t, 8, p.ColumnOffset(1))
	require.Equal(t, 24, p.TotalWidth())

	// Past the last column lookups extrapolate with the default width.
	require.Equal(t, 3, p.ColumnWithFractionFromPosition(24, false).Position)
	require.Equal(t, 4, p.ColumnWithFractionFromPosition(34, false).Position)
	require.Equal(t, 2, p.ColumnWithFractionFromPosition(34, true).Position)
}

func TestPositionCache_Empty(t *testing.T) {
	t.Parallel()

	p := newPositions(0, 1, nil)
	require.Equal(t, 0, p.TotalHeight())
	require.Equal(t, 0, p.RowFromPosition(5))
	require.Equal(t, 5, p.RowWithFractionFromPosition(5, false).Position)
}
