package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceSource is a mutable data source with per-row metadata.
type sliceSource struct {
	items []Item
	meta  map[int]*ItemMetadata
}

func (s *sliceSource) Length() int { return len(s.items) }

func (s *sliceSource) Item(row int) Item {
	if row < 0 || row >= len(s.items) {
		return nil
	}
	return s.items[row]
}

func (s *sliceSource) ItemMetadata(row int) *ItemMetadata { return s.meta[row] }

func newSliceSource(rows int) *sliceSource {
	s := &sliceSource{meta: make(map[int]*ItemMetadata)}
	for r := range rows {
		s.items = append(s.items, Item{"a": r, "b": r * 10, "c": r * 100, "d": r * 1000})
	}
	return s
}

func spanColumns(n int) []*Column {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	cols := make([]*Column, n)
	for i := range n {
		cols[i] = NewColumn(ids[i], ids[i], ids[i])
		cols[i].index = i
	}
	return cols
}

func newTestSpanIndex(src *sliceSource, cols []*Column) *SpanIndex {
	return NewSpanIndex(func() DataSource { return src }, func() []*Column { return cols })
}

func TestSpanIndex_Rowspan(t *testing.T) {
	t.Parallel()

	src := newSliceSource(10)
	src.meta[2] = &ItemMetadata{Columns: map[string]*ColumnMetadata{"b": {Rowspan: 3}}}
	x := newTestSpanIndex(src, spanColumns(3))

	s := x.Spans(3, 1)
	require.NotNil(t, s)
	require.Equal(t, 2, s.Row)
	require.Equal(t, 1, s.Cell)
	require.Same(t, s, x.Spans(4, 1))
	require.Same(t, s, x.Spans(2, 1))
	require.Nil(t, x.Spans(5, 1))
	require.Nil(t, x.Spans(3, 0))

	require.True(t, x.IsOwner(2, 1))
	require.False(t, x.IsOwner(3, 1))
	r, c := x.Owner(4, 1)
	require.Equal(t, [2]int{2, 1}, [2]int{r, c})
	require.Equal(t, 3, x.Rowspan(2, 1))
	require.Equal(t, 2, x.Rowspan(3, 1))
	require.Equal(t, 1, x.Colspan(3, 1))
}

func TestSpanIndex_Colspan(t *testing.T) {
	t.Parallel()

	src := newSliceSource(4)
	src.meta[0] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{1: {Colspan: ColspanToEnd}}}
	src.meta[1] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Colspan: 10}}}
	x := newTestSpanIndex(src, spanColumns(4))

	s := x.Spans(0, 3)
	require.NotNil(t, s)
	require.Equal(t, 3, s.Colspan)
	require.Equal(t, 2, x.Colspan(0, 2))
	require.True(t, x.IsOwner(0, 0))

	s = x.Spans(1, 0)
	require.Equal(t, 4, s.Colspan, "colspan clamps to the column count")
}

func TestSpanIndex_RowspanClampedToLength(t *testing.T) {
	t.Parallel()

	src := newSliceSource(4)
	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Rowspan: 5}}}
	x := newTestSpanIndex(src, spanColumns(2))

	require.Equal(t, 2, x.Spans(2, 0).Rowspan)
	require.Nil(t, x.Spans(4, 0))
}

func TestSpanIndex_ColspanStopsAtRowspanFromAbove(t *testing.T) {
	t.Parallel()

	src := newSliceSource(4)
	src.meta[0] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{2: {Rowspan: 2}}}
	src.meta[1] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Colspan: 4}}}
	x := newTestSpanIndex(src, spanColumns(4))

	require.Equal(t, 2, x.Spans(1, 0).Colspan)
	r, c := x.Owner(1, 2)
	require.Equal(t, [2]int{0, 2}, [2]int{r, c})
	require.True(t, x.IsOwner(1, 3))
}

func TestSpanIndex_InvalidateFrom(t *testing.T) {
	t.Parallel()

	src := newSliceSource(10)
	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Rowspan: 3}}}
	x := newTestSpanIndex(src, spanColumns(2))

	var dropped []*Span
	x.onInvalidate = func(s *Span) { dropped = append(dropped, s) }

	old := x.Spans(4, 0)
	require.NotNil(t, old)

	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Rowspan: 2}}}
	x.InvalidateFrom(4)
	require.Equal(t, []*Span{old}, dropped, "a span reaching into the range is dropped with its owner")

	require.Nil(t, x.Spans(4, 0))
	require.Equal(t, 2, x.Spans(3, 0).Rowspan)
}
