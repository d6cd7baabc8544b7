package grid

// Span is the owner record of a spanning cell. Every coordinate it covers
// maps to the same *Span.
type Span struct {
	Row, Cell        int
	Rowspan, Colspan int
}

// Covers reports whether (row, cell) lies inside the span.
func (s *Span) Covers(row, cell int) bool {
	return row >= s.Row && row < s.Row+s.Rowspan && cell >= s.Cell && cell < s.Cell+s.Colspan
}

// LastRow returns the last row covered by the span.
func (s *Span) LastRow() int { return s.Row + s.Rowspan - 1 }

// LastCell returns the last column covered by the span.
func (s *Span) LastCell() int { return s.Cell + s.Colspan - 1 }

// SpanIndex lazily computes row and column spans from item metadata.
type SpanIndex struct {
	source  func() DataSource
	columns func() []*Column

	// rows maps a row to its covered coordinates. A nil entry means the
	// coordinate is not spanned.
	rows    map[int][]*Span
	scanned int // rows below scanned have been consulted

	// onInvalidate is called for every span record dropped from the index so
	// that the render cache can refresh the covered coordinates.
	onInvalidate func(*Span)
}

// NewSpanIndex returns an index over the given data source and leaf columns.
func NewSpanIndex(source func() DataSource, columns func() []*Column) *SpanIndex {
	return &SpanIndex{
		source:  source,
		columns: columns,
		rows:    make(map[int][]*Span),
	}
}

// Spans returns the span covering (row, cell), or nil when the cell is not
// spanned.
func (x *SpanIndex) Spans(row, cell int) *Span {
	ds := x.source()
	if ds == nil || row < 0 || cell < 0 || row >= ds.Length() || cell >= len(x.columns()) {
		return nil
	}
	for x.scanned <= row {
		x.scanRow(ds, x.scanned)
		x.scanned++
	}
	cells := x.rows[row]
	if cell >= len(cells) {
		return nil
	}
	return cells[cell]
}

// Owner returns the owner coordinate of (row, cell).
func (x *SpanIndex) Owner(row, cell int) (int, int) {
	if s := x.Spans(row, cell); s != nil {
		return s.Row, s.Cell
	}
	return row, cell
}

// Colspan returns the remaining span width seen from (row, cell).
func (x *SpanIndex) Colspan(row, cell int) int {
	if s := x.Spans(row, cell); s != nil {
		return s.Colspan - (cell - s.Cell)
	}
	return 1
}

// Rowspan returns the remaining span height seen from (row, cell).
func (x *SpanIndex) Rowspan(row, cell int) int {
	if s := x.Spans(row, cell); s != nil {
		return s.Rowspan - (row - s.Row)
	}
	return 1
}

// IsOwner reports whether (row, cell) is not covered by a span owned
// elsewhere.
func (x *SpanIndex) IsOwner(row, cell int) bool {
	s := x.Spans(row, cell)
	return s == nil || (s.Row == row && s.Cell == cell)
}

func (x *SpanIndex) scanRow(ds DataSource, row int) {
	meta := ds.ItemMetadata(row)
	if meta == nil || (len(meta.Columns) == 0 && len(meta.ColumnsByIndex) == 0) {
		return
	}
	cols := x.columns()
	n := len(cols)
	length := ds.Length()
	for cell := 0; cell < n; {
		if s := x.at(row, cell); s != nil {
			cell = s.Cell + s.Colspan
			continue
		}
		cm := meta.column(cols[cell].ID, cell)
		if cm == nil {
			cell++
			continue
		}
		colspan := cm.Colspan
		switch {
		case colspan == ColspanToEnd:
			colspan = n - cell
		case colspan < 1:
			colspan = 1
		}
		colspan = min(colspan, n-cell)
		// Stop short of coordinates already owned by a rowspan from above.
		for c := cell + 1; c < cell+colspan; c++ {
			if x.at(row, c) != nil {
				colspan = c - cell
				break
			}
		}
		rowspan := max(cm.Rowspan, 1)
		rowspan = min(rowspan, length-row)
		if colspan > 1 || rowspan > 1 {
			s := &Span{Row: row, Cell: cell, Rowspan: rowspan, Colspan: colspan}
			for r := row; r < row+rowspan; r++ {
				for c := cell; c < cell+colspan; c++ {
					if r > row && x.at(r, c) != nil {
						continue
					}
					x.set(r, c, s, n)
				}
			}
		}
		cell += colspan
	}
}

func (x *SpanIndex) at(row, cell int) *Span {
	cells := x.rows[row]
	if cell >= len(cells) {
		return nil
	}
	return cells[cell]
}

func (x *SpanIndex) set(row, cell int, s *Span, n int) {
	cells := x.rows[row]
	if len(cells) < n {
		grown := make([]*Span, n)
		copy(grown, cells)
		cells = grown
		x.rows[row] = cells
	}
	cells[cell] = s
}

// InvalidateFrom drops every span that touches row or any later row, and
// every span owned by such rows, so they are recomputed on the next query.
func (x *SpanIndex) InvalidateFrom(row int) {
	row = max(row, 0)
	start := row
	for r, cells := range x.rows {
		if r < row {
			continue
		}
		for _, s := range cells {
			if s != nil && s.Row < start {
				start = s.Row
			}
		}
	}
	dropped := make(map[*Span]struct{})
	for r, cells := range x.rows {
		if r < start {
			continue
		}
		keep := false
		for c, s := range cells {
			if s == nil {
				continue
			}
			if s.Row >= start {
				dropped[s] = struct{}{}
				cells[c] = nil
				continue
			}
			keep = true
		}
		if !keep {
			delete(x.rows, r)
		}
	}
	for s := range dropped {
		x.InvalidateCellSpan(s)
	}
	x.scanned = min(x.scanned, start)
}

// InvalidateRows drops spans touching any of the given rows.
func (x *SpanIndex) InvalidateRows(rows ...int) {
	if len(rows) == 0 {
		return
	}
	lowest := rows[0]
	for _, r := range rows[1:] {
		lowest = min(lowest, r)
	}
	x.InvalidateFrom(lowest)
}

// InvalidateAll drops the whole index.
func (x *SpanIndex) InvalidateAll() {
	x.InvalidateFrom(0)
}

// InvalidateCellSpan reports every coordinate covered by s as needing a
// refresh. It must be called before a stale record is discarded.
func (x *SpanIndex) InvalidateCellSpan(s *Span) {
	if s == nil || x.onInvalidate == nil {
		return
	}
	x.onInvalidate(s)
}
