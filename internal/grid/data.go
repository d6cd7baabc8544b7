package grid

// Item is a single data record. Fields are addressed by [Column.Field].
type Item map[string]any

// ColspanToEnd is the colspan value meaning "to the end of the row".
const ColspanToEnd = -1

// ColumnMetadata overrides column behavior for a single cell.
type ColumnMetadata struct {
	Rowspan     int
	Colspan     int
	Formatter   Formatter
	Editor      EditorFactory
	Focusable   *bool
	Selectable  *bool
	Transparent bool
	CSSClasses  []string
}

// ItemMetadata describes per-row overrides supplied by the data source.
type ItemMetadata struct {
	// Columns is keyed by column id. ColumnsByIndex is consulted when the id
	// has no entry.
	Columns        map[string]*ColumnMetadata
	ColumnsByIndex map[int]*ColumnMetadata

	// Height overrides the default row height when positive.
	Height     int
	CSSClasses []string
	Focusable  *bool
	Selectable *bool
	Formatter  Formatter
	Editor     EditorFactory
}

// column returns the metadata of the given cell, looked up by column id first
// and by index second.
func (m *ItemMetadata) column(id string, cell int) *ColumnMetadata {
	if m == nil {
		return nil
	}
	if cm, ok := m.Columns[id]; ok {
		return cm
	}
	if cm, ok := m.ColumnsByIndex[cell]; ok {
		return cm
	}
	return nil
}

// DataSource is the data-access layer consumed by the grid.
type DataSource interface {
	// Length returns the number of rows.
	Length() int
	// Item returns the record at row, or nil.
	Item(row int) Item
	// ItemMetadata returns row overrides, or nil.
	ItemMetadata(row int) *ItemMetadata
}

// ChangeNotifier is implemented by data sources that report mutations. The
// grid subscribes when the source is bound with [Grid.SetData].
type ChangeNotifier interface {
	OnRowCountChanged(fn func(previous, current int)) (unsubscribe func())
	OnRowsChanged(fn func(rows []int)) (unsubscribe func())
}

// Items is a plain slice data source without metadata.
type Items []Item

// Length implements DataSource.
func (it Items) Length() int { return len(it) }

// Item implements DataSource.
func (it Items) Item(row int) Item {
	if row < 0 || row >= len(it) {
		return nil
	}
	return it[row]
}

// ItemMetadata implements DataSource.
func (it Items) ItemMetadata(int) *ItemMetadata { return nil }

// MetadataSource decorates a data source with a metadata function.
type MetadataSource struct {
	DataSource
	Metadata func(row int) *ItemMetadata
}

// ItemMetadata implements DataSource.
func (m MetadataSource) ItemMetadata(row int) *ItemMetadata {
	if m.Metadata == nil {
		return m.DataSource.ItemMetadata(row)
	}
	return m.Metadata(row)
}

// Bool returns a pointer to b, for the optional flags in metadata.
func Bool(b bool) *bool { return &b }
