package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrNoColumns is returned when a grid is configured without leaf columns.
	ErrNoColumns = errors.New("grid: no columns")
	// ErrInvalidColumn is returned for a malformed column definition.
	ErrInvalidColumn = errors.New("grid: invalid column")
	// ErrDuplicateColumnID is returned when two columns share an id.
	ErrDuplicateColumnID = errors.New("grid: duplicate column id")
)

// Column describes a grid column. A column with Children is a header group;
// only leaf columns are addressable.
type Column struct {
	ID       string
	Name     string
	Field    string
	Width    int
	MinWidth int
	MaxWidth int

	Resizable  bool
	Sortable   bool
	Focusable  bool
	Selectable bool

	// CannotTriggerInsert prevents editing this column from creating a row
	// on the add-new row.
	CannotTriggerInsert bool

	Formatter Formatter
	Editor    EditorFactory
	// Validator checks the serialized value of an editor before commit.
	Validator func(value any) ValidationResult

	// AsyncPostRender, when set, is called after the cell has been rendered
	// and may return replacement content for the cell.
	AsyncPostRender func(row, cell int, item Item, col *Column, content string) string

	CSSClass       string
	HeaderCSSClass string

	Children []*Column

	// index is the leaf index assigned by flattenColumns. -1 for groups.
	index int
	depth int
}

// Index returns the leaf index of the column, or -1 for header groups.
func (c *Column) Index() int { return c.index }

// NewColumn returns a leaf column with the common defaults applied.
func NewColumn(id, name, field string) *Column {
	return &Column{
		ID:         id,
		Name:       name,
		Field:      field,
		Resizable:  true,
		Focusable:  true,
		Selectable: true,
	}
}

// columnSet is the flattened view of a column tree.
type columnSet struct {
	roots  []*Column
	leaves []*Column
	byID   map[string]int
	// headerRows holds the header groups per depth; the last row is the leaf
	// row.
	headerRows [][]*Column
}

// flattenColumns validates a column tree and returns its leaf columns in
// display order.
func flattenColumns(roots []*Column, defaultWidth int) (*columnSet, error) {
	cs := &columnSet{
		roots: roots,
		byID:  make(map[string]int),
	}
	seen := make(map[string]struct{})
	maxDepth := 0

	var walk func(cols []*Column, depth int) error
	walk = func(cols []*Column, depth int) error {
		for _, c := range cols {
			if c == nil {
				return fmt.Errorf("%w: nil column", ErrInvalidColumn)
			}
			if c.ID == "" {
				return fmt.Errorf("%w: column %q has no id", ErrInvalidColumn, c.Name)
			}
			if _, dup := seen[c.ID]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateColumnID, c.ID)
			}
			seen[c.ID] = struct{}{}
			c.depth = depth
			maxDepth = max(maxDepth, depth)
			if len(c.Children) > 0 {
				c.index = -1
				if err := walk(c.Children, depth+1); err != nil {
					return err
				}
				continue
			}
			if err := normalizeWidth(c, defaultWidth); err != nil {
				return err
			}
			c.index = len(cs.leaves)
			cs.byID[c.ID] = c.index
			cs.leaves = append(cs.leaves, c)
		}
		return nil
	}
	if err := walk(roots, 0); err != nil {
		return nil, err
	}
	if len(cs.leaves) == 0 {
		return nil, ErrNoColumns
	}

	cs.headerRows = make([][]*Column, maxDepth+1)
	var collect func(cols []*Column)
	collect = func(cols []*Column) {
		for _, c := range cols {
			if len(c.Children) > 0 {
				cs.headerRows[c.depth] = append(cs.headerRows[c.depth], c)
				collect(c.Children)
				continue
			}
			// Leaves shallower than the deepest level fill the rows below
			// them so every header row spans the full width.
			for d := c.depth; d <= maxDepth; d++ {
				cs.headerRows[d] = append(cs.headerRows[d], c)
			}
		}
	}
	collect(roots)
	return cs, nil
}

func normalizeWidth(c *Column, defaultWidth int) error {
	if c.Width < 0 || c.MinWidth < 0 || c.MaxWidth < 0 {
		return fmt.Errorf("%w: %q has a negative width", ErrInvalidColumn, c.ID)
	}
	if c.MaxWidth > 0 && c.MinWidth > c.MaxWidth {
		return fmt.Errorf("%w: %q min width %d exceeds max width %d", ErrInvalidColumn, c.ID, c.MinWidth, c.MaxWidth)
	}
	if c.Width == 0 {
		c.Width = defaultWidth
	}
	c.Width = clampWidth(c, c.Width)
	return nil
}

func clampWidth(c *Column, w int) int {
	if c.MinWidth > 0 && w < c.MinWidth {
		w = c.MinWidth
	}
	if c.MaxWidth > 0 && w > c.MaxWidth {
		w = c.MaxWidth
	}
	return max(w, 1)
}

// leafSpan returns the first and last leaf index covered by a header column.
func leafSpan(c *Column) (first, last int) {
	if len(c.Children) == 0 {
		return c.index, c.index
	}
	first, _ = leafSpan(c.Children[0])
	_, last = leafSpan(c.Children[len(c.Children)-1])
	return first, last
}
