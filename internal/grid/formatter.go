package grid

import (
	"fmt"
	"strings"
)

// Formatter turns a cell value into display content.
type Formatter func(row, cell int, value any, col *Column, item Item, meta *ColumnMetadata) string

// PlainFormatter renders values with fmt and nil as empty.
func PlainFormatter(_, _ int, value any, _ *Column, _ Item, _ *ColumnMetadata) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.ReplaceAll(s, "\t", " ")
	}
	return fmt.Sprint(value)
}

// FieldValue is the default value extractor.
func FieldValue(item Item, col *Column) any {
	if item == nil {
		return nil
	}
	return item[col.Field]
}
