package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/datagrid/internal/dataview"
)

// ParseAggregate parses a "kind:field" aggregator declaration.
func ParseAggregate(s string) (dataview.AggregateKind, string, error) {
	kind, field, ok := strings.Cut(s, ":")
	if !ok || field == "" {
		return "", "", fmt.Errorf("%w: aggregate %q is not kind:field", ErrInvalidConfig, s)
	}
	switch k := dataview.AggregateKind(strings.ToLower(kind)); k {
	case dataview.Sum, dataview.Avg, dataview.Min, dataview.Max, dataview.Count:
		return k, field, nil
	default:
		return "", "", fmt.Errorf("%w: unknown aggregate %q", ErrInvalidConfig, kind)
	}
}

// Aggregators returns the configured group totals. Invalid entries are
// rejected by [Config.Validate].
func (d DataSpec) Aggregators() []dataview.Aggregator {
	var out []dataview.Aggregator
	for _, t := range d.Totals {
		kind, field, err := ParseAggregate(t)
		if err != nil {
			continue
		}
		out = append(out, dataview.Aggregator{Kind: kind, Field: field})
	}
	return out
}

// SortSpecs returns the initial sort, resolving column ids to fields.
func (c *Config) SortSpecs() []dataview.SortSpec {
	fields := make(map[string]string)
	var walk func([]ColumnSpec)
	walk = func(specs []ColumnSpec) {
		for _, s := range specs {
			if s.Field != "" {
				fields[s.ID] = s.Field
			}
			walk(s.Children)
		}
	}
	walk(c.Columns)

	out := make([]dataview.SortSpec, 0, len(c.Data.Sort))
	for _, s := range c.Data.Sort {
		field, ok := fields[s.Column]
		if !ok {
			field = s.Column
		}
		out = append(out, dataview.SortSpec{Field: field, Asc: !s.Desc})
	}
	return out
}
