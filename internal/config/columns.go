package config

import (
	"fmt"

	"github.com/charmbracelet/datagrid/internal/grid"
)

// ColumnSpec declares a column. Formatters and editors are referred to by
// their registry names.
type ColumnSpec struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Field     string `json:"field,omitempty"`
	Width     int    `json:"width,omitempty"`
	MinWidth  int    `json:"min_width,omitempty"`
	MaxWidth  int    `json:"max_width,omitempty"`
	Resizable *bool  `json:"resizable,omitempty"`
	Sortable  bool   `json:"sortable,omitempty"`
	Focusable *bool  `json:"focusable,omitempty"`
	CSSClass  string `json:"css_class,omitempty"`
	Formatter string `json:"formatter,omitempty"`
	Editor    string `json:"editor,omitempty"`

	Children []ColumnSpec `json:"children,omitempty"`
}

// GridColumns builds the column tree, resolving formatter and editor names
// in reg.
func (c *Config) GridColumns(reg *grid.Registry) ([]*grid.Column, error) {
	return buildColumns(c.Columns, reg)
}

func buildColumns(specs []ColumnSpec, reg *grid.Registry) ([]*grid.Column, error) {
	cols := make([]*grid.Column, 0, len(specs))
	for _, s := range specs {
		col, err := s.build(reg)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (s ColumnSpec) build(reg *grid.Registry) (*grid.Column, error) {
	col := grid.NewColumn(s.ID, s.Name, s.Field)
	if col.Name == "" {
		col.Name = s.ID
	}
	if col.Field == "" {
		col.Field = s.ID
	}
	col.Width = s.Width
	col.MinWidth = s.MinWidth
	col.MaxWidth = s.MaxWidth
	col.Sortable = s.Sortable
	col.CSSClass = s.CSSClass
	setBool(&col.Resizable, s.Resizable)
	setBool(&col.Focusable, s.Focusable)

	if s.Formatter != "" {
		f, ok := reg.Formatter(s.Formatter)
		if !ok {
			return nil, fmt.Errorf("%w: column %q: unknown formatter %q", ErrInvalidConfig, s.ID, s.Formatter)
		}
		col.Formatter = f
	}
	if s.Editor != "" {
		e, ok := reg.Editor(s.Editor)
		if !ok {
			return nil, fmt.Errorf("%w: column %q: unknown editor %q", ErrInvalidConfig, s.ID, s.Editor)
		}
		col.Editor = e
	}

	if len(s.Children) > 0 {
		children, err := buildColumns(s.Children, reg)
		if err != nil {
			return nil, err
		}
		col.Children = children
	}
	return col, nil
}

func (s ColumnSpec) validate(reg *grid.Registry) error {
	if s.ID == "" {
		return fmt.Errorf("%w: column without id", ErrInvalidConfig)
	}
	if s.Width < 0 || s.MinWidth < 0 || s.MaxWidth < 0 {
		return fmt.Errorf("%w: column %q has a negative width", ErrInvalidConfig, s.ID)
	}
	if s.MaxWidth > 0 && s.MinWidth > s.MaxWidth {
		return fmt.Errorf("%w: column %q min_width %d exceeds max_width %d", ErrInvalidConfig, s.ID, s.MinWidth, s.MaxWidth)
	}
	if reg != nil {
		if _, ok := reg.Formatter(s.Formatter); s.Formatter != "" && !ok {
			return fmt.Errorf("%w: column %q: unknown formatter %q", ErrInvalidConfig, s.ID, s.Formatter)
		}
		if _, ok := reg.Editor(s.Editor); s.Editor != "" && !ok {
			return fmt.Errorf("%w: column %q: unknown editor %q", ErrInvalidConfig, s.ID, s.Editor)
		}
	}
	for _, child := range s.Children {
		if err := child.validate(reg); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration against the default registry.
func (c *Config) Validate() error {
	return c.ValidateWith(grid.DefaultRegistry)
}

// ValidateWith checks the configuration, resolving names in reg. A nil
// registry skips the name checks.
func (c *Config) ValidateWith(reg *grid.Registry) error {
	if err := c.Options.validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	var walk func([]ColumnSpec) error
	walk = func(specs []ColumnSpec) error {
		for _, s := range specs {
			if _, dup := seen[s.ID]; dup {
				return fmt.Errorf("%w: duplicate column id %q", ErrInvalidConfig, s.ID)
			}
			seen[s.ID] = struct{}{}
			if err := walk(s.Children); err != nil {
				return err
			}
		}
		return nil
	}
	for _, s := range c.Columns {
		if err := s.validate(reg); err != nil {
			return err
		}
	}
	if err := walk(c.Columns); err != nil {
		return err
	}
	for _, t := range c.Data.Totals {
		if _, _, err := ParseAggregate(t); err != nil {
			return err
		}
	}
	return nil
}
