package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/datagrid/internal/grid"
)

// Options mirrors [grid.Options] for the settings that can be configured.
// Unset fields keep the grid defaults.
type Options struct {
	RowHeight          int `json:"row_height,omitempty"`
	DefaultColumnWidth int `json:"default_column_width,omitempty"`
	MinBuffer          int `json:"min_buffer,omitempty"`
	MaxBuffer          int `json:"max_buffer,omitempty"`
	MaxCanvasHeight    int `json:"max_canvas_height,omitempty"`

	RenderDelay           Duration `json:"render_delay,omitzero"`
	RenderBudget          Duration `json:"render_budget,omitzero"`
	AsyncPostRender       *bool    `json:"async_post_render,omitempty"`
	AsyncPostRenderDelay  Duration `json:"async_post_render_delay,omitzero"`
	AsyncPostRenderBudget Duration `json:"async_post_render_budget,omitzero"`

	CellNavigation *bool `json:"cell_navigation,omitempty"`
	Editable       *bool `json:"editable,omitempty"`
	AutoEdit       *bool `json:"auto_edit,omitempty"`
	AddRow         *bool `json:"add_row,omitempty"`
	ForceFit       *bool `json:"force_fit,omitempty"`
	MultiSelect    *bool `json:"multi_select,omitempty"`
	CommitOnBlur   *bool `json:"commit_on_blur,omitempty"`

	ColumnHeader *bool `json:"column_header,omitempty"`
	HeaderRow    *bool `json:"header_row,omitempty"`
	FooterRow    *bool `json:"footer_row,omitempty"`
}

// Duration is a [time.Duration] written as a Go duration string.
type Duration struct {
	time.Duration
	set bool
}

// IsZero reports whether the duration was left unset.
func (d Duration) IsZero() bool { return !d.set }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	d.Duration = v
	d.set = true
	return nil
}

// Dur returns a set duration.
func Dur(v time.Duration) Duration { return Duration{Duration: v, set: true} }

// GridOptions applies the configured settings on top of base.
func (c *Config) GridOptions(base grid.Options) grid.Options {
	o := c.Options
	setInt(&base.RowHeight, o.RowHeight)
	setInt(&base.DefaultColumnWidth, o.DefaultColumnWidth)
	setInt(&base.MinBuffer, o.MinBuffer)
	setInt(&base.MaxBuffer, o.MaxBuffer)
	setInt(&base.MaxCanvasHeight, o.MaxCanvasHeight)

	setDuration(&base.RenderDelay, o.RenderDelay)
	setDuration(&base.RenderBudget, o.RenderBudget)
	setBool(&base.EnableAsyncPostRender, o.AsyncPostRender)
	setDuration(&base.AsyncPostRenderDelay, o.AsyncPostRenderDelay)
	setDuration(&base.AsyncPostRenderBudget, o.AsyncPostRenderBudget)

	setBool(&base.EnableCellNavigation, o.CellNavigation)
	setBool(&base.Editable, o.Editable)
	setBool(&base.AutoEdit, o.AutoEdit)
	setBool(&base.EnableAddRow, o.AddRow)
	setBool(&base.ForceFitColumns, o.ForceFit)
	setBool(&base.MultiSelect, o.MultiSelect)
	setBool(&base.CommitOnBlur, o.CommitOnBlur)

	setBool(&base.ShowColumnHeader, o.ColumnHeader)
	setBool(&base.ShowHeaderRow, o.HeaderRow)
	setBool(&base.ShowFooterRow, o.FooterRow)
	return base
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v Duration) {
	if v.set {
		*dst = v.Duration
	}
}

func (o Options) validate() error {
	for name, v := range map[string]int{
		"row_height":           o.RowHeight,
		"default_column_width": o.DefaultColumnWidth,
		"min_buffer":           o.MinBuffer,
		"max_buffer":           o.MaxBuffer,
		"max_canvas_height":    o.MaxCanvasHeight,
	} {
		if v < 0 {
			return fmt.Errorf("%w: options.%s must not be negative", ErrInvalidConfig, name)
		}
	}
	if o.MaxBuffer > 0 && o.MinBuffer > o.MaxBuffer {
		return fmt.Errorf("%w: options.min_buffer exceeds options.max_buffer", ErrInvalidConfig)
	}
	for name, v := range map[string]Duration{
		"render_delay":             o.RenderDelay,
		"render_budget":            o.RenderBudget,
		"async_post_render_delay":  o.AsyncPostRenderDelay,
		"async_post_render_budget": o.AsyncPostRenderBudget,
	} {
		if v.Duration < 0 {
			return fmt.Errorf("%w: options.%s must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
