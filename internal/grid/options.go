package grid

import (
	"time"
)

// Options configures a grid. Start from [DefaultOptions] and override fields.
type Options struct {
	// RowHeight is the default row height in lines.
	RowHeight int
	// DefaultColumnWidth applies to columns declared without a width.
	DefaultColumnWidth int

	// MinBuffer and MaxBuffer bound the number of rows rendered beyond the
	// viewport.
	MinBuffer int
	MaxBuffer int

	// RenderDelay debounces render requests caused by scrolling. Zero renders
	// synchronously.
	RenderDelay time.Duration
	// RenderBudget is the time slice of a deferred render pass. A pass that
	// exceeds it yields and continues on the next tick. Zero disables
	// slicing.
	RenderBudget time.Duration

	EnableAsyncPostRender bool
	AsyncPostRenderDelay  time.Duration
	AsyncPostRenderBudget time.Duration

	EnableCellNavigation bool
	Editable             bool
	AutoEdit             bool
	EnableAddRow         bool
	ForceFitColumns      bool
	MultiSelect          bool
	// CommitOnBlur commits the active edit when the grid loses focus.
	CommitOnBlur bool

	ShowColumnHeader bool
	ShowHeaderRow    bool
	ShowFooterRow    bool

	// FlashCount and FlashInterval drive [Grid.FlashCell].
	FlashCount    int
	FlashInterval time.Duration

	// EditLock is shared between grids that must not edit concurrently.
	EditLock *EditLock
	// EditCommandHandler receives commits instead of executing them.
	EditCommandHandler func(item Item, col *Column, cmd *EditCommand)

	// DefaultFormatter renders cells without a formatter.
	DefaultFormatter Formatter
	// ValueExtractor reads a cell value from an item.
	ValueExtractor func(item Item, col *Column) any
	// HeaderRowContent and FooterRowContent render the extra chrome rows.
	HeaderRowContent func(col *Column) string
	FooterRowContent func(col *Column) string

	// Capabilities overrides terminal detection.
	Capabilities *Capabilities
	// MaxCanvasHeight overrides the detected canvas cap when positive.
	MaxCanvasHeight int

	Styles *Styles
	KeyMap *KeyMap

	// Clock is used for render time slicing.
	Clock func() time.Time
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RowHeight:             1,
		DefaultColumnWidth:    12,
		MinBuffer:             3,
		MaxBuffer:             50,
		RenderDelay:           16 * time.Millisecond,
		RenderBudget:          8 * time.Millisecond,
		AsyncPostRenderDelay:  50 * time.Millisecond,
		AsyncPostRenderBudget: 4 * time.Millisecond,
		EnableCellNavigation:  true,
		ShowColumnHeader:      true,
		CommitOnBlur:          true,
		FlashCount:            4,
		FlashInterval:         100 * time.Millisecond,
		DefaultFormatter:      PlainFormatter,
		ValueExtractor:        FieldValue,
	}
}

func (o *Options) normalize() {
	def := DefaultOptions()
	if o.RowHeight <= 0 {
		o.RowHeight = def.RowHeight
	}
	if o.DefaultColumnWidth <= 0 {
		o.DefaultColumnWidth = def.DefaultColumnWidth
	}
	o.MinBuffer = max(o.MinBuffer, 0)
	o.MaxBuffer = max(o.MaxBuffer, o.MinBuffer)
	if o.FlashCount <= 0 {
		o.FlashCount = def.FlashCount
	}
	if o.FlashInterval <= 0 {
		o.FlashInterval = def.FlashInterval
	}
	if o.AsyncPostRenderDelay <= 0 {
		o.AsyncPostRenderDelay = def.AsyncPostRenderDelay
	}
	if o.DefaultFormatter == nil {
		o.DefaultFormatter = PlainFormatter
	}
	if o.ValueExtractor == nil {
		o.ValueExtractor = FieldValue
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}
