package grid

import tea "charm.land/bubbletea/v2"

// EventData is passed to every handler of a notification. Handlers mark it
// handled to suppress the default behavior of the grid.
type EventData struct {
	handled bool
	stopped bool
}

// MarkHandled suppresses the default behavior.
func (e *EventData) MarkHandled() { e.handled = true }

// Handled reports whether a handler suppressed the default behavior.
func (e *EventData) Handled() bool { return e != nil && e.handled }

// StopPropagation prevents later handlers from running.
func (e *EventData) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether a handler stopped propagation.
func (e *EventData) PropagationStopped() bool { return e != nil && e.stopped }

type handler[T any] struct {
	id int
	fn func(*EventData, T)
}

// Event is a synchronous notification with typed arguments.
type Event[T any] struct {
	handlers []handler[T]
	nextID   int
}

// Subscribe registers fn and returns a function that removes it.
func (e *Event[T]) Subscribe(fn func(*EventData, T)) (unsubscribe func()) {
	e.nextID++
	id := e.nextID
	e.handlers = append(e.handlers, handler[T]{id: id, fn: fn})
	return func() {
		for i, h := range e.handlers {
			if h.id == id {
				e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every handler in subscription order.
func (e *Event[T]) Notify(args T) *EventData {
	ed := &EventData{}
	for _, h := range e.handlers {
		h.fn(ed, args)
		if ed.stopped {
			break
		}
	}
	return ed
}

// HasHandlers reports whether anyone is subscribed.
func (e *Event[T]) HasHandlers() bool { return len(e.handlers) > 0 }

func (e *Event[T]) clear() { e.handlers = nil }

// Coord addresses a cell by row and leaf column index.
type Coord struct {
	Row, Cell int
}

// ActiveCellChangingArgs describes a pending change of the active cell.
// Marking the event handled vetoes the change.
type ActiveCellChangingArgs struct {
	From, To Coord
	// HadFrom and HasTo report whether From and To are set.
	HadFrom, HasTo bool
}

// CellArgs identifies a cell.
type CellArgs struct {
	Row, Cell int
	Item      Item
	Column    *Column
}

// ValidationErrorArgs reports a failed commit.
type ValidationErrorArgs struct {
	CellArgs
	Editor Editor
	Result ValidationResult
}

// RowsRenderedArgs lists rows whose nodes were created or refreshed.
type RowsRenderedArgs struct {
	Rows []int
}

// RenderArgs reports a render pass.
type RenderArgs struct {
	Range Range
	// Complete is false when the pass yielded with rows left to render.
	Complete bool
}

// ColumnsResizedArgs lists the leaf columns after a width change.
type ColumnsResizedArgs struct {
	Columns []*Column
}

// ScrollArgs reports the content scroll position.
type ScrollArgs struct {
	ScrollTop, ScrollLeft int
}

// ClickArgs reports a pointer event resolved to a cell.
type ClickArgs struct {
	Row, Cell int
	X, Y      int
}

// KeyDownArgs reports a key press while the grid has focus.
type KeyDownArgs struct {
	Row, Cell int
	Key       tea.KeyPressMsg
}

// AddNewRowArgs carries the item created by editing the add-new row.
type AddNewRowArgs struct {
	Item   Item
	Column *Column
}

// HeaderClickArgs reports a click on a column header.
type HeaderClickArgs struct {
	Column *Column
}

// SortArgs reports the new sort order after a header click.
type SortArgs struct {
	SortColumns []SortColumn
}

// CSSStylesChangedArgs reports a change of a cell decoration layer.
type CSSStylesChangedArgs struct {
	Key    string
	Styles CellStyles
}

// Events groups the notifications a grid raises.
type Events struct {
	OnActiveCellChanging      Event[ActiveCellChangingArgs]
	OnActiveCellChanged       Event[CellArgs]
	OnCellChange              Event[CellArgs]
	OnBeforeEditCell          Event[CellArgs]
	OnBeforeCellEditorDestroy Event[CellArgs]
	OnValidationError         Event[ValidationErrorArgs]
	OnAddNewRow               Event[AddNewRowArgs]
	OnRowsRendered            Event[RowsRenderedArgs]
	OnRenderStart             Event[RenderArgs]
	OnRenderEnd               Event[RenderArgs]
	OnViewportChanged         Event[Range]
	OnColumnsResized          Event[ColumnsResizedArgs]
	OnScroll                  Event[ScrollArgs]
	OnClick                   Event[ClickArgs]
	OnDblClick                Event[ClickArgs]
	OnKeyDown                 Event[KeyDownArgs]
	OnHeaderClick             Event[HeaderClickArgs]
	OnSort                    Event[SortArgs]
	OnCellCSSStylesChanged    Event[CSSStylesChangedArgs]
	OnSelectedRowsChanged     Event[[]int]
	OnBeforeDestroy           Event[struct{}]
}

func (e *Events) clear() {
	e.OnActiveCellChanging.clear()
	e.OnActiveCellChanged.clear()
	e.OnCellChange.clear()
	e.OnBeforeEditCell.clear()
	e.OnBeforeCellEditorDestroy.clear()
	e.OnValidationError.clear()
	e.OnAddNewRow.clear()
	e.OnRowsRendered.clear()
	e.OnRenderStart.clear()
	e.OnRenderEnd.clear()
	e.OnViewportChanged.clear()
	e.OnColumnsResized.clear()
	e.OnScroll.clear()
	e.OnClick.clear()
	e.OnDblClick.clear()
	e.OnKeyDown.clear()
	e.OnHeaderClick.clear()
	e.OnSort.clear()
	e.OnCellCSSStylesChanged.clear()
	e.OnSelectedRowsChanged.clear()
	e.OnBeforeDestroy.clear()
}
