package grid

import tea "charm.land/bubbletea/v2"

// ValidationResult is returned by [Editor.Validate].
type ValidationResult struct {
	Valid bool
	Msg   string
}

// Box is the screen area of the cell an editor covers.
type Box struct {
	X, Y          int
	Width, Height int
	// Visible is false when the cell is scrolled out of the viewport.
	Visible bool
}

// EditorArgs is handed to an [EditorFactory] when an edit session starts.
type EditorArgs struct {
	Column *Column
	Item   Item
	Row    int
	Cell   int
	Box    Box
	// Commit and Cancel end the session from inside the editor, for instance
	// on enter or escape. They return false when the grid refused.
	Commit func() bool
	Cancel func() bool
}

// Editor is an in-place cell editor. One instance exists per edit session.
type Editor interface {
	Init()
	Destroy()
	Focus()

	// SetDirectValue seeds the editor with the key that started the edit.
	SetDirectValue(v any)
	LoadValue(item Item)
	SerializeValue() any
	ApplyValue(item Item, v any)
	IsValueChanged() bool
	Validate() ValidationResult

	Save()
	Cancel()
	Hide()
	Show()
	Position(box Box)

	Update(msg tea.Msg) tea.Cmd
	View() string
}

// EditorFactory creates an editor for a cell.
type EditorFactory func(args EditorArgs) Editor

// EditCommand is the unit of work produced by a successful commit. Hosts may
// intercept it through [Options.EditCommandHandler] to build undo stacks.
type EditCommand struct {
	Row, Cell           int
	Editor              Editor
	SerializedValue     any
	PrevSerializedValue any

	item   Item
	notify func(cmd *EditCommand)
}

// Execute applies the new value to the item.
func (c *EditCommand) Execute() {
	c.Editor.ApplyValue(c.item, c.SerializedValue)
	c.Notify()
}

// Undo restores the previous value.
func (c *EditCommand) Undo() {
	c.Editor.ApplyValue(c.item, c.PrevSerializedValue)
	c.Notify()
}

// Notify refreshes the cell and raises OnCellChange.
func (c *EditCommand) Notify() {
	if c.notify != nil {
		c.notify(c)
	}
}

// Item returns the edited record.
func (c *EditCommand) Item() Item { return c.item }
