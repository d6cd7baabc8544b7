package grid

import (
	"log/slog"
)

// State is the state of the active cell controller.
type State uint8

// Possible State values.
const (
	StateIdle State = iota
	StateActive
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateEditing:
		return "editing"
	}
	return "idle"
}

// activeCell is the focused span owner (row, cell) plus the navigation
// cursor (posY, posX), which may sit anywhere inside the owner's span.
type activeCell struct {
	set        bool
	row, cell  int
	posY, posX int
}

func (g *Grid) isActiveCoord(row, cell int) bool {
	return g.active.set && g.active.row == row && g.active.cell == cell
}

// focusKind says what holds keyboard focus inside the grid.
type focusKind uint8

const (
	focusNone focusKind = iota
	focusCell
	focusSink
	focusEditor
)

// focusTracker records the focused node by id. Ids change when a node is
// recreated, so a stale id means focus was lost.
type focusTracker struct {
	kind focusKind
	node uint64
}

// transferState guards the hand-off of focus while the active node is
// rebuilt.
type transferState uint8

const (
	transferNone transferState = iota
	// transferParked: focus sits on the sink until the node at cell exists
	// again.
	transferParked
)

type focusTransfer struct {
	state transferState
	cell  Coord
}

func (t focusTransfer) inProgress() bool { return t.state != transferNone }

// FocusedNode returns the id of the focused cell node, or zero.
func (g *Grid) FocusedNode() uint64 {
	if g.focus.kind == focusCell {
		return g.focus.node
	}
	return 0
}

// FocusParked reports whether focus waits on the sink for the active node
// to be rebuilt.
func (g *Grid) FocusParked() bool { return g.transfer.inProgress() }

// nodeRemoved parks focus on the sink when the focused node leaves the
// cache.
func (g *Grid) nodeRemoved(node *CellNode) {
	if g.focus.kind != focusCell || g.focus.node != node.ID {
		return
	}
	g.focus = focusTracker{kind: focusSink}
	g.transfer = focusTransfer{state: transferParked, cell: Coord{Row: node.Row, Cell: node.Cell}}
	slog.Debug("Parked focus while node is rebuilt", "grid", g.id, "row", node.Row, "cell", node.Cell)
}

// restoreFocus moves focus from the sink back to the rebuilt active node.
func (g *Grid) restoreFocus() {
	if !g.transfer.inProgress() {
		return
	}
	c := g.transfer.cell
	if !g.isActiveCoord(c.Row, c.Cell) {
		// The active cell moved on; focus follows it.
		g.transfer = focusTransfer{}
		g.syncFocus()
		return
	}
	node := g.cache.Node(c.Row, c.Cell)
	if node == nil {
		return
	}
	g.transfer = focusTransfer{}
	if g.session != nil {
		g.focus = focusTracker{kind: focusEditor}
		return
	}
	g.focus = focusTracker{kind: focusCell, node: node.ID}
}

// syncFocus points focus at the editor or the active node.
func (g *Grid) syncFocus() {
	if !g.focused || g.transfer.inProgress() {
		return
	}
	switch {
	case g.session != nil:
		g.focus = focusTracker{kind: focusEditor}
	case g.active.set:
		if node := g.cache.Node(g.active.row, g.active.cell); node != nil {
			g.focus = focusTracker{kind: focusCell, node: node.ID}
			return
		}
		g.focus = focusTracker{kind: focusSink}
	default:
		g.focus = focusTracker{kind: focusSink}
	}
}

// editSession is the state of an open editor.
type editSession struct {
	editor  Editor
	row     int
	cell    int
	column  *Column
	prev    any
	invalid bool
}

// editController holds the edit lock on behalf of a grid.
type editController struct{ g *Grid }

func (c *editController) CommitCurrentEdit() bool { return c.g.commitCurrentEdit() }
func (c *editController) CancelCurrentEdit() bool { return c.g.cancelCurrentEdit() }

// State returns the state of the active cell controller.
func (g *Grid) State() State {
	switch {
	case g.session != nil:
		return StateEditing
	case g.active.set:
		return StateActive
	}
	return StateIdle
}

// ActiveCell returns the active span owner.
func (g *Grid) ActiveCell() (Coord, bool) {
	if !g.active.set {
		return Coord{}, false
	}
	return Coord{Row: g.active.row, Cell: g.active.cell}, true
}

// ActiveCursor returns the navigation cursor, which may lie inside the span
// of the active cell.
func (g *Grid) ActiveCursor() (Coord, bool) {
	if !g.active.set {
		return Coord{}, false
	}
	return Coord{Row: g.active.posY, Cell: g.active.posX}, true
}

// ActiveCellNode returns the rendered node of the active cell.
func (g *Grid) ActiveCellNode() *CellNode {
	if !g.active.set {
		return nil
	}
	return g.cache.Node(g.active.row, g.active.cell)
}

// CurrentEditor returns the open editor, or nil.
func (g *Grid) CurrentEditor() Editor {
	if g.session == nil {
		return nil
	}
	return g.session.editor
}

// IsEditing reports whether an editor is open.
func (g *Grid) IsEditing() bool { return g.session != nil }

// CanCellBeActive reports whether (row, cell) may receive focus. Focusable
// flags resolve from the most specific source: cell metadata, then row
// metadata, then the column.
func (g *Grid) CanCellBeActive(row, cell int) bool {
	if !g.opts.EnableCellNavigation || row < 0 || cell < 0 ||
		row >= g.DataLengthIncludingAddNew() || cell >= len(g.cols.leaves) {
		return false
	}
	if !g.spans.IsOwner(row, cell) {
		return false
	}
	col := g.cols.leaves[cell]
	meta := g.itemMetadata(row)
	cm := meta.column(col.ID, cell)
	if cm != nil && cm.Transparent {
		return false
	}
	switch {
	case cm != nil && cm.Focusable != nil:
		return *cm.Focusable
	case meta != nil && meta.Focusable != nil:
		return *meta.Focusable
	}
	return col.Focusable
}

// CanCellBeSelected reports whether (row, cell) may be selected. It resolves
// flags in the same order as CanCellBeActive.
func (g *Grid) CanCellBeSelected(row, cell int) bool {
	if row < 0 || cell < 0 || row >= g.DataLength() || cell >= len(g.cols.leaves) {
		return false
	}
	col := g.cols.leaves[cell]
	meta := g.itemMetadata(row)
	cm := meta.column(col.ID, cell)
	switch {
	case cm != nil && cm.Selectable != nil:
		return *cm.Selectable
	case meta != nil && meta.Selectable != nil:
		return *meta.Selectable
	}
	return col.Selectable
}

// editorFor resolves the most specific editor of a cell.
func (g *Grid) editorFor(row, cell int) EditorFactory {
	col := g.cols.leaves[cell]
	meta := g.itemMetadata(row)
	cm := meta.column(col.ID, cell)
	switch {
	case cm != nil && cm.Editor != nil:
		return cm.Editor
	case meta != nil && meta.Editor != nil:
		return meta.Editor
	}
	return col.Editor
}

func (g *Grid) isCellPotentiallyEditable(row, cell int) bool {
	length := g.DataLength()
	if row < length && g.Item(row) == nil {
		return false
	}
	if g.cols.leaves[cell].CannotTriggerInsert && row >= length {
		return false
	}
	return g.editorFor(row, cell) != nil
}

// editMode says whether activating a cell opens its editor.
type editMode uint8

const (
	editAuto editMode = iota
	editOn
	editOff
)

// SetActiveCell focuses (row, cell) without opening an editor. It reports
// whether the active cell changed.
func (g *Grid) SetActiveCell(row, cell int) bool {
	if g.destroyed || !g.opts.EnableCellNavigation {
		return false
	}
	if row < 0 || row >= g.DataLengthIncludingAddNew() || cell < 0 || cell >= len(g.cols.leaves) {
		return false
	}
	row, cell = g.spans.Owner(row, cell)
	if !g.CanCellBeActive(row, cell) {
		return false
	}
	if !g.lock.CommitCurrentEdit() {
		return false
	}
	g.ScrollCellIntoView(row, cell, false)
	return g.setActiveCellInternal(row, cell, editOff)
}

// GotoCell focuses (row, cell) when it can be active, opening the editor
// when forceEdit, AutoEdit or the add-new row asks for it.
func (g *Grid) GotoCell(row, cell int, forceEdit bool) bool {
	if g.destroyed || !g.CanCellBeActive(row, cell) {
		return false
	}
	if !g.lock.CommitCurrentEdit() {
		return false
	}
	g.ScrollCellIntoView(row, cell, false)
	mode := editOff
	if forceEdit || row == g.DataLength() || g.opts.AutoEdit {
		mode = editOn
	}
	ok := g.setActiveCellInternal(row, cell, mode)
	g.syncFocus()
	return ok
}

// ResetActiveCell clears the active cell.
func (g *Grid) ResetActiveCell() {
	g.clearActiveCell()
}

func (g *Grid) clearActiveCell() {
	if !g.active.set {
		return
	}
	from := Coord{Row: g.active.row, Cell: g.active.cell}
	g.makeActiveCellNormal()
	g.active = activeCell{}
	g.cache.MarkCellDirty(from.Row, from.Cell)
	g.refreshNow(from.Row, from.Cell)
	g.transfer = focusTransfer{}
	g.syncFocus()
	g.events.OnActiveCellChanged.Notify(CellArgs{Row: -1, Cell: -1})
}

// setActiveCellInternal moves the active cell to the owner of (row, cell).
// OnActiveCellChanging handlers may veto the move.
func (g *Grid) setActiveCellInternal(row, cell int, mode editMode) bool {
	row, cell = g.spans.Owner(row, cell)
	from := Coord{Row: g.active.row, Cell: g.active.cell}
	to := Coord{Row: row, Cell: cell}
	changed := !g.active.set || from != to

	if changed {
		args := ActiveCellChangingArgs{From: from, To: to, HadFrom: g.active.set, HasTo: true}
		if g.events.OnActiveCellChanging.Notify(args).Handled() {
			return false
		}
	}

	if g.active.set {
		g.makeActiveCellNormal()
		g.cache.MarkCellDirty(from.Row, from.Cell)
		g.refreshNow(from.Row, from.Cell)
	}

	g.active = activeCell{set: true, row: row, cell: cell, posY: row, posX: cell}
	g.cache.MarkCellDirty(row, cell)
	g.ensureActiveCellRendered()
	g.transfer = focusTransfer{}
	g.syncFocus()

	if mode == editAuto && (row == g.DataLength() || g.opts.AutoEdit) {
		mode = editOn
	}
	if g.opts.Editable && mode == editOn && g.isCellPotentiallyEditable(row, cell) {
		g.makeActiveCellEditable(nil)
	}

	if changed {
		g.events.OnActiveCellChanged.Notify(g.cellArgs(row, cell))
	}
	return changed
}

func (g *Grid) cellArgs(row, cell int) CellArgs {
	args := CellArgs{Row: row, Cell: cell, Item: g.Item(row)}
	if cell >= 0 && cell < len(g.cols.leaves) {
		args.Column = g.cols.leaves[cell]
	}
	return args
}

// EditActiveCell opens an editor on the active cell. A nil factory uses the
// editor resolved from metadata and column.
func (g *Grid) EditActiveCell(factory EditorFactory) bool {
	return g.makeActiveCellEditable(factory)
}

func (g *Grid) makeActiveCellEditable(factory EditorFactory) bool {
	if !g.active.set || !g.opts.Editable || g.destroyed {
		return false
	}
	row, cell := g.active.row, g.active.cell
	if g.session != nil && g.session.row == row && g.session.cell == cell {
		return true
	}
	if !g.CanCellBeActive(row, cell) {
		return false
	}
	if !g.isCellPotentiallyEditable(row, cell) && factory == nil {
		return false
	}
	args := g.cellArgs(row, cell)
	if g.events.OnBeforeEditCell.Notify(args).Handled() {
		g.syncFocus()
		return false
	}
	if err := g.lock.Activate(g.ctrl); err != nil {
		slog.Warn("Cannot start edit", "grid", g.id, "row", row, "cell", cell, "error", err)
		return false
	}
	if factory == nil {
		factory = g.editorFor(row, cell)
	}
	if factory == nil {
		_ = g.lock.Deactivate(g.ctrl)
		return false
	}

	item := g.Item(row)
	editor := factory(EditorArgs{
		Column: args.Column,
		Item:   item,
		Row:    row,
		Cell:   cell,
		Box:    g.ActiveCellBox(),
		Commit: g.CommitCurrentEdit,
		Cancel: g.CancelCurrentEdit,
	})
	editor.Init()
	if item != nil {
		editor.LoadValue(item)
	}
	g.session = &editSession{
		editor: editor,
		row:    row,
		cell:   cell,
		column: args.Column,
		prev:   editor.SerializeValue(),
	}
	editor.Focus()
	g.focus = focusTracker{kind: focusEditor}
	g.cache.MarkCellDirty(row, cell)
	g.refreshNow(row, cell)
	slog.Debug("Opened editor", "grid", g.id, "row", row, "cell", cell)
	return true
}

// makeActiveCellNormal closes the editor without applying its value.
func (g *Grid) makeActiveCellNormal() {
	s := g.session
	if s == nil {
		return
	}
	g.events.OnBeforeCellEditorDestroy.Notify(g.cellArgs(s.row, s.cell))
	s.editor.Destroy()
	g.session = nil
	if err := g.lock.Deactivate(g.ctrl); err != nil {
		slog.Error("Edit lock out of sync", "grid", g.id, "error", err)
	}
	g.cache.MarkCellDirty(s.row, s.cell)
	g.refreshNow(s.row, s.cell)
	g.syncFocus()
}

// CommitCurrentEdit commits the edit session holding the lock, which may
// belong to another grid sharing it.
func (g *Grid) CommitCurrentEdit() bool { return g.lock.CommitCurrentEdit() }

// CancelCurrentEdit cancels the edit session holding the lock.
func (g *Grid) CancelCurrentEdit() bool { return g.lock.CancelCurrentEdit() }

// commitCurrentEdit validates and applies the open editor. A validation
// failure keeps the editor open and returns false.
func (g *Grid) commitCurrentEdit() bool {
	s := g.session
	if s == nil {
		return true
	}
	if !s.editor.IsValueChanged() {
		g.makeActiveCellNormal()
		return true
	}

	result := s.editor.Validate()
	if !result.Valid {
		s.invalid = true
		g.cache.MarkCellDirty(s.row, s.cell)
		g.refreshNow(s.row, s.cell)
		slog.Info("Edit failed validation", "grid", g.id, "row", s.row, "cell", s.cell, "msg", result.Msg)
		ed := g.events.OnValidationError.Notify(ValidationErrorArgs{
			CellArgs: g.cellArgs(s.row, s.cell),
			Editor:   s.editor,
			Result:   result,
		})
		if !ed.Handled() {
			s.editor.Focus()
			g.focus = focusTracker{kind: focusEditor}
		}
		return false
	}

	if s.row < g.DataLength() {
		item := g.Item(s.row)
		cmd := &EditCommand{
			Row:                 s.row,
			Cell:                s.cell,
			Editor:              s.editor,
			SerializedValue:     s.editor.SerializeValue(),
			PrevSerializedValue: s.prev,
			item:                item,
			notify:              g.editApplied,
		}
		if h := g.opts.EditCommandHandler; h != nil {
			g.makeActiveCellNormal()
			h(item, s.column, cmd)
		} else {
			cmd.Execute()
			g.makeActiveCellNormal()
		}
		return true
	}

	item := Item{}
	s.editor.ApplyValue(item, s.editor.SerializeValue())
	g.makeActiveCellNormal()
	g.events.OnAddNewRow.Notify(AddNewRowArgs{Item: item, Column: s.column})
	return true
}

func (g *Grid) cancelCurrentEdit() bool {
	g.makeActiveCellNormal()
	return true
}

// editApplied refreshes an edited cell and raises OnCellChange.
func (g *Grid) editApplied(cmd *EditCommand) {
	g.UpdateRow(cmd.Row)
	g.events.OnCellChange.Notify(g.cellArgs(cmd.Row, cmd.Cell))
}

// ActiveCellBox returns the screen box of the active cell relative to the
// grid area.
func (g *Grid) ActiveCellBox() Box {
	if !g.active.set {
		return Box{}
	}
	return g.CellBox(g.active.row, g.active.cell)
}

// CellBox returns the screen box of (row, cell) relative to the grid area,
// covering the whole span.
func (g *Grid) CellBox(row, cell int) Box {
	row, cell = g.spans.Owner(row, cell)
	colspan := max(g.spans.Colspan(row, cell), 1)
	rowspan := max(g.spans.Rowspan(row, cell), 1)
	vp := g.layout.viewport
	b := Box{
		X:      vp.Min.X + g.pos.ColumnOffset(cell) - g.vp.ScrollLeft(),
		Y:      vp.Min.Y + g.rowTop(row) - g.vp.ScrollTop(),
		Width:  g.pos.ColumnOffset(cell+colspan) - g.pos.ColumnOffset(cell),
		Height: g.pos.RowTop(row+rowspan) - g.pos.RowTop(row),
	}
	b.Visible = b.X+b.Width > vp.Min.X && b.X < vp.Max.X && b.Y+b.Height > vp.Min.Y && b.Y < vp.Max.Y
	return b
}
