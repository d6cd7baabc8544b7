package grid

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	o := DefaultOptions()
	o.RenderDelay = 0
	o.RenderBudget = 0
	o.ShowColumnHeader = false
	o.Capabilities = &Capabilities{MaxCanvasHeight: DefaultMaxCanvasHeight, ScrollbarWidth: 1}
	return o
}

func testColumns(n, width int) []*Column {
	cols := make([]*Column, n)
	for i := range n {
		id := string(rune('a' + i))
		cols[i] = NewColumn(id, strings.ToUpper(id), id)
		cols[i].Width = width
	}
	return cols
}

func newTestGrid(t *testing.T, data DataSource, cols []*Column, opts Options, width, height int) *Grid {
	t.Helper()
	g, err := New(data, cols, opts)
	require.NoError(t, err)
	g.SetSize(width, height)
	t.Cleanup(g.Destroy)
	return g
}

// requireCoherent checks that every span owner of the rendered range has a
// node and that no node lies outside it, the active cell aside.
func requireCoherent(t *testing.T, g *Grid) {
	t.Helper()
	require.False(t, g.RenderPending())
	rng := g.vp.CurrentRenderedRange()
	for row := rng.Top; row <= rng.Bottom; row++ {
		for cell := rng.LeftCell; cell <= rng.RightCell; cell++ {
			if !g.spans.IsOwner(row, cell) {
				continue
			}
			require.NotNil(t, g.cache.Node(row, cell), "missing node (%d, %d)", row, cell)
		}
	}
	for _, row := range g.cache.Rows() {
		rc := g.cache.Row(row)
		require.Empty(t, rc.RenderQueue)
		for _, cell := range rc.SortedCells() {
			if g.isActiveCoord(row, cell) {
				continue
			}
			n := rc.Cells[cell]
			require.True(t, g.nodeIntersects(n, rng), "stray node (%d, %d)", row, cell)
			require.True(t, g.spans.IsOwner(row, cell), "node (%d, %d) is covered by a span", row, cell)
			require.NotNil(t, n.Buffer)
		}
	}
}

// fakeEditor edits the column field as a string.
type fakeEditor struct {
	args      EditorArgs
	value     string
	initial   string
	valid     bool
	focused   int
	destroyed bool
}

func fakeEditorFactory(valid bool, last **fakeEditor) EditorFactory {
	return func(args EditorArgs) Editor {
		e := &fakeEditor{args: args, valid: valid}
		if last != nil {
			*last = e
		}
		return e
	}
}

func (e *fakeEditor) Init()                {}
func (e *fakeEditor) Destroy()             { e.destroyed = true }
func (e *fakeEditor) Focus()               { e.focused++ }
func (e *fakeEditor) SetDirectValue(v any) { e.value = fmt.Sprint(v) }

func (e *fakeEditor) LoadValue(item Item) {
	e.value = fmt.Sprint(item[e.args.Column.Field])
	e.initial = e.value
}

func (e *fakeEditor) SerializeValue() any         { return e.value }
func (e *fakeEditor) ApplyValue(item Item, v any) { item[e.args.Column.Field] = v }
func (e *fakeEditor) IsValueChanged() bool        { return e.value != e.initial }
func (e *fakeEditor) Save()                       { e.args.Commit() }
func (e *fakeEditor) Cancel()                     { e.args.Cancel() }
func (e *fakeEditor) Hide()                       {}
func (e *fakeEditor) Show()                       {}
func (e *fakeEditor) Position(Box)                {}
func (e *fakeEditor) Update(tea.Msg) tea.Cmd      { return nil }
func (e *fakeEditor) View() string                { return e.value }

func (e *fakeEditor) Validate() ValidationResult {
	if e.valid {
		return ValidationResult{Valid: true}
	}
	return ValidationResult{Msg: "rejected"}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(nil, testColumns(1, 5), testOptions())
	require.ErrorIs(t, err, ErrNoDataSource)

	_, err = New(Items{}, nil, testOptions())
	require.ErrorIs(t, err, ErrNoColumns)

	_, err = New(Items{}, []*Column{NewColumn("a", "A", "a"), NewColumn("a", "B", "b")}, testOptions())
	require.ErrorIs(t, err, ErrDuplicateColumnID)

	bad := NewColumn("a", "A", "a")
	bad.MinWidth, bad.MaxWidth = 10, 5
	_, err = New(Items{}, []*Column{bad}, testOptions())
	require.ErrorIs(t, err, ErrInvalidColumn)

	_, err = New(Items{}, []*Column{{Name: "no id"}}, testOptions())
	require.ErrorIs(t, err, ErrInvalidColumn)
}

func TestGrid_ColumnGroups(t *testing.T) {
	t.Parallel()

	cols := []*Column{
		NewColumn("id", "ID", "id"),
		{ID: "person", Name: "Person", Children: []*Column{
			NewColumn("first", "First", "first"),
			NewColumn("last", "Last", "last"),
		}},
	}
	g := newTestGrid(t, Items{}, cols, testOptions(), 40, 5)
	require.Len(t, g.Columns(), 3)
	require.Len(t, g.ColumnTree(), 2)
	idx, ok := g.ColumnIndex("last")
	require.True(t, ok)
	require.Equal(t, 2, idx)
	_, ok = g.ColumnIndex("person")
	require.False(t, ok)
	require.Equal(t, -1, cols[1].Index())
}

func TestGrid_UniformRows(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.RowHeight = 25
	g := newTestGrid(t, newSliceSource(100), testColumns(4, 10), opts, 41, 100)

	require.Equal(t, 0, g.Viewport().VisibleRange(0, 0).Top)
	require.Equal(t, 1250, g.PositionCache().RowTop(50))
	require.Equal(t, 2500, g.Viewport().ContentHeight())
	requireCoherent(t, g)
}

func TestGrid_RenderCoherence(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(1000), testColumns(4, 10), testOptions(), 31, 10)
	requireCoherent(t, g)
	require.NotNil(t, g.cache.Node(0, 0))
	require.Equal(t, "0", g.cache.Node(0, 2).Content)

	g.ScrollTo(500)
	requireCoherent(t, g)
	require.NotNil(t, g.cache.Node(500, 0))
	require.Nil(t, g.cache.Node(0, 0))

	g.ScrollBy(-7)
	requireCoherent(t, g)
	require.Equal(t, 493, g.vp.CurrentVisibleRange().Top)

	g.ScrollHorizontallyBy(10)
	requireCoherent(t, g)
	require.Equal(t, 10, g.vp.ScrollLeft())
}

func TestGrid_RowspanOwnerOutlivesItsRow(t *testing.T) {
	t.Parallel()

	src := newSliceSource(10)
	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{1: {Rowspan: 3}}}
	opts := testOptions()
	opts.MinBuffer, opts.MaxBuffer = 0, 0
	g := newTestGrid(t, src, testColumns(3, 5), opts, 16, 5)

	require.Equal(t, 2, g.SpanIndex().Spans(3, 1).Row)
	require.Equal(t, 2, g.SpanIndex().Spans(4, 1).Row)

	g.ScrollTo(3)
	require.Equal(t, 3, g.vp.CurrentRenderedRange().Top)
	require.Nil(t, g.cache.Node(2, 0), "row 2 is outside the rendered range")
	node := g.cache.Node(2, 1)
	require.NotNil(t, node, "the owner still covers visible rows")
	require.Equal(t, 3, node.Height)
	require.Nil(t, g.cache.Node(3, 1))
	requireCoherent(t, g)

	g.ScrollTo(5)
	require.Nil(t, g.cache.Node(2, 1))
	requireCoherent(t, g)
}

func TestGrid_RowCountShrinkClampsSpans(t *testing.T) {
	t.Parallel()

	src := newSliceSource(10)
	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{1: {Rowspan: 3}}}
	g := newTestGrid(t, src, testColumns(3, 5), testOptions(), 16, 8)
	require.Equal(t, 3, g.cache.Node(2, 1).Height)

	src.items = src.items[:4]
	g.UpdateRowCount()
	g.Render()

	node := g.cache.Node(2, 1)
	require.NotNil(t, node)
	require.Equal(t, 2, node.Height)
	require.Nil(t, g.cache.Row(4))
	requireCoherent(t, g)
}

func TestGrid_PagingRendersTheRightRows(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.MaxCanvasHeight = 1000
	g := newTestGrid(t, newSliceSource(5000), testColumns(3, 5), opts, 16, 10)

	g.ScrollTo(4000)
	require.Equal(t, 3206, g.vp.Offset())
	require.Equal(t, 4000, g.CurrentVisibleRange().Top)
	requireCoherent(t, g)
	require.Equal(t, "4000", g.cache.Node(4000, 0).Content)
	require.Equal(t, 794, g.cache.Row(4000).Top)

	g.ScrollRowIntoView(4999, false)
	require.Equal(t, 4999, g.CurrentVisibleRange().Bottom)
	requireCoherent(t, g)
	require.NotNil(t, g.cache.Node(4999, 2))
}

func TestGrid_TimeSlicedRender(t *testing.T) {
	t.Parallel()

	var now time.Time
	opts := testOptions()
	opts.RenderDelay = 10 * time.Millisecond
	opts.RenderBudget = time.Millisecond
	opts.Clock = func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
	g := newTestGrid(t, newSliceSource(1000), testColumns(3, 5), opts, 16, 10)
	requireCoherent(t, g)

	var partial int
	g.Events().OnRenderEnd.Subscribe(func(_ *EventData, args RenderArgs) {
		if !args.Complete {
			partial++
		}
	})

	g.ScrollTo(500)
	require.True(t, g.RenderPending())
	require.NotNil(t, g.Flush())

	ticks := 0
	for g.RenderPending() && ticks < 100 {
		g.handleRenderTick(renderTickMsg{grid: g.id, seq: g.sched.seq})
		ticks++
	}
	require.Greater(t, ticks, 1)
	require.Positive(t, partial)
	requireCoherent(t, g)
}

func TestGrid_RenderDiscardsPendingRequest(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.RenderDelay = 10 * time.Millisecond
	g := newTestGrid(t, newSliceSource(100), testColumns(3, 5), opts, 16, 10)

	g.ScrollTo(50)
	require.True(t, g.RenderPending())
	stale := g.sched.seq

	g.Render()
	require.False(t, g.RenderPending())
	requireCoherent(t, g)

	rendered := 0
	g.Events().OnRenderStart.Subscribe(func(*EventData, RenderArgs) { rendered++ })
	g.handleRenderTick(renderTickMsg{grid: g.id, seq: stale})
	require.Zero(t, rendered)
}

func TestGrid_AsyncPostRender(t *testing.T) {
	t.Parallel()

	cols := testColumns(2, 5)
	cols[1].AsyncPostRender = func(_, _ int, _ Item, _ *Column, content string) string {
		return content + "!"
	}
	opts := testOptions()
	opts.EnableAsyncPostRender = true
	opts.AsyncPostRenderBudget = 0
	g := newTestGrid(t, newSliceSource(20), cols, opts, 11, 5)
	require.NotNil(t, g.Flush())
	require.Equal(t, "10", g.cache.Node(1, 1).Content)

	g.handlePostRenderTick(postRenderTickMsg{grid: g.id, seq: g.post.seq})
	require.Equal(t, "10!", g.cache.Node(1, 1).Content)
	require.Equal(t, "1", g.cache.Node(1, 0).Content)
	require.Equal(t, "60", g.cache.Node(6, 1).Content, "only visible rows are post-processed")
	require.False(t, g.post.active)
}

func TestGrid_NavigateNextCycles(t *testing.T) {
	t.Parallel()

	cols := testColumns(3, 5)
	cols[1].Focusable = false
	g := newTestGrid(t, newSliceSource(4), cols, testOptions(), 16, 10)
	require.True(t, g.SetActiveCell(0, 0))

	want := []Coord{{0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 2}, {3, 0}, {3, 2}, {0, 0}}
	for _, c := range want {
		require.True(t, g.NavigateNext())
		got, ok := g.ActiveCell()
		require.True(t, ok)
		require.Equal(t, c, got)
	}
	for i := len(want) - 2; i >= 0; i-- {
		require.True(t, g.NavigatePrev())
		got, _ := g.ActiveCell()
		require.Equal(t, want[i], got)
	}
}

func TestGrid_NavigateSingleFocusableCell(t *testing.T) {
	t.Parallel()

	src := newSliceSource(3)
	for r := 1; r < 3; r++ {
		src.meta[r] = &ItemMetadata{Focusable: Bool(false)}
	}
	cols := testColumns(2, 5)
	cols[1].Focusable = false
	g := newTestGrid(t, src, cols, testOptions(), 11, 10)
	require.True(t, g.SetActiveCell(0, 0))

	require.False(t, g.NavigateDown())
	require.False(t, g.NavigateRight())
	got, _ := g.ActiveCell()
	require.Equal(t, Coord{0, 0}, got)

	require.True(t, g.NavigateNext())
	got, _ = g.ActiveCell()
	require.Equal(t, Coord{0, 0}, got)
}

func TestGrid_FocusableResolution(t *testing.T) {
	t.Parallel()

	src := newSliceSource(3)
	src.meta[1] = &ItemMetadata{
		Focusable: Bool(false),
		Columns:   map[string]*ColumnMetadata{"b": {Focusable: Bool(true)}},
	}
	g := newTestGrid(t, src, testColumns(2, 5), testOptions(), 11, 10)

	require.True(t, g.CanCellBeActive(0, 0))
	require.False(t, g.CanCellBeActive(1, 0))
	require.True(t, g.CanCellBeActive(1, 1), "cell metadata wins over row metadata")
	require.False(t, g.CanCellBeActive(3, 0))
}

func TestGrid_NavigateAcrossSpans(t *testing.T) {
	t.Parallel()

	src := newSliceSource(5)
	src.meta[1] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Colspan: 2}}}
	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{2: {Rowspan: 2}}}
	g := newTestGrid(t, src, testColumns(3, 5), testOptions(), 16, 10)

	require.True(t, g.SetActiveCell(0, 1))
	require.True(t, g.NavigateDown())
	got, _ := g.ActiveCell()
	require.Equal(t, Coord{1, 0}, got, "down lands on the owner of the span")
	cursor, _ := g.ActiveCursor()
	require.Equal(t, Coord{1, 1}, cursor, "the cursor keeps its column")

	// The cursor column is restored after leaving the span.
	require.True(t, g.NavigateDown())
	got, _ = g.ActiveCell()
	require.Equal(t, Coord{2, 1}, got)

	require.True(t, g.NavigateRight())
	got, _ = g.ActiveCell()
	require.Equal(t, Coord{2, 2}, got)
	require.True(t, g.NavigateDown())
	got, _ = g.ActiveCell()
	require.Equal(t, Coord{4, 2}, got, "down skips the rest of the rowspan")

	require.True(t, g.SetActiveCell(3, 2))
	got, _ = g.ActiveCell()
	require.Equal(t, Coord{2, 2}, got, "activating a covered cell activates its owner")
}

func TestGrid_ActiveCellChangingVeto(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(5), testColumns(2, 5), testOptions(), 11, 10)
	require.True(t, g.SetActiveCell(0, 0))

	var changed []CellArgs
	g.Events().OnActiveCellChanged.Subscribe(func(_ *EventData, args CellArgs) { changed = append(changed, args) })
	unsubscribe := g.Events().OnActiveCellChanging.Subscribe(func(ed *EventData, args ActiveCellChangingArgs) {
		if args.To.Row == 2 {
			ed.MarkHandled()
		}
	})

	require.True(t, g.SetActiveCell(1, 0))
	require.False(t, g.SetActiveCell(2, 0))
	got, _ := g.ActiveCell()
	require.Equal(t, Coord{1, 0}, got)
	require.Len(t, changed, 1)

	unsubscribe()
	require.True(t, g.SetActiveCell(2, 0))
	require.Equal(t, StateActive, g.State())

	g.ResetActiveCell()
	require.Equal(t, StateIdle, g.State())
	require.Equal(t, -1, changed[len(changed)-1].Row)
}

func TestGrid_FocusParkedWhileNodeIsRebuilt(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(50), testColumns(2, 5), testOptions(), 11, 10)
	g.Focus()
	require.True(t, g.SetActiveCell(1, 1))
	old := g.FocusedNode()
	require.NotZero(t, old)
	require.Equal(t, old, g.ActiveCellNode().ID)

	g.cache.RemoveCell(1, 1)
	require.True(t, g.FocusParked())
	require.Zero(t, g.FocusedNode())

	// A blur while focus is parked does not leave the grid.
	g.Blur()
	require.True(t, g.Focused())

	g.Render()
	require.False(t, g.FocusParked())
	require.NotZero(t, g.FocusedNode())
	require.NotEqual(t, old, g.FocusedNode())
	require.Equal(t, g.ActiveCellNode().ID, g.FocusedNode())
}

func TestGrid_ActiveCellSurvivesScrolling(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(500), testColumns(2, 5), testOptions(), 11, 10)
	g.Focus()
	require.True(t, g.SetActiveCell(0, 0))
	id := g.FocusedNode()

	g.ScrollTo(300)
	require.NotNil(t, g.cache.Node(0, 0), "the active node is never evicted")
	require.Equal(t, id, g.FocusedNode())
	requireCoherent(t, g)
}

func TestGrid_FocusStyles(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(5), testColumns(2, 5), testOptions(), 11, 10)
	require.True(t, g.SetActiveCell(0, 0))
	require.Contains(t, g.ActiveCellNode().Classes, ClassActiveBlur)

	g.Focus()
	require.Contains(t, g.ActiveCellNode().Classes, ClassActive)
	require.NotContains(t, g.ActiveCellNode().Classes, ClassActiveBlur)

	g.Blur()
	require.Contains(t, g.ActiveCellNode().Classes, ClassActiveBlur)
}

func TestGrid_ValidationFailureKeepsEditor(t *testing.T) {
	t.Parallel()

	var fe *fakeEditor
	cols := testColumns(2, 5)
	cols[0].Editor = fakeEditorFactory(false, &fe)
	opts := testOptions()
	opts.Editable = true
	g := newTestGrid(t, newSliceSource(5), cols, opts, 11, 10)
	g.Focus()

	var failures []ValidationErrorArgs
	g.Events().OnValidationError.Subscribe(func(_ *EventData, args ValidationErrorArgs) {
		failures = append(failures, args)
	})

	require.True(t, g.SetActiveCell(2, 0))
	require.True(t, g.EditActiveCell(nil))
	require.Equal(t, StateEditing, g.State())
	require.Equal(t, "2", fe.value)
	require.Equal(t, 1, fe.focused)

	fe.value = "bad"
	require.False(t, g.CommitCurrentEdit())
	require.Equal(t, StateEditing, g.State())
	require.Same(t, fe, g.CurrentEditor())
	require.Equal(t, "bad", fe.value)
	require.Equal(t, 2, fe.focused)
	require.Equal(t, focusEditor, g.focus.kind)
	require.Contains(t, g.ActiveCellNode().Classes, ClassInvalid)
	require.Len(t, failures, 1)
	require.Equal(t, "rejected", failures[0].Result.Msg)

	// Navigation is refused while the edit cannot be committed.
	require.True(t, g.NavigateDown())
	got, _ := g.ActiveCell()
	require.Equal(t, Coord{2, 0}, got)

	require.True(t, g.CancelCurrentEdit())
	require.Equal(t, StateActive, g.State())
	require.True(t, fe.destroyed)
	require.Equal(t, 2, g.Item(2)["a"])
	require.False(t, g.EditLock().IsActive(nil))
}

func TestGrid_CommitAppliesValue(t *testing.T) {
	t.Parallel()

	var fe *fakeEditor
	cols := testColumns(2, 5)
	cols[1].Editor = fakeEditorFactory(true, &fe)
	opts := testOptions()
	opts.Editable = true
	g := newTestGrid(t, newSliceSource(5), cols, opts, 11, 10)

	var changes []CellArgs
	g.Events().OnCellChange.Subscribe(func(_ *EventData, args CellArgs) { changes = append(changes, args) })

	require.True(t, g.GotoCell(3, 1, true))
	require.True(t, g.IsEditing())
	fe.value = "edited"
	require.True(t, g.CommitCurrentEdit())

	require.Equal(t, StateActive, g.State())
	require.Equal(t, "edited", g.Item(3)["b"])
	require.Equal(t, "edited", g.cache.Node(3, 1).Content)
	require.Len(t, changes, 1)
	require.Equal(t, 3, changes[0].Row)
	require.False(t, g.EditLock().IsActive(nil))
}

func TestGrid_UnchangedCommitSkipsValidation(t *testing.T) {
	t.Parallel()

	var fe *fakeEditor
	cols := testColumns(1, 5)
	cols[0].Editor = fakeEditorFactory(false, &fe)
	opts := testOptions()
	opts.Editable = true
	g := newTestGrid(t, newSliceSource(3), cols, opts, 6, 5)

	require.True(t, g.GotoCell(0, 0, true))
	require.True(t, g.CommitCurrentEdit())
	require.False(t, g.IsEditing())
}

func TestGrid_EditCommandHandler(t *testing.T) {
	t.Parallel()

	var fe *fakeEditor
	var commands []*EditCommand
	cols := testColumns(1, 5)
	cols[0].Editor = fakeEditorFactory(true, &fe)
	opts := testOptions()
	opts.Editable = true
	opts.EditCommandHandler = func(_ Item, _ *Column, cmd *EditCommand) {
		commands = append(commands, cmd)
		cmd.Execute()
	}
	g := newTestGrid(t, newSliceSource(3), cols, opts, 6, 5)

	require.True(t, g.GotoCell(1, 0, true))
	fe.value = "x"
	require.True(t, g.CommitCurrentEdit())
	require.Len(t, commands, 1)
	require.Equal(t, "x", g.Item(1)["a"])
	require.Equal(t, "x", g.cache.Node(1, 0).Content)

	commands[0].Undo()
	require.Equal(t, "1", g.Item(1)["a"])
	require.Equal(t, "1", g.cache.Node(1, 0).Content)
}

func TestGrid_BeforeEditCellVeto(t *testing.T) {
	t.Parallel()

	cols := testColumns(1, 5)
	cols[0].Editor = fakeEditorFactory(true, nil)
	opts := testOptions()
	opts.Editable = true
	g := newTestGrid(t, newSliceSource(3), cols, opts, 6, 5)
	g.Events().OnBeforeEditCell.Subscribe(func(ed *EventData, _ CellArgs) { ed.MarkHandled() })

	require.True(t, g.SetActiveCell(0, 0))
	require.False(t, g.EditActiveCell(nil))
	require.False(t, g.EditLock().IsActive(nil))
}

func TestGrid_AddNewRow(t *testing.T) {
	t.Parallel()

	var fe *fakeEditor
	cols := testColumns(2, 5)
	cols[0].Editor = fakeEditorFactory(true, &fe)
	opts := testOptions()
	opts.Editable = true
	opts.EnableAddRow = true
	g := newTestGrid(t, newSliceSource(3), cols, opts, 11, 10)
	require.Equal(t, 4, g.DataLengthIncludingAddNew())
	require.Contains(t, g.cache.Node(3, 1).Classes, ClassNewRow)

	var added []AddNewRowArgs
	g.Events().OnAddNewRow.Subscribe(func(_ *EventData, args AddNewRowArgs) { added = append(added, args) })

	// Activating the add-new row opens the editor.
	require.True(t, g.GotoCell(3, 0, false))
	require.True(t, g.IsEditing())
	fe.value = "new"
	require.True(t, g.CommitCurrentEdit())
	require.Len(t, added, 1)
	require.Equal(t, Item{"a": "new"}, added[0].Item)
	require.Equal(t, "a", added[0].Column.ID)
}

func TestGrid_SharedEditLock(t *testing.T) {
	t.Parallel()

	lock := NewEditLock()
	var fe1, fe2 *fakeEditor
	newGrid := func(fe **fakeEditor) *Grid {
		cols := testColumns(1, 5)
		cols[0].Editor = fakeEditorFactory(false, fe)
		opts := testOptions()
		opts.Editable = true
		opts.EditLock = lock
		return newTestGrid(t, newSliceSource(3), cols, opts, 6, 5)
	}
	g1, g2 := newGrid(&fe1), newGrid(&fe2)

	require.True(t, g1.GotoCell(0, 0, true))
	require.True(t, lock.IsActive(g1.ctrl))

	// Moving in the other grid asks the holder to commit; the invalid value
	// refuses.
	fe1.value = "bad"
	require.False(t, g2.GotoCell(1, 0, true))
	require.True(t, g1.IsEditing())
	require.Nil(t, fe2)

	fe1.value = fe1.initial
	require.True(t, g2.GotoCell(1, 0, true))
	require.False(t, g1.IsEditing())
	require.True(t, g2.IsEditing())
	require.True(t, lock.IsActive(g2.ctrl))
}

func TestGrid_Destroy(t *testing.T) {
	t.Parallel()

	cols := testColumns(1, 5)
	cols[0].Editor = fakeEditorFactory(true, nil)
	opts := testOptions()
	opts.Editable = true
	opts.EditLock = NewEditLock()
	g, err := New(newSliceSource(3), cols, opts)
	require.NoError(t, err)
	g.SetSize(6, 5)

	destroyed := 0
	g.Events().OnBeforeDestroy.Subscribe(func(*EventData, struct{}) { destroyed++ })
	require.True(t, g.GotoCell(0, 0, true))

	g.Destroy()
	g.Destroy()
	require.Equal(t, 1, destroyed)
	require.False(t, opts.EditLock.IsActive(nil))
	require.Equal(t, StateIdle, g.State())
	require.Zero(t, g.RenderCache().NodeCount())
	require.False(t, g.SetActiveCell(0, 0))
	require.Nil(t, g.Update(tea.KeyPressMsg{Code: tea.KeyDown}))
}

func TestGrid_Autosize(t *testing.T) {
	t.Parallel()

	cols := testColumns(3, 10)
	cols[1].MaxWidth = 5
	opts := testOptions()
	opts.ForceFitColumns = true
	g := newTestGrid(t, newSliceSource(3), cols, opts, 41, 5)

	total := 0
	for _, c := range g.Columns() {
		total += c.Width
	}
	require.Equal(t, 40, total)
	require.LessOrEqual(t, cols[1].Width, 5)
	require.Equal(t, 40, g.PositionCache().TotalWidth())
}

func TestGrid_RowspanOwnerAboveRangeIsRefreshed(t *testing.T) {
	t.Parallel()

	src := newSliceSource(100)
	src.meta[0] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{0: {Rowspan: 30}}}
	g := newTestGrid(t, src, testColumns(2, 5), testOptions(), 11, 10)

	g.ScrollRowToTop(10)
	require.Greater(t, g.vp.CurrentRenderedRange().Top, 0)
	require.NotNil(t, g.cache.Node(0, 0), "the owner still covers visible rows")

	src.items[0]["a"] = "CHANGED"
	g.InvalidateRow(0)
	g.Render()

	node := g.cache.Node(0, 0)
	require.NotNil(t, node)
	require.Equal(t, "CHANGED", node.Content)
	require.False(t, g.cache.Row(0).Dirty[0])
	requireCoherent(t, g)
}

func TestGrid_NonFocusableCellCannotBeActivated(t *testing.T) {
	t.Parallel()

	src := newSliceSource(3)
	src.meta[2] = &ItemMetadata{ColumnsByIndex: map[int]*ColumnMetadata{1: {Transparent: true}}}
	cols := testColumns(2, 5)
	cols[0].Focusable = false
	for _, c := range cols {
		c.Editor = fakeEditorFactory(true, nil)
	}
	opts := testOptions()
	opts.Editable = true
	g := newTestGrid(t, src, cols, opts, 11, 10)

	require.False(t, g.CanCellBeActive(0, 0))
	require.False(t, g.SetActiveCell(0, 0))
	require.Equal(t, StateIdle, g.State())
	require.False(t, g.EditActiveCell(nil))
	require.Equal(t, StateIdle, g.State())

	require.False(t, g.SetActiveCell(2, 1), "transparent cells are not focusable")
	require.Equal(t, StateIdle, g.State())

	require.True(t, g.SetActiveCell(0, 1))
	require.Equal(t, StateActive, g.State())

	// The cell stops being focusable while active: editing is refused.
	src.meta[0] = &ItemMetadata{Columns: map[string]*ColumnMetadata{"b": {Focusable: Bool(false)}}}
	require.False(t, g.EditActiveCell(nil))
	require.Equal(t, StateActive, g.State())
	require.False(t, g.IsEditing())
}

func TestGrid_SetColumnsShrinkEvicts(t *testing.T) {
	t.Parallel()

	g := newTestGrid(t, newSliceSource(20), testColumns(4, 5), testOptions(), 21, 5)
	g.Focus()
	require.NotNil(t, g.cache.Node(0, 3))
	require.NotNil(t, g.cache.Node(4, 2))

	require.True(t, g.SetActiveCell(1, 3))
	require.NotZero(t, g.FocusedNode())

	require.NoError(t, g.SetColumns(testColumns(2, 5)))

	for _, row := range g.cache.Rows() {
		for _, cell := range g.cache.Row(row).SortedCells() {
			require.Less(t, cell, 2, "node (%d, %d) outlived its column", row, cell)
		}
	}
	_, ok := g.ActiveCell()
	require.False(t, ok, "the active cell's column is gone")
	require.Equal(t, StateIdle, g.State())
	require.False(t, g.FocusParked())
	require.Zero(t, g.FocusedNode())
	requireCoherent(t, g)

	require.True(t, g.SetActiveCell(1, 1))
	require.NotZero(t, g.FocusedNode())
}

func TestGrid_DestroyLeavesOtherGridsEdit(t *testing.T) {
	t.Parallel()

	lock := NewEditLock()
	newGrid := func() *Grid {
		cols := testColumns(1, 5)
		cols[0].Editor = fakeEditorFactory(true, nil)
		opts := testOptions()
		opts.Editable = true
		opts.EditLock = lock
		return newTestGrid(t, newSliceSource(3), cols, opts, 6, 5)
	}
	g1, g2 := newGrid(), newGrid()

	require.True(t, g2.GotoCell(0, 0, true))
	require.True(t, lock.IsActive(g2.ctrl))

	g1.Destroy()
	require.True(t, g2.IsEditing())
	require.True(t, lock.IsActive(g2.ctrl))
}
