package model

import (
	"fmt"
	"image"
	"log/slog"
	"maps"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/dataview"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/dialog"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/datagrid/internal/uiutil"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/ultraviolet/screen"
)

// maxUndo bounds the undo history.
const maxUndo = 100

// UI represents the main user interface model.
type UI struct {
	com  *common.Common
	grid *grid.Grid

	// The width and height of the terminal in cells.
	width  int
	height int
	layout layout

	keyMap KeyMap

	dialog *dialog.Overlay
	help   help.Model

	status struct {
		msg string
		typ uiutil.InfoType
		seq int
	}

	// undo holds the executed edit commands, newest last.
	undo    []*grid.EditCommand
	undoing bool
	// changed marks the cells edited since the last save.
	changed grid.CellStyles

	// pending collects the commands raised by grid event handlers.
	pending []tea.Cmd
	unsubs  []func()
}

// New creates a new instance of the [UI] model.
func New(com *common.Common) (*UI, error) {
	ui := &UI{
		com:     com,
		dialog:  dialog.NewOverlay(),
		keyMap:  DefaultKeyMap(),
		help:    help.New(),
		changed: grid.CellStyles{},
	}
	ui.help.Styles = com.Styles.Help

	opts := grid.DefaultOptions()
	opts.Styles = &com.Styles.Grid
	opts.Editable = true
	opts.EnableAddRow = true
	opts.EditCommandHandler = ui.executeEdit
	opts = com.Config.GridOptions(opts)

	g, err := grid.New(com.App.View, com.App.Columns, opts)
	if err != nil {
		return nil, err
	}
	ui.grid = g
	ui.subscribe()
	ui.grid.Focus()
	return ui, nil
}

// Init initializes the UI model.
func (m *UI) Init() tea.Cmd {
	return m.grid.Init()
}

// Update handles updates to the UI model.
func (m *UI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.updateLayoutAndSize()
		if _, ok := m.grid.ActiveCell(); !ok {
			m.grid.NavigateNext()
		}
		cmds = append(cmds, m.grid.Flush())
	case uiutil.InfoMsg:
		m.status.seq++
		m.status.msg, m.status.typ = msg.Msg, msg.Type
		cmds = append(cmds, uiutil.ClearAfter(msg.TTL, m.status.seq))
	case uiutil.ClearStatusMsg:
		if msg.Seq == m.status.seq {
			m.status.msg = ""
		}
	case tea.KeyPressMsg:
		if cmd := m.handleKeyPressMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case tea.MouseClickMsg, tea.MouseWheelMsg:
		if !m.dialog.HasDialogs() {
			cmds = append(cmds, m.grid.Update(msg))
		}
	default:
		cmds = append(cmds, m.grid.Update(msg))
	}

	cmds = append(cmds, m.pending...)
	m.pending = m.pending[:0]
	return m, tea.Batch(cmds...)
}

func (m *UI) handleKeyPressMsg(msg tea.KeyPressMsg) tea.Cmd {
	editing := m.grid.IsEditing()

	// Plain letters belong to the editor while a cell is edited.
	if key.Matches(msg, m.keyMap.Quit) && !m.dialog.ContainsDialog(dialog.QuitID) &&
		(!editing || msg.Mod != 0) {
		return m.openQuitDialog()
	}

	// Route all messages to dialog if one is open.
	if m.dialog.HasDialogs() {
		switch msg := m.dialog.Update(msg).(type) {
		case dialog.ActionClose:
			m.dialog.CloseFrontDialog()
		case dialog.ActionQuit:
			m.grid.Destroy()
			return tea.Quit
		case nil:
		default:
			slog.Debug("Unhandled dialog action", "action", fmt.Sprintf("%T", msg))
		}
		return nil
	}

	if key.Matches(msg, m.keyMap.Help) {
		m.help.ShowAll = !m.help.ShowAll
		m.updateLayoutAndSize()
		return nil
	}

	if !editing {
		switch {
		case key.Matches(msg, m.keyMap.Save):
			return m.save()
		case key.Matches(msg, m.keyMap.Undo):
			return m.undoEdit()
		case key.Matches(msg, m.keyMap.Sort):
			return m.sortActiveColumn()
		case key.Matches(msg, m.keyMap.ToggleGroup):
			if c, ok := m.grid.ActiveCell(); ok && m.com.App.View.ToggleGroupAt(c.Row) {
				return nil
			}
			return uiutil.ReportInfo("Not a group row")
		}
	}
	return m.grid.Update(msg)
}

func (m *UI) subscribe() {
	ev := m.grid.Events()
	m.unsubs = append(m.unsubs,
		ev.OnSort.Subscribe(func(_ *grid.EventData, args grid.SortArgs) {
			m.applySort(args.SortColumns)
		}),
		ev.OnCellChange.Subscribe(func(_ *grid.EventData, args grid.CellArgs) {
			m.cellChanged(args)
		}),
		ev.OnValidationError.Subscribe(func(_ *grid.EventData, args grid.ValidationErrorArgs) {
			m.pending = append(m.pending, uiutil.ReportWarn(fmt.Sprintf("%s: %s", args.Column.Name, args.Result.Msg)))
		}),
		ev.OnAddNewRow.Subscribe(func(_ *grid.EventData, args grid.AddNewRowArgs) {
			m.addRow(args.Item)
		}),
		ev.OnClick.Subscribe(func(ed *grid.EventData, args grid.ClickArgs) {
			if m.com.App.View.ToggleGroupAt(args.Row) {
				ed.MarkHandled()
			}
		}),
	)
}

// executeEdit applies a committed edit and records it for undo.
func (m *UI) executeEdit(_ grid.Item, _ *grid.Column, cmd *grid.EditCommand) {
	cmd.Execute()
	m.undo = append(m.undo, cmd)
	if len(m.undo) > maxUndo {
		m.undo = m.undo[len(m.undo)-maxUndo:]
	}
	m.refreshGroups()
}

func (m *UI) undoEdit() tea.Cmd {
	if len(m.undo) == 0 {
		return uiutil.ReportInfo("Nothing to undo")
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.undoing = true
	cmd.Undo()
	m.undoing = false
	m.refreshGroups()
	return uiutil.ReportInfo("Edit undone")
}

func (m *UI) cellChanged(args grid.CellArgs) {
	if m.undoing {
		m.com.App.MarkEdited(-1)
	} else {
		m.com.App.MarkEdited(1)
	}
	if args.Column == nil {
		return
	}
	next := maps.Clone(m.changed)
	row := maps.Clone(next[args.Row])
	if row == nil {
		row = map[string]string{}
	}
	row[args.Column.ID] = styles.ClassChanged
	next[args.Row] = row
	m.changed = next
	m.grid.SetCellCssStyles(styles.ClassChanged, m.changed)
	m.grid.FlashCell(args.Row, args.Cell)
}

func (m *UI) clearChanged() {
	m.changed = grid.CellStyles{}
	m.grid.RemoveCellCssStyles(styles.ClassChanged)
}

func (m *UI) addRow(item grid.Item) {
	a := m.com.App
	for k, v := range a.NewItem() {
		if _, ok := item[k]; !ok {
			item[k] = v
		}
	}
	if err := a.View.AddItem(item); err != nil {
		m.pending = append(m.pending, uiutil.ReportError(err))
		return
	}
	a.MarkEdited(1)
	m.pending = append(m.pending, uiutil.ReportInfo("Row added"))
}

// refreshGroups recomputes group totals after an edit.
func (m *UI) refreshGroups() {
	if len(m.com.App.View.Groups()) > 0 {
		m.com.App.View.Refresh()
	}
}

// applySort sorts the data by the grid sort columns.
func (m *UI) applySort(cols []grid.SortColumn) {
	specs := make([]dataview.SortSpec, 0, len(cols))
	leaves := m.grid.Columns()
	for _, c := range cols {
		i, ok := m.grid.ColumnIndex(c.ColumnID)
		if !ok {
			continue
		}
		specs = append(specs, dataview.SortSpec{Field: leaves[i].Field, Asc: c.Asc})
	}
	// Rows move, so the row-keyed marks would point at other items.
	m.clearChanged()
	m.com.App.View.SetSort(specs...)
}

// sortActiveColumn sorts by the active column, flipping the direction when
// it is already the sort column.
func (m *UI) sortActiveColumn() tea.Cmd {
	c, ok := m.grid.ActiveCell()
	if !ok {
		return nil
	}
	col := m.grid.Columns()[c.Cell]
	if !col.Sortable {
		return uiutil.ReportInfo(fmt.Sprintf("%s is not sortable", col.Name))
	}
	next := []grid.SortColumn{{ColumnID: col.ID, Asc: true}}
	if cur := m.grid.SortColumns(); len(cur) > 0 && cur[0].ColumnID == col.ID {
		next[0].Asc = !cur[0].Asc
	}
	m.grid.SetSortColumns(next)
	m.applySort(next)
	return nil
}

func (m *UI) save() tea.Cmd {
	n, err := m.com.App.Save()
	if err != nil {
		return uiutil.ReportError(err)
	}
	m.clearChanged()
	m.undo = nil
	return uiutil.ReportSuccess(fmt.Sprintf("Saved %s (%d edits)", common.PrettyPath(m.com.App.DataPath), n))
}

// openQuitDialog opens the quit confirmation dialog.
func (m *UI) openQuitDialog() tea.Cmd {
	if m.dialog.ContainsDialog(dialog.QuitID) {
		// Bring to front
		m.dialog.BringToFront(dialog.QuitID)
		return nil
	}

	m.dialog.OpenDialog(dialog.NewQuit(m.com, m.com.App.Unsaved()))
	return nil
}

// Draw implements [tea.Layer] and draws the UI model.
func (m *UI) Draw(scr uv.Screen, area uv.Rectangle) {
	layout := m.generateLayout(area.Dx(), area.Dy())

	if m.layout != layout {
		m.layout = layout
		m.updateSize()
	}

	// Clear the screen first
	screen.Clear(scr)

	if layout.main.Dy() < 2 {
		tooSmall := uv.NewStyledString(m.com.Styles.WindowTooSmall.Render("Window too small"))
		tooSmall.Draw(scr, layout.area)
		return
	}

	m.grid.Draw(scr, layout.main)

	status := uv.NewStyledString(m.statusView(layout.status.Dx()))
	status.Draw(scr, layout.status)

	// Add help layer
	help := uv.NewStyledString(m.help.View(m))
	help.Draw(scr, layout.help)

	// This needs to come last to overlay on top of everything
	if m.dialog.HasDialogs() {
		m.dialog.Draw(scr, area)
	}
}

func (m *UI) statusView(width int) string {
	t := m.com.Styles
	a := m.com.App

	var items []common.StatusItem
	mode := common.StatusItem{Value: "NAV"}
	if m.grid.IsEditing() {
		mode = common.StatusItem{Value: styles.EditIcon + " EDIT", Style: &t.Status.Editing}
	}
	items = append(items, mode)

	if c, ok := m.grid.ActiveCell(); ok {
		items = append(items,
			common.StatusItem{Label: "row", Value: fmt.Sprintf("%d/%d", c.Row+1, m.grid.DataLength())},
			common.StatusItem{Label: "col", Value: m.grid.Columns()[c.Cell].Name},
		)
	} else {
		items = append(items, common.StatusItem{Label: "rows", Value: fmt.Sprint(m.grid.DataLength())})
	}
	if n := len(m.grid.SelectedRows()); n > 0 {
		items = append(items, common.StatusItem{Label: "selected", Value: fmt.Sprint(n)})
	}
	if n := a.Unsaved(); n > 0 {
		items = append(items, common.StatusItem{Label: "unsaved", Value: fmt.Sprint(n), Style: &t.Status.Warn})
	}
	source := "sample data"
	if a.DataPath != "" {
		source = common.PrettyPath(a.DataPath)
	}
	items = append(items, common.StatusItem{Value: source, Style: &t.Status.Key})

	msgStyle := t.Status.Info
	icon := styles.InfoIcon
	switch m.status.typ {
	case uiutil.InfoTypeSuccess:
		msgStyle, icon = t.Status.Success, styles.CheckIcon
	case uiutil.InfoTypeWarn:
		msgStyle, icon = t.Status.Warn, styles.WarningIcon
	case uiutil.InfoTypeError:
		msgStyle, icon = t.Status.Error, styles.ErrorIcon
	}
	msg := m.status.msg
	if msg != "" {
		msg = icon + " " + msg
	}
	return common.StatusBar(t, items, msg, msgStyle, width)
}

// View renders the UI model's view.
func (m *UI) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.BackgroundColor = m.com.Styles.Background
	v.MouseMode = tea.MouseModeCellMotion

	canvas := uv.NewScreenBuffer(m.width, m.height)
	m.Draw(canvas, canvas.Bounds())

	content := strings.ReplaceAll(canvas.Render(), "\r\n", "\n") // normalize newlines
	contentLines := strings.Split(content, "\n")
	for i, line := range contentLines {
		// Trim trailing spaces for concise rendering
		contentLines[i] = strings.TrimRight(line, " ")
	}

	v.Content = strings.Join(contentLines, "\n")
	return v
}

// ShortHelp implements [help.KeyMap].
func (m *UI) ShortHelp() []key.Binding {
	k := &m.keyMap
	gk := m.gridKeyMap()
	if m.grid.IsEditing() {
		return []key.Binding{gk.Commit, gk.Cancel, gk.Next, k.Quit, k.Help}
	}
	binds := gk.ShortHelp()
	return append(binds, k.Save, k.Undo, k.Quit, k.Help)
}

// FullHelp implements [help.KeyMap].
func (m *UI) FullHelp() [][]key.Binding {
	k := &m.keyMap
	help := k.Help
	help.SetHelp("ctrl+g", "less")

	binds := m.gridKeyMap().FullHelp()
	binds = append(binds,
		[]key.Binding{
			k.Save,
			k.Undo,
			k.Sort,
			k.ToggleGroup,
		},
		[]key.Binding{
			help,
			k.Quit,
		},
	)
	return binds
}

func (m *UI) gridKeyMap() grid.KeyMap {
	if km := m.grid.Options().KeyMap; km != nil {
		return *km
	}
	return grid.DefaultKeyMap()
}

// updateLayoutAndSize updates the layout and sizes of UI components.
func (m *UI) updateLayoutAndSize() {
	m.layout = m.generateLayout(m.width, m.height)
	m.updateSize()
}

// updateSize updates the sizes of UI components based on the current layout.
func (m *UI) updateSize() {
	m.help.SetWidth(m.layout.help.Dx())
	m.grid.SetSize(m.layout.main.Dx(), m.layout.main.Dy())
}

// generateLayout calculates the layout rectangles for all UI components based
// on the terminal dimensions.
func (m *UI) generateLayout(w, h int) layout {
	// The screen area we're working with
	area := image.Rect(0, 0, w, h)

	// The help height
	helpHeight := 1
	if m.help.ShowAll {
		for _, col := range m.FullHelp() {
			helpHeight = max(helpHeight, len(col))
		}
	}
	const statusHeight = 1

	// Layout
	//
	// main
	// ------
	// status
	// ------
	// help
	appRect, helpRect := uv.SplitVertical(area, uv.Fixed(max(h-helpHeight, 0)))
	mainRect, statusRect := uv.SplitVertical(appRect, uv.Fixed(max(appRect.Dy()-statusHeight, 0)))

	return layout{
		area:   area,
		main:   mainRect,
		status: statusRect,
		help:   helpRect,
	}
}

// layout defines the positioning of UI elements.
type layout struct {
	// area is the overall available area.
	area uv.Rectangle

	// main is the area of the grid.
	main uv.Rectangle

	// status is the status line below the grid.
	status uv.Rectangle

	// help is the area for the help view.
	help uv.Rectangle
}
