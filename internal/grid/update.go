package grid

import (
	"log/slog"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

const (
	// maxMeasureTries bounds the terminal measurement retries of Init.
	maxMeasureTries = 10
	measureInterval = 50 * time.Millisecond

	doubleClickInterval = 400 * time.Millisecond
	wheelStep           = 3
)

// measureMsg carries the result of a terminal size measurement.
type measureMsg struct {
	grid          string
	width, height int
	err           error
}

// clickState remembers the last click for double-click detection.
type clickState struct {
	at    time.Time
	coord Coord
}

// Init starts measuring the terminal when the host has not sized the grid
// yet. Measurement is retried until the terminal reports a size.
func (g *Grid) Init() tea.Cmd {
	if g.measured || !g.caps.Interactive {
		return g.Flush()
	}
	return tea.Batch(g.Flush(), g.measure(0))
}

func (g *Grid) measure(delay time.Duration) tea.Cmd {
	id := g.id
	do := func() tea.Msg {
		w, h, err := terminalSize()
		return measureMsg{grid: id, width: w, height: h, err: err}
	}
	if delay <= 0 {
		return do
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return do() })
}

func (g *Grid) handleMeasure(msg measureMsg) {
	if g.measured {
		return
	}
	if msg.err == nil && msg.width > 0 && msg.height > 0 {
		g.SetSize(msg.width, msg.height)
		return
	}
	g.measureTries++
	if g.measureTries >= maxMeasureTries {
		slog.Warn("Giving up measuring the terminal", "grid", g.id, "tries", g.measureTries, "error", msg.err)
		return
	}
	g.queue(g.measure(measureInterval))
}

// Update handles a message and returns the commands the grid needs run.
func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	if g.destroyed {
		return nil
	}
	switch msg := msg.(type) {
	case renderTickMsg:
		if msg.grid == g.id {
			g.handleRenderTick(msg)
		}
	case postRenderTickMsg:
		if msg.grid == g.id {
			g.handlePostRenderTick(msg)
		}
	case flashTickMsg:
		if msg.grid == g.id {
			g.handleFlashTick(msg)
		}
	case measureMsg:
		if msg.grid == g.id {
			g.handleMeasure(msg)
		}
	case tea.FocusMsg:
		g.Focus()
	case tea.BlurMsg:
		g.Blur()
	case tea.KeyPressMsg:
		if g.focused {
			g.handleKey(msg)
		}
	case tea.MouseClickMsg:
		g.handleClick(msg)
	case tea.MouseWheelMsg:
		g.handleWheel(msg)
	default:
		if s := g.session; s != nil {
			g.queue(s.editor.Update(msg))
		}
	}
	return g.Flush()
}

func (g *Grid) handleKey(msg tea.KeyPressMsg) {
	args := KeyDownArgs{Row: -1, Cell: -1, Key: msg}
	if g.active.set {
		args.Row, args.Cell = g.active.row, g.active.cell
	}
	if g.events.OnKeyDown.Notify(args).Handled() {
		return
	}

	if s := g.session; s != nil {
		switch {
		case key.Matches(msg, g.keyMap.Cancel):
			g.lock.CancelCurrentEdit()
			g.syncFocus()
		case key.Matches(msg, g.keyMap.Commit):
			if g.active.row == g.DataLength() {
				g.NavigateDown()
				return
			}
			if g.lock.CommitCurrentEdit() {
				g.syncFocus()
				if g.opts.AutoEdit {
					g.NavigateDown()
				}
			}
		case key.Matches(msg, g.keyMap.Next):
			g.NavigateNext()
		case key.Matches(msg, g.keyMap.Prev):
			g.NavigatePrev()
		default:
			g.queue(s.editor.Update(msg))
		}
		return
	}

	switch {
	case key.Matches(msg, g.keyMap.Up):
		g.NavigateUp()
	case key.Matches(msg, g.keyMap.Down):
		g.NavigateDown()
	case key.Matches(msg, g.keyMap.Left):
		g.NavigateLeft()
	case key.Matches(msg, g.keyMap.Right):
		g.NavigateRight()
	case key.Matches(msg, g.keyMap.Next):
		g.NavigateNext()
	case key.Matches(msg, g.keyMap.Prev):
		g.NavigatePrev()
	case key.Matches(msg, g.keyMap.Home):
		g.NavigateHome()
	case key.Matches(msg, g.keyMap.End):
		g.NavigateEnd()
	case key.Matches(msg, g.keyMap.PageDown):
		g.NavigatePageDown()
	case key.Matches(msg, g.keyMap.PageUp):
		g.NavigatePageUp()
	case key.Matches(msg, g.keyMap.Edit):
		if g.active.set {
			g.makeActiveCellEditable(nil)
		}
	case key.Matches(msg, g.keyMap.Select):
		if g.active.set && g.CanCellBeSelected(g.active.row, g.active.cell) {
			g.ToggleRowSelection(g.active.row)
		}
	}
}

func (g *Grid) handleClick(msg tea.MouseClickMsg) {
	if msg.Button != tea.MouseLeft {
		return
	}
	p := g.GetCellFromEvent(msg.X, msg.Y)
	switch p.Zone {
	case ZoneHeader:
		if p.Cell < 0 || p.Cell >= len(g.cols.leaves) {
			return
		}
		col := g.cols.leaves[p.Cell]
		if !g.events.OnHeaderClick.Notify(HeaderClickArgs{Column: col}).Handled() {
			g.toggleSort(col)
		}
		return
	case ZoneViewport:
	default:
		return
	}
	if p.Row < 0 || p.Row >= g.DataLengthIncludingAddNew() {
		return
	}
	row, cell := g.spans.Owner(p.Row, p.Cell)
	g.Focus()

	now := g.now()
	c := Coord{Row: row, Cell: cell}
	double := c == g.click.coord && !g.click.at.IsZero() && now.Sub(g.click.at) <= doubleClickInterval
	g.click = clickState{at: now, coord: c}

	args := ClickArgs{Row: row, Cell: cell, X: msg.X - g.originX, Y: msg.Y - g.originY}
	if double {
		g.click = clickState{}
		if g.events.OnDblClick.Notify(args).Handled() {
			return
		}
		if g.opts.Editable {
			g.GotoCell(row, cell, true)
		}
		return
	}
	if g.events.OnClick.Notify(args).Handled() {
		return
	}
	if g.isActiveCoord(row, cell) {
		return
	}
	g.GotoCell(row, cell, false)
}

func (g *Grid) handleWheel(msg tea.MouseWheelMsg) {
	if p := g.GetCellFromEvent(msg.X, msg.Y); p.Zone == ZoneOutside {
		return
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		g.ScrollBy(-wheelStep)
	case tea.MouseWheelDown:
		g.ScrollBy(wheelStep)
	case tea.MouseWheelLeft:
		g.ScrollHorizontallyBy(-wheelStep)
	case tea.MouseWheelRight:
		g.ScrollHorizontallyBy(wheelStep)
	}
}
