package dialog

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/app"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

type stubDialog struct {
	id   string
	view string
	got  []tea.Msg
}

func (s *stubDialog) ID() string { return s.id }

func (s *stubDialog) Update(msg tea.Msg) tea.Msg {
	s.got = append(s.got, msg)
	return ActionClose{}
}

func (s *stubDialog) View() string { return s.view }

func ids(o *Overlay) []string {
	out := make([]string, 0, len(o.dialogs))
	for _, d := range o.dialogs {
		out = append(out, d.ID())
	}
	return out
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	a := &stubDialog{id: "a", view: "A"}
	b := &stubDialog{id: "b", view: "B"}
	o := NewOverlay()
	require.False(t, o.HasDialogs())
	require.Nil(t, o.Update(tea.KeyPressMsg{Code: 'x'}))

	o.OpenDialog(a)
	o.OpenDialog(b)
	require.Equal(t, []string{"a", "b"}, ids(o))
	require.Same(t, b, o.DialogLast())

	// Reopening brings the dialog forward.
	o.OpenDialog(a)
	require.Equal(t, []string{"b", "a"}, ids(o))

	msg := o.Update(tea.KeyPressMsg{Code: 'x'})
	require.Equal(t, ActionClose{}, msg)
	require.Len(t, a.got, 1)
	require.Empty(t, b.got)

	o.BringToFront("b")
	require.Equal(t, []string{"a", "b"}, ids(o))
	o.BringToFront("missing")
	require.Equal(t, []string{"a", "b"}, ids(o))

	o.CloseDialog("a")
	require.False(t, o.ContainsDialog("a"))
	o.CloseFrontDialog()
	require.False(t, o.HasDialogs())
	o.CloseFrontDialog()
	require.Nil(t, o.DialogLast())
}

func TestOverlay_Draw(t *testing.T) {
	t.Parallel()

	o := NewOverlay(&stubDialog{id: "box", view: "xx\nyy"})
	scr := uv.NewScreenBuffer(10, 6)
	o.Draw(&scr, scr.Bounds())

	lines := strings.Split(ansi.Strip(scr.Render()), "\n")
	require.Equal(t, "    xx", strings.TrimRight(lines[2], " "))
	require.Equal(t, "    yy", strings.TrimRight(lines[3], " "))
}

func newCommon() *common.Common {
	return common.DefaultCommon(&app.App{Config: &config.Config{}})
}

func TestQuit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []tea.KeyPressMsg
		want tea.Msg
	}{
		{"yes", []tea.KeyPressMsg{{Code: 'y', Text: "y"}}, ActionQuit{}},
		{"ctrl+c", []tea.KeyPressMsg{{Code: 'c', Mod: tea.ModCtrl}}, ActionQuit{}},
		{"q again", []tea.KeyPressMsg{{Code: 'q', Text: "q"}}, ActionQuit{}},
		{"no", []tea.KeyPressMsg{{Code: 'n', Text: "n"}}, ActionClose{}},
		{"stay", []tea.KeyPressMsg{{Code: 's', Text: "s"}}, ActionClose{}},
		{"esc", []tea.KeyPressMsg{{Code: tea.KeyEscape}}, ActionClose{}},
		{"enter confirms yes", []tea.KeyPressMsg{{Code: tea.KeyEnter}}, ActionQuit{}},
		{"switch then enter", []tea.KeyPressMsg{{Code: tea.KeyRight}, {Code: tea.KeyEnter}}, ActionClose{}},
		{"left right then enter", []tea.KeyPressMsg{{Code: tea.KeyLeft}, {Code: tea.KeyRight}, {Code: tea.KeyEnter}}, ActionQuit{}},
		{"tab twice then space", []tea.KeyPressMsg{{Code: tea.KeyTab}, {Code: tea.KeyTab}, {Code: tea.KeySpace, Text: " "}}, ActionQuit{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := NewQuit(newCommon(), 0)
			var got tea.Msg
			for _, k := range tt.keys {
				got = q.Update(k)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestQuit_UnsavedEdits(t *testing.T) {
	t.Parallel()

	q := NewQuit(newCommon(), 3)
	require.True(t, q.SelectedNo())
	require.Contains(t, ansi.Strip(q.View()), "3 edits are not saved")
	require.Equal(t, ActionClose{}, q.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))

	q = NewQuit(newCommon(), 0)
	require.False(t, q.SelectedNo())
	view := ansi.Strip(q.View())
	require.Contains(t, view, "Are you sure you want to quit?")
	require.Contains(t, view, "Quit")
	require.Contains(t, view, "Stay")
	require.Nil(t, q.Update(tea.MouseClickMsg{}))
	require.Len(t, q.ShortHelp(), 2)
	require.Len(t, q.FullHelp()[0], 4)
}
