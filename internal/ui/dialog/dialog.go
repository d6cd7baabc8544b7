// Package dialog implements the modal dialogs drawn over the grid.
package dialog

import (
	"log/slog"
	"slices"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	uv "github.com/charmbracelet/ultraviolet"
)

// Dialog is a component that can be displayed on top of the UI.
type Dialog interface {
	ID() string
	// Update handles a message and returns an action for the host, or nil.
	Update(msg tea.Msg) tea.Msg
	View() string
}

// Overlay manages a stack of dialogs. The last dialog is the front one and
// receives input.
type Overlay struct {
	dialogs []Dialog
}

// NewOverlay creates a new [Overlay] instance.
func NewOverlay(dialogs ...Dialog) *Overlay {
	return &Overlay{
		dialogs: dialogs,
	}
}

// HasDialogs checks if there are any active dialogs.
func (d *Overlay) HasDialogs() bool {
	return len(d.dialogs) > 0
}

func (d *Overlay) index(dialogID string) int {
	return slices.IndexFunc(d.dialogs, func(dlg Dialog) bool { return dlg.ID() == dialogID })
}

// ContainsDialog checks if a dialog with the specified ID exists.
func (d *Overlay) ContainsDialog(dialogID string) bool {
	return d.index(dialogID) >= 0
}

// OpenDialog pushes a dialog to the front. A dialog with the same ID is
// brought to the front instead.
func (d *Overlay) OpenDialog(dialog Dialog) {
	if d.ContainsDialog(dialog.ID()) {
		d.BringToFront(dialog.ID())
		return
	}
	slog.Debug("Opening dialog", "id", dialog.ID())
	d.dialogs = append(d.dialogs, dialog)
}

// CloseDialog removes the dialog with the specified ID from the stack.
func (d *Overlay) CloseDialog(dialogID string) {
	if i := d.index(dialogID); i >= 0 {
		d.dialogs = slices.Delete(d.dialogs, i, i+1)
	}
}

// CloseFrontDialog removes the front dialog from the stack.
func (d *Overlay) CloseFrontDialog() {
	if len(d.dialogs) == 0 {
		return
	}
	d.dialogs = d.dialogs[:len(d.dialogs)-1]
}

// DialogLast returns the front dialog, or nil if there are no dialogs.
func (d *Overlay) DialogLast() Dialog {
	if len(d.dialogs) == 0 {
		return nil
	}
	return d.dialogs[len(d.dialogs)-1]
}

// BringToFront brings the dialog with the specified ID to the front.
func (d *Overlay) BringToFront(dialogID string) {
	i := d.index(dialogID)
	if i < 0 {
		return
	}
	dialog := d.dialogs[i]
	d.dialogs = append(slices.Delete(d.dialogs, i, i+1), dialog)
}

// Update routes msg to the front dialog.
func (d *Overlay) Update(msg tea.Msg) tea.Msg {
	front := d.DialogLast()
	if front == nil {
		return nil
	}
	return front.Update(msg)
}

// Draw renders the dialogs centered in area, back to front.
func (d *Overlay) Draw(scr uv.Screen, area uv.Rectangle) {
	for _, dialog := range d.dialogs {
		view := dialog.View()
		center := common.CenterRect(area, lipgloss.Width(view), lipgloss.Height(view))
		if area.Overlaps(center) {
			uv.NewStyledString(view).Draw(scr, center)
		}
	}
}
