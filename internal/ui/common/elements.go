package common

import (
	"os"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	"github.com/charmbracelet/x/ansi"
)

// PrettyPath shortens path relative to the home directory.
func PrettyPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	rel, err := filepath.Rel(home, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.Join("~", rel)
}

// StatusItem is a labelled value of the status bar.
type StatusItem struct {
	Label string
	Value string
	// Style overrides the value style when set.
	Style *lipgloss.Style
}

// StatusBar renders items from the left and message flush right on a single
// line of width cells. The message wins when space runs out.
func StatusBar(t *styles.Styles, items []StatusItem, message string, messageStyle lipgloss.Style, width int) string {
	if width <= 0 {
		return ""
	}
	bar := t.Status.Bar

	parts := make([]string, 0, len(items))
	for _, it := range items {
		value := t.Status.Value
		if it.Style != nil {
			value = *it.Style
		}
		var part string
		if it.Label != "" {
			part = t.Status.Key.Render(it.Label+" ") + value.Render(it.Value)
		} else {
			part = value.Render(it.Value)
		}
		parts = append(parts, part)
	}
	left := bar.Render(" ") + strings.Join(parts, bar.Render("  "))

	right := ""
	if message != "" {
		right = messageStyle.Render(ansi.Truncate(message, max(width-2, 0), "…")) + bar.Render(" ")
	}

	room := width - lipgloss.Width(right)
	left = ansi.Truncate(left, max(room, 0), "…")
	gap := max(room-lipgloss.Width(left), 0)
	return left + bar.Render(strings.Repeat(" ", gap)) + right
}
