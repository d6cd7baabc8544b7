package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestSetup(t *testing.T) {
	restoreDefault(t)

	path := filepath.Join(t.TempDir(), "logs", "datagrid.log")
	closer, err := Setup(Options{Path: path})
	require.NoError(t, err)
	require.True(t, Initialized())

	slog.Debug("hidden")
	slog.Info("Render pass", "rows", 12)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "Render pass", rec["msg"])
	require.EqualValues(t, 12, rec["rows"])
}

func TestSetup_Debug(t *testing.T) {
	restoreDefault(t)

	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "datagrid.log")
	closer, err := Setup(Options{Path: path, Debug: true, Stderr: &stderr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	slog.With("grid", "g1").Debug("Page switch", "page", 3)

	require.Contains(t, stderr.String(), "Page switch")
	require.Contains(t, stderr.String(), "page=3")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"grid":"g1"`)
}

func TestSetup_NoPath(t *testing.T) {
	_, err := Setup(Options{})
	require.Error(t, err)
}
