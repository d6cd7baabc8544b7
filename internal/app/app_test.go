package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/grid/editor"
	"github.com/charmbracelet/datagrid/internal/grid/format"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newConfig() *config.Config {
	return &config.Config{Data: config.DataSpec{IDField: "id"}}
}

func TestNew_Generated(t *testing.T) {
	t.Parallel()

	a, err := New(newConfig(), Options{Rows: 25})
	require.NoError(t, err)
	require.Equal(t, 25, a.View.Length())
	require.Len(t, a.Columns, len(SampleColumns("id")))
	require.Len(t, a.Columns[1].Children, 2)

	_, err = a.Save()
	require.ErrorIs(t, err, ErrNoDataFile)

	it := a.NewItem()
	require.Len(t, it["id"], 36)
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	first := Generate(10, "id")
	require.Equal(t, first, Generate(10, "id"))
	require.Equal(t, 1.0, first[0]["id"])
	require.Equal(t, 10.0, first[9]["id"])
	for _, it := range first {
		require.IsType(t, "", it["updated"])
		require.True(t, isDate(it["updated"].(string)))
	}
}

func TestNew_DataFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rows": [
		{"id": 1, "name": "b", "team": "x", "score": 2},
		{"id": 2, "name": "a", "team": "y", "score": 5},
		{"id": 3, "name": "c", "team": "x", "score": 4}
	]}`), 0o644))

	cfg := newConfig()
	cfg.Data.ItemsPath = "rows"
	cfg.Data.GroupBy = "team"
	cfg.Data.Totals = []string{"sum:score"}
	cfg.Data.Sort = []config.SortSpec{{Column: "name"}}

	a, err := New(cfg, Options{DataPath: path})
	require.NoError(t, err)
	require.Equal(t, path, a.DataPath)
	require.Len(t, a.Columns, 4)
	require.Len(t, a.View.Groups(), 2)

	require.NoError(t, a.View.SetField("1", "score", 10.0))
	require.Equal(t, 1, a.MarkEdited(1))

	n, err := a.Save()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Zero(t, a.Unsaved())

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, int64(3), gjson.GetBytes(saved, "#").Int())
	require.Equal(t, 10.0, gjson.GetBytes(saved, `#(id==1).score`).Float())
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := New(newConfig(), Options{DataPath: filepath.Join(dir, "missing.json")})
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"rows": 1}`), 0o644))
	_, err = New(newConfig(), Options{DataPath: bad})
	require.Error(t, err)

	cfg := newConfig()
	cfg.Columns = []config.ColumnSpec{{ID: "a", Formatter: "nope"}}
	_, err = New(cfg, Options{Rows: 1})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInferColumns(t *testing.T) {
	t.Parallel()

	data := []byte(`[{
		"id": 7,
		"done": true,
		"qty": 3,
		"price": 1.5,
		"when": "2025-03-04",
		"title": "short",
		"body": "a long piece of text that is well over forty characters"
	}]`)
	specs := InferColumns(data, "", "id")

	byID := make(map[string]config.ColumnSpec)
	var order []string
	for _, s := range specs {
		byID[s.ID] = s
		order = append(order, s.ID)
	}
	require.Equal(t, []string{"id", "done", "qty", "price", "when", "title", "body"}, order)
	require.Empty(t, byID["id"].Editor)
	require.Equal(t, format.CheckmarkName, byID["done"].Formatter)
	require.Equal(t, editor.CheckboxName, byID["done"].Editor)
	require.Equal(t, editor.IntegerName, byID["qty"].Editor)
	require.Equal(t, editor.FloatName, byID["price"].Editor)
	require.Equal(t, editor.DateName, byID["when"].Editor)
	require.Equal(t, format.RelativeTimeName, byID["when"].Formatter)
	require.Equal(t, editor.TextName, byID["title"].Editor)
	require.Equal(t, editor.LongTextName, byID["body"].Editor)

	require.Nil(t, InferColumns([]byte(`[]`), "", "id"))
	require.Nil(t, InferColumns([]byte(`{"a": [1]}`), "a", "id"))
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, WriteFile(path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Error(t, WriteFile(filepath.Join(dir, "nope", "out.json"), nil))
}
