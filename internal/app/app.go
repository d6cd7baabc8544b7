// Package app wires the configuration, the data set and the grid columns
// together for the UI.
package app

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/csync"
	"github.com/charmbracelet/datagrid/internal/dataview"
	"github.com/charmbracelet/datagrid/internal/grid"
	"github.com/charmbracelet/datagrid/internal/grid/format"
	"github.com/google/uuid"
)

// DefaultRows is the size of the generated data set.
const DefaultRows = 1000

// ErrNoDataFile is returned by [App.Save] when the data was generated.
var ErrNoDataFile = errors.New("app: no data file to save to")

// Options select the data set.
type Options struct {
	// DataPath overrides the configured data file.
	DataPath string
	// Rows is the size of the generated data set used without a data file.
	Rows int
}

// App holds the state shared by the UI components.
type App struct {
	Config   *config.Config
	Registry *grid.Registry
	View     *dataview.View
	Columns  []*grid.Column
	DataPath string

	idField string
	// unsaved counts edits not yet written to DataPath.
	unsaved *csync.Value[int]
}

// New loads the data set and builds the columns. Without a data file a
// sample data set is generated.
func New(cfg *config.Config, opts Options) (*App, error) {
	a := &App{
		Config:   cfg,
		Registry: grid.DefaultRegistry,
		DataPath: opts.DataPath,
		idField:  cmp.Or(cfg.Data.IDField, dataview.DefaultIDField),
		unsaved:  csync.NewValue(0),
	}
	if a.DataPath == "" {
		a.DataPath = cfg.Data.Path
	}
	a.View = dataview.New(dataview.Options{
		IDField:         a.idField,
		GroupFormatter:  format.GroupHeader,
		TotalsFormatter: format.Totals,
	})

	specs := cfg.Columns
	if a.DataPath != "" {
		data, err := os.ReadFile(a.DataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}
		if err := a.View.LoadJSON(data, cfg.Data.ItemsPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", a.DataPath, err)
		}
		if len(specs) == 0 {
			specs = InferColumns(data, cfg.Data.ItemsPath, a.idField)
		}
		slog.Info("Loaded data file", "path", a.DataPath, "items", len(a.View.Items()))
	} else {
		rows := opts.Rows
		if rows <= 0 {
			rows = DefaultRows
		}
		if err := a.View.SetItems(Generate(rows, a.idField)); err != nil {
			return nil, err
		}
		if len(specs) == 0 {
			specs = SampleColumns(a.idField)
		}
		slog.Info("Generated sample data", "items", rows)
	}

	colCfg := *cfg
	colCfg.Columns = specs
	cols, err := colCfg.GridColumns(a.Registry)
	if err != nil {
		return nil, err
	}
	a.Columns = cols

	a.View.BeginUpdate()
	if cfg.Data.GroupBy != "" {
		a.View.SetGrouping(cfg.Data.GroupBy, nil, cfg.Data.Aggregators()...)
	}
	if sorts := colCfg.SortSpecs(); len(sorts) > 0 {
		a.View.SetSort(sorts...)
	}
	a.View.EndUpdate()
	return a, nil
}

// NewItem returns an empty item with a fresh id.
func (a *App) NewItem() grid.Item {
	return grid.Item{a.idField: uuid.NewString()}
}

// MarkEdited records an edit that has not been saved.
func (a *App) MarkEdited(delta int) int {
	return a.unsaved.Update(func(n int) int { return max(n+delta, 0) })
}

// Unsaved returns the number of edits not yet saved.
func (a *App) Unsaved() int { return a.unsaved.Get() }

// Save writes every item back to the data file and returns the number of
// edits it saved.
func (a *App) Save() (int, error) {
	if a.DataPath == "" {
		return 0, ErrNoDataFile
	}
	n := a.Unsaved()
	data, err := a.View.ExportJSON()
	if err != nil {
		return 0, err
	}
	if err := WriteFile(a.DataPath, data); err != nil {
		return 0, err
	}
	a.MarkEdited(-n)
	slog.Info("Saved data file", "path", a.DataPath, "edits", n)
	return n, nil
}

// WriteFile replaces path with data. The file is written next to path and
// renamed so that a failed write leaves the old content intact.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
