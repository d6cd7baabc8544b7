// Package config loads the datagrid configuration: grid options, column
// declarations and the data source, merged from the global, local and
// explicit configuration files.
package config

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/qjebbs/go-jsons"

	// Built-in formatters and editors are referred to by name.
	_ "github.com/charmbracelet/datagrid/internal/grid/editor"
	_ "github.com/charmbracelet/datagrid/internal/grid/format"
)

const (
	appName        = "datagrid"
	configFileName = appName + ".json"
	defaultLogFile = appName + ".log"

	// EnvDebug enables debug logging when set to a true value.
	EnvDebug = "DATAGRID_DEBUG"
	// EnvLogFile overrides the log file location.
	EnvLogFile = "DATAGRID_LOG_FILE"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the merged configuration.
type Config struct {
	Options Options      `json:"options,omitzero"`
	Columns []ColumnSpec `json:"columns,omitempty"`
	Data    DataSpec     `json:"data,omitzero"`

	Debug   bool   `json:"debug,omitempty"`
	LogFile string `json:"log_file,omitempty"`
}

// DataSpec describes where the rows come from and how they are arranged.
type DataSpec struct {
	// Path is a JSON file holding the items.
	Path string `json:"path,omitempty"`
	// ItemsPath is a gjson path to the item array inside the file.
	ItemsPath string `json:"items_path,omitempty"`
	// IDField names the unique item id.
	IDField string `json:"id_field,omitempty"`
	// GroupBy groups rows by the value of a field.
	GroupBy string `json:"group_by,omitempty"`
	// Totals lists aggregators shown below each group, as "kind:field".
	Totals []string   `json:"totals,omitempty"`
	Sort   []SortSpec `json:"sort,omitempty"`
}

// SortSpec is one key of the initial sort.
type SortSpec struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

// Load reads the configuration. The global and local files are merged first,
// then the explicit file, if any. Missing files are skipped, except for the
// explicit one.
func Load(workingDir, explicit string) (*Config, error) {
	loadDotEnv(workingDir)

	paths := []string{
		GlobalConfig(),
		filepath.Join(workingDir, configFileName),
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", explicit, err)
		}
		paths = append(paths, explicit)
	}

	cfg, err := loadFromConfigPaths(paths)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.setDefaults(workingDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GlobalConfig returns the path of the per-user configuration file.
func GlobalConfig() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, configFileName)
	}
	if runtime.GOOS == "windows" {
		localAppData := cmp.Or(
			os.Getenv("LOCALAPPDATA"),
			filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local"),
		)
		return filepath.Join(localAppData, appName, configFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, configFileName)
	}
	return filepath.Join(home, ".config", appName, configFileName)
}

func loadDotEnv(dir string) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("Failed to load .env file", "path", path, "error", err)
	}
}

func loadFromConfigPaths(configPaths []string) (*Config, error) {
	var configs []io.Reader

	for _, path := range configPaths {
		fd, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer fd.Close()

		configs = append(configs, fd)
	}

	return loadFromReaders(configs)
}

func loadFromReaders(readers []io.Reader) (*Config, error) {
	if len(readers) == 0 {
		return &Config{}, nil
	}

	merged, err := jsons.Merge(readers)
	if err != nil {
		return nil, fmt.Errorf("failed to merge configuration readers: %w", err)
	}

	return LoadReader(bytes.NewReader(merged))
}

// LoadReader decodes a single configuration document.
func LoadReader(r io.Reader) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	// Column arrays of merged files are concatenated; a later column with
	// the same id replaces the earlier one in place.
	cfg.Columns = dedupeColumns(cfg.Columns)
	return &cfg, nil
}

func dedupeColumns(specs []ColumnSpec) []ColumnSpec {
	if len(specs) == 0 {
		return specs
	}
	out := make([]ColumnSpec, 0, len(specs))
	at := make(map[string]int, len(specs))
	for _, s := range specs {
		s.Children = dedupeColumns(s.Children)
		if i, ok := at[s.ID]; ok && s.ID != "" {
			out[i] = s
			continue
		}
		at[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		} else {
			slog.Warn("Ignoring invalid environment value", "name", EnvDebug, "value", v)
		}
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
}

func (c *Config) setDefaults(workingDir string) {
	if c.LogFile == "" {
		c.LogFile = filepath.Join(workingDir, "."+appName, "logs", defaultLogFile)
	}
	if c.Data.IDField == "" {
		c.Data.IDField = "id"
	}
	if c.Data.Path != "" && !filepath.IsAbs(c.Data.Path) {
		c.Data.Path = filepath.Join(workingDir, c.Data.Path)
	}
}
