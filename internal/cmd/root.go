// Package cmd holds the command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/datagrid/internal/app"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/log"
	"github.com/charmbracelet/datagrid/internal/ui/common"
	"github.com/charmbracelet/datagrid/internal/ui/model"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func init() {
	setupFlags(rootCmd)
}

func setupFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("cwd", "C", "", "Current working directory")
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file merged over the global and local ones")
	cmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	cmd.Flags().StringP("path", "p", "", "gjson path of the item array inside the data file")
	cmd.Flags().IntP("rows", "n", app.DefaultRows, "Number of generated rows when no data file is given")
}

var rootCmd = &cobra.Command{
	Use:   "datagrid [data.json]",
	Short: "Browse and edit JSON data in a terminal grid",
	Long: `Datagrid shows the objects of a JSON array in a scrollable, editable grid.
Columns, formatters and editors are read from datagrid.json files in the
global config directory and the working directory. Without a data file a
sample data set is generated.`,
	Example: `
# Generate a sample data set
datagrid

# Edit a file
datagrid people.json

# Edit the array under "data.rows"
datagrid --path data.rows export.json

# Use a specific configuration and log debug output
datagrid -d -c ./columns.json people.json
  `,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closer, err := setupApp(cmd, args)
		if err != nil {
			return err
		}
		defer closer.Close()

		ui, err := model.New(common.DefaultCommon(a))
		if err != nil {
			return err
		}
		program := tea.NewProgram(ui, tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("datagrid crashed: %w", err)
		}
		if n := a.Unsaved(); n > 0 {
			slog.Info("Quit with unsaved edits", "edits", n)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// setupApp loads the configuration, starts logging and loads the data. The
// returned closer flushes the log.
func setupApp(cmd *cobra.Command, args []string) (*app.App, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	closer, err := log.Setup(log.Options{Path: cfg.LogFile, Debug: cfg.Debug})
	if err != nil {
		return nil, nil, err
	}

	opts := app.Options{}
	if len(args) > 0 {
		opts.DataPath = args[0]
	}
	opts.Rows, _ = cmd.Flags().GetInt("rows")

	a, err := app.New(cfg, opts)
	if err != nil {
		closer.Close()
		slog.Error("Failed to load data", "error", err)
		return nil, nil, err
	}
	return a, closer, nil
}

// loadConfig resolves the working directory and applies the flags over the
// loaded configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cwd, err := resolveCwd(cmd)
	if err != nil {
		return nil, err
	}
	explicit, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cwd, explicit)
	if err != nil {
		return nil, err
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		cfg.Data.ItemsPath = path
	}
	return cfg, nil
}

func resolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		if err := os.Chdir(cwd); err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %v", err)
	}
	return cwd, nil
}
