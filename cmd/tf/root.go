package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/timefiles/timefiles/internal/config"
	"github.com/timefiles/timefiles/internal/core"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/timing"
)

var (
	dbPathFlag     string
	configPathFlag string
	jsonOutput     bool
)

// Styles for output, grounded on cmd/bd-examples' adaptive palette.
var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"})
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"})
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"})
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

// engine is resolved once in PersistentPreRunE and shared by every
// command's RunE, mirroring how cmd/bd resolves one storage handle per
// process invocation.
var engine *core.Engine

var rootCmd = &cobra.Command{
	Use:           "tf",
	Short:         "TimeFiles — local hierarchical time tracking",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" {
			return nil
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		cmd.SetContext(ctx)
		cmd.Root().PersistentPostRunE = func(*cobra.Command, []string) error {
			cancel()
			return nil
		}

		cfg, err := config.Load(configPathFlag)
		if err != nil {
			return err
		}
		if dbPathFlag != "" {
			cfg.DBPath = dbPathFlag
		}

		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		engine = core.New(store, timing.SystemClock{}, core.NewNotifier(), cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "database path (default: config or $TIMEFILES_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", defaultConfigPath(), "config file (config.yaml or config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output machine-readable JSON")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(reparentCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(subtaskCmd)
	rootCmd.AddCommand(restCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(initCmd)
}

func defaultConfigPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return dir + "/.config/timefiles/config.yaml"
}
