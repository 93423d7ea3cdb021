package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		cellSize   int
		iconTheme  string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "appdrawer",
	Short: "Application drawer for Wayland compositors",
	Long: `appdrawer is a full-screen application launcher for Wayland compositors
that implement wlr-layer-shell.

Running appdrawer without a subcommand starts the drawer. A running drawer
is controlled over the session bus with the show, hide, toggle and rescan
subcommands.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
	RunE:         runDrawer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/appdrawer/appdrawer.toml)")
	rootCmd.PersistentFlags().IntVar(&globalOpts.cellSize, "cell-size", 0,
		"Override the grid cell size in logical pixels")
	rootCmd.PersistentFlags().StringVar(&globalOpts.iconTheme, "icon-theme", "",
		"Override the icon theme")

	rootCmd.Flags().Bool("hidden", false, "Start without showing the drawer")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.LoadConfig(globalOpts.configPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(c, cmd)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyOverrides copies explicitly set flags over file values.
func applyOverrides(c *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("cell-size") {
		c.Grid.CellSize = globalOpts.cellSize
		if c.Grid.IconSize > c.Grid.CellSize {
			c.Grid.IconSize = c.Grid.CellSize * 2 / 3
		}
	}
	if flags.Changed("icon-theme") {
		c.Icons.Theme = globalOpts.iconTheme
	}
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
