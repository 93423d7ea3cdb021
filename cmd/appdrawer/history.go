package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/core"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/store"
)

var historyOpts struct {
	limit int
	json  bool
}

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent launches",
	Long: `Show the launch history used by "list --sort frequent|recent".

Launches are recorded by the drawer and by "appdrawer pick" unless
launch.history is false in the configuration.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old launches from history",
	Long: `Remove old launches from the launch history.

Examples:
  # Remove launches older than 30 days
  appdrawer history prune --older-than 30d

  # Keep only the 500 most recent launches
  appdrawer history prune --keep 500

  # Preview what would be removed (dry run)
  appdrawer history prune --older-than 2w --dry-run`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20, "Maximum number of launches (0 = all)")
	historyCmd.Flags().BoolVar(&historyOpts.json, "json", false, "Print launches as JSON")

	historyPruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove launches older than this duration (e.g., 48h, 30d, 2w)")
	historyPruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent launches (0=unlimited)")
	historyPruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without actually removing")

	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the launch history, or returns nil when it is disabled
// or cannot be opened.
func openHistory() *store.History {
	if !cfg.Launch.History {
		return nil
	}
	path, err := store.HistoryPath()
	if err != nil {
		logger.Warn("failed to resolve history path", "error", err)
		return nil
	}
	h, err := store.Open(path, logger)
	if err != nil {
		logger.Warn("failed to open launch history", "path", path, "error", err)
		return nil
	}
	return h
}

// recordLaunch appends a launch to h. A nil history is a no-op.
func recordLaunch(h *store.History, e model.Entry, launchErr error) {
	if h == nil {
		return
	}
	if _, err := h.Record(e, launchErr != nil); err != nil {
		logger.Warn("failed to record launch", "id", e.ID, "error", err)
	}
}

func requireHistory() (*store.History, error) {
	h := openHistory()
	if h == nil {
		return nil, fmt.Errorf("launch history is unavailable")
	}
	return h, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := requireHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	launches := h.All()
	slices.Reverse(launches)
	if historyOpts.limit > 0 && len(launches) > historyOpts.limit {
		launches = launches[:historyOpts.limit]
	}

	out := cmd.OutOrStdout()
	if historyOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(launches)
	}

	if len(launches) == 0 {
		fmt.Fprintln(out, "No launches in history")
		return nil
	}
	for _, l := range launches {
		status := ""
		if l.Failed {
			status = " (failed)"
		}
		fmt.Fprintf(out, "%-14s %s [%s]%s\n", humanize.Time(l.Time), l.Name, l.EntryID, status)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}

	duration, err := core.ParseDuration(pruneOpts.olderThan)
	if err != nil {
		return err
	}

	h, err := requireHistory()
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	removed, err := h.Prune(store.PruneOptions{
		OlderThan: duration,
		Keep:      pruneOpts.keep,
		DryRun:    pruneOpts.dryRun,
		Now:       time.Now(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintln(out, "No launches to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Fprintf(out, "Would remove %d launch(es):\n", len(removed))
		for i, l := range removed {
			if i >= 10 {
				fmt.Fprintf(out, "  ... and %d more\n", len(removed)-10)
				break
			}
			fmt.Fprintf(out, "  - %s (%s)\n", l.Name, humanize.Time(l.Time))
		}
		return nil
	}

	fmt.Fprintf(out, "Removed %d launch(es)\n", len(removed))
	return nil
}
