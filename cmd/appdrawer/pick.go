package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/adapter/input"
	"github.com/jmylchreest/appdrawer/internal/launch"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/tui"
)

var pickFlags struct {
	source    string
	print     bool
	clipboard string
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick and launch an application in the terminal",
	Long: `Browse the inventory in an interactive terminal picker and launch the
chosen application.

Search accepts plain text or filter expressions such as "terminal=true".`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().StringVar(&pickFlags.source, "source", "scan", "Entry source (scan, stdin)")
	pickCmd.Flags().BoolVar(&pickFlags.print, "print", false, "Print the chosen desktop ID instead of launching")
	pickCmd.Flags().StringVar(&pickFlags.clipboard, "clipboard", "", "Clipboard command (default: wl-copy, xclip or xsel)")

	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	var load tui.Loader
	if pickFlags.source == input.SourceStdin {
		// stdin can only be read once
		entries, err := loadEntries(cmd, pickFlags.source)
		if err != nil {
			return err
		}
		load = func() ([]model.Entry, error) { return entries, nil }
	} else {
		load = func() ([]model.Entry, error) { return loadEntries(cmd, pickFlags.source) }
	}

	chosen, err := tui.Run(load, pickFlags.clipboard)
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}
	if chosen == nil {
		return nil
	}

	if pickFlags.print {
		fmt.Fprintln(cmd.OutOrStdout(), chosen.ID)
		return nil
	}

	launcher := launch.New(launch.Options{Terminal: terminalFor(cfg), Logger: logger})
	p, err := launcher.Start(*chosen)
	if h := openHistory(); h != nil {
		recordLaunch(h, *chosen, err)
		_ = h.Close()
	}
	if err != nil {
		return err
	}
	logger.Info("launched", "id", chosen.ID, "pid", p.PID, "launch_id", p.ID)
	return nil
}
