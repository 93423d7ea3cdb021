package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List bundled and user themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := theme.ThemesDir()
		if err != nil {
			return err
		}
		infos, err := theme.ListAvailableThemes(dir)
		if err != nil {
			logger.Debug("failed to read themes directory", "dir", dir, "error", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, info := range infos {
			origin := "bundled"
			if !info.IsBundled {
				origin = info.Path
			}
			marker := ""
			if info.Name == cfg.Theme.Name {
				marker = "*"
			}
			_, _ = fmt.Fprintf(w, "%s%s\t%s\n", info.Name, marker, origin)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
