package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/adapter/input"
	"github.com/jmylchreest/appdrawer/internal/adapter/output"
	"github.com/jmylchreest/appdrawer/internal/core"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/store"
)

var listFlags struct {
	format    string
	source    string
	filter    string
	search    string
	sortField string
	sortOrder string
	template  string
	separator string
	limit     int
	index     bool
	time      bool
	comment   int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the application inventory",
	Long: `Print the installed applications.

Output formats:
  plain  - Human-readable listing (default)
  dmenu  - One "Name<sep>ID" line per entry, for dmenu, fuzzel or rofi
  json   - JSON array, accepted back by --source stdin
  yaml   - YAML sequence
  ids    - Desktop file IDs only

Filter expressions match entry fields:
  --filter "terminal=true"
  --filter "name~^gnome,source~flatpak"`,
	RunE: runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listFlags.format, "format", "f", "plain", "Output format (plain, dmenu, json, yaml, ids)")
	f.StringVar(&listFlags.source, "source", "scan", "Entry source (scan, stdin)")
	f.StringVar(&listFlags.filter, "filter", "", "Filter expression, e.g. terminal=true")
	f.StringVarP(&listFlags.search, "search", "s", "", "Substring search over name, comment and keywords")
	f.StringVar(&listFlags.sortField, "sort", "name", "Sort field (name, id, modified, frequent, recent)")
	f.StringVar(&listFlags.sortOrder, "order", "asc", "Sort order (asc, desc)")
	f.StringVar(&listFlags.template, "template", "", "Go template for plain and dmenu output")
	f.StringVar(&listFlags.separator, "separator", "\t", "Field separator for dmenu output")
	f.IntVarP(&listFlags.limit, "limit", "n", 0, "Maximum number of entries (0 = all)")
	f.BoolVar(&listFlags.index, "index", false, "Prefix entries with a 1-based index")
	f.BoolVar(&listFlags.time, "time", false, "Show descriptor age")
	f.IntVar(&listFlags.comment, "comment-length", 60, "Maximum comment length (0 = hide)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listFlags.format)
	if err != nil {
		return err
	}

	entries, err := loadEntries(cmd, listFlags.source)
	if err != nil {
		return err
	}
	entries, err = selectEntries(entries)
	if err != nil {
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = listFlags.template
	opts.Separator = listFlags.separator
	opts.ShowIndex = listFlags.index
	opts.ShowTime = listFlags.time
	opts.CommentLen = listFlags.comment

	return output.NewFormatter(format, opts).Format(os.Stdout, entries)
}

// loadEntries reads the inventory from the named source.
func loadEntries(cmd *cobra.Command, source string) ([]model.Entry, error) {
	src, err := input.NewSource(source, input.SourceOptions{
		ExtraDirs: cfg.ExpandedExtraDirs(),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	entries, err := src.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	return core.Dedupe(entries), nil
}

// selectEntries applies the list filter, search, sort and limit flags.
func selectEntries(entries []model.Entry) ([]model.Entry, error) {
	if listFlags.filter != "" {
		expr, err := core.ParseFilter(listFlags.filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		entries = core.FilterWithExpr(entries, expr)
	}
	if listFlags.search != "" {
		entries = core.Search(entries, listFlags.search)
	}

	switch ranking := strings.ToLower(listFlags.sortField); ranking {
	case store.RankFrequent, store.RankRecent:
		core.Sort(entries, core.DefaultSortOptions())
		h, err := requireHistory()
		if err != nil {
			return nil, err
		}
		defer func() { _ = h.Close() }()
		if err := h.Rank(entries, ranking); err != nil {
			return nil, err
		}
	default:
		field, err := core.ParseSortField(listFlags.sortField)
		if err != nil {
			return nil, err
		}
		order, err := core.ParseSortOrder(listFlags.sortOrder)
		if err != nil {
			return nil, err
		}
		core.Sort(entries, core.SortOptions{Field: field, Order: order})
	}

	if listFlags.limit > 0 && len(entries) > listFlags.limit {
		entries = entries[:listFlags.limit]
	}
	return entries, nil
}
