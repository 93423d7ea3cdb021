package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByName     SortField = "name"
	SortByID       SortField = "id"
	SortByModified SortField = "modified"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns the inventory order: case-folded name, ascending.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByName,
		Order: SortAsc,
	}
}

// Sort sorts entries in place. Ties on the primary field are broken by the
// joined command line, so equal names always land in the same order.
func Sort(entries []model.Entry, opts SortOptions) {
	if len(entries) == 0 {
		return
	}

	keys := make([]string, len(entries))
	for i := range entries {
		keys[i] = Fold(entries[i].Name)
	}

	sort.Stable(&entrySorter{entries: entries, names: keys, opts: opts})
}

type entrySorter struct {
	entries []model.Entry
	names   []string
	opts    SortOptions
}

func (s *entrySorter) Len() int { return len(s.entries) }

func (s *entrySorter) Swap(i, j int) {
	s.entries[i], s.entries[j] = s.entries[j], s.entries[i]
	s.names[i], s.names[j] = s.names[j], s.names[i]
}

func (s *entrySorter) Less(i, j int) bool {
	a, b := &s.entries[i], &s.entries[j]

	var cmp int
	switch s.opts.Field {
	case SortByID:
		cmp = strings.Compare(a.ID, b.ID)
	case SortByModified:
		cmp = a.Modified.Compare(b.Modified)
	default:
		cmp = strings.Compare(s.names[i], s.names[j])
	}
	if cmp == 0 {
		cmp = strings.Compare(a.CommandLine(), b.CommandLine())
	}

	if s.opts.Order == SortDesc {
		return cmp > 0
	}
	return cmp < 0
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "n":
		return SortByName, nil
	case "id", "i":
		return SortByID, nil
	case "modified", "mtime", "m":
		return SortByModified, nil
	default:
		return SortByName, nil
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortAsc, nil
	}
}
