package core

import (
	"strings"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// LookupByID finds an entry by its desktop ID.
// Returns nil if not found.
func LookupByID(entries []model.Entry, id string) *model.Entry {
	if i := IndexOf(entries, id); i >= 0 {
		return &entries[i]
	}
	return nil
}

// IndexOf returns the index of the entry with the given ID, or -1.
func IndexOf(entries []model.Entry, id string) int {
	if id == "" {
		return -1
	}
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

// LookupByIndex finds an entry by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(entries []model.Entry, index int) *model.Entry {
	idx := index - 1
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	return &entries[idx]
}

// Dedupe removes later entries that share an ID with an earlier one.
// The first occurrence wins and the order is preserved.
func Dedupe(entries []model.Entry) []model.Entry {
	seen := make(map[string]bool, len(entries))
	result := make([]model.Entry, 0, len(entries))

	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		result = append(result, e)
	}
	return result
}

// Search finds entries matching a term in name, comment or keywords.
// Case-insensitive substring match.
func Search(entries []model.Entry, term string) []model.Entry {
	if term == "" {
		return entries
	}

	term = Fold(term)
	var result []model.Entry

	for _, e := range entries {
		if strings.Contains(Fold(e.Name), term) ||
			strings.Contains(Fold(e.Comment), term) ||
			containsKeyword(e.Keywords, term) {
			result = append(result, e)
		}
	}

	return result
}

func containsKeyword(keywords []string, term string) bool {
	for _, k := range keywords {
		if strings.Contains(Fold(k), term) {
			return true
		}
	}
	return false
}
