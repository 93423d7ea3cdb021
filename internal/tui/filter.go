package tui

import (
	"strings"

	"github.com/jmylchreest/appdrawer/internal/core"
	"github.com/jmylchreest/appdrawer/internal/model"
)

// isFilterExpression reports whether the query is a field expression such
// as "terminal=true" rather than plain search text.
func isFilterExpression(query string) bool {
	if !strings.ContainsAny(query, "=~") {
		return false
	}
	expr, err := core.ParseFilter(query)
	return err == nil && len(expr.Conditions) > 0
}

// applyQuery narrows entries by a search term or a filter expression.
func applyQuery(entries []model.Entry, query string) []model.Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}
	if isFilterExpression(query) {
		expr, _ := core.ParseFilter(query)
		return core.FilterWithExpr(entries, expr)
	}
	return core.Search(entries, query)
}
