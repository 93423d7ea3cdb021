// Package core provides filtering, sorting, and lookup logic over application entries.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// Fold returns the case-folded form of s used for matching and ordering.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Filter returns the entries whose display name contains text, case-insensitively.
// An empty text returns a copy of the full list. The input order is preserved.
func Filter(entries []model.Entry, text string) []model.Entry {
	result := make([]model.Entry, 0, len(entries))
	if text == "" {
		return append(result, entries...)
	}

	needle := Fold(text)
	for _, e := range entries {
		if strings.Contains(Fold(e.Name), needle) {
			result = append(result, e)
		}
	}
	return result
}

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual    FilterOp = "="  // Exact match
	FilterOpNotEqual FilterOp = "!=" // Not equal
	FilterOpContains FilterOp = "~"  // Contains substring, case-insensitive
	FilterOpRegex    FilterOp = "~=" // Regex match
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: name, id, exec, icon, source, terminal
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex   *regexp.Regexp
	boolVal bool
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2"
//
// Examples:
//   - "name~term" - name contains "term"
//   - "exec=firefox" - executable is exactly firefox
//   - "id~=^org\.gnome\." - desktop ID matches regex
//   - "terminal=true" - terminal applications only
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

func (c *FilterCondition) init() error {
	switch c.Field {
	case "name", "title":
		c.Field = "name"
	case "id", "desktop_id":
		c.Field = "id"
	case "exec", "command", "cmd":
		c.Field = "exec"
	case "icon":
	case "source", "path":
		c.Field = "source"
	case "terminal":
		c.boolVal = parseBool(c.Value)
		if c.Operator != FilterOpEqual && c.Operator != FilterOpNotEqual {
			return fmt.Errorf("terminal only supports = and !=")
		}
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match tests if an entry matches the filter expression.
func (f *FilterExpr) Match(e model.Entry) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(e) {
			return false
		}
	}
	return true
}

// Match tests if an entry matches this single condition.
func (c *FilterCondition) Match(e model.Entry) bool {
	switch c.Field {
	case "name":
		return c.matchString(e.Name)
	case "id":
		return c.matchString(e.ID)
	case "exec":
		if c.Operator == FilterOpEqual || c.Operator == FilterOpNotEqual {
			return c.matchString(e.Executable())
		}
		return c.matchString(e.CommandLine())
	case "icon":
		return c.matchString(e.Icon)
	case "source":
		return c.matchString(e.Source)
	case "terminal":
		if c.Operator == FilterOpNotEqual {
			return e.Terminal != c.boolVal
		}
		return e.Terminal == c.boolVal
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(Fold(fieldValue), Fold(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// FilterWithExpr filters entries using a filter expression.
func FilterWithExpr(entries []model.Entry, expr *FilterExpr) []model.Entry {
	if expr == nil || len(expr.Conditions) == 0 {
		return entries
	}

	result := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
