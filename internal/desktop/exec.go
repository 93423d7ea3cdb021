package desktop

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned for an Exec value with an open double quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// fieldCodes are the Exec placeholders dropped when launching without files or URLs.
// %d %D %n %N %v %m are deprecated and removed as well.
const fieldCodes = "fFuUickdDnNvm"

// SplitExec tokenises an Exec value into an argument vector.
//
// Arguments are separated by spaces; double-quoted arguments may contain
// spaces and the backslash escapes \" \` \$ \\. Field codes are removed,
// an argument consisting only of a field code is dropped, and %% becomes %.
func SplitExec(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
		// onlyCode tracks whether the current unquoted argument is a bare field code
		onlyCode bool
	)

	flush := func() {
		if started && !(onlyCode && cur.Len() == 0) {
			args = append(args, cur.String())
		}
		cur.Reset()
		started = false
		onlyCode = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case inQuote && c == '\\' && i+1 < len(s) && strings.IndexByte("\"`$\\", s[i+1]) >= 0:
			i++
			cur.WriteByte(s[i])

		case inQuote && c == '"':
			inQuote = false

		case inQuote:
			if c == '%' && i+1 < len(s) {
				i = expandField(s, i, &cur)
				continue
			}
			cur.WriteByte(c)

		case c == '"':
			inQuote = true
			started = true

		case c == ' ' || c == '\t':
			flush()

		case c == '\\' && i+1 < len(s):
			// Lenient: tolerate escapes outside quotes
			started = true
			i++
			cur.WriteByte(s[i])

		case c == '%' && i+1 < len(s):
			if !started {
				onlyCode = true
			}
			started = true
			i = expandField(s, i, &cur)
			if cur.Len() > 0 {
				onlyCode = false
			}

		default:
			started = true
			onlyCode = false
			cur.WriteByte(c)
		}
	}

	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	flush()
	return args, nil
}

// expandField handles the % sequence at s[i] and returns the index of its last byte.
func expandField(s string, i int, cur *strings.Builder) int {
	next := s[i+1]
	switch {
	case next == '%':
		cur.WriteByte('%')
	case strings.IndexByte(fieldCodes, next) >= 0:
		// dropped
	default:
		cur.WriteByte('%')
		cur.WriteByte(next)
	}
	return i + 1
}
