package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// PlainFormatter formats entries as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{opts: opts, template: parseTemplate("plain", opts.Template)}
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []model.Entry) error {
	for i := range entries {
		if err := f.formatEntry(w, i+1, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEntry(w io.Writer, index int, e *model.Entry) error {
	now := f.opts.now()
	if f.template != nil {
		return f.template.Execute(w, templateData{Index: index, Entry: *e, Age: age(e.Modified, now)})
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	sb.WriteString(e.Name)
	if f.opts.ShowID {
		fmt.Fprintf(&sb, " (%s)", e.ID)
	}
	if e.Terminal {
		sb.WriteString(" [terminal]")
	}
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " - modified %s", age(e.Modified, now))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "    exec: %s\n", e.CommandLine())
	if f.opts.CommentLen > 0 && e.Comment != "" {
		fmt.Fprintf(&sb, "    %s\n", truncate(oneLine(e.Comment), f.opts.CommentLen))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from an entry.
func FormatField(e *model.Entry, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return e.ID
	case "name":
		return e.Name
	case "exec", "command":
		return e.CommandLine()
	case "icon":
		return e.Icon
	case "source", "path":
		return e.Source
	case "comment":
		return e.Comment
	case "keywords":
		return strings.Join(e.Keywords, ";")
	default:
		return e.Name
	}
}
