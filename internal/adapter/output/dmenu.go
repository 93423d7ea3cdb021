package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// DmenuFormatter writes one line per entry for dmenu, rofi or fuzzel. The
// display name comes first so pickers match on it; the ID follows the
// separator so scripts can cut it back out.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	return &DmenuFormatter{opts: opts, template: parseTemplate("dmenu", opts.Template)}
}

// Format writes entries in dmenu format.
func (f *DmenuFormatter) Format(w io.Writer, entries []model.Entry) error {
	for i := range entries {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, &entries[i])); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, e *model.Entry) string {
	if f.template != nil {
		var buf strings.Builder
		data := templateData{Index: index, Entry: *e, Age: age(e.Modified, f.opts.now())}
		if err := f.template.Execute(&buf, data); err == nil {
			return buf.String()
		}
	}

	sep := f.opts.Separator
	if sep == "" {
		sep = "\t"
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	name := e.Name
	if f.opts.CommentLen > 0 && e.Comment != "" {
		name += " - " + truncate(oneLine(e.Comment), f.opts.CommentLen)
	}
	parts = append(parts, name)
	if f.opts.ShowID {
		parts = append(parts, e.ID)
	}
	return strings.Join(parts, sep)
}

// ParseDmenuLine returns the entry ID from a line written with the given
// separator and ID column enabled.
func ParseDmenuLine(line, sep string) string {
	if sep == "" {
		sep = "\t"
	}
	line = strings.TrimRight(line, "\r\n")
	i := strings.LastIndex(line, sep)
	if i < 0 {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[i+len(sep):])
}
