package input

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/appdrawer/internal/desktop"
	"github.com/jmylchreest/appdrawer/internal/model"
)

// maxInput bounds how much is read from the reader.
const maxInput = 10 * 1024 * 1024

// StdinSource reads entries from standard input.
type StdinSource struct {
	reader io.Reader
	now    func() time.Time
}

// NewStdinSource creates a StdinSource reading from os.Stdin.
func NewStdinSource() *StdinSource {
	return NewStdinSourceWithReader(os.Stdin)
}

// NewStdinSourceWithReader creates a StdinSource with a custom reader.
func NewStdinSourceWithReader(r io.Reader) *StdinSource {
	return &StdinSource{reader: r, now: time.Now}
}

// Name returns the source identifier.
func (s *StdinSource) Name() string {
	return SourceStdin
}

// Load reads the whole input. Three formats are accepted:
//  1. a JSON array as written by "list --format json"
//  2. a YAML sequence as written by "list --format yaml"
//  3. one "Name=command line" pair per line
//
// Records without a usable name or command are skipped.
func (s *StdinSource) Load(ctx context.Context) ([]model.Entry, error) {
	data, err := io.ReadAll(io.LimitReader(s.reader, maxInput))
	if err != nil {
		return nil, &SourceError{Source: SourceStdin, Message: "failed to read input", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var records []stdinEntry
	switch {
	case data[0] == '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, &SourceError{Source: SourceStdin, Message: "failed to parse JSON input", Err: err}
		}
	case data[0] == '-':
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, &SourceError{Source: SourceStdin, Message: "failed to parse YAML input", Err: err}
		}
	default:
		records = parseLines(string(data))
	}

	entries := make([]model.Entry, 0, len(records))
	for _, r := range records {
		e, ok := s.convert(r)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// stdinEntry mirrors model.Entry, with the command also accepted as a
// single exec string.
type stdinEntry struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Command  []string  `json:"command" yaml:"command"`
	Exec     string    `json:"exec,omitempty" yaml:"exec,omitempty"`
	Icon     string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Comment  string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	Keywords []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Terminal bool      `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Modified time.Time `json:"modified" yaml:"modified"`
}

func parseLines(data string) []stdinEntry {
	var records []stdinEntry
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, exec, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		records = append(records, stdinEntry{Name: name, Exec: exec})
	}
	return records
}

// convert builds an entry from a record. Entries without an ID get a
// generated one so they stay distinct in the inventory.
func (s *StdinSource) convert(r stdinEntry) (model.Entry, bool) {
	command := r.Command
	if len(command) == 0 && r.Exec != "" {
		argv, err := desktop.SplitExec(r.Exec)
		if err != nil {
			return model.Entry{}, false
		}
		command = argv
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		uid, err := ulid.New(ulid.Timestamp(s.now()), rand.Reader)
		if err != nil {
			return model.Entry{}, false
		}
		id = "stdin-" + strings.ToLower(uid.String()) + ".desktop"
	}

	e := model.Entry{
		ID:       id,
		Name:     sanitizeString(r.Name),
		Command:  command,
		Icon:     strings.TrimSpace(r.Icon),
		Source:   SourceStdin,
		Comment:  sanitizeString(r.Comment),
		Keywords: r.Keywords,
		Terminal: r.Terminal,
		Modified: r.Modified,
	}
	if err := e.Validate(); err != nil {
		return model.Entry{}, false
	}
	return e, true
}

// sanitizeString replaces control characters with spaces and trims.
func sanitizeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 32 || r == 0x7f {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
