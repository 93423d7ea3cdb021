// Package input provides entry sources for the list and pick commands.
package input

import (
	"context"
	"log/slog"

	"github.com/jmylchreest/appdrawer/internal/desktop"
	"github.com/jmylchreest/appdrawer/internal/model"
)

// Source produces application entries.
type Source interface {
	// Name returns the source identifier (e.g., "scan", "stdin").
	Name() string

	// Load returns the entries the source currently offers.
	Load(ctx context.Context) ([]model.Entry, error)
}

// Source names.
const (
	SourceScan  = "scan"
	SourceStdin = "stdin"
)

// SourceOptions configures NewSource.
type SourceOptions struct {
	ExtraDirs []string
	Logger    *slog.Logger
}

// NewSource creates the Source named by source. An empty name scans the
// installed applications.
func NewSource(source string, opts SourceOptions) (Source, error) {
	switch source {
	case "", SourceScan:
		scanner := desktop.NewScanner(
			desktop.WithDirs(desktop.ApplicationDirs(opts.ExtraDirs...)...),
			desktop.WithLogger(opts.Logger),
		)
		return NewScanSource(scanner), nil
	case SourceStdin:
		return NewStdinSource(), nil
	default:
		return nil, &SourceError{
			Source:  source,
			Message: "unknown source",
		}
	}
}

// ScanSource reads the installed desktop entries.
type ScanSource struct {
	scanner *desktop.Scanner
}

// NewScanSource wraps a desktop scanner.
func NewScanSource(scanner *desktop.Scanner) *ScanSource {
	return &ScanSource{scanner: scanner}
}

// Name returns the source identifier.
func (s *ScanSource) Name() string {
	return SourceScan
}

// Load scans the applications directories.
func (s *ScanSource) Load(ctx context.Context) ([]model.Entry, error) {
	entries, err := s.scanner.Scan(ctx)
	if err != nil {
		return nil, &SourceError{Source: SourceScan, Message: "scan failed", Err: err}
	}
	return entries, nil
}

// SourceError represents a source-related error.
type SourceError struct {
	Source  string
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	msg := e.Source + ": " + e.Message
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
