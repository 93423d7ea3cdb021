package desktop

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/appdrawer/internal/core"
	"github.com/jmylchreest/appdrawer/internal/model"
)

// Scanner enumerates application descriptors.
type Scanner struct {
	dirs   []string
	locale string
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithDirs overrides the applications directories, in priority order.
func WithDirs(dirs ...string) ScannerOption {
	return func(s *Scanner) { s.dirs = dirs }
}

// WithLocale overrides the locale used for Name[...] lookups.
func WithLocale(locale string) ScannerOption {
	return func(s *Scanner) { s.locale = locale }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a Scanner over the XDG applications directories.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		dirs:   ApplicationDirs(),
		locale: Locale(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dirs returns the directories the scanner reads, in priority order.
func (s *Scanner) Dirs() []string {
	return s.dirs
}

// Scan performs a full enumeration. Missing directories are ignored and
// unreadable descriptors are logged and skipped; Scan only fails when ctx is
// cancelled.
func (s *Scanner) Scan(ctx context.Context) ([]model.Entry, error) {
	claimed := make(map[string]bool)
	var entries []model.Entry

	for _, dir := range s.dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				s.logger.Warn("failed to read applications path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
				return nil
			}
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}

			id := DesktopID(dir, path)
			if claimed[id] {
				return nil
			}
			// An earlier directory owns the ID even when its entry is hidden
			claimed[id] = true

			entry, err := ParseFile(path, id, s.locale)
			if err != nil {
				if IsSkip(err) {
					s.logger.Debug("skipping descriptor", "path", path, "reason", err)
				} else {
					s.logger.Warn("failed to parse descriptor", "path", path, "error", err)
				}
				return nil
			}

			entries = append(entries, entry)
			return nil
		})
		if err != nil && !errors.Is(err, fs.SkipDir) {
			s.logger.Warn("failed to walk applications directory", "dir", dir, "error", err)
		}
	}

	core.Sort(entries, core.DefaultSortOptions())
	s.logger.Debug("inventory scanned", "entries", len(entries), "dirs", len(s.dirs))
	return entries, nil
}

// existingDirs filters dirs to those that currently exist.
func existingDirs(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
