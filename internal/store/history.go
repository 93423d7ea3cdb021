package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// Rankings accepted by History.Rank.
const (
	RankFrequent = "frequent"
	RankRecent   = "recent"
)

// ErrUnknownRank is returned by Rank for an unsupported ranking.
var ErrUnknownRank = errors.New("unknown ranking")

// Usage summarises the launches of one entry.
type Usage struct {
	Count int
	Last  time.Time
}

// PruneOptions selects launches to remove.
type PruneOptions struct {
	// OlderThan removes launches older than Now minus this duration. Zero disables.
	OlderThan time.Duration
	// Keep retains at most this many of the newest launches. Zero disables.
	Keep int
	// DryRun reports the launches without removing them.
	DryRun bool
	// Now is the reference time; zero means time.Now.
	Now time.Time
}

// History is the in-memory launch history backed by a Persistence.
// It is safe for concurrent use.
type History struct {
	mu          sync.RWMutex
	launches    []model.Launch
	usage       map[string]Usage
	persistence Persistence
	logger      *slog.Logger
	now         func() time.Time
}

// NewHistory creates a history. persistence may be nil for an in-memory history.
func NewHistory(persistence Persistence, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{
		usage:       make(map[string]Usage),
		persistence: persistence,
		logger:      logger,
		now:         time.Now,
	}
}

// Open loads the history at path.
func Open(path string, logger *slog.Logger) (*History, error) {
	p, err := NewJSONLPersistence(path)
	if err != nil {
		return nil, err
	}
	h := NewHistory(p, logger)
	if err := h.Hydrate(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return h, nil
}

// Hydrate replaces the in-memory history with the persisted launches.
func (h *History) Hydrate() error {
	if h.persistence == nil {
		return nil
	}

	launches, err := h.persistence.Load()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.launches = launches
	h.reindex()
	h.logger.Debug("history hydrated", "launches", len(launches))
	return nil
}

func (h *History) reindex() {
	h.usage = make(map[string]Usage, len(h.launches))
	for _, l := range h.launches {
		h.count(l)
	}
}

func (h *History) count(l model.Launch) {
	if l.Failed {
		return
	}
	u := h.usage[l.EntryID]
	u.Count++
	if l.Time.After(u.Last) {
		u.Last = l.Time
	}
	h.usage[l.EntryID] = u
}

// Record appends a launch of e. Failed launches are kept but not counted.
func (h *History) Record(e model.Entry, failed bool) (model.Launch, error) {
	now := h.now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return model.Launch{}, err
	}

	l := model.Launch{
		ID:      strings.ToLower(id.String()),
		EntryID: e.ID,
		Name:    e.Name,
		Time:    now,
		Failed:  failed,
	}
	if err := l.Validate(); err != nil {
		return model.Launch{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.persistence != nil {
		if err := h.persistence.Append(l); err != nil {
			return model.Launch{}, fmt.Errorf("persist launch: %w", err)
		}
	}
	h.launches = append(h.launches, l)
	h.count(l)
	return l, nil
}

// Usage returns the successful launch count and time of the last one.
func (h *History) Usage(entryID string) Usage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.usage[entryID]
}

// All returns a copy of every launch, oldest first.
func (h *History) All() []model.Launch {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.Launch, len(h.launches))
	copy(out, h.launches)
	return out
}

// Count returns the number of recorded launches.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.launches)
}

// Rank reorders entries in place by use. Entries never launched keep their
// relative order after every launched one.
func (h *History) Rank(entries []model.Entry, ranking string) error {
	var less func(a, b Usage) bool
	switch strings.ToLower(ranking) {
	case RankFrequent:
		less = func(a, b Usage) bool {
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.Last.After(b.Last)
		}
	case RankRecent:
		less = func(a, b Usage) bool { return a.Last.After(b.Last) }
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRank, ranking)
	}

	h.mu.RLock()
	usage := make([]Usage, len(entries))
	for i := range entries {
		usage[i] = h.usage[entries[i].ID]
	}
	h.mu.RUnlock()

	sort.Stable(&rankSorter{entries: entries, usage: usage, less: less})
	return nil
}

type rankSorter struct {
	entries []model.Entry
	usage   []Usage
	less    func(a, b Usage) bool
}

func (s *rankSorter) Len() int { return len(s.entries) }

func (s *rankSorter) Swap(i, j int) {
	s.entries[i], s.entries[j] = s.entries[j], s.entries[i]
	s.usage[i], s.usage[j] = s.usage[j], s.usage[i]
}

func (s *rankSorter) Less(i, j int) bool {
	return s.less(s.usage[i], s.usage[j])
}

// Prune removes launches matching opts and returns them.
func (h *History) Prune(opts PruneOptions) ([]model.Launch, error) {
	now := opts.Now
	if now.IsZero() {
		now = h.now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	drop := make([]bool, len(h.launches))
	if opts.OlderThan > 0 {
		cutoff := now.Add(-opts.OlderThan)
		for i, l := range h.launches {
			if l.Time.Before(cutoff) {
				drop[i] = true
			}
		}
	}
	if opts.Keep > 0 && len(h.launches) > opts.Keep {
		for i := range len(h.launches) - opts.Keep {
			drop[i] = true
		}
	}

	var kept, removed []model.Launch
	for i, l := range h.launches {
		if drop[i] {
			removed = append(removed, l)
		} else {
			kept = append(kept, l)
		}
	}

	if opts.DryRun || len(removed) == 0 {
		return removed, nil
	}

	if h.persistence != nil {
		if err := h.persistence.Rewrite(kept); err != nil {
			return nil, fmt.Errorf("rewrite history: %w", err)
		}
	}
	h.launches = kept
	h.reindex()
	h.logger.Info("history pruned", "removed", len(removed), "kept", len(kept))
	return removed, nil
}

// Close closes the persistence.
func (h *History) Close() error {
	if h.persistence == nil {
		return nil
	}
	return h.persistence.Close()
}
