package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/model"
)

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func entry(id string) model.Entry {
	return model.Entry{ID: id, Name: id, Command: []string{id}}
}

// clockHistory returns an in-memory history whose clock advances a minute per call.
func clockHistory() *History {
	h := NewHistory(nil, nil)
	tick := base
	h.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return h
}

func TestHistory_RecordAndUsage(t *testing.T) {
	h := clockHistory()

	l, err := h.Record(entry("foot.desktop"), false)
	require.NoError(t, err)
	assert.Len(t, l.ID, 26)
	assert.Equal(t, "foot.desktop", l.EntryID)

	_, err = h.Record(entry("foot.desktop"), false)
	require.NoError(t, err)
	_, err = h.Record(entry("foot.desktop"), true)
	require.NoError(t, err)

	u := h.Usage("foot.desktop")
	assert.Equal(t, 2, u.Count, "failed launches are not counted")
	assert.Equal(t, base.Add(2*time.Minute), u.Last)
	assert.Equal(t, 3, h.Count())
	assert.Zero(t, h.Usage("missing.desktop"))
}

func TestHistory_RecordRequiresID(t *testing.T) {
	h := clockHistory()
	_, err := h.Record(model.Entry{Name: "nameless"}, false)
	assert.ErrorIs(t, err, model.ErrEmptyEntryID)
	assert.Zero(t, h.Count())
}

func TestHistory_Rank(t *testing.T) {
	h := clockHistory()
	for _, id := range []string{"a", "b", "b", "c", "a", "b"} {
		_, err := h.Record(entry(id), false)
		require.NoError(t, err)
	}

	ids := func(es []model.Entry) []string {
		out := make([]string, len(es))
		for i := range es {
			out[i] = es[i].ID
		}
		return out
	}

	tests := []struct {
		ranking string
		want    []string
	}{
		{ranking: RankFrequent, want: []string{"b", "a", "c", "x", "y"}},
		{ranking: RankRecent, want: []string{"b", "a", "c", "x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.ranking, func(t *testing.T) {
			entries := []model.Entry{entry("x"), entry("c"), entry("a"), entry("y"), entry("b")}
			require.NoError(t, h.Rank(entries, tt.ranking))
			assert.Equal(t, tt.want, ids(entries))
		})
	}

	t.Run("recent differs from frequent", func(t *testing.T) {
		_, err := h.Record(entry("c"), false)
		require.NoError(t, err)

		entries := []model.Entry{entry("a"), entry("b"), entry("c")}
		require.NoError(t, h.Rank(entries, RankRecent))
		assert.Equal(t, []string{"c", "b", "a"}, ids(entries))

		require.NoError(t, h.Rank(entries, RankFrequent))
		assert.Equal(t, []string{"b", "c", "a"}, ids(entries))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, h.Rank(nil, "popular"), ErrUnknownRank)
	})
}

func TestHistory_Prune(t *testing.T) {
	tests := []struct {
		name        string
		opts        PruneOptions
		wantRemoved int
		wantKept    int
	}{
		{name: "older than", opts: PruneOptions{OlderThan: 150 * time.Second}, wantRemoved: 2, wantKept: 2},
		{name: "keep", opts: PruneOptions{Keep: 1}, wantRemoved: 3, wantKept: 1},
		{name: "both", opts: PruneOptions{OlderThan: time.Hour, Keep: 3}, wantRemoved: 1, wantKept: 3},
		{name: "dry run", opts: PruneOptions{Keep: 1, DryRun: true}, wantRemoved: 3, wantKept: 4},
		{name: "nothing", opts: PruneOptions{}, wantRemoved: 0, wantKept: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := clockHistory()
			for _, id := range []string{"a", "b", "c", "d"} {
				_, err := h.Record(entry(id), false)
				require.NoError(t, err)
			}

			opts := tt.opts
			opts.Now = base.Add(5 * time.Minute)
			removed, err := h.Prune(opts)
			require.NoError(t, err)
			assert.Len(t, removed, tt.wantRemoved)
			assert.Equal(t, tt.wantKept, h.Count())
		})
	}
}

func TestHistory_PruneReindexes(t *testing.T) {
	h := clockHistory()
	_, err := h.Record(entry("a"), false)
	require.NoError(t, err)
	_, err = h.Record(entry("b"), false)
	require.NoError(t, err)

	_, err = h.Prune(PruneOptions{Keep: 1})
	require.NoError(t, err)
	assert.Zero(t, h.Usage("a").Count)
	assert.Equal(t, 1, h.Usage("b").Count)
}

func TestHistory_OpenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.jsonl")

	h, err := Open(path, nil)
	require.NoError(t, err)
	_, err = h.Record(entry("a"), false)
	require.NoError(t, err)
	_, err = h.Record(entry("b"), false)
	require.NoError(t, err)
	_, err = h.Prune(PruneOptions{Keep: 1})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h, err = Open(path, nil)
	require.NoError(t, err)
	defer func() { _ = h.Close() }()

	all := h.All()
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].EntryID)
	assert.Equal(t, 1, h.Usage("b").Count)
}
