package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/model"
)

func launch(id, entry string, at time.Time) model.Launch {
	return model.Launch{ID: id, EntryID: entry, Name: entry, Time: at.UTC()}
}

func TestJSONLPersistence_WritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "launches.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"appdrawer_schema_version":1`)

	launches, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, launches)
}

func TestJSONLPersistence_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.jsonl")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Append(launch("01", "firefox.desktop", now)))
	require.NoError(t, p.Append(launch("02", "foot.desktop", now.Add(time.Minute))))
	require.NoError(t, p.Close())

	p, err = NewJSONLPersistence(path)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	launches, err := p.Load()
	require.NoError(t, err)
	require.Len(t, launches, 2)
	assert.Equal(t, "firefox.desktop", launches[0].EntryID)
	assert.True(t, launches[1].Time.Equal(now.Add(time.Minute)))

	lines := strings.Split(strings.TrimSpace(mustRead(t, path)), "\n")
	assert.Len(t, lines, 3, "header plus two launches")
}

func TestJSONLPersistence_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.jsonl")
	content := `{"appdrawer_schema_version":1,"created_at":0}
{"id":"01","entry_id":"a.desktop","name":"A","time":"2026-01-01T00:00:00Z"}
not json
{"id":"","entry_id":"b.desktop"}
{"id":"03","entry_id":"c.desktop","name":"C","time":"2026-01-02T00:00:00Z"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	launches, err := p.Load()
	require.NoError(t, err)
	require.Len(t, launches, 2)
	assert.Equal(t, "c.desktop", launches[1].EntryID)
}

func TestJSONLPersistence_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"appdrawer_schema_version":99,"created_at":0}`+"\n"), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	_, err = p.Load()
	assert.ErrorContains(t, err, "unsupported schema version")
}

func TestJSONLPersistence_Rewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launches.jsonl")
	now := time.Now()

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	require.NoError(t, p.Append(launch("01", "a.desktop", now)))
	require.NoError(t, p.Append(launch("02", "b.desktop", now)))
	require.NoError(t, p.Rewrite([]model.Launch{launch("02", "b.desktop", now)}))

	require.NoError(t, p.Append(launch("03", "c.desktop", now)))
	launches, err := p.Load()
	require.NoError(t, err)
	require.Len(t, launches, 2)
	assert.Equal(t, "02", launches[0].ID)
	assert.Equal(t, "03", launches[1].ID)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestJSONLPersistence_Closed(t *testing.T) {
	p, err := NewJSONLPersistence(filepath.Join(t.TempDir(), "launches.jsonl"))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.Append(launch("01", "a.desktop", time.Now())), ErrPersistenceClosed)
	assert.ErrorIs(t, p.Rewrite(nil), ErrPersistenceClosed)
}

func TestHistoryPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	path, err := HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "appdrawer", "launches.jsonl"), path)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
