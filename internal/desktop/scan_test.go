package desktop

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/model"
)

func writeDesktop(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func app(name, exec string) string {
	return "[Desktop Entry]\nType=Application\nName=" + name + "\nExec=" + exec + "\n"
}

func entryNames(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestScan_SortsByName(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "files.desktop", app("Files", "nautilus"))
	writeDesktop(t, dir, "camera.desktop", app("Camera", "snapshot"))
	writeDesktop(t, dir, "calendar.desktop", app("Calendar", "gnome-calendar"))
	writeDesktop(t, dir, "README", "not a descriptor")

	s := NewScanner(WithDirs(dir), WithLocale(""))
	entries, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Calendar", "Camera", "Files"}, entryNames(entries))
	for _, e := range entries {
		assert.NotEmpty(t, e.Source)
		assert.False(t, e.Modified.IsZero())
	}
}

func TestScan_EarlierDirWins(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()

	writeDesktop(t, user, "editor.desktop", app("My Editor", "vim"))
	writeDesktop(t, system, "editor.desktop", app("Editor", "gedit"))
	writeDesktop(t, system, "other.desktop", app("Other", "other"))

	s := NewScanner(WithDirs(user, system))
	entries, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"My Editor", "Other"}, entryNames(entries))
}

func TestScan_HiddenShadowsLaterDir(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()

	writeDesktop(t, user, "htop.desktop", "[Desktop Entry]\nName=htop\nExec=htop\nHidden=true\n")
	writeDesktop(t, system, "htop.desktop", app("htop", "htop"))

	s := NewScanner(WithDirs(user, system))
	entries, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScan_SubdirectoryIDs(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "kde/konsole.desktop", app("Konsole", "konsole"))

	s := NewScanner(WithDirs(dir))
	entries, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kde-konsole.desktop", entries[0].ID)
}

func TestScan_SkipsBrokenAndMissing(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "good.desktop", app("Good", "good"))
	writeDesktop(t, dir, "bad.desktop", "[Desktop Entry]\nName=Bad\nExec=\"broken\n")
	writeDesktop(t, dir, "link.desktop", "[Desktop Entry]\nType=Link\nName=L\nURL=https://example.com\n")

	s := NewScanner(WithDirs(filepath.Join(dir, "missing"), dir))
	entries, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Good"}, entryNames(entries))
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(WithDirs(t.TempDir()))
	_, err := s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplicationDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/home/u/.local/share")
	t.Setenv("XDG_DATA_DIRS", "/usr/local/share:/usr/share:/usr/share")

	dirs := ApplicationDirs("/opt/apps")
	assert.Equal(t, []string{
		"/home/u/.local/share/applications",
		"/usr/local/share/applications",
		"/usr/share/applications",
		"/opt/apps",
	}, dirs)
}

func TestApplicationDirs_DefaultDataDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/d")
	t.Setenv("XDG_DATA_DIRS", "")

	assert.Equal(t, []string{
		"/d/applications",
		"/usr/local/share/applications",
		"/usr/share/applications",
	}, ApplicationDirs())
}

func TestDesktopID(t *testing.T) {
	assert.Equal(t, "firefox.desktop", DesktopID("/usr/share/applications", "/usr/share/applications/firefox.desktop"))
	assert.Equal(t, "a-b-c.desktop", DesktopID("/apps", "/apps/a/b/c.desktop"))
}

func TestWatcher_RescansOnChange(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "camera.desktop", app("Camera", "snapshot"))

	s := NewScanner(WithDirs(dir))
	w := NewWatcher(s, 20*time.Millisecond, nil)

	var mu sync.Mutex
	var got []string
	w.SetUpdateCallback(func(entries []model.Entry) {
		mu.Lock()
		defer mu.Unlock()
		got = entryNames(entries)
	})

	require.NoError(t, w.Start(context.Background(), true))
	defer func() { _ = w.Stop() }()

	writeDesktop(t, dir, "files.desktop", app("Files", "nautilus"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"Camera", "Files"}, got)
	mu.Unlock()
}

func TestWatcher_NotifyDebounces(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "camera.desktop", app("Camera", "snapshot"))

	s := NewScanner(WithDirs(dir))
	w := NewWatcher(s, 50*time.Millisecond, nil)

	var mu sync.Mutex
	calls := 0
	w.SetUpdateCallback(func([]model.Entry) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.NoError(t, w.Start(context.Background(), false))
	defer func() { _ = w.Stop() }()

	for range 5 {
		w.Notify()
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestWatcher_NotifyAfterStopIsIgnored(t *testing.T) {
	s := NewScanner(WithDirs(t.TempDir()))
	w := NewWatcher(s, time.Millisecond, nil)
	called := make(chan struct{}, 1)
	w.SetUpdateCallback(func([]model.Entry) { called <- struct{}{} })

	require.NoError(t, w.Start(context.Background(), false))
	require.NoError(t, w.Stop())
	w.Notify()

	select {
	case <-called:
		t.Fatal("callback invoked after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcher_ScanNowDelivers(t *testing.T) {
	dir := t.TempDir()
	writeDesktop(t, dir, "camera.desktop", app("Camera", "snapshot"))

	w := NewWatcher(NewScanner(WithDirs(dir)), time.Hour, nil)
	var got [][]string
	w.SetUpdateCallback(func(entries []model.Entry) { got = append(got, entryNames(entries)) })

	entries, err := w.ScanNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Camera"}, entryNames(entries))
	assert.Equal(t, [][]string{{"Camera"}}, got)
}

func TestWatcher_DropsScanOlderThanDelivered(t *testing.T) {
	w := NewWatcher(NewScanner(WithDirs(t.TempDir())), time.Hour, nil)
	var got [][]string
	w.SetUpdateCallback(func(entries []model.Entry) { got = append(got, entryNames(entries)) })

	older := []model.Entry{{ID: "camera.desktop", Name: "Camera"}}
	newer := []model.Entry{{ID: "camera.desktop", Name: "Camera"}, {ID: "files.desktop", Name: "Files"}}

	// scan 1 started first but finished after scan 2
	assert.True(t, w.deliver(2, newer))
	assert.False(t, w.deliver(1, older))
	assert.True(t, w.deliver(3, older))

	assert.Equal(t, [][]string{{"Camera", "Files"}, {"Camera"}}, got)
}
