package daemon

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/config"
	"github.com/jmylchreest/appdrawer/internal/dbus"
	"github.com/jmylchreest/appdrawer/internal/input"
	"github.com/jmylchreest/appdrawer/internal/loop"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/raster"
	"github.com/jmylchreest/appdrawer/internal/render"
	"github.com/jmylchreest/appdrawer/internal/surface"
)

type fakeBackend struct {
	bindErr error
	glErr   error
	calls   []string
}

func (b *fakeBackend) Bind() error { return b.bindErr }

func (b *fakeBackend) CreateSurface(initial surface.Size) error {
	b.calls = append(b.calls, "create "+initial.String())
	return nil
}

func (b *fakeBackend) AckConfigure(serial uint32) error {
	b.calls = append(b.calls, fmt.Sprintf("ack %d", serial))
	return nil
}

func (b *fakeBackend) Destroy() { b.calls = append(b.calls, "destroy") }

func (b *fakeBackend) PrepareGL() error { return b.glErr }

func (b *fakeBackend) Allocate(size surface.Size) error {
	b.calls = append(b.calls, "allocate "+size.String())
	return nil
}

func (b *fakeBackend) Commit()       { b.calls = append(b.calls, "commit") }
func (b *fakeBackend) RequestFrame() { b.calls = append(b.calls, "frame") }

type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *manualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

func (s *manualScheduler) runAll() {
	for {
		s.mu.Lock()
		if len(s.fns) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.fns[0]
		s.fns = s.fns[1:]
		s.mu.Unlock()
		fn()
	}
}

type nullCanvas struct{}

func (nullCanvas) Clear(color.RGBA)                              {}
func (nullCanvas) FillRect(image.Rectangle, color.RGBA)          {}
func (nullCanvas) DrawImage(*image.RGBA, image.Point)            {}
func (nullCanvas) DrawMask(*image.RGBA, image.Point, color.RGBA) {}

type fakeLauncher struct{ err error }

func (l *fakeLauncher) Launch(model.Entry) error { return l.err }

type harness struct {
	drawer   *Drawer
	backend  *fakeBackend
	sched    *manualScheduler
	loop     *loop.Loop
	launcher *fakeLauncher
	visible  []bool
	notified []*dbus.Notification
	launches []error
	rescans  int
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{backend: &fakeBackend{}, sched: &manualScheduler{}, launcher: &fakeLauncher{}}
	h.loop = loop.New(h.sched, nil)
	notifier := NewNotifier(func(n *dbus.Notification) (uint32, error) {
		h.notified = append(h.notified, n)
		return 1, nil
	}, nil)

	h.drawer = New(Options{
		Config:       cfg,
		Backend:      h.backend,
		Loop:         h.loop,
		Raster:       raster.New(nil, nil, nil, raster.Options{IconCacheSize: 16, GlyphCacheSize: 16}),
		Launcher:     h.launcher,
		Notifier:     notifier,
		InitialSize:  surface.Size{W: 360, H: 640},
		Rescan:       func() { h.rescans++ },
		OnVisibility: func(v bool) { h.visible = append(h.visible, v) },
		OnLaunch:     func(_ model.Entry, err error) { h.launches = append(h.launches, err) },
	})
	return h
}

func fixture() []model.Entry {
	return []model.Entry{
		{ID: "calendar.desktop", Name: "Calendar", Command: []string{"gnome-calendar"}},
		{ID: "camera.desktop", Name: "Camera", Command: []string{"snapshot"}},
		{ID: "files.desktop", Name: "Files", Command: []string{"nautilus"}},
	}
}

func TestDrawer_StartErrors(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.bindErr = errors.New("no layer-shell")
	assert.ErrorIs(t, h.drawer.Start(true), surface.ErrProtocolUnsupported)

	h = newHarness(t, nil)
	h.backend.glErr = errors.New("no EGL")
	assert.ErrorIs(t, h.drawer.Start(true), render.ErrGraphicsInit)
	assert.False(t, h.drawer.Visible())
}

func TestDrawer_ConfigureOrdering(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(true))
	assert.Equal(t, []string{"create 360x640"}, h.backend.calls)
	assert.Equal(t, []bool{true}, h.visible)

	h.loop.Post(func() error {
		return h.drawer.Configure(surface.Configure{Serial: 7, Size: surface.Size{W: 800, H: 480}, Scale: 2})
	})
	h.sched.runAll()
	require.NoError(t, h.loop.Err())

	assert.Equal(t, []string{"create 360x640", "allocate 1600x960", "ack 7", "frame"}, h.backend.calls,
		"drawable is resized before the ack and one frame is queued")
	l := h.drawer.Grid().Layout()
	assert.Equal(t, 1600/192, l.Columns)
	assert.Equal(t, 2, l.Scale)
}

func TestDrawer_ConfigureSameSizeAcksWithoutRealloc(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(true))
	cfg := surface.Configure{Serial: 1, Size: surface.Size{W: 400, H: 400}, Scale: 1}
	require.NoError(t, h.drawer.Configure(cfg))
	cfg.Serial = 2
	require.NoError(t, h.drawer.Configure(cfg))

	assert.Equal(t, []string{"create 360x640", "allocate 400x400", "ack 1", "ack 2"}, h.backend.calls)
}

func TestDrawer_PaintPresentsOrAborts(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(true))
	h.drawer.SetEntries(fixture())
	require.NoError(t, h.drawer.Configure(surface.Configure{Serial: 1, Size: surface.Size{W: 400, H: 400}, Scale: 1}))

	assert.True(t, h.drawer.Paint(nullCanvas{}, surface.Size{W: 400, H: 400}))
	assert.False(t, h.drawer.Paint(nullCanvas{}, surface.Size{W: 200, H: 400}))

	st := h.drawer.RenderStats()
	assert.Equal(t, 1, st.Presented)
	assert.Equal(t, 1, st.Aborted)
	assert.Contains(t, h.backend.calls, "commit")
}

func TestDrawer_PaintBeforeConfigureAborts(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(true))
	assert.False(t, h.drawer.Paint(nullCanvas{}, surface.Size{}))
	assert.Equal(t, 1, h.drawer.RenderStats().Aborted)
	assert.NotContains(t, h.backend.calls, "commit")
}

func TestDrawer_EscapeHides(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(true))
	h.drawer.SetEntries(fixture())

	h.drawer.Key(input.KeyRune('c'))
	h.drawer.Key(input.Named("esc"))
	assert.True(t, h.drawer.Visible(), "first escape clears the filter")

	h.drawer.Key(input.Named("esc"))
	assert.False(t, h.drawer.Visible())
	assert.Equal(t, []bool{true, false}, h.visible)
	assert.Contains(t, h.backend.calls, "destroy")

	require.NoError(t, h.drawer.Configure(surface.Configure{Serial: 9, Size: surface.Size{W: 1, H: 1}}),
		"configure after unmap is ignored")
}

func TestDrawer_LaunchFailureNotifies(t *testing.T) {
	h := newHarness(t, nil)
	h.launcher.err = errors.New("exec: \"snapshot\": executable file not found")
	require.NoError(t, h.drawer.Start(true))
	h.drawer.SetEntries(fixture())

	for _, r := range "cam" {
		h.drawer.Key(input.KeyRune(r))
	}
	h.drawer.Key(input.Named("enter"))

	require.Len(t, h.notified, 1)
	assert.Equal(t, "Could not start Camera", h.notified[0].Summary)
	assert.True(t, h.drawer.Visible())
}

func TestDrawer_LaunchHides(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(true))
	h.drawer.SetEntries(fixture())
	require.NoError(t, h.drawer.Configure(surface.Configure{Serial: 1, Size: surface.Size{W: 400, H: 400}, Scale: 1}))

	h.drawer.Key(input.Named("right"))
	h.drawer.Key(input.Named("enter"))
	assert.False(t, h.drawer.Visible())
	assert.Empty(t, h.notified)
	assert.Equal(t, []error{nil}, h.launches)
}

func TestDrawer_LaunchKeepOpen(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Launch.KeepOpen = true })
	require.NoError(t, h.drawer.Start(true))
	h.drawer.SetEntries(fixture())

	for _, r := range "files" {
		h.drawer.Key(input.KeyRune(r))
	}
	h.drawer.Key(input.Named("enter"))
	assert.True(t, h.drawer.Visible())
	assert.Len(t, h.launches, 1)
}

func TestDrawer_LaunchFailureWithoutNotify(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Launch.Notify = false })
	h.launcher.err = errors.New("boom")
	require.NoError(t, h.drawer.Start(true))
	h.drawer.SetEntries(fixture())

	for _, r := range "cam" {
		h.drawer.Key(input.KeyRune(r))
	}
	h.drawer.Key(input.Named("enter"))
	assert.Empty(t, h.notified)
	require.Len(t, h.launches, 1)
	assert.EqualError(t, h.launches[0], "boom")
	assert.True(t, h.drawer.Visible())
}

func TestDrawer_Commands(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.drawer.Start(false))
	assert.False(t, h.drawer.Visible())

	require.NoError(t, h.drawer.Command(dbus.CommandToggle))
	assert.True(t, h.drawer.Visible())
	require.NoError(t, h.drawer.Command(dbus.CommandShow))
	require.NoError(t, h.drawer.Command(dbus.CommandToggle))
	assert.False(t, h.drawer.Visible())
	require.NoError(t, h.drawer.Command(dbus.CommandShow))
	require.NoError(t, h.drawer.Command(dbus.CommandHide))
	assert.False(t, h.drawer.Visible())

	require.NoError(t, h.drawer.Command(dbus.CommandRescan))
	assert.Equal(t, 1, h.rescans)

	assert.Error(t, h.drawer.Command(dbus.Command("Explode")))
	assert.Equal(t, 2, countCalls(h.backend.calls, "create 360x640"))
}

func countCalls(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}

func TestDrawer_HandshakeTimeoutStopsLoop(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Surface.HandshakeTimeout = config.Duration(10 * time.Millisecond)
	})
	require.NoError(t, h.drawer.Start(true))

	require.Eventually(t, func() bool { return h.sched.pending() > 0 }, 2*time.Second, 5*time.Millisecond)
	h.sched.runAll()
	assert.ErrorIs(t, h.loop.Err(), surface.ErrHandshakeTimeout)
}

func TestDrawer_HandshakeBeatenByConfigure(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Surface.HandshakeTimeout = config.Duration(time.Hour)
	})
	require.NoError(t, h.drawer.Start(true))
	require.NoError(t, h.drawer.Configure(surface.Configure{Serial: 1, Size: surface.Size{W: 10, H: 10}, Scale: 1}))
	assert.NoError(t, h.drawer.Surface().HandshakeExpired())
}

func TestDrawer_ApplyConfig(t *testing.T) {
	h := newHarness(t, nil)
	built := ""
	h.drawer.indexBuilder = func(theme string) *raster.IconIndex {
		built = theme
		return nil
	}
	require.NoError(t, h.drawer.Start(true))
	require.NoError(t, h.drawer.Configure(surface.Configure{Serial: 1, Size: surface.Size{W: 800, H: 480}, Scale: 2}))

	cfg := config.DefaultConfig()
	cfg.Icons.Theme = "Papirus"
	cfg.Grid.CellSize = 128
	cfg.Grid.IconSize = 96
	h.drawer.ApplyConfig(cfg)

	assert.Equal(t, "Papirus", built)
	assert.Equal(t, 256, h.drawer.Grid().Layout().Cell)
	assert.Equal(t, 1600/256, h.drawer.Grid().Layout().Columns)
	assert.Same(t, cfg, h.drawer.Config())
}
