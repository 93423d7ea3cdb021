package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// ErrThemeNotFound is returned when a named theme is neither a user theme
// nor bundled. The default theme is loaded instead.
var ErrThemeNotFound = errors.New("theme not found")

// Resolve finds a theme by name. User themes in dir override bundled
// themes of the same name.
func Resolve(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	if dir != "" {
		path := filepath.Join(dir, name+".css")
		if _, err := os.Stat(path); err == nil {
			t, err := NewTheme(name, path)
			if err != nil {
				return nil, fmt.Errorf("load theme %s: %w", path, err)
			}
			return t, nil
		}
	}

	if css, found := GetEmbeddedTheme(name); found {
		return newEmbeddedTheme(name, css), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// Loader applies themes to the display through a CSS provider.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	watcher   *Watcher

	onChange func(theme *Theme)
}

// NewLoader creates a new theme loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: themesDir,
	}
}

// SetChangeCallback sets the callback invoked after a hot reload. It runs
// on the GTK main thread.
func (l *Loader) SetChangeCallback(fn func(theme *Theme)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// LoadTheme loads a theme by name into the provider. When the theme cannot
// be loaded the default theme is used and the error is returned.
func (l *Loader) LoadTheme(name string) error {
	t, err := Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("theme unavailable, using default", "theme", name, "error", err)
		t = NewDefaultTheme()
	}

	l.mu.Lock()
	l.theme = t
	l.provider.LoadFromString(t.CSS)
	l.mu.Unlock()

	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path, "bundled", t.IsBundled)
	return err
}

// Theme returns the currently loaded theme.
func (l *Loader) Theme() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// Apply installs the provider on a display; nil means the default display.
func (l *Loader) Apply(display *gdk.Display) error {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		return errors.New("no display available, cannot apply theme")
	}

	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	l.logger.Debug("applied theme to display", "name", l.Theme().Name)
	return nil
}

// StartHotReload watches the current user theme and reapplies it on change.
// post moves the provider update onto the GTK main thread.
func (l *Loader) StartHotReload(ctx context.Context, post func(func())) {
	l.StopHotReload()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil || l.theme.Path == "" {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}

	l.watcher = NewWatcher(l.theme, l.logger)
	l.watcher.SetChangeCallback(func(t *Theme) {
		css := t.CSS
		post(func() {
			l.mu.Lock()
			l.provider.LoadFromString(css)
			onChange := l.onChange
			l.mu.Unlock()
			l.logger.Info("hot-reloaded theme", "name", t.Name)
			if onChange != nil {
				onChange(t)
			}
		})
	})
	if err := l.watcher.Start(ctx); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
	}
}

// StopHotReload stops watching the theme for changes.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// ListThemes returns the names of bundled and user themes.
func (l *Loader) ListThemes() []string {
	infos, err := ListAvailableThemes(l.themesDir)
	if err != nil {
		l.logger.Debug("failed to read themes directory", "error", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}
