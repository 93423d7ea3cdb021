package theme

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay coalesces editor save bursts into one reload.
const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads a user theme when the file or one of its imports changes.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	theme *Theme
	delay time.Duration

	onChangeCallback func(theme *Theme)

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a new theme watcher.
func NewWatcher(theme *Theme, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		theme:  theme,
		delay:  DefaultReloadDelay,
	}
}

// SetReloadDelay sets how long the watcher waits after the last change.
func (w *Watcher) SetReloadDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delay = d
}

// SetChangeCallback sets the callback invoked with the reloaded theme.
// It runs on the watcher goroutine.
func (w *Watcher) SetChangeCallback(callback func(theme *Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChangeCallback = callback
}

// Start begins watching. Embedded themes are not watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if w.theme == nil || w.theme.Path == "" {
		w.logger.Debug("not watching embedded theme")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	w.watchDirs()

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.watchLoop(ctx)

	w.logger.Debug("theme watcher started", "path", w.theme.Path, "imports", len(w.theme.Imports))
	return nil
}

// watchDirs adds the directory of the theme and of every import.
// Directories are watched so atomic-rename saves are seen.
func (w *Watcher) watchDirs() {
	dirs := map[string]bool{filepath.Dir(w.theme.Path): true}
	for _, imp := range w.theme.Imports {
		dirs[filepath.Dir(imp)] = true
	}
	for dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Debug("failed to watch theme directory", "dir", dir, "error", err)
		}
	}
}

// Stop stops watching the theme file.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	_ = w.fsw.Close()
	w.logger.Debug("theme watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) relevant(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	path = filepath.Clean(path)
	if path == filepath.Clean(w.theme.Path) {
		return true
	}
	for _, imp := range w.theme.Imports {
		if path == filepath.Clean(imp) {
			return true
		}
	}
	return false
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	w.mu.RLock()
	delay := w.delay
	w.mu.RUnlock()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !w.relevant(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("theme watcher error", "error", err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	theme := w.theme
	callback := w.onChangeCallback
	changed, err := theme.Reload()
	if err == nil && changed {
		// Imports may have moved.
		w.watchDirs()
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("failed to reload theme", "path", theme.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	w.logger.Info("theme file changed, reloading", "path", theme.Path)
	if callback != nil {
		callback(theme)
	}
}
