package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher drops cached sounds when their files change on disk.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger
	player *Player

	watcher *fsnotify.Watcher
	paths   map[string]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher that invalidates entries in player.
func NewWatcher(player *Player, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger: logger,
		player: player,
		paths:  make(map[string]struct{}),
	}
}

// Start watches the directories holding paths.
func (w *Watcher) Start(ctx context.Context, paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	clear(w.paths)
	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		w.paths[filepath.Clean(p)] = struct{}{}
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Debug("cannot watch sound directory", "dir", dir, "error", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.watcher = fsw
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx, fsw, w.done)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.watcher == nil {
		w.mu.Unlock()
		return
	}
	cancel, done, fsw := w.cancel, w.done, w.watcher
	w.watcher = nil
	w.mu.Unlock()

	cancel()
	_ = fsw.Close()
	<-done
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("sound watcher error", "error", err)
		}
	}
}

// handle invalidates the player entry for a changed sound file and
// reports whether the event concerned one.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	_, ok := w.paths[path]
	w.mu.Unlock()
	if !ok {
		return false
	}

	w.logger.Debug("sound file changed", "path", path, "op", ev.Op.String())
	w.player.Invalidate(path)
	return true
}
