package desktop

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/appdrawer/internal/model"
)

// Watcher re-scans the inventory when descriptors change.
// Every change notification, whether from the filesystem or from Notify,
// restarts the debounce window; when it expires a full scan runs and the
// replacement list is passed to the update callback.
type Watcher struct {
	scanner  *Scanner
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	onUpdate func([]model.Entry)
	running  bool
	ctx      context.Context
	done     chan struct{}
	// started numbers scans in start order
	started uint64

	// deliverMu orders callbacks; delivered is the newest scan handed out.
	deliverMu sync.Mutex
	delivered uint64
}

// NewWatcher creates a Watcher for the scanner's directories.
// A nil fs watcher is allowed: Notify still triggers rescans.
func NewWatcher(scanner *Scanner, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		scanner:  scanner,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// SetUpdateCallback sets the function receiving each replacement list.
// The callback runs on a timer goroutine and must not block.
func (w *Watcher) SetUpdateCallback(fn func([]model.Entry)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = fn
}

// Start watches every existing applications directory and its subdirectories.
// When watchDirs is false only Notify triggers rescans.
func (w *Watcher) Start(ctx context.Context, watchDirs bool) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.ctx = ctx
	w.done = make(chan struct{})
	w.mu.Unlock()

	if !watchDirs {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw

	for _, dir := range existingDirs(w.scanner.Dirs()) {
		w.addTree(dir)
	}

	go w.watch()
	return nil
}

func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch applications directory", "dir", path, "error", err)
		} else {
			w.logger.Debug("watching applications directory", "dir", path)
		}
		return nil
	})
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if isDir(event.Name) {
					w.addTree(event.Name)
					w.Notify()
					continue
				}
			}

			if !strings.HasSuffix(event.Name, ".desktop") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug("descriptor changed", "file", event.Name, "op", event.Op.String())
				w.Notify()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("applications watcher error", "error", err)

		case <-w.ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

// Notify schedules a rescan after the debounce window.
func (w *Watcher) Notify() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.rescan)
}

func (w *Watcher) rescan() {
	w.mu.Lock()
	ctx := w.ctx
	running := w.running
	w.mu.Unlock()

	if !running || ctx.Err() != nil {
		return
	}
	if _, err := w.ScanNow(ctx); err != nil {
		w.logger.Debug("rescan aborted", "error", err)
	}
}

// ScanNow scans immediately and passes the result to the update callback.
// A scan that finishes after a later-started one is dropped, so the
// callback never receives an older inventory than it already has.
func (w *Watcher) ScanNow(ctx context.Context) ([]model.Entry, error) {
	w.mu.Lock()
	w.started++
	gen := w.started
	w.mu.Unlock()

	entries, err := w.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if w.deliver(gen, entries) {
		w.logger.Info("inventory refreshed", "entries", len(entries))
	}
	return entries, nil
}

// deliver hands entries from scan gen to the callback unless a newer scan
// was already delivered.
func (w *Watcher) deliver(gen uint64, entries []model.Entry) bool {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	if gen <= w.delivered {
		w.logger.Debug("stale scan dropped", "scan", gen, "delivered", w.delivered)
		return false
	}
	w.delivered = gen

	w.mu.Lock()
	fn := w.onUpdate
	w.mu.Unlock()
	if fn != nil {
		fn(entries)
	}
	return true
}

// Stop stops watching and cancels a pending rescan.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)

	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
