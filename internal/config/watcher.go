package config

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"time"
)

// DefaultPollInterval is how often the Watcher stats the config file.
const DefaultPollInterval = time.Second

// fileStamp identifies one version of the config file on disk.
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

// Watcher polls the config file and hands every new valid configuration to
// the reload callback. An invalid file goes to the error callback and the
// last valid configuration stays current. Rewrites that parse to the
// current configuration are ignored.
type Watcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	path     string
	interval time.Duration

	stamp   fileStamp
	current *Config

	onReload func(*Config)
	onError  func(error)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a Watcher for path. An empty path means ConfigPath().
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ConfigPath()
	}
	return &Watcher{
		logger:   logger,
		path:     path,
		interval: DefaultPollInterval,
	}
}

// SetPollInterval changes the polling interval. It takes effect on Start.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if interval > 0 {
		w.interval = interval
	}
}

// SetReloadCallback sets the callback for each new valid configuration.
// It runs on the watcher goroutine.
func (w *Watcher) SetReloadCallback(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// SetErrorCallback sets the callback for files that fail to load.
func (w *Watcher) SetErrorCallback(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start records initial as the current configuration and begins polling.
// Calling Start on a running watcher does nothing.
func (w *Watcher) Start(ctx context.Context, initial *Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return nil
	}

	w.current = initial
	// A missing file is fine; it is picked up once created.
	w.stamp, _ = stampOf(w.path)

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.poll(ctx, w.interval, w.done)

	w.logger.Debug("config watcher started", "path", w.path, "interval", w.interval)
	return nil
}

// Stop ends polling and waits for the watcher goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.logger.Debug("config watcher stopped")
}

// Current returns the last valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) poll(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	stamp, err := stampOf(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Debug("failed to stat config file", "path", w.path, "error", err)
		}
		return
	}

	w.mu.Lock()
	if stamp == w.stamp {
		w.mu.Unlock()
		return
	}
	w.stamp = stamp
	onReload, onError, current := w.onReload, w.onError, w.current
	w.mu.Unlock()

	next, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("config file changed but failed to load", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	if current != nil && reflect.DeepEqual(current, next) {
		w.logger.Debug("config file rewritten without changes", "path", w.path)
		return
	}

	w.mu.Lock()
	w.current = next
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(next)
	}
}
