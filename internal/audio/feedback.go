package audio

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmylchreest/appdrawer/internal/config"
)

// Event is something the drawer gives audible feedback for.
type Event int

const (
	EventLaunch Event = iota
	EventFailure
)

func (e Event) String() string {
	switch e {
	case EventLaunch:
		return "launch"
	case EventFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Feedback maps drawer events to sound files.
type Feedback struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher

	enabled bool
	sounds  map[Event]string
}

// NewFeedback creates feedback for cfg. Nothing is decoded until Start.
func NewFeedback(cfg config.SoundConfig, logger *slog.Logger) *Feedback {
	if logger == nil {
		logger = slog.Default()
	}
	player := NewPlayer(logger)
	f := &Feedback{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
	}
	f.apply(cfg)
	return f
}

func (f *Feedback) apply(cfg config.SoundConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enabled = cfg.Enabled
	f.player.SetVolume(float64(cfg.Volume) / 100)
	f.sounds = resolveSounds(map[Event]string{
		EventLaunch:  cfg.Launch,
		EventFailure: cfg.Failure,
	}, f.logger)
}

// resolveSounds expands ~ and keeps only existing files in a supported format.
func resolveSounds(configured map[Event]string, logger *slog.Logger) map[Event]string {
	sounds := make(map[Event]string, len(configured))
	for ev, path := range configured {
		if path == "" {
			continue
		}
		path = expandPath(path)
		if !Supported(path) {
			logger.Warn("unsupported sound format", "event", ev, "path", path)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			logger.Warn("sound file not found", "event", ev, "path", path)
			continue
		}
		sounds[ev] = path
	}
	return sounds
}

func (f *Feedback) paths() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	paths := make([]string, 0, len(f.sounds))
	for _, p := range f.sounds {
		paths = append(paths, p)
	}
	return paths
}

// Start preloads the configured sounds and watches them for changes.
func (f *Feedback) Start(ctx context.Context) error {
	if !f.Enabled() {
		return nil
	}
	paths := f.paths()
	for _, p := range paths {
		if err := f.player.Preload(p); err != nil {
			f.logger.Warn("failed to preload sound", "path", p, "error", err)
		}
	}
	return f.watcher.Start(ctx, paths)
}

// Stop stops watching and releases the audio device.
func (f *Feedback) Stop() {
	f.watcher.Stop()
	f.player.Close()
}

// Enabled reports whether any sound will play.
func (f *Feedback) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled && len(f.sounds) > 0
}

// Sound returns the file configured for ev.
func (f *Feedback) Sound(ev Event) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.sounds[ev]
	return p, ok
}

// Play plays the sound for ev. Disabled or unconfigured events are a no-op.
func (f *Feedback) Play(ev Event) error {
	f.mu.RLock()
	enabled := f.enabled
	path, ok := f.sounds[ev]
	f.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return f.player.Play(path)
}

// Update applies a reloaded configuration and restarts the watcher.
func (f *Feedback) Update(ctx context.Context, cfg config.SoundConfig) error {
	f.watcher.Stop()
	f.player.Clear()
	f.apply(cfg)
	f.logger.Debug("sound feedback updated", "enabled", f.Enabled())
	return f.Start(ctx)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
