package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/config"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"click.wav", true},
		{"click.OGG", true},
		{"/usr/share/sounds/done.mp3", true},
		{"click.flac", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.path))
		})
	}
}

func TestVolumeToExponent(t *testing.T) {
	assert.InDelta(t, 0, volumeToExponent(1), 1e-9)
	assert.InDelta(t, -1, volumeToExponent(0.5), 1e-9)
	assert.InDelta(t, -2, volumeToExponent(0.25), 1e-9)
	assert.Equal(t, -10.0, volumeToExponent(0))
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p := NewPlayer(slog.Default())
	p.SetVolume(2)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
}

func TestDecodeFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := decodeFile(filepath.Join(dir, "a.flac"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = decodeFile(filepath.Join(dir, "missing.wav"))
	assert.ErrorContains(t, err, "open sound")

	bad := filepath.Join(dir, "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav"), 0o644))
	_, err = decodeFile(bad)
	assert.ErrorContains(t, err, "decode")
}

func TestResolveSounds(t *testing.T) {
	dir := t.TempDir()
	launch := filepath.Join(dir, "launch.wav")
	require.NoError(t, os.WriteFile(launch, []byte("x"), 0o644))
	flac := filepath.Join(dir, "fail.flac")
	require.NoError(t, os.WriteFile(flac, []byte("x"), 0o644))

	got := resolveSounds(map[Event]string{
		EventLaunch:  launch,
		EventFailure: flac,
	}, slog.Default())
	assert.Equal(t, map[Event]string{EventLaunch: launch}, got)

	got = resolveSounds(map[Event]string{EventFailure: filepath.Join(dir, "missing.ogg")}, slog.Default())
	assert.Empty(t, got)
}

func TestFeedback_DisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	launch := filepath.Join(dir, "launch.wav")
	require.NoError(t, os.WriteFile(launch, []byte("x"), 0o644))

	f := NewFeedback(config.SoundConfig{Enabled: false, Volume: 50, Launch: launch}, nil)
	assert.False(t, f.Enabled())
	assert.NoError(t, f.Play(EventLaunch))

	path, ok := f.Sound(EventLaunch)
	assert.True(t, ok)
	assert.Equal(t, launch, path)
	assert.InDelta(t, 0.5, f.player.Volume(), 1e-9)

	_, ok = f.Sound(EventFailure)
	assert.False(t, ok)
	assert.NoError(t, f.Play(EventFailure), "unconfigured event")
}

func TestWatcher_HandleInvalidatesKnownPaths(t *testing.T) {
	p := NewPlayer(nil)
	w := NewWatcher(p, nil)
	w.paths["/sounds/launch.wav"] = struct{}{}

	assert.True(t, w.handle(fsnotify.Event{Name: "/sounds/launch.wav", Op: fsnotify.Write}))
	assert.False(t, w.handle(fsnotify.Event{Name: "/sounds/other.wav", Op: fsnotify.Write}))
	assert.False(t, w.handle(fsnotify.Event{Name: "/sounds/launch.wav", Op: fsnotify.Chmod}))
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "launch", EventLaunch.String())
	assert.Equal(t, "failure", EventFailure.String())
	assert.Equal(t, "unknown", Event(9).String())
}
