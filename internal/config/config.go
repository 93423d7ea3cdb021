// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultCellSize         = 96
	DefaultIconSize         = 64
	DefaultLabelFont        = "Sans"
	DefaultLabelSize        = 11
	DefaultIconTheme        = "hicolor"
	DefaultIconCacheSize    = 256
	DefaultGlyphCacheSize   = 512
	DefaultNamespace        = "appdrawer"
	DefaultHandshakeTimeout = 3 * time.Second
	DefaultDebounce         = 250 * time.Millisecond
	DefaultVolume           = 80
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "250ms", "3s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '250ms', '3s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the appdrawer configuration.
// Loaded from ~/.config/appdrawer/appdrawer.toml
type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Icons     IconsConfig     `toml:"icons"`
	Surface   SurfaceConfig   `toml:"surface"`
	Inventory InventoryConfig `toml:"inventory"`
	Theme     ThemeConfig     `toml:"theme"`
	Launch    LaunchConfig    `toml:"launch"`
	Sound     SoundConfig     `toml:"sound"`
}

// GridConfig contains grid geometry settings, in logical pixels.
type GridConfig struct {
	CellSize  int    `toml:"cell_size"`  // Square cell edge
	IconSize  int    `toml:"icon_size"`  // Icon edge inside a cell
	LabelFont string `toml:"label_font"` // Font family for labels
	LabelSize int    `toml:"label_size"` // Label size in points
}

// IconsConfig contains icon lookup and cache settings.
type IconsConfig struct {
	Theme          string `toml:"theme"`            // Icon theme name, e.g. "Adwaita"
	CacheSize      int    `toml:"cache_size"`       // Max decoded icons kept
	GlyphCacheSize int    `toml:"glyph_cache_size"` // Max shaped labels kept
}

// SurfaceConfig contains layer-shell surface settings.
type SurfaceConfig struct {
	Layer            string   `toml:"layer"`             // "overlay" or "top"
	KeyboardMode     string   `toml:"keyboard_mode"`     // "exclusive", "on-demand", "none"
	Margin           int      `toml:"margin"`            // Margin from every edge
	Namespace        string   `toml:"namespace"`         // Layer-shell namespace
	Monitor          int      `toml:"monitor"`           // 0 = compositor choice, 1+ = specific monitor
	HandshakeTimeout Duration `toml:"handshake_timeout"` // Max wait for the first configure
}

// InventoryConfig contains application inventory settings.
type InventoryConfig struct {
	Debounce  Duration `toml:"debounce"`   // Rescan coalescing window
	WatchBus  bool     `toml:"watch_bus"`  // Listen for package manager signals
	WatchDirs bool     `toml:"watch_dirs"` // Watch applications directories
	ExtraDirs []string `toml:"extra_dirs"` // Additional applications directories
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// LaunchConfig contains process launch settings.
type LaunchConfig struct {
	Terminal []string `toml:"terminal"`      // Wrapper for Terminal=true apps, e.g. ["foot", "-e"]
	KeepOpen bool     `toml:"keep_open"`     // Keep the drawer visible after a launch
	Notify   bool     `toml:"notify_errors"` // Send a desktop notification when a launch fails
	History  bool     `toml:"history"`       // Record launches for frequent and recent ordering
}

// SoundConfig contains feedback sound settings.
type SoundConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"`  // 0-100
	Launch  string `toml:"launch"`  // Played after a successful launch
	Failure string `toml:"failure"` // Played when a launch fails
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Layer represents a layer-shell layer.
type Layer string

const (
	LayerOverlay Layer = "overlay"
	LayerTop     Layer = "top"
)

// KeyboardMode represents the layer-shell keyboard interactivity.
type KeyboardMode string

const (
	KeyboardModeExclusive KeyboardMode = "exclusive"
	KeyboardModeOnDemand  KeyboardMode = "on-demand"
	KeyboardModeNone      KeyboardMode = "none"
)

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			CellSize:  DefaultCellSize,
			IconSize:  DefaultIconSize,
			LabelFont: DefaultLabelFont,
			LabelSize: DefaultLabelSize,
		},
		Icons: IconsConfig{
			Theme:          DefaultIconTheme,
			CacheSize:      DefaultIconCacheSize,
			GlyphCacheSize: DefaultGlyphCacheSize,
		},
		Surface: SurfaceConfig{
			Layer:            string(LayerOverlay),
			KeyboardMode:     string(KeyboardModeExclusive),
			Margin:           0,
			Namespace:        DefaultNamespace,
			Monitor:          0,
			HandshakeTimeout: Duration(DefaultHandshakeTimeout),
		},
		Inventory: InventoryConfig{
			Debounce:  Duration(DefaultDebounce),
			WatchBus:  true,
			WatchDirs: true,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Launch: LaunchConfig{
			Notify:  true,
			History: true,
		},
		Sound: SoundConfig{
			Volume: DefaultVolume,
		},
	}
}

// ConfigDir returns the appdrawer config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "appdrawer")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "appdrawer.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed and writes atomically via a temp file.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Grid.CellSize < 32 || c.Grid.CellSize > 512 {
		return fmt.Errorf("cell_size must be between 32 and 512, got %d", c.Grid.CellSize)
	}
	if c.Grid.IconSize < 16 || c.Grid.IconSize > c.Grid.CellSize {
		return fmt.Errorf("icon_size must be between 16 and cell_size (%d), got %d", c.Grid.CellSize, c.Grid.IconSize)
	}
	if c.Grid.LabelSize < 4 || c.Grid.LabelSize > 72 {
		return fmt.Errorf("label_size must be between 4 and 72, got %d", c.Grid.LabelSize)
	}
	if c.Icons.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive, got %d", c.Icons.CacheSize)
	}
	if c.Icons.GlyphCacheSize < 1 {
		return fmt.Errorf("glyph_cache_size must be positive, got %d", c.Icons.GlyphCacheSize)
	}

	switch Layer(c.Surface.Layer) {
	case LayerOverlay, LayerTop:
	default:
		return fmt.Errorf("invalid layer %q, must be one of: %v", c.Surface.Layer, []Layer{LayerOverlay, LayerTop})
	}

	switch KeyboardMode(c.Surface.KeyboardMode) {
	case KeyboardModeExclusive, KeyboardModeOnDemand, KeyboardModeNone:
	default:
		return fmt.Errorf("invalid keyboard_mode %q", c.Surface.KeyboardMode)
	}

	if c.Surface.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", c.Surface.Margin)
	}
	if c.Surface.HandshakeTimeout.Duration() <= 0 {
		return errors.New("handshake_timeout must be positive")
	}
	if c.Inventory.Debounce.Duration() < 0 {
		return errors.New("debounce must not be negative")
	}

	if c.Sound.Volume < 0 || c.Sound.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Sound.Volume)
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	return nil
}

// ExpandedExtraDirs returns ExtraDirs with ~ expanded to the home directory.
func (c *Config) ExpandedExtraDirs() []string {
	dirs := make([]string, 0, len(c.Inventory.ExtraDirs))
	for _, d := range c.Inventory.ExtraDirs {
		dirs = append(dirs, expandPath(d))
	}
	return dirs
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
