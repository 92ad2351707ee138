// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/imepop/internal/easing"
)

// Config is the configuration for imepopd.
// Loaded from ~/.config/imepop/config.toml
type Config struct {
	InputMethods InputMethodConfig `toml:"input_methods"`
	Overlay      OverlayConfig     `toml:"overlay"`
	Animation    AnimationConfig   `toml:"animation"`
	Placement    PlacementConfig   `toml:"placement"`
	Watcher      WatcherConfig     `toml:"watcher"`
	Session      SessionConfig     `toml:"session"`
	Notify       NotifyConfig      `toml:"notify"`
}

// InputMethodConfig maps input method names to the text shown for them.
type InputMethodConfig struct {
	Names    map[string]string `toml:"names"`    // e.g. mozc = "かな"
	Fallback string            `toml:"fallback"` // Empty = show the input method name itself
}

// OverlayConfig contains the size and look of the overlay box.
type OverlayConfig struct {
	Width        int     `toml:"width"`         // Surface width in pixels
	Height       int     `toml:"height"`        // Surface height in pixels
	FontSize     float64 `toml:"font_size"`     // Points
	FontFamily   string  `toml:"font_family"`   // Resolved with fc-match
	FontPath     string  `toml:"font_path"`     // Overrides font_family when set
	CornerRadius float64 `toml:"corner_radius"` // Rounded box radius
	Inset        float64 `toml:"inset"`         // Gap between surface edge and box
	BoxColor     string  `toml:"box_color"`     // #rrggbb or #rrggbbaa
	TextColor    string  `toml:"text_color"`    // #rrggbb or #rrggbbaa
	Namespace    string  `toml:"namespace"`     // Layer-shell namespace
}

// AnimationConfig contains the show/hold/fade timings.
type AnimationConfig struct {
	DisplayDuration Duration `toml:"display_duration"` // Hold at full opacity
	FadeDuration    Duration `toml:"fade_duration"`    // Total fade-out time
	FadeFrames      int      `toml:"fade_frames"`      // Number of fade steps
	Easing          string   `toml:"easing"`           // See easing.Names()
}

// PlacementConfig controls where the overlay appears.
type PlacementConfig struct {
	Mode           string   `toml:"mode"`            // "active-window" or "center"
	Resolver       string   `toml:"resolver"`        // "auto", "hyprland", "sway", "none"
	ResolveTimeout Duration `toml:"resolve_timeout"` // Upper bound for the geometry query
}

// WatcherConfig controls how input method changes are detected.
type WatcherConfig struct {
	PollInterval  Duration `toml:"poll_interval"`   // 0 disables polling
	DBusTimeout   Duration `toml:"dbus_timeout"`    // Timeout for fcitx5 method calls
	ShowOnStartup bool     `toml:"show_on_startup"` // Announce the input method active at startup
}

// SessionConfig controls the overlay session.
type SessionConfig struct {
	ConfigureTimeout Duration `toml:"configure_timeout"` // Wait for the compositor to configure a surface
}

// NotifyConfig controls desktop notifications about the daemon itself.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

// PlacementMode represents how the overlay is positioned.
type PlacementMode string

const (
	PlacementActiveWindow PlacementMode = "active-window"
	PlacementCenter       PlacementMode = "center"
)

// ValidPlacementModes returns all valid placement modes.
func ValidPlacementModes() []PlacementMode {
	return []PlacementMode{PlacementActiveWindow, PlacementCenter}
}

// ValidResolvers returns all valid geometry resolver names.
func ValidResolvers() []string {
	return []string{"auto", "hyprland", "sway", "none"}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		InputMethods: InputMethodConfig{
			Names: map[string]string{
				"mozc":        "かな",
				"keyboard-us": "en",
			},
			Fallback: "",
		},
		Overlay: OverlayConfig{
			Width:        300,
			Height:       150,
			FontSize:     64,
			FontFamily:   "Sans",
			FontPath:     "",
			CornerRadius: 20,
			Inset:        10,
			BoxColor:     "#333333f2",
			TextColor:    "#ffffffff",
			Namespace:    "imepop",
		},
		Animation: AnimationConfig{
			DisplayDuration: Duration(1 * time.Second),
			FadeDuration:    Duration(1 * time.Second),
			FadeFrames:      10,
			Easing:          "ease-out-cubic",
		},
		Placement: PlacementConfig{
			Mode:           string(PlacementActiveWindow),
			Resolver:       "auto",
			ResolveTimeout: Duration(200 * time.Millisecond),
		},
		Watcher: WatcherConfig{
			PollInterval:  Duration(500 * time.Millisecond),
			DBusTimeout:   Duration(5 * time.Second),
			ShowOnStartup: true,
		},
		Session: SessionConfig{
			ConfigureTimeout: Duration(2 * time.Second),
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "imepop", "config.toml"), nil
}

// Load loads the configuration from the specified path.
// If path is empty, uses the default config path.
// If the file doesn't exist, returns the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML data on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	// The names table replaces the defaults rather than merging into them
	cfg.InputMethods.Names = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.InputMethods.Names == nil {
		cfg.InputMethods.Names = DefaultConfig().InputMethods.Names
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// DisplayText returns the overlay text for an input method name.
func (c *Config) DisplayText(inputMethod string) string {
	if text, ok := c.InputMethods.Names[inputMethod]; ok {
		return text
	}
	if c.InputMethods.Fallback != "" {
		return c.InputMethods.Fallback
	}
	return inputMethod
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Overlay.Width < 32 || c.Overlay.Width > 4096 {
		return fmt.Errorf("overlay width must be between 32 and 4096, got %d", c.Overlay.Width)
	}
	if c.Overlay.Height < 32 || c.Overlay.Height > 4096 {
		return fmt.Errorf("overlay height must be between 32 and 4096, got %d", c.Overlay.Height)
	}
	if c.Overlay.FontSize < 4 || c.Overlay.FontSize > 512 {
		return fmt.Errorf("font_size must be between 4 and 512, got %g", c.Overlay.FontSize)
	}
	if c.Overlay.CornerRadius < 0 || c.Overlay.Inset < 0 {
		return fmt.Errorf("corner_radius and inset must not be negative")
	}
	if _, err := ParseColor(c.Overlay.BoxColor); err != nil {
		return fmt.Errorf("invalid box_color: %w", err)
	}
	if _, err := ParseColor(c.Overlay.TextColor); err != nil {
		return fmt.Errorf("invalid text_color: %w", err)
	}

	if c.Animation.FadeFrames < 1 || c.Animation.FadeFrames > 240 {
		return fmt.Errorf("fade_frames must be between 1 and 240, got %d", c.Animation.FadeFrames)
	}
	if c.Animation.DisplayDuration < 0 || c.Animation.FadeDuration < 0 {
		return fmt.Errorf("animation durations must not be negative")
	}
	if _, ok := easing.ByName(c.Animation.Easing); !ok {
		return fmt.Errorf("invalid easing %q, must be one of: %v", c.Animation.Easing, easing.Names())
	}

	validMode := false
	for _, m := range ValidPlacementModes() {
		if c.Placement.Mode == string(m) {
			validMode = true
			break
		}
	}
	if !validMode {
		return fmt.Errorf("invalid placement mode %q, must be one of: %v", c.Placement.Mode, ValidPlacementModes())
	}

	validResolver := false
	for _, r := range ValidResolvers() {
		if c.Placement.Resolver == r {
			validResolver = true
			break
		}
	}
	if !validResolver {
		return fmt.Errorf("invalid resolver %q, must be one of: %v", c.Placement.Resolver, ValidResolvers())
	}
	if c.Placement.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve_timeout must be positive, got %s", c.Placement.ResolveTimeout.Duration())
	}

	if c.Watcher.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative")
	}
	if c.Watcher.PollInterval > 0 && c.Watcher.PollInterval.Duration() < 50*time.Millisecond {
		return fmt.Errorf("poll_interval must be 0 or at least 50ms, got %s", c.Watcher.PollInterval.Duration())
	}
	if c.Session.ConfigureTimeout <= 0 {
		return fmt.Errorf("configure_timeout must be positive")
	}

	return nil
}

// FrameInterval returns the sleep between two fade frames.
func (a AnimationConfig) FrameInterval() time.Duration {
	if a.FadeFrames <= 0 {
		return 0
	}
	return a.FadeDuration.Duration() / time.Duration(a.FadeFrames)
}
