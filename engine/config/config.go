// Package config loads view settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/clock"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings of one view.
//
//	update_rate = 30
//	present_rate = 60
//	min_present_rate = 10
//	vsync = true
//	log_level = "info"
//
//	[window]
//	title = "scene"
//	width = 1280
//	height = 720
type Config struct {
	// UpdateRate is the number of content updates per second.
	UpdateRate float64 `toml:"update_rate"`
	// PresentRate is the presentation rate ceiling in frames per second.
	PresentRate float64 `toml:"present_rate"`
	// MinPresentRate is the lowest acceptable presentation rate.
	MinPresentRate float64 `toml:"min_present_rate"`
	// VSync selects FIFO presentation.
	VSync bool `toml:"vsync"`
	// LogLevel is one of debug, info, warn or error. Empty leaves logging disabled.
	LogLevel string `toml:"log_level"`
	Window   Window `toml:"window"`
}

// Window holds the settings of the platform window.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Default returns the settings used when no file is given.
//
// Returns:
//   - Config: 30 updates and up to 60 frames per second, vsync on, a 1280x720 window
func Default() Config {
	return Config{
		UpdateRate:     clock.DefaultUpdateRate,
		PresentRate:    clock.DefaultPresentRate,
		MinPresentRate: clock.DefaultMinPresentRate,
		VSync:          true,
		Window: Window{
			Title:  "oxy-scene",
			Width:  1280,
			Height: 720,
		},
	}
}

// Load reads and validates a TOML file. Keys missing from the file keep their defaults.
//
// Parameters:
//   - path: the path of the TOML file
//
// Returns:
//   - Config: the loaded settings
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse is Decode over an in-memory document.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads and validates a TOML document. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - Config: the decoded settings over Default
//   - error: error if the document is malformed, has unknown keys or fails validation
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks rates, the log level and the window size.
//
// Returns:
//   - error: an error wrapping ErrInvalid, or nil
func (c Config) Validate() error {
	if c.UpdateRate <= 0 {
		return fmt.Errorf("%w: update_rate must be positive, got %g", ErrInvalid, c.UpdateRate)
	}
	if err := c.RateRange().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	return nil
}

// RateRange returns the presentation rate range for the clock.
//
// Returns:
//   - clock.RateRange: MinPresentRate to PresentRate, preferring PresentRate
func (c Config) RateRange() clock.RateRange {
	return clock.RateRange{Min: c.MinPresentRate, Max: c.PresentRate, Preferred: c.PresentRate}
}

// Level parses LogLevel.
//
// Returns:
//   - slog.Level: the parsed level
//   - error: an error wrapping ErrInvalid for an unknown level
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// Logger returns a text logger writing to w at the configured level, or nil when LogLevel is empty.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: the logger, or nil to keep logging disabled
func (c Config) Logger(w io.Writer) *slog.Logger {
	if c.LogLevel == "" {
		return nil
	}
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
