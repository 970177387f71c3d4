// Package config loads the surfplug configuration from YAML.
//
// Values are resolved in this order:
//  1. Defaults
//  2. The YAML file, if it exists
//  3. SURFPLUG_* environment variables
//
// Usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"surfplug/surface"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the main configuration structure
type Config struct {
	Logging Logging `yaml:"logging"`
	Surface Surface `yaml:"surface"`
	Host    Host    `yaml:"host"`
	Pager   Pager   `yaml:"pager"`
	Pads    Pads    `yaml:"pads"`
	Record  Record  `yaml:"record"`
}

// Logging configures the process logger. The terminal belongs to the TUI,
// so logs go to a file unless output says otherwise.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // file, stderr or stdout
	File   string `yaml:"file,omitempty"`
}

// Surface selects the controller and how its controls are laid out.
type Surface struct {
	// Layout names a built-in layout. Ignored when Controls is set.
	Layout string `yaml:"layout"`
	// Port is a case-insensitive substring of the MIDI input port name.
	// Empty means any Launchpad.
	Port     string    `yaml:"port,omitempty"`
	Controls []Control `yaml:"controls,omitempty"`
}

// Control declares one control of a custom layout.
type Control struct {
	Type    string `yaml:"type"`
	Group   int    `yaml:"group"`
	Index   int    `yaml:"index"`
	Message string `yaml:"message"`           // note, cc, pitchbend or aftertouch
	Channel *int   `yaml:"channel,omitempty"` // 1-16, omitted for any
	Number  int    `yaml:"number,omitempty"`  // note or controller number
}

// Host tunes the dispatch loop.
type Host struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	RenderFPS     int           `yaml:"render_fps"`
	MaxCached     int           `yaml:"max_cached"`
	IsolatePanics bool          `yaml:"isolate_panics"`
}

// Pager holds defaults for paged plugins.
type Pager struct {
	ClearOnSwitch bool `yaml:"clear_on_switch"`
}

// Pads selects the drum kit played by the pad plugins.
type Pads struct {
	Kit string `yaml:"kit"` // fpc, gm, rd8 or tr8s
}

// Record enables capture of the raw event stream.
type Record struct {
	Path string `yaml:"path,omitempty"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Output: "file",
		},
		Surface: Surface{
			Layout: "launchpad-x",
		},
		Host: Host{
			TickInterval: 50 * time.Millisecond,
			RenderFPS:    30,
			MaxCached:    16,
		},
		Pads: Pads{Kit: "fpc"},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "surfplug"), nil
}

// DefaultPath returns the full path to config.yaml
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path, or at DefaultPath when path is empty. A
// missing file gives the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return finish(cfg)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return finish(cfg)
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies SURFPLUG_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SURFPLUG_LAYOUT"); v != "" {
		cfg.Surface.Layout = v
	}
	if v := os.Getenv("SURFPLUG_PORT"); v != "" {
		cfg.Surface.Port = v
	}
	if v := os.Getenv("SURFPLUG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SURFPLUG_LOG_FILE"); v != "" {
		cfg.Logging.Output = "file"
		cfg.Logging.File = v
	}
	if v := os.Getenv("SURFPLUG_KIT"); v != "" {
		cfg.Pads.Kit = v
	}
	if v := os.Getenv("SURFPLUG_RECORD"); v != "" {
		cfg.Record.Path = v
	}
}

// Validate checks the configuration for errors. All problems are reported
// at once.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Output) {
	case "file", "stderr", "stdout":
	default:
		errs = append(errs, fmt.Sprintf("logging.output %q must be file, stderr or stdout", c.Logging.Output))
	}

	if c.Surface.Layout == "" && len(c.Surface.Controls) == 0 {
		errs = append(errs, "surface.layout or surface.controls is required")
	}
	if len(c.Surface.Controls) > 0 {
		if _, err := c.Surface.Specs(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if c.Host.TickInterval <= 0 {
		errs = append(errs, "host.tick_interval must be positive")
	}
	if c.Host.RenderFPS < 1 || c.Host.RenderFPS > 240 {
		errs = append(errs, "host.render_fps must be between 1 and 240")
	}
	if c.Host.MaxCached < 0 {
		errs = append(errs, "host.max_cached must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

var messages = map[string]uint8{
	"note":       surface.StatusNoteOn,
	"cc":         surface.StatusControlChange,
	"pitchbend":  surface.StatusPitchBend,
	"aftertouch": surface.StatusPolyPressure,
}

// Specs converts the custom control list into device specs.
func (s Surface) Specs() ([]surface.Spec, error) {
	specs := make([]surface.Spec, 0, len(s.Controls))
	for i, c := range s.Controls {
		status, ok := messages[strings.ToLower(c.Message)]
		if !ok {
			return nil, fmt.Errorf("surface.controls[%d]: unknown message %q", i, c.Message)
		}
		if c.Type == "" {
			return nil, fmt.Errorf("surface.controls[%d]: type is required", i)
		}
		if c.Number < 0 || c.Number > 127 {
			return nil, fmt.Errorf("surface.controls[%d]: number %d out of range", i, c.Number)
		}
		ch := surface.AnyChannel
		if c.Channel != nil {
			if *c.Channel < 1 || *c.Channel > 16 {
				return nil, fmt.Errorf("surface.controls[%d]: channel %d out of range", i, *c.Channel)
			}
			ch = *c.Channel - 1
		}
		specs = append(specs, surface.Spec{
			Type:    surface.Type(c.Type),
			Coord:   surface.Coord{Group: c.Group, Index: c.Index},
			Pattern: surface.Pattern{Status: status, Channel: ch, Data1: uint8(c.Number)},
		})
	}
	return specs, nil
}
