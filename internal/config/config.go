// Package config resolves the previewer settings from flags, environment
// and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"yolo/hal"
	"yolo/internal/buildinfo"
)

// EnvPrefix is prepended to every environment override, e.g. YOLO_WIDTH.
const EnvPrefix = "YOLO"

const (
	BackendWindow   = "window"
	BackendHeadless = "headless"
)

const (
	DefaultWidth    = 1024
	DefaultHeight   = 786
	DefaultTimeStep = 0.01
	DefaultHz       = 60
)

var validMSAA = []int{0, 2, 4, 8, 16}

// ErrNoFragment is returned by Validate when no fragment shader was given.
var ErrNoFragment = errors.New("config: fragment shader path is required")

// Config is the resolved run configuration.
type Config struct {
	Fragment    string  `mapstructure:"frag"`
	Vertex      string  `mapstructure:"vert"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	VSync       bool    `mapstructure:"vsync"`
	MSAA        int     `mapstructure:"msaa"`
	TimeStep    float64 `mapstructure:"time"`
	Interactive bool    `mapstructure:"interactive"`
	Debug       bool    `mapstructure:"debug"`
	Reload      bool    `mapstructure:"reload"`
	Borderless  bool    `mapstructure:"borderless"`
	Fullscreen  bool    `mapstructure:"fullscreen"`
	Decompress  bool    `mapstructure:"decompress"`
	Backend     string  `mapstructure:"backend"`
	Hz          int     `mapstructure:"hz"`
	Frames      uint64  `mapstructure:"frames"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// BindFlags registers the command-line surface on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("vert", "v", "", "vertex shader file (default: built-in fullscreen quad)")
	fs.IntP("width", "w", DefaultWidth, "window width in pixels")
	fs.IntP("height", "h", DefaultHeight, "window height in pixels (help is --help only)")
	fs.BoolP("vsync", "s", false, "enable vertical sync")
	fs.IntP("msaa", "m", 0, "multisample anti-aliasing samples (0, 2, 4, 8, 16)")
	fs.Float64P("time", "t", DefaultTimeStep, "time added per rendered frame")
	fs.BoolP("interactive", "i", false, "read pause/resume/exit commands from stdin")
	fs.BoolP("debug", "D", false, "verbose logging and command echo")
	fs.BoolP("reload", "r", false, "reload the fragment shader when the file changes")
	fs.BoolP("borderless", "b", false, "borderless window")
	fs.BoolP("fullscreen", "f", false, "fullscreen window")
	fs.BoolP("decompress", "d", false, "the fragment shader is gzip compressed")
	fs.String("backend", BackendWindow, "render backend: window or headless")
	fs.Int("hz", DefaultHz, "headless frame rate")
	fs.Uint64("frames", 0, "headless frame limit (0 = unlimited)")
	fs.String("config", "", "TOML config file")
}

// Load merges defaults, the config file, YOLO_* environment variables and
// fs, in increasing priority. fragment is the positional shader path and
// wins over every other source when non-empty.
func Load(fs *pflag.FlagSet, fragment string) (Config, error) {
	v := viper.New()

	v.SetDefault("frag", "")
	v.SetDefault("vert", "")
	v.SetDefault("width", DefaultWidth)
	v.SetDefault("height", DefaultHeight)
	v.SetDefault("msaa", 0)
	v.SetDefault("time", DefaultTimeStep)
	v.SetDefault("backend", BackendWindow)
	v.SetDefault("hz", DefaultHz)
	v.SetDefault("frames", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	if err := v.BindEnv("frag"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	if fragment != "" {
		c.Fragment = fragment
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	return c, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Fragment) == "" {
		return ErrNoFragment
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid size %dx%d", c.Width, c.Height)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("config: time step must be positive, got %v", c.TimeStep)
	}
	if !slices.Contains(validMSAA, c.MSAA) {
		return fmt.Errorf("config: msaa must be one of %v, got %d", validMSAA, c.MSAA)
	}
	switch c.Backend {
	case BackendWindow:
	case BackendHeadless:
		if c.Hz <= 0 {
			return fmt.Errorf("config: hz must be positive, got %d", c.Hz)
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}

// WindowConfig returns the settings for the interactive window.
func (c Config) WindowConfig() hal.WindowConfig {
	return hal.WindowConfig{
		Title:      "yolo " + buildinfo.Short(),
		Width:      c.Width,
		Height:     c.Height,
		VSync:      c.VSync,
		MSAA:       c.MSAA,
		Borderless: c.Borderless,
		Fullscreen: c.Fullscreen,
	}
}

// HeadlessConfig returns the settings for the offscreen backend.
func (c Config) HeadlessConfig() hal.HeadlessConfig {
	return hal.HeadlessConfig{
		Width:  c.Width,
		Height: c.Height,
		Hz:     c.Hz,
		Frames: c.Frames,
	}
}
