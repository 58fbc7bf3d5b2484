// Package config loads the optional chartdeck configuration file.
//
// The file is TOML and every key is optional:
//
//	count      = 25
//	delay      = "10ms"
//	kinds      = ["line", "column"]
//	width      = 600
//	height     = 400
//	base_px    = 16
//	scale      = 2
//	raster     = "native"
//	filename   = "alle-grafieken"
//	output_dir = "."
//	addr       = ":8080"
//	cache_dir  = "~/.cache/chartdeck"
//	redis_addr = "localhost:6379"
//
// Values from the file override built-in defaults; command-line flags override
// the file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
)

const (
	appDir   = "chartdeck"
	fileName = "config.toml"
)

// Duration is a time.Duration written as a Go duration string ("10ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config mirrors the keys of the configuration file.
type Config struct {
	Count     int      `toml:"count"`
	Delay     Duration `toml:"delay"`
	Kinds     []string `toml:"kinds"`
	Width     int      `toml:"width"`
	Height    int      `toml:"height"`
	BasePx    float64  `toml:"base_px"`
	Scale     float64  `toml:"scale"`
	Raster    string   `toml:"raster"`
	Filename  string   `toml:"filename"`
	OutputDir string   `toml:"output_dir"`
	Addr      string   `toml:"addr"`
	CacheDir  string   `toml:"cache_dir"`
	RedisAddr string   `toml:"redis_addr"`

	// Path is the file the values were read from, empty if none.
	Path string `toml:"-"`

	delaySet bool
}

// DefaultPath returns $XDG_CONFIG_HOME/chartdeck/config.toml, falling back to
// the platform's user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDir, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate config directory")
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads the configuration file at path. An empty path means the default
// location, where a missing file yields an empty Config. A missing file at an
// explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return &Config{}, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML data. Unknown keys are rejected so typos surface.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.delaySet = md.IsDefined("delay")
	cfg.CacheDir = expandHome(cfg.CacheDir)
	cfg.OutputDir = expandHome(cfg.OutputDir)
	return &cfg, nil
}

// Apply copies every value set in the file onto o.
func (c *Config) Apply(o *pipeline.Options) {
	if c.Count != 0 {
		o.Count = c.Count
	}
	if c.delaySet || c.Delay.Duration != 0 {
		o.Delay = pipeline.ExplicitDelay(c.Delay.Duration)
	}
	if len(c.Kinds) > 0 {
		o.Kinds = append([]string(nil), c.Kinds...)
	}
	if c.Width != 0 {
		o.Width = c.Width
	}
	if c.Height != 0 {
		o.Height = c.Height
	}
	if c.BasePx != 0 {
		o.BasePx = c.BasePx
	}
	if c.Scale != 0 {
		o.Scale = c.Scale
	}
	if c.Raster != "" {
		o.Raster = c.Raster
	}
	if c.Filename != "" {
		o.Filename = c.Filename
	}
	if c.OutputDir != "" {
		o.OutputDir = c.OutputDir
	}
}

// Options returns pipeline options seeded from the file.
func (c *Config) Options() pipeline.Options {
	var o pipeline.Options
	c.Apply(&o)
	return o
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
