// Package config loads graphscope settings from TOML or YAML files.
//
// Config file locations (priority order):
//  1. $GRAPHSCOPE_CONFIG
//  2. ./graphscope.toml, ./graphscope.yaml
//  3. $XDG_CONFIG_HOME/graphscope/config.toml (or config.yaml)
//  4. ~/.config/graphscope/config.toml (or config.yaml)
//
// Values missing from a file keep their defaults, and command-line flags
// override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/errors"
)

// Config holds every tunable of a scene and the outer surfaces.
type Config struct {
	Layout   LayoutConfig   `toml:"layout" yaml:"layout"`
	Viewport ViewportConfig `toml:"viewport" yaml:"viewport"`
	Index    IndexConfig    `toml:"index" yaml:"index"`
	Density  DensityConfig  `toml:"density" yaml:"density"`
	HitTest  HitTestConfig  `toml:"hittest" yaml:"hittest"`
	Labels   LabelsConfig   `toml:"labels" yaml:"labels"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// LayoutConfig selects the layout provider.
type LayoutConfig struct {
	Name    string  `toml:"name" yaml:"name"`
	NodeSep float64 `toml:"node_sep" yaml:"node_sep"`
}

// ViewportConfig bounds and animates the camera.
type ViewportConfig struct {
	MinScale          float64  `toml:"min_scale" yaml:"min_scale"`
	MaxScale          float64  `toml:"max_scale" yaml:"max_scale"`
	AnimationDuration Duration `toml:"animation_duration" yaml:"animation_duration"`
	SettleDelay       Duration `toml:"settle_delay" yaml:"settle_delay"`
	Easing            string   `toml:"easing" yaml:"easing"`
	FitPadding        float64  `toml:"fit_padding" yaml:"fit_padding"`
	FitMaxZoom        float64  `toml:"fit_max_zoom" yaml:"fit_max_zoom"`
}

// IndexConfig controls link geometry in the spatial index.
type IndexConfig struct {
	// EdgeMode is "bbox" or "midpoint".
	EdgeMode string `toml:"edge_mode" yaml:"edge_mode"`
}

// DensityConfig tunes the level-of-detail estimator.
type DensityConfig struct {
	Threshold float64 `toml:"threshold" yaml:"threshold"`
}

// HitTestConfig tunes pointer hit-testing.
type HitTestConfig struct {
	BaseRadius float64  `toml:"base_radius" yaml:"base_radius"`
	Interval   Duration `toml:"interval" yaml:"interval"`
}

// LabelsConfig controls the label overlay.
type LabelsConfig struct {
	Enabled      bool     `toml:"enabled" yaml:"enabled"`
	FadeDuration Duration `toml:"fade_duration" yaml:"fade_duration"`
}

// CacheConfig selects where computed layouts are cached.
type CacheConfig struct {
	// Backend is "none", "file" or "redis".
	Backend  string `toml:"backend" yaml:"backend"`
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
	Prefix   string `toml:"prefix" yaml:"prefix"`
}

// ServerConfig configures the HTTP inspection API.
type ServerConfig struct {
	Addr        string   `toml:"addr" yaml:"addr"`
	SessionTTL  Duration `toml:"session_ttl" yaml:"session_ttl"`
	MaxSessions int      `toml:"max_sessions" yaml:"max_sessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Cache backends.
const (
	CacheNone  = cache.BackendNone
	CacheFile  = cache.BackendFile
	CacheRedis = cache.BackendRedis
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{Name: "static"},
		Viewport: ViewportConfig{
			MinScale:          0.01,
			MaxScale:          100,
			AnimationDuration: Duration(time.Second),
			SettleDelay:       Duration(40 * time.Millisecond),
			Easing:            "cubic",
			FitPadding:        100,
			FitMaxZoom:        3,
		},
		Index:   IndexConfig{EdgeMode: "bbox"},
		Density: DensityConfig{Threshold: 70},
		HitTest: HitTestConfig{BaseRadius: 30, Interval: Duration(20 * time.Millisecond)},
		Labels:  LabelsConfig{Enabled: true, FadeDuration: Duration(time.Second)},
		Cache:   CacheConfig{Backend: CacheFile, Dir: defaultCacheDir(), Prefix: "graphscope:"},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  Duration(30 * time.Minute),
			MaxSessions: 64,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a config file over the defaults. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported config format %q (use .toml or .yaml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the first config file found by FindPath, or returns the
// defaults when none exists. The returned path is empty in that case.
func LoadDefault() (*Config, string, error) {
	path := FindPath()
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Layout.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.name cannot be empty")
	}
	if err := errors.ValidatePositive("viewport.min_scale", c.Viewport.MinScale); err != nil {
		return err
	}
	if err := errors.ValidateRange("viewport scale", c.Viewport.MinScale, c.Viewport.MaxScale); err != nil {
		return err
	}
	if c.Viewport.AnimationDuration < 0 || c.Viewport.SettleDelay < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport durations cannot be negative")
	}
	if c.Viewport.FitPadding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.fit_padding cannot be negative")
	}
	if err := errors.ValidatePositive("viewport.fit_max_zoom", c.Viewport.FitMaxZoom); err != nil {
		return err
	}
	switch c.Index.EdgeMode {
	case "bbox", "midpoint":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "index.edge_mode must be bbox or midpoint, got %q", c.Index.EdgeMode)
	}
	if err := errors.ValidatePositive("density.threshold", c.Density.Threshold); err != nil {
		return err
	}
	if err := errors.ValidatePositive("hittest.base_radius", c.HitTest.BaseRadius); err != nil {
		return err
	}
	if c.HitTest.Interval < 0 || c.Labels.FadeDuration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations cannot be negative")
	}
	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile:
		if c.Cache.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Server.MaxSessions <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_sessions must be positive")
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, ConfigDirName)
	}
	return filepath.Join(os.TempDir(), ConfigDirName)
}

// Save writes the config to path, choosing the format by extension.
func (c *Config) Save(path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		data = []byte(buf.String())
	case ".yaml", ".yml":
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		data = out
	default:
		return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported config format %q (use .toml or .yaml)", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
