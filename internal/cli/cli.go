// Package cli implements the graphscope command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/config"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
	"github.com/matzehuels/graphscope/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphscope"

	// maxFrames bounds how long headless commands step a scene.
	maxFrames = 2000
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flags.
	configPath string
	layoutName string
	edgeMode   string
	noCache    bool
	verbose    bool

	// cfg is loaded by the root command before any subcommand runs.
	cfg     *config.Config
	cfgPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the effective configuration, loading it on first use.
func (c *CLI) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var (
		cfg  *config.Config
		path = c.configPath
		err  error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if c.layoutName != "" {
		cfg.Layout.Name = c.layoutName
	}
	if c.edgeMode != "" {
		cfg.Index.EdgeMode = c.edgeMode
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	c.cfg, c.cfgPath = cfg, path
	return cfg, nil
}

// =============================================================================
// Layout Factory
// =============================================================================

// newCache opens the layout cache selected by cfg. A backend that cannot be
// opened degrades to no caching.
func newCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	c, err := cache.Open(ctx, cache.Options{Backend: cfg.Backend, Dir: cfg.Dir, RedisURL: cfg.RedisURL})
	if err != nil {
		logger.Warn("layout cache disabled", "backend", cfg.Backend, "error", err)
		return cache.NewNullCache()
	}
	logger.Debug("layout cache", "backend", cfg.Backend)
	return c
}

// newRegistry builds the layout providers backed by the configured cache.
// The caller closes the returned cache.
func (c *CLI) newRegistry(ctx context.Context, cfg *config.Config) (*layout.Registry, cache.Cache) {
	lc := newCache(ctx, cfg.Cache, c.Logger)
	reg := layout.NewDefaultRegistry(layout.GraphvizOptions{
		Cache:   lc,
		Keyer:   cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix),
		NodeSep: cfg.Layout.NodeSep,
		Logger:  c.Logger,
	})
	return reg, lc
}

// =============================================================================
// Input Helpers
// =============================================================================

// readGraph reads a graph file, or stdin when path is "-".
func readGraph(path string) (*graph.Graph, error) {
	if path == "-" {
		return graph.ReadGraph(os.Stdin)
	}
	return graph.ReadGraphFile(path)
}

// parseFloats parses n comma-separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(v[0], v[1]), nil
}

// parseRect parses "x0,y0,x1,y1" into a normalized rectangle.
func parseRect(s string) (geom.Rect, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return geom.Rect{}, err
	}
	r := geom.NormalBox(geom.Pt(v[0], v[1]), geom.Pt(v[2], v[3])).Rect()
	if r.W == 0 || r.H == 0 {
		return geom.Rect{}, fmt.Errorf("bounding box %q is empty", s)
	}
	return r, nil
}
