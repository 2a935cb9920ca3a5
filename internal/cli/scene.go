package cli

import (
	"context"
	"io"

	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/config"
	"github.com/matzehuels/graphscope/pkg/layout"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// loadedScene is a running scene together with the resources opened for it.
type loadedScene struct {
	*scene.Scene
	cache cache.Cache
}

// Close destroys the scene and closes its layout cache.
func (l *loadedScene) Close() error {
	l.Destroy()
	return l.cache.Close()
}

// openScene reads the graph at path, lays it out in a container and starts
// the frame loop. A spinner is shown on progress while an external layout
// runs; progress may be nil.
func (c *CLI) openScene(ctx context.Context, cfg *config.Config, container scene.Container, path string, progress io.Writer) (*loadedScene, error) {
	g, err := readGraph(path)
	if err != nil {
		return nil, err
	}
	reg, lc := c.newRegistry(ctx, cfg)
	opts, err := scene.OptionsFromConfig(cfg, container, reg, c.Logger)
	if err != nil {
		lc.Close()
		return nil, err
	}
	sc, err := scene.New(opts)
	if err != nil {
		lc.Close()
		return nil, err
	}
	ls := &loadedScene{Scene: sc, cache: lc}

	if progress != nil && opts.Layout != layout.StaticName {
		sp := newSpinner(ctx, progress, "Computing "+opts.Layout+" layout")
		sp.Start()
		err = sc.Load(ctx, g)
		sp.Stop()
	} else {
		err = sc.Load(ctx, g)
	}
	if err != nil {
		ls.Close()
		return nil, err
	}
	if err := sc.Run(false); err != nil {
		ls.Close()
		return nil, err
	}
	c.Logger.Debug("scene loaded", "layout", opts.Layout, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return ls, nil
}
