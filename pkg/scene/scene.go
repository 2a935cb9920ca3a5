// Package scene assembles the interactive core of a graph view.
//
// A [Scene] owns the event bus, the entity store, the frame loop and the
// modules that react to them:
//
//   - spatial.Tracker: node and link R-trees kept in sync with the graph
//   - viewport.Controller: pan, zoom, fit and animated camera moves
//   - density.Estimator: visible set and level-of-detail radius
//   - hittest.Router: pointer focus and clicks
//   - Labels and Lighter: transition-driven overlays
//
// Modules never reference each other or the scene directly. They talk
// through the bus and through narrow interfaces the scene implements, so
// each one can be tested on its own.
//
// # Lifecycle
//
//	s, err := scene.New(scene.Options{Container: term})
//	err = s.Load(ctx, g)      // layout created, core:init published
//	err = s.Run(false)        // frame loop requested
//	s.Frame(now)              // host drives timers and frames
//	s.Destroy()
//
// Everything runs on the goroutine that calls Frame and the entity API; the
// scene does no locking.
package scene

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/clock"
	"github.com/matzehuels/graphscope/pkg/density"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
	"github.com/matzehuels/graphscope/pkg/hittest"
	"github.com/matzehuels/graphscope/pkg/layout"
	"github.com/matzehuels/graphscope/pkg/spatial"
	"github.com/matzehuels/graphscope/pkg/viewport"
)

// Container is the surface a scene draws into.
type Container interface {
	Size() geom.Size
}

// FixedSize is a Container of constant size, for headless use.
type FixedSize geom.Size

// Size implements Container.
func (f FixedSize) Size() geom.Size { return geom.Size(f) }

// Options configures a Scene. Zero fields take each module's defaults.
type Options struct {
	Container Container

	// Layout names the layout provider; empty means "static".
	Layout   string
	Registry *layout.Registry

	EdgeMode spatial.EdgeMode
	Viewport viewport.Options
	Density  density.Options
	HitTest  hittest.Options
	Labels   LabelOptions
	Lighter  LighterOptions

	// FitPadding and FitMaxZoom parameterise Fit.
	FitPadding float64
	FitMaxZoom float64

	// Start is the scheduler origin; zero means time.Now().
	Start time.Time

	Logger *log.Logger
}

// Scene is the application object tying graph, layout and modules together.
type Scene struct {
	opts     Options
	logger   *log.Logger
	bus      *events.Bus
	sched    *clock.Scheduler
	registry *layout.Registry

	layout   layout.Layout
	nodes    map[string]*nodeState
	links    map[string]*linkState
	incident map[string]map[string]struct{}
	dragging map[string]int

	tracker *spatial.Tracker
	view    *viewport.Controller
	density *density.Estimator
	hits    *hittest.Router
	labels  *Labels
	lighter *Lighter

	loaded        bool
	running       bool
	layoutStopped bool
	suspended     int
	frame         clock.FrameID
	framePending  bool
	destroyed     bool
}

// New builds a scene and wires its modules. It fails with
// MISSING_CONTAINER, UNSUPPORTED_LAYOUT or INVALID_CONFIG.
func New(opts Options) (*Scene, error) {
	if opts.Container == nil {
		return nil, errors.New(errors.ErrCodeMissingContainer, "scene needs a container")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Registry == nil {
		opts.Registry = layout.NewDefaultRegistry(layout.GraphvizOptions{Logger: opts.Logger})
	}
	if opts.Layout == "" {
		opts.Layout = layout.StaticName
	}
	if !opts.Registry.Has(opts.Layout) {
		return nil, errors.New(errors.ErrCodeUnsupportedLayout, "unsupported layout %q (available: %v)", opts.Layout, opts.Registry.Names())
	}
	if opts.FitPadding == 0 {
		opts.FitPadding = viewport.DefaultPadding
	}
	if opts.FitMaxZoom == 0 {
		opts.FitMaxZoom = viewport.DefaultMaxZoom
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	if opts.Viewport.Logger == nil {
		opts.Viewport.Logger = opts.Logger
	}
	if opts.Density.Logger == nil {
		opts.Density.Logger = opts.Logger
	}
	if opts.HitTest.Logger == nil {
		opts.HitTest.Logger = opts.Logger
	}

	s := &Scene{
		opts:     opts,
		logger:   opts.Logger,
		bus:      events.NewBus(),
		sched:    clock.New(opts.Start),
		registry: opts.Registry,
	}
	s.resetEntities()

	// Subscription order is significant: the tracker rebuilds on
	// layout:ready before the estimator reads the indexes.
	s.tracker = spatial.NewTracker(s.bus, s, spatial.TrackerOptions{Mode: opts.EdgeMode, Logger: opts.Logger})
	view, err := viewport.New(s.bus, s.sched, s, s, opts.Viewport)
	if err != nil {
		s.tracker.Destroy()
		return nil, err
	}
	s.view = view
	s.density = density.New(s.bus, s.tracker, s.view, opts.Density)
	s.hits = hittest.New(s.bus, s.sched, s.tracker, s.view, s, opts.HitTest)
	s.labels = newLabels(s, opts.Labels)
	s.lighter = newLighter(s, opts.Lighter)

	if size := opts.Container.Size(); !size.Empty() {
		s.bus.ViewSize.Publish(size)
	}
	return s, nil
}

func (s *Scene) resetEntities() {
	s.nodes = make(map[string]*nodeState)
	s.links = make(map[string]*linkState)
	s.incident = make(map[string]map[string]struct{})
	s.dragging = make(map[string]int)
}

// Bus returns the scene's event bus.
func (s *Scene) Bus() *events.Bus { return s.bus }

// Scheduler returns the scene's timer and frame scheduler.
func (s *Scene) Scheduler() *clock.Scheduler { return s.sched }

// Now returns the scheduler time.
func (s *Scene) Now() time.Time { return s.sched.Now() }

// Index returns the spatial tracker.
func (s *Scene) Index() *spatial.Tracker { return s.tracker }

// Viewport returns the viewport controller.
func (s *Scene) Viewport() *viewport.Controller { return s.view }

// Density returns the density estimator.
func (s *Scene) Density() *density.Estimator { return s.density }

// HitTest returns the hit-test router.
func (s *Scene) HitTest() *hittest.Router { return s.hits }

// Labels returns the label overlay.
func (s *Scene) Labels() *Labels { return s.labels }

// Lighter returns the highlight overlay.
func (s *Scene) Lighter() *Lighter { return s.lighter }

// Layout returns the active layout, or nil before Load.
func (s *Scene) Layout() layout.Layout { return s.layout }

// LayoutName returns the configured layout provider.
func (s *Scene) LayoutName() string { return s.opts.Layout }

// Loaded reports whether a graph is loaded.
func (s *Scene) Loaded() bool { return s.loaded }

// Running reports whether the frame loop is active.
func (s *Scene) Running() bool { return s.running }

// LayoutStopped reports whether the layout has converged or was stopped.
func (s *Scene) LayoutStopped() bool { return s.layoutStopped }

// Resize announces a new container size.
func (s *Scene) Resize(size geom.Size) error {
	if s.destroyed {
		return errors.Destroyed("scene", "Resize")
	}
	s.bus.ViewSize.Publish(size)
	return nil
}

// Bounds returns the extent of all node positions.
func (s *Scene) Bounds() (geom.Rect, bool) {
	pts := make([]geom.Point, 0, len(s.nodes))
	for _, n := range s.nodes {
		pts = append(pts, n.pos)
	}
	b, ok := geom.Extent(pts)
	if !ok {
		return geom.Rect{}, false
	}
	return b.Rect(), true
}

// Fit frames every node in the container.
func (s *Scene) Fit(animated bool) error {
	if s.destroyed {
		return errors.Destroyed("scene", "Fit")
	}
	r, ok := s.Bounds()
	if !ok {
		return errors.New(errors.ErrCodeNotLoaded, "scene has no nodes to fit")
	}
	return s.view.FitBounds(r.Pad(viewport.NodePadding), s.opts.FitPadding, s.opts.FitMaxZoom, animated)
}

// Load replaces the scene content with g. The layout is created through the
// registry, entities are populated from it and core:init is published.
func (s *Scene) Load(ctx context.Context, g *graph.Graph) error {
	if s.destroyed {
		return errors.Destroyed("scene", "Load")
	}
	g = normalized(g)
	if err := g.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	l, err := s.registry.New(ctx, s.opts.Layout, g)
	if err != nil {
		return err
	}
	if s.loaded {
		s.clear()
	}

	s.layout = l
	for _, n := range g.Nodes {
		pos, ok := l.NodePosition(n.ID)
		if !ok {
			pos, _ = n.Position()
		}
		s.nodes[n.ID] = &nodeState{node: n, pos: pos}
	}
	for _, e := range g.Edges {
		s.insertLink(e)
	}
	s.loaded = true
	s.logger.Info("graph loaded", "layout", s.opts.Layout, "nodes", len(s.nodes), "links", len(s.links))
	s.bus.CoreInit.Publish(events.Signal{})
	return nil
}

// Clear publishes core:clear, stops the loop and drops every entity.
func (s *Scene) Clear() error {
	if s.destroyed {
		return errors.Destroyed("scene", "Clear")
	}
	s.clear()
	return nil
}

func (s *Scene) clear() {
	s.bus.CoreClear.Publish(events.Signal{})
	s.Stop()
	s.resetEntities()
	s.layout = nil
	s.loaded = false
	s.layoutStopped = false
}

// Destroy detaches every module from the bus before dropping the scene
// state. Later calls fail with DESTROYED.
func (s *Scene) Destroy() {
	if s.destroyed {
		return
	}
	s.Stop()
	s.lighter.Destroy()
	s.labels.Destroy()
	s.hits.Destroy()
	s.density.Destroy()
	s.view.Destroy()
	s.tracker.Destroy()
	s.bus.Reset()
	s.resetEntities()
	s.layout = nil
	s.loaded = false
	s.destroyed = true
}
