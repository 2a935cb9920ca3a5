// Package hittest resolves pointer positions to the node or link under
// them and turns the results into focus and blur events.
//
// Pointer samples are throttled, converted to graph space and matched
// against the node index first. Only when no node is within reach is the
// link index consulted, using the perpendicular distance to each
// candidate segment. The router latches the current focus: a sample that
// resolves to the already-focused entity emits nothing, and a change
// always emits the blur for the old entity before the focus for the new.
package hittest

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/clock"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/observability"
	"github.com/matzehuels/graphscope/pkg/spatial"
)

// Defaults.
const (
	DefaultBaseRadius = 30
	DefaultInterval   = 20 * time.Millisecond
)

// Focus identifies the hovered entity. The zero value means nothing.
type Focus = events.Target

// Indexes gives access to the node and link indexes. *spatial.Tracker
// satisfies it.
type Indexes interface {
	Nodes() *spatial.Index
	Links() *spatial.Index
}

// View is the part of the viewport the router reads.
type View interface {
	ToGraph(p geom.Point) geom.Point
	Scale() float64
}

// Segments resolves link endpoints for the line-distance test.
type Segments interface {
	LinkEndpoints(id string) (from, to geom.Point, ok bool)
}

// Options configures a Router.
type Options struct {
	BaseRadius float64
	Interval   time.Duration
	Logger     *log.Logger
}

// Router is the hit-test state machine of one scene.
type Router struct {
	bus      *events.Bus
	idx      Indexes
	view     View
	segs     Segments
	base     float64
	logger   *log.Logger
	throttle *clock.Throttle[geom.Point]

	focus Focus

	subs      events.Group
	destroyed bool
}

// New returns a router subscribed to entity removals on bus.
func New(bus *events.Bus, sched *clock.Scheduler, idx Indexes, view View, segs Segments, opts Options) *Router {
	if opts.BaseRadius == 0 {
		opts.BaseRadius = DefaultBaseRadius
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	r := &Router{
		bus:    bus,
		idx:    idx,
		view:   view,
		segs:   segs,
		base:   opts.BaseRadius,
		logger: opts.Logger,
	}
	r.throttle = clock.NewThrottle(sched, opts.Interval, func(p geom.Point) { r.Sample(p) })
	r.subs.Add(bus.NodeRemove.Subscribe(func(n events.Node) { r.dropIfFocused(Focus{ID: n.ID, Kind: events.KindNode}) }))
	r.subs.Add(bus.LinkRemove.Subscribe(func(l events.Link) { r.dropIfFocused(Focus{ID: l.ID, Kind: events.KindLink}) }))
	r.subs.Add(bus.CoreClear.Subscribe(func(events.Signal) {
		r.throttle.Cancel()
		r.focus = Focus{}
	}))
	return r
}

// Focus returns the current focus.
func (r *Router) Focus() Focus { return r.focus }

// Radius returns the graph-space hit radius for the current zoom.
func (r *Router) Radius() float64 {
	s := r.view.Scale()
	if s > 1 {
		return r.base / s
	}
	return r.base * s
}

// Pointer feeds a screen-space pointer position through the throttle.
func (r *Router) Pointer(p geom.Point) error {
	if r.destroyed {
		return errors.Destroyed("hit-test router", "Pointer")
	}
	r.throttle.Call(p)
	return nil
}

// Sample resolves p immediately and updates the focus latch.
func (r *Router) Sample(p geom.Point) Focus {
	if r.destroyed {
		return r.focus
	}
	r.set(r.Resolve(p))
	return r.focus
}

// Resolve returns the entity under screen point p without touching the
// focus. Nodes win over links.
func (r *Router) Resolve(p geom.Point) Focus {
	g := r.view.ToGraph(p)
	radius := r.Radius()

	if near := r.idx.Nodes().Nearest(g, 1); len(near) > 0 {
		if geom.Dist(g, near[0].Center()) <= radius {
			return Focus{ID: near[0].ID, Kind: events.KindNode}
		}
	}

	best, bestDist := "", math.Inf(1)
	for _, e := range r.idx.Links().Search(geom.Around(g, radius)) {
		from, to, ok := r.segs.LinkEndpoints(e.ID)
		if !ok {
			continue
		}
		if d := geom.LineDist(g, from, to); d < bestDist {
			best, bestDist = e.ID, d
		}
	}
	if best != "" && bestDist <= radius {
		return Focus{ID: best, Kind: events.KindLink}
	}
	return Focus{}
}

// Leave blurs the current focus; the pointer left the surface.
func (r *Router) Leave() error {
	if r.destroyed {
		return errors.Destroyed("hit-test router", "Leave")
	}
	r.throttle.Cancel()
	r.set(Focus{})
	return nil
}

// Click resolves p without throttling and publishes node:click or
// link:click for the entity under it.
func (r *Router) Click(p geom.Point) (Focus, error) {
	if r.destroyed {
		return Focus{}, errors.Destroyed("hit-test router", "Click")
	}
	f := r.Resolve(p)
	if !f.IsZero() {
		r.bus.Click(f.Kind).Publish(f)
	}
	return f, nil
}

func (r *Router) set(next Focus) {
	prev := r.focus
	if next == prev {
		return
	}
	r.focus = next
	observability.View().OnFocus(next.Kind.String())
	r.logger.Debug("focus", "kind", next.Kind, "id", next.ID)
	if !prev.IsZero() {
		r.bus.Out(prev.Kind).Publish(prev)
	}
	if !next.IsZero() {
		r.bus.Over(next.Kind).Publish(next)
	}
}

func (r *Router) dropIfFocused(f Focus) {
	if r.focus == f {
		r.set(Focus{})
	}
}

// Destroy detaches the router from the bus and drops a pending sample.
func (r *Router) Destroy() {
	if r.destroyed {
		return
	}
	r.subs.Unsubscribe()
	r.throttle.Cancel()
	r.focus = Focus{}
	r.destroyed = true
}
