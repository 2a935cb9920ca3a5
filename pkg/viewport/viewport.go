// Package viewport owns the pan/zoom transform of a scene.
//
// A screen point s and a graph point g are related by s = g*Scale + (X, Y).
// The controller converts between the two spaces, reports the visible part
// of the graph, runs animated camera moves and announces a settled
// viewport with view:reset once a gesture has been quiet for a short
// delay.
package viewport

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/clock"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/observability"
	"github.com/matzehuels/graphscope/pkg/tween"
)

// Defaults.
const (
	DefaultMinScale          = 0.01
	DefaultMaxScale          = 100
	DefaultAnimationDuration = 1000 * time.Millisecond
	DefaultSettleDelay       = 40 * time.Millisecond

	// DefaultPadding and DefaultMaxZoom are the FitBounds arguments used
	// by ZoomNodes.
	DefaultPadding = 100
	DefaultMaxZoom = 3

	// NodePadding is added around the node extent by ZoomNodes.
	NodePadding = 8
)

// Transform is the affine pan/zoom state.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Translate returns the translation as a point.
func (t Transform) Translate() geom.Point { return geom.Pt(t.X, t.Y) }

func lerp(a, b Transform, p float64) Transform {
	return Transform{
		X:     a.X + (b.X-a.X)*p,
		Y:     a.Y + (b.Y-a.Y)*p,
		Scale: a.Scale + (b.Scale-a.Scale)*p,
	}
}

// Loop is the scene frame loop. Animated transforms suspend it and render
// their own frames without a physics step.
type Loop interface {
	Suspend()
	Resume()
	RenderFrame(now time.Time)
}

// Positions resolves node positions for ZoomNodes.
type Positions interface {
	NodePosition(id string) (geom.Point, bool)
}

// Options configures a Controller. Zero fields take the defaults above.
type Options struct {
	MinScale          float64
	MaxScale          float64
	AnimationDuration time.Duration
	SettleDelay       time.Duration
	Easing            tween.Easing
	Logger            *log.Logger
}

func (o *Options) setDefaults() {
	if o.MinScale == 0 {
		o.MinScale = DefaultMinScale
	}
	if o.MaxScale == 0 {
		o.MaxScale = DefaultMaxScale
	}
	if o.AnimationDuration == 0 {
		o.AnimationDuration = DefaultAnimationDuration
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.Easing == nil {
		o.Easing = tween.CubicInOut
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

func (o Options) validate() error {
	if err := errors.ValidatePositive("min scale", o.MinScale); err != nil {
		return err
	}
	if err := errors.ValidateRange("scale", o.MinScale, o.MaxScale); err != nil {
		return err
	}
	if o.AnimationDuration < 0 || o.SettleDelay < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	return nil
}

type animation struct {
	from, to Transform
	start    time.Time
	frame    clock.FrameID
}

// Controller holds the viewport state of one scene.
type Controller struct {
	bus       *events.Bus
	sched     *clock.Scheduler
	loop      Loop
	positions Positions
	opts      Options
	logger    *log.Logger

	t      Transform
	size   geom.Size
	settle *clock.Debouncer
	anim   *animation

	subs      events.Group
	destroyed bool
}

// New returns a controller at identity transform. loop and positions may
// be nil.
func New(bus *events.Bus, sched *clock.Scheduler, loop Loop, positions Positions, opts Options) (*Controller, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		bus:       bus,
		sched:     sched,
		loop:      loop,
		positions: positions,
		opts:      opts,
		logger:    opts.Logger,
		t:         Transform{Scale: 1},
	}
	c.settle = clock.NewDebouncer(sched, opts.SettleDelay, c.publishReset)
	c.subs.Add(bus.ViewSize.Subscribe(func(s geom.Size) { _ = c.Resize(s) }))
	c.subs.Add(bus.CoreInit.Subscribe(func(events.Signal) { _ = c.AlignToCenter(false) }))
	c.subs.Add(bus.CoreClear.Subscribe(func(events.Signal) { c.halt() }))
	return c, nil
}

// State returns the current transform.
func (c *Controller) State() Transform { return c.t }

// Size returns the last known container size.
func (c *Controller) Size() geom.Size { return c.size }

// Scale returns the current zoom factor.
func (c *Controller) Scale() float64 { return c.t.Scale }

// TruncatedScale is the scale capped at 1, used to shrink decorations
// when zoomed out without growing them when zoomed in.
func (c *Controller) TruncatedScale() float64 { return math.Min(c.t.Scale, 1) }

// ToGraph converts a screen point to graph space.
func (c *Controller) ToGraph(p geom.Point) geom.Point {
	return p.Sub(c.t.Translate()).Scale(1 / c.t.Scale)
}

// ToScreen converts a graph point to screen space.
func (c *Controller) ToScreen(p geom.Point) geom.Point {
	return p.Scale(c.t.Scale).Add(c.t.Translate())
}

// VisibleBBox returns the part of graph space covered by the container.
func (c *Controller) VisibleBBox() geom.Rect {
	s := c.t.Scale
	return geom.Rect{X: -c.t.X / s, Y: -c.t.Y / s, W: c.size.W / s, H: c.size.H / s}
}

// Animating reports whether an animated transform is in flight.
func (c *Controller) Animating() bool { return c.anim != nil }

// SettlePending reports whether a view:reset is scheduled.
func (c *Controller) SettlePending() bool { return c.settle.Pending() }

func (c *Controller) clamp(s float64) float64 {
	return math.Min(math.Max(s, c.opts.MinScale), c.opts.MaxScale)
}

// Transform moves the camera. A nil translate or scale keeps the current
// value; both nil is a no-op. The scale is clamped to the configured
// range. An animated move suspends the scene loop for its duration and
// replaces any move already in flight, starting from where that one got
// to. Either way a settle follows.
func (c *Controller) Transform(translate *geom.Point, scale *float64, animated bool) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "Transform")
	}
	if translate == nil && scale == nil {
		return nil
	}
	target := c.t
	if translate != nil {
		target.X, target.Y = translate.X, translate.Y
	}
	if scale != nil {
		target.Scale = c.clamp(*scale)
	}
	c.logger.Debug("transform", "x", target.X, "y", target.Y, "scale", target.Scale, "animated", animated)

	if !animated || c.opts.AnimationDuration == 0 {
		c.stopAnimation()
		c.t = target
		c.settle.Trigger()
		return nil
	}

	c.settle.Cancel()
	if c.anim != nil {
		c.sched.CancelFrame(c.anim.frame)
	} else if c.loop != nil {
		c.loop.Suspend()
	}
	c.anim = &animation{from: c.t, to: target, start: c.sched.Now()}
	c.anim.frame = c.sched.RequestFrame(c.step)
	return nil
}

func (c *Controller) step(now time.Time) {
	a := c.anim
	if a == nil {
		return
	}
	p := float64(now.Sub(a.start)) / float64(c.opts.AnimationDuration)
	p = math.Min(math.Max(p, 0), 1)
	c.t = lerp(a.from, a.to, tween.Ease(c.opts.Easing, p))
	if c.loop != nil {
		c.loop.RenderFrame(now)
	}
	if p < 1 {
		a.frame = c.sched.RequestFrame(c.step)
		return
	}
	c.anim = nil
	c.t = a.to
	if c.loop != nil {
		c.loop.Resume()
	}
	c.settle.Trigger()
}

// stopAnimation abandons an in-flight move at its current state.
func (c *Controller) stopAnimation() {
	if c.anim == nil {
		return
	}
	c.sched.CancelFrame(c.anim.frame)
	c.anim = nil
	if c.loop != nil {
		c.loop.Resume()
	}
}

// FitBounds frames r in the container with padding pixels on each side.
// The longer side of r is fitted first; the other side shrinks the scale
// further if it would overflow. The result never exceeds maxZoom.
func (c *Controller) FitBounds(r geom.Rect, padding, maxZoom float64, animated bool) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "FitBounds")
	}
	pw, ph := c.size.W-2*padding, c.size.H-2*padding
	if pw <= 0 || ph <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding %.0f leaves no room in a %.0fx%.0f container", padding, c.size.W, c.size.H)
	}
	var sc float64
	if r.W > r.H {
		sc = fitScale(pw, ph, r.W, r.H)
	} else {
		sc = fitScale(ph, pw, r.H, r.W)
	}
	sc = math.Min(sc, maxZoom)

	center := r.Center().Scale(sc)
	tr := geom.Pt(c.size.W/2-center.X, c.size.H/2-center.Y)
	return c.Transform(&tr, &sc, animated)
}

// fitScale fits side a into pA, then shrinks so side b fits into pB.
func fitScale(pA, pB, a, b float64) float64 {
	if a <= 0 {
		return math.Inf(1)
	}
	sc := pA / a
	if b*sc > pB {
		sc = pB / b
	}
	return sc
}

// AlignToCenter moves the graph origin to the container centre.
func (c *Controller) AlignToCenter(animated bool) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "AlignToCenter")
	}
	tr := geom.Pt(c.size.W/2, c.size.H/2)
	return c.Transform(&tr, nil, animated)
}

// ZoomNodes animates the camera onto the extent of the given nodes.
// Unknown ids are skipped; if none is known the call fails with NOT_FOUND.
func (c *Controller) ZoomNodes(ids []string) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "ZoomNodes")
	}
	if c.positions == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport has no node positions")
	}
	pts := make([]geom.Point, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.positions.NodePosition(id); ok {
			pts = append(pts, p)
		}
	}
	box, ok := geom.Extent(pts)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "none of %d nodes found", len(ids))
	}
	return c.FitBounds(box.Rect().Pad(NodePadding), DefaultPadding, DefaultMaxZoom, true)
}

// BeginGesture marks the start of a user gesture. It cancels a pending
// settle and any animated move.
func (c *Controller) BeginGesture() error {
	if c.destroyed {
		return errors.Destroyed("viewport", "BeginGesture")
	}
	c.settle.Cancel()
	c.stopAnimation()
	return nil
}

// Pan shifts the translation by (dx, dy) screen pixels.
func (c *Controller) Pan(dx, dy float64) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "Pan")
	}
	c.stopAnimation()
	c.t.X += dx
	c.t.Y += dy
	return nil
}

// ZoomAt multiplies the scale by factor, keeping the graph point under
// the screen point p fixed.
func (c *Controller) ZoomAt(p geom.Point, factor float64) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "ZoomAt")
	}
	if factor <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "zoom factor must be positive, got %v", factor)
	}
	c.stopAnimation()
	anchor := c.ToGraph(p)
	c.t.Scale = c.clamp(c.t.Scale * factor)
	c.t.X = p.X - anchor.X*c.t.Scale
	c.t.Y = p.Y - anchor.Y*c.t.Scale
	return nil
}

// EndGesture schedules a settle once the gesture has been quiet for the
// settle delay.
func (c *Controller) EndGesture() error {
	if c.destroyed {
		return errors.Destroyed("viewport", "EndGesture")
	}
	c.settle.Trigger()
	return nil
}

// Resize records the container size and announces the viewport at once.
func (c *Controller) Resize(size geom.Size) error {
	if c.destroyed {
		return errors.Destroyed("viewport", "Resize")
	}
	c.size = size
	c.settle.Cancel()
	c.publishReset()
	return nil
}

func (c *Controller) publishReset() {
	observability.View().OnSettle(c.t.Scale)
	c.bus.ViewReset.Publish(events.View{X: c.t.X, Y: c.t.Y, Scale: c.t.Scale})
}

func (c *Controller) halt() {
	c.settle.Cancel()
	c.stopAnimation()
}

// Destroy detaches the controller from the bus, then cancels pending
// work. Mutating calls afterwards fail with DESTROYED.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.subs.Unsubscribe()
	c.halt()
	c.destroyed = true
}
