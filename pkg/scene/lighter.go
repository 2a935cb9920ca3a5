package scene

import (
	"slices"
	"time"

	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/tween"
)

// Highlight defaults.
const (
	DefaultHaloRadius = 13
	DefaultGlowFade   = 250 * time.Millisecond
)

// LighterOptions configures the highlight overlay.
type LighterOptions struct {
	// Radius is the halo radius in pixels at scale 1.
	Radius float64
	Fade   time.Duration
}

// Halo is one highlighted node as a renderer should draw it.
type Halo struct {
	ID        string     `json:"id"`
	Center    geom.Point `json:"center"`
	Radius    float64    `json:"radius"`
	Intensity float64    `json:"intensity"`
}

// Lighter glows the hovered node, the endpoints of a hovered link, and any
// nodes pinned with High.
type Lighter struct {
	scene  *Scene
	tr     *tween.Transitioner
	radius float64

	hovered []string
	pinned  []string

	subs      events.Group
	destroyed bool
}

func newLighter(s *Scene, opts LighterOptions) *Lighter {
	if opts.Radius == 0 {
		opts.Radius = DefaultHaloRadius
	}
	if opts.Fade == 0 {
		opts.Fade = DefaultGlowFade
	}
	l := &Lighter{scene: s, radius: opts.Radius}
	l.tr = tween.NewTransitioner(&s.bus.ViewFrame, s.sched, s.logger).
		From(func(string) tween.Props { return tween.Props{"glow": 0} }).
		To(func(string) tween.Props { return tween.Props{"glow": 1} }).
		Duration(opts.Fade).
		Easing(tween.QuadOut, tween.QuadIn)

	l.subs.Add(s.bus.NodeOver.Subscribe(func(t events.Target) { l.hover([]string{t.ID}) }))
	l.subs.Add(s.bus.NodeOut.Subscribe(func(events.Target) { l.hover(nil) }))
	l.subs.Add(s.bus.LinkOver.Subscribe(func(t events.Target) {
		if info, ok := s.Link(t.ID); ok {
			l.hover([]string{info.From, info.To})
		}
	}))
	l.subs.Add(s.bus.LinkOut.Subscribe(func(events.Target) { l.hover(nil) }))
	l.subs.Add(s.bus.CoreClear.Subscribe(func(events.Signal) {
		l.hovered, l.pinned = nil, nil
		l.apply()
	}))
	return l
}

func (l *Lighter) hover(ids []string) {
	l.hovered = ids
	l.apply()
}

func (l *Lighter) apply() {
	if l.destroyed {
		return
	}
	ids := slices.Clone(l.pinned)
	for _, id := range l.hovered {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if err := l.tr.Transition(ids); err != nil {
		l.scene.logger.Debug("highlight transition failed", "ids", len(ids), "error", err)
	}
}

// High pins a highlight on ids, replacing the previous pinned set. An
// empty list is ignored.
func (l *Lighter) High(ids []string) error {
	if l.destroyed {
		return errors.Destroyed("lighter", "High")
	}
	if len(ids) == 0 {
		return nil
	}
	l.pinned = slices.Clone(ids)
	l.apply()
	return nil
}

// Off clears the pinned highlight.
func (l *Lighter) Off() error {
	if l.destroyed {
		return errors.Destroyed("lighter", "Off")
	}
	l.pinned = nil
	l.apply()
	return nil
}

// Halos returns every node with a live glow, in id order, in screen space.
// The radius shrinks with the zoom below scale 1.
func (l *Lighter) Halos() []Halo {
	var out []Halo
	r := l.radius * l.scene.view.TruncatedScale()
	for _, id := range l.tr.Active() {
		pos, ok := l.scene.NodePosition(id)
		if !ok {
			continue
		}
		p, _ := l.tr.Props(id)
		out = append(out, Halo{
			ID:        id,
			Center:    l.scene.view.ToScreen(pos),
			Radius:    r,
			Intensity: p["glow"],
		})
	}
	return out
}

// Destroy detaches the overlay.
func (l *Lighter) Destroy() {
	if l.destroyed {
		return
	}
	l.subs.Unsubscribe()
	l.tr.Destroy()
	l.hovered, l.pinned = nil, nil
	l.destroyed = true
}
