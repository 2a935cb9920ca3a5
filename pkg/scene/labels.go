package scene

import (
	"slices"
	"time"

	"github.com/matzehuels/graphscope/pkg/density"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/tween"
)

// Label defaults.
const (
	DefaultLabelFade = time.Second
)

// DefaultLabelOffset places a label below and left of its node, in pixels.
var DefaultLabelOffset = geom.Pt(-50, 16)

// LabelOptions configures the label overlay.
type LabelOptions struct {
	// Disabled starts the overlay hidden; SetEnabled toggles it.
	Disabled bool

	// Threshold is the LOD radius at which labels appear. Zero uses
	// density.DefaultThreshold.
	Threshold float64

	// Fade is the fade-in and fade-out duration.
	Fade time.Duration

	// Offset is added to a node's screen position. Nil uses
	// DefaultLabelOffset.
	Offset *geom.Point
}

// Label is one label as a renderer should draw it.
type Label struct {
	ID      string     `json:"id"`
	Text    string     `json:"text"`
	Pos     geom.Point `json:"pos"`
	Opacity float64    `json:"opacity"`
	Locked  bool       `json:"locked,omitempty"`
}

// Labels fades node labels in when the view is detailed enough and out
// when it is not. Locked ids stay labelled at any zoom.
type Labels struct {
	scene     *Scene
	tr        *tween.Transitioner
	threshold float64
	offset    geom.Point
	enabled   bool

	auto   []string
	locked []string

	subs      events.Group
	destroyed bool
}

func newLabels(s *Scene, opts LabelOptions) *Labels {
	if opts.Threshold == 0 {
		opts.Threshold = density.DefaultThreshold
	}
	if opts.Fade == 0 {
		opts.Fade = DefaultLabelFade
	}
	offset := DefaultLabelOffset
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	l := &Labels{
		scene:     s,
		threshold: opts.Threshold,
		offset:    offset,
		enabled:   !opts.Disabled,
	}
	l.tr = tween.NewTransitioner(&s.bus.ViewFrame, s.sched, s.logger).
		From(func(string) tween.Props { return tween.Props{"opacity": 0} }).
		To(func(string) tween.Props { return tween.Props{"opacity": 1} }).
		Duration(opts.Fade)

	l.subs.Add(s.bus.ViewElements.Subscribe(l.onElements))
	l.subs.Add(s.bus.NodeRemove.Subscribe(func(n events.Node) { l.forget(n.ID) }))
	l.subs.Add(s.bus.CoreClear.Subscribe(func(events.Signal) {
		l.auto, l.locked = nil, nil
		l.apply()
	}))
	return l
}

func (l *Labels) onElements(el events.Elements) {
	if el.Radius < l.threshold {
		l.auto = nil
	} else {
		l.auto = slices.Clone(el.Nodes)
	}
	l.apply()
}

func (l *Labels) forget(id string) {
	l.auto = slices.DeleteFunc(l.auto, func(s string) bool { return s == id })
	l.locked = slices.DeleteFunc(l.locked, func(s string) bool { return s == id })
	l.apply()
}

func (l *Labels) apply() {
	if l.destroyed {
		return
	}
	var ids []string
	if l.enabled {
		ids = append(ids, l.auto...)
	}
	for _, id := range l.locked {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if err := l.tr.Transition(ids); err != nil {
		l.scene.logger.Debug("label transition failed", "ids", len(ids), "error", err)
	}
}

// Lock keeps ids labelled regardless of zoom, replacing the previous set.
func (l *Labels) Lock(ids []string) error {
	if l.destroyed {
		return errors.Destroyed("labels", "Lock")
	}
	l.locked = slices.Clone(ids)
	l.apply()
	return nil
}

// SetEnabled shows or hides the zoom-driven labels. Locked labels stay.
func (l *Labels) SetEnabled(on bool) error {
	if l.destroyed {
		return errors.Destroyed("labels", "SetEnabled")
	}
	l.enabled = on
	l.apply()
	return nil
}

// Enabled reports whether zoom-driven labels are shown.
func (l *Labels) Enabled() bool { return l.enabled }

// Targets returns the ids currently fading in or shown.
func (l *Labels) Targets() []string { return l.tr.Targets() }

// Fading reports whether any label is still fading in or out.
func (l *Labels) Fading() bool { return l.tr.Running() }

// Visible returns every label with a live fade state, in id order, placed
// in screen space.
func (l *Labels) Visible() []Label {
	var out []Label
	for _, id := range l.tr.Active() {
		info, ok := l.scene.Node(id)
		if !ok {
			continue
		}
		p, _ := l.tr.Props(id)
		out = append(out, Label{
			ID:      id,
			Text:    info.Label,
			Pos:     l.scene.view.ToScreen(info.Pos).Add(l.offset),
			Opacity: p["opacity"],
			Locked:  slices.Contains(l.locked, id),
		})
	}
	return out
}

// Destroy detaches the overlay.
func (l *Labels) Destroy() {
	if l.destroyed {
		return
	}
	l.subs.Unsubscribe()
	l.tr.Destroy()
	l.auto, l.locked = nil, nil
	l.destroyed = true
}
