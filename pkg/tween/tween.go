// Package tween animates per-entity property bags.
//
// A [Tween] interpolates the numeric fields of a [Props] bag toward target
// values. A [Transitioner] manages one bag per entity id and reacts to
// membership changes: ids entering the target set animate forward, ids
// leaving it roll back and are dropped once the rollback completes.
// Rollbacks and forward tweens can interrupt each other without the bag
// jumping, because the interrupted tween's current values become the new
// starting point.
//
// Field interpolation is delegated to gween. Tweens are driven by explicit
// timestamps, never by the wall clock, so the same code runs under a
// terminal tick, a browser-style frame loop or a test.
package tween

import (
	"maps"
	"time"

	"github.com/tanema/gween"
)

// Props is a bag of animated numeric properties such as "alpha" or
// "radius".
type Props map[string]float64

// Clone returns a copy of p.
func (p Props) Clone() Props { return maps.Clone(p) }

// Tween interpolates the fields of a bag from their values at start time to
// the target values, with one gween tween per field.
type Tween struct {
	bag      Props
	start    Props
	end      Props
	fields   map[string]*gween.Tween
	startAt  time.Time
	duration time.Duration

	onComplete func()
	running    bool
}

// New starts a tween at now that moves bag toward to. Fields of to that
// are missing from bag start at their target value.
func New(bag, to Props, d time.Duration, e Easing, now time.Time) *Tween {
	if e == nil {
		e = Linear
	}
	start := make(Props, len(to))
	fields := make(map[string]*gween.Tween, len(to))
	for k, v := range to {
		if cur, ok := bag[k]; ok {
			start[k] = cur
		} else {
			start[k] = v
			bag[k] = v
		}
		fields[k] = gween.New(float32(start[k]), float32(v), float32(d.Seconds()), e)
	}
	return &Tween{
		bag:      bag,
		start:    start,
		end:      to.Clone(),
		fields:   fields,
		startAt:  now,
		duration: d,
		running:  true,
	}
}

// OnComplete sets a callback run once when the tween reaches its target.
// It is not run for stopped tweens.
func (t *Tween) OnComplete(fn func()) *Tween {
	t.onComplete = fn
	return t
}

// Running reports whether the tween is neither finished nor stopped.
func (t *Tween) Running() bool { return t.running }

// Bag returns the property bag the tween writes to.
func (t *Tween) Bag() Props { return t.bag }

// Stop freezes the bag at its current values.
func (t *Tween) Stop() { t.running = false }

// Update writes the interpolated values for now into the bag and reports
// whether the tween is still running afterwards. The start and target
// values are written exactly; gween computes the ones in between.
func (t *Tween) Update(now time.Time) bool {
	if !t.running {
		return false
	}
	elapsed := now.Sub(t.startAt)
	if t.duration > 0 && elapsed < t.duration {
		if elapsed <= 0 {
			maps.Copy(t.bag, t.start)
			return true
		}
		for k, f := range t.fields {
			v, _ := f.Set(float32(elapsed.Seconds()))
			t.bag[k] = float64(v)
		}
		return true
	}
	maps.Copy(t.bag, t.end)
	t.running = false
	if t.onComplete != nil {
		t.onComplete()
	}
	return false
}

// Group updates a set of tweens together.
type Group struct {
	tweens []*Tween
}

// Add registers t with the group.
func (g *Group) Add(t *Tween) { g.tweens = append(g.tweens, t) }

// Len returns the number of tweens that have not been pruned yet.
func (g *Group) Len() int { return len(g.tweens) }

// Update advances every tween and prunes the ones that finished or were
// stopped. Tweens added by completion callbacks start on the next Update.
func (g *Group) Update(now time.Time) {
	current := g.tweens
	g.tweens = nil
	var keep []*Tween
	for _, t := range current {
		if t.Update(now) {
			keep = append(keep, t)
		}
	}
	g.tweens = append(keep, g.tweens...)
}

// Clear stops and forgets every tween.
func (g *Group) Clear() {
	for _, t := range g.tweens {
		t.Stop()
	}
	g.tweens = nil
}
