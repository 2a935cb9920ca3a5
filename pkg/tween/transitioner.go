package tween

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
)

// Defaults applied when a Transitioner is built.
const (
	DefaultDuration = 250 * time.Millisecond
)

// FrameSource delivers render-clock ticks. *events.Topic[events.Frame]
// satisfies it.
type FrameSource interface {
	Subscribe(fn func(events.Frame)) events.Subscription
}

// Clock reports the current frame time. *clock.Scheduler satisfies it.
type Clock interface {
	Now() time.Time
}

// Transitioner animates one property bag per id as ids enter and leave a
// target set. Configure it with the builder methods, then call Transition
// whenever the target set changes. Renderers read bags through Props, Each
// or the Render callback and must not modify them.
type Transitioner struct {
	frames FrameSource
	clock  Clock
	logger *log.Logger

	from         func(id string) Props
	to           func(id string) Props
	duration     time.Duration
	backDuration time.Duration
	easing       Easing
	backEasing   Easing
	beforeRender func()
	render       func(id string, p Props)

	current []string
	props   map[string]Props
	tweens  map[string]*Tween
	group   Group

	sub        events.Subscription
	subscribed bool
	destroyed  bool
}

// NewTransitioner returns a transitioner ticking on frames and timing its
// tweens with clk. A nil logger uses log.Default().
func NewTransitioner(frames FrameSource, clk Clock, logger *log.Logger) *Transitioner {
	if logger == nil {
		logger = log.Default()
	}
	return &Transitioner{
		frames:       frames,
		clock:        clk,
		logger:       logger,
		duration:     DefaultDuration,
		backDuration: DefaultDuration,
		easing:       Linear,
		backEasing:   Linear,
		props:        make(map[string]Props),
		tweens:       make(map[string]*Tween),
	}
}

// From sets the resting state of an id: where new bags start and where
// rollbacks return.
func (tr *Transitioner) From(fn func(id string) Props) *Transitioner {
	tr.from = fn
	return tr
}

// To sets the state an id animates toward while it is in the target set.
func (tr *Transitioner) To(fn func(id string) Props) *Transitioner {
	tr.to = fn
	return tr
}

// Duration sets the forward duration and, optionally, a different rollback
// duration.
func (tr *Transitioner) Duration(forward time.Duration, back ...time.Duration) *Transitioner {
	tr.duration = forward
	tr.backDuration = forward
	if len(back) > 0 {
		tr.backDuration = back[0]
	}
	return tr
}

// Easing sets the forward easing and, optionally, a different rollback
// easing.
func (tr *Transitioner) Easing(forward Easing, back ...Easing) *Transitioner {
	tr.easing = forward
	tr.backEasing = forward
	if len(back) > 0 && back[0] != nil {
		tr.backEasing = back[0]
	}
	return tr
}

// BeforeRender sets a callback run once per frame before the bags are
// rendered.
func (tr *Transitioner) BeforeRender(fn func()) *Transitioner {
	tr.beforeRender = fn
	return tr
}

// Render sets the per-bag render callback.
func (tr *Transitioner) Render(fn func(id string, p Props)) *Transitioner {
	tr.render = fn
	return tr
}

// Transition replaces the target set with ids. Ids that joined start a
// forward tween, ids that left start a rollback.
func (tr *Transitioner) Transition(ids []string) error {
	if tr.destroyed {
		return errors.Destroyed("transitioner", "Transition")
	}
	if tr.from == nil || tr.to == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "transitioner needs From and To before Transition")
	}
	added, removed := Diff(tr.current, ids)
	tr.current = slices.Clone(ids)

	now := tr.clock.Now()
	for _, id := range added {
		tr.forward(id, now)
	}
	for _, id := range removed {
		tr.rollback(id, now)
	}
	if len(tr.props) > 0 {
		tr.subscribe()
	}
	return nil
}

func (tr *Transitioner) forward(id string, now time.Time) {
	bag, ok := tr.props[id]
	if prev := tr.tweens[id]; ok && prev != nil {
		// Resume from wherever the rollback got to.
		prev.Stop()
	} else {
		bag = tr.from(id).Clone()
		if bag == nil {
			bag = Props{}
		}
		tr.props[id] = bag
	}
	t := New(bag, tr.to(id), tr.duration, tr.easing, now)
	tr.tweens[id] = t
	tr.group.Add(t)
}

func (tr *Transitioner) rollback(id string, now time.Time) {
	bag, ok := tr.props[id]
	if !ok {
		return
	}
	if prev := tr.tweens[id]; prev != nil {
		prev.Stop()
	}
	var t *Tween
	t = New(bag, tr.from(id), tr.backDuration, tr.backEasing, now).OnComplete(func() {
		if tr.tweens[id] != t {
			tr.logger.Debug("rollback superseded", "id", id)
			return
		}
		tr.drop(id)
	})
	tr.tweens[id] = t
	tr.group.Add(t)
}

func (tr *Transitioner) drop(id string) {
	delete(tr.props, id)
	delete(tr.tweens, id)
	if len(tr.props) == 0 {
		tr.unsubscribe()
	}
}

func (tr *Transitioner) subscribe() {
	if tr.subscribed {
		return
	}
	tr.sub = tr.frames.Subscribe(tr.onFrame)
	tr.subscribed = true
	tr.logger.Debug("transitioner subscribed to frames")
}

func (tr *Transitioner) unsubscribe() {
	if !tr.subscribed {
		return
	}
	tr.sub.Unsubscribe()
	tr.subscribed = false
	tr.logger.Debug("transitioner unsubscribed from frames")
}

func (tr *Transitioner) onFrame(f events.Frame) {
	tr.group.Update(f.Time)
	if !tr.subscribed {
		return
	}
	if tr.beforeRender != nil {
		tr.beforeRender()
	}
	if tr.render == nil {
		return
	}
	tr.Each(tr.render)
}

// Props returns the bag of id. The bag belongs to the transitioner.
func (tr *Transitioner) Props(id string) (Props, bool) {
	p, ok := tr.props[id]
	return p, ok
}

// Each calls fn for every bag in id order.
func (tr *Transitioner) Each(fn func(id string, p Props)) {
	for _, id := range tr.Active() {
		fn(id, tr.props[id])
	}
}

// Active returns the sorted ids that currently own a bag, including ids
// that are rolling back.
func (tr *Transitioner) Active() []string {
	ids := make([]string, 0, len(tr.props))
	for id := range tr.props {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Targets returns the current target set.
func (tr *Transitioner) Targets() []string { return slices.Clone(tr.current) }

// Running reports whether any bag is still moving.
func (tr *Transitioner) Running() bool {
	for _, t := range tr.tweens {
		if t.Running() {
			return true
		}
	}
	return false
}

// Subscribed reports whether the transitioner is listening to frames.
func (tr *Transitioner) Subscribed() bool { return tr.subscribed }

// Destroy detaches from the frame source and drops every bag. Further
// Transition calls fail with DESTROYED.
func (tr *Transitioner) Destroy() {
	if tr.destroyed {
		return
	}
	tr.unsubscribe()
	tr.destroyed = true
	tr.group.Clear()
	clear(tr.props)
	clear(tr.tweens)
	tr.current = nil
}
