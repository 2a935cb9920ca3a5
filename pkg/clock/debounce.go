package clock

import "time"

// Debouncer runs fn once the scheduler has been quiet for a fixed delay
// after the last Trigger.
type Debouncer struct {
	s     *Scheduler
	delay time.Duration
	fn    func()
	timer *Timer
}

// NewDebouncer returns a debouncer calling fn delay after the last Trigger.
func NewDebouncer(s *Scheduler, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{s: s, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.timer.Stop()
	d.timer = d.s.AfterFunc(d.delay, func() {
		d.timer = nil
		d.fn()
	})
}

// Cancel drops a pending call.
func (d *Debouncer) Cancel() {
	d.timer.Stop()
	d.timer = nil
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool { return d.timer != nil }

// Throttle limits calls to fn to one per interval. The first call of a
// burst runs at once; the latest value seen during the interval runs when
// it ends.
type Throttle[T any] struct {
	s        *Scheduler
	interval time.Duration
	fn       func(T)

	last    time.Time
	called  bool
	pending bool
	value   T
	timer   *Timer
}

// NewThrottle returns a leading and trailing throttle around fn.
func NewThrottle[T any](s *Scheduler, interval time.Duration, fn func(T)) *Throttle[T] {
	return &Throttle[T]{s: s, interval: interval, fn: fn}
}

// Call invokes fn now if the interval has elapsed since the last
// invocation, otherwise records v for the trailing call.
func (th *Throttle[T]) Call(v T) {
	now := th.s.Now()
	elapsed := now.Sub(th.last)
	if !th.called || elapsed >= th.interval {
		th.timer.Stop()
		th.timer = nil
		th.pending = false
		th.invoke(v)
		return
	}
	th.value, th.pending = v, true
	if th.timer == nil {
		th.timer = th.s.AfterFunc(th.interval-elapsed, th.flush)
	}
}

// Cancel drops a pending trailing call.
func (th *Throttle[T]) Cancel() {
	th.timer.Stop()
	th.timer = nil
	th.pending = false
	var zero T
	th.value = zero
}

func (th *Throttle[T]) flush() {
	th.timer = nil
	if !th.pending {
		return
	}
	th.pending = false
	th.invoke(th.value)
}

func (th *Throttle[T]) invoke(v T) {
	th.last = th.s.Now()
	th.called = true
	th.fn(v)
}
