// Package clock is the cooperative scheduler that drives the frame loop.
//
// Nothing here starts goroutines or reads the wall clock. The host calls
// [Scheduler.Advance] with the current time (from a terminal tick, an HTTP
// request or a test) and the scheduler runs due timers first, then every
// frame callback requested before that call. Debounced settles and
// throttled pointer samples are built on top of its timers.
package clock

import (
	"container/heap"
	"time"
)

// Scheduler owns a logical "now", a timer queue and the pending frame
// requests. It is not safe for concurrent use.
type Scheduler struct {
	now     time.Time
	seq     uint64
	timers  timerQueue
	frames  []*frame
	running []*frame
	nextID  FrameID
}

// New returns a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the time of the last Advance.
func (s *Scheduler) Now() time.Time { return s.now }

// Timer is a one-shot callback registered with AfterFunc.
type Timer struct {
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// Stop prevents the timer from firing. It reports whether the call stopped
// a pending timer.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc calls fn once the clock has advanced d past the current time.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{at: s.now.Add(d), seq: s.seq, fn: fn}
	heap.Push(&s.timers, t)
	return t
}

// FrameID identifies a frame request for CancelFrame.
type FrameID uint64

type frame struct {
	id FrameID
	fn func(time.Time)
}

// RequestFrame schedules fn for the next Advance.
func (s *Scheduler) RequestFrame(fn func(now time.Time)) FrameID {
	s.nextID++
	s.frames = append(s.frames, &frame{id: s.nextID, fn: fn})
	return s.nextID
}

// CancelFrame drops a pending frame request, including one in the batch
// currently being run. Unknown ids are ignored.
func (s *Scheduler) CancelFrame(id FrameID) {
	for i, f := range s.frames {
		if f.id == id {
			s.frames = append(s.frames[:i:i], s.frames[i+1:]...)
			return
		}
	}
	for _, f := range s.running {
		if f.id == id {
			f.fn = nil
			return
		}
	}
}

// Advance moves the clock to now (never backwards), fires every due timer
// in deadline order, then runs the frame callbacks that were pending when
// Advance was called. Frames requested by those callbacks run on the next
// Advance.
func (s *Scheduler) Advance(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}
	for s.timers.Len() > 0 {
		t := s.timers[0]
		if t.at.After(s.now) {
			break
		}
		heap.Pop(&s.timers)
		if t.stopped {
			continue
		}
		t.fired = true
		t.fn()
	}

	s.running, s.frames = s.frames, nil
	for _, f := range s.running {
		if fn := f.fn; fn != nil {
			f.fn = nil
			fn(s.now)
		}
	}
	s.running = nil
}

// Pending returns the number of live timers and frame requests.
func (s *Scheduler) Pending() (timers, frames int) {
	for _, t := range s.timers {
		if !t.stopped {
			timers++
		}
	}
	return timers, len(s.frames)
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}
func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x any)   { *q = append(*q, x.(*Timer)) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
