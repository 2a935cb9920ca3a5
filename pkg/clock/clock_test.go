package clock

import (
	"reflect"
	"testing"
	"time"
)

var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

func TestAfterFuncOrder(t *testing.T) {
	s := New(epoch)
	var got []string
	s.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(at(5))
	if len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}
	s.Advance(at(30))
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTimerStop(t *testing.T) {
	s := New(epoch)
	fired := false
	tm := s.AfterFunc(time.Millisecond, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("Stop() on pending timer = false")
	}
	if tm.Stop() {
		t.Error("second Stop() = true")
	}
	s.Advance(at(10))
	if fired {
		t.Error("stopped timer fired")
	}
	var nilTimer *Timer
	nilTimer.Stop()
}

func TestAdvanceNeverGoesBack(t *testing.T) {
	s := New(at(100))
	s.Advance(at(50))
	if !s.Now().Equal(at(100)) {
		t.Errorf("Now() = %v, want %v", s.Now(), at(100))
	}
}

func TestFramesRunAfterTimers(t *testing.T) {
	s := New(epoch)
	var got []string
	s.RequestFrame(func(time.Time) { got = append(got, "frame") })
	s.AfterFunc(0, func() { got = append(got, "timer") })
	s.Advance(at(16))
	if want := []string{"timer", "frame"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFrameRequestedInsideFrameRunsNextAdvance(t *testing.T) {
	s := New(epoch)
	n := 0
	var loop func(time.Time)
	loop = func(time.Time) {
		n++
		s.RequestFrame(loop)
	}
	s.RequestFrame(loop)

	s.Advance(at(16))
	s.Advance(at(32))
	if n != 2 {
		t.Errorf("frames run = %d, want 2", n)
	}
	if _, frames := s.Pending(); frames != 1 {
		t.Errorf("pending frames = %d, want 1", frames)
	}
}

func TestCancelFrame(t *testing.T) {
	s := New(epoch)
	ran := false
	id := s.RequestFrame(func(time.Time) { ran = true })
	s.CancelFrame(id)
	s.CancelFrame(999)
	s.Advance(at(16))
	if ran {
		t.Error("cancelled frame ran")
	}
}

func TestCancelFrameWithinBatch(t *testing.T) {
	s := New(epoch)
	ran := false
	var second FrameID
	s.RequestFrame(func(time.Time) { s.CancelFrame(second) })
	second = s.RequestFrame(func(time.Time) { ran = true })
	s.Advance(at(16))
	if ran {
		t.Error("frame cancelled by an earlier callback of the batch still ran")
	}
}

func TestDebouncer(t *testing.T) {
	s := New(epoch)
	n := 0
	d := NewDebouncer(s, 40*time.Millisecond, func() { n++ })

	d.Trigger()
	s.Advance(at(30))
	d.Trigger()
	s.Advance(at(60))
	if n != 0 {
		t.Fatalf("fired before quiet period: %d", n)
	}
	if !d.Pending() {
		t.Fatal("Pending() = false")
	}
	s.Advance(at(70))
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}

	d.Trigger()
	d.Cancel()
	s.Advance(at(200))
	if n != 1 {
		t.Errorf("cancelled debounce fired, n = %d", n)
	}
}

func TestThrottleLeadingAndTrailing(t *testing.T) {
	s := New(epoch)
	var got []int
	th := NewThrottle(s, 20*time.Millisecond, func(v int) { got = append(got, v) })

	th.Call(1) // leading
	s.Advance(at(5))
	th.Call(2)
	s.Advance(at(10))
	th.Call(3)
	if want := []int{1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	s.Advance(at(20)) // trailing with the latest value
	if want := []int{1, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	s.Advance(at(100))
	th.Call(4)
	if want := []int{1, 3, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestThrottleCancel(t *testing.T) {
	s := New(epoch)
	var got []int
	th := NewThrottle(s, 20*time.Millisecond, func(v int) { got = append(got, v) })
	th.Call(1)
	th.Call(2)
	th.Cancel()
	s.Advance(at(50))
	if want := []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
