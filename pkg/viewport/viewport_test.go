package viewport

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/graphscope/pkg/clock"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
)

var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return epoch.Add(time.Duration(n) * time.Millisecond) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func nearPt(a, b geom.Point) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

type fakeLoop struct {
	suspended int
	resumed   int
	rendered  int
}

func (l *fakeLoop) Suspend()              { l.suspended++ }
func (l *fakeLoop) Resume()               { l.resumed++ }
func (l *fakeLoop) RenderFrame(time.Time) { l.rendered++ }

type positions map[string]geom.Point

func (p positions) NodePosition(id string) (geom.Point, bool) {
	pt, ok := p[id]
	return pt, ok
}

type rig struct {
	bus    *events.Bus
	sched  *clock.Scheduler
	loop   *fakeLoop
	c      *Controller
	resets []events.View
}

func newRig(t *testing.T, size geom.Size, pos Positions) *rig {
	t.Helper()
	r := &rig{bus: events.NewBus(), sched: clock.New(epoch), loop: &fakeLoop{}}
	c, err := New(r.bus, r.sched, r.loop, pos, Options{})
	if err != nil {
		t.Fatal(err)
	}
	r.c = c
	r.bus.ViewReset.Subscribe(func(v events.View) { r.resets = append(r.resets, v) })
	if !size.Empty() {
		r.bus.ViewSize.Publish(size)
		r.resets = nil
	}
	return r
}

func ptr[T any](v T) *T { return &v }

func TestRoundTrip(t *testing.T) {
	r := newRig(t, geom.Size{W: 800, H: 600}, nil)
	transforms := []Transform{
		{0, 0, 1},
		{120, -40, 2.5},
		{-3000, 77.7, 0.013},
		{400, 300, 99},
	}
	points := []geom.Point{geom.Pt(0, 0), geom.Pt(13.5, -8), geom.Pt(799, 599)}
	for _, tf := range transforms {
		if err := r.c.Transform(ptr(tf.Translate()), ptr(tf.Scale), false); err != nil {
			t.Fatal(err)
		}
		for _, p := range points {
			if got := r.c.ToScreen(r.c.ToGraph(p)); !nearPt(got, p) {
				t.Errorf("transform %+v: round trip of %v = %v", tf, p, got)
			}
		}
	}
}

func TestVisibleBBox(t *testing.T) {
	r := newRig(t, geom.Size{W: 400, H: 200}, nil)
	r.c.Transform(ptr(geom.Pt(100, 50)), ptr(2.0), false)
	want := geom.Rect{X: -50, Y: -25, W: 200, H: 100}
	if got := r.c.VisibleBBox(); got != want {
		t.Errorf("VisibleBBox() = %+v, want %+v", got, want)
	}
	if r.c.TruncatedScale() != 1 {
		t.Errorf("TruncatedScale() = %v, want 1", r.c.TruncatedScale())
	}
}

func TestScaleClamp(t *testing.T) {
	r := newRig(t, geom.Size{W: 100, H: 100}, nil)
	r.c.Transform(nil, ptr(1e6), false)
	if r.c.Scale() != DefaultMaxScale {
		t.Errorf("Scale() = %v, want %v", r.c.Scale(), DefaultMaxScale)
	}
	r.c.ZoomAt(geom.Pt(0, 0), 1e-9)
	if r.c.Scale() != DefaultMinScale {
		t.Errorf("Scale() = %v, want %v", r.c.Scale(), DefaultMinScale)
	}
}

func TestTransformNilIsNoop(t *testing.T) {
	r := newRig(t, geom.Size{W: 100, H: 100}, nil)
	before := r.c.State()
	if err := r.c.Transform(nil, nil, true); err != nil {
		t.Fatal(err)
	}
	if r.c.State() != before || r.c.SettlePending() || r.c.Animating() {
		t.Error("Transform(nil, nil) changed state")
	}
}

func TestFitBounds(t *testing.T) {
	tests := []struct {
		name    string
		size    geom.Size
		rect    geom.Rect
		maxZoom float64
		want    float64
	}{
		{"width constrained", geom.Size{W: 600, H: 600}, geom.Rect{W: 200, H: 100}, 3, 2},
		{"capped by max zoom", geom.Size{W: 600, H: 600}, geom.Rect{W: 200, H: 100}, 1.5, 1.5},
		{"height dominant", geom.Size{W: 600, H: 600}, geom.Rect{W: 100, H: 300}, 3, 400.0 / 300},
		{"secondary axis overflows", geom.Size{W: 600, H: 400}, geom.Rect{W: 200, H: 190}, 3, 200.0 / 190},
		{"single point", geom.Size{W: 600, H: 600}, geom.Rect{X: 5, Y: 5}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, tt.size, nil)
			if err := r.c.FitBounds(tt.rect, 100, tt.maxZoom, false); err != nil {
				t.Fatal(err)
			}
			if !near(r.c.Scale(), tt.want) {
				t.Errorf("scale = %v, want %v", r.c.Scale(), tt.want)
			}
			center := geom.Pt(tt.size.W/2, tt.size.H/2)
			if got := r.c.ToScreen(tt.rect.Center()); !nearPt(got, center) {
				t.Errorf("rect centre maps to %v, want %v", got, center)
			}
		})
	}
}

func TestFitBoundsNoRoom(t *testing.T) {
	r := newRig(t, geom.Size{W: 150, H: 150}, nil)
	err := r.c.FitBounds(geom.Rect{W: 10, H: 10}, 100, 3, false)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("FitBounds() = %v, want INVALID_INPUT", err)
	}
}

func TestAnimatedTransform(t *testing.T) {
	r := newRig(t, geom.Size{W: 100, H: 100}, nil)
	if err := r.c.Transform(ptr(geom.Pt(100, 0)), ptr(2.0), true); err != nil {
		t.Fatal(err)
	}
	if r.loop.suspended != 1 || !r.c.Animating() {
		t.Fatal("animated transform should suspend the loop")
	}

	r.sched.Advance(ms(500))
	mid := r.c.State()
	if !near(mid.X, 50) || !near(mid.Scale, 1.5) {
		t.Errorf("halfway state = %+v, want x=50 scale=1.5", mid)
	}
	r.sched.Advance(ms(1000))
	if r.c.Animating() || r.loop.resumed != 1 {
		t.Fatal("animation should end and resume the loop")
	}
	if got := r.c.State(); got != (Transform{X: 100, Y: 0, Scale: 2}) {
		t.Errorf("final state = %+v", got)
	}
	if r.loop.rendered != 2 {
		t.Errorf("rendered %d frames, want 2", r.loop.rendered)
	}
	if len(r.resets) != 0 {
		t.Fatal("view:reset before the settle delay")
	}
	r.sched.Advance(ms(1040))
	if len(r.resets) != 1 || r.resets[0].Scale != 2 {
		t.Errorf("resets = %+v, want one at scale 2", r.resets)
	}
}

func TestAnimatedTransformSuperseded(t *testing.T) {
	r := newRig(t, geom.Size{W: 100, H: 100}, nil)
	r.c.Transform(ptr(geom.Pt(100, 0)), nil, true)
	r.sched.Advance(ms(500))

	r.c.Transform(ptr(geom.Pt(0, 0)), nil, true)
	if r.loop.suspended != 1 {
		t.Errorf("loop suspended %d times, want 1", r.loop.suspended)
	}
	r.sched.Advance(ms(500))
	if got := r.c.State().X; !near(got, 50) {
		t.Errorf("superseding move jumped: x = %v, want 50", got)
	}
	r.sched.Advance(ms(1500))
	if r.c.State().X != 0 || r.loop.resumed != 1 {
		t.Errorf("x = %v resumed = %d", r.c.State().X, r.loop.resumed)
	}
}

func TestGestureSettle(t *testing.T) {
	r := newRig(t, geom.Size{W: 200, H: 200}, nil)
	r.c.BeginGesture()
	r.c.Pan(10, 20)
	anchor := geom.Pt(50, 50)
	before := r.c.ToGraph(anchor)
	r.c.ZoomAt(anchor, 2)
	if after := r.c.ToGraph(anchor); !nearPt(before, after) {
		t.Errorf("ZoomAt moved the anchor: %v -> %v", before, after)
	}
	r.c.EndGesture()

	r.sched.Advance(ms(30))
	r.c.BeginGesture()
	r.c.Pan(1, 1)
	r.c.EndGesture()
	r.sched.Advance(ms(60))
	if len(r.resets) != 0 {
		t.Fatal("settled while the gesture continued")
	}
	r.sched.Advance(ms(70))
	if len(r.resets) != 1 {
		t.Errorf("resets = %d, want 1", len(r.resets))
	}
	if err := r.c.ZoomAt(anchor, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ZoomAt(factor 0) = %v", err)
	}
}

func TestResizePublishesImmediately(t *testing.T) {
	r := newRig(t, geom.Size{}, nil)
	r.bus.ViewSize.Publish(geom.Size{W: 640, H: 480})
	if len(r.resets) != 1 {
		t.Fatalf("resets = %d, want 1", len(r.resets))
	}
	if r.c.Size() != (geom.Size{W: 640, H: 480}) {
		t.Errorf("Size() = %v", r.c.Size())
	}
}

func TestCoreInitCentres(t *testing.T) {
	r := newRig(t, geom.Size{W: 640, H: 480}, nil)
	r.bus.CoreInit.Publish(events.Signal{})
	if got := r.c.State(); got.X != 320 || got.Y != 240 {
		t.Errorf("state after core:init = %+v", got)
	}
}

func TestZoomNodes(t *testing.T) {
	pos := positions{"a": geom.Pt(0, 0), "b": geom.Pt(184, 84)}
	r := newRig(t, geom.Size{W: 600, H: 600}, pos)
	if err := r.c.ZoomNodes([]string{"a", "b", "ghost"}); err != nil {
		t.Fatal(err)
	}
	r.sched.Advance(ms(1000))
	// Extent 184x84 padded by 8 is 200x100, fitted into 400x400.
	if !near(r.c.Scale(), 2) {
		t.Errorf("scale = %v, want 2", r.c.Scale())
	}
	if err := r.c.ZoomNodes([]string{"ghost"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ZoomNodes(unknown) = %v, want NOT_FOUND", err)
	}
}

func TestInvalidOptions(t *testing.T) {
	bus := events.NewBus()
	_, err := New(bus, clock.New(epoch), nil, nil, Options{MinScale: 5, MaxScale: 1})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New() = %v, want INVALID_CONFIG", err)
	}
}

func TestDestroy(t *testing.T) {
	r := newRig(t, geom.Size{W: 100, H: 100}, nil)
	r.c.Transform(ptr(geom.Pt(10, 10)), nil, true)
	r.c.Destroy()
	if r.loop.resumed != 1 {
		t.Error("Destroy should resume a loop suspended by an animation")
	}
	if err := r.c.Pan(1, 1); !errors.Is(err, errors.ErrCodeDestroyed) {
		t.Errorf("Pan after Destroy = %v", err)
	}
	if err := r.c.FitBounds(geom.Rect{W: 1, H: 1}, 0, 1, false); !errors.Is(err, errors.ErrCodeDestroyed) {
		t.Errorf("FitBounds after Destroy = %v", err)
	}
	r.bus.ViewSize.Publish(geom.Size{W: 1, H: 1})
	if len(r.resets) != 0 {
		t.Error("destroyed controller still handles view:size")
	}
}
