package tween

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return epoch.Add(time.Duration(n) * time.Millisecond) }

// near tolerates the float32 precision of gween.
func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestEasingEndpoints(t *testing.T) {
	for _, name := range EasingNames() {
		e, ok := EasingByName(name)
		if !ok {
			t.Fatalf("EasingByName(%q) not found", name)
		}
		if Ease(e, 0) != 0 || Ease(e, 1) != 1 {
			t.Errorf("%s: Ease(0)=%v Ease(1)=%v, want 0 and 1", name, Ease(e, 0), Ease(e, 1))
		}
	}
	if _, ok := EasingByName("wobble"); ok {
		t.Error("unknown easing resolved")
	}
	if e, ok := EasingByName(" Smoothstep "); !ok || !near(Ease(e, 0.5), 0.5) {
		t.Error("EasingByName should trim and ignore case")
	}
}

func TestEase(t *testing.T) {
	tests := []struct {
		name string
		e    Easing
		p    float64
		want float64
	}{
		{"linear", Linear, 0.25, 0.25},
		{"quad in", QuadIn, 0.5, 0.25},
		{"quad out", QuadOut, 0.5, 0.75},
		{"cubic in-out first half", CubicInOut, 0.25, 0.0625},
		{"cubic in-out midpoint", CubicInOut, 0.5, 0.5},
		{"smoothstep", Smoothstep, 0.25, 0.15625},
		{"nil is linear", nil, 0.4, 0.4},
		{"clamped below", QuadIn, -1, 0},
		{"clamped above", QuadOut, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ease(tt.e, tt.p); !near(got, tt.want) {
				t.Errorf("Ease(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestTweenUpdate(t *testing.T) {
	bag := Props{"alpha": 0}
	done := 0
	tw := New(bag, Props{"alpha": 1, "radius": 5}, 100*time.Millisecond, Linear, ms(0)).
		OnComplete(func() { done++ })

	if bag["radius"] != 5 {
		t.Errorf("missing field should start at its target, got %v", bag["radius"])
	}
	if !tw.Update(ms(25)) || !near(bag["alpha"], 0.25) {
		t.Errorf("alpha at 25ms = %v, want 0.25", bag["alpha"])
	}
	if tw.Update(ms(150)) {
		t.Error("Update past the end should report finished")
	}
	if bag["alpha"] != 1 || done != 1 {
		t.Errorf("alpha = %v, done = %d", bag["alpha"], done)
	}
	if tw.Update(ms(200)) || done != 1 {
		t.Error("finished tween must not complete twice")
	}
}

func TestTweenStopFreezes(t *testing.T) {
	bag := Props{"alpha": 0}
	completed := false
	tw := New(bag, Props{"alpha": 1}, 100*time.Millisecond, Linear, ms(0)).
		OnComplete(func() { completed = true })
	tw.Update(ms(40))
	tw.Stop()
	tw.Update(ms(100))
	if !near(bag["alpha"], 0.4) || completed || tw.Running() {
		t.Errorf("alpha = %v completed = %v running = %v", bag["alpha"], completed, tw.Running())
	}
}

func TestZeroDurationCompletesImmediately(t *testing.T) {
	bag := Props{"alpha": 0}
	tw := New(bag, Props{"alpha": 1}, 0, nil, ms(0))
	if tw.Update(ms(0)) || bag["alpha"] != 1 {
		t.Errorf("alpha = %v", bag["alpha"])
	}
}

func TestGroupPrunes(t *testing.T) {
	var g Group
	a := New(Props{}, Props{"v": 1}, 10*time.Millisecond, Linear, ms(0))
	b := New(Props{}, Props{"v": 1}, 50*time.Millisecond, Linear, ms(0))
	var chained *Tween
	a.OnComplete(func() {
		chained = New(Props{}, Props{"v": 1}, 10*time.Millisecond, Linear, ms(10))
		g.Add(chained)
	})
	g.Add(a)
	g.Add(b)

	g.Update(ms(10))
	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (b and the chained tween)", g.Len())
	}
	g.Update(ms(60))
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name          string
		prev, next    []string
		added, remove []string
	}{
		{"empty", nil, nil, nil, nil},
		{"all new", nil, []string{"a", "b"}, []string{"a", "b"}, nil},
		{"all gone", []string{"a", "b"}, nil, nil, []string{"a", "b"}},
		{"mixed", []string{"a", "b", "c"}, []string{"c", "d", "a"}, []string{"d"}, []string{"b"}},
		{"duplicates", []string{"a", "a"}, []string{"b", "b"}, []string{"b"}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := Diff(tt.prev, tt.next)
			if !reflect.DeepEqual(added, tt.added) || !reflect.DeepEqual(removed, tt.remove) {
				t.Errorf("Diff() = %v, %v; want %v, %v", added, removed, tt.added, tt.remove)
			}
		})
	}
}
