package server

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/scene"
)

func emptyScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc, err := scene.New(scene.Options{Container: scene.FixedSize{W: 100, H: 100}, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	return sc
}

// fakeClock is a settable Store clock.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStoreLifecycle(t *testing.T) {
	var counts []int
	st := NewStore(0, 2)
	st.onChange = func(n int) { counts = append(counts, n) }

	a, err := st.Add(emptyScene(t))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := st.Add(emptyScene(t)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	extra := emptyScene(t)
	defer extra.Destroy()
	if _, err := st.Add(extra); !errors.Is(err, ErrStoreFull) {
		t.Fatalf("third Add = %v, want ErrStoreFull", err)
	}

	got, ok := st.Get(a.ID)
	if !ok || got != a {
		t.Fatal("Get should return the added session")
	}
	if !st.Delete(a.ID) || st.Delete(a.ID) {
		t.Error("Delete should report existence exactly once")
	}
	live, err := a.Do(func(*scene.Scene) error { return nil })
	if live || err != nil {
		t.Errorf("Do on a deleted session = %v, %v; want false, nil", live, err)
	}

	st.Close()
	if st.Len() != 0 {
		t.Errorf("Len after Close = %d", st.Len())
	}
	want := []int{1, 2, 1, 0}
	if len(counts) != len(want) {
		t.Fatalf("onChange calls = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("onChange calls = %v, want %v", counts, want)
		}
	}
}

func TestStoreExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := NewStore(time.Minute, 0)
	st.now = clk.now

	idle, _ := st.Add(emptyScene(t))
	busy, _ := st.Add(emptyScene(t))
	defer st.Close()

	clk.advance(45 * time.Second)
	if _, ok := st.Get(busy.ID); !ok {
		t.Fatal("busy session expired early")
	}
	clk.advance(30 * time.Second)

	if n := st.Cleanup(); n != 1 {
		t.Errorf("Cleanup removed %d sessions, want 1", n)
	}
	if _, ok := st.Get(idle.ID); ok {
		t.Error("idle session should be gone")
	}
	if _, ok := st.Get(busy.ID); !ok {
		t.Error("busy session should survive, it was used 30s ago")
	}

	clk.advance(2 * time.Minute)
	if _, ok := st.Get(busy.ID); ok {
		t.Error("Get should expire a stale session")
	}
	if st.Len() != 0 {
		t.Errorf("Len = %d, want 0", st.Len())
	}
}
