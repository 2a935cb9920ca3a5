package spatial

import (
	"fmt"
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/graphscope/pkg/geom"
)

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestNearest(t *testing.T) {
	x := NewIndex("nodes")
	x.Load([]Entry{
		PointEntry("a", geom.Pt(0, 0)),
		PointEntry("b", geom.Pt(10, 0)),
		PointEntry("c", geom.Pt(0, 10)),
	})

	tests := []struct {
		p    geom.Point
		k    int
		want []string
	}{
		{geom.Pt(1, 0), 1, []string{"a"}},
		{geom.Pt(9, 0), 1, []string{"b"}},
		{geom.Pt(0, 8), 2, []string{"c", "a"}},
		{geom.Pt(100, 100), 5, nil},
	}
	for _, tt := range tests {
		got := ids(x.Nearest(tt.p, tt.k))
		if tt.want == nil {
			if len(got) != 3 {
				t.Errorf("Nearest(%v, %d) returned %d entries, want all 3", tt.p, tt.k, len(got))
			}
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Nearest(%v, %d) = %v, want %v", tt.p, tt.k, got, tt.want)
		}
	}
}

func TestSearchInclusiveBorders(t *testing.T) {
	x := NewIndex("nodes")
	x.Load([]Entry{
		PointEntry("a", geom.Pt(0, 0)),
		PointEntry("b", geom.Pt(60, 60)),
		PointEntry("c", geom.Pt(61, 0)),
	})
	got := ids(x.Search(geom.Box{MinX: 0, MinY: 0, MaxX: 60, MaxY: 60}))
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Search() = %v, want %v", got, want)
	}
}

func TestSearchBoxes(t *testing.T) {
	x := NewIndex("links")
	x.Insert(Entry{ID: "ab", Box: geom.NormalBox(geom.Pt(0, 0), geom.Pt(100, 0))})
	x.Insert(Entry{ID: "cd", Box: geom.NormalBox(geom.Pt(50, 50), geom.Pt(50, 150))})

	got := ids(x.Search(geom.Around(geom.Pt(50, 0), 5)))
	if want := []string{"ab"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Search() = %v, want %v", got, want)
	}
}

func TestUnbuiltIndex(t *testing.T) {
	var nilIndex *Index
	for name, x := range map[string]*Index{"nil": nilIndex, "new": NewIndex("nodes")} {
		t.Run(name, func(t *testing.T) {
			if x.Built() || x.Len() != 0 || x.Has("a") || x.IDs() != nil {
				t.Error("unbuilt index should be empty")
			}
			if x.Search(geom.Box{MaxX: 10, MaxY: 10}) != nil {
				t.Error("Search on unbuilt index should be empty")
			}
			if x.Nearest(geom.Pt(0, 0), 1) != nil {
				t.Error("Nearest on unbuilt index should be empty")
			}
			if x.Remove("a") {
				t.Error("Remove on unbuilt index should report false")
			}
			x.Clear()
		})
	}
}

func TestRemoveByIdentity(t *testing.T) {
	x := NewIndex("nodes")
	x.Load([]Entry{
		PointEntry("a", geom.Pt(5, 5)),
		PointEntry("b", geom.Pt(5, 5)),
		PointEntry("c", geom.Pt(5, 5)),
	})
	if !x.Remove("b") {
		t.Fatal("Remove(b) = false")
	}
	if x.Remove("b") {
		t.Error("second Remove(b) = true")
	}
	got := ids(x.Search(geom.Around(geom.Pt(5, 5), 1)))
	if want := []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after removing b: %v, want %v", got, want)
	}
}

func TestInsertReplaces(t *testing.T) {
	x := NewIndex("nodes")
	x.Insert(PointEntry("a", geom.Pt(0, 0)))
	x.Insert(PointEntry("a", geom.Pt(100, 100)))
	if x.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", x.Len())
	}
	if len(x.Search(geom.Around(geom.Pt(0, 0), 1))) != 0 {
		t.Error("old position still indexed")
	}
	e, ok := x.Get("a")
	if !ok || e.Center() != geom.Pt(100, 100) {
		t.Errorf("Get(a) = %v, %v", e, ok)
	}
}

func TestIndexConsistencyUnderChurn(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := NewIndex("nodes")
	live := map[string]geom.Point{}

	var seed []Entry
	for i := range 200 {
		id := fmt.Sprintf("n%d", i)
		p := geom.Pt(rng.Float64()*1000, rng.Float64()*1000)
		live[id] = p
		seed = append(seed, PointEntry(id, p))
	}
	x.Load(seed)

	for range 2000 {
		id := fmt.Sprintf("n%d", rng.Intn(300))
		switch rng.Intn(3) {
		case 0:
			p := geom.Pt(rng.Float64()*1000, rng.Float64()*1000)
			live[id] = p
			x.Insert(PointEntry(id, p))
		case 1:
			delete(live, id)
			x.Remove(id)
		case 2:
			if _, ok := live[id]; ok {
				p := geom.Pt(rng.Float64()*1000, rng.Float64()*1000)
				live[id] = p
				x.Remove(id)
				x.Insert(PointEntry(id, p))
			}
		}
	}

	want := make([]string, 0, len(live))
	for id := range live {
		want = append(want, id)
	}
	slices.Sort(want)
	if got := x.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("side table ids diverged: %d vs %d", len(got), len(want))
	}
	if got := ids(x.Search(geom.Box{MinX: -1, MinY: -1, MaxX: 1001, MaxY: 1001})); !reflect.DeepEqual(got, want) {
		t.Errorf("tree content diverged from live set: %d vs %d", len(got), len(want))
	}
	for id, p := range live {
		near := x.Nearest(p, 1)
		if len(near) != 1 || geom.Dist(near[0].Center(), p) != 0 {
			t.Errorf("Nearest(%v) for %s = %v", p, id, near)
			break
		}
	}
}
