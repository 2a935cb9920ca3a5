// Package spatial maintains the two geometry indexes of a scene: one over
// node positions and one over link boxes.
//
// [Index] is an R-tree (github.com/dhconnelly/rtreego) plus an id side
// table. Entries are removed through their side-table handle, so two
// entries at identical coordinates never shadow each other. [Tracker]
// keeps a node index and a link index in step with scene events.
//
// An index that has not been built answers every query with an empty
// result. Callers treat "no index yet" as a normal transient state.
package spatial

import (
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/observability"
)

// R-tree branching factors.
const (
	minChildren = 25
	maxChildren = 50
)

// degenerate pads zero-length box sides; rtreego rejects empty extents.
const degenerate = 1e-9

// Entry is one indexed element.
type Entry struct {
	ID  string   `json:"id"`
	Box geom.Box `json:"box"`
}

// Center returns the centre of the entry box.
func (e Entry) Center() geom.Point { return e.Box.Center() }

// PointEntry returns the zero-area entry of a node at p.
func PointEntry(id string, p geom.Point) Entry {
	return Entry{ID: id, Box: geom.PointBox(p)}
}

type item struct {
	Entry
	rect rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

func newItem(e Entry) *item {
	return &item{Entry: e, rect: toRect(e.Box)}
}

func toRect(b geom.Box) rtreego.Rect {
	w := math.Max(b.MaxX-b.MinX, degenerate)
	h := math.Max(b.MaxY-b.MinY, degenerate)
	r, err := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	if err != nil {
		// Only reachable with NaN coordinates.
		return rtreego.Point{0, 0}.ToRect(degenerate)
	}
	return r
}

// queryRect grows b slightly so entries touching its border count as
// intersecting; rtreego treats touching rectangles as disjoint.
func queryRect(b geom.Box) rtreego.Rect {
	return toRect(geom.Box{
		MinX: b.MinX - degenerate,
		MinY: b.MinY - degenerate,
		MaxX: b.MaxX + degenerate,
		MaxY: b.MaxY + degenerate,
	})
}

func sameItem(a, b rtreego.Spatial) bool { return a == b }

// Index is an R-tree over entries keyed by id. The zero value and the nil
// pointer are unbuilt indexes. It is not safe for concurrent use.
type Index struct {
	kind  string
	tree  *rtreego.Rtree
	items map[string]*item
}

// NewIndex returns an unbuilt index. kind ("nodes", "links") labels the
// index in logs and observability hooks and may be empty.
func NewIndex(kind string) *Index { return &Index{kind: kind} }

// Kind returns the label given to NewIndex.
func (x *Index) Kind() string {
	if x == nil {
		return ""
	}
	return x.kind
}

// Load replaces the content of the index with entries in one bulk load.
// Later duplicates of an id win.
func (x *Index) Load(entries []Entry) {
	x.items = make(map[string]*item, len(entries))
	for _, e := range entries {
		x.items[e.ID] = newItem(e)
	}
	objs := make([]rtreego.Spatial, 0, len(x.items))
	for _, it := range x.items {
		objs = append(objs, it)
	}
	x.tree = rtreego.NewTree(2, minChildren, maxChildren, objs...)
}

// Built reports whether the index has been loaded.
func (x *Index) Built() bool { return x != nil && x.tree != nil }

// Insert adds e, replacing any entry with the same id. Inserting into an
// unbuilt index builds an empty one first.
func (x *Index) Insert(e Entry) {
	if x.tree == nil {
		x.Load(nil)
	}
	x.Remove(e.ID)
	it := newItem(e)
	x.items[e.ID] = it
	x.tree.Insert(it)
}

// Remove deletes the entry for id and reports whether one existed.
// Removing an unknown id is a no-op.
func (x *Index) Remove(id string) bool {
	if !x.Built() {
		return false
	}
	it, ok := x.items[id]
	if !ok {
		return false
	}
	delete(x.items, id)
	x.tree.DeleteWithComparator(it, sameItem)
	return true
}

// Get returns the entry for id.
func (x *Index) Get(id string) (Entry, bool) {
	if !x.Built() {
		return Entry{}, false
	}
	it, ok := x.items[id]
	if !ok {
		return Entry{}, false
	}
	return it.Entry, true
}

// Has reports whether id is indexed.
func (x *Index) Has(id string) bool {
	_, ok := x.Get(id)
	return ok
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if !x.Built() {
		return 0
	}
	return len(x.items)
}

// IDs returns the indexed ids in sorted order.
func (x *Index) IDs() []string {
	if !x.Built() {
		return nil
	}
	ids := make([]string, 0, len(x.items))
	for id := range x.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Search returns every entry intersecting b, sorted by id.
func (x *Index) Search(b geom.Box) []Entry {
	if !x.Built() {
		return nil
	}
	found := x.tree.SearchIntersect(queryRect(b))
	out := make([]Entry, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*item).Entry)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	observability.Index().OnIndexQuery(x.kind, "search", len(out))
	return out
}

// Nearest returns up to k entries closest to p, nearest first. Distance is
// measured to the entry box, which for node entries is the node position.
func (x *Index) Nearest(p geom.Point, k int) []Entry {
	if !x.Built() || k <= 0 || len(x.items) == 0 {
		return nil
	}
	found := x.tree.NearestNeighbors(k, rtreego.Point{p.X, p.Y})
	out := make([]Entry, 0, len(found))
	for _, s := range found {
		if s == nil {
			continue
		}
		out = append(out, s.(*item).Entry)
	}
	observability.Index().OnIndexQuery(x.kind, "nearest", len(out))
	return out
}

// Clear empties the index and marks it unbuilt.
func (x *Index) Clear() {
	if x == nil {
		return
	}
	x.tree = nil
	x.items = nil
}
