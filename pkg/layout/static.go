package layout

import (
	"context"
	"math"
	"sort"

	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
)

// StaticName is the registry name of the static provider.
const StaticName = "static"

// spacing is the distance used when placing unpositioned nodes.
const spacing = 50.0

// Static is a layout whose positions only change through Mutable calls.
type Static struct {
	pos Positions
}

// NewStatic is the Factory for the static provider. Nodes with a seeded
// position keep it; the rest are placed on a circle around the origin in id
// order.
func NewStatic(_ context.Context, g *graph.Graph) (Layout, error) {
	return FromPositions(seed(g)), nil
}

// FromPositions wraps a position table. The table is copied.
func FromPositions(p Positions) *Static {
	return &Static{pos: p.Clone()}
}

// NodePosition implements Layout.
func (s *Static) NodePosition(id string) (geom.Point, bool) {
	p, ok := s.pos[id]
	return p, ok
}

// Step implements Layout. A static layout is always converged.
func (s *Static) Step() bool { return true }

// AddNode implements Mutable.
func (s *Static) AddNode(id string, p geom.Point) { s.pos[id] = p }

// RemoveNode implements Mutable.
func (s *Static) RemoveNode(id string) { delete(s.pos, id) }

// SetNodePosition implements Mutable. Unknown ids are ignored.
func (s *Static) SetNodePosition(id string, p geom.Point) {
	if _, ok := s.pos[id]; ok {
		s.pos[id] = p
	}
}

// Bounds implements Bounded.
func (s *Static) Bounds() (geom.Rect, bool) {
	return s.pos.Bounds()
}

// Positions returns a copy of the position table.
func (s *Static) Positions() Positions { return s.pos.Clone() }

func seed(g *graph.Graph) Positions {
	pos := make(Positions, len(g.Nodes))
	var unplaced []string
	for _, n := range g.Nodes {
		if p, ok := n.Position(); ok {
			pos[n.ID] = p
		} else {
			unplaced = append(unplaced, n.ID)
		}
	}
	if len(unplaced) == 0 {
		return pos
	}
	sort.Strings(unplaced)
	if len(unplaced) == 1 {
		pos[unplaced[0]] = geom.Point{}
		return pos
	}
	// Circumference of len*spacing keeps neighbours spacing apart.
	r := float64(len(unplaced)) * spacing / (2 * math.Pi)
	for i, id := range unplaced {
		a := 2 * math.Pi * float64(i) / float64(len(unplaced))
		pos[id] = geom.Pt(r*math.Cos(a), r*math.Sin(a))
	}
	return pos
}

var (
	_ Mutable = (*Static)(nil)
	_ Bounded = (*Static)(nil)
)
