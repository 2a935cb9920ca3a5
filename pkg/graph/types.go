package graph

import (
	"strconv"

	"github.com/matzehuels/graphscope/pkg/geom"
)

// =============================================================================
// Graph - Node-Link Format
// =============================================================================

// Graph is the JSON node-link format read from graph files and the HTTP API.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a graph vertex. X and Y are optional; when both are present they
// seed the layout.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Meta  Metadata `json:"meta,omitempty"`
}

// Edge connects two nodes. ID is optional and defaults to "from->to", with a
// "#n" suffix for parallel edges.
type Edge struct {
	ID    string   `json:"id,omitempty"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Label string   `json:"label,omitempty"`
	Meta  Metadata `json:"meta,omitempty"`
}

// Metadata holds arbitrary per-entity attributes.
type Metadata map[string]any

// Position returns the node's seeded position when both coordinates are set.
func (n Node) Position() (geom.Point, bool) {
	if n.X == nil || n.Y == nil {
		return geom.Point{}, false
	}
	return geom.Pt(*n.X, *n.Y), true
}

// DisplayLabel returns the label, falling back to the id.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// At returns a copy of n positioned at p.
func (n Node) At(p geom.Point) Node {
	x, y := p.X, p.Y
	n.X, n.Y = &x, &y
	return n
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Positioned reports whether every node carries a seeded position.
func (g *Graph) Positioned() bool {
	for _, n := range g.Nodes {
		if _, ok := n.Position(); !ok {
			return false
		}
	}
	return true
}

// EdgeID returns the default id of an edge between from and to.
func EdgeID(from, to string) string {
	return from + "->" + to
}

// AssignEdgeIDs fills in missing edge ids. The first edge between a pair gets
// EdgeID(from, to); parallels get "#1", "#2" and so on, skipping ids that are
// already taken.
func (g *Graph) AssignEdgeIDs() {
	taken := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID != "" {
			taken[e.ID] = true
		}
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.ID != "" {
			continue
		}
		base := EdgeID(e.From, e.To)
		id := base
		for n := 1; taken[id]; n++ {
			id = base + "#" + strconv.Itoa(n)
		}
		e.ID = id
		taken[id] = true
	}
}
