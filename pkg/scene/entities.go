package scene

import (
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
	"github.com/matzehuels/graphscope/pkg/layout"
)

type nodeState struct {
	node graph.Node
	pos  geom.Point
}

type linkState struct {
	edge graph.Edge
}

// NodeInfo is a read-only snapshot of a node.
type NodeInfo struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Pos      geom.Point     `json:"pos"`
	Meta     graph.Metadata `json:"meta,omitempty"`
	Dragging bool           `json:"dragging,omitempty"`
}

// LinkInfo is a read-only snapshot of a link.
type LinkInfo struct {
	ID    string         `json:"id"`
	From  string         `json:"from"`
	To    string         `json:"to"`
	Label string         `json:"label,omitempty"`
	Meta  graph.Metadata `json:"meta,omitempty"`
}

// normalized returns g with edge ids assigned, copying the edge slice when
// any id is missing so the caller's graph is left alone.
func normalized(g *graph.Graph) *graph.Graph {
	for _, e := range g.Edges {
		if e.ID == "" {
			out := &graph.Graph{Nodes: g.Nodes, Edges: slices.Clone(g.Edges)}
			out.AssignEdgeIDs()
			return out
		}
	}
	return g
}

func (s *Scene) guard(op string) error {
	if s.destroyed {
		return errors.Destroyed("scene", op)
	}
	if !s.loaded {
		return errors.New(errors.ErrCodeNotLoaded, "%s called before Load", op)
	}
	return nil
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode inserts a node. A node without a seeded position appears at the
// graph point under the centre of the container.
func (s *Scene) AddNode(n graph.Node) error {
	if err := s.guard("AddNode"); err != nil {
		return err
	}
	if err := errors.ValidateID(n.ID); err != nil {
		return err
	}
	if _, ok := s.nodes[n.ID]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "node %q already exists", n.ID)
	}
	pos, ok := n.Position()
	if !ok {
		size := s.view.Size()
		pos = s.view.ToGraph(geom.Pt(size.W/2, size.H/2))
	}
	if m, ok := s.layout.(layout.Mutable); ok {
		m.AddNode(n.ID, pos)
	}
	s.nodes[n.ID] = &nodeState{node: n, pos: pos}
	s.bus.NodeCreate.Publish(events.Node{ID: n.ID, Pos: pos})
	return nil
}

// RemoveNode deletes a node after deleting its incident links.
func (s *Scene) RemoveNode(id string) error {
	if err := s.guard("RemoveNode"); err != nil {
		return err
	}
	st, ok := s.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	for _, l := range s.IncidentLinks(id) {
		s.removeLink(l)
	}
	delete(s.nodes, id)
	delete(s.incident, id)
	delete(s.dragging, id)
	if m, ok := s.layout.(layout.Mutable); ok {
		m.RemoveNode(id)
	}
	s.bus.NodeRemove.Publish(events.Node{ID: id, Pos: st.pos})
	return nil
}

// UpdateNode replaces a node's label and metadata. A seeded position moves
// the node.
func (s *Scene) UpdateNode(n graph.Node) error {
	if err := s.guard("UpdateNode"); err != nil {
		return err
	}
	st, ok := s.nodes[n.ID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", n.ID)
	}
	st.node = n
	if p, ok := n.Position(); ok {
		s.place(n.ID, st, p)
	}
	s.bus.NodeUpdate.Publish(events.Node{ID: n.ID, Pos: st.pos})
	return nil
}

// MoveStart marks the beginning of a drag. While dragged, a node and its
// links are kept out of the indexes.
func (s *Scene) MoveStart(id string) error {
	if err := s.guard("MoveStart"); err != nil {
		return err
	}
	st, ok := s.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	s.dragging[id]++
	s.bus.NodeMoveStart.Publish(events.Node{ID: id, Pos: st.pos})
	return nil
}

// MoveNode places a node at graph point p and pins it in the layout.
func (s *Scene) MoveNode(id string, p geom.Point) error {
	if err := s.guard("MoveNode"); err != nil {
		return err
	}
	st, ok := s.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	s.place(id, st, p)
	return nil
}

// MoveStop ends a drag; the node and its links are indexed again.
func (s *Scene) MoveStop(id string) error {
	if err := s.guard("MoveStop"); err != nil {
		return err
	}
	st, ok := s.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	if s.dragging[id]--; s.dragging[id] <= 0 {
		delete(s.dragging, id)
	}
	s.bus.NodeMoveStop.Publish(events.Node{ID: id, Pos: st.pos})
	return nil
}

// place moves a node. Outside a drag the move is announced on nodes:moved
// so the indexes follow.
func (s *Scene) place(id string, st *nodeState, p geom.Point) {
	st.pos = p
	if m, ok := s.layout.(layout.Mutable); ok {
		m.SetNodePosition(id, p)
	}
	if s.dragging[id] == 0 {
		s.bus.NodesMoved.Publish(events.Moved{IDs: []string{id}})
	}
}

// Node returns a snapshot of a node.
func (s *Scene) Node(id string) (NodeInfo, bool) {
	st, ok := s.nodes[id]
	if !ok {
		return NodeInfo{}, false
	}
	return NodeInfo{
		ID:       id,
		Label:    st.node.DisplayLabel(),
		Pos:      st.pos,
		Meta:     st.node.Meta,
		Dragging: s.dragging[id] > 0,
	}, true
}

// NodeIDs returns all node ids in sorted order.
func (s *Scene) NodeIDs() []string {
	return slices.Sorted(maps.Keys(s.nodes))
}

// NodePosition returns the current position of a node.
func (s *Scene) NodePosition(id string) (geom.Point, bool) {
	st, ok := s.nodes[id]
	if !ok {
		return geom.Point{}, false
	}
	return st.pos, true
}

// =============================================================================
// Links
// =============================================================================

// AddLink inserts a link between existing nodes. A missing id defaults to
// "from->to", with a "#n" suffix when taken. The assigned id is returned.
func (s *Scene) AddLink(e graph.Edge) (string, error) {
	if err := s.guard("AddLink"); err != nil {
		return "", err
	}
	for _, end := range []string{e.From, e.To} {
		if _, ok := s.nodes[end]; !ok {
			return "", errors.New(errors.ErrCodeNotFound, "link endpoint %q not found", end)
		}
	}
	if e.ID == "" {
		e.ID = s.freeLinkID(e.From, e.To)
	} else if err := errors.ValidateID(e.ID); err != nil {
		return "", err
	}
	if _, ok := s.links[e.ID]; ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "link %q already exists", e.ID)
	}
	s.insertLink(e)
	s.bus.LinkCreate.Publish(events.Link{ID: e.ID, From: e.From, To: e.To})
	return e.ID, nil
}

func (s *Scene) freeLinkID(from, to string) string {
	base := graph.EdgeID(from, to)
	id := base
	for n := 1; ; n++ {
		if _, taken := s.links[id]; !taken {
			return id
		}
		id = base + "#" + strconv.Itoa(n)
	}
}

func (s *Scene) insertLink(e graph.Edge) {
	s.links[e.ID] = &linkState{edge: e}
	s.attach(e.From, e.ID)
	s.attach(e.To, e.ID)
}

func (s *Scene) attach(node, link string) {
	set, ok := s.incident[node]
	if !ok {
		set = make(map[string]struct{})
		s.incident[node] = set
	}
	set[link] = struct{}{}
}

func (s *Scene) detach(node, link string) {
	if set, ok := s.incident[node]; ok {
		delete(set, link)
		if len(set) == 0 {
			delete(s.incident, node)
		}
	}
}

// RemoveLink deletes a link.
func (s *Scene) RemoveLink(id string) error {
	if err := s.guard("RemoveLink"); err != nil {
		return err
	}
	if _, ok := s.links[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "link %q not found", id)
	}
	s.removeLink(id)
	return nil
}

func (s *Scene) removeLink(id string) {
	st := s.links[id]
	delete(s.links, id)
	s.detach(st.edge.From, id)
	s.detach(st.edge.To, id)
	s.bus.LinkRemove.Publish(events.Link{ID: id, From: st.edge.From, To: st.edge.To})
}

// UpdateLink replaces a link's endpoints, label and metadata. Empty
// endpoints keep their current value.
func (s *Scene) UpdateLink(e graph.Edge) error {
	if err := s.guard("UpdateLink"); err != nil {
		return err
	}
	st, ok := s.links[e.ID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "link %q not found", e.ID)
	}
	if e.From == "" {
		e.From = st.edge.From
	}
	if e.To == "" {
		e.To = st.edge.To
	}
	for _, end := range []string{e.From, e.To} {
		if _, ok := s.nodes[end]; !ok {
			return errors.New(errors.ErrCodeNotFound, "link endpoint %q not found", end)
		}
	}
	s.detach(st.edge.From, e.ID)
	s.detach(st.edge.To, e.ID)
	st.edge = e
	s.attach(e.From, e.ID)
	s.attach(e.To, e.ID)
	s.bus.LinkUpdate.Publish(events.Link{ID: e.ID, From: e.From, To: e.To})
	return nil
}

// Link returns a snapshot of a link.
func (s *Scene) Link(id string) (LinkInfo, bool) {
	st, ok := s.links[id]
	if !ok {
		return LinkInfo{}, false
	}
	e := st.edge
	return LinkInfo{ID: e.ID, From: e.From, To: e.To, Label: e.Label, Meta: e.Meta}, true
}

// LinkIDs returns all link ids in sorted order.
func (s *Scene) LinkIDs() []string {
	return slices.Sorted(maps.Keys(s.links))
}

// LinkEndpoints returns the current positions of a link's endpoints.
func (s *Scene) LinkEndpoints(id string) (from, to geom.Point, ok bool) {
	st, ok := s.links[id]
	if !ok {
		return geom.Point{}, geom.Point{}, false
	}
	a, okA := s.nodes[st.edge.From]
	b, okB := s.nodes[st.edge.To]
	if !okA || !okB {
		return geom.Point{}, geom.Point{}, false
	}
	return a.pos, b.pos, true
}

// LinkNodes returns the ids of a link's endpoints.
func (s *Scene) LinkNodes(id string) (from, to string, ok bool) {
	st, ok := s.links[id]
	if !ok {
		return "", "", false
	}
	return st.edge.From, st.edge.To, true
}

// IncidentLinks returns the ids of links touching a node, sorted.
func (s *Scene) IncidentLinks(nodeID string) []string {
	return slices.Sorted(maps.Keys(s.incident[nodeID]))
}

// Graph exports the current content in the wire format, with positions.
func (s *Scene) Graph() *graph.Graph {
	g := &graph.Graph{}
	for _, id := range s.NodeIDs() {
		st := s.nodes[id]
		g.Nodes = append(g.Nodes, st.node.At(st.pos))
	}
	for _, id := range s.LinkIDs() {
		g.Edges = append(g.Edges, s.links[id].edge)
	}
	return g
}
