package graph

import (
	"errors"
	"fmt"

	gserrors "github.com/matzehuels/graphscope/pkg/errors"
)

// Sentinel errors returned (wrapped) by Validate.
var (
	ErrInvalidID       = errors.New("invalid id")
	ErrDuplicateNodeID = errors.New("duplicate node id")
	ErrDuplicateEdgeID = errors.New("duplicate edge id")
	ErrUnknownNode     = errors.New("edge references unknown node")
	ErrPartialPosition = errors.New("node has only one of x and y")
)

// Validate checks structural integrity: well-formed unique ids, edges that
// reference existing nodes, and positions that set both coordinates or none.
// Edge ids must have been assigned (see AssignEdgeIDs).
func (g *Graph) Validate() error {
	nodes := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := gserrors.ValidateID(n.ID); err != nil {
			return fmt.Errorf("node %q: %w: %v", n.ID, ErrInvalidID, err)
		}
		if nodes[n.ID] {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
		if (n.X == nil) != (n.Y == nil) {
			return fmt.Errorf("node %q: %w", n.ID, ErrPartialPosition)
		}
		nodes[n.ID] = true
	}

	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if err := gserrors.ValidateID(e.ID); err != nil {
			return fmt.Errorf("edge %q: %w: %v", e.ID, ErrInvalidID, err)
		}
		if edges[e.ID] {
			return fmt.Errorf("edge %q: %w", e.ID, ErrDuplicateEdgeID)
		}
		if !nodes[e.From] {
			return fmt.Errorf("edge %q: %w: %q", e.ID, ErrUnknownNode, e.From)
		}
		if !nodes[e.To] {
			return fmt.Errorf("edge %q: %w: %q", e.ID, ErrUnknownNode, e.To)
		}
		edges[e.ID] = true
	}
	return nil
}
