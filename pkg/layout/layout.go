// Package layout provides the position source a scene renders from.
//
// A [Layout] answers where a node is and advances by one step per frame.
// Layouts are created by name through a [Registry]; the registry is built
// explicitly by the caller so tests and servers can register their own
// providers without touching globals.
//
// Two providers ship with the package:
//
//   - "static": positions come from the graph file and never change
//   - graphviz engines ("dot", "neato", "fdp", "sfdp", "circo", "twopi"):
//     positions are computed once by Graphviz and cached by graph hash
//
// Both converge on the first step.
package layout

import (
	"context"
	"sort"

	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
)

// Layout is the position source driven by the frame loop.
type Layout interface {
	// NodePosition returns the current position of a node.
	NodePosition(id string) (geom.Point, bool)

	// Step advances the layout by one iteration and reports whether it has
	// converged.
	Step() bool
}

// Mutable is implemented by layouts that accept entity changes after
// creation, and pinned positions while a node is dragged.
type Mutable interface {
	AddNode(id string, p geom.Point)
	RemoveNode(id string)
	SetNodePosition(id string, p geom.Point)
}

// Bounded is implemented by layouts that know their extent.
type Bounded interface {
	Bounds() (geom.Rect, bool)
}

// Factory creates a layout for a graph.
type Factory func(ctx context.Context, g *graph.Graph) (Layout, error)

// Registry maps layout names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a registry with the static provider and every
// Graphviz engine, plus "graphviz" as an alias for neato.
func NewDefaultRegistry(opts GraphvizOptions) *Registry {
	r := NewRegistry()
	r.Register(StaticName, NewStatic)
	for _, engine := range Engines {
		r.Register(engine, NewGraphviz(engine, opts))
	}
	r.Register("graphviz", NewGraphviz(EngineNeato, opts))
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a layout by name. Unknown names fail with
// ErrCodeUnsupportedLayout.
func (r *Registry) New(ctx context.Context, name string, g *graph.Graph) (Layout, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedLayout, "unsupported layout %q (available: %v)", name, r.Names())
	}
	return f(ctx, g)
}
