package layout

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/graph"
	"github.com/matzehuels/graphscope/pkg/observability"
)

// Graphviz engine names.
const (
	EngineDot   = "dot"
	EngineNeato = "neato"
	EngineFDP   = "fdp"
	EngineSFDP  = "sfdp"
	EngineCirco = "circo"
	EngineTwopi = "twopi"
)

// Engines lists the supported Graphviz engines.
var Engines = []string{EngineDot, EngineNeato, EngineFDP, EngineSFDP, EngineCirco, EngineTwopi}

// GraphvizOptions configures the Graphviz providers.
type GraphvizOptions struct {
	// Cache stores computed positions. Nil disables caching.
	Cache cache.Cache

	// Keyer builds cache keys. Nil uses cache.NewDefaultKeyer.
	Keyer cache.Keyer

	// NodeSep is the minimum node separation in inches (Graphviz nodesep).
	// Zero keeps the Graphviz default.
	NodeSep float64

	Logger *log.Logger
}

// NewGraphviz returns a Factory that computes positions with the given
// Graphviz engine. Positions are computed once, in points with y pointing
// down, and served through a Static layout.
func NewGraphviz(engine string, opts GraphvizOptions) Factory {
	opts = opts.withDefaults()
	return func(ctx context.Context, g *graph.Graph) (Layout, error) {
		pos, _, err := computeWithCache(ctx, engine, g, opts)
		if err != nil {
			return nil, err
		}
		return FromPositions(pos), nil
	}
}

func (o GraphvizOptions) withDefaults() GraphvizOptions {
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// computeWithCache returns positions for g, consulting the cache first.
// The bool reports a cache hit.
func computeWithCache(ctx context.Context, engine string, g *graph.Graph, opts GraphvizOptions) (Positions, bool, error) {
	opts = opts.withDefaults()
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	key := opts.Keyer.LayoutKey(cache.GraphHash(graphData), cache.LayoutKeyOpts{
		Engine:  engine,
		NodeSep: opts.NodeSep,
	})

	hooks := observability.Cache()
	if data, hit, err := opts.Cache.Get(ctx, key); err == nil && hit {
		if pos, err := UnmarshalPositions(data); err == nil {
			hooks.OnCacheHit(ctx, "layout")
			opts.Logger.Debug("layout cache hit", "engine", engine, "nodes", len(pos))
			return pos, true, nil
		}
		// Corrupt entry: fall through and recompute.
	}
	hooks.OnCacheMiss(ctx, "layout")

	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, engine, len(g.Nodes))
	pos, err := Compute(ctx, engine, g, opts.NodeSep)
	observability.Layout().OnLayoutComplete(ctx, engine, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("computed layout", "engine", engine, "nodes", len(pos), "duration", time.Since(start))

	if data, err := MarshalPositions(pos); err == nil {
		if err := opts.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
			hooks.OnCacheSet(ctx, "layout", len(data))
		} else {
			opts.Logger.Warn("layout cache write failed", "error", err)
		}
	}
	return pos, false, nil
}

// Compute runs a Graphviz engine over g and returns node positions.
// Seeded node positions are passed as pinned positions, which neato and fdp
// honour.
func Compute(ctx context.Context, engine string, g *graph.Graph, nodeSep float64) (Positions, error) {
	if !isEngine(engine) {
		return nil, errors.New(errors.ErrCodeUnsupportedLayout, "unsupported graphviz engine %q", engine)
	}
	if len(g.Nodes) == 0 {
		return Positions{}, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(engine))

	in, err := graphviz.ParseBytes([]byte(ToDOT(g, nodeSep)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer in.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, in, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	out, err := graphviz.ParseBytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse layout output: %w", err)
	}
	defer out.Close()

	pos := make(Positions, len(g.Nodes))
	n, err := out.FirstNode()
	for ; err == nil && n != nil; n, err = out.NextNode(n) {
		name, err := n.Name()
		if err != nil {
			return nil, fmt.Errorf("node name: %w", err)
		}
		p, err := ParsePos(n.GetStr("pos"))
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		// Graphviz y grows upwards; screen space grows downwards.
		pos[name] = geom.Pt(p.X, -p.Y)
	}
	if err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	if len(pos) != len(g.Nodes) {
		return nil, errors.New(errors.ErrCodeInternal, "graphviz positioned %d of %d nodes", len(pos), len(g.Nodes))
	}
	return pos, nil
}

// ToDOT converts a graph to an undirected Graphviz DOT document suitable for
// the force-style engines. Positions are emitted in points with y flipped,
// suffixed with "!" so they stay pinned.
func ToDOT(g *graph.Graph, nodeSep float64) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  node [shape=point, width=0.1];\n")
	if nodeSep > 0 {
		fmt.Fprintf(&buf, "  nodesep=%s;\n", fmtFloat(nodeSep))
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		if p, ok := n.Position(); ok {
			fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\"];\n", n.ID, fmtFloat(p.X/pointsPerInch), fmtFloat(-p.Y/pointsPerInch))
		} else {
			fmt.Fprintf(&buf, "  %q;\n", n.ID)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Input pos values are in inches, output pos values in points.
const pointsPerInch = 72.0

// ParsePos parses a Graphviz node pos attribute ("x,y" or "x,y!").
func ParsePos(s string) (geom.Point, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "!")
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("invalid pos %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid pos %q: %w", s, err)
	}
	// A third component is present for 3D layouts; ignore it.
	ys, _, _ = strings.Cut(ys, ",")
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid pos %q: %w", s, err)
	}
	return geom.Pt(x, y), nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isEngine(name string) bool {
	for _, e := range Engines {
		if e == name {
			return true
		}
	}
	return false
}
