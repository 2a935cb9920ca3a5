package spatial

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/observability"
)

// EdgeMode selects how links are represented in the link index.
type EdgeMode int

const (
	// EdgeBBox indexes the bounding box of both endpoints. It supports
	// precise segment hit-testing.
	EdgeBBox EdgeMode = iota
	// EdgeMidpoint indexes only the midpoint. It is cheaper to maintain but
	// only serves density estimation.
	EdgeMidpoint
)

// String returns "bbox" or "midpoint".
func (m EdgeMode) String() string {
	if m == EdgeMidpoint {
		return "midpoint"
	}
	return "bbox"
}

// ParseEdgeMode parses "bbox" or "midpoint". The empty string is "bbox".
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch s {
	case "", "bbox":
		return EdgeBBox, nil
	case "midpoint":
		return EdgeMidpoint, nil
	}
	return EdgeBBox, fmt.Errorf("unknown edge mode %q (want bbox or midpoint)", s)
}

// Geometry is the scene view the tracker needs to compute entries.
type Geometry interface {
	NodePosition(id string) (geom.Point, bool)
	LinkEndpoints(id string) (from, to geom.Point, ok bool)
	LinkNodes(id string) (from, to string, ok bool)
	IncidentLinks(nodeID string) []string
	NodeIDs() []string
	LinkIDs() []string
}

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	Mode   EdgeMode
	Logger *log.Logger
}

// Tracker keeps a node index and a link index in sync with scene events.
// Both indexes are bulk loaded on every layout:ready. Until the first one,
// mutation events are ignored and queries return nothing.
type Tracker struct {
	bus    *events.Bus
	geo    Geometry
	mode   EdgeMode
	logger *log.Logger

	nodes *Index
	links *Index

	// dragging counts active drags per node. A link is stale while either
	// of its current endpoints is being dragged.
	dragging map[string]int

	subs events.Group
}

// NewTracker subscribes a tracker to bus.
func NewTracker(bus *events.Bus, geo Geometry, opts TrackerOptions) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	t := &Tracker{
		bus:      bus,
		geo:      geo,
		mode:     opts.Mode,
		logger:   logger,
		nodes:    NewIndex("nodes"),
		links:    NewIndex("links"),
		dragging: make(map[string]int),
	}
	t.subs.Add(bus.LayoutReady.Subscribe(func(events.Signal) { t.Rebuild() }))
	t.subs.Add(bus.NodeCreate.Subscribe(t.onNodeCreate))
	t.subs.Add(bus.NodeRemove.Subscribe(t.onNodeRemove))
	t.subs.Add(bus.NodeUpdate.Subscribe(t.onNodeCreate))
	t.subs.Add(bus.NodeMoveStart.Subscribe(t.onMoveStart))
	t.subs.Add(bus.NodeMoveStop.Subscribe(t.onMoveStop))
	t.subs.Add(bus.NodesMoved.Subscribe(t.onMoved))
	t.subs.Add(bus.LinkCreate.Subscribe(t.onLinkChange))
	t.subs.Add(bus.LinkUpdate.Subscribe(t.onLinkChange))
	t.subs.Add(bus.LinkRemove.Subscribe(t.onLinkRemove))
	t.subs.Add(bus.CoreClear.Subscribe(func(events.Signal) { t.Reset() }))
	return t
}

// Nodes returns the node index.
func (t *Tracker) Nodes() *Index { return t.nodes }

// Links returns the link index.
func (t *Tracker) Links() *Index { return t.links }

// Mode returns the edge indexing mode.
func (t *Tracker) Mode() EdgeMode { return t.mode }

// Built reports whether the indexes have been loaded.
func (t *Tracker) Built() bool { return t.nodes.Built() }

// Rebuild bulk loads both indexes from the current geometry.
func (t *Tracker) Rebuild() {
	start := time.Now()
	nodeIDs := t.geo.NodeIDs()
	nodes := make([]Entry, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, dragged := t.dragging[id]; dragged {
			continue
		}
		if p, ok := t.geo.NodePosition(id); ok {
			nodes = append(nodes, PointEntry(id, p))
		}
	}
	t.nodes.Load(nodes)
	nodeDur := time.Since(start)

	start = time.Now()
	linkIDs := t.geo.LinkIDs()
	links := make([]Entry, 0, len(linkIDs))
	for _, id := range linkIDs {
		if t.stale(id) {
			continue
		}
		if e, ok := t.linkEntry(id); ok {
			links = append(links, e)
		}
	}
	t.links.Load(links)
	linkDur := time.Since(start)

	observability.Index().OnIndexBuild("nodes", len(nodes), nodeDur)
	observability.Index().OnIndexBuild("links", len(links), linkDur)
	t.logger.Debug("indexes built", "nodes", len(nodes), "links", len(links), "mode", t.mode)
}

// Reset empties both indexes and marks them unbuilt.
func (t *Tracker) Reset() {
	t.nodes.Clear()
	t.links.Clear()
	clear(t.dragging)
}

// Destroy detaches the tracker from the bus, then drops its state.
func (t *Tracker) Destroy() {
	t.subs.Unsubscribe()
	t.Reset()
}

func (t *Tracker) linkEntry(id string) (Entry, bool) {
	from, to, ok := t.geo.LinkEndpoints(id)
	if !ok {
		return Entry{}, false
	}
	if t.mode == EdgeMidpoint {
		return PointEntry(id, geom.Mid(from, to)), true
	}
	return Entry{ID: id, Box: geom.NormalBox(from, to)}, true
}

func (t *Tracker) indexNode(id string) {
	if p, ok := t.geo.NodePosition(id); ok {
		t.nodes.Insert(PointEntry(id, p))
	}
}

// stale reports whether a link touches a dragged node.
func (t *Tracker) stale(id string) bool {
	from, to, ok := t.geo.LinkNodes(id)
	if !ok {
		return false
	}
	_, a := t.dragging[from]
	_, b := t.dragging[to]
	return a || b
}

// indexLink inserts or refreshes a link, or drops it while stale.
func (t *Tracker) indexLink(id string) {
	if t.stale(id) {
		t.links.Remove(id)
		return
	}
	if e, ok := t.linkEntry(id); ok {
		t.links.Insert(e)
	}
}

func (t *Tracker) onNodeCreate(n events.Node) {
	if !t.Built() {
		return
	}
	if _, dragged := t.dragging[n.ID]; dragged {
		return
	}
	t.indexNode(n.ID)
}

func (t *Tracker) onNodeRemove(n events.Node) {
	delete(t.dragging, n.ID)
	if !t.Built() {
		return
	}
	t.nodes.Remove(n.ID)
}

func (t *Tracker) onMoveStart(n events.Node) {
	if !t.Built() {
		return
	}
	t.dragging[n.ID]++
	for _, l := range t.geo.IncidentLinks(n.ID) {
		t.links.Remove(l)
	}
	t.nodes.Remove(n.ID)
}

func (t *Tracker) onMoveStop(n events.Node) {
	if !t.Built() {
		return
	}
	if _, ok := t.dragging[n.ID]; !ok {
		return
	}
	if t.dragging[n.ID]--; t.dragging[n.ID] > 0 {
		return
	}
	delete(t.dragging, n.ID)
	t.indexNode(n.ID)
	for _, l := range t.geo.IncidentLinks(n.ID) {
		t.indexLink(l)
	}
}

func (t *Tracker) onMoved(m events.Moved) {
	if !t.Built() {
		return
	}
	seen := make(map[string]struct{})
	for _, id := range m.IDs {
		if _, dragged := t.dragging[id]; dragged {
			continue
		}
		t.indexNode(id)
		for _, l := range t.geo.IncidentLinks(id) {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			t.indexLink(l)
		}
	}
}

func (t *Tracker) onLinkChange(l events.Link) {
	if !t.Built() {
		return
	}
	t.indexLink(l.ID)
}

func (t *Tracker) onLinkRemove(l events.Link) {
	if !t.Built() {
		return
	}
	t.links.Remove(l.ID)
}
