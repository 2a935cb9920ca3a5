package events

import (
	"time"

	"github.com/matzehuels/graphscope/pkg/geom"
)

// Kind distinguishes the two entity families of a node-link diagram.
type Kind int

const (
	// KindNone is the zero value, used for "nothing focused".
	KindNone Kind = iota
	// KindNode is a graph node.
	KindNode
	// KindLink is a graph edge.
	KindLink
)

// String returns "node", "link" or "none".
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindLink:
		return "link"
	default:
		return "none"
	}
}

// Node is the payload of node lifecycle events.
type Node struct {
	ID  string
	Pos geom.Point
}

// Link is the payload of link lifecycle events.
type Link struct {
	ID   string
	From string
	To   string
}

// Moved lists the nodes whose position changed during one physics step.
type Moved struct {
	IDs []string
}

// Elements is the visible set computed for one settled viewport, together
// with the representative screen-space spacing of its members.
type Elements struct {
	Nodes  []string `json:"nodes"`
	Links  []string `json:"links"`
	Radius float64  `json:"radius"`
}

// View is the viewport transform at the time it settled.
type View struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Frame is emitted once per rendered frame.
type Frame struct {
	Time time.Time
}

// Target identifies a focused or clicked entity. The zero value means
// "nothing".
type Target struct {
	ID   string `json:"id,omitempty"`
	Kind Kind   `json:"kind"`
}

// IsZero reports whether t designates nothing.
func (t Target) IsZero() bool { return t.Kind == KindNone }

// Signal is the payload of events that carry no data.
type Signal struct{}

// Bus holds one topic per event of the system.
type Bus struct {
	NodeCreate    Topic[Node] // node:create
	NodeRemove    Topic[Node] // node:remove
	NodeUpdate    Topic[Node] // node:update
	NodeMoveStart Topic[Node] // node:movestart
	NodeMoveStop  Topic[Node] // node:movestop
	NodesMoved    Topic[Moved]

	LinkCreate Topic[Link] // link:create
	LinkRemove Topic[Link] // link:remove
	LinkUpdate Topic[Link] // link:update

	ViewSize     Topic[geom.Size] // view:size
	ViewElements Topic[Elements]  // view:elements
	ViewReset    Topic[View]      // view:reset
	ViewFrame    Topic[Frame]     // view:frame

	NodeOver  Topic[Target] // node:over
	NodeOut   Topic[Target] // node:out
	LinkOver  Topic[Target] // link:over
	LinkOut   Topic[Target] // link:out
	NodeClick Topic[Target] // node:click
	LinkClick Topic[Target] // link:click

	LayoutReady Topic[Signal] // layout:ready
	CoreInit    Topic[Signal] // core:init
	CoreClear   Topic[Signal] // core:clear
	CoreRun     Topic[Signal] // core:run
}

// NewBus returns a bus with named topics.
func NewBus() *Bus {
	b := &Bus{}
	b.NodeCreate.name = "node:create"
	b.NodeRemove.name = "node:remove"
	b.NodeUpdate.name = "node:update"
	b.NodeMoveStart.name = "node:movestart"
	b.NodeMoveStop.name = "node:movestop"
	b.NodesMoved.name = "nodes:moved"
	b.LinkCreate.name = "link:create"
	b.LinkRemove.name = "link:remove"
	b.LinkUpdate.name = "link:update"
	b.ViewSize.name = "view:size"
	b.ViewElements.name = "view:elements"
	b.ViewReset.name = "view:reset"
	b.ViewFrame.name = "view:frame"
	b.NodeOver.name = "node:over"
	b.NodeOut.name = "node:out"
	b.LinkOver.name = "link:over"
	b.LinkOut.name = "link:out"
	b.NodeClick.name = "node:click"
	b.LinkClick.name = "link:click"
	b.LayoutReady.name = "layout:ready"
	b.CoreInit.name = "core:init"
	b.CoreClear.name = "core:clear"
	b.CoreRun.name = "core:run"
	return b
}

// Over returns the focus topic for kind k.
func (b *Bus) Over(k Kind) *Topic[Target] {
	if k == KindLink {
		return &b.LinkOver
	}
	return &b.NodeOver
}

// Out returns the blur topic for kind k.
func (b *Bus) Out(k Kind) *Topic[Target] {
	if k == KindLink {
		return &b.LinkOut
	}
	return &b.NodeOut
}

// Click returns the click topic for kind k.
func (b *Bus) Click(k Kind) *Topic[Target] {
	if k == KindLink {
		return &b.LinkClick
	}
	return &b.NodeClick
}

// Reset drops every subscription on every topic.
func (b *Bus) Reset() {
	b.NodeCreate.reset()
	b.NodeRemove.reset()
	b.NodeUpdate.reset()
	b.NodeMoveStart.reset()
	b.NodeMoveStop.reset()
	b.NodesMoved.reset()
	b.LinkCreate.reset()
	b.LinkRemove.reset()
	b.LinkUpdate.reset()
	b.ViewSize.reset()
	b.ViewElements.reset()
	b.ViewReset.reset()
	b.ViewFrame.reset()
	b.NodeOver.reset()
	b.NodeOut.reset()
	b.LinkOver.reset()
	b.LinkOut.reset()
	b.NodeClick.reset()
	b.LinkClick.reset()
	b.LayoutReady.reset()
	b.CoreInit.reset()
	b.CoreClear.reset()
	b.CoreRun.reset()
}
