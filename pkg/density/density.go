// Package density estimates how crowded the visible part of a scene is.
//
// On every layout:ready and view:reset the [Estimator] collects the nodes
// and links inside the visible box, measures each one's distance to its
// nearest neighbour in the same index, and publishes the visible set with
// the larger of the two mean spacings converted to screen pixels. Overlays
// compare that radius with a threshold to decide whether per-entity detail
// such as labels is worth drawing.
package density

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/observability"
	"github.com/matzehuels/graphscope/pkg/spatial"
)

// DefaultThreshold is the screen-space radius above which detail is shown.
const DefaultThreshold = 70

// Indexes gives access to the node and link indexes. *spatial.Tracker
// satisfies it.
type Indexes interface {
	Nodes() *spatial.Index
	Links() *spatial.Index
}

// View is the part of the viewport the estimator reads.
type View interface {
	VisibleBBox() geom.Rect
	Scale() float64
}

// Options configures an Estimator.
type Options struct {
	Threshold float64
	Logger    *log.Logger
}

// Estimator computes and publishes view:elements.
type Estimator struct {
	bus       *events.Bus
	idx       Indexes
	view      View
	threshold float64
	logger    *log.Logger

	last    events.Elements
	hasLast bool

	subs      events.Group
	destroyed bool
}

// New subscribes an estimator to layout:ready and view:reset.
func New(bus *events.Bus, idx Indexes, view View, opts Options) *Estimator {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	e := &Estimator{
		bus:       bus,
		idx:       idx,
		view:      view,
		threshold: opts.Threshold,
		logger:    opts.Logger,
	}
	e.subs.Add(bus.LayoutReady.Subscribe(func(events.Signal) { e.publish() }))
	e.subs.Add(bus.ViewReset.Subscribe(func(events.View) { e.publish() }))
	e.subs.Add(bus.CoreClear.Subscribe(func(events.Signal) { e.last, e.hasLast = events.Elements{}, false }))
	return e
}

// Estimate computes the visible set and radius for the current viewport
// without publishing it. ok is false while the indexes are not built.
func (e *Estimator) Estimate() (events.Elements, bool) {
	nodes, links := e.idx.Nodes(), e.idx.Links()
	if !nodes.Built() || !links.Built() {
		return events.Elements{}, false
	}
	box := e.view.VisibleBBox().Box()
	visibleNodes := nodes.Search(box)
	visibleLinks := links.Search(box)

	r := max(meanSpacing(nodes, visibleNodes), meanSpacing(links, visibleLinks))
	return events.Elements{
		Nodes:  entryIDs(visibleNodes),
		Links:  entryIDs(visibleLinks),
		Radius: r * e.view.Scale(),
	}, true
}

// meanSpacing averages, over candidates, the centre distance to the
// nearest other entry of the same index. Candidates alone in their index
// are left out; no measurable candidate yields 0.
func meanSpacing(idx *spatial.Index, candidates []spatial.Entry) float64 {
	var sum float64
	n := 0
	for _, c := range candidates {
		center := c.Center()
		for _, nb := range idx.Nearest(center, 2) {
			if nb.ID == c.ID {
				continue
			}
			sum += geom.Dist(center, nb.Center())
			n++
			break
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func entryIDs(entries []spatial.Entry) []string {
	ids := make([]string, len(entries))
	for i, en := range entries {
		ids[i] = en.ID
	}
	return ids
}

func (e *Estimator) publish() {
	if e.destroyed {
		return
	}
	el, ok := e.Estimate()
	if !ok {
		return
	}
	e.last, e.hasLast = el, true
	observability.View().OnElements(len(el.Nodes), len(el.Links), el.Radius)
	e.logger.Debug("visible elements", "nodes", len(el.Nodes), "links", len(el.Links), "radius", el.Radius)
	e.bus.ViewElements.Publish(el)
}

// Refresh recomputes and publishes the visible set now.
func (e *Estimator) Refresh() error {
	if e.destroyed {
		return errors.Destroyed("density estimator", "Refresh")
	}
	e.publish()
	return nil
}

// Last returns the most recently published visible set.
func (e *Estimator) Last() (events.Elements, bool) { return e.last, e.hasLast }

// Threshold returns the detail threshold.
func (e *Estimator) Threshold() float64 { return e.threshold }

// ShowDetail reports whether entities spaced radius pixels apart have room
// for per-entity detail.
func (e *Estimator) ShowDetail(radius float64) bool { return radius >= e.threshold }

// Destroy detaches the estimator from the bus.
func (e *Estimator) Destroy() {
	e.subs.Unsubscribe()
	e.destroyed = true
	e.last, e.hasLast = events.Elements{}, false
}
