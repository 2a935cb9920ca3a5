package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// Terminal cells are mapped to screen pixels at a fixed aspect so that the
// viewport works in the same units as a graphical container.
const (
	cellW = 8
	cellH = 16

	// maxLinkSteps caps the cells plotted per link.
	maxLinkSteps = 400
)

const (
	glyphNode  = '●'
	glyphLink  = '·'
	glyphHalo  = '░'
	glyphFocus = '◉'
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellLink
	cellHalo
	cellNode
	cellFocus
	cellLabel
)

var cellStyles = map[cellKind]lipgloss.Style{
	cellLink:  lipgloss.NewStyle().Foreground(colorDim),
	cellHalo:  lipgloss.NewStyle().Foreground(colorYellow),
	cellNode:  lipgloss.NewStyle().Foreground(colorCyan),
	cellFocus: lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	cellLabel: lipgloss.NewStyle().Foreground(colorWhite),
}

type cell struct {
	r    rune
	kind cellKind
}

// canvas is a character grid the scene is drawn into.
type canvas struct {
	cols, rows int
	cells      []cell
}

func newCanvas(cols, rows int) *canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
	return c
}

// toCell maps a screen pixel to its cell.
func toCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

// toPixel maps a cell to the screen pixel at its centre.
func toPixel(col, row int) geom.Point {
	return geom.Pt(float64(col)*cellW+cellW/2, float64(row)*cellH+cellH/2)
}

// set writes r at (col, row) unless a cell of higher precedence is there.
func (c *canvas) set(col, row int, r rune, kind cellKind) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	i := row*c.cols + col
	if c.cells[i].kind > kind {
		return
	}
	c.cells[i] = cell{r: r, kind: kind}
}

func (c *canvas) line(a, b geom.Point, r rune, kind cellKind) {
	c0, r0 := toCell(a)
	c1, r1 := toCell(b)
	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		c.set(c0, r0, r, kind)
		return
	}
	steps = min(steps, maxLinkSteps)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.set(
			int(math.Round(float64(c0)+t*float64(c1-c0))),
			int(math.Round(float64(r0)+t*float64(r1-r0))),
			r, kind)
	}
}

func (c *canvas) disc(center geom.Point, radius float64, r rune, kind cellKind) {
	c0, r0 := toCell(geom.Pt(center.X-radius, center.Y-radius))
	c1, r1 := toCell(geom.Pt(center.X+radius, center.Y+radius))
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if geom.Dist(toPixel(col, row), center) <= radius {
				c.set(col, row, r, kind)
			}
		}
	}
}

func (c *canvas) text(p geom.Point, s string, kind cellKind) {
	col, row := toCell(p)
	for i, r := range []rune(s) {
		c.set(col+i, row, r, kind)
	}
}

// String renders the grid as plain text, one line per row.
func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range c.cells[row*c.cols : (row+1)*c.cols] {
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

// Render renders the grid with one style per run of equal cell kinds.
func (c *canvas) Render() string {
	var b, run strings.Builder
	flush := func(kind cellKind) {
		if run.Len() == 0 {
			return
		}
		if st, ok := cellStyles[kind]; ok {
			b.WriteString(st.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		kind := cellEmpty
		for _, cl := range c.cells[row*c.cols : (row+1)*c.cols] {
			if cl.kind != kind {
				flush(kind)
				kind = cl.kind
			}
			run.WriteRune(cl.r)
		}
		flush(kind)
	}
	return b.String()
}

// drawScene draws the part of sc inside the visible box: links first, then
// halos, nodes, the focus and finally labels.
func drawScene(c *canvas, sc *scene.Scene) {
	view := sc.Viewport()
	visible := view.VisibleBBox().Box()

	links := map[string]struct{}{}
	for _, e := range sc.Index().Links().Search(visible) {
		links[e.ID] = struct{}{}
	}
	nodes := map[string]struct{}{}
	for _, e := range sc.Index().Nodes().Search(visible) {
		nodes[e.ID] = struct{}{}
	}
	// Dragged nodes are out of the index until released.
	for _, id := range sc.NodeIDs() {
		if info, ok := sc.Node(id); ok && info.Dragging {
			nodes[id] = struct{}{}
			for _, l := range sc.IncidentLinks(id) {
				links[l] = struct{}{}
			}
		}
	}

	for id := range links {
		if from, to, ok := sc.LinkEndpoints(id); ok {
			c.line(view.ToScreen(from), view.ToScreen(to), glyphLink, cellLink)
		}
	}
	for _, h := range sc.Lighter().Halos() {
		if h.Intensity > 0.2 {
			c.disc(h.Center, h.Radius*h.Intensity, glyphHalo, cellHalo)
		}
	}
	for id := range nodes {
		if p, ok := sc.NodePosition(id); ok {
			col, row := toCell(view.ToScreen(p))
			c.set(col, row, glyphNode, cellNode)
		}
	}

	focus := sc.HitTest().Focus()
	switch focus.Kind {
	case events.KindNode:
		if p, ok := sc.NodePosition(focus.ID); ok {
			col, row := toCell(view.ToScreen(p))
			c.set(col, row, glyphFocus, cellFocus)
		}
	case events.KindLink:
		if from, to, ok := sc.LinkEndpoints(focus.ID); ok {
			c.line(view.ToScreen(from), view.ToScreen(to), glyphLink, cellFocus)
		}
	}

	for _, l := range sc.Labels().Visible() {
		if l.Opacity >= 0.5 {
			c.text(l.Pos, l.Text, cellLabel)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
