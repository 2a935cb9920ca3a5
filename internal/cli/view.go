package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// zoomStep is the scale factor of one wheel notch or +/- key press.
const zoomStep = 1.2

// panStep is the distance in pixels of one arrow key press.
const panStep = 4 * cellW

func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <graph.json>",
		Short: "Explore a graph in the terminal",
		Long: `View opens an interactive viewer. Drag the background to pan, scroll to
zoom, drag a node to move it and hover to highlight.

Keys: f fit, c centre, l toggle labels, +/- zoom, arrows pan, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			term := &termContainer{}
			ls, err := c.openScene(ctx, cfg, term, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ls.Close()

			m := newViewModel(ls.Scene, term, args[0])
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			return final.(*viewModel).err
		},
	}
}

// termContainer is the terminal as a scene container; its size in pixels
// follows the window.
type termContainer struct {
	size geom.Size
}

func (t *termContainer) Size() geom.Size { return t.size }

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(scene.FrameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

type viewModel struct {
	sc    *scene.Scene
	term  *termContainer
	title string

	cols, rows int

	// Pointer state of the current drag.
	dragNode string
	panning  bool
	last     geom.Point

	err error
}

func newViewModel(sc *scene.Scene, term *termContainer, title string) *viewModel {
	return &viewModel{sc: sc, term: term, title: title}
}

func (m *viewModel) Init() tea.Cmd {
	return nextFrame()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var err error
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		err = m.resize(msg.Width, msg.Height-1)
	case frameMsg:
		if err = m.sc.Frame(time.Time(msg)); err == nil {
			return m, nextFrame()
		}
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || msg.String() == "esc" {
			return m, tea.Quit
		}
		err = m.key(msg.String())
	case tea.MouseMsg:
		err = m.mouse(tea.MouseEvent(msg))
	}
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	return m, nil
}

func (m *viewModel) resize(cols, rows int) error {
	m.cols, m.rows = cols, max(rows, 0)
	m.term.size = geom.Size{W: float64(cols * cellW), H: float64(m.rows * cellH)}
	return m.sc.Resize(m.term.size)
}

func (m *viewModel) key(k string) error {
	view := m.sc.Viewport()
	center := geom.Pt(m.term.size.W/2, m.term.size.H/2)
	switch k {
	case "f":
		return m.sc.Fit(true)
	case "c":
		return view.AlignToCenter(true)
	case "l":
		return m.sc.Labels().SetEnabled(!m.sc.Labels().Enabled())
	case "+", "=":
		return m.gesture(func() error { return view.ZoomAt(center, zoomStep) })
	case "-":
		return m.gesture(func() error { return view.ZoomAt(center, 1/zoomStep) })
	case "left":
		return m.gesture(func() error { return view.Pan(panStep, 0) })
	case "right":
		return m.gesture(func() error { return view.Pan(-panStep, 0) })
	case "up":
		return m.gesture(func() error { return view.Pan(0, panStep) })
	case "down":
		return m.gesture(func() error { return view.Pan(0, -panStep) })
	}
	return nil
}

// gesture wraps a discrete camera move so that it settles like a drag.
func (m *viewModel) gesture(move func() error) error {
	view := m.sc.Viewport()
	if err := view.BeginGesture(); err != nil {
		return err
	}
	if err := move(); err != nil {
		return err
	}
	return view.EndGesture()
}

func (m *viewModel) mouse(ev tea.MouseEvent) error {
	p := toPixel(ev.X, ev.Y)
	view := m.sc.Viewport()

	switch {
	case ev.Button == tea.MouseButtonWheelUp:
		return m.gesture(func() error { return view.ZoomAt(p, zoomStep) })
	case ev.Button == tea.MouseButtonWheelDown:
		return m.gesture(func() error { return view.ZoomAt(p, 1/zoomStep) })

	case ev.Action == tea.MouseActionPress && ev.Button == tea.MouseButtonLeft:
		m.last = p
		if f := m.sc.HitTest().Resolve(p); f.Kind == events.KindNode {
			m.dragNode = f.ID
			return m.sc.MoveStart(f.ID)
		}
		m.panning = true
		return view.BeginGesture()

	case ev.Action == tea.MouseActionMotion:
		defer func() { m.last = p }()
		switch {
		case m.dragNode != "":
			return m.sc.MoveNode(m.dragNode, view.ToGraph(p))
		case m.panning:
			return view.Pan(p.X-m.last.X, p.Y-m.last.Y)
		default:
			return m.sc.HitTest().Pointer(p)
		}

	case ev.Action == tea.MouseActionRelease:
		switch {
		case m.dragNode != "":
			id := m.dragNode
			m.dragNode = ""
			return m.sc.MoveStop(id)
		case m.panning:
			m.panning = false
			return view.EndGesture()
		}
	}
	return nil
}

func (m *viewModel) View() string {
	if m.cols == 0 {
		return ""
	}
	c := newCanvas(m.cols, m.rows)
	drawScene(c, m.sc)
	return c.Render() + "\n" + m.status()
}

func (m *viewModel) status() string {
	view := m.sc.Viewport()
	el, _ := m.sc.Density().Last()

	focus := "-"
	if f := m.sc.HitTest().Focus(); !f.IsZero() {
		focus = f.Kind.String() + " " + f.ID
		if info, ok := m.sc.Node(f.ID); ok && f.Kind == events.KindNode && info.Label != f.ID {
			focus += " (" + info.Label + ")"
		}
	}
	parts := []string{
		StyleTitle.Render(m.title),
		fmt.Sprintf("%d visible", len(el.Nodes)),
		fmt.Sprintf("spacing %.0fpx", el.Radius),
		fmt.Sprintf("zoom %.2f", view.Scale()),
		StyleHighlight.Render(focus),
	}
	return lipgloss.NewStyle().MaxWidth(m.cols).Render(strings.Join(parts, StyleDim.Render(" · ")))
}
