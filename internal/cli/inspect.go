package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/config"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// inspectOptions selects the viewport to report on.
type inspectOptions struct {
	width, height float64
	fit           bool
	bbox          string
	translate     string
	scale         float64
	at            string
	labels        bool
	json          bool
	limit         int
}

// inspectReport is the settled state of one viewport.
type inspectReport struct {
	Layout  string         `json:"layout"`
	Size    geom.Size      `json:"size"`
	View    events.View    `json:"view"`
	Visible geom.Rect      `json:"visible"`
	Radius  float64        `json:"radius"`
	Detail  bool           `json:"detail"`
	Nodes   []visibleNode  `json:"nodes"`
	Links   []string       `json:"links"`
	Focus   *events.Target `json:"focus,omitempty"`
	Labels  []scene.Label  `json:"labels,omitempty"`
}

type visibleNode struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Pos    geom.Point `json:"pos"`
	Screen geom.Point `json:"screen"`
}

func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOptions{width: 1280, height: 720, limit: 20}

	cmd := &cobra.Command{
		Use:   "inspect <graph.json>",
		Short: "Report what a viewport shows, without a terminal UI",
		Long: `Inspect lays out a graph headlessly, moves the viewport and reports the
settled result: the transform, the visible nodes and links, the level of
detail and, optionally, the entity under a screen point and the labels
that would be drawn.

Use "-" to read the graph from stdin.`,
		Example: `  graphscope inspect deps.json --fit
  graphscope inspect deps.json --bbox 0,0,500,400 --at 640,360
  graphscope inspect deps.json --translate 100,50 --scale 2 --labels --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ls, err := c.openScene(ctx, cfg, scene.FixedSize{W: opts.width, H: opts.height}, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ls.Close()

			prog := newProgress(loggerFromContext(ctx))
			report, err := inspect(ls.Scene, cfg, opts)
			if err != nil {
				return err
			}
			prog.done("Viewport settled")

			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report, opts.limit)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.width, "width", opts.width, "container width in pixels")
	f.Float64Var(&opts.height, "height", opts.height, "container height in pixels")
	f.BoolVar(&opts.fit, "fit", false, "fit the whole graph")
	f.StringVar(&opts.bbox, "bbox", "", "fit a graph-space box x0,y0,x1,y1")
	f.StringVar(&opts.translate, "translate", "", "set the translation x,y")
	f.Float64Var(&opts.scale, "scale", 0, "set the zoom factor")
	f.StringVar(&opts.at, "at", "", "hit-test a screen point x,y")
	f.BoolVar(&opts.labels, "labels", false, "list the labels drawn at this zoom")
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	f.IntVar(&opts.limit, "limit", opts.limit, "max nodes listed in the table (0 for all)")
	cmd.MarkFlagsMutuallyExclusive("fit", "bbox", "translate")
	cmd.MarkFlagsMutuallyExclusive("fit", "bbox", "scale")

	return cmd
}

// inspect moves the viewport of a running scene as opts asks, steps it until
// settled and collects the report.
func inspect(sc *scene.Scene, cfg *config.Config, opts inspectOptions) (inspectReport, error) {
	if err := settle(sc); err != nil {
		return inspectReport{}, err
	}

	view := sc.Viewport()
	switch {
	case opts.fit:
		if err := sc.Fit(false); err != nil {
			return inspectReport{}, err
		}
	case opts.bbox != "":
		r, err := parseRect(opts.bbox)
		if err != nil {
			return inspectReport{}, err
		}
		if err := view.FitBounds(r, cfg.Viewport.FitPadding, cfg.Viewport.FitMaxZoom, false); err != nil {
			return inspectReport{}, err
		}
	case opts.translate != "" || opts.scale != 0:
		var (
			tp *geom.Point
			sp *float64
		)
		if opts.translate != "" {
			p, err := parsePoint(opts.translate)
			if err != nil {
				return inspectReport{}, err
			}
			tp = &p
		}
		if opts.scale != 0 {
			sp = &opts.scale
		}
		if err := view.Transform(tp, sp, false); err != nil {
			return inspectReport{}, err
		}
	}
	if err := settle(sc); err != nil {
		return inspectReport{}, err
	}

	el, _ := sc.Density().Last()
	t := view.State()
	report := inspectReport{
		Layout:  sc.LayoutName(),
		Size:    view.Size(),
		View:    events.View{X: t.X, Y: t.Y, Scale: t.Scale},
		Visible: view.VisibleBBox(),
		Radius:  el.Radius,
		Detail:  sc.Density().ShowDetail(el.Radius),
		Links:   el.Links,
	}
	for _, id := range el.Nodes {
		info, ok := sc.Node(id)
		if !ok {
			continue
		}
		report.Nodes = append(report.Nodes, visibleNode{
			ID:     id,
			Label:  info.Label,
			Pos:    info.Pos,
			Screen: view.ToScreen(info.Pos),
		})
	}

	if opts.at != "" {
		p, err := parsePoint(opts.at)
		if err != nil {
			return inspectReport{}, err
		}
		f := sc.HitTest().Sample(p)
		report.Focus = &f
	}

	if opts.labels {
		for i := 0; i < maxFrames && sc.Labels().Fading(); i++ {
			if err := sc.Tick(scene.FrameInterval); err != nil {
				return inspectReport{}, err
			}
		}
		report.Labels = sc.Labels().Visible()
	}
	return report, nil
}

// settle steps a scene until its layout and viewport are at rest.
func settle(sc *scene.Scene) error {
	ok, err := sc.Converge(maxFrames)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("scene did not settle within %d frames", maxFrames)
	}
	return nil
}

func printReport(w io.Writer, r inspectReport, limit int) {
	fmt.Fprintln(w, StyleTitle.Render("Viewport"))
	printKeyValue(w, "layout", r.Layout)
	printKeyValue(w, "size", fmt.Sprintf("%gx%g", r.Size.W, r.Size.H))
	printKeyValue(w, "translate", fmt.Sprintf("%.1f, %.1f", r.View.X, r.View.Y))
	printKeyValue(w, "scale", fmt.Sprintf("%.3f", r.View.Scale))
	printKeyValue(w, "visible", fmt.Sprintf("%.1f, %.1f %.1fx%.1f", r.Visible.X, r.Visible.Y, r.Visible.W, r.Visible.H))
	detail := "off"
	if r.Detail {
		detail = "on"
	}
	printKeyValue(w, "spacing", fmt.Sprintf("%.1fpx (detail %s)", r.Radius, detail))
	printKeyValue(w, "elements", fmt.Sprintf("%d nodes, %d links", len(r.Nodes), len(r.Links)))
	if r.Focus != nil {
		focus := "nothing"
		if !r.Focus.IsZero() {
			focus = r.Focus.Kind.String() + " " + StyleHighlight.Render(r.Focus.ID)
		}
		printKeyValue(w, "at", focus)
	}

	if len(r.Nodes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, nodeTable(r.Nodes, limit))
		if limit > 0 && len(r.Nodes) > limit {
			printDetail(w, "… %d more (use --limit 0 to list all)", len(r.Nodes)-limit)
		}
	}

	if len(r.Labels) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Labels"))
		for _, l := range r.Labels {
			suffix := ""
			if l.Locked {
				suffix = " (locked)"
			}
			printDetail(w, "%s at %.0f,%.0f%s", l.Text, l.Pos.X, l.Pos.Y, suffix)
		}
	}
}

func nodeTable(nodes []visibleNode, limit int) string {
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID,
			n.Label,
			formatPoint(n.Pos),
			formatPoint(n.Screen),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	dimStyle := cellStyle.Foreground(colorGray)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "LABEL", "GRAPH", "SCREEN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return headerStyle
			case col >= 2:
				return dimStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func formatPoint(p geom.Point) string {
	return strconv.FormatFloat(p.X, 'f', 1, 64) + ", " + strconv.FormatFloat(p.Y, 'f', 1, 64)
}
