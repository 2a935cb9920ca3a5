package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphscope/pkg/geom"
)

func newTestModel(t *testing.T) *viewModel {
	t.Helper()
	term := &termContainer{size: geom.Size{W: 800, H: 600}}
	sc := runningScene(t, term)
	m := newViewModel(sc, term, "triangle.json")
	update(t, m, tea.WindowSizeMsg{Width: 100, Height: 38})
	return m
}

func update(t *testing.T, m *viewModel, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	if next.(*viewModel) != m {
		t.Fatal("Update should return the same model")
	}
	if m.err != nil {
		t.Fatalf("Update(%T): %v", msg, m.err)
	}
	return cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// cellOf returns the terminal cell a node is drawn in.
func cellOf(t *testing.T, m *viewModel, id string) (int, int) {
	t.Helper()
	p, ok := m.sc.NodePosition(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return toCell(m.sc.Viewport().ToScreen(p))
}

func TestViewModelResize(t *testing.T) {
	m := newTestModel(t)
	if m.cols != 100 || m.rows != 37 {
		t.Errorf("grid = %dx%d, want 100x37", m.cols, m.rows)
	}
	if got := m.sc.Viewport().Size(); got != (geom.Size{W: 800, H: 592}) {
		t.Errorf("viewport size = %v", got)
	}
}

func TestViewModelFrame(t *testing.T) {
	m := newTestModel(t)
	now := m.sc.Now().Add(time.Second)
	if cmd := update(t, m, frameMsg(now)); cmd == nil {
		t.Error("a frame should schedule the next one")
	}
	if !m.sc.Now().Equal(now) {
		t.Errorf("scene clock = %v, want %v", m.sc.Now(), now)
	}
}

func TestViewModelDragNode(t *testing.T) {
	m := newTestModel(t)
	col, row := cellOf(t, m, "b")

	update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.dragNode != "b" {
		t.Fatalf("press on b should start a drag, got %q", m.dragNode)
	}
	if info, _ := m.sc.Node("b"); !info.Dragging {
		t.Error("b should be marked as dragging")
	}

	update(t, m, tea.MouseMsg{X: col, Y: row + 7, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	want := m.sc.Viewport().ToGraph(toPixel(col, row+7))
	update(t, m, tea.MouseMsg{X: col, Y: row + 7, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	info, _ := m.sc.Node("b")
	if info.Pos != want || info.Dragging {
		t.Errorf("b = %+v, want released at %v", info, want)
	}
	if m.dragNode != "" {
		t.Error("release should end the drag")
	}
}

func TestViewModelPanAndZoom(t *testing.T) {
	m := newTestModel(t)
	view := m.sc.Viewport()
	before := view.State()

	update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.panning {
		t.Fatal("press on the background should start a pan")
	}
	update(t, m, tea.MouseMsg{X: 7, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	update(t, m, tea.MouseMsg{X: 7, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	after := view.State()
	if after.X-before.X != 2*cellW || after.Y-before.Y != cellH {
		t.Errorf("pan moved by %v,%v; want %v,%v", after.X-before.X, after.Y-before.Y, 2*cellW, cellH)
	}
	if !view.SettlePending() {
		t.Error("releasing a pan should schedule a settle")
	}

	update(t, m, tea.MouseMsg{X: 50, Y: 18, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if got, want := view.Scale(), after.Scale*zoomStep; got != want {
		t.Errorf("wheel up scale = %v, want %v", got, want)
	}
	update(t, m, key("-"))
	if got := view.Scale(); math.Abs(got-after.Scale) > 1e-9 {
		t.Errorf("zoom out scale = %v, want %v", got, after.Scale)
	}
}

func TestViewModelHover(t *testing.T) {
	m := newTestModel(t)
	col, row := cellOf(t, m, "c")

	update(t, m, tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	for i := 0; i < 5; i++ {
		update(t, m, frameMsg(m.sc.Now().Add(16*time.Millisecond)))
	}
	if f := m.sc.HitTest().Focus(); f.ID != "c" {
		t.Fatalf("focus = %+v, want c", f)
	}
	if status := m.View(); !strings.Contains(status, "node c (gamma)") {
		t.Errorf("status line lacks the focus:\n%s", status)
	}
}

func TestViewModelKeys(t *testing.T) {
	m := newTestModel(t)

	update(t, m, key("l"))
	if m.sc.Labels().Enabled() {
		t.Error("l should toggle labels off")
	}
	update(t, m, key("f"))
	if !m.sc.Viewport().Animating() {
		t.Error("f should start an animated fit")
	}

	cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestViewModelView(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 38 {
		t.Errorf("view has %d lines, want 37 rows plus a status line", len(lines))
	}
	for _, want := range []string{"triangle.json", "3 visible", "zoom 1.00"} {
		if !strings.Contains(lines[len(lines)-1], want) {
			t.Errorf("status line lacks %q: %q", want, lines[len(lines)-1])
		}
	}
	if (&viewModel{}).View() != "" {
		t.Error("an unsized model should render nothing")
	}
}
