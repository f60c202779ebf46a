package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/scene"
)

func viewer(t *testing.T) (ViewerModel, *[]*document.Document) {
	t.Helper()
	c := settledScene(t)
	var saved []*document.Document
	m := NewViewerModel(c, document.New(c, "test"), func(d *document.Document) error {
		saved = append(saved, d)
		return nil
	})
	return m, &saved
}

func press(t *testing.T, m ViewerModel, keys ...tea.KeyMsg) ViewerModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ViewerModel)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestViewerSelectCycles(t *testing.T) {
	m, _ := viewer(t)
	ids := m.Ctrl.Network().NodeIDs()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Ctrl.SelectedNodes(); len(got) != 1 || got[0] != ids[0] {
		t.Fatalf("selection = %v, want [%s]", got, ids[0])
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := m.Ctrl.SelectedNodes(); len(got) != 1 || got[0] != ids[len(ids)-1] {
		t.Errorf("selection = %v, want wrap to [%s]", got, ids[len(ids)-1])
	}
	m = press(t, m, runes("c"))
	if len(m.Ctrl.Selection()) != 0 {
		t.Error("c should clear the selection")
	}
}

func TestViewerNudgeIsOneUndoableMove(t *testing.T) {
	m, _ := viewer(t)
	before := m.Ctrl.Network().Positions()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown})
	if _, dragging := m.Ctrl.Dragging(); !dragging {
		t.Fatal("arrow keys should drag the selected node")
	}

	// A frame after the release delay ends the drag.
	next, _ := m.Update(tickMsg(time.Now().Add(time.Second)))
	m = next.(ViewerModel)
	if _, dragging := m.Ctrl.Dragging(); dragging {
		t.Fatal("drag should end after the release delay")
	}
	m.Ctrl.Settle(100000)

	if undo, _ := m.Ctrl.History(); len(undo) != 1 {
		t.Fatalf("history = %v, want a single move", undo)
	}
	m = press(t, m, runes("u"))
	for id, p := range m.Ctrl.Network().Positions() {
		if r2.Norm(r2.Sub(p, before[id])) > 1e-9 {
			t.Errorf("%s at %v after undo, want %v", id, p, before[id])
		}
	}
}

func TestViewerTurnsLabel(t *testing.T) {
	m, _ := viewer(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("]"), runes("]"), runes("["))
	id := m.Ctrl.SelectedNodes()[0]
	if got := m.Ctrl.Network().Node(id).Label.Rotation; got != labelNotch {
		t.Fatalf("rotation = %v, want %v", got, labelNotch)
	}
	if undo, _ := m.Ctrl.History(); len(undo) != 3 || undo[2] != "Rotate label" {
		t.Errorf("history = %v", undo)
	}
	m = press(t, m, runes("c"), runes("]"))
	if m.status == "" {
		t.Error("status should explain why nothing turned")
	}
}

func TestViewerNudgeNeedsSelection(t *testing.T) {
	m, _ := viewer(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if _, dragging := m.Ctrl.Dragging(); dragging {
		t.Error("nothing selected, nothing to drag")
	}
	if m.status == "" {
		t.Error("status should explain why nothing moved")
	}
}

func TestViewerRelaxToggle(t *testing.T) {
	m, _ := viewer(t)
	m = press(t, m, runes(" "))
	if m.Ctrl.State() != scene.Relaxing {
		t.Fatal("space should start relaxing")
	}
	m = press(t, m, runes(" "))
	if m.Ctrl.State() != scene.Static {
		t.Error("space should stop relaxing")
	}
}

func TestViewerSave(t *testing.T) {
	m, saved := viewer(t)
	m = press(t, m, runes("s"))
	if !m.Saved || len(*saved) != 1 {
		t.Fatalf("saved = %v, calls = %d", m.Saved, len(*saved))
	}
	if got := len((*saved)[0].Nodes); got != 3 {
		t.Errorf("saved %d nodes, want 3", got)
	}
}

func TestViewerDeleteAndUndo(t *testing.T) {
	m, _ := viewer(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyTab}, runes("d"))
	m.Ctrl.Settle(100000)
	if got := m.Ctrl.Network().Len(); got != 2 {
		t.Fatalf("nodes = %d, want 2", got)
	}
	m = press(t, m, runes("u"))
	if got := m.Ctrl.Network().Len(); got != 3 {
		t.Errorf("nodes after undo = %d, want 3", got)
	}
	m = press(t, m, runes("U"))
	if got := m.Ctrl.Network().Len(); got != 2 {
		t.Errorf("nodes after redo = %d, want 2", got)
	}
}

func TestViewerView(t *testing.T) {
	m, _ := viewer(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(ViewerModel)
	out := m.View()
	for _, want := range []string{"test", "static", "●", "undo 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestDrawCanvas(t *testing.T) {
	snap := scene.Snapshot{
		Bounds: r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 100, Y: 50}},
		Nodes: []scene.NodeView{
			{ID: "A", Pos: r2.Vec{X: 0, Y: 0}},
			{ID: "v", Pos: r2.Vec{X: 100, Y: 50}, Vertex: true},
		},
	}
	rows := drawCanvas(snap, 21, 6)
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}
	if !strings.HasPrefix(rows[0], "●") || !strings.Contains(rows[0], "A") {
		t.Errorf("top-left node missing: %q", rows[0])
	}
	if !strings.HasSuffix(rows[5], "•") {
		t.Errorf("bottom-right vertex missing: %q", rows[5])
	}
}

func TestCanvasScale(t *testing.T) {
	tests := []struct {
		name   string
		bounds r2.Box
		want   float64
	}{
		{"width bound", r2.Box{Max: r2.Vec{X: 100, Y: 10}}, 0.2},
		{"height bound", r2.Box{Max: r2.Vec{X: 10, Y: 100}}, 0.1},
		{"degenerate", r2.Box{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canvasScale(tt.bounds, 21, 6); got != tt.want {
				t.Errorf("canvasScale = %v, want %v", got, tt.want)
			}
		})
	}
}
