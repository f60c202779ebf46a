package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/scene"
)

const (
	// frameInterval paces the relaxation animation.
	frameInterval = 33 * time.Millisecond

	// nudgeRelease ends a keyboard drag after this long without arrow keys.
	nudgeRelease = 400 * time.Millisecond

	// nudgeCells is the distance of one arrow press, in canvas cells.
	nudgeCells = 1.0

	// labelNotch is the label rotation of one bracket press, in degrees.
	labelNotch = 15.0
)

// Canvas styles
var (
	canvasNodeStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	canvasVertexStyle   = lipgloss.NewStyle().Foreground(colorGray)
	canvasEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	canvasSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	canvasLabelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	viewerHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	viewerBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// =============================================================================
// ViewerModel - Interactive scene viewer
// =============================================================================

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ViewerModel is the bubbletea model for the scene viewer. It owns the
// controller and drives its relaxation from the frame ticker.
type ViewerModel struct {
	Ctrl  *scene.Controller
	Doc   *document.Document
	Saved bool

	save func(*document.Document) error

	width, height int
	cursor        int
	status        string

	// Keyboard drag state.
	pointer   r2.Vec
	lastNudge time.Time
	lastFrame time.Time
}

// NewViewerModel creates a viewer for ctrl. save persists the updated
// document when the user asks for it.
func NewViewerModel(ctrl *scene.Controller, doc *document.Document, save func(*document.Document) error) ViewerModel {
	return ViewerModel{
		Ctrl:   ctrl,
		Doc:    doc,
		save:   save,
		width:  80,
		height: 24,
		cursor: -1,
	}
}

func (m ViewerModel) Init() tea.Cmd {
	return tick()
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if _, dragging := m.Ctrl.Dragging(); dragging && now.Sub(m.lastNudge) > nudgeRelease {
			m.report(m.Ctrl.EndDrag())
		}
		dt := frameInterval
		if !m.lastFrame.IsZero() {
			dt = now.Sub(m.lastFrame)
		}
		m.lastFrame = now
		m.Ctrl.Advance(dt)
		return m, tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m ViewerModel) key(k string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch k {
	case "q", "ctrl+c", "esc":
		m.Ctrl.Stop()
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "up", "k":
		m.nudge(0, -1)
	case "down", "j":
		m.nudge(0, 1)
	case "left", "h":
		m.nudge(-1, 0)
	case "right", "l":
		m.nudge(1, 0)
	case "[":
		m.rotateLabel(-1)
	case "]":
		m.rotateLabel(1)
	case " ":
		if m.Ctrl.State() == scene.Relaxing {
			m.Ctrl.Stop()
		} else {
			m.Ctrl.Relax()
		}
	case "R":
		m.Ctrl.Relayout()
		m.status = "relayout"
	case "u":
		m.report(m.Ctrl.Undo())
	case "U", "ctrl+r":
		m.report(m.Ctrl.Redo())
	case "d", "delete":
		m.report(m.Ctrl.DeleteSelection())
	case "c":
		m.Ctrl.ClearSelection()
		m.cursor = -1
	case "s":
		m.Ctrl.Stop()
		m.Doc.Update(m.Ctrl)
		if err := m.save(m.Doc); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.Saved = true
			m.status = "saved"
		}
	}
	return m, nil
}

// cycle moves the keyboard selection through the nodes.
func (m *ViewerModel) cycle(dir int) {
	ids := m.Ctrl.Network().NodeIDs()
	if len(ids) == 0 {
		return
	}
	m.cursor = ((m.cursor+dir)%len(ids) + len(ids)) % len(ids)
	m.report(m.Ctrl.Select(scene.NodeRef(ids[m.cursor])))
}

// nudge drags the selected node by one canvas cell. Consecutive presses
// extend the same drag, so a run of nudges is undone as one move.
func (m *ViewerModel) nudge(dx, dy float64) {
	ids := m.Ctrl.SelectedNodes()
	if len(ids) != 1 {
		m.status = "select one node to move it"
		return
	}
	ref := scene.NodeRef(ids[0])
	if cur, dragging := m.Ctrl.Dragging(); !dragging || cur != ref {
		m.pointer = m.Ctrl.Network().Node(ids[0]).Pos
		if err := m.Ctrl.BeginDrag(ref, m.pointer); err != nil {
			m.report(err)
			return
		}
	}
	w, h := m.canvasSize()
	step := nudgeCells / canvasScale(m.Ctrl.Snapshot().Bounds, w, h)
	// Cells are twice as tall as wide.
	m.pointer = r2.Add(m.pointer, r2.Vec{X: dx * step, Y: dy * 2 * step})
	m.lastNudge = time.Now()
	m.report(m.Ctrl.DragTo(m.pointer))
}

// rotateLabel turns the label of the selected node by one notch.
func (m *ViewerModel) rotateLabel(dir float64) {
	ids := m.Ctrl.SelectedNodes()
	if len(ids) != 1 {
		m.status = "select one node to rotate its label"
		return
	}
	l := m.Ctrl.Network().Node(ids[0]).Label
	m.report(m.Ctrl.RotateLabel(scene.NodeLabelRef(ids[0]), math.Mod(l.Rotation+dir*labelNotch, 360)))
}

func (m *ViewerModel) report(err error) {
	if err != nil {
		m.status = errors.UserMessage(err)
	}
}

func (m ViewerModel) View() string {
	var b strings.Builder

	title := m.Doc.Title
	if title == "" {
		title = m.Doc.ID
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	snap := m.Ctrl.Snapshot()
	w, h := m.canvasSize()
	b.WriteString(viewerBorderStyle.Render(strings.Join(drawCanvas(snap, w, h), "\n")))
	b.WriteString("\n")

	undo, redo := m.Ctrl.History()
	status := fmt.Sprintf("%s · %d iterations · %d selected · undo %d · redo %d",
		m.Ctrl.State(), m.Ctrl.Iterations(), len(snap.Selection), len(undo), len(redo))
	if m.status != "" {
		status += " · " + m.status
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")
	b.WriteString(viewerHelpStyle.Render("tab select  ←↑↓→ move  [/] turn label  space relax  R relayout  u/U undo/redo  d delete  s save  q quit"))
	return b.String()
}

// canvasSize is the drawing area inside the border, title and status lines.
func (m ViewerModel) canvasSize() (w, h int) {
	return max(m.width-2, 10), max(m.height-6, 5)
}

// canvasScale maps world units to columns so that bounds fit w×h cells.
// Rows are twice as tall as columns are wide.
func canvasScale(bounds r2.Box, w, h int) float64 {
	size := r2.Sub(bounds.Max, bounds.Min)
	scale := math.Inf(1)
	if size.X > 0 {
		scale = float64(w-1) / size.X
	}
	if size.Y > 0 {
		scale = math.Min(scale, 2*float64(h-1)/size.Y)
	}
	if math.IsInf(scale, 1) {
		return 1
	}
	return scale
}

// drawCanvas plots the snapshot into w×h terminal cells.
func drawCanvas(snap scene.Snapshot, w, h int) []string {
	cells := make([][]string, h)
	for y := range cells {
		cells[y] = make([]string, w)
		for x := range cells[y] {
			cells[y][x] = " "
		}
	}

	origin, scale := snap.Bounds.Min, canvasScale(snap.Bounds, w, h)
	cell := func(p r2.Vec) (int, int, bool) {
		x := int(math.Round((p.X - origin.X) * scale))
		y := int(math.Round((p.Y - origin.Y) * scale / 2))
		return x, y, x >= 0 && x < w && y >= 0 && y < h
	}
	put := func(p r2.Vec, s string) {
		if x, y, ok := cell(p); ok {
			cells[y][x] = s
		}
	}

	for _, e := range snap.Edges {
		if e.Hidden {
			continue
		}
		style := canvasEdgeStyle
		if e.Selected {
			style = canvasSelectedStyle
		}
		n := int(e.Visible.Length()*scale) + 2
		for i := 0; i <= n; i++ {
			put(e.Visible.At(float64(i)/float64(n)), style.Render("·"))
		}
	}

	for _, node := range snap.Nodes {
		glyph, style := "●", canvasNodeStyle
		if node.Vertex {
			glyph, style = "•", canvasVertexStyle
		}
		if node.Selected {
			style = canvasSelectedStyle
		}
		put(node.Pos, style.Render(glyph))
		if node.Vertex {
			continue
		}
		// Label to the right where the row is free.
		x, y, ok := cell(node.Pos)
		if !ok {
			continue
		}
		for i, r := range node.ID {
			cx := x + 1 + i
			if cx >= w || cells[y][cx] != " " {
				break
			}
			cells[y][cx] = canvasLabelStyle.Render(string(r))
		}
	}

	rows := make([]string, h)
	for y := range cells {
		rows[y] = strings.Join(cells[y], "")
	}
	return rows
}
