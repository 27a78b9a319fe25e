package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/servolab/servosim/internal/sim"
)

const (
	dialWidth  = 41
	dialHeight = 21
	trailLen   = 30
)

type TickMsg time.Time

// Model replays a finished run record by record. It never advances the
// simulation itself; everything shown comes from the recorded trace.
type Model struct {
	res      *sim.Result
	playhead int
	playing  bool
	errs     []float64
	canvas   [][]rune
}

func NewModel(res *sim.Result) Model {
	canvas := make([][]rune, dialHeight)
	for i := range canvas {
		canvas[i] = make([]rune, dialWidth)
	}
	return Model{
		res:     res,
		playing: true,
		errs:    res.Series(func(r sim.TraceRecord) float64 { return r.Error }),
		canvas:  canvas,
	}
}

// Run replays the result in an alternate-screen TUI until the user
// quits.
func Run(res *sim.Result) error {
	_, err := tea.NewProgram(NewModel(res), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.playhead = 0
			m.playing = true
		case "left":
			m.playing = false
			if m.playhead > 0 {
				m.playhead--
			}
		case "right":
			m.playing = false
			if m.playhead < len(m.res.Records)-1 {
				m.playhead++
			}
		}
	case TickMsg:
		if m.playing && m.playhead < len(m.res.Records)-1 {
			m.playhead++
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.res.Records) == 0 {
		return "no trace"
	}
	rec := m.res.Records[m.playhead]

	m.drawDial(rec)
	canvasView := canvasStyle.Render(m.canvasString())

	var s strings.Builder
	s.WriteString(headerStyle.Render("SERVO REPLAY") + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if m.playhead > 0 {
		chart := asciigraph.Plot(m.errs[:m.playhead+1],
			asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("error (deg)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	rows := []struct {
		label string
		value string
	}{
		{"Time", fmt.Sprintf("%.3f s", rec.Time)},
		{"Actual", fmt.Sprintf("%.2f°", rec.Actual)},
		{"Measured", fmt.Sprintf("%.2f°", rec.Measured)},
		{"Target", fmt.Sprintf("%.2f°", rec.Target)},
		{"Error", fmt.Sprintf("%.2f°", rec.Error)},
		{"Control", fmt.Sprintf("%.2f", rec.Control)},
		{"Voltage", fmt.Sprintf("%.3f V", rec.Voltage)},
		{"Velocity", fmt.Sprintf("%.1f°/s", rec.Velocity)},
		{"Count", fmt.Sprintf("%d", rec.Count)},
	}
	for _, row := range rows {
		s.WriteString(labelStyle.Render(row.label) + valueStyle.Render(row.value) + "\n")
	}
	s.WriteString(helpStyle.Render("space:pause  left/right:scrub  r:restart  q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func (m Model) statusLine() string {
	total := len(m.res.Records) - 1
	switch {
	case m.playhead == total:
		if m.res.Status == sim.Converged {
			return doneStyle.Render(m.res.Status.String())
		}
		return failStyle.Render(m.res.Status.String())
	case m.playing:
		return playingStyle.Render(fmt.Sprintf("PLAYING %d/%d", m.playhead, total))
	default:
		return labelStyle.Render(fmt.Sprintf("PAUSED %d/%d", m.playhead, total))
	}
}

// drawDial renders the shaft angle as a dial: a dotted ring, a needle
// at the true position, a trail of recent positions and a target mark.
func (m *Model) drawDial(rec sim.TraceRecord) {
	m.clear()

	cx, cy := dialWidth/2, dialHeight/2
	rx, ry := float64(cx-2), float64(cy-1)

	for deg := 0; deg < 360; deg += 10 {
		x, y := dialPoint(cx, cy, rx, ry, float64(deg))
		m.set(x, y, '.')
	}

	start := m.playhead - trailLen
	if start < 0 {
		start = 0
	}
	for i := start; i < m.playhead; i++ {
		x, y := dialPoint(cx, cy, rx, ry, m.res.Records[i].Actual)
		m.set(x, y, 'o')
	}

	tx, ty := dialPoint(cx, cy, rx, ry, rec.Target)
	m.set(tx, ty, 'T')

	nx, ny := dialPoint(cx, cy, rx, ry, rec.Actual)
	m.line(cx, cy, nx, ny, '*')
	m.set(nx, ny, 'O')
	m.set(cx, cy, '+')
}

// dialPoint maps an angle in degrees to dial coordinates, 0° to the
// right, counterclockwise positive. The vertical radius is halved by
// the cell aspect ratio.
func dialPoint(cx, cy int, rx, ry, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	return cx + int(math.Round(rx*math.Cos(rad))), cy - int(math.Round(ry*math.Sin(rad)))
}

func (m *Model) clear() {
	for y := range m.canvas {
		for x := range m.canvas[y] {
			m.canvas[y][x] = ' '
		}
	}
}

func (m *Model) set(x, y int, c rune) {
	if x >= 0 && x < dialWidth && y >= 0 && y < dialHeight {
		m.canvas[y][x] = c
	}
}

func (m *Model) line(x1, y1, x2, y2 int, c rune) {
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		m.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (m Model) canvasString() string {
	var b strings.Builder
	for i, row := range m.canvas {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
