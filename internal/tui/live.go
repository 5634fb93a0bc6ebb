// Package tui renders a running body in the terminal: the disc as colored
// cells, per-frame counters alongside, and keys to pause, speed up and drop
// material while it runs.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/sched"
	"github.com/san-kum/orbsand/internal/world"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Terminal cells are roughly twice as tall as wide; stepping the x axis at
// half the y step keeps the disc round.
const aspect = 0.5

var brushes = []element.Element{
	element.Sand, element.Water, element.Stone, element.Lava, element.Vacuum,
}

type model struct {
	w *world.World
	s *sched.Scheduler

	paused bool
	speed  int
	brush  int

	stats  sched.FrameStats
	frames int
	err    error

	styles map[element.Element]lipgloss.Style
	glyphs map[element.Element]string

	width  int
	height int
}

// NewApp wires a world and its scheduler into a bubbletea program model.
func NewApp(w *world.World, s *sched.Scheduler) tea.Model {
	styles := make(map[element.Element]lipgloss.Style, len(element.All()))
	glyphs := make(map[element.Element]string, len(element.All()))
	for _, e := range element.All() {
		c := e.Props().Color
		styles[e] = lipgloss.NewStyle().Foreground(
			lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])))
		glyphs[e] = "█"
	}
	glyphs[element.Vacuum] = " "
	glyphs[element.Water] = "≈"
	glyphs[element.Sand] = "▒"

	return &model{
		w:      w,
		s:      s,
		speed:  1,
		styles: styles,
		glyphs: glyphs,
		width:  80,
		height: 24,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Init() tea.Cmd { return tick() }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.paused || m.err != nil {
			return m, tick()
		}
		for i := 0; i < m.speed; i++ {
			st, err := m.s.Step(context.Background())
			if err != nil {
				m.err = err
				break
			}
			m.stats = st
			m.frames++
		}
		return m, tick()
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "+", "=":
		if m.speed < 32 {
			m.speed *= 2
		}
	case "-":
		if m.speed > 1 {
			m.speed /= 2
		}
	case "tab":
		m.brush = (m.brush + 1) % len(brushes)
	case "p":
		m.drop()
	}
	return m, nil
}

// drop paints a blob of the selected brush near the top of the rim, where
// gravity will immediately pull it inward.
func (m *model) drop() {
	bound := m.w.Directory().BoundingRadius()
	cw := m.w.Directory().CellRadius()
	pt := coords.Polar{R: bound - 1.5*cw, Theta: math.Pi / 2}.ToCartesian()
	center := m.w.Center()
	_, err := m.w.Paint(coords.Point{X: pt.X + center.X, Y: pt.Y + center.Y}, 3*cw, brushes[m.brush])
	if err != nil {
		m.err = err
	}
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("orbsand"))
	b.WriteString(dim.Render(fmt.Sprintf("  frame %d  speed %dx", m.frames, m.speed)))
	if m.paused {
		b.WriteString(yellow.Render("  paused"))
	}
	b.WriteString("\n")

	canvasH := m.height - 4
	if canvasH < 4 {
		canvasH = 4
	}
	canvasW := m.width - 2
	if canvasW < 8 {
		canvasW = 8
	}
	b.WriteString(m.renderBody(canvasW, canvasH))

	b.WriteString(white.Render(fmt.Sprintf(" moves %d  transfers %d  transitions %d  brush %s",
		m.stats.Moves, m.stats.Transfers, m.stats.Transitions, brushes[m.brush])))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(red.Render(fmt.Sprintf(" error: %v", m.err)))
	} else {
		b.WriteString(dim.Render(" space pause  +/- speed  tab brush  p drop  q quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderBody samples one world position per character cell and colors it by
// the element found there.
func (m *model) renderBody(w, h int) string {
	dir := m.w.Directory()
	bound := dir.BoundingRadius()

	// World units per character row; columns advance at half that.
	step := 2 * bound / float64(h)
	if fx := 2 * bound / (float64(w) * aspect); fx > step {
		step = fx
	}

	var b strings.Builder
	for y := 0; y < h; y++ {
		b.WriteString(" ")
		for x := 0; x < w; x++ {
			px := (float64(x) - float64(w)/2) * step * aspect
			py := (float64(h)/2 - float64(y)) * step
			c, cell, err := dir.CartesianToCell(coords.Point{X: px, Y: py})
			if err != nil {
				b.WriteString(" ")
				continue
			}
			got, err := m.w.Get(c, cell)
			if err != nil {
				b.WriteString(" ")
				continue
			}
			b.WriteString(m.styles[got.Elem].Render(m.glyphs[got.Elem]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the viewer and blocks until it quits.
func Run(w *world.World, s *sched.Scheduler) error {
	p := tea.NewProgram(NewApp(w, s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
