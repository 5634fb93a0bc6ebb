// Package metrics provides per-frame world observations for the scheduler's
// metric hook: conserved totals, their relative drift over a run, and
// element population counts.
package metrics

import (
	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/world"
)

// TotalMass tracks the body's mass. Displacement and diffusion leave it
// untouched; phase transitions relabel material and may move it.
type TotalMass struct {
	name  string
	value float64
}

func NewTotalMass() *TotalMass {
	return &TotalMass{name: "total_mass"}
}

func (m *TotalMass) Name() string { return m.name }

func (m *TotalMass) Observe(w *world.World, frame int) { m.value = w.TotalMass() }

func (m *TotalMass) Value() float64 { return m.value }

func (m *TotalMass) Reset() { m.value = 0 }

// TotalHeat tracks the body's heat energy, which every pass conserves.
type TotalHeat struct {
	name  string
	value float64
}

func NewTotalHeat() *TotalHeat {
	return &TotalHeat{name: "total_heat"}
}

func (m *TotalHeat) Name() string { return m.name }

func (m *TotalHeat) Observe(w *world.World, frame int) { m.value = w.TotalHeat() }

func (m *TotalHeat) Value() float64 { return m.value }

func (m *TotalHeat) Reset() { m.value = 0 }

// ElementCount tracks how many cells currently hold one element.
type ElementCount struct {
	name string
	elem element.Element
	n    int
}

func NewElementCount(e element.Element) *ElementCount {
	return &ElementCount{name: "count_" + e.String(), elem: e}
}

func (m *ElementCount) Name() string { return m.name }

func (m *ElementCount) Observe(w *world.World, frame int) {
	n := 0
	for _, c := range w.Directory().Chunks() {
		g, err := w.Chunk(c)
		if err != nil {
			continue
		}
		for j := 0; j < g.Height(); j++ {
			for k := 0; k < g.Width(); k++ {
				if g.MustGet(coords.CellIdx{J: j, K: k}).Elem == m.elem {
					n++
				}
			}
		}
	}
	m.n = n
}

func (m *ElementCount) Value() float64 { return float64(m.n) }

func (m *ElementCount) Reset() { m.n = 0 }
