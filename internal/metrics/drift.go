package metrics

import (
	"math"

	"github.com/san-kum/orbsand/internal/world"
)

// HeatDrift tracks the worst relative deviation of total heat from its value
// at the first observed frame. Anything measurably above zero points at a
// conservation bug in the frame passes.
type HeatDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewHeatDrift() *HeatDrift {
	return &HeatDrift{name: "heat_drift"}
}

func (m *HeatDrift) Name() string { return m.name }

func (m *HeatDrift) Observe(w *world.World, frame int) {
	heat := w.TotalHeat()
	if m.samples == 0 {
		m.initial = heat
	}
	m.samples++

	if m.initial != 0 {
		drift := math.Abs(heat-m.initial) / math.Abs(m.initial)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *HeatDrift) Value() float64 { return m.maxDrift }

func (m *HeatDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// MassDrift is HeatDrift for total mass. Phase transitions legitimately move
// it, so this measures how much the body has transmuted, not a bug.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMassDrift() *MassDrift {
	return &MassDrift{name: "mass_drift"}
}

func (m *MassDrift) Name() string { return m.name }

func (m *MassDrift) Observe(w *world.World, frame int) {
	mass := w.TotalMass()
	if m.samples == 0 {
		m.initial = mass
	}
	m.samples++

	if m.initial != 0 {
		drift := math.Abs(mass-m.initial) / math.Abs(m.initial)
		m.maxDrift = math.Max(m.maxDrift, drift)
	}
}

func (m *MassDrift) Value() float64 { return m.maxDrift }

func (m *MassDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
