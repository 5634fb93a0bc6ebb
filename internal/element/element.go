// Package element defines the closed set of cell materials and the static
// registry of their physical constants and update policies. Variants are
// stateless; the only mutable per-cell state is heat energy, which lives in
// the grid package.
package element

import (
	"errors"
	"fmt"
)

// Element tags the material occupying one cell. Vacuum is a valid, zero-mass
// element, not an absence.
type Element uint8

const (
	Vacuum Element = iota
	Sand
	Water
	Stone
	Lava
	SolarPlasma
	LeftFlier
	RightFlier
	DownFlier

	numElements
)

// State classifies an element's state of matter. The ordering matters:
// displacement only pushes into states at or below Liquid.
type State uint8

const (
	StateEmpty State = iota
	StateGas
	StateLiquid
	StateSolid
)

// ErrZeroHeatCapacity is returned when heat is assigned to an element that
// cannot hold it, such as Vacuum. Callers are expected to skip such cells
// rather than abort the frame.
var ErrZeroHeatCapacity = errors.New("element: cannot assign heat to zero-capacity element")

// MinHeatCapacity is the numeric floor below which a heat capacity is
// treated as zero, preventing divide-by-zero when deriving temperature.
const MinHeatCapacity = 1e-9

// RoomTemperature is the default temperature of inert surface material, in kelvin.
const RoomTemperature = 293.15

// Properties are the per-variant physical constants.
type Properties struct {
	Name                string
	Density             float64 // mass per unit cell area
	Compressibility     float64
	SpecificHeat        float64 // heat capacity per unit mass
	ThermalConductivity float64
	State               State
	DefaultTemp         float64 // kelvin, seeded at generation
	Color               [3]uint8
}

// The registry. Densities order the displacement hierarchy: anything denser
// sinks through anything lighter that is not solid. Thermal constants for
// water, lava and plasma follow the reference material set; the rest are
// chosen to keep the same relative scale.
var registry = [numElements]Properties{
	Vacuum: {
		Name:  "vacuum",
		State: StateEmpty,
		Color: [3]uint8{0, 0, 0},
	},
	Sand: {
		Name:                "sand",
		Density:             1.6,
		Compressibility:     0.01,
		SpecificHeat:        830.0,
		ThermalConductivity: 0.5,
		State:               StateSolid,
		DefaultTemp:         RoomTemperature,
		Color:               [3]uint8{237, 201, 175},
	},
	Water: {
		Name:                "water",
		Density:             1.0,
		Compressibility:     0.0,
		SpecificHeat:        830.0 / 300.0,
		ThermalConductivity: 1.0,
		State:               StateLiquid,
		DefaultTemp:         RoomTemperature,
		Color:               [3]uint8{28, 107, 222},
	},
	Stone: {
		Name:                "stone",
		Density:             2.7,
		Compressibility:     0.001,
		SpecificHeat:        840.0,
		ThermalConductivity: 1.0,
		State:               StateSolid,
		DefaultTemp:         RoomTemperature,
		Color:               [3]uint8{128, 128, 128},
	},
	Lava: {
		Name:                "lava",
		Density:             2.4,
		Compressibility:     0.001,
		SpecificHeat:        840.0,
		ThermalConductivity: 1.0,
		State:               StateLiquid,
		DefaultTemp:         1500.0,
		Color:               [3]uint8{207, 16, 32},
	},
	SolarPlasma: {
		Name:                "solar_plasma",
		Density:             100.0,
		Compressibility:     100.0,
		SpecificHeat:        0.05,
		ThermalConductivity: 100.0,
		State:               StateLiquid,
		DefaultTemp:         10000.0,
		Color:               [3]uint8{255, 220, 64},
	},
	LeftFlier: {
		Name:                "left_flier",
		Density:             1.0,
		SpecificHeat:        1.0,
		ThermalConductivity: 0.1,
		State:               StateSolid,
		DefaultTemp:         RoomTemperature,
		Color:               [3]uint8{0, 255, 128},
	},
	RightFlier: {
		Name:                "right_flier",
		Density:             1.0,
		SpecificHeat:        1.0,
		ThermalConductivity: 0.1,
		State:               StateSolid,
		DefaultTemp:         RoomTemperature,
		Color:               [3]uint8{128, 255, 0},
	},
	DownFlier: {
		Name:                "down_flier",
		Density:             1.0,
		SpecificHeat:        1.0,
		ThermalConductivity: 0.1,
		State:               StateSolid,
		DefaultTemp:         RoomTemperature,
		Color:               [3]uint8{0, 128, 255},
	},
}

var byName = func() map[string]Element {
	m := make(map[string]Element, numElements)
	for e := Element(0); e < numElements; e++ {
		m[registry[e].Name] = e
	}
	return m
}()

// All lists every element variant.
func All() []Element {
	out := make([]Element, numElements)
	for i := range out {
		out[i] = Element(i)
	}
	return out
}

// Parse resolves an element by its registry name.
func Parse(name string) (Element, error) {
	e, ok := byName[name]
	if !ok {
		return Vacuum, fmt.Errorf("element: unknown element %q", name)
	}
	return e, nil
}

// Props returns the physical constants of e. Unknown tags are a programming
// error and panic.
func (e Element) Props() Properties {
	if e >= numElements {
		panic(fmt.Sprintf("element: unknown element tag %d", e))
	}
	return registry[e]
}

func (e Element) String() string { return e.Props().Name }

// Mass is the mass of one cell of this element given the cell width.
func (e Element) Mass(cellWidth float64) float64 {
	return e.Props().Density * cellWidth * cellWidth
}

// HeatCapacity is specific heat times cell mass. Zero for Vacuum.
func (e Element) HeatCapacity(cellWidth float64) float64 {
	return e.Props().SpecificHeat * e.Mass(cellWidth)
}

// DefaultHeat is the heat energy a freshly generated cell carries.
func (e Element) DefaultHeat(cellWidth float64) float64 {
	return e.Props().DefaultTemp * e.HeatCapacity(cellWidth)
}
