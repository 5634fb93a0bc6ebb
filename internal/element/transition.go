package element

// Phase transition thresholds, in kelvin. Lava solidifies below its
// transition point; stone and sand melt well above it so material does not
// flicker between phases at the boundary temperature.
const (
	LavaSolidifyTemp   = 1000.0
	StoneMeltTemp      = 1200.0
	SandMeltTemp       = 1700.0
	PlasmaCondenseTemp = 3000.0
)

// TransitionRule returns the element a cell at the given temperature
// relabels to, or ok=false when no transition applies. Heat energy is never
// changed by a transition; only the tag is.
func TransitionRule(e Element, tempK float64) (Element, bool) {
	switch e {
	case Lava:
		if tempK < LavaSolidifyTemp {
			return Stone, true
		}
	case Stone:
		if tempK > StoneMeltTemp {
			return Lava, true
		}
	case Sand:
		if tempK > SandMeltTemp {
			return Lava, true
		}
	case SolarPlasma:
		if tempK < PlasmaCondenseTemp {
			return Lava, true
		}
	}
	return e, false
}
