package element

import "math/rand/v2"

// Move is the displacement decision for one cell in one frame. Down points
// toward the body center.
type Move uint8

const (
	MoveNone Move = iota
	MoveDown
	MoveDownLeft
	MoveDownRight
	MoveLeft
	MoveRight
	MoveUp
)

func (m Move) String() string {
	switch m {
	case MoveNone:
		return "none"
	case MoveDown:
		return "down"
	case MoveDownLeft:
		return "down-left"
	case MoveDownRight:
		return "down-right"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveUp:
		return "up"
	}
	return "invalid"
}

// Surroundings carries the elements of the cell's immediate neighborhood.
// HasDown and HasUp are false at the body's inner and outer edges.
type Surroundings struct {
	Down      Element
	Up        Element
	Left      Element
	Right     Element
	DownLeft  Element
	DownRight Element
	HasDown   bool
	HasUp     bool
}

// Displaceable reports whether e may push into a cell currently holding
// target: the target must not be solid and must be strictly less dense.
func Displaceable(e, target Element) bool {
	tp := target.Props()
	if tp.State == StateSolid {
		return false
	}
	return tp.Density < e.Props().Density
}

// DisplacementRule decides whether and where a cell of element e moves this
// frame given its surroundings. Solids fall into a lower, less-dense
// neighbor; liquids additionally flow laterally; fliers move in their fixed
// direction regardless of gravity. Vacuum and Stone never initiate movement
// but may be displaced. The rng breaks left/right ties so piles spread
// symmetrically over time.
func DisplacementRule(e Element, s Surroundings, rng *rand.Rand) Move {
	switch e {
	case Vacuum, Stone:
		return MoveNone
	case DownFlier:
		if s.HasDown && Displaceable(e, s.Down) {
			return MoveDown
		}
		return MoveNone
	case LeftFlier:
		if Displaceable(e, s.Left) {
			return MoveLeft
		}
		return MoveNone
	case RightFlier:
		if Displaceable(e, s.Right) {
			return MoveRight
		}
		return MoveNone
	}

	switch e.Props().State {
	case StateSolid:
		return fallRule(e, s, rng)
	case StateLiquid:
		if m := fallRule(e, s, rng); m != MoveNone {
			return m
		}
		return flowRule(e, s, rng)
	}
	return MoveNone
}

func fallRule(e Element, s Surroundings, rng *rand.Rand) Move {
	if !s.HasDown {
		return MoveNone
	}
	if Displaceable(e, s.Down) {
		return MoveDown
	}
	first, second := MoveDownLeft, MoveDownRight
	firstOK, secondOK := Displaceable(e, s.DownLeft), Displaceable(e, s.DownRight)
	if rng.IntN(2) == 0 {
		first, second = second, first
		firstOK, secondOK = secondOK, firstOK
	}
	if firstOK {
		return first
	}
	if secondOK {
		return second
	}
	return MoveNone
}

func flowRule(e Element, s Surroundings, rng *rand.Rand) Move {
	first, second := MoveLeft, MoveRight
	firstOK, secondOK := Displaceable(e, s.Left), Displaceable(e, s.Right)
	if rng.IntN(2) == 0 {
		first, second = second, first
		firstOK, secondOK = secondOK, firstOK
	}
	if firstOK {
		return first
	}
	if secondOK {
		return second
	}
	return MoveNone
}
