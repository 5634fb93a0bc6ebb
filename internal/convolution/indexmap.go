package convolution

import "github.com/san-kum/orbsand/internal/coords"

// Direction names the four sides of a chunk. Inward points toward the body
// center; Left is counterclockwise (increasing k).
type Direction int

const (
	Inward Direction = iota
	Outward
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Inward:
		return "inward"
	case Outward:
		return "outward"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "invalid"
}

// Opposite returns the direction pointing back across the same boundary.
func (d Direction) Opposite() Direction {
	switch d {
	case Inward:
		return Outward
	case Outward:
		return Inward
	case Left:
		return Right
	default:
		return Left
	}
}

// Kind classifies the transition a boundary crossing makes.
type Kind int

const (
	// Normal is a neighbor at the same resolution: one neighbor chunk,
	// identity mapping with a radial or angular offset.
	Normal Kind = iota
	// ChunkDoubling crosses into a layer whose angular chunk count is 2x
	// (outward) or 0.5x (inward) this chunk's layer.
	ChunkDoubling
	// LayerTransition crosses a layer boundary without a chunk-count
	// change. The angular cell resolution may still double or halve.
	LayerTransition
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case ChunkDoubling:
		return "chunk-doubling"
	case LayerTransition:
		return "layer-transition"
	}
	return "invalid"
}

// IndexMap translates a cell coordinate in the source chunk's (possibly
// extended) local frame into the neighbor chunk's local frame:
//
//	k' = floor(k * Num / Den) + OffK
//	j' = j + OffJ
//
// Num/Den is 2/1 crossing into a finer layer, 1/2 into a coarser one, and
// 1/1 otherwise.
type IndexMap struct {
	Num  int
	Den  int
	OffK int
	OffJ int
}

// Identity returns the no-op map.
func Identity() IndexMap { return IndexMap{Num: 1, Den: 1} }

// Apply translates c into the neighbor's frame.
func (m IndexMap) Apply(c coords.CellIdx) coords.CellIdx {
	return coords.CellIdx{
		J: c.J + m.OffJ,
		K: floorDiv(c.K*m.Num, m.Den) + m.OffK,
	}
}

// Inverse returns the map going back across the boundary. Composing a map
// with its inverse is the identity from the coarse side; from the fine side
// it lands within one cell, since two fine cells share each coarse cell.
func (m IndexMap) Inverse() IndexMap {
	return IndexMap{
		Num:  m.Den,
		Den:  m.Num,
		OffK: -floorDiv(m.OffK*m.Den, m.Num),
		OffJ: -m.OffJ,
	}
}

// Scale reports the angular resolution ratio across the boundary: 2 into a
// finer layer, 1 at equal resolution. Downscaling maps report 1/2 via a
// false second return.
func (m IndexMap) Scale() (int, bool) {
	if m.Num >= m.Den {
		return m.Num / m.Den, true
	}
	return m.Den / m.Num, false
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
