package coords

import (
	"fmt"
	"math"
)

// Point is a Cartesian position in world units, origin at the body center.
type Point struct {
	X float64
	Y float64
}

// Polar is a position expressed as radius and angle. Theta grows
// counterclockwise and is interpreted modulo 2π.
type Polar struct {
	R     float64
	Theta float64
}

// ToPolar converts the point to polar form. Theta is normalized to [0, 2π).
func (p Point) ToPolar() Polar {
	theta := math.Atan2(p.Y, p.X)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return Polar{R: math.Hypot(p.X, p.Y), Theta: theta}
}

// ToCartesian converts the polar position back to Cartesian form.
func (p Polar) ToCartesian() Point {
	return Point{X: p.R * math.Cos(p.Theta), Y: p.R * math.Sin(p.Theta)}
}

// Normalize returns the same position with Theta wrapped into [0, 2π).
func (p Polar) Normalize() Polar {
	theta := math.Mod(p.Theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return Polar{R: p.R, Theta: theta}
}

// CellIdx addresses a cell inside one chunk. J indexes the concentric row
// (0 = innermost row of the chunk), K the angular column (counterclockwise).
type CellIdx struct {
	J int
	K int
}

func (c CellIdx) String() string {
	return fmt.Sprintf("(j=%d,k=%d)", c.J, c.K)
}

// ChunkIdx addresses a chunk inside the directory. I is the layer,
// J the radial sub-chunk within the layer, K the angular chunk.
type ChunkIdx struct {
	I int
	J int
	K int
}

func (c ChunkIdx) String() string {
	return fmt.Sprintf("(i=%d,j=%d,k=%d)", c.I, c.J, c.K)
}
