// Package grid implements the dense cell array owned by one chunk. The grid
// is exclusively mutable by its owning chunk's worker during a frame;
// neighbors observe it only through border strips and snapshots.
package grid

import (
	"errors"
	"fmt"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
)

// ErrOutOfBounds indicates a cell index outside the grid. It signals a
// topology or coordinate-conversion bug and is never recovered.
var ErrOutOfBounds = errors.New("grid: cell index out of bounds")

// Cell is one simulated cell: an element tag plus its heat energy.
type Cell struct {
	Elem element.Element
	Heat float64
}

// Temperature derives the cell's temperature from its heat energy. Cells
// with no heat capacity (Vacuum) read as zero.
func (c Cell) Temperature(cellWidth float64) float64 {
	cap := c.Elem.HeatCapacity(cellWidth)
	if cap < element.MinHeatCapacity {
		return 0
	}
	return c.Heat / cap
}

// Grid is a fixed-size, row-major 2-D array of cells. J indexes concentric
// rows (0 = innermost), K angular columns.
type Grid struct {
	w, h    int
	cells   []Cell
	version uint64
}

// New allocates a vacuum-filled grid with the given angular width and
// radial height.
func New(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", w, h)
	}
	return &Grid{w: w, h: h, cells: make([]Cell, w*h)}, nil
}

// Width is the angular cell count.
func (g *Grid) Width() int { return g.w }

// Height is the radial cell count.
func (g *Grid) Height() int { return g.h }

// Version counts mutations. It increases on every write, so renderers can
// skip chunks whose version they have already uploaded.
func (g *Grid) Version() uint64 { return g.version }

func (g *Grid) check(c coords.CellIdx) error {
	if c.J < 0 || c.J >= g.h || c.K < 0 || c.K >= g.w {
		return fmt.Errorf("%w: %v in %dx%d grid", ErrOutOfBounds, c, g.w, g.h)
	}
	return nil
}

func (g *Grid) idx(c coords.CellIdx) int { return c.J*g.w + c.K }

// Get returns the cell at c.
func (g *Grid) Get(c coords.CellIdx) (Cell, error) {
	if err := g.check(c); err != nil {
		return Cell{}, err
	}
	return g.cells[g.idx(c)], nil
}

// MustGet is Get for indices already validated by the topology.
func (g *Grid) MustGet(c coords.CellIdx) Cell {
	cell, err := g.Get(c)
	if err != nil {
		panic(err)
	}
	return cell
}

// Set replaces the cell at c.
func (g *Grid) Set(c coords.CellIdx, cell Cell) error {
	if err := g.check(c); err != nil {
		return err
	}
	g.cells[g.idx(c)] = cell
	g.version++
	return nil
}

// SetElement relabels the cell at c without touching its heat energy, the
// primitive phase transitions use so energy is conserved across a relabel.
func (g *Grid) SetElement(c coords.CellIdx, e element.Element) error {
	if err := g.check(c); err != nil {
		return err
	}
	g.cells[g.idx(c)].Elem = e
	g.version++
	return nil
}

// AddHeat adds heat energy to the cell at c. Assigning heat to a
// zero-capacity element fails with element.ErrZeroHeatCapacity, which the
// caller is expected to treat as a skip, not a crash.
func (g *Grid) AddHeat(c coords.CellIdx, q float64, cellWidth float64) error {
	if err := g.check(c); err != nil {
		return err
	}
	i := g.idx(c)
	if g.cells[i].Elem.HeatCapacity(cellWidth) < element.MinHeatCapacity {
		return fmt.Errorf("%w: %v at %v", element.ErrZeroHeatCapacity, g.cells[i].Elem, c)
	}
	g.cells[i].Heat += q
	g.version++
	return nil
}

// Swap atomically exchanges the element and heat state of two cells, so a
// gravity move neither creates nor destroys mass or energy.
func (g *Grid) Swap(a, b coords.CellIdx) error {
	if err := g.check(a); err != nil {
		return err
	}
	if err := g.check(b); err != nil {
		return err
	}
	ia, ib := g.idx(a), g.idx(b)
	g.cells[ia], g.cells[ib] = g.cells[ib], g.cells[ia]
	g.version++
	return nil
}

// Side names one border of the grid.
type Side int

const (
	SideInner Side = iota // row j = 0, toward the body center
	SideOuter             // row j = h-1
	SideLeft              // column k = w-1, counterclockwise
	SideRight             // column k = 0
)

// BorderStrip copies the cells along one border. Inner and Outer strips are
// indexed by k, Left and Right strips by j. Neighbors build their read-only
// halo views from these copies, never from the live grid.
func (g *Grid) BorderStrip(s Side) []Cell {
	switch s {
	case SideInner:
		out := make([]Cell, g.w)
		copy(out, g.cells[:g.w])
		return out
	case SideOuter:
		out := make([]Cell, g.w)
		copy(out, g.cells[(g.h-1)*g.w:])
		return out
	case SideLeft:
		out := make([]Cell, g.h)
		for j := 0; j < g.h; j++ {
			out[j] = g.cells[j*g.w+g.w-1]
		}
		return out
	case SideRight:
		out := make([]Cell, g.h)
		for j := 0; j < g.h; j++ {
			out[j] = g.cells[j*g.w]
		}
		return out
	}
	panic(fmt.Sprintf("grid: unknown side %d", s))
}

// Snapshot is an immutable, versioned copy of a grid, handed to renderers
// and halo builders.
type Snapshot struct {
	Version uint64
	W, H    int
	Cells   []Cell
}

// Snapshot copies the full grid.
func (g *Grid) Snapshot() Snapshot {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return Snapshot{Version: g.version, W: g.w, H: g.h, Cells: cells}
}

// Get returns the cell at c from the snapshot.
func (s Snapshot) Get(c coords.CellIdx) (Cell, error) {
	if c.J < 0 || c.J >= s.H || c.K < 0 || c.K >= s.W {
		return Cell{}, fmt.Errorf("%w: %v in %dx%d snapshot", ErrOutOfBounds, c, s.W, s.H)
	}
	return s.Cells[c.J*s.W+c.K], nil
}
