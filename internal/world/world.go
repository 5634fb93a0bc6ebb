// Package world assembles the topology directory and the per-chunk grids
// into one simulated body, and owns the operations that cross chunk
// boundaries: generation, painting, cross-chunk swaps and render snapshots.
package world

import (
	"errors"
	"fmt"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/grid"
)

// ErrUnknownChunk indicates a chunk index with no backing grid.
var ErrUnknownChunk = errors.New("world: unknown chunk")

// World is one simulated body: an immutable topology plus the mutable cell
// grids of every chunk. The body sits at a movable center in world space so
// multiple bodies can share a scene.
type World struct {
	dir    *coords.Directory
	chunks map[coords.ChunkIdx]*grid.Grid
	center coords.Point
}

// New allocates a vacuum-filled body over the given topology.
func New(dir *coords.Directory) (*World, error) {
	chunks := make(map[coords.ChunkIdx]*grid.Grid, dir.NumChunks())
	for _, c := range dir.Chunks() {
		l := dir.MustLayer(c.I)
		g, err := grid.New(l.ChunkWidth(), l.ChunkHeight())
		if err != nil {
			return nil, fmt.Errorf("world: chunk %v: %w", c, err)
		}
		chunks[c] = g
	}
	return &World{dir: dir, chunks: chunks}, nil
}

// Directory returns the body's topology.
func (w *World) Directory() *coords.Directory { return w.dir }

// Center returns the body's position in world space.
func (w *World) Center() coords.Point { return w.center }

// SetCenter moves the body. Cell contents are untouched; only the world-space
// anchor changes.
func (w *World) SetCenter(p coords.Point) { w.center = p }

// Chunk returns the live grid of chunk c. The scheduler hands it to exactly
// one worker per frame; everyone else must go through Snapshot.
func (w *World) Chunk(c coords.ChunkIdx) (*grid.Grid, error) {
	g, ok := w.chunks[c]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownChunk, c)
	}
	return g, nil
}

// Get reads one cell.
func (w *World) Get(c coords.ChunkIdx, cell coords.CellIdx) (grid.Cell, error) {
	g, err := w.Chunk(c)
	if err != nil {
		return grid.Cell{}, err
	}
	return g.Get(cell)
}

// Set writes one cell.
func (w *World) Set(c coords.ChunkIdx, cell coords.CellIdx, v grid.Cell) error {
	g, err := w.Chunk(c)
	if err != nil {
		return err
	}
	return g.Set(cell, v)
}

// SwapAcross exchanges two cells that may live in different chunks. Within
// one chunk it degrades to the grid's atomic swap.
func (w *World) SwapAcross(ca coords.ChunkIdx, cellA coords.CellIdx, cb coords.ChunkIdx, cellB coords.CellIdx) error {
	ga, err := w.Chunk(ca)
	if err != nil {
		return err
	}
	if ca == cb {
		return ga.Swap(cellA, cellB)
	}
	gb, err := w.Chunk(cb)
	if err != nil {
		return err
	}
	a, err := ga.Get(cellA)
	if err != nil {
		return err
	}
	b, err := gb.Get(cellB)
	if err != nil {
		return err
	}
	if err := ga.Set(cellA, b); err != nil {
		return err
	}
	return gb.Set(cellB, a)
}

// AtWorld reads the cell containing a world-space point.
func (w *World) AtWorld(p coords.Point) (grid.Cell, error) {
	c, cell, err := w.dir.CartesianToCell(coords.Point{X: p.X - w.center.X, Y: p.Y - w.center.Y})
	if err != nil {
		return grid.Cell{}, err
	}
	return w.Get(c, cell)
}

// Paint fills every cell whose center lies within radius of the world-space
// point p with freshly generated material, and reports how many cells it
// touched. Points outside the body are simply not covered; painting near the
// rim touches only the cells that exist.
func (w *World) Paint(p coords.Point, radius float64, e element.Element) (int, error) {
	if radius < 0 {
		return 0, fmt.Errorf("world: negative brush radius %f", radius)
	}
	local := coords.Point{X: p.X - w.center.X, Y: p.Y - w.center.Y}
	pol := local.ToPolar()

	cw := w.dir.CellRadius()
	painted := 0
	for i := 0; i < w.dir.NumLayers(); i++ {
		l := w.dir.MustLayer(i)
		if l.EndRadius < pol.R-radius || l.StartRadius > pol.R+radius {
			continue
		}
		for row := 0; row < l.ConcentricCircles; row++ {
			r := l.StartRadius + (float64(row)+0.5)*cw
			if r < pol.R-radius || r > pol.R+radius {
				continue
			}
			for col := 0; col < l.RadialLines; col++ {
				c := coords.ChunkIdx{I: i, J: row / l.ChunkHeight(), K: col / l.ChunkWidth()}
				cell := coords.CellIdx{J: row % l.ChunkHeight(), K: col % l.ChunkWidth()}
				pt, err := w.dir.CellToCartesian(c, cell)
				if err != nil {
					return painted, err
				}
				dx, dy := pt.X-local.X, pt.Y-local.Y
				if dx*dx+dy*dy > radius*radius {
					continue
				}
				if err := w.Set(c, cell, grid.Cell{Elem: e, Heat: e.DefaultHeat(cw)}); err != nil {
					return painted, err
				}
				painted++
			}
		}
	}
	return painted, nil
}

// TotalMass sums the mass of every non-vacuum cell.
func (w *World) TotalMass() float64 {
	cw := w.dir.CellRadius()
	total := 0.0
	for _, g := range w.chunks {
		for j := 0; j < g.Height(); j++ {
			for k := 0; k < g.Width(); k++ {
				total += g.MustGet(coords.CellIdx{J: j, K: k}).Elem.Mass(cw)
			}
		}
	}
	return total
}

// TotalHeat sums the heat energy of every cell.
func (w *World) TotalHeat() float64 {
	total := 0.0
	for _, g := range w.chunks {
		for j := 0; j < g.Height(); j++ {
			for k := 0; k < g.Width(); k++ {
				total += g.MustGet(coords.CellIdx{J: j, K: k}).Heat
			}
		}
	}
	return total
}

// Versions reports the current mutation counter of every chunk. Renderers
// diff against it to re-upload only chunks that changed.
func (w *World) Versions() map[coords.ChunkIdx]uint64 {
	out := make(map[coords.ChunkIdx]uint64, len(w.chunks))
	for c, g := range w.chunks {
		out[c] = g.Version()
	}
	return out
}

// Snapshot copies one chunk's grid.
func (w *World) Snapshot(c coords.ChunkIdx) (grid.Snapshot, error) {
	g, err := w.Chunk(c)
	if err != nil {
		return grid.Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// ChangedSince lists the chunks whose version moved past the given baseline.
// Chunks missing from the baseline are always reported.
func (w *World) ChangedSince(baseline map[coords.ChunkIdx]uint64) []coords.ChunkIdx {
	var out []coords.ChunkIdx
	for _, c := range w.dir.Chunks() {
		if v, ok := baseline[c]; !ok || w.chunks[c].Version() != v {
			out = append(out, c)
		}
	}
	return out
}
