package sched

import (
	"github.com/san-kum/orbsand/internal/convolution"
	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/grid"
)

// cellRef addresses one cell anywhere in the body.
type cellRef struct {
	chunk coords.ChunkIdx
	cell  coords.CellIdx
}

// haloEntry is one neighbor's border strip plus the index map into its frame.
type haloEntry struct {
	chunk coords.ChunkIdx
	mp    convolution.IndexMap
	strip []grid.Cell
	w, h  int
}

// halo is the read-only one-cell rim around a chunk, assembled from the
// border strips of its neighbors. Strips are copies taken before the pass
// mutates anything, so every worker sees the same pre-pass rim.
type halo struct {
	w, h  int
	sides [4][]haloEntry
}

// The border of the neighbor that faces us, per direction of travel.
var facingSide = [4]grid.Side{
	convolution.Inward:  grid.SideOuter,
	convolution.Outward: grid.SideInner,
	convolution.Left:    grid.SideRight,
	convolution.Right:   grid.SideLeft,
}

var allDirections = [4]convolution.Direction{
	convolution.Inward, convolution.Outward, convolution.Left, convolution.Right,
}

// buildHalos captures the rim of every chunk. It runs before a mutation pass,
// while all grids are quiescent, so concurrent strip copies are safe.
func (s *Scheduler) buildHalos() ([]*halo, error) {
	halos := make([]*halo, len(s.chunks))
	errs := make([]error, len(s.chunks))
	s.parallel(func(i int, c coords.ChunkIdx) {
		g := s.grids[i]
		h := &halo{w: g.Width(), h: g.Height()}
		for _, d := range allDirections {
			nbs, err := s.nh.Neighbors(c, d)
			if err != nil {
				errs[i] = err
				return
			}
			for _, nb := range nbs {
				ng := s.grids[s.chunkPos[nb.Chunk]]
				h.sides[d] = append(h.sides[d], haloEntry{
					chunk: nb.Chunk,
					mp:    nb.Map,
					strip: ng.BorderStrip(facingSide[d]),
					w:     ng.Width(),
					h:     ng.Height(),
				})
			}
		}
		halos[i] = h
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return halos, nil
}

// lookup resolves a coordinate one step outside the chunk. It fails at the
// body's inner and outer edges and at corners that cross two boundaries at
// once.
func (h *halo) lookup(ext coords.CellIdx) (grid.Cell, cellRef, bool) {
	var d convolution.Direction
	switch {
	case ext.J < 0 && ext.K >= 0 && ext.K < h.w:
		d = convolution.Inward
	case ext.J >= h.h && ext.K >= 0 && ext.K < h.w:
		d = convolution.Outward
	case ext.K >= h.w && ext.J >= 0 && ext.J < h.h:
		d = convolution.Left
	case ext.K < 0 && ext.J >= 0 && ext.J < h.h:
		d = convolution.Right
	default:
		return grid.Cell{}, cellRef{}, false
	}

	for _, e := range h.sides[d] {
		p := e.mp.Apply(ext)
		switch d {
		case convolution.Inward, convolution.Outward:
			if p.K >= 0 && p.K < e.w {
				return e.strip[p.K], cellRef{chunk: e.chunk, cell: p}, true
			}
		default:
			if p.J >= 0 && p.J < e.h {
				return e.strip[p.J], cellRef{chunk: e.chunk, cell: p}, true
			}
		}
	}
	return grid.Cell{}, cellRef{}, false
}

// hasInward reports whether anything exists below the chunk's innermost row.
func (h *halo) hasInward() bool { return len(h.sides[convolution.Inward]) > 0 }

// hasOutward reports whether anything exists above the chunk's outermost row.
func (h *halo) hasOutward() bool { return len(h.sides[convolution.Outward]) > 0 }
