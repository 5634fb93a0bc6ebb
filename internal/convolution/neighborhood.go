package convolution

import (
	"errors"
	"fmt"

	"github.com/san-kum/orbsand/internal/coords"
)

// ErrNoNeighbor indicates a neighbor was expected but the topology has none.
// The innermost layer's inward direction and the outermost layer's outward
// direction are the only boundaries where an empty neighbor set is valid;
// everywhere else an unresolvable neighbor is a topology invariant
// violation.
var ErrNoNeighbor = errors.New("convolution: no neighbor at non-edge boundary")

// Neighbor is one resolved neighbor chunk plus the index map translating
// source-local cell coordinates into its frame.
type Neighbor struct {
	Chunk coords.ChunkIdx
	Map   IndexMap
	Kind  Kind
}

// Neighborhood resolves directional neighbors against an immutable
// topology.
type Neighborhood struct {
	dir *coords.Directory
}

// New builds a resolver over the given directory.
func New(dir *coords.Directory) *Neighborhood {
	return &Neighborhood{dir: dir}
}

// Neighbors resolves the neighbors of chunk c in direction d. The result is
// finite and stable for a given topology: empty only at the body's inner
// and outer edges, one entry for Normal and LayerTransition crossings, two
// entries for an outward ChunkDoubling crossing.
func (n *Neighborhood) Neighbors(c coords.ChunkIdx, d Direction) ([]Neighbor, error) {
	if err := n.dir.CheckChunk(c); err != nil {
		return nil, err
	}
	l := n.dir.MustLayer(c.I)

	switch d {
	case Left:
		return []Neighbor{{
			Chunk: coords.ChunkIdx{I: c.I, J: c.J, K: (c.K + 1) % l.AngularChunks},
			Map:   IndexMap{Num: 1, Den: 1, OffK: -l.ChunkWidth()},
			Kind:  Normal,
		}}, nil

	case Right:
		return []Neighbor{{
			Chunk: coords.ChunkIdx{I: c.I, J: c.J, K: (c.K - 1 + l.AngularChunks) % l.AngularChunks},
			Map:   IndexMap{Num: 1, Den: 1, OffK: l.ChunkWidth()},
			Kind:  Normal,
		}}, nil

	case Outward:
		return n.outward(c, l)

	case Inward:
		return n.inward(c, l)
	}
	return nil, fmt.Errorf("convolution: invalid direction %d", d)
}

func (n *Neighborhood) outward(c coords.ChunkIdx, l coords.LayerSpec) ([]Neighbor, error) {
	h := l.ChunkHeight()

	// Within the same layer: identical resolution, radial offset only.
	if c.J < l.RadialChunks-1 {
		return []Neighbor{{
			Chunk: coords.ChunkIdx{I: c.I, J: c.J + 1, K: c.K},
			Map:   IndexMap{Num: 1, Den: 1, OffJ: -h},
			Kind:  Normal,
		}}, nil
	}

	// Space above the outermost layer.
	if c.I == n.dir.NumLayers()-1 {
		return nil, nil
	}

	next := n.dir.MustLayer(c.I + 1)
	scale := next.RadialLines / l.RadialLines

	if next.AngularChunks == l.AngularChunks*2 {
		// Chunk doubling: two finer neighbors, each covering half this
		// chunk's angular span. Doubling only happens when the angular
		// cell count doubles too, so both maps scale k by 2.
		w := next.ChunkWidth()
		return []Neighbor{
			{
				Chunk: coords.ChunkIdx{I: c.I + 1, J: 0, K: 2 * c.K},
				Map:   IndexMap{Num: 2, Den: 1, OffJ: -h},
				Kind:  ChunkDoubling,
			},
			{
				Chunk: coords.ChunkIdx{I: c.I + 1, J: 0, K: 2*c.K + 1},
				Map:   IndexMap{Num: 2, Den: 1, OffK: -w, OffJ: -h},
				Kind:  ChunkDoubling,
			},
		}, nil
	}

	if next.AngularChunks != l.AngularChunks {
		return nil, fmt.Errorf("%w: layer %d has %d angular chunks above %d",
			ErrNoNeighbor, c.I+1, next.AngularChunks, l.AngularChunks)
	}

	// Layer transition: one neighbor; k scales by 2 if the cell
	// resolution doubled at this boundary, otherwise identity.
	return []Neighbor{{
		Chunk: coords.ChunkIdx{I: c.I + 1, J: 0, K: c.K},
		Map:   IndexMap{Num: scale, Den: 1, OffJ: -h},
		Kind:  LayerTransition,
	}}, nil
}

func (n *Neighborhood) inward(c coords.ChunkIdx, l coords.LayerSpec) ([]Neighbor, error) {
	// Within the same layer.
	if c.J > 0 {
		return []Neighbor{{
			Chunk: coords.ChunkIdx{I: c.I, J: c.J - 1, K: c.K},
			Map:   IndexMap{Num: 1, Den: 1, OffJ: l.ChunkHeight()},
			Kind:  Normal,
		}}, nil
	}

	// The core has nothing inside it.
	if c.I == 0 {
		return nil, nil
	}

	prev := n.dir.MustLayer(c.I - 1)
	scale := l.RadialLines / prev.RadialLines
	hin := prev.ChunkHeight()
	jin := prev.RadialChunks - 1

	if l.AngularChunks == prev.AngularChunks*2 {
		// Inward halving: one coarser neighbor covering double this
		// chunk's span. Odd chunks land in the right half of the shared
		// neighbor, so their map is offset by half the neighbor width.
		return []Neighbor{{
			Chunk: coords.ChunkIdx{I: c.I - 1, J: jin, K: c.K / 2},
			Map:   IndexMap{Num: 1, Den: 2, OffK: (c.K % 2) * prev.ChunkWidth() / 2, OffJ: hin},
			Kind:  ChunkDoubling,
		}}, nil
	}

	if l.AngularChunks != prev.AngularChunks {
		return nil, fmt.Errorf("%w: layer %d has %d angular chunks below %d",
			ErrNoNeighbor, c.I-1, prev.AngularChunks, l.AngularChunks)
	}

	m := Identity()
	m.OffJ = hin
	if scale == 2 {
		m = IndexMap{Num: 1, Den: 2, OffJ: hin}
	}
	return []Neighbor{{
		Chunk: coords.ChunkIdx{I: c.I - 1, J: jin, K: c.K},
		Map:   m,
		Kind:  LayerTransition,
	}}, nil
}
