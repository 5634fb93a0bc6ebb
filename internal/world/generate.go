package world

import (
	"fmt"
	"sort"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/grid"
)

// Band is one concentric composition band. It covers radii from the previous
// band's limit out to MaxRadiusFrac of the bounding radius.
type Band struct {
	Element       element.Element
	MaxRadiusFrac float64
}

// ValidateBands checks that the band limits are in (0, 1] and strictly
// increasing.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("world: at least one composition band required")
	}
	prev := 0.0
	for i, b := range bands {
		if b.MaxRadiusFrac <= prev || b.MaxRadiusFrac > 1 {
			return fmt.Errorf("world: band %d limit %f must lie in (%f, 1]", i, b.MaxRadiusFrac, prev)
		}
		prev = b.MaxRadiusFrac
	}
	return nil
}

// Generate builds a body and fills it band by band. Every cell gets the heat
// energy that puts it at its element's default temperature, so a freshly
// generated body is in its elements' equilibrium state. Radii beyond the last
// band stay vacuum.
func Generate(dir *coords.Directory, bands []Band) (*World, error) {
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}
	w, err := New(dir)
	if err != nil {
		return nil, err
	}

	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MaxRadiusFrac < sorted[j].MaxRadiusFrac })

	cw := dir.CellRadius()
	bound := dir.BoundingRadius()
	for _, c := range dir.Chunks() {
		l := dir.MustLayer(c.I)
		g := w.chunks[c]
		for j := 0; j < g.Height(); j++ {
			row := l.StartCircle + c.J*l.ChunkHeight() + j
			frac := (float64(row) + 0.5) * cw / bound
			e, ok := bandAt(sorted, frac)
			if !ok {
				continue
			}
			for k := 0; k < g.Width(); k++ {
				cell := grid.Cell{Elem: e, Heat: e.DefaultHeat(cw)}
				if err := g.Set(coords.CellIdx{J: j, K: k}, cell); err != nil {
					return nil, err
				}
			}
		}
	}
	return w, nil
}

func bandAt(sorted []Band, frac float64) (element.Element, bool) {
	for _, b := range sorted {
		if frac <= b.MaxRadiusFrac {
			return b.Element, true
		}
	}
	return element.Vacuum, false
}
