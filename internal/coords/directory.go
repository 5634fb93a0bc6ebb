package coords

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for topology and coordinate conversion.
var (
	// ErrLayerOutOfRange indicates a layer index outside the directory.
	ErrLayerOutOfRange = errors.New("coords: layer index out of range")

	// ErrChunkOutOfRange indicates a chunk index outside the directory.
	ErrChunkOutOfRange = errors.New("coords: chunk index out of range")

	// ErrCellOutOfRange indicates a cell index outside its chunk.
	ErrCellOutOfRange = errors.New("coords: cell index out of range")

	// ErrOutsideBody indicates a position beyond the outermost layer.
	ErrOutsideBody = errors.New("coords: position outside body")
)

// Params describe the generated topology of one body.
type Params struct {
	// CellRadius is the radial thickness of every cell row, in world units.
	CellRadius float64
	// NumLayers is the number of concentric layers including the core.
	NumLayers int
	// FirstRadialLines is the angular cell count of the core layer.
	FirstRadialLines int
	// SecondConcentricCircles is the radial row count of layer 1. The core
	// always has exactly one row.
	SecondConcentricCircles int
	// DoublingPeriod is the number of layers between angular resolution
	// doublings. 1 doubles at every layer boundary.
	DoublingPeriod int
	// MaxChunkCells caps the cell count of a single chunk. Layers split
	// into more chunks, angularly first and then radially, to honor it.
	MaxChunkCells int
}

// Validate reports the first violated constraint.
func (p Params) Validate() error {
	if p.CellRadius <= 0 {
		return fmt.Errorf("coords: cell radius must be positive, got %f", p.CellRadius)
	}
	if p.NumLayers < 1 {
		return fmt.Errorf("coords: need at least one layer, got %d", p.NumLayers)
	}
	if p.FirstRadialLines < 1 {
		return fmt.Errorf("coords: first radial lines must be positive, got %d", p.FirstRadialLines)
	}
	if !isPow2(p.SecondConcentricCircles) {
		return fmt.Errorf("coords: second concentric circles must be a power of two, got %d", p.SecondConcentricCircles)
	}
	if p.DoublingPeriod < 1 {
		return fmt.Errorf("coords: doubling period must be positive, got %d", p.DoublingPeriod)
	}
	if p.MaxChunkCells < p.FirstRadialLines {
		return fmt.Errorf("coords: max chunk cells %d smaller than core layer size %d", p.MaxChunkCells, p.FirstRadialLines)
	}
	return nil
}

// LayerSpec is the fixed geometry of one concentric layer.
type LayerSpec struct {
	Index             int
	RadialLines       int // angular cells spanning the full circle
	ConcentricCircles int // radial cell rows in this layer
	AngularChunks     int
	RadialChunks      int
	StartCircle       int // absolute row index of the layer's innermost row
	StartRadius       float64
	EndRadius         float64
}

// ChunkWidth is the angular cell count of one chunk in this layer.
func (l LayerSpec) ChunkWidth() int { return l.RadialLines / l.AngularChunks }

// ChunkHeight is the radial cell count of one chunk in this layer.
func (l LayerSpec) ChunkHeight() int { return l.ConcentricCircles / l.RadialChunks }

// Directory is the immutable topology of a body. All chunk and cell lookups
// are derived from it; chunks never hold references to each other.
type Directory struct {
	cellRadius   float64
	layers       []LayerSpec
	totalCircles int
}

// NewDirectory builds the layer table from generation parameters.
//
// Layer 0 is the core: a single chunk of one concentric circle. Each
// doubling boundary doubles both the angular cell count and the radial row
// count of subsequent layers. The angular chunk count of a layer is always
// 1x or 2x its inner neighbor's, so neighbor resolution only ever deals
// with one chunk-doubling step at a time.
func NewDirectory(p Params) (*Directory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	layers := make([]LayerSpec, 0, p.NumLayers)
	layers = append(layers, LayerSpec{
		Index:             0,
		RadialLines:       p.FirstRadialLines,
		ConcentricCircles: 1,
		AngularChunks:     1,
		RadialChunks:      1,
		StartCircle:       0,
		StartRadius:       0,
		EndRadius:         p.CellRadius,
	})

	startCircle := 1
	for i := 1; i < p.NumLayers; i++ {
		doublings := 1 + (i-1)/p.DoublingPeriod
		rl := p.FirstRadialLines << doublings
		cc := p.SecondConcentricCircles << (doublings - 1)

		prev := layers[i-1]
		a := prev.AngularChunks
		if rl > prev.RadialLines && (rl/a)*cc > p.MaxChunkCells {
			a *= 2
		}
		r := 1
		for (rl/a)*(cc/r) > p.MaxChunkCells {
			if r == cc {
				return nil, fmt.Errorf("coords: layer %d cannot satisfy max chunk cells %d", i, p.MaxChunkCells)
			}
			r *= 2
		}

		layers = append(layers, LayerSpec{
			Index:             i,
			RadialLines:       rl,
			ConcentricCircles: cc,
			AngularChunks:     a,
			RadialChunks:      r,
			StartCircle:       startCircle,
			StartRadius:       float64(startCircle) * p.CellRadius,
			EndRadius:         float64(startCircle+cc) * p.CellRadius,
		})
		startCircle += cc
	}

	return &Directory{
		cellRadius:   p.CellRadius,
		layers:       layers,
		totalCircles: startCircle,
	}, nil
}

// CellRadius is the radial thickness of every cell row.
func (d *Directory) CellRadius() float64 { return d.cellRadius }

// NumLayers is the layer count including the core.
func (d *Directory) NumLayers() int { return len(d.layers) }

// BoundingRadius is the outer radius of the outermost layer.
func (d *Directory) BoundingRadius() float64 {
	return d.layers[len(d.layers)-1].EndRadius
}

// Layer returns the geometry of layer i.
func (d *Directory) Layer(i int) (LayerSpec, error) {
	if i < 0 || i >= len(d.layers) {
		return LayerSpec{}, fmt.Errorf("%w: %d of %d", ErrLayerOutOfRange, i, len(d.layers))
	}
	return d.layers[i], nil
}

// MustLayer is Layer for indices already known to be valid.
func (d *Directory) MustLayer(i int) LayerSpec {
	l, err := d.Layer(i)
	if err != nil {
		panic(err)
	}
	return l
}

// NumChunks is the total chunk count across all layers.
func (d *Directory) NumChunks() int {
	n := 0
	for _, l := range d.layers {
		n += l.AngularChunks * l.RadialChunks
	}
	return n
}

// TotalCells is the cell count of the whole body.
func (d *Directory) TotalCells() int {
	n := 0
	for _, l := range d.layers {
		n += l.RadialLines * l.ConcentricCircles
	}
	return n
}

// Chunks lists every chunk index, innermost layer first.
func (d *Directory) Chunks() []ChunkIdx {
	out := make([]ChunkIdx, 0, d.NumChunks())
	for _, l := range d.layers {
		for j := 0; j < l.RadialChunks; j++ {
			for k := 0; k < l.AngularChunks; k++ {
				out = append(out, ChunkIdx{I: l.Index, J: j, K: k})
			}
		}
	}
	return out
}

// CheckChunk validates a chunk index against the topology.
func (d *Directory) CheckChunk(c ChunkIdx) error {
	if c.I < 0 || c.I >= len(d.layers) {
		return fmt.Errorf("%w: %v", ErrChunkOutOfRange, c)
	}
	l := d.layers[c.I]
	if c.J < 0 || c.J >= l.RadialChunks || c.K < 0 || c.K >= l.AngularChunks {
		return fmt.Errorf("%w: %v", ErrChunkOutOfRange, c)
	}
	return nil
}

// CheckCell validates a cell index against its chunk's resolution.
func (d *Directory) CheckCell(c ChunkIdx, cell CellIdx) error {
	if err := d.CheckChunk(c); err != nil {
		return err
	}
	l := d.layers[c.I]
	if cell.J < 0 || cell.J >= l.ChunkHeight() || cell.K < 0 || cell.K >= l.ChunkWidth() {
		return fmt.Errorf("%w: %v in chunk %v", ErrCellOutOfRange, cell, c)
	}
	return nil
}

// CellToPolar returns the polar position of the cell's center.
func (d *Directory) CellToPolar(c ChunkIdx, cell CellIdx) (Polar, error) {
	if err := d.CheckCell(c, cell); err != nil {
		return Polar{}, err
	}
	l := d.layers[c.I]
	row := l.StartCircle + c.J*l.ChunkHeight() + cell.J
	col := c.K*l.ChunkWidth() + cell.K
	return Polar{
		R:     (float64(row) + 0.5) * d.cellRadius,
		Theta: (float64(col) + 0.5) / float64(l.RadialLines) * 2 * math.Pi,
	}, nil
}

// CellToCartesian returns the Cartesian position of the cell's center.
func (d *Directory) CellToCartesian(c ChunkIdx, cell CellIdx) (Point, error) {
	p, err := d.CellToPolar(c, cell)
	if err != nil {
		return Point{}, err
	}
	return p.ToCartesian(), nil
}

// PolarToCell maps a polar position to the chunk and cell containing it.
// The radius-to-layer mapping is the exact inverse of the layer radius
// ranges; the angle wraps modulo 2π with no seam duplication.
func (d *Directory) PolarToCell(p Polar) (ChunkIdx, CellIdx, error) {
	if p.R < 0 {
		return ChunkIdx{}, CellIdx{}, fmt.Errorf("%w: negative radius %f", ErrOutsideBody, p.R)
	}
	row := int(p.R / d.cellRadius)
	if row >= d.totalCircles {
		return ChunkIdx{}, CellIdx{}, fmt.Errorf("%w: radius %f beyond %f", ErrOutsideBody, p.R, d.BoundingRadius())
	}

	layer := d.layerOfRow(row)
	l := d.layers[layer]

	theta := p.Normalize().Theta
	col := int(theta / (2 * math.Pi) * float64(l.RadialLines))
	if col >= l.RadialLines {
		col = l.RadialLines - 1
	}

	rowIn := row - l.StartCircle
	chunk := ChunkIdx{I: layer, J: rowIn / l.ChunkHeight(), K: col / l.ChunkWidth()}
	cell := CellIdx{J: rowIn % l.ChunkHeight(), K: col % l.ChunkWidth()}
	return chunk, cell, nil
}

// CartesianToCell maps a Cartesian position to the chunk and cell containing it.
func (d *Directory) CartesianToCell(pt Point) (ChunkIdx, CellIdx, error) {
	return d.PolarToCell(pt.ToPolar())
}

func (d *Directory) layerOfRow(row int) int {
	for i := len(d.layers) - 1; i >= 0; i-- {
		if row >= d.layers[i].StartCircle {
			return i
		}
	}
	return 0
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
