package world

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/grid"
)

// Three layers: an 8x1 core, a 16x2 middle layer in one chunk, and a 32x4
// outer layer split into two angular chunks. Bounding radius 7.
func testDirectory(t *testing.T) *coords.Directory {
	t.Helper()
	dir, err := coords.NewDirectory(coords.Params{
		CellRadius:              1.0,
		NumLayers:               3,
		FirstRadialLines:        8,
		SecondConcentricCircles: 2,
		DoublingPeriod:          1,
		MaxChunkCells:           64,
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestValidateBands(t *testing.T) {
	tests := []struct {
		name  string
		bands []Band
		ok    bool
	}{
		{"empty", nil, false},
		{"single full body", []Band{{element.Stone, 1.0}}, true},
		{"increasing", []Band{{element.Lava, 0.4}, {element.Stone, 0.9}}, true},
		{"non-increasing", []Band{{element.Lava, 0.6}, {element.Stone, 0.6}}, false},
		{"beyond bounding radius", []Band{{element.Stone, 1.1}}, false},
		{"zero limit", []Band{{element.Stone, 0.0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBands(tt.bands)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateBands(t *testing.T) {
	dir := testDirectory(t)
	w, err := Generate(dir, []Band{
		{element.Lava, 3.0 / 7.0},
		{element.Stone, 6.0 / 7.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Row centers sit at (row+0.5)/7 of the bounding radius: rows 0-2 fall
	// in the lava band, rows 3-5 in stone, row 6 past every band.
	tests := []struct {
		chunk coords.ChunkIdx
		cell  coords.CellIdx
		want  element.Element
	}{
		{coords.ChunkIdx{I: 0}, coords.CellIdx{K: 3}, element.Lava},
		{coords.ChunkIdx{I: 1}, coords.CellIdx{J: 1, K: 9}, element.Lava},
		{coords.ChunkIdx{I: 2}, coords.CellIdx{J: 0, K: 0}, element.Stone},
		{coords.ChunkIdx{I: 2, K: 1}, coords.CellIdx{J: 2, K: 15}, element.Stone},
		{coords.ChunkIdx{I: 2}, coords.CellIdx{J: 3, K: 7}, element.Vacuum},
	}
	for _, tt := range tests {
		got, err := w.Get(tt.chunk, tt.cell)
		if err != nil {
			t.Fatalf("get %v %v: %v", tt.chunk, tt.cell, err)
		}
		if got.Elem != tt.want {
			t.Errorf("cell %v %v: expected %v, got %v", tt.chunk, tt.cell, tt.want, got.Elem)
		}
	}

	// Generated cells start at their element's default temperature.
	lava, _ := w.Get(coords.ChunkIdx{I: 0}, coords.CellIdx{})
	if want := element.Lava.DefaultHeat(1.0); math.Abs(lava.Heat-want) > 1e-9 {
		t.Errorf("lava heat %f, want %f", lava.Heat, want)
	}
	if temp := lava.Temperature(1.0); math.Abs(temp-1500.0) > 1e-6 {
		t.Errorf("fresh lava at %fK, want 1500K", temp)
	}
}

func TestTotalMass(t *testing.T) {
	dir := testDirectory(t)
	w, err := Generate(dir, []Band{{element.Lava, 3.0 / 7.0}})
	if err != nil {
		t.Fatal(err)
	}

	// Rows 0-2 are lava: 8 + 16 + 16 = 40 cells of density 2.4.
	want := 40 * element.Lava.Mass(1.0)
	if got := w.TotalMass(); math.Abs(got-want) > 1e-9 {
		t.Errorf("total mass %f, want %f", got, want)
	}

	// Swaps move material around without changing the total.
	if err := w.SwapAcross(
		coords.ChunkIdx{I: 1}, coords.CellIdx{J: 0, K: 0},
		coords.ChunkIdx{I: 2}, coords.CellIdx{J: 3, K: 0},
	); err != nil {
		t.Fatal(err)
	}
	if got := w.TotalMass(); math.Abs(got-want) > 1e-9 {
		t.Errorf("total mass after swap %f, want %f", got, want)
	}
}

func TestSwapAcrossChunks(t *testing.T) {
	dir := testDirectory(t)
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	a := coords.ChunkIdx{I: 2, K: 0}
	b := coords.ChunkIdx{I: 2, K: 1}
	cellA := coords.CellIdx{J: 1, K: 15}
	cellB := coords.CellIdx{J: 1, K: 0}
	w.Set(a, cellA, grid.Cell{Elem: element.Sand, Heat: 4})
	w.Set(b, cellB, grid.Cell{Elem: element.Water, Heat: 8})

	if err := w.SwapAcross(a, cellA, b, cellB); err != nil {
		t.Fatal(err)
	}
	got, _ := w.Get(a, cellA)
	if got.Elem != element.Water || got.Heat != 8 {
		t.Errorf("cell a after swap: %+v", got)
	}
	got, _ = w.Get(b, cellB)
	if got.Elem != element.Sand || got.Heat != 4 {
		t.Errorf("cell b after swap: %+v", got)
	}

	if err := w.SwapAcross(coords.ChunkIdx{I: 9}, cellA, b, cellB); !errors.Is(err, ErrUnknownChunk) {
		t.Errorf("expected ErrUnknownChunk, got %v", err)
	}
}

func TestPaintSingleCell(t *testing.T) {
	dir := testDirectory(t)
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Brush centered exactly on one cell, radius below both the radial pitch
	// and the angular pitch at that row, so exactly one cell changes.
	target := coords.ChunkIdx{I: 2, K: 0}
	cell := coords.CellIdx{J: 1, K: 3}
	pt, err := dir.CellToCartesian(target, cell)
	if err != nil {
		t.Fatal(err)
	}

	n, err := w.Paint(pt, 0.4, element.Sand)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one painted cell, got %d", n)
	}
	got, _ := w.Get(target, cell)
	if got.Elem != element.Sand {
		t.Errorf("painted cell is %v", got.Elem)
	}
	if want := element.Sand.DefaultHeat(1.0); math.Abs(got.Heat-want) > 1e-9 {
		t.Errorf("painted heat %f, want %f", got.Heat, want)
	}
}

func TestPaintRespectsCenterOffset(t *testing.T) {
	dir := testDirectory(t)
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	w.SetCenter(coords.Point{X: 100, Y: -40})

	target := coords.ChunkIdx{I: 1}
	cell := coords.CellIdx{J: 0, K: 2}
	local, err := dir.CellToCartesian(target, cell)
	if err != nil {
		t.Fatal(err)
	}

	n, err := w.Paint(coords.Point{X: local.X + 100, Y: local.Y - 40}, 0.4, element.Water)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected one painted cell, got %d", n)
	}
	got, err := w.AtWorld(coords.Point{X: local.X + 100, Y: local.Y - 40})
	if err != nil {
		t.Fatal(err)
	}
	if got.Elem != element.Water {
		t.Errorf("cell under brush is %v", got.Elem)
	}
}

func TestPaintOutsideBodyPaintsNothing(t *testing.T) {
	dir := testDirectory(t)
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	n, err := w.Paint(coords.Point{X: 50, Y: 0}, 1.0, element.Sand)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected zero painted cells far outside the body, got %d", n)
	}
	if _, err := w.Paint(coords.Point{}, -1, element.Sand); err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestChangedSince(t *testing.T) {
	dir := testDirectory(t)
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}

	baseline := w.Versions()
	if changed := w.ChangedSince(baseline); len(changed) != 0 {
		t.Errorf("expected no changes against fresh baseline, got %v", changed)
	}

	mutated := coords.ChunkIdx{I: 2, K: 1}
	w.Set(mutated, coords.CellIdx{}, grid.Cell{Elem: element.Stone})

	changed := w.ChangedSince(baseline)
	if len(changed) != 1 || changed[0] != mutated {
		t.Errorf("expected only %v changed, got %v", mutated, changed)
	}
}
