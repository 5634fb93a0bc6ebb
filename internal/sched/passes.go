package sched

import (
	"math"

	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/grid"
)

// transfer is a displacement whose destination lives in another chunk. It is
// re-validated at flush time because the destination may have changed since
// its border strip was captured.
type transfer struct {
	src  cellRef
	dst  cellRef
	elem element.Element
}

// heatDelta is heat energy owed to a cell in another chunk. The source cell
// has already given it up, so a failed flush returns it there.
type heatDelta struct {
	src cellRef
	dst cellRef
	q   float64
}

func moveTarget(at coords.CellIdx, m element.Move) coords.CellIdx {
	switch m {
	case element.MoveDown:
		return coords.CellIdx{J: at.J - 1, K: at.K}
	case element.MoveDownLeft:
		return coords.CellIdx{J: at.J - 1, K: at.K + 1}
	case element.MoveDownRight:
		return coords.CellIdx{J: at.J - 1, K: at.K - 1}
	case element.MoveLeft:
		return coords.CellIdx{J: at.J, K: at.K + 1}
	case element.MoveRight:
		return coords.CellIdx{J: at.J, K: at.K - 1}
	case element.MoveUp:
		return coords.CellIdx{J: at.J + 1, K: at.K}
	}
	return at
}

// surroundings assembles the displacement rule's view of one cell: live
// in-chunk neighbors, pre-pass strips across boundaries. Corners that cross
// two boundaries at once read as stone, which nothing displaces.
func (s *Scheduler) surroundings(g *grid.Grid, hl *halo, at coords.CellIdx) element.Surroundings {
	get := func(dj, dk int) element.Element {
		p := coords.CellIdx{J: at.J + dj, K: at.K + dk}
		if p.J >= 0 && p.J < hl.h && p.K >= 0 && p.K < hl.w {
			return g.MustGet(p).Elem
		}
		if c, _, ok := hl.lookup(p); ok {
			return c.Elem
		}
		return element.Stone
	}
	return element.Surroundings{
		Down:      get(-1, 0),
		Up:        get(1, 0),
		Left:      get(0, 1),
		Right:     get(0, -1),
		DownLeft:  get(-1, 1),
		DownRight: get(-1, -1),
		HasDown:   at.J > 0 || hl.hasInward(),
		HasUp:     at.J < hl.h-1 || hl.hasOutward(),
	}
}

// displacementPass runs the movement rule over every sampled cell. Moves
// inside the owning chunk apply immediately against the live grid; moves
// across a boundary are queued against the pre-pass strips and settled by
// flushTransfers.
func (s *Scheduler) displacementPass(samples [][]coords.CellIdx, halos []*halo) (int, [][]transfer) {
	moves := make([]int, len(s.chunks))
	queued := make([][]transfer, len(s.chunks))

	s.parallel(func(i int, c coords.ChunkIdx) {
		g := s.grids[i]
		hl := halos[i]
		rng := s.rng(c, saltDisplace)
		stamp := s.lastMoved[i]

		for _, at := range samples[i] {
			if stamp[at.J*hl.w+at.K] == s.frame {
				continue
			}
			e := g.MustGet(at).Elem
			if e == element.Vacuum {
				continue
			}
			m := element.DisplacementRule(e, s.surroundings(g, hl, at), rng)
			if m == element.MoveNone {
				continue
			}

			tgt := moveTarget(at, m)
			if tgt.J >= 0 && tgt.J < hl.h && tgt.K >= 0 && tgt.K < hl.w {
				if err := g.Swap(at, tgt); err != nil {
					s.log.Warn("in-chunk swap failed", "chunk", c.String(), "err", err)
					continue
				}
				stamp[at.J*hl.w+at.K] = s.frame
				stamp[tgt.J*hl.w+tgt.K] = s.frame
				moves[i]++
				continue
			}

			if _, ref, ok := hl.lookup(tgt); ok {
				queued[i] = append(queued[i], transfer{
					src:  cellRef{chunk: c, cell: at},
					dst:  ref,
					elem: e,
				})
			}
		}
	})

	total := 0
	for _, n := range moves {
		total += n
	}
	return total, queued
}

// flushTransfers settles queued cross-chunk moves one by one. Each is
// re-validated against the live grids: neither cell may have moved already
// this frame, the source must still hold the moving element and the
// destination must still be displaceable by it. Stale transfers are silently
// dropped, the material simply did not move this frame.
func (s *Scheduler) flushTransfers(queued [][]transfer) int {
	applied := 0
	for _, ts := range queued {
		for _, t := range ts {
			si, di := s.chunkPos[t.src.chunk], s.chunkPos[t.dst.chunk]
			sIdx := t.src.cell.J*s.grids[si].Width() + t.src.cell.K
			dIdx := t.dst.cell.J*s.grids[di].Width() + t.dst.cell.K
			if s.lastMoved[si][sIdx] == s.frame || s.lastMoved[di][dIdx] == s.frame {
				continue
			}
			src, err := s.w.Get(t.src.chunk, t.src.cell)
			if err != nil {
				s.log.Warn("transfer source vanished", "src", t.src.chunk.String(), "err", err)
				continue
			}
			if src.Elem != t.elem {
				continue
			}
			dst, err := s.w.Get(t.dst.chunk, t.dst.cell)
			if err != nil {
				s.log.Warn("transfer destination vanished", "dst", t.dst.chunk.String(), "err", err)
				continue
			}
			if !element.Displaceable(t.elem, dst.Elem) {
				continue
			}
			if err := s.w.SwapAcross(t.src.chunk, t.src.cell, t.dst.chunk, t.dst.cell); err != nil {
				s.log.Warn("transfer swap failed", "err", err)
				continue
			}
			s.lastMoved[si][sIdx] = s.frame
			s.lastMoved[di][dIdx] = s.frame
			applied++
		}
	}
	return applied
}

// heatFlow is the energy moving from b into a over one step: conduction
// through the shared face, clamped so a single exchange never overshoots the
// pair's equilibrium temperature.
func heatFlow(a, b grid.Cell, cw, dt float64) float64 {
	ka := a.Elem.Props().ThermalConductivity
	kb := b.Elem.Props().ThermalConductivity
	if ka == 0 || kb == 0 {
		return 0
	}
	capA := a.Elem.HeatCapacity(cw)
	capB := b.Elem.HeatCapacity(cw)
	if capA < element.MinHeatCapacity || capB < element.MinHeatCapacity {
		return 0
	}

	dT := b.Heat/capB - a.Heat/capA
	q := 2 * ka * kb / (ka + kb) * cw * dt * dT
	eq := dT * capA * capB / (capA + capB)
	if math.Abs(q) > math.Abs(eq) {
		q = eq
	}
	return q
}

// heatPass diffuses heat between each sampled cell and its inward and left
// neighbors. Owning each adjacent pair from exactly one side keeps the
// exchange symmetric: what one cell gains the other loses in the same
// update. In-chunk exchanges apply immediately; cross-boundary ones debit
// the local cell and queue the credit.
func (s *Scheduler) heatPass(samples [][]coords.CellIdx, halos []*halo) [][]heatDelta {
	queued := make([][]heatDelta, len(s.chunks))
	cw := s.w.Directory().CellRadius()
	dt := s.opts.StepTime

	s.parallel(func(i int, c coords.ChunkIdx) {
		g := s.grids[i]
		hl := halos[i]

		for _, at := range samples[i] {
			cell := g.MustGet(at)
			if cell.Elem.HeatCapacity(cw) < element.MinHeatCapacity {
				continue
			}

			for _, tgt := range []coords.CellIdx{
				{J: at.J - 1, K: at.K}, // inward
				{J: at.J, K: at.K + 1}, // left
			} {
				if tgt.J >= 0 && tgt.J < hl.h && tgt.K >= 0 && tgt.K < hl.w {
					nb := g.MustGet(tgt)
					q := heatFlow(g.MustGet(at), nb, cw, dt)
					if q == 0 {
						continue
					}
					g.AddHeat(at, q, cw)
					g.AddHeat(tgt, -q, cw)
					continue
				}

				nb, ref, ok := hl.lookup(tgt)
				if !ok {
					continue
				}
				q := heatFlow(g.MustGet(at), nb, cw, dt)
				if q == 0 {
					continue
				}
				g.AddHeat(at, q, cw)
				queued[i] = append(queued[i], heatDelta{
					src: cellRef{chunk: c, cell: at},
					dst: ref,
					q:   -q,
				})
			}
		}
	})
	return queued
}

// flushHeat credits queued cross-chunk heat. A destination that can no
// longer hold heat sends the energy back where it came from, so the total
// is conserved either way.
func (s *Scheduler) flushHeat(queued [][]heatDelta) {
	cw := s.w.Directory().CellRadius()
	for _, ds := range queued {
		for _, d := range ds {
			g, err := s.w.Chunk(d.dst.chunk)
			if err != nil {
				s.log.Warn("heat destination vanished", "dst", d.dst.chunk.String(), "err", err)
				continue
			}
			if err := g.AddHeat(d.dst.cell, d.q, cw); err == nil {
				continue
			}
			src, serr := s.w.Chunk(d.src.chunk)
			if serr != nil {
				s.log.Error("heat refund lost", "src", d.src.chunk.String(), "err", serr)
				continue
			}
			if err := src.AddHeat(d.src.cell, d.q, cw); err != nil {
				s.log.Error("heat refund lost", "src", d.src.chunk.String(), "err", err)
			}
		}
	}
}

// phasePass relabels sampled cells whose temperature crossed a transition
// threshold. Relabeling keeps the cell's heat energy, so the pass conserves
// the total.
func (s *Scheduler) phasePass(samples [][]coords.CellIdx) int {
	cw := s.w.Directory().CellRadius()
	counts := make([]int, len(s.chunks))

	s.parallel(func(i int, c coords.ChunkIdx) {
		g := s.grids[i]
		for _, at := range samples[i] {
			cell := g.MustGet(at)
			if cell.Elem == element.Vacuum {
				continue
			}
			next, ok := element.TransitionRule(cell.Elem, cell.Temperature(cw))
			if !ok {
				continue
			}
			if err := g.SetElement(at, next); err != nil {
				s.log.Warn("phase relabel failed", "chunk", c.String(), "err", err)
				continue
			}
			counts[i]++
		}
	})

	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
