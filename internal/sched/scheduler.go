// Package sched drives the frame loop: it samples active cells per chunk,
// runs the displacement, heat and phase passes with one worker per chunk at
// a time, and funnels cross-chunk effects through sequentially flushed
// queues so no two goroutines ever write the same grid.
package sched

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/san-kum/orbsand/internal/convolution"
	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/grid"
	"github.com/san-kum/orbsand/internal/world"
)

// Metric observes the world once per frame and reduces it to one number.
type Metric interface {
	Name() string
	Observe(w *world.World, frame int)
	Value() float64
	Reset()
}

// Observer is notified after every completed frame.
type Observer interface {
	OnFrame(w *world.World, frame int)
}

// Options tune one scheduler run.
type Options struct {
	// ActivityDensity is the fraction of each chunk's cells sampled per
	// frame, in (0, 1]. 1 touches every cell every frame.
	ActivityDensity float64
	// StepTime is the simulated seconds one frame advances.
	StepTime float64
	// Workers caps the worker goroutines. Zero means GOMAXPROCS-many.
	Workers int
	// Seed makes runs reproducible. Chunk and frame indices are folded in,
	// so every chunk gets an independent deterministic stream.
	Seed uint64
}

// MinStepTime is the smallest step a frame may advance. Steps below it make
// per-exchange heat flow vanish against float rounding.
const MinStepTime = 1e-9

// Validate reports the first violated constraint.
func (o Options) Validate() error {
	if o.ActivityDensity <= 0 || o.ActivityDensity > 1 {
		return fmt.Errorf("sched: activity density must be in (0, 1], got %f", o.ActivityDensity)
	}
	if o.StepTime < MinStepTime {
		return fmt.Errorf("sched: step time must be at least %g, got %f", MinStepTime, o.StepTime)
	}
	if o.Workers < 0 {
		return fmt.Errorf("sched: worker count must not be negative, got %d", o.Workers)
	}
	return nil
}

// FrameStats summarizes the work one frame did.
type FrameStats struct {
	Frame       int
	Moves       int // displacement swaps, including cross-chunk transfers
	Transfers   int // the cross-chunk subset of Moves
	Transitions int // phase relabels
}

// Result aggregates a finished run.
type Result struct {
	Frames  int
	Stats   []FrameStats
	Metrics map[string]float64
	Series  map[string][]float64
}

// Scheduler owns the frame loop over one world.
type Scheduler struct {
	w    *world.World
	nh   *convolution.Neighborhood
	opts Options
	log  *slog.Logger

	chunks   []coords.ChunkIdx
	grids    []*grid.Grid
	chunkPos map[coords.ChunkIdx]int

	// lastMoved stamps, per chunk and cell, the frame of the cell's most
	// recent displacement. A stamped cell sits out the rest of the frame, so
	// material advances at most one cell per frame no matter where the
	// sampling order revisits it.
	lastMoved [][]int

	metrics   []Metric
	observers []Observer
	frame     int
}

// New builds a scheduler over w. A nil logger falls back to slog.Default.
func New(w *world.World, opts Options, log *slog.Logger) (*Scheduler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.Default()
	}

	chunks := w.Directory().Chunks()
	grids := make([]*grid.Grid, len(chunks))
	pos := make(map[coords.ChunkIdx]int, len(chunks))
	moved := make([][]int, len(chunks))
	for i, c := range chunks {
		g, err := w.Chunk(c)
		if err != nil {
			return nil, err
		}
		grids[i] = g
		pos[c] = i
		moved[i] = make([]int, g.Width()*g.Height())
		for j := range moved[i] {
			moved[i][j] = -1
		}
	}

	return &Scheduler{
		w:         w,
		nh:        convolution.New(w.Directory()),
		opts:      opts,
		log:       log,
		chunks:    chunks,
		grids:     grids,
		chunkPos:  pos,
		lastMoved: moved,
	}, nil
}

// AddMetric registers a per-frame metric.
func (s *Scheduler) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

// AddObserver registers a per-frame observer.
func (s *Scheduler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Frame is the number of completed frames.
func (s *Scheduler) Frame() int { return s.frame }

// Step advances the world by one frame: displacement with its transfer
// flush, heat diffusion with its delta flush, then phase transitions.
func (s *Scheduler) Step(ctx context.Context) (FrameStats, error) {
	select {
	case <-ctx.Done():
		return FrameStats{}, ctx.Err()
	default:
	}

	stats := FrameStats{Frame: s.frame}
	samples := s.sampleCells()

	halos, err := s.buildHalos()
	if err != nil {
		return stats, err
	}
	moves, transfers := s.displacementPass(samples, halos)
	stats.Transfers = s.flushTransfers(transfers)
	stats.Moves = moves + stats.Transfers

	// Displacement moved material, so halos are rebuilt before diffusion
	// reads neighbor temperatures.
	halos, err = s.buildHalos()
	if err != nil {
		return stats, err
	}
	s.flushHeat(s.heatPass(samples, halos))

	stats.Transitions = s.phasePass(samples)

	s.frame++
	return stats, nil
}

// Run advances the world by the given number of frames, observing metrics
// after each one.
func (s *Scheduler) Run(ctx context.Context, frames int) (*Result, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("sched: frame count must be positive, got %d", frames)
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	result := &Result{
		Stats:   make([]FrameStats, 0, frames),
		Metrics: make(map[string]float64),
		Series:  make(map[string][]float64),
	}

	for i := 0; i < frames; i++ {
		st, err := s.Step(ctx)
		if err != nil {
			return result, err
		}
		result.Stats = append(result.Stats, st)
		result.Frames++

		for _, m := range s.metrics {
			m.Observe(s.w, s.frame)
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
		}
		for _, obs := range s.observers {
			obs.OnFrame(s.w, s.frame)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// parallel applies fn to every chunk, striped across the worker pool. Each
// chunk is visited by exactly one goroutine, so fn may freely mutate that
// chunk's grid.
func (s *Scheduler) parallel(fn func(i int, c coords.ChunkIdx)) {
	var wg sync.WaitGroup
	for wkr := 0; wkr < s.opts.Workers; wkr++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(s.chunks); i += s.opts.Workers {
				fn(i, s.chunks[i])
			}
		}(wkr)
	}
	wg.Wait()
}

// sampleCells draws, per chunk, a uniform without-replacement sample of cell
// indices covering ActivityDensity of the chunk. The permuted order doubles
// as the processing order.
func (s *Scheduler) sampleCells() [][]coords.CellIdx {
	out := make([][]coords.CellIdx, len(s.chunks))
	s.parallel(func(i int, c coords.ChunkIdx) {
		g := s.grids[i]
		total := g.Width() * g.Height()
		n := int(s.opts.ActivityDensity*float64(total) + 0.5)
		if n < 1 {
			n = 1
		}
		if n > total {
			n = total
		}
		rng := s.rng(c, saltSample)
		cells := make([]coords.CellIdx, n)
		for j, idx := range rng.Perm(total)[:n] {
			cells[j] = coords.CellIdx{J: idx / g.Width(), K: idx % g.Width()}
		}
		out[i] = cells
	})
	return out
}

const (
	saltSample   = 0x53414d50
	saltDisplace = 0x44495350
)

func (s *Scheduler) rng(c coords.ChunkIdx, salt uint64) *rand.Rand {
	hi := s.opts.Seed ^ salt*0x9e3779b97f4a7c15
	lo := uint64(c.I+1)*0xbf58476d1ce4e5b9 ^
		uint64(c.J+1)*0x94d049bb133111eb ^
		uint64(c.K+1)*0xd6e8feb86659fd93 ^
		uint64(s.frame)*0x2545f4914f6cdd1d
	return rand.New(rand.NewPCG(hi, lo))
}
