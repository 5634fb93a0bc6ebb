// Command orbsand simulates circular falling-sand bodies built from
// concentric layers of doubling angular resolution. It runs headless batches
// with persisted metrics, renders a live terminal view, and inspects stored
// runs.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsand/internal/config"
	"github.com/san-kum/orbsand/internal/coords"
	"github.com/san-kum/orbsand/internal/element"
	"github.com/san-kum/orbsand/internal/metrics"
	"github.com/san-kum/orbsand/internal/sched"
	"github.com/san-kum/orbsand/internal/storage"
	"github.com/san-kum/orbsand/internal/tui"
	"github.com/san-kum/orbsand/internal/world"
)

var (
	configFile string
	dataDir    string
	verbose    bool

	runFrames  int
	runSeed    uint64
	runDensity float64
	runStep    float64
	runWorkers int

	plotHeight int
	plotWidth  int
)

var rootCmd = &cobra.Command{
	Use:   "orbsand",
	Short: "Circular falling-sand simulator",
	Long: `orbsand simulates a circular body of falling sand, water, stone and lava.
The disc is built from concentric layers whose angular resolution doubles
outward, so every cell stays roughly square from core to rim.

Without a subcommand it opens the live terminal view of the default body.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLive(cmd, args)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [preset]",
	Short: "Run a headless batch and store its metrics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, preset, err := resolveConfig(cmd, args)
		if err != nil {
			return err
		}

		w, s, err := buildBody(cfg)
		if err != nil {
			return err
		}
		attachMetrics(s, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Running %s: %d frames over %d chunks (%d cells)\n",
			preset, runFrames, w.Directory().NumChunks(), w.Directory().TotalCells())

		start := time.Now()
		result, err := s.Run(ctx, runFrames)
		if err != nil && result.Frames == 0 {
			return err
		}
		elapsed := time.Since(start)
		if err != nil {
			fmt.Println("Interrupted, saving the completed frames")
		}

		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(preset, cfg.Frame.StepTime, cfg.Seed, result)
		if err != nil {
			return err
		}

		fmt.Printf("Completed %d frames in %v (%.1f frames/s)\n",
			result.Frames, elapsed.Round(time.Millisecond),
			float64(result.Frames)/elapsed.Seconds())
		fmt.Printf("Saved as %s\n\n", runID)

		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "METRIC\tFINAL VALUE")
		for _, name := range sortedKeys(result.Metrics) {
			fmt.Fprintf(tw, "%s\t%g\n", name, result.Metrics[name])
		}
		return tw.Flush()
	},
}

var liveCmd = &cobra.Command{
	Use:   "live [preset]",
	Short: "Watch a body run in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLive,
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	w, s, err := buildBody(cfg)
	if err != nil {
		return err
	}
	return tui.Run(w, s)
}

var topologyCmd = &cobra.Command{
	Use:   "topology [preset]",
	Short: "Print the generated layer table of a body",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, preset, err := resolveConfig(cmd, args)
		if err != nil {
			return err
		}
		dir, err := coords.NewDirectory(cfg.CoordsParams())
		if err != nil {
			return err
		}

		fmt.Printf("Topology of %s: %d layers, %d chunks, %d cells, radius %.1f\n\n",
			preset, dir.NumLayers(), dir.NumChunks(), dir.TotalCells(), dir.BoundingRadius())

		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "LAYER\tRADIAL LINES\tCIRCLES\tCHUNKS\tCHUNK SIZE\tRADII")
		for i := 0; i < dir.NumLayers(); i++ {
			l := dir.MustLayer(i)
			fmt.Fprintf(tw, "%d\t%d\t%d\t%dx%d\t%dx%d\t%.1f-%.1f\n",
				l.Index, l.RadialLines, l.ConcentricCircles,
				l.AngularChunks, l.RadialChunks,
				l.ChunkWidth(), l.ChunkHeight(),
				l.StartRadius, l.EndRadius)
		}
		return tw.Flush()
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in body presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tLAYERS\tCELLS\tCOMPOSITION")
		for _, name := range config.ListPresets() {
			cfg := config.GetPreset(name)
			dir, err := coords.NewDirectory(cfg.CoordsParams())
			if err != nil {
				return err
			}
			comp := ""
			for i, b := range cfg.Body.Composition {
				if i > 0 {
					comp += ", "
				}
				comp += b.Element
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, dir.NumLayers(), dir.TotalCells(), comp)
		}
		return tw.Flush()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := storage.New(dataDir)
		runs, err := st.List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs. Start one with 'orbsand run'.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPRESET\tTIME\tFRAMES\tSTEP\tSEED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%g\t%d\n",
				r.ID, r.Preset, r.Timestamp.Format("2006-01-02 15:04:05"),
				r.Frames, r.StepTime, r.Seed)
		}
		return tw.Flush()
	},
}

var plotCmd = &cobra.Command{
	Use:   "plot <run-id> [column]",
	Short: "Plot one stored series as an ASCII graph",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := storage.New(dataDir)
		header, rows, err := st.LoadFrames(args[0])
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("run %s has no frames", args[0])
		}

		column := header[len(header)-1]
		if len(args) == 2 {
			column = args[1]
		}
		col := -1
		for i, name := range header {
			if name == column {
				col = i
			}
		}
		if col < 0 {
			return fmt.Errorf("no column %q, available: %v", column, header[1:])
		}

		data := make([]float64, 0, len(rows))
		for _, row := range rows {
			if col < len(row) {
				data = append(data, row[col])
			}
		}

		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(fmt.Sprintf("%s over %d frames (%s)", column, len(data), args[0]))))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Print a stored run's metadata as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, result, err := loadResult(args[0])
		if err != nil {
			return err
		}
		return storage.ExportJSONStdout(meta.Preset, meta.StepTime, meta.Seed, result)
	},
}

var exportCSVCmd = &cobra.Command{
	Use:   "export-csv <run-id>",
	Short: "Print a stored run's frame series as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := storage.New(dataDir)
		header, rows, err := st.LoadFrames(args[0])
		if err != nil {
			return err
		}

		w := csv.NewWriter(os.Stdout)
		defer w.Flush()
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write a default config file to edit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(args[0], config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", args[0])
		return nil
	},
}

// resolveConfig layers a preset, an optional config file and the explicitly
// set flags, most specific last, then validates the result.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	preset := "earthlike"
	if len(args) > 0 {
		preset = args[0]
	}
	base := config.GetPreset(preset)
	if base == nil {
		return nil, "", fmt.Errorf("unknown preset %q, available: %v", preset, config.ListPresets())
	}
	cfg := *base

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg = *loaded
		preset = "custom"
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("density") {
		cfg.Frame.ActivityDensity = runDensity
	}
	if cmd.Flags().Changed("step") {
		cfg.Frame.StepTime = runStep
	}
	if cmd.Flags().Changed("workers") {
		cfg.Frame.Workers = runWorkers
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, preset, nil
}

func buildBody(cfg *config.Config) (*world.World, *sched.Scheduler, error) {
	dir, err := coords.NewDirectory(cfg.CoordsParams())
	if err != nil {
		return nil, nil, err
	}
	bands, err := cfg.Bands()
	if err != nil {
		return nil, nil, err
	}
	w, err := world.Generate(dir, bands)
	if err != nil {
		return nil, nil, err
	}
	s, err := sched.New(w, cfg.SchedOptions(), slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return w, s, nil
}

func attachMetrics(s *sched.Scheduler, cfg *config.Config) {
	s.AddMetric(metrics.NewTotalMass())
	s.AddMetric(metrics.NewTotalHeat())
	s.AddMetric(metrics.NewMassDrift())
	s.AddMetric(metrics.NewHeatDrift())

	seen := map[string]bool{}
	for _, b := range cfg.Body.Composition {
		if seen[b.Element] {
			continue
		}
		seen[b.Element] = true
		if e, err := element.Parse(b.Element); err == nil {
			s.AddMetric(metrics.NewElementCount(e))
		}
	}
}

// loadResult rebuilds a Result from a stored run's CSV so the export path is
// identical for fresh and historical runs.
func loadResult(runID string) (*storage.RunMetadata, *sched.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	header, rows, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &sched.Result{
		Frames:  meta.Frames,
		Metrics: meta.Metrics,
		Series:  make(map[string][]float64),
	}
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		result.Stats = append(result.Stats, sched.FrameStats{
			Frame:       int(row[0]),
			Moves:       int(row[1]),
			Transfers:   int(row[2]),
			Transitions: int(row[3]),
		})
		for i := 4; i < len(row) && i < len(header); i++ {
			result.Series[header[i]] = append(result.Series[header[i]], row[i])
		}
	}
	return meta, result, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file overriding the preset")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "orbsand_data", "directory for stored runs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log scheduler internals")

	runCmd.Flags().IntVarP(&runFrames, "frames", "n", 500, "frames to simulate")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "seed for reproducible runs")
	runCmd.Flags().Float64Var(&runDensity, "density", 0, "fraction of cells sampled per frame")
	runCmd.Flags().Float64Var(&runStep, "step", 0, "simulated seconds per frame")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "worker goroutines, 0 for all cores")

	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height in rows")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width in columns")

	rootCmd.AddCommand(runCmd, liveCmd, topologyCmd, presetsCmd,
		listCmd, plotCmd, exportCmd, exportCSVCmd, initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
