package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/orbsand/internal/sched"
)

type ExportData struct {
	Preset   string               `json:"preset"`
	StepTime float64              `json:"step_time"`
	Seed     uint64               `json:"seed"`
	Frames   int                  `json:"frames"`
	Stats    []sched.FrameStats   `json:"stats"`
	Metrics  map[string]float64   `json:"metrics"`
	Series   map[string][]float64 `json:"series"`
}

func ExportJSON(path string, preset string, stepTime float64, seed uint64, result *sched.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportJSON(file, preset, stepTime, seed, result)
}

func ExportJSONStdout(preset string, stepTime float64, seed uint64, result *sched.Result) error {
	return exportJSON(os.Stdout, preset, stepTime, seed, result)
}

func exportJSON(w io.Writer, preset string, stepTime float64, seed uint64, result *sched.Result) error {
	data := ExportData{
		Preset:   preset,
		StepTime: stepTime,
		Seed:     seed,
		Frames:   result.Frames,
		Stats:    result.Stats,
		Metrics:  result.Metrics,
		Series:   result.Series,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
