package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vmath"
)

type ExportData struct {
	ID       string                  `json:"id"`
	Scene    string                  `json:"scene"`
	Dt       float64                 `json:"dt"`
	Duration float64                 `json:"duration"`
	Steps    int                     `json:"steps"`
	Times    []float64               `json:"times"`
	Bodies   map[string][]vmath.Vec3 `json:"bodies"`
	Events   []scene.Event           `json:"events"`
	Metrics  map[string]float64      `json:"metrics"`
}

func newExportData(meta *RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		ID:       meta.ID,
		Scene:    meta.Scene,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    result.StepsTaken,
		Times:    result.Times(),
		Bodies:   make(map[string][]vmath.Vec3, len(result.Bodies)),
		Events:   result.Events,
		Metrics:  result.Metrics,
	}

	for i, name := range result.Bodies {
		track := make([]vmath.Vec3, 0, len(result.Samples))
		for _, s := range result.Samples {
			if i < len(s.Positions) {
				track = append(track, s.Positions[i])
			}
		}
		data.Bodies[name] = track
	}
	return data
}

func WriteJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, result))
}

func ExportJSON(path string, meta *RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}

func ExportJSONStdout(meta *RunMetadata, result *sim.Result) error {
	return WriteJSON(os.Stdout, meta, result)
}
