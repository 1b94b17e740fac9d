package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/vmath"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	eventsFile     = "events.msgpack"
	sceneFile      = "scene.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	SampleEvery int                `json:"sample_every"`
	Steps       int                `json:"steps"`
	Bodies      []string           `json:"bodies"`
	Events      int                `json:"events"`
	Stats       physics.Stats      `json:"stats"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata, the sampled
// trajectory, the contact log and the scene that produced them.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	name := cfg.Scene
	if name == "" {
		name = "scene"
	}
	runID, runDir, err := s.newRunDir(name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       name,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: cfg.SampleEvery,
		Steps:       result.StepsTaken,
		Bodies:      result.Bodies,
		Events:      len(result.Events),
		Stats:       result.Stats,
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}
	if err := writeEvents(filepath.Join(runDir, eventsFile), result.Events); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, sceneFile), cfg); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"tick", "time"}
	for _, b := range result.Bodies {
		header = append(header, b+".x", b+".y", b+".z")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, smp := range result.Samples {
		row := []string{
			strconv.FormatUint(smp.Tick, 10),
			strconv.FormatFloat(smp.Time, 'f', 6, 64),
		}
		for _, p := range smp.Positions {
			for _, c := range p {
				row = append(row, strconv.FormatFloat(c, 'f', 6, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeEvents(path string, events []scene.Event) error {
	if events == nil {
		events = []scene.Event{}
	}
	data, err := msgpack.Marshal(&events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// List returns the saved runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortStableFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadScene returns the scene file saved with the run.
func (s *Store) LoadScene(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

// LoadTrajectory reads the sampled body positions back. The body names come
// from the CSV header.
func (s *Store) LoadTrajectory(runID string) ([]string, []sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("run %s: empty trajectory", runID)
	}

	header := records[0]
	if len(header) < 2 || (len(header)-2)%3 != 0 {
		return nil, nil, fmt.Errorf("run %s: malformed trajectory header", runID)
	}
	bodies := make([]string, 0, (len(header)-2)/3)
	for i := 2; i < len(header); i += 3 {
		bodies = append(bodies, strings.TrimSuffix(header[i], ".x"))
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		smp, err := parseSample(record, len(bodies))
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}
		samples = append(samples, smp)
	}

	return bodies, samples, nil
}

func parseSample(record []string, bodies int) (sim.Sample, error) {
	var smp sim.Sample
	tick, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return smp, err
	}
	t, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return smp, err
	}

	smp.Tick, smp.Time = tick, t
	smp.Positions = make([]vmath.Vec3, bodies)
	for b := 0; b < bodies; b++ {
		for c := 0; c < 3; c++ {
			v, err := strconv.ParseFloat(record[2+b*3+c], 64)
			if err != nil {
				return smp, err
			}
			smp.Positions[b][c] = v
		}
	}
	return smp, nil
}

func (s *Store) LoadEvents(runID string) ([]scene.Event, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}

	var events []scene.Event
	if err := msgpack.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("run %s: decode events: %w", runID, err)
	}
	return events, nil
}

// LoadResult reassembles the stored run into a sim.Result.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	bodies, samples, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, nil, err
	}

	return meta, &sim.Result{
		Scene:      meta.Scene,
		Bodies:     bodies,
		Samples:    samples,
		Events:     events,
		Metrics:    meta.Metrics,
		Stats:      meta.Stats,
		StepsTaken: meta.Steps,
	}, nil
}
