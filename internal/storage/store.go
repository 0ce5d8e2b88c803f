package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
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
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Adaptive    bool               `json:"adaptive"`
	Samples     int                `json:"samples"`
	Columns     []string           `json:"columns"`
	Metrics     map[string]float64 `json:"metrics"`
	Summary     map[string]float64 `json:"summary"`
	EnergyDrift float64            `json:"energy_drift"`
	Config      config.Config      `json:"config"`
	// NonFinite names the metric, summary and drift values that were NaN or
	// infinite and therefore left out.
	NonFinite   []string           `json:"non_finite,omitempty"`
}

// Save writes result into a new run directory and returns its id. Non-finite
// metric and summary values are dropped and listed in NonFinite. A failed
// save leaves no directory behind.
func (s *Store) Save(result *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", result.Config.Model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Model:       result.Config.Model,
		Integrator:  result.Config.Integrator,
		Timestamp:   now,
		Dt:          result.Config.Dt,
		Duration:    result.Config.Duration,
		Adaptive:    result.Config.Adaptive,
		Samples:     len(result.Times),
		Columns:     result.Columns,
		EnergyDrift: result.EnergyDrift,
		Config:      result.Config,
	}
	var dropped []string
	meta.Metrics, dropped = finiteValues(result.Metrics, dropped)
	meta.Summary, dropped = finiteValues(result.Summary, dropped)
	if !isFinite(meta.EnergyDrift) {
		meta.EnergyDrift = 0
		dropped = append(dropped, "energy_drift")
	}
	sort.Strings(dropped)
	meta.NonFinite = dropped

	if err := s.writeRun(runDir, &meta, result); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

func (s *Store) writeRun(runDir string, meta *RunMetadata, result *experiment.Result) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := writeStates(csvFile, result.Columns, result.Times, result.States); err != nil {
		return err
	}
	return csvFile.Close()
}

func finiteValues(values map[string]float64, dropped []string) (map[string]float64, []string) {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		if !isFinite(v) {
			dropped = append(dropped, k)
			continue
		}
		out[k] = v
	}
	return out, dropped
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// List returns the metadata of every readable run, oldest first.
// Directories without valid metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
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

// LoadStates reads the sampled rows of a run back. Rows hold every column
// after the leading time column.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: line %d: %w", runID, i+2, err)
			}
			row[j] = v
		}
		times = append(times, row[0])
		states = append(states, row[1:])
	}

	return states, times, nil
}

func writeStates(out io.Writer, columns []string, times []float64, states [][]float64) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, state := range states {
		row := make([]string, 0, len(state)+1)
		row = append(row, formatFloat(times[i]))
		for _, v := range state {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
