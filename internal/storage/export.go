package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/mechsim/internal/experiment"
)

type ExportData struct {
	ID         string             `json:"id,omitempty"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Adaptive   bool               `json:"adaptive"`
	Steps      int                `json:"steps"`
	Columns    []string           `json:"columns"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
	Summary    map[string]float64 `json:"summary"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	return encodeExport(w, ExportData{
		ID:         meta.ID,
		Model:      meta.Model,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Adaptive:   meta.Adaptive,
		Steps:      len(times),
		Columns:    meta.Columns,
		Times:      times,
		States:     states,
		Metrics:    meta.Metrics,
		Summary:    meta.Summary,
	})
}

// ExportCSV copies the stored states.csv of a run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}

// ExportResultJSON writes an unsaved result in the same layout as ExportJSON.
func ExportResultJSON(w io.Writer, result *experiment.Result) error {
	metrics, _ := finiteValues(result.Metrics, nil)
	summary, _ := finiteValues(result.Summary, nil)
	return encodeExport(w, ExportData{
		Model:      result.Config.Model,
		Integrator: result.Config.Integrator,
		Dt:         result.Config.Dt,
		Duration:   result.Config.Duration,
		Adaptive:   result.Config.Adaptive,
		Steps:      len(result.Times),
		Columns:    result.Columns,
		Times:      result.Times,
		States:     result.States,
		Metrics:    metrics,
		Summary:    summary,
	})
}

// ExportResultCSV writes an unsaved result in the states.csv layout.
func ExportResultCSV(w io.Writer, result *experiment.Result) error {
	return writeStates(w, result.Columns, result.Times, result.States)
}

func encodeExport(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
