package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Run is one recorded training run.
type Run struct {
	ID        string             `json:"id"`
	StartedAt time.Time          `json:"started_at"`
	Params    Params             `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
	Artifacts []string           `json:"artifacts"`
	Trials    []Trial            `json:"trials,omitempty"`
}

// Tracker records training runs.
type Tracker interface {
	Record(run *Run) error
}

// FileTracker stores each run as <Dir>/<run id>/run.json.
type FileTracker struct {
	Dir string
}

// NewFileTracker returns a tracker rooted at dir.
func NewFileTracker(dir string) *FileTracker {
	return &FileTracker{Dir: dir}
}

// Record assigns a run id when missing and writes the run.
func (f *FileTracker) Record(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	dir := filepath.Join(f.Dir, run.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.json"), data, 0o644); err != nil { //nolint:gosec // run records are not secret
		return fmt.Errorf("writing run: %w", err)
	}
	return nil
}
