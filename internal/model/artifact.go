package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/paveg/scrub/internal/table"
)

// TimestampLayout formats UTC timestamps in artifact and version names.
const TimestampLayout = "20060102T150405Z"

// Timestamp formats t in UTC with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Model bundles the fitted preprocessing and classifier so that raw tables
// can be scored after loading.
type Model struct {
	CreatedAt    time.Time     `json:"created_at"`
	Target       string        `json:"target"`
	Params       Params        `json:"params"`
	Preprocessor *Preprocessor `json:"preprocessor"`
	Classifier   *Classifier   `json:"classifier"`
	Features     []string      `json:"features"`
	AUC          float64       `json:"auc"`
}

// PredictProba scores the given rows of t.
func (m *Model) PredictProba(t *table.Table, rows []int) ([]float64, error) {
	x, err := m.Preprocessor.Transform(t, rows)
	if err != nil {
		return nil, err
	}
	return m.Classifier.PredictProba(x), nil
}

// Save writes the model to dir as model_<timestamp>.json and returns the path.
func (m *Model) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating model directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding model: %w", err)
	}
	path := filepath.Join(dir, "model_"+Timestamp(m.CreatedAt)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // artifacts are meant to be shared
		return "", fmt.Errorf("writing model: %w", err)
	}
	return path, nil
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	if m.Preprocessor == nil || m.Classifier == nil {
		return nil, fmt.Errorf("decoding model %s: missing preprocessor or classifier", path)
	}
	if m.Preprocessor.Width() != len(m.Classifier.Weights) {
		return nil, fmt.Errorf("decoding model %s: %d features but %d weights", path, m.Preprocessor.Width(), len(m.Classifier.Weights))
	}
	return &m, nil
}
