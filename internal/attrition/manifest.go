package attrition

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the run manifest written into the outputs directory.
const ManifestFile = "manifest.yaml"

// Manifest records what a run produced.
type Manifest struct {
	ModelVersion  string  `yaml:"model_version"`
	ModelArtifact string  `yaml:"model_artifact"`
	AUC           float64 `yaml:"auc"`
	ShapPlot      string  `yaml:"shap_plot,omitempty"`
}

// WriteManifest writes m to dir/manifest.yaml and returns the path.
func WriteManifest(dir string, m Manifest) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating outputs directory: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // manifest is not secret
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
