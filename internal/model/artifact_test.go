package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/model"
	"github.com/paveg/scrub/internal/testutil"
)

func TestModelSaveLoad(t *testing.T) {
	tbl := testutil.ParseCSV(t, featureCSV)
	rows := []int{0, 1, 2, 3}
	pre, err := model.FitPreprocessor(tbl, rows, []string{"age", "income"}, []string{"dept"})
	require.NoError(t, err)

	m := &model.Model{
		CreatedAt:    time.Date(2024, 3, 9, 14, 5, 6, 0, time.FixedZone("X", 3600)),
		Target:       "Attrition",
		Params:       model.DefaultParams(),
		Preprocessor: pre,
		Classifier:   &model.Classifier{Intercept: -0.5, Weights: []float64{0.1, -0.2, 0.3, 0.4, 0.5}},
		Features:     pre.FeatureNames(),
		AUC:          0.81,
	}

	dir := filepath.Join(t.TempDir(), "models")
	path, err := m.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model_20240309T130506Z.json"), path)

	loaded, err := model.LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.Classifier, loaded.Classifier)
	assert.Equal(t, m.Features, loaded.Features)
	assert.InDelta(t, 0.81, loaded.AUC, 1e-12)

	want, err := m.PredictProba(tbl, rows)
	require.NoError(t, err)
	got, err := loaded.PredictProba(tbl, rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := model.LoadModel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"classifier": {"weights": [1]}}`), 0o600))
	_, err = model.LoadModel(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing preprocessor")
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "20250102T030405Z", model.Timestamp(ts))
}
