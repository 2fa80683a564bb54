package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/attrition"
	"github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/testutil"
	"github.com/paveg/scrub/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "scrub "+version.Version)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestCatalogCommand(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "titles.csv", testutil.CatalogCSV)

	t.Run("csv", func(t *testing.T) {
		output := filepath.Join(dir, "clean.csv")
		out, err := execute(t, "catalog", "--input", input, "--output", output, "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "cleaned 7 rows")

		tbl, err := io.ReadFile(output, io.DefaultReadOptions())
		require.NoError(t, err)
		testutil.AssertTableHasColumns(t, tbl, "duration_value", "duration_unit", "date_imputed", "rating_imputed")
	})

	t.Run("parquet inferred from extension", func(t *testing.T) {
		output := filepath.Join(dir, "clean.parquet")
		_, err := execute(t, "catalog", "--input", input, "--output", output, "--log-level", "error")
		require.NoError(t, err)

		tbl, err := io.ReadFile(output, io.DefaultReadOptions())
		require.NoError(t, err)
		assert.Equal(t, 7, tbl.Len())
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := execute(t, "catalog", "--input", input, "--format", "xlsx")
		assert.Error(t, err)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := execute(t, "catalog",
			"--input", filepath.Join(dir, "nope.csv"),
			"--fallback", filepath.Join(dir, "also-nope.csv"),
			"--output", filepath.Join(dir, "never.csv"),
			"--log-level", "error")
		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "never.csv"))
	})
}

func TestAttritionCommand(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "hr.csv", testutil.HRCSV())
	cfgPath := testutil.WriteFile(t, dir, "config.yaml", `
data:
  input_path: `+input+`
outputs:
  dir: `+filepath.Join(dir, "outputs")+`
  models_dir: `+filepath.Join(dir, "models")+`
  logs_dir: `+filepath.Join(dir, "logs")+`
modeling:
  n_trials: 2
logging:
  level: warn
`)

	out, err := execute(t, "attrition", "--config", cfgPath, "--metrics=false")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline finished")

	m, err := attrition.ReadManifest(filepath.Join(dir, "outputs", attrition.ManifestFile))
	require.NoError(t, err)
	assert.Contains(t, m.ModelVersion, "attrition_model_")
	assert.FileExists(t, m.ModelArtifact)
	assert.FileExists(t, filepath.Join(dir, "logs", attrition.LogFile))
}

func TestAttritionCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteFile(t, dir, "config.yaml", `
data:
  input_path: `+filepath.Join(dir, "absent.csv")+`
outputs:
  dir: `+filepath.Join(dir, "outputs")+`
  models_dir: `+filepath.Join(dir, "models")+`
  logs_dir: `+filepath.Join(dir, "logs")+`
`)

	_, err := execute(t, "attrition", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.csv")
	assert.NoDirExists(t, filepath.Join(dir, "logs"))
	assert.NoDirExists(t, filepath.Join(dir, "outputs"))
}

func TestAttritionCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "attrition", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigDefaultsWhenImplicitPathMissing(t *testing.T) {
	t.Setenv("SCRUB_N_TRIALS", "4")
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "config.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Modeling.NTrials)

	_, err = loadConfig(filepath.Join(t.TempDir(), "config.yaml"), true)
	assert.Error(t, err)
}
