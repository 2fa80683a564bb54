package catalog_test

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/paveg/scrub/internal/catalog"
	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/monitoring"
	"github.com/paveg/scrub/internal/testutil"
)

func TestClean(t *testing.T) {
	tbl := testutil.CatalogTable(t)
	core, logs := observer.New(zap.InfoLevel)

	report, err := catalog.Clean(tbl, zap.New(core), nil)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Rows)
	assert.Len(t, report.Corrections.Relocated, 1)
	assert.Empty(t, report.Corrections.Discarded)
	assert.Equal(t, 2, report.DatesImputed)
	assert.Equal(t, 3, report.RatingsImputed)
	assert.Equal(t, 1, logs.FilterMessage("duration relocated from rating").Len())

	testutil.AssertTableHasColumns(t, tbl, "date_imputed", "rating_imputed", "duration_value", "duration_unit")

	col := func(name string) []string { return testutil.ColumnValues(t, tbl, name) }

	t.Run("text columns", func(t *testing.T) {
		assert.Equal(t, "dick johnson is dead", col("title")[0])
		assert.Equal(t, "unknown", col("cast")[0])
		assert.Equal(t, "unknown", col("director")[1])
	})

	t.Run("no designated text column is empty", func(t *testing.T) {
		for _, name := range append(catalog.TextColumns, "rating", "date_added", "duration", "duration_unit") {
			c, _ := tbl.Column(name)
			for i := range tbl.Len() {
				assert.False(t, c.IsBlank(i), "%s row %d", name, i)
			}
		}
	})

	t.Run("lists", func(t *testing.T) {
		assert.Equal(t, "south africa", col("country")[1])
		assert.Equal(t, "international tv shows, tv dramas", col("listed_in")[1])
		assert.Equal(t, "canada, india", col("country")[6])
		assert.Equal(t, "action & adventure, dramas", col("listed_in")[3])
		assert.Equal(t, "unknown", col("country")[3])
	})

	t.Run("relocated duration", func(t *testing.T) {
		assert.Equal(t, "74 min", col("duration")[2])
		assert.Equal(t, "74", col("duration_value")[2])
		assert.Equal(t, "unknown", col("rating")[2])
		assert.Equal(t, "true", col("rating_imputed")[2])
	})

	t.Run("dates", func(t *testing.T) {
		assert.Equal(t, "2021-09-25", col("date_added")[0])
		assert.Equal(t, "false", col("date_imputed")[0])
		assert.Equal(t, "2015-01-05", col("date_added")[5], "group mode")
		assert.Equal(t, "true", col("date_imputed")[5])
		assert.Equal(t, "1999-01-01", col("date_added")[6], "release year fallback")
	})

	t.Run("ratings", func(t *testing.T) {
		assert.Equal(t, "PG-13", col("rating")[0])
		assert.Equal(t, "PG", col("rating")[5])
		assert.Equal(t, "true", col("rating_imputed")[5])
		assert.Equal(t, "unknown", col("rating")[6])
	})

	t.Run("durations", func(t *testing.T) {
		assert.Equal(t, "2", col("duration_value")[1])
		assert.Equal(t, "season", col("duration_unit")[1])
		value, _ := tbl.Column("duration_value")
		assert.True(t, value.IsNull(6))
		assert.Equal(t, "season", col("duration_unit")[6])
	})
}

func TestCleanLeavesIdentityColumnsAsRead(t *testing.T) {
	tbl := testutil.ParseCSV(t, `show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
,,,,,,,,,,,
s2,Movie,Alpha,,,,2015-01-05,2015,PG,90 min,Dramas,x
`)

	_, err := catalog.Clean(tbl, zap.NewNop(), nil)
	require.NoError(t, err)

	for _, name := range append(catalog.TextColumns, "rating", "duration", "duration_unit") {
		assert.Equal(t, "unknown", testutil.ColumnValues(t, tbl, name)[0], name)
	}
	assert.Equal(t, catalog.DefaultDate, testutil.ColumnValues(t, tbl, "date_added")[0])

	for _, name := range []string{"show_id", "type", "release_year", "duration_value"} {
		c, _ := tbl.Column(name)
		assert.True(t, c.IsNull(0), "%s is not sentinel-filled", name)
	}
}

func TestCleanRecordsStageMetrics(t *testing.T) {
	metrics := monitoring.NewMetricsCollector(true)
	_, err := catalog.Clean(testutil.CatalogTable(t), zap.NewNop(), metrics)
	require.NoError(t, err)

	var stages []string
	for _, m := range metrics.GetMetrics() {
		stages = append(stages, m.Stage)
	}
	assert.Equal(t, []string{
		"normalize_text", "normalize_lists", "correct_ratings",
		"impute_dates", "parse_durations", "impute_ratings",
	}, stages)
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "data/netflix_titles.csv", testutil.CatalogCSV)

	t.Run("csv output", func(t *testing.T) {
		opts := catalog.DefaultOptions()
		opts.InputPath = input
		opts.OutputPath = filepath.Join(dir, "data", "netflix_clean.csv")

		res, err := catalog.NewPipeline(opts, zap.NewNop(), monitoring.NewMetricsCollector(true)).Run()
		require.NoError(t, err)
		assert.Equal(t, opts.OutputPath, res.OutputPath)
		assert.Equal(t, 7, res.Profile.Rows)

		back, err := io.ReadFile(res.OutputPath, io.DefaultReadOptions())
		require.NoError(t, err)
		assert.Equal(t, res.Table.Columns(), back.Columns())
		for i := range res.Table.Len() {
			assert.Equal(t, res.Table.Row(i), back.Row(i), "row %d", i)
		}
	})

	t.Run("parquet output", func(t *testing.T) {
		opts := catalog.DefaultOptions()
		opts.InputPath = input
		opts.OutputPath = filepath.Join(dir, "data", "netflix_clean.parquet")
		opts.Format = io.FormatParquet

		res, err := catalog.NewPipeline(opts, nil, nil).Run()
		require.NoError(t, err)

		back, err := io.ReadFile(res.OutputPath, io.DefaultReadOptions())
		require.NoError(t, err)
		for i := range res.Table.Len() {
			assert.Equal(t, res.Table.Row(i), back.Row(i), "row %d", i)
		}
	})

	t.Run("fallback input and output directory", func(t *testing.T) {
		cwd := t.TempDir()
		t.Chdir(cwd)
		testutil.WriteFile(t, cwd, "netflix_titles.csv", testutil.CatalogCSV)

		core, logs := observer.New(zap.WarnLevel)
		res, err := catalog.NewPipeline(catalog.DefaultOptions(), zap.New(core), nil).Run()
		require.NoError(t, err)
		assert.Equal(t, "netflix_titles.csv", res.InputPath)
		assert.Equal(t, "netflix_clean.csv", res.OutputPath)
		assert.FileExists(t, filepath.Join(cwd, "netflix_clean.csv"))
		assert.Equal(t, 1, logs.FilterMessage("primary input missing, using fallback").Len())
		assert.Equal(t, 1, logs.FilterMessage("output directory missing, wrote to working directory").Len())
	})

	t.Run("missing input writes nothing", func(t *testing.T) {
		cwd := t.TempDir()
		t.Chdir(cwd)

		_, err := catalog.NewPipeline(catalog.DefaultOptions(), nil, nil).Run()
		require.Error(t, err)

		var pe *errors.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Message, "data/netflix_titles.csv")
		assert.Contains(t, pe.Hint, "netflix_titles.csv")
		assert.True(t, stderrors.Is(err, os.ErrNotExist))

		entries, err := os.ReadDir(cwd)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	primary := testutil.WriteFile(t, dir, "a.csv", "x\n")
	fallback := testutil.WriteFile(t, dir, "b.csv", "x\n")

	got, err := catalog.ResolveInput(primary, fallback)
	require.NoError(t, err)
	assert.Equal(t, primary, got)

	got, err = catalog.ResolveInput(filepath.Join(dir, "missing.csv"), fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	_, err = catalog.ResolveInput(filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)
}
