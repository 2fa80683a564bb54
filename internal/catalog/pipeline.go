package catalog

import (
	stderrors "errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/monitoring"
	"github.com/paveg/scrub/internal/table"
)

// Default catalog locations.
const (
	DefaultInputPath         = "data/netflix_titles.csv"
	DefaultFallbackInputPath = "netflix_titles.csv"
	DefaultOutputPath        = "data/netflix_clean.csv"
)

// Options configures a catalog run.
type Options struct {
	InputPath         string
	FallbackInputPath string
	OutputPath        string
	Format            io.Format
	// PreviewRows bounds the head/tail sample in the profile; 0 disables it.
	PreviewRows int
}

// DefaultOptions returns the standard catalog locations with CSV output.
func DefaultOptions() Options {
	return Options{
		InputPath:         DefaultInputPath,
		FallbackInputPath: DefaultFallbackInputPath,
		OutputPath:        DefaultOutputPath,
		Format:            io.FormatCSV,
		PreviewRows:       5,
	}
}

// Report describes what cleaning changed.
type Report struct {
	Rows           int
	Corrections    CorrectionReport
	DatesImputed   int
	RatingsImputed int
}

// Result is the outcome of Pipeline.Run.
type Result struct {
	Report
	InputPath  string
	OutputPath string
	Profile    Profile
	Table      *table.Table
}

// Pipeline loads, cleans and writes a catalog.
type Pipeline struct {
	opts    Options
	logger  *zap.Logger
	metrics *monitoring.MetricsCollector
}

// NewPipeline creates a pipeline. A nil metrics collector disables stage metrics.
func NewPipeline(opts Options, logger *zap.Logger, metrics *monitoring.MetricsCollector) *Pipeline {
	return &Pipeline{
		opts:    opts,
		logger:  logging.OrNop(logger).Named("catalog"),
		metrics: metrics,
	}
}

// Run executes the full pipeline. Missing input aborts before anything is written.
func (p *Pipeline) Run() (*Result, error) {
	input, err := ResolveInput(p.opts.InputPath, p.opts.FallbackInputPath)
	if err != nil {
		return nil, err
	}
	if input != p.opts.InputPath {
		p.logger.Warn("primary input missing, using fallback",
			zap.String("primary", p.opts.InputPath), zap.String("fallback", input))
	}

	var t *table.Table
	err = p.metrics.RecordStage("load", 0, func() error {
		var loadErr error
		t, loadErr = io.ReadFile(input, io.DefaultReadOptions())
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("catalog loaded", zap.String("path", input), zap.Int("rows", t.Len()), zap.Int("columns", t.Width()))

	profile := BuildProfile(t, p.opts.PreviewRows)
	p.logger.Info("initial profile\n" + profile.Render())

	report, err := Clean(t, p.logger, p.metrics)
	if err != nil {
		return nil, err
	}

	var written string
	err = p.metrics.RecordStage("write", t.Len(), func() error {
		var writeErr error
		written, writeErr = p.write(t)
		return writeErr
	})
	if err != nil {
		return nil, err
	}
	if written != p.opts.OutputPath {
		p.logger.Warn("output directory missing, wrote to working directory",
			zap.String("requested", p.opts.OutputPath), zap.String("path", written))
	}
	p.logger.Info("catalog cleaned", zap.String("path", written), zap.Int("rows", t.Len()))
	p.metrics.LogSummary(p.logger)

	return &Result{
		Report:     report,
		InputPath:  input,
		OutputPath: written,
		Profile:    profile,
		Table:      t,
	}, nil
}

func (p *Pipeline) write(t *table.Table) (string, error) {
	opts := io.DefaultWriteOptions()
	opts.Format = p.opts.Format
	opts.Parquet.ColumnTypes = map[string]io.ColumnType{
		ColReleaseYear:   io.Int64Type,
		ColDurationValue: io.Int64Type,
		ColDateImputed:   io.BoolType,
		ColRatingImputed: io.BoolType,
	}
	return io.WriteFile(p.opts.OutputPath, t, opts)
}

// Clean runs every cleaning stage over t in place, in order: text
// normalization, list normalization, rating/duration correction, date
// imputation, duration parsing and rating imputation. The correction runs
// before both imputers so relocated values are not read as gaps.
func Clean(t *table.Table, logger *zap.Logger, metrics *monitoring.MetricsCollector) (Report, error) {
	logger = logging.OrNop(logger)
	report := Report{Rows: t.Len()}
	rows := t.Len()

	stages := []struct {
		name string
		run  func() error
	}{
		{"normalize_text", func() error {
			if err := NormalizeText(t, TextColumns...); err != nil {
				return err
			}
			return FillMissing(t, ColRating)
		}},
		{"normalize_lists", func() error { return NormalizeLists(t, ListColumns...) }},
		{"correct_ratings", func() error {
			var err error
			report.Corrections, err = CorrectRatingDurations(t)
			return err
		}},
		{"impute_dates", func() error {
			var err error
			report.DatesImputed, err = ImputeDates(t)
			return err
		}},
		{"parse_durations", func() error { return ParseDurations(t) }},
		{"impute_ratings", func() error {
			var err error
			report.RatingsImputed, err = ImputeRatings(t)
			return err
		}},
	}

	for _, s := range stages {
		if err := metrics.RecordStage(s.name, rows, s.run); err != nil {
			return report, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	for _, c := range report.Corrections.Relocated {
		logger.Info("duration relocated from rating",
			zap.Int("row", c.Row), zap.String("show_id", c.ShowID), zap.String("value", c.Value))
	}
	for _, c := range report.Corrections.Discarded {
		logger.Warn("rating held a duration but duration was already set; rating value dropped",
			zap.Int("row", c.Row), zap.String("show_id", c.ShowID), zap.String("value", c.Value))
	}
	logger.Info("imputation finished",
		zap.Int("dates_imputed", report.DatesImputed),
		zap.Int("ratings_imputed", report.RatingsImputed))
	return report, nil
}

// ResolveInput returns primary when it exists, otherwise fallback. When
// neither exists the error names the primary path.
func ResolveInput(primary, fallback string) (string, error) {
	_, err := os.Stat(primary)
	if err == nil {
		return primary, nil
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", primary, err)
	}
	if fallback != "" {
		if _, ferr := os.Stat(fallback); ferr == nil {
			return fallback, nil
		}
		return "", errors.NewInputNotFoundError("Load", primary, err).
			WithHint(fmt.Sprintf("also tried %q", fallback))
	}
	return "", errors.NewInputNotFoundError("Load", primary, err)
}
