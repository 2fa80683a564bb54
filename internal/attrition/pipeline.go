package attrition

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/paveg/scrub/internal/config"
	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/model"
	"github.com/paveg/scrub/internal/monitoring"
	"github.com/paveg/scrub/internal/table"
)

// LogFile is the pipeline log written into the logs directory.
const LogFile = "pipeline.log"

// CheckInput fails with an input-not-found error when the configured dataset
// is missing. Callers run it before NewLogger so a bad path leaves no log
// file behind.
func CheckInput(cfg config.Config) error {
	_, err := os.Stat(cfg.Data.InputPath)
	if err == nil {
		return nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewInputNotFoundError("Load", cfg.Data.InputPath, err)
	}
	return fmt.Errorf("stat %s: %w", cfg.Data.InputPath, err)
}

// NewLogger builds the pipeline logger: stdout plus <logs_dir>/pipeline.log.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Encoding = cfg.Logging.Encoding
	return logging.New(lc.WithFile(filepath.Join(cfg.Outputs.LogsDir, LogFile)))
}

// Result is the outcome of Pipeline.Run.
type Result struct {
	Clean        CleanReport
	Rows         int
	EDAFiles     []string
	Training     *model.TrainResult
	Manifest     Manifest
	ManifestPath string
}

// Pipeline loads, cleans, explores and models the HR dataset.
type Pipeline struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *monitoring.MetricsCollector
	// Now stamps the model artifact and manifest version.
	Now func() time.Time
}

// NewPipeline creates a pipeline for cfg. A nil metrics collector disables
// stage metrics.
func NewPipeline(cfg config.Config, logger *zap.Logger, metrics *monitoring.MetricsCollector) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		logger:  logging.OrNop(logger).Named("attrition"),
		metrics: metrics,
		Now:     time.Now,
	}
}

// Run executes every step. Output directories are created only once the
// input has loaded. Load, cleaning, EDA and training failures abort
// the run; optional modeling steps only log warnings.
func (p *Pipeline) Run() (*Result, error) {
	cfg := p.cfg

	var raw *table.Table
	err := p.metrics.RecordStage("load", 0, func() error {
		var loadErr error
		raw, loadErr = io.ReadFile(cfg.Data.InputPath, io.DefaultReadOptions())
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("dataset loaded", zap.String("path", cfg.Data.InputPath),
		zap.Int("rows", raw.Len()), zap.Int("columns", raw.Width()))

	for _, dir := range []string{cfg.Outputs.Dir, cfg.Outputs.ModelsDir, cfg.Outputs.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	var (
		clean  *table.Table
		report CleanReport
	)
	err = p.metrics.RecordStage("clean", raw.Len(), func() error {
		var cleanErr error
		clean, report, cleanErr = Clean(raw, p.logger)
		return cleanErr
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Clean: report, Rows: clean.Len()}
	err = p.metrics.RecordStage("eda", clean.Len(), func() error {
		files, edaErr := WriteSummary(clean, cfg.Outputs.Dir, p.logger)
		result.EDAFiles = append(result.EDAFiles, files...)
		if edaErr != nil {
			return edaErr
		}
		files, edaErr = WritePlots(clean, cfg.Outputs.Dir, p.logger)
		result.EDAFiles = append(result.EDAFiles, files...)
		return edaErr
	})
	if err != nil {
		return nil, err
	}

	started := p.Now()
	trainer := p.trainer(started)
	training, err := trainer.Train(clean)
	if err != nil {
		return nil, fmt.Errorf("training: %w", err)
	}
	result.Training = training

	result.Manifest = Manifest{
		ModelVersion:  VersionName(cfg.Modeling.ModelPrefix, started),
		ModelArtifact: training.ModelPath,
		AUC:           training.AUC,
		ShapPlot:      training.ExplanationPath,
	}
	result.ManifestPath, err = WriteManifest(cfg.Outputs.Dir, result.Manifest)
	if err != nil {
		return nil, err
	}

	p.metrics.LogSummary(p.logger)
	p.logger.Info("pipeline completed", zap.String("manifest", result.ManifestPath))
	return result, nil
}

func (p *Pipeline) trainer(started time.Time) *model.Trainer {
	mc := p.cfg.Modeling
	tc := model.DefaultTrainerConfig()
	tc.Target = Target
	tc.RandomState = mc.RandomState
	tc.TestSize = mc.TestSize
	tc.MaxIter = mc.MaxIter
	tc.ModelsDir = p.cfg.Outputs.ModelsDir

	tr := model.NewTrainer(tc, p.logger, p.metrics)
	tr.Now = func() time.Time { return started }
	if mc.SMOTE {
		tr.Rebalancer = model.NewSMOTE(mc.RandomState)
	}
	if mc.Optuna {
		tr.Tuner = model.NewRandomSearch(mc.NTrials, mc.RandomState, p.logger)
	}
	if mc.TrackingDir != "" {
		tr.Tracker = model.NewFileTracker(mc.TrackingDir)
	}
	return tr
}

// VersionName returns "<prefix>_<UTC timestamp>".
func VersionName(prefix string, t time.Time) string {
	return prefix + "_" + model.Timestamp(t)
}
