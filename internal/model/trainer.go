package model

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/monitoring"
	"github.com/paveg/scrub/internal/stats"
	"github.com/paveg/scrub/internal/table"
)

// Output file names written next to the model artifact.
const (
	ReportFile      = "classification_report.txt"
	ExplanationFile = "shap_summary.png"
)

// TrainerConfig holds the settings of one training run.
type TrainerConfig struct {
	Target      string
	RandomState int64
	TestSize    float64
	MaxIter     int
	ModelsDir   string
	// ExplainSample caps the rows used for explanations.
	ExplainSample int
	ExplainTop    int
}

// DefaultTrainerConfig returns the standard split and explanation settings.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Target:        "Attrition",
		RandomState:   42,
		TestSize:      0.25,
		MaxIter:       DefaultParams().MaxIter,
		ModelsDir:     "models",
		ExplainSample: 200,
		ExplainTop:    20,
	}
}

// Trainer fits, evaluates and persists a classifier. Rebalancer, Tuner and
// Tracker are optional; failures in tuning, tracking and explanation are
// logged and the run continues.
type Trainer struct {
	Config     TrainerConfig
	Rebalancer Rebalancer
	Tuner      Tuner
	Tracker    Tracker
	Explain    bool
	Now        func() time.Time

	logger  *zap.Logger
	metrics *monitoring.MetricsCollector
}

// NewTrainer creates a trainer with explanations enabled and no optional
// collaborators.
func NewTrainer(cfg TrainerConfig, logger *zap.Logger, metrics *monitoring.MetricsCollector) *Trainer {
	return &Trainer{
		Config:  cfg,
		Explain: true,
		Now:     time.Now,
		logger:  logging.OrNop(logger).Named("model"),
		metrics: metrics,
	}
}

// TrainResult is the outcome of Trainer.Train.
type TrainResult struct {
	Model           *Model
	ModelPath       string
	AUC             float64
	Report          ClassificationReport
	ReportPath      string
	ExplanationPath string
	Importances     []Importance
	Trials          []Trial
	RunID           string
	TrainRows       int
	TestRows        int
}

// Train fits a classifier on t. The target column must hold 0/1 labels;
// every other column is a feature, numeric when all its cells parse.
func (tr *Trainer) Train(t *table.Table) (*TrainResult, error) {
	cfg := tr.Config
	started := tr.Now()

	labels, err := Labels(t, cfg.Target)
	if err != nil {
		return nil, err
	}
	numeric, categorical := FeatureColumns(t, cfg.Target)
	tr.logger.Info("features selected",
		zap.Strings("numeric", numeric), zap.Strings("categorical", categorical))

	var trainRows, testRows []int
	err = tr.metrics.RecordStage("split", t.Len(), func() error {
		var splitErr error
		trainRows, testRows, splitErr = StratifiedSplit(labels, cfg.TestSize, cfg.RandomState)
		return splitErr
	})
	if err != nil {
		return nil, err
	}

	var (
		pre           *Preprocessor
		xTrain, xTest *mat.Dense
	)
	err = tr.metrics.RecordStage("features", t.Len(), func() error {
		var featErr error
		if pre, featErr = FitPreprocessor(t, trainRows, numeric, categorical); featErr != nil {
			return featErr
		}
		if xTrain, featErr = pre.Transform(t, trainRows); featErr != nil {
			return featErr
		}
		xTest, featErr = pre.Transform(t, testRows)
		return featErr
	})
	if err != nil {
		return nil, err
	}
	yTrain := pick(labels, trainRows)
	yTest := make([]int, len(testRows))
	for i, r := range testRows {
		yTest[i] = labels[r]
	}

	if tr.Rebalancer != nil {
		tr.logger.Info("rebalancing training set", zap.Int("rows", len(yTrain)))
		err = tr.metrics.RecordStage("rebalance", len(yTrain), func() error {
			var rbErr error
			xTrain, yTrain, rbErr = tr.Rebalancer.Resample(xTrain, yTrain)
			return rbErr
		})
		if err != nil {
			return nil, fmt.Errorf("rebalance: %w", err)
		}
	} else {
		tr.logger.Info("rebalancing disabled, using original training set")
	}

	params := Params{C: DefaultParams().C, MaxIter: cfg.MaxIter}
	var trials []Trial
	if tr.Tuner != nil {
		tr.logger.Info("tuning hyperparameters")
		_ = tr.metrics.RecordStage("tune", len(yTrain), func() error {
			best, ts, tuneErr := tr.Tuner.Tune(AUCObjective(xTrain, yTrain, xTest, yTest))
			trials = ts
			if tuneErr != nil {
				tr.logger.Warn("tuning failed, using default parameters", zap.Error(tuneErr))
				return tuneErr
			}
			if best.MaxIter == 0 {
				best.MaxIter = cfg.MaxIter
			}
			params = best
			tr.logger.Info("best parameters", zap.Float64("C", params.C), zap.Int("trials", len(trials)))
			return nil
		})
	}

	var clf *Classifier
	err = tr.metrics.RecordStage("fit", len(yTrain), func() error {
		var fitErr error
		clf, fitErr = Fit(xTrain, yTrain, params)
		return fitErr
	})
	if err != nil {
		return nil, err
	}

	proba := clf.PredictProba(xTest)
	auc, err := ROCAUC(yTest, proba)
	if err != nil {
		return nil, fmt.Errorf("evaluating: %w", err)
	}
	report, err := NewClassificationReport(yTest, clf.Predict(xTest))
	if err != nil {
		return nil, fmt.Errorf("evaluating: %w", err)
	}
	tr.logger.Info("test evaluation", zap.String("roc_auc", strconv.FormatFloat(auc, 'f', 4, 64)))

	m := &Model{
		CreatedAt:    started.UTC(),
		Target:       cfg.Target,
		Params:       params,
		Preprocessor: pre,
		Classifier:   clf,
		Features:     pre.FeatureNames(),
		AUC:          auc,
	}
	modelPath, err := m.Save(cfg.ModelsDir)
	if err != nil {
		return nil, err
	}
	tr.logger.Info("model saved", zap.String("path", modelPath))

	reportPath := filepath.Join(cfg.ModelsDir, ReportFile)
	if err := os.WriteFile(reportPath, []byte(report.String()), 0o644); err != nil { //nolint:gosec // report is not secret
		return nil, fmt.Errorf("writing classification report: %w", err)
	}

	result := &TrainResult{
		Model:      m,
		ModelPath:  modelPath,
		AUC:        auc,
		Report:     report,
		ReportPath: reportPath,
		Trials:     trials,
		TrainRows:  len(trainRows),
		TestRows:   len(testRows),
	}

	if tr.Tracker != nil {
		run := &Run{
			StartedAt: started.UTC(),
			Params:    params,
			Metrics:   map[string]float64{"roc_auc": auc, "accuracy": report.Accuracy},
			Artifacts: []string{modelPath, reportPath},
			Trials:    trials,
		}
		if err := tr.Tracker.Record(run); err != nil {
			tr.logger.Warn("could not record run", zap.Error(err))
		} else {
			result.RunID = run.ID
			tr.logger.Info("run recorded", zap.String("run_id", run.ID))
		}
	}

	if tr.Explain {
		path, imps, err := tr.explain(clf, pre.FeatureNames(), xTrain, xTest)
		if err != nil {
			tr.logger.Warn("explanation failed", zap.Error(err))
		} else {
			result.ExplanationPath, result.Importances = path, imps
			tr.logger.Info("explanation plot saved", zap.String("path", path))
		}
	}
	return result, nil
}

func (tr *Trainer) explain(clf *Classifier, features []string, background, eval *mat.Dense) (string, []Importance, error) {
	rng := NewRand(tr.Config.RandomState)
	sample := func(x *mat.Dense) *mat.Dense {
		n, _ := x.Dims()
		rows := rng.Perm(n)
		if limit := tr.Config.ExplainSample; limit > 0 && limit < n {
			rows = rows[:limit]
		}
		slices.Sort(rows)
		return SelectRows(x, rows)
	}

	explainer, err := NewLinearExplainer(clf, features, sample(background))
	if err != nil {
		return "", nil, err
	}
	imps, err := explainer.Explain(sample(eval))
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(tr.Config.ModelsDir, ExplanationFile)
	if err := SummaryChart(imps, tr.Config.ExplainTop).Save(path); err != nil {
		return "", nil, err
	}
	return path, imps, nil
}

// Labels reads a 0/1 target column.
func Labels(t *table.Table, target string) ([]int, error) {
	col, ok := t.Column(target)
	if !ok {
		return nil, &errors.PipelineError{
			Op: "Labels", Column: target, Message: "target column missing", Cause: errors.ErrTargetNotFound,
		}
	}
	out := make([]int, col.Len())
	for i := range out {
		switch col.Value(i) {
		case "1":
			out[i] = 1
		case "0":
		default:
			return nil, errors.NewValidationError("Labels", target,
				fmt.Sprintf("row %d: expected 0 or 1, got %q", i, col.Value(i)))
		}
	}
	return out, nil
}

// FeatureColumns splits every column except target into numeric and
// categorical, keeping table order.
func FeatureColumns(t *table.Table, target string) (numeric, categorical []string) {
	for _, name := range t.Columns() {
		if name == target {
			continue
		}
		col, _ := t.Column(name)
		if stats.IsNumeric(col) {
			numeric = append(numeric, name)
		} else {
			categorical = append(categorical, name)
		}
	}
	return numeric, categorical
}

func pick(labels []int, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(labels[r])
	}
	return out
}
