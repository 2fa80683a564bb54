package model

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/parallel"
)

// Objective scores one parameter set; higher is better.
type Objective func(Params) (float64, error)

// Trial is one evaluated parameter set.
type Trial struct {
	Number int     `json:"number"`
	Params Params  `json:"params"`
	Score  float64 `json:"score"`
}

// Tuner searches for the best parameters.
type Tuner interface {
	Tune(objective Objective) (Params, []Trial, error)
}

// RandomSearch samples C log-uniformly from [MinC, MaxC] for Trials rounds.
// Parameters are drawn up front from Seed, so results do not depend on
// Workers, the number of trials evaluated concurrently.
type RandomSearch struct {
	Trials  int
	MinC    float64
	MaxC    float64
	MaxIter int
	Seed    int64
	Workers int
	Logger  *zap.Logger
}

// NewRandomSearch returns a search over C in [1e-3, 1e2] using every CPU.
func NewRandomSearch(trials int, seed int64, logger *zap.Logger) *RandomSearch {
	return &RandomSearch{
		Trials:  trials,
		MinC:    1e-3,
		MaxC:    1e2,
		MaxIter: DefaultParams().MaxIter,
		Seed:    seed,
		Logger:  logging.OrNop(logger),
	}
}

// Tune evaluates every trial and returns the best parameters, the earliest
// trial winning ties. Failed trials are logged and skipped; an error is
// returned only when every trial fails. objective must be safe for
// concurrent use.
func (s *RandomSearch) Tune(objective Objective) (Params, []Trial, error) {
	if s.Trials <= 0 {
		return Params{}, nil, fmt.Errorf("random search: trials must be positive, got %d", s.Trials)
	}
	if s.MinC <= 0 || s.MaxC < s.MinC {
		return Params{}, nil, fmt.Errorf("random search: invalid C range [%g, %g]", s.MinC, s.MaxC)
	}
	logger := logging.OrNop(s.Logger)

	rng := NewRand(s.Seed)
	lo, hi := math.Log(s.MinC), math.Log(s.MaxC)
	candidates := make([]Params, s.Trials)
	for i := range candidates {
		candidates[i] = Params{C: math.Exp(lo + rng.Float64()*(hi-lo)), MaxIter: s.MaxIter}
	}

	type outcome struct {
		score float64
		err   error
	}
	outcomes, err := parallel.Map(context.Background(), parallel.NewPool(s.Workers), candidates,
		func(_ int, p Params) outcome {
			score, err := objective(p)
			return outcome{score, err}
		})
	if err != nil {
		return Params{}, nil, fmt.Errorf("random search: %w", err)
	}

	var (
		trials  []Trial
		lastErr error
	)
	best := -1
	for i, o := range outcomes {
		p := candidates[i]
		if o.err != nil {
			logger.Warn("trial failed", zap.Int("trial", i), zap.Float64("C", p.C), zap.Error(o.err))
			lastErr = o.err
			continue
		}
		trials = append(trials, Trial{Number: i, Params: p, Score: o.score})
		if best < 0 || o.score > trials[best].Score {
			best = len(trials) - 1
		}
		logger.Debug("trial finished", zap.Int("trial", i), zap.Float64("C", p.C), zap.Float64("score", o.score))
	}
	if best < 0 {
		return Params{}, trials, fmt.Errorf("random search: all %d trials failed: %w", s.Trials, lastErr)
	}
	return trials[best].Params, trials, nil
}

// AUCObjective fits on the training data and scores ROC AUC on the
// evaluation data.
func AUCObjective(xTrain *mat.Dense, yTrain []float64, xEval *mat.Dense, yEval []int) Objective {
	return func(p Params) (float64, error) {
		clf, err := Fit(xTrain, yTrain, p)
		if err != nil {
			return 0, err
		}
		return ROCAUC(yEval, clf.PredictProba(xEval))
	}
}
