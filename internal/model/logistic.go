package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/paveg/scrub/internal/validation"
)

// Params are the classifier hyperparameters.
type Params struct {
	// C is the inverse L2 regularization strength.
	C       float64 `json:"C" yaml:"C"`
	MaxIter int     `json:"max_iter" yaml:"max_iter"`
}

// DefaultParams mirror the usual logistic regression defaults.
func DefaultParams() Params {
	return Params{C: 1.0, MaxIter: 200}
}

// Classifier is a fitted binary logistic regression.
type Classifier struct {
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
}

// Fit trains an L2-regularized logistic regression on x and 0/1 labels y by
// minimizing the penalized log loss with L-BFGS.
func Fit(x mat.Matrix, y []float64, params Params) (*Classifier, error) {
	n, d := x.Dims()
	if err := validation.ValidateLength(n, len(y), "Fit", "labels and rows"); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("fit: no training rows")
	}
	if params.C <= 0 {
		return nil, fmt.Errorf("fit: C must be positive, got %g", params.C)
	}
	if params.MaxIter <= 0 {
		params.MaxIter = DefaultParams().MaxIter
	}

	rows := make([][]float64, n)
	for i := range n {
		rows[i] = make([]float64, d)
		mat.Row(rows[i], i, x)
	}
	lambda := 1 / params.C

	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			loss := 0.0
			for i, r := range rows {
				z := w[0] + floats.Dot(w[1:], r)
				loss += softplus(z) - y[i]*z
			}
			return loss + 0.5*lambda*floats.Dot(w[1:], w[1:])
		},
		Grad: func(grad, w []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i, r := range rows {
				z := w[0] + floats.Dot(w[1:], r)
				residual := sigmoid(z) - y[i]
				grad[0] += residual
				floats.AddScaled(grad[1:], residual, r)
			}
			floats.AddScaled(grad[1:], lambda, w[1:])
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   params.MaxIter,
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, make([]float64, d+1), settings, &optimize.LBFGS{})
	if result == nil || !allFinite(result.X) {
		if err == nil {
			err = fmt.Errorf("non-finite solution")
		}
		return nil, fmt.Errorf("fit: %w", err)
	}

	return &Classifier{
		Intercept: result.X[0],
		Weights:   append([]float64(nil), result.X[1:]...),
	}, nil
}

// PredictProba returns P(y=1) for each row of x.
func (c *Classifier) PredictProba(x mat.Matrix) []float64 {
	n, d := x.Dims()
	out := make([]float64, n)
	row := make([]float64, d)
	for i := range n {
		mat.Row(row, i, x)
		out[i] = sigmoid(c.Intercept + floats.Dot(c.Weights, row))
	}
	return out
}

// Predict thresholds PredictProba at 0.5.
func (c *Classifier) Predict(x mat.Matrix) []int {
	proba := c.PredictProba(x)
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1+e^z) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
