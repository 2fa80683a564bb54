package model

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/paveg/scrub/internal/plot"
)

// Importance is the mean absolute contribution of one feature.
type Importance struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Explainer attributes predictions to features.
type Explainer interface {
	Explain(x mat.Matrix) ([]Importance, error)
}

// LinearExplainer attributes the log-odds of a linear classifier: feature j
// contributes w_j * (x_j - mean_j), the mean taken over a background sample.
type LinearExplainer struct {
	Classifier *Classifier
	Features   []string
	Background []float64
}

// NewLinearExplainer computes the background column means.
func NewLinearExplainer(clf *Classifier, features []string, background mat.Matrix) (*LinearExplainer, error) {
	n, d := background.Dims()
	if d != len(clf.Weights) || d != len(features) {
		return nil, fmt.Errorf("explainer: %d columns, %d weights, %d feature names", d, len(clf.Weights), len(features))
	}
	if n == 0 {
		return nil, fmt.Errorf("explainer: empty background")
	}
	means := make([]float64, d)
	col := make([]float64, n)
	for j := range d {
		mat.Col(col, j, background)
		means[j] = stat.Mean(col, nil)
	}
	return &LinearExplainer{Classifier: clf, Features: features, Background: means}, nil
}

// Explain returns features ordered by decreasing mean |contribution| over
// the rows of x.
func (e *LinearExplainer) Explain(x mat.Matrix) ([]Importance, error) {
	n, d := x.Dims()
	if d != len(e.Background) {
		return nil, fmt.Errorf("explainer: expected %d columns, got %d", len(e.Background), d)
	}
	if n == 0 {
		return nil, fmt.Errorf("explainer: no rows")
	}
	out := make([]Importance, d)
	for j := range d {
		sum := 0.0
		for i := range n {
			sum += math.Abs(e.Classifier.Weights[j] * (x.At(i, j) - e.Background[j]))
		}
		out[j] = Importance{Feature: e.Features[j], Value: sum / float64(n)}
	}
	slices.SortStableFunc(out, func(a, b Importance) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// SummaryChart plots the top features, largest first.
func SummaryChart(importances []Importance, top int) plot.BarChart {
	if top <= 0 || top > len(importances) {
		top = len(importances)
	}
	bars := make([]plot.Bar, top)
	for i, imp := range importances[:top] {
		bars[i] = plot.Bar{Label: imp.Feature, Value: imp.Value}
	}
	return plot.BarChart{
		Title:        "Mean |contribution| to attrition log-odds",
		YLabel:       "mean |contribution|",
		Bars:         bars,
		RotateLabels: true,
	}
}
