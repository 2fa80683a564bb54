// Package model trains and evaluates the attrition classifier: feature
// preparation, stratified splitting, optional rebalancing and tuning, an
// L2-regularized logistic regression, evaluation and persistence.
package model

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/stats"
	"github.com/paveg/scrub/internal/table"
	"github.com/paveg/scrub/internal/validation"
)

// Preprocessor standardizes numeric columns and one-hot encodes categorical
// ones. Categories not seen during Fit encode as all zeros.
type Preprocessor struct {
	Numeric     []string   `json:"numeric"`
	Means       []float64  `json:"means"`
	Scales      []float64  `json:"scales"`
	Categorical []string   `json:"categorical"`
	Levels      [][]string `json:"levels"`
}

// FitPreprocessor learns scaling parameters and category levels from the
// given rows of t.
func FitPreprocessor(t *table.Table, rows []int, numeric, categorical []string) (*Preprocessor, error) {
	if err := validation.ValidateColumns(t, "FitPreprocessor", append(slices.Clone(numeric), categorical...)...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &errors.PipelineError{Op: "FitPreprocessor", Message: "no rows to fit", Cause: errors.ErrEmptyTable}
	}

	p := &Preprocessor{
		Numeric:     slices.Clone(numeric),
		Means:       make([]float64, len(numeric)),
		Scales:      make([]float64, len(numeric)),
		Categorical: slices.Clone(categorical),
		Levels:      make([][]string, len(categorical)),
	}

	for j, name := range numeric {
		col, _ := t.Column(name)
		xs := make([]float64, 0, len(rows))
		for _, r := range rows {
			if f, ok := stats.ParseFloat(col.Value(r)); ok {
				xs = append(xs, f)
			}
		}
		if len(xs) == 0 {
			return nil, errors.NewValidationError("FitPreprocessor", name, "no numeric values")
		}
		mean, variance := stat.PopMeanVariance(xs, nil)
		p.Means[j] = mean
		p.Scales[j] = math.Sqrt(variance)
		if p.Scales[j] == 0 {
			p.Scales[j] = 1
		}
	}

	for j, name := range categorical {
		col, _ := t.Column(name)
		var levels []string
		for _, r := range rows {
			levels = append(levels, col.Value(r))
		}
		slices.Sort(levels)
		p.Levels[j] = slices.Compact(levels)
	}
	return p, nil
}

// Width returns the number of output features.
func (p *Preprocessor) Width() int {
	n := len(p.Numeric)
	for _, l := range p.Levels {
		n += len(l)
	}
	return n
}

// FeatureNames names the output features: "num__<col>" and "cat__<col>_<level>".
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	for _, n := range p.Numeric {
		names = append(names, "num__"+n)
	}
	for j, n := range p.Categorical {
		for _, l := range p.Levels[j] {
			names = append(names, fmt.Sprintf("cat__%s_%s", n, l))
		}
	}
	return names
}

// Transform encodes the given rows of t. Unparseable numeric cells encode as
// the training mean, i.e. zero after scaling.
func (p *Preprocessor) Transform(t *table.Table, rows []int) (*mat.Dense, error) {
	if err := validation.ValidateColumns(t, "Transform", append(slices.Clone(p.Numeric), p.Categorical...)...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &errors.PipelineError{Op: "Transform", Message: "no rows to transform", Cause: errors.ErrEmptyTable}
	}

	x := mat.NewDense(len(rows), p.Width(), nil)
	for j, name := range p.Numeric {
		col, _ := t.Column(name)
		for i, r := range rows {
			if f, ok := stats.ParseFloat(col.Value(r)); ok {
				x.Set(i, j, (f-p.Means[j])/p.Scales[j])
			}
		}
	}

	offset := len(p.Numeric)
	for j, name := range p.Categorical {
		col, _ := t.Column(name)
		levels := p.Levels[j]
		for i, r := range rows {
			if k, found := slices.BinarySearch(levels, col.Value(r)); found {
				x.Set(i, offset+k, 1)
			}
		}
		offset += len(levels)
	}
	return x, nil
}

// SelectRows copies the given rows of x into a new matrix.
func SelectRows(x mat.Matrix, rows []int) *mat.Dense {
	_, c := x.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := range c {
			out.Set(i, j, x.At(r, j))
		}
	}
	return out
}
