package model

import (
	"context"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/paveg/scrub/internal/parallel"
)

// Rebalancer resamples a training set.
type Rebalancer interface {
	Resample(x *mat.Dense, y []float64) (*mat.Dense, []float64, error)
}

// SMOTE oversamples the minority class by interpolating between a minority
// row and one of its K nearest minority neighbours until both classes have
// the same size.
type SMOTE struct {
	K    int
	Seed int64
}

// NewSMOTE returns a SMOTE rebalancer with five neighbours.
func NewSMOTE(seed int64) *SMOTE {
	return &SMOTE{K: 5, Seed: seed}
}

// Resample appends synthetic minority rows after the original rows. Inputs
// that are already balanced, or whose minority class has a single row, are
// returned unchanged.
func (s *SMOTE) Resample(x *mat.Dense, y []float64) (*mat.Dense, []float64, error) {
	n, d := x.Dims()
	if n != len(y) {
		return nil, nil, fmt.Errorf("smote: %d rows but %d labels", n, len(y))
	}

	var pos, neg []int
	for i, v := range y {
		if v == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	minority, minorityLabel := pos, 1.0
	if len(neg) < len(pos) {
		minority, minorityLabel = neg, 0.0
	}
	deficit := n - 2*len(minority)
	if deficit <= 0 || len(minority) < 2 {
		return x, y, nil
	}

	k := s.K
	if k <= 0 {
		k = 5
	}
	k = min(k, len(minority)-1)

	rows := make([][]float64, len(minority))
	for i, r := range minority {
		rows[i] = make([]float64, d)
		mat.Row(rows[i], r, x)
	}
	neighbours, err := parallel.Map(context.Background(), parallel.NewPool(0), rows, func(i int, _ []float64) []int {
		return nearest(rows, i, k)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("smote: %w", err)
	}

	out := mat.NewDense(n+deficit, d, nil)
	out.Copy(x)
	labels := make([]float64, n, n+deficit)
	copy(labels, y)

	rng := NewRand(s.Seed)
	synthetic := make([]float64, d)
	for i := range deficit {
		a := rng.IntN(len(rows))
		b := neighbours[a][rng.IntN(len(neighbours[a]))]
		gap := rng.Float64()
		copy(synthetic, rows[a])
		floats.AddScaled(synthetic, gap, floats.SubTo(make([]float64, d), rows[b], rows[a]))
		out.SetRow(n+i, synthetic)
		labels = append(labels, minorityLabel)
	}
	return out, labels, nil
}

// nearest returns the k rows closest to rows[i] by Euclidean distance, ties
// broken by index.
func nearest(rows [][]float64, i, k int) []int {
	type candidate struct {
		idx  int
		dist float64
	}
	cands := make([]candidate, 0, len(rows)-1)
	for j := range rows {
		if j != i {
			cands = append(cands, candidate{j, floats.Distance(rows[i], rows[j], 2)})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		default:
			return 0
		}
	})
	out := make([]int, k)
	for j := range k {
		out[j] = cands[j].idx
	}
	return out
}
