package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/model"
	"github.com/paveg/scrub/internal/testutil"
)

const featureCSV = `age,dept,income
20,sales,100
30,hr,200
40,sales,300
50,rnd,400`

func TestPreprocessor(t *testing.T) {
	tbl := testutil.ParseCSV(t, featureCSV)
	all := []int{0, 1, 2, 3}

	pre, err := model.FitPreprocessor(tbl, []int{0, 1, 2}, []string{"age", "income"}, []string{"dept"})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{30, 200}, pre.Means, 1e-9)
	assert.Equal(t, [][]string{{"hr", "sales"}}, pre.Levels, "levels come from training rows only")
	assert.Equal(t, 4, pre.Width())
	assert.Equal(t, []string{"num__age", "num__income", "cat__dept_hr", "cat__dept_sales"}, pre.FeatureNames())

	x, err := pre.Transform(tbl, all)
	require.NoError(t, err)
	rows, cols := x.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)

	assert.InDelta(t, 0, x.At(1, 0), 1e-9, "mean scales to zero")
	assert.InDelta(t, -x.At(0, 0), x.At(2, 0), 1e-9)
	assert.Equal(t, []float64{0, 1}, []float64{x.At(0, 2), x.At(0, 3)})
	assert.Equal(t, []float64{1, 0}, []float64{x.At(1, 2), x.At(1, 3)})
	assert.Equal(t, []float64{0, 0}, []float64{x.At(3, 2), x.At(3, 3)}, "unseen level encodes as zeros")
}

func TestPreprocessorConstantColumn(t *testing.T) {
	tbl := testutil.ParseCSV(t, "a\n5\n5\n5")
	pre, err := model.FitPreprocessor(tbl, []int{0, 1, 2}, []string{"a"}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, pre.Scales[0], 1e-9)

	x, err := pre.Transform(tbl, []int{0})
	require.NoError(t, err)
	assert.InDelta(t, 0, x.At(0, 0), 1e-9)
}

func TestPreprocessorErrors(t *testing.T) {
	tbl := testutil.ParseCSV(t, featureCSV)

	_, err := model.FitPreprocessor(tbl, []int{0}, []string{"missing"}, nil)
	assert.Error(t, err)

	_, err = model.FitPreprocessor(tbl, nil, []string{"age"}, nil)
	assert.Error(t, err)

	_, err = model.FitPreprocessor(tbl, []int{0, 1}, []string{"dept"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no numeric values")
}

func TestSelectRows(t *testing.T) {
	tbl := testutil.ParseCSV(t, featureCSV)
	pre, err := model.FitPreprocessor(tbl, []int{0, 1, 2, 3}, []string{"age"}, nil)
	require.NoError(t, err)
	x, err := pre.Transform(tbl, []int{0, 1, 2, 3})
	require.NoError(t, err)

	sub := model.SelectRows(x, []int{3, 0})
	r, c := sub.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.InDelta(t, x.At(3, 0), sub.At(0, 0), 1e-12)
	assert.InDelta(t, x.At(0, 0), sub.At(1, 0), 1e-12)
}
