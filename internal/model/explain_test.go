package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/paveg/scrub/internal/model"
)

func TestLinearExplainer(t *testing.T) {
	clf := &model.Classifier{Weights: []float64{2, 0, -1}}
	background := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		2, 2, 2,
	})
	explainer, err := model.NewLinearExplainer(clf, []string{"a", "b", "c"}, background)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, explainer.Background)

	imps, err := explainer.Explain(mat.NewDense(2, 3, []float64{
		3, 5, 1,
		1, 5, 3,
	}))
	require.NoError(t, err)
	require.Len(t, imps, 3)

	assert.Equal(t, "a", imps[0].Feature)
	assert.InDelta(t, 2, imps[0].Value, 1e-9)
	assert.Equal(t, "c", imps[1].Feature)
	assert.InDelta(t, 1, imps[1].Value, 1e-9)
	assert.Equal(t, "b", imps[2].Feature)
	assert.Zero(t, imps[2].Value, "zero weight contributes nothing")
}

func TestLinearExplainerErrors(t *testing.T) {
	clf := &model.Classifier{Weights: []float64{1, 1}}

	_, err := model.NewLinearExplainer(clf, []string{"a"}, mat.NewDense(1, 2, nil))
	assert.Error(t, err)

	e, err := model.NewLinearExplainer(clf, []string{"a", "b"}, mat.NewDense(1, 2, nil))
	require.NoError(t, err)
	_, err = e.Explain(mat.NewDense(1, 3, nil))
	assert.Error(t, err)
}

func TestSummaryChart(t *testing.T) {
	imps := []model.Importance{{Feature: "a", Value: 3}, {Feature: "b", Value: 2}, {Feature: "c", Value: 1}}

	chart := model.SummaryChart(imps, 2)
	require.Len(t, chart.Bars, 2)
	assert.Equal(t, "a", chart.Bars[0].Label)

	assert.Len(t, model.SummaryChart(imps, 0).Bars, 3)
}
