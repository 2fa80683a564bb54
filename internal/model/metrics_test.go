package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/model"
)

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name     string
		labels   []int
		scores   []float64
		expected float64
	}{
		{"perfect", []int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1},
		{"inverted", []int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9}, 0},
		{"one swap", []int{0, 1, 0, 1}, []float64{0.1, 0.2, 0.3, 0.4}, 0.75},
		{"unsorted input", []int{1, 0, 1, 0}, []float64{0.9, 0.1, 0.8, 0.2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auc, err := model.ROCAUC(tt.labels, tt.scores)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, auc, 1e-9)
		})
	}

	t.Run("single class", func(t *testing.T) {
		_, err := model.ROCAUC([]int{1, 1}, []float64{0.2, 0.4})
		assert.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := model.ROCAUC([]int{0, 1}, []float64{0.2})
		assert.Error(t, err)
	})
}

func TestClassificationReport(t *testing.T) {
	r, err := model.NewClassificationReport([]int{0, 0, 1, 1, 1}, []int{0, 1, 1, 1, 0})
	require.NoError(t, err)

	require.Len(t, r.Classes, 2)
	assert.InDelta(t, 0.5, r.Classes[0].Precision, 1e-9)
	assert.InDelta(t, 0.5, r.Classes[0].Recall, 1e-9)
	assert.Equal(t, 2, r.Classes[0].Support)
	assert.InDelta(t, 2.0/3, r.Classes[1].F1, 1e-9)
	assert.Equal(t, 3, r.Classes[1].Support)

	assert.InDelta(t, 0.6, r.Accuracy, 1e-9)
	assert.InDelta(t, (0.5+2.0/3)/2, r.MacroAvg.Precision, 1e-9)
	assert.InDelta(t, 0.6, r.WeightedAvg.Precision, 1e-9)
	assert.Equal(t, 5, r.Support)

	text := r.String()
	for _, want := range []string{"precision", "recall", "f1-score", "accuracy", "macro avg", "weighted avg", "0.60"} {
		assert.Contains(t, text, want)
	}
}

func TestClassificationReportNoPredictionsOfClass(t *testing.T) {
	r, err := model.NewClassificationReport([]int{0, 1}, []int{0, 0})
	require.NoError(t, err)
	assert.Zero(t, r.Classes[1].Precision, "undefined precision reports as zero")
	assert.Zero(t, r.Classes[1].F1)
}
