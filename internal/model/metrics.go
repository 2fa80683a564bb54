package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/paveg/scrub/internal/validation"
)

// ROCAUC returns the area under the ROC curve of scores against 0/1 labels.
func ROCAUC(labels []int, scores []float64) (float64, error) {
	if err := validation.ValidateLength(len(labels), len(scores), "ROCAUC", "labels and scores"); err != nil {
		return 0, err
	}
	pos, neg := 0, 0
	for _, l := range labels {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, fmt.Errorf("roc auc: need both classes, got %d positive and %d negative", pos, neg)
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case scores[a] < scores[b]:
			return -1
		case scores[a] > scores[b]:
			return 1
		default:
			return 0
		}
	})
	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for k, i := range idx {
		y[k] = scores[i]
		classes[k] = labels[i] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// ClassMetrics are the per-class figures of a classification report.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport summarizes binary predictions.
type ClassificationReport struct {
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Support     int            `json:"support"`
}

// NewClassificationReport computes precision, recall and F1 for classes 0 and 1.
// Undefined ratios are reported as 0.
func NewClassificationReport(truth, pred []int) (ClassificationReport, error) {
	if err := validation.ValidateLength(len(truth), len(pred), "ClassificationReport", "truth and predictions"); err != nil {
		return ClassificationReport{}, err
	}

	var r ClassificationReport
	r.Support = len(truth)
	correct := 0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}
	if r.Support > 0 {
		r.Accuracy = float64(correct) / float64(r.Support)
	}

	for _, class := range []int{0, 1} {
		tp, fp, fn, support := 0, 0, 0, 0
		for i := range truth {
			switch {
			case truth[i] == class && pred[i] == class:
				tp++
			case truth[i] != class && pred[i] == class:
				fp++
			case truth[i] == class && pred[i] != class:
				fn++
			}
			if truth[i] == class {
				support++
			}
		}
		m := ClassMetrics{
			Label:     strconv.Itoa(class),
			Precision: ratio(tp, tp+fp),
			Recall:    ratio(tp, tp+fn),
			Support:   support,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)
	}

	r.MacroAvg = ClassMetrics{Label: "macro avg", Support: r.Support}
	r.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: r.Support}
	for _, m := range r.Classes {
		r.MacroAvg.Precision += m.Precision / float64(len(r.Classes))
		r.MacroAvg.Recall += m.Recall / float64(len(r.Classes))
		r.MacroAvg.F1 += m.F1 / float64(len(r.Classes))
		if r.Support > 0 {
			w := float64(m.Support) / float64(r.Support)
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a text table.
func (r ClassificationReport) String() string {
	w := prettytable.NewWriter()
	w.AppendHeader(prettytable.Row{"", "precision", "recall", "f1-score", "support"})
	row := func(m ClassMetrics) prettytable.Row {
		return prettytable.Row{m.Label, f2(m.Precision), f2(m.Recall), f2(m.F1), m.Support}
	}
	for _, m := range r.Classes {
		w.AppendRow(row(m))
	}
	w.AppendSeparator()
	w.AppendRow(prettytable.Row{"accuracy", "", "", f2(r.Accuracy), r.Support})
	w.AppendRow(row(r.MacroAvg))
	w.AppendRow(row(r.WeightedAvg))
	w.SetStyle(prettytable.StyleLight)
	w.Style().Format.Header = text.FormatDefault

	var b strings.Builder
	b.WriteString(w.Render())
	b.WriteByte('\n')
	return b.String()
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
