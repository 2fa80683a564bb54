// Package stats computes descriptive statistics over table columns.
package stats

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/paveg/scrub/internal/table"
)

// Number is any built-in numeric type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Quantile returns the p-quantile of xs using linear interpolation between
// closest ranks (numpy's default). xs need not be sorted. NaN for empty input.
func Quantile[T Number](xs []T, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(xs))
	for i, x := range xs {
		sorted[i] = float64(x)
	}
	slices.Sort(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median returns the 0.5 quantile.
func Median[T Number](xs []T) float64 {
	return Quantile(xs, 0.5)
}

// Mean returns the arithmetic mean, NaN for empty input.
func Mean[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(toFloat64(xs), nil)
}

func toFloat64[T Number](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// ParseFloat parses a numeric cell, tolerating surrounding whitespace.
func ParseFloat(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Floats returns the parseable values of col; unparseable and null cells are skipped.
func Floats(col *table.Column) []float64 {
	out := make([]float64, 0, col.Len())
	for i := range col.Len() {
		if col.IsNull(i) {
			continue
		}
		if f, ok := ParseFloat(col.Value(i)); ok {
			out = append(out, f)
		}
	}
	return out
}

// IsNumeric reports whether every non-null cell of col parses as a number and
// at least one does.
func IsNumeric(col *table.Column) bool {
	seen := false
	for i := range col.Len() {
		if col.IsNull(i) {
			continue
		}
		if _, ok := ParseFloat(col.Value(i)); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// FormatFloat renders f the way the pipelines write numbers: shortest exact
// form, empty for NaN.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Summary describes one column. Numeric columns fill the moments and
// quantiles; categorical ones fill Unique, Top and Freq.
type Summary struct {
	Column  string
	Numeric bool
	Count   int
	Unique  int
	Top     string
	Freq    int
	Mean    float64
	Std     float64
	Min     float64
	Q25     float64
	Q50     float64
	Q75     float64
	Max     float64
}

// Describe summarizes every column of t in column order.
func Describe(t *table.Table) []Summary {
	out := make([]Summary, 0, t.Width())
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		out = append(out, DescribeColumn(col))
	}
	return out
}

// DescribeColumn summarizes a single column.
func DescribeColumn(col *table.Column) Summary {
	s := Summary{Column: col.Name()}
	nan := math.NaN()
	s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan

	if IsNumeric(col) {
		xs := Floats(col)
		s.Numeric = true
		s.Count = len(xs)
		sorted := slices.Clone(xs)
		slices.Sort(sorted)
		s.Mean = stat.Mean(xs, nil)
		if len(xs) > 1 {
			s.Std = stat.StdDev(xs, nil)
		}
		s.Min = floats.Min(xs)
		s.Max = floats.Max(xs)
		s.Q25 = quantileSorted(sorted, 0.25)
		s.Q50 = quantileSorted(sorted, 0.5)
		s.Q75 = quantileSorted(sorted, 0.75)
		return s
	}

	counts := make(map[string]int)
	for i := range col.Len() {
		if col.IsNull(i) {
			continue
		}
		counts[col.Value(i)]++
		s.Count++
	}
	s.Unique = len(counts)
	for v, n := range counts {
		if n > s.Freq || (n == s.Freq && v < s.Top) {
			s.Top, s.Freq = v, n
		}
	}
	return s
}

// SummaryHeader is the column order of SummaryTable.
var SummaryHeader = []string{"column", "count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}

// SummaryTable lays summaries out one row per described column.
func SummaryTable(summaries []Summary) (*table.Table, error) {
	cells := make([][]string, len(SummaryHeader))
	for _, s := range summaries {
		row := []string{s.Column, strconv.Itoa(s.Count), "", "", "", FormatFloat(s.Mean), FormatFloat(s.Std),
			FormatFloat(s.Min), FormatFloat(s.Q25), FormatFloat(s.Q50), FormatFloat(s.Q75), FormatFloat(s.Max)}
		if !s.Numeric {
			row[2], row[3], row[4] = strconv.Itoa(s.Unique), s.Top, strconv.Itoa(s.Freq)
		}
		for j, v := range row {
			cells[j] = append(cells[j], v)
		}
	}
	cols := make([]*table.Column, len(SummaryHeader))
	for j, name := range SummaryHeader {
		cols[j] = table.NewNullableColumn(name, cells[j], nil)
	}
	return table.New(cols...)
}
