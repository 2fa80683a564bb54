package attrition

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/plot"
	"github.com/paveg/scrub/internal/stats"
	"github.com/paveg/scrub/internal/table"
)

// EDA output file names.
const (
	DescriptiveStatsFile = "descriptive_stats.csv"
	SummaryFile          = "attrition_summary.txt"
	CountsPlotFile       = "attrition_counts.png"
	DepartmentPlotFile   = "attrition_by_department.png"
	IncomePlotFile       = "monthlyincome_by_attrition.png"
)

const (
	departmentColumn    = "Department"
	monthlyIncomeColumn = "MonthlyIncome"
)

// WriteSummary writes per-column descriptive statistics and the overall
// attrition rate into dir. t must hold a cleaned 0/1 target.
func WriteSummary(t *table.Table, dir string, logger *zap.Logger) ([]string, error) {
	logger = logging.OrNop(logger)
	logger.Info("writing descriptive statistics")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating outputs directory: %w", err)
	}

	summary, err := stats.SummaryTable(stats.Describe(t))
	if err != nil {
		return nil, err
	}
	statsPath, err := io.WriteFile(filepath.Join(dir, DescriptiveStatsFile), summary, io.DefaultWriteOptions())
	if err != nil {
		return nil, err
	}

	rate, err := Rate(t, nil)
	if err != nil {
		return nil, err
	}
	summaryPath := filepath.Join(dir, SummaryFile)
	content := fmt.Sprintf("Overall attrition rate: %.4f\n", rate)
	if err := os.WriteFile(summaryPath, []byte(content), 0o644); err != nil { //nolint:gosec // report file
		return nil, fmt.Errorf("writing attrition summary: %w", err)
	}
	logger.Info("attrition rate", zap.Float64("rate", rate))
	return []string{statsPath, summaryPath}, nil
}

// Rate returns the mean of the 0/1 target over rows, or over every row when
// rows is nil.
func Rate(t *table.Table, rows []int) (float64, error) {
	col, err := t.Lookup("Rate", Target)
	if err != nil {
		return 0, err
	}
	if rows == nil {
		rows = make([]int, col.Len())
		for i := range rows {
			rows[i] = i
		}
	}
	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := stats.ParseFloat(col.Value(r)); ok {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return 0, fmt.Errorf("attrition rate: no target values")
	}
	return stats.Mean(xs), nil
}

// WritePlots renders the attrition charts into dir. Department and income
// charts are skipped when their column is absent.
func WritePlots(t *table.Table, dir string, logger *zap.Logger) ([]string, error) {
	logger = logging.OrNop(logger)
	logger.Info("rendering charts")

	charts := map[string]func(*table.Table) (plot.BarChart, error){
		CountsPlotFile: countsChart,
	}
	if t.HasColumn(departmentColumn) {
		charts[DepartmentPlotFile] = departmentChart
	}
	if t.HasColumn(monthlyIncomeColumn) {
		charts[IncomePlotFile] = incomeChart
	}

	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	slices.Sort(names)

	var written []string
	for _, name := range names {
		chart, err := charts[name](t)
		if err != nil {
			return written, fmt.Errorf("%s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := chart.Save(path); err != nil {
			return written, err
		}
		logger.Debug("chart saved", zap.String("path", path))
		written = append(written, path)
	}
	return written, nil
}

func countsChart(t *table.Table) (plot.BarChart, error) {
	g, err := t.GroupBy(Target)
	if err != nil {
		return plot.BarChart{}, err
	}
	var bars []plot.Bar
	g.Each(func(key []string, rows []int) {
		bars = append(bars, plot.Bar{Label: key[0], Value: float64(len(rows))})
	})
	return plot.BarChart{Title: "Attrition distribution (0=No, 1=Yes)", YLabel: "employees", Bars: bars}, nil
}

func departmentChart(t *table.Table) (plot.BarChart, error) {
	g, err := t.GroupBy(departmentColumn)
	if err != nil {
		return plot.BarChart{}, err
	}
	var (
		bars    []plot.Bar
		lastErr error
	)
	g.Each(func(key []string, rows []int) {
		rate, err := Rate(t, rows)
		if err != nil {
			lastErr = err
			return
		}
		bars = append(bars, plot.Bar{Label: key[0], Value: rate})
	})
	if lastErr != nil {
		return plot.BarChart{}, lastErr
	}
	slices.SortStableFunc(bars, func(a, b plot.Bar) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return 0
		}
	})
	return plot.BarChart{
		Title:        "Attrition rate by department",
		YLabel:       "attrition rate",
		Bars:         bars,
		RotateLabels: true,
	}, nil
}

// incomeChart shows the income quartiles of each target class.
func incomeChart(t *table.Table) (plot.BarChart, error) {
	g, err := t.GroupBy(Target)
	if err != nil {
		return plot.BarChart{}, err
	}
	income, err := t.Lookup("incomeChart", monthlyIncomeColumn)
	if err != nil {
		return plot.BarChart{}, err
	}
	var bars []plot.Bar
	g.Each(func(key []string, rows []int) {
		xs := make([]float64, 0, len(rows))
		for _, r := range rows {
			if f, ok := stats.ParseFloat(income.Value(r)); ok {
				xs = append(xs, f)
			}
		}
		if len(xs) == 0 {
			return
		}
		for _, q := range []struct {
			label string
			p     float64
		}{{"p25", 0.25}, {"median", 0.5}, {"p75", 0.75}} {
			bars = append(bars, plot.Bar{
				Label: fmt.Sprintf("%s=%s %s", Target, key[0], q.label),
				Value: stats.Quantile(xs, q.p),
			})
		}
	})
	return plot.BarChart{
		Title:        "MonthlyIncome by attrition",
		YLabel:       monthlyIncomeColumn,
		Bars:         bars,
		RotateLabels: true,
	}, nil
}
