// Package attrition runs the HR attrition workflow: cleaning, exploratory
// outputs, model training and the run manifest.
package attrition

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/stats"
	"github.com/paveg/scrub/internal/table"
)

// Target is the modeling target column.
const Target = "Attrition"

// UnknownCategory fills missing categorical cells.
const UnknownCategory = "Unknown"

// ConstantCandidates are dropped when they hold a single distinct value.
var ConstantCandidates = []string{"EmployeeCount", "StandardHours", "Over18", "EmployeeNumber"}

// NumericColumns are coerced to numbers; cells that do not parse become missing.
var NumericColumns = []string{
	"Age", "DailyRate", "DistanceFromHome", "HourlyRate", "MonthlyIncome",
	"MonthlyRate", "NumCompaniesWorked", "PercentSalaryHike", "TotalWorkingYears",
	"TrainingTimesLastYear", "YearsAtCompany", "YearsInCurrentRole", "YearsSinceLastPromotion",
	"YearsWithCurrManager",
}

// Imputation records the fill value used for one column.
type Imputation struct {
	Column string
	Value  string
	Count  int
}

// CleanReport describes what Clean changed.
type CleanReport struct {
	DroppedColumns []string
	Coerced        map[string]int
	Imputations    []Imputation
	DroppedRows    []int
}

// Clean normalizes column names, drops constant columns, coerces and imputes
// values and encodes the target as 1 (Yes) or 0 (No). Rows whose target is
// neither are dropped. A missing target column is an error.
func Clean(t *table.Table, logger *zap.Logger) (*table.Table, CleanReport, error) {
	logger = logging.OrNop(logger)
	logger.Info("cleaning dataset", zap.Int("rows", t.Len()), zap.Int("columns", t.Width()))
	report := CleanReport{Coerced: make(map[string]int)}

	t = t.Clone()
	if err := t.RenameColumns(normalizeName); err != nil {
		return nil, report, err
	}
	if !t.HasColumn(Target) {
		return nil, report, &errors.PipelineError{
			Op:      "Clean",
			Column:  Target,
			Message: "target column missing",
			Hint:    "the dataset must have an Attrition column with Yes/No values",
			Cause:   errors.ErrTargetNotFound,
		}
	}

	for _, name := range ConstantCandidates {
		col, ok := t.Column(name)
		if ok && distinct(col) <= 1 {
			logger.Info("dropping constant column", zap.String("column", name))
			report.DroppedColumns = append(report.DroppedColumns, name)
		}
	}
	t.Drop(report.DroppedColumns...)

	for _, name := range NumericColumns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		col.Map(func(v string, null bool) (string, bool) {
			if null {
				return v, false
			}
			if _, ok := stats.ParseFloat(v); !ok {
				report.Coerced[name]++
				return v, false
			}
			return strings.TrimSpace(v), true
		})
	}

	for _, name := range t.Columns() {
		if name == Target {
			continue
		}
		col, _ := t.Column(name)
		if imp, ok := impute(col); ok {
			logger.Info("imputed missing values",
				zap.String("column", imp.Column), zap.String("value", imp.Value), zap.Int("count", imp.Count))
			report.Imputations = append(report.Imputations, imp)
		}
	}

	target, _ := t.Column(Target)
	keep := make([]bool, t.Len())
	for i := range t.Len() {
		switch v := strings.TrimSpace(target.Value(i)); {
		case !target.IsNull(i) && strings.EqualFold(v, "Yes"):
			target.Set(i, "1")
			keep[i] = true
		case !target.IsNull(i) && strings.EqualFold(v, "No"):
			target.Set(i, "0")
			keep[i] = true
		default:
			report.DroppedRows = append(report.DroppedRows, i)
		}
	}
	if len(report.DroppedRows) > 0 {
		logger.Warn("dropping rows with unrecognized target",
			zap.Int("count", len(report.DroppedRows)), zap.Ints("rows", report.DroppedRows))
		t = t.Filter(func(i int) bool { return keep[i] })
	}

	logger.Info("dataset cleaned", zap.Int("rows", t.Len()), zap.Int("columns", t.Width()))
	return t, report, nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// distinct counts distinct cells, treating null as its own value.
func distinct(col *table.Column) int {
	seen := make(map[string]struct{})
	nulls := 0
	for i := range col.Len() {
		if col.IsNull(i) {
			nulls = 1
			continue
		}
		seen[col.Value(i)] = struct{}{}
	}
	return len(seen) + nulls
}

// impute fills null cells with the median of a numeric column or
// UnknownCategory otherwise. Numeric columns with no values are left alone.
func impute(col *table.Column) (Imputation, bool) {
	missing := 0
	for i := range col.Len() {
		if col.IsBlank(i) {
			missing++
		}
	}
	if missing == 0 {
		return Imputation{}, false
	}

	fill := UnknownCategory
	if isNumeric(col) {
		xs := stats.Floats(col)
		if len(xs) == 0 {
			return Imputation{}, false
		}
		fill = stats.FormatFloat(stats.Median(xs))
	}
	col.Map(func(v string, null bool) (string, bool) {
		if null || strings.TrimSpace(v) == "" {
			return fill, true
		}
		return v, true
	})
	return Imputation{Column: col.Name(), Value: fill, Count: missing}, true
}

func isNumeric(col *table.Column) bool {
	return slices.Contains(NumericColumns, col.Name()) || stats.IsNumeric(col)
}
