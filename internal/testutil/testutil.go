// Package testutil provides shared fixtures for pipeline tests: a small
// catalog, a synthetic HR roster, and helpers to write them to disk.
package testutil

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/table"
)

// CatalogCSV is a small catalog export that exercises every cleaning stage:
// a duration filed under rating, missing dates and ratings, messy lists and
// a group with no ratings at all.
const CatalogCSV = `show_id,type,title,director,cast,country,date_added,release_year,rating,duration,listed_in,description
s1,Movie,  Dick Johnson Is Dead ,Kirsten Johnson,,United States,"September 25, 2021",2020,PG-13,90 min,Documentaries,A documentary.
s2,TV Show,Blood & Water,,Ama Qamata,"South Africa, South Africa",2021-09-24,2021,TV-MA,2 Seasons,"International TV Shows, TV Dramas, International TV Shows",Teens cross paths.
s3,Movie,Louis C.K. 2017,Louis C.K.,Louis C.K.,United States,"April 4, 2017",2017,74 min,,Movies,Comedy special.
s4,Movie,Alpha,,,,2015-01-05,2015,PG,100 min,"Dramas,Action & Adventure",x
s5,Movie,Beta,,,,2015-01-05,2015,PG,95 min,Dramas,y
s6,Movie,Gamma,,,,,2015,,80 min,Dramas,z
s7,TV Show,Delta,,,"India, ,  Canada",,1999,,,Kids' TV,w
`

// CatalogTable parses CatalogCSV.
func CatalogTable(tb testing.TB) *table.Table {
	tb.Helper()
	return ParseCSV(tb, CatalogCSV)
}

// ParseCSV builds a table from inline CSV with a header row, using the same
// reader as the pipelines. Empty fields are nulls.
func ParseCSV(tb testing.TB, data string) *table.Table {
	tb.Helper()
	t, err := io.NewCSVReader(strings.NewReader(data), io.DefaultCSVOptions()).Read()
	require.NoError(tb, err)
	return t
}

// HRTableOption configures HRTable.
type HRTableOption func(*hrConfig)

type hrConfig struct {
	rows          int
	seed          uint64
	missingEvery  int
	dropAttrition bool
}

// WithRowCount sets the number of employees.
func WithRowCount(count int) HRTableOption {
	return func(cfg *hrConfig) {
		cfg.rows = count
	}
}

// WithSeed changes the generator seed.
func WithSeed(seed uint64) HRTableOption {
	return func(cfg *hrConfig) {
		cfg.seed = seed
	}
}

// WithMissingEvery blanks MonthlyIncome and Department on every n-th row.
func WithMissingEvery(n int) HRTableOption {
	return func(cfg *hrConfig) {
		cfg.missingEvery = n
	}
}

// WithoutAttrition omits the target column.
func WithoutAttrition() HRTableOption {
	return func(cfg *hrConfig) {
		cfg.dropAttrition = true
	}
}

// HRHeader lists the HR fixture columns.
var HRHeader = []string{
	"Age", "Attrition", "BusinessTravel", "Department", "DistanceFromHome",
	"EmployeeCount", "EmployeeNumber", "Gender", "JobRole", "MonthlyIncome",
	"Over18", "OverTime", "StandardHours", "TotalWorkingYears", "YearsAtCompany",
}

// HRRows generates a deterministic roster in which overtime, low income and
// short tenure raise the chance of attrition, so a linear model can learn it.
func HRRows(opts ...HRTableOption) ([]string, [][]string) {
	cfg := hrConfig{rows: 200, seed: 7}
	for _, o := range opts {
		o(&cfg)
	}
	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))

	departments := []string{"Sales", "Research & Development", "Human Resources"}
	roles := []string{"Sales Executive", "Research Scientist", "Laboratory Technician", "Manager"}
	travel := []string{"Travel_Rarely", "Travel_Frequently", "Non-Travel"}

	rows := make([][]string, 0, cfg.rows)
	for i := range cfg.rows {
		age := 20 + rng.IntN(40)
		overtime := rng.Float64() < 0.3
		income := 2000 + rng.IntN(15000)
		tenure := rng.IntN(20)

		score := -2.0
		if overtime {
			score += 2.0
		}
		if income < 5000 {
			score += 1.5
		}
		if tenure < 3 {
			score += 1.0
		}
		leaves := rng.Float64() < 1/(1+math.Exp(-score))

		row := []string{
			strconv.Itoa(age),
			yesNo(leaves),
			travel[rng.IntN(len(travel))],
			departments[rng.IntN(len(departments))],
			strconv.Itoa(1 + rng.IntN(29)),
			"1",
			strconv.Itoa(1000 + i),
			[]string{"Female", "Male"}[rng.IntN(2)],
			roles[rng.IntN(len(roles))],
			strconv.Itoa(income),
			"Y",
			yesNo(overtime),
			"80",
			strconv.Itoa(tenure + rng.IntN(10)),
			strconv.Itoa(tenure),
		}
		if cfg.missingEvery > 0 && i%cfg.missingEvery == 0 {
			row[3] = ""
			row[9] = ""
		}
		rows = append(rows, row)
	}

	header := append([]string(nil), HRHeader...)
	if cfg.dropAttrition {
		header = append(header[:1], header[2:]...)
		for i, r := range rows {
			rows[i] = append(r[:1], r[2:]...)
		}
	}
	return header, rows
}

// HRTable returns HRRows as a table.
func HRTable(tb testing.TB, opts ...HRTableOption) *table.Table {
	tb.Helper()
	header, rows := HRRows(opts...)
	t, err := table.FromRows(header, rows)
	require.NoError(tb, err)
	return t
}

// HRCSV renders HRRows as CSV text.
func HRCSV(opts ...HRTableOption) string {
	header, rows := HRRows(opts...)
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, r := range rows {
		for j, v := range r {
			if j > 0 {
				b.WriteByte(',')
			}
			if strings.ContainsAny(v, `,"`) {
				v = fmt.Sprintf("%q", v)
			}
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteFile writes content under dir, creating parents, and returns the path.
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// AssertTableHasColumns verifies that the table has the expected columns.
func AssertTableHasColumns(tb testing.TB, t *table.Table, expected ...string) {
	tb.Helper()
	for _, name := range expected {
		assert.True(tb, t.HasColumn(name), "table should have column %s", name)
	}
}

// ColumnValues returns the cells of a column, failing the test when it is absent.
func ColumnValues(tb testing.TB, t *table.Table, name string) []string {
	tb.Helper()
	col, ok := t.Column(name)
	require.True(tb, ok, "column %s not found", name)
	return col.Values()
}
