package testutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/testutil"
)

func TestCatalogTable(t *testing.T) {
	tbl := testutil.CatalogTable(t)
	assert.Equal(t, 7, tbl.Len())
	testutil.AssertTableHasColumns(t, tbl, "show_id", "type", "rating", "duration", "listed_in")

	country := testutil.ColumnValues(t, tbl, "country")
	assert.Equal(t, "South Africa, South Africa", country[1])

	dates, _ := tbl.Column("date_added")
	assert.True(t, dates.IsNull(5))
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		columns  []string
		expected []string
	}{
		{"header whitespace kept", " a ,b\n1,2\n", []string{" a ", "b"}, []string{"1"}},
		{"escaped quotes", "a,b\n\"say \"\"hi\"\"\",2\n", []string{"a", "b"}, []string{`say "hi"`}},
		{"crlf line endings", "a,b\r\n1,2\r\n3,4\r\n", []string{"a", "b"}, []string{"1", "3"}},
		{"quoted comma", "a,b\n\"x, y\",2", []string{"a", "b"}, []string{"x, y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := testutil.ParseCSV(t, tt.data)
			assert.Equal(t, tt.columns, tbl.Columns())
			assert.Equal(t, tt.expected, testutil.ColumnValues(t, tbl, tt.columns[0]))
		})
	}
}

func TestHRRows(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		_, a := testutil.HRRows(testutil.WithRowCount(20))
		_, b := testutil.HRRows(testutil.WithRowCount(20))
		assert.Equal(t, a, b)

		_, c := testutil.HRRows(testutil.WithRowCount(20), testutil.WithSeed(99))
		assert.NotEqual(t, a, c)
	})

	t.Run("both classes present", func(t *testing.T) {
		tbl := testutil.HRTable(t)
		counts := map[string]int{}
		for _, v := range testutil.ColumnValues(t, tbl, "Attrition") {
			counts[v]++
		}
		assert.Positive(t, counts["Yes"])
		assert.Positive(t, counts["No"])
	})

	t.Run("missing cells", func(t *testing.T) {
		tbl := testutil.HRTable(t, testutil.WithRowCount(10), testutil.WithMissingEvery(5))
		income, _ := tbl.Column("MonthlyIncome")
		assert.Equal(t, 2, income.NullCount())
	})

	t.Run("without target", func(t *testing.T) {
		tbl := testutil.HRTable(t, testutil.WithoutAttrition())
		assert.False(t, tbl.HasColumn("Attrition"))
		assert.Equal(t, len(testutil.HRHeader)-1, tbl.Width())
	})
}

func TestHRCSV(t *testing.T) {
	csv := testutil.HRCSV(testutil.WithRowCount(3))
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Age,Attrition,"))
}

func TestWriteFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "nested/a.csv", "x\n1\n")
	assert.FileExists(t, path)
}
