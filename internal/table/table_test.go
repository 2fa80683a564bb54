package table_test

import (
	"testing"

	scruberrors "github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows(t *testing.T) {
	t.Run("empty fields become nulls", func(t *testing.T) {
		tbl, err := table.FromRows(
			[]string{"id", "title"},
			[][]string{{"s1", "Alpha"}, {"s2", ""}, {"s3"}},
		)
		require.NoError(t, err)

		assert.Equal(t, 3, tbl.Len())
		assert.Equal(t, 2, tbl.Width())

		title, ok := tbl.Column("title")
		require.True(t, ok)
		assert.False(t, title.IsNull(0))
		assert.True(t, title.IsNull(1))
		assert.True(t, title.IsNull(2))
		assert.Equal(t, 2, title.NullCount())
	})

	t.Run("duplicate header replaces column", func(t *testing.T) {
		tbl, err := table.FromRows([]string{"a", "a"}, [][]string{{"1", "2"}})
		require.NoError(t, err)
		assert.Equal(t, 1, tbl.Width())
	})
}

func TestTableLookup(t *testing.T) {
	tbl, err := table.New(table.NewColumn("title", []string{"x"}))
	require.NoError(t, err)

	_, err = tbl.Lookup("NormalizeText", "cast")
	require.Error(t, err)
	assert.ErrorIs(t, err, scruberrors.NewColumnNotFoundError("NormalizeText", "cast"))
	assert.Contains(t, err.Error(), "available columns: title")
}

func TestAddColumnLengthMismatch(t *testing.T) {
	tbl, err := table.New(table.NewColumn("a", []string{"1", "2"}))
	require.NoError(t, err)

	err = tbl.AddColumn(table.NewColumn("b", []string{"1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected length 2, got 1")
}

func TestColumnMutation(t *testing.T) {
	c := table.NewNullableColumn("rating", []string{"PG", "", "  "}, nil)

	assert.True(t, c.IsNull(1))
	assert.False(t, c.IsNull(2))
	assert.True(t, c.IsBlank(2))

	c.Set(1, "R")
	assert.False(t, c.IsNull(1))
	assert.Equal(t, "R", c.Value(1))

	c.SetNull(0)
	assert.True(t, c.IsNull(0))
	assert.Equal(t, "", c.Value(0))

	c.Map(func(v string, null bool) (string, bool) {
		if null {
			return "unknown", true
		}
		return v, true
	})
	assert.Equal(t, []string{"unknown", "R", "  "}, c.Values())
}

func TestDropRenameClone(t *testing.T) {
	tbl, err := table.FromRows([]string{" Age", "Over 18", "Dept"}, [][]string{{"30", "Y", "HR"}})
	require.NoError(t, err)

	clone := tbl.Clone()
	tbl.Drop("Dept", "missing")
	assert.Equal(t, []string{" Age", "Over 18"}, tbl.Columns())
	assert.Equal(t, 3, clone.Width())

	require.NoError(t, tbl.RenameColumns(func(s string) string { return "x" + s }))
	assert.Equal(t, []string{"x Age", "xOver 18"}, tbl.Columns())
	assert.True(t, tbl.HasColumn("x Age"))

	err = clone.RenameColumns(func(string) string { return "same" })
	assert.Error(t, err)
}

func TestFilterAndTake(t *testing.T) {
	tbl, err := table.FromRows([]string{"n"}, [][]string{{"1"}, {""}, {"3"}})
	require.NoError(t, err)
	n, _ := tbl.Column("n")

	kept := tbl.Filter(func(i int) bool { return !n.IsNull(i) })
	assert.Equal(t, 2, kept.Len())
	assert.Equal(t, []string{"3"}, kept.Row(1))

	reversed := tbl.Take([]int{2, 1, 0})
	rc, _ := reversed.Column("n")
	assert.Equal(t, []string{"3", "", "1"}, rc.Values())
	assert.True(t, rc.IsNull(1))
}

func TestGroupBy(t *testing.T) {
	tbl, err := table.FromRows(
		[]string{"release_year", "type", "rating"},
		[][]string{
			{"2015", "Movie", "PG"},
			{"2015", "Movie", "R"},
			{"2015", "TV Show", "TV-MA"},
			{"", "Movie", "G"},
			{"2016", "Movie", "PG"},
		},
	)
	require.NoError(t, err)

	g, err := tbl.GroupBy("release_year", "type")
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())

	rows, ok := g.Rows("2015", "Movie")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, rows)

	_, ok = g.Rows("", "Movie")
	assert.False(t, ok, "rows with a blank key never form a group")

	var keys [][]string
	g.Each(func(key []string, _ []int) { keys = append(keys, key) })
	assert.Equal(t, [][]string{{"2015", "Movie"}, {"2015", "TV Show"}, {"2016", "Movie"}}, keys)

	_, err = tbl.GroupBy("missing")
	assert.Error(t, err)
}

func TestGroupByKeysDoNotCollideAcrossBoundaries(t *testing.T) {
	tbl, err := table.FromRows([]string{"a", "b"}, [][]string{{"ab", "c"}, {"a", "bc"}})
	require.NoError(t, err)

	g, err := tbl.GroupBy("a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}
