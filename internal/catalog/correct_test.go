package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/scrub/internal/catalog"
	"github.com/paveg/scrub/internal/table"
)

func TestLooksLikeMinutes(t *testing.T) {
	for _, v := range []string{"74 min", "84 MIN", " 66 min ", "90min", "3 minutes"} {
		assert.True(t, catalog.LooksLikeMinutes(v), v)
	}
	for _, v := range []string{"PG-13", "TV-MA", "2 seasons", "min", "unknown", ""} {
		assert.False(t, catalog.LooksLikeMinutes(v), v)
	}
}

func TestCorrectRatingDurations(t *testing.T) {
	tbl, err := table.New(
		table.NewColumn("show_id", []string{"s1", "s2", "s3", "s4", "s5"}),
		table.NewNullableColumn("rating", []string{"74 min", "84 min", "66 min", "PG", ""}, nil),
		table.NewNullableColumn("duration", []string{"", "unknown", "90 min", "", ""}, nil),
	)
	require.NoError(t, err)

	report, err := catalog.CorrectRatingDurations(tbl)
	require.NoError(t, err)

	rating, _ := tbl.Column("rating")
	duration, _ := tbl.Column("duration")

	t.Run("empty duration receives the rating value", func(t *testing.T) {
		assert.Equal(t, "74 min", duration.Value(0))
		assert.Equal(t, "unknown", rating.Value(0))
	})

	t.Run("sentinel duration receives the rating value", func(t *testing.T) {
		assert.Equal(t, "84 min", duration.Value(1))
		assert.Equal(t, "unknown", rating.Value(1))
	})

	t.Run("existing duration wins and the rating value is lost", func(t *testing.T) {
		assert.Equal(t, "90 min", duration.Value(2))
		assert.Equal(t, "unknown", rating.Value(2))
		require.Len(t, report.Discarded, 1)
		assert.Equal(t, catalog.Correction{Row: 2, ShowID: "s3", Value: "66 min"}, report.Discarded[0])
	})

	t.Run("other rows untouched", func(t *testing.T) {
		assert.Equal(t, "PG", rating.Value(3))
		assert.True(t, duration.IsNull(3))
		assert.True(t, rating.IsNull(4))
	})

	assert.Len(t, report.Relocated, 2)
	assert.Equal(t, 3, report.Matched())
}

func TestCorrectRatingDurationsMissingColumn(t *testing.T) {
	tbl, err := table.New(table.NewColumn("rating", []string{"74 min"}))
	require.NoError(t, err)

	_, err = catalog.CorrectRatingDurations(tbl)
	assert.Error(t, err)
}
