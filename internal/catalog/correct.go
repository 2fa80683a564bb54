package catalog

import (
	"regexp"
	"strings"

	"github.com/paveg/scrub/internal/table"
	"github.com/paveg/scrub/internal/validation"
)

var minutesPattern = regexp.MustCompile(`(?i)^\s*\d+\s*min(ute)?s?\s*$`)

// Correction identifies one row touched by CorrectRatingDurations.
type Correction struct {
	Row    int
	ShowID string
	Value  string
}

// CorrectionReport lists the rows whose rating held a duration. Relocated
// rows had the value moved into an empty duration; Discarded rows already
// had a duration, so the rating value was dropped.
type CorrectionReport struct {
	Relocated []Correction
	Discarded []Correction
}

// Matched returns the total number of rows whose rating looked like a duration.
func (r CorrectionReport) Matched() int {
	return len(r.Relocated) + len(r.Discarded)
}

// LooksLikeMinutes reports whether v reads as a runtime such as "74 min".
func LooksLikeMinutes(v string) bool {
	return minutesPattern.MatchString(v)
}

// CorrectRatingDurations moves duration values that were filed under rating.
// Every matching rating is reset to the sentinel. The duration is filled only
// when it is missing or already the sentinel.
func CorrectRatingDurations(t *table.Table) (CorrectionReport, error) {
	var report CorrectionReport
	if err := validation.ValidateColumns(t, "CorrectRatingDurations", ColRating, ColDuration); err != nil {
		return report, err
	}

	rating, _ := t.Column(ColRating)
	duration, _ := t.Column(ColDuration)
	ids, hasIDs := t.Column(ColShowID)

	for i := range t.Len() {
		if rating.IsNull(i) || !LooksLikeMinutes(rating.Value(i)) {
			continue
		}

		c := Correction{Row: i, Value: strings.TrimSpace(rating.Value(i))}
		if hasIDs {
			c.ShowID = ids.Value(i)
		}

		if duration.IsBlank(i) || strings.EqualFold(strings.TrimSpace(duration.Value(i)), Sentinel) {
			duration.Set(i, c.Value)
			report.Relocated = append(report.Relocated, c)
		} else {
			report.Discarded = append(report.Discarded, c)
		}
		rating.Set(i, Sentinel)
	}
	return report, nil
}
