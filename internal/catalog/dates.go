package catalog

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	DateLayout,
	"01/02/2006",
	"1/2/2006",
	"2 January 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses the date layouts found in catalog exports. Surrounding
// whitespace is ignored.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// canonicalDate rewrites a parseable date in DateLayout.
func canonicalDate(v string) (string, bool) {
	ts, ok := ParseDate(v)
	if !ok {
		return "", false
	}
	return ts.Format(DateLayout), true
}

// ParseReleaseYear accepts "2015" as well as "2015.0" as written by some
// exporters.
func ParseReleaseYear(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if y, err := strconv.Atoi(v); err == nil {
		return y, y > 0 && y < 10000
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	y := int(f)
	return y, y > 0 && y < 10000
}

// firstDayOfYear derives a date from a release year.
func firstDayOfYear(year string) (string, bool) {
	y, ok := ParseReleaseYear(year)
	if !ok {
		return "", false
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Format(DateLayout), true
}
