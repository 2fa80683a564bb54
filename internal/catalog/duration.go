package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paveg/scrub/internal/table"
	"github.com/paveg/scrub/internal/validation"
)

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(minutes?|mins?|seasons?)?`)
	unitPattern     = regexp.MustCompile(`(?i)\b(minutes?|mins?|seasons?)\b`)
)

// Duration is a parsed duration cell. HasValue is false when no number could
// be recovered; Value is then meaningless rather than zero.
type Duration struct {
	Value    int
	HasValue bool
	Unit     string
}

// ParseDuration extracts a magnitude and a canonical unit from free text such
// as "90 min", "3 Seasons" or "Season 2". A missing unit is inferred from kind: movies run
// in minutes and shows in seasons. It never fails; unrecoverable parts are
// left absent or set to the sentinel.
func ParseDuration(text, kind string) Duration {
	var d Duration
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			d.Value, d.HasValue = v, true
		}
		d.Unit = canonicalUnit(m[2])
	}
	if d.Unit == "" {
		if m := unitPattern.FindStringSubmatch(text); m != nil {
			d.Unit = canonicalUnit(m[1])
		}
	}
	if d.Unit == "" {
		d.Unit = unitForKind(kind)
	}
	return d
}

func canonicalUnit(token string) string {
	token = strings.ToLower(token)
	switch {
	case token == "":
		return ""
	case strings.HasPrefix(token, "season"):
		return UnitSeason
	default:
		return UnitMinute
	}
}

func unitForKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindMovie:
		return UnitMinute
	case KindTVShow, KindShow:
		return UnitSeason
	default:
		return Sentinel
	}
}

// ParseDurations normalizes the duration column (sentinel-filled, trimmed,
// lowercased) and adds duration_value and duration_unit. Cells without a
// number get a null duration_value.
func ParseDurations(t *table.Table) error {
	if err := validation.ValidateColumns(t, "ParseDurations", ColDuration, ColType); err != nil {
		return err
	}

	duration, _ := t.Column(ColDuration)
	kinds, _ := t.Column(ColType)

	n := t.Len()
	values := make([]string, n)
	valid := make([]bool, n)
	units := make([]string, n)

	duration.Map(func(v string, null bool) (string, bool) {
		v = strings.ToLower(strings.TrimSpace(v))
		if null || v == "" {
			return Sentinel, true
		}
		return v, true
	})

	for i := range n {
		d := ParseDuration(duration.Value(i), kinds.Value(i))
		if d.HasValue {
			values[i] = strconv.Itoa(d.Value)
			valid[i] = true
		}
		units[i] = d.Unit
	}

	if err := t.AddColumn(table.NewNullableColumn(ColDurationValue, values, valid)); err != nil {
		return err
	}
	return t.AddColumn(table.NewColumn(ColDurationUnit, units))
}
