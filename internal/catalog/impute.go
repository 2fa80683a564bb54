package catalog

import (
	"strconv"
	"strings"

	"github.com/paveg/scrub/internal/table"
	"github.com/paveg/scrub/internal/validation"
)

// Imputer fills a missing target column from the mode of its (release year,
// kind) group. The mode table is computed once from the present values; each
// row is then resolved on its own and marked in the flag column.
type Imputer struct {
	Op     string
	Target string
	Flag   string
	// Canonical maps a raw cell to its stored form. ok is false when the cell
	// counts as missing.
	Canonical func(raw string) (value string, ok bool)
	// Fallback derives a value from the release year when the group has no
	// mode. Nil means no such fallback exists.
	Fallback func(releaseYear string) (string, bool)
	// Default is used when nothing else applies.
	Default string
}

// DateImputer fills date_added: group mode, then January 1st of the release
// year, then DefaultDate.
func DateImputer() Imputer {
	return Imputer{
		Op:        "ImputeDates",
		Target:    ColDateAdded,
		Flag:      ColDateImputed,
		Canonical: canonicalDate,
		Fallback:  firstDayOfYear,
		Default:   DefaultDate,
	}
}

// RatingImputer fills rating: group mode, then the sentinel. Present ratings
// are uppercased.
func RatingImputer() Imputer {
	return Imputer{
		Op:        "ImputeRatings",
		Target:    ColRating,
		Flag:      ColRatingImputed,
		Canonical: canonicalRating,
		Default:   Sentinel,
	}
}

func canonicalRating(v string) (string, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" || v == strings.ToUpper(Sentinel) {
		return "", false
	}
	return v, true
}

// ImputeDates applies DateImputer to t.
func ImputeDates(t *table.Table) (int, error) {
	return DateImputer().Apply(t)
}

// ImputeRatings applies RatingImputer to t.
func ImputeRatings(t *table.Table) (int, error) {
	return RatingImputer().Apply(t)
}

// Apply imputes the target column in t and (re)writes the flag column. It
// returns the number of imputed rows.
func (im Imputer) Apply(t *table.Table) (int, error) {
	if err := validation.ValidateColumns(t, im.Op, im.Target, ColReleaseYear, ColType); err != nil {
		return 0, err
	}

	target, _ := t.Column(im.Target)
	years, _ := t.Column(ColReleaseYear)
	kinds, _ := t.Column(ColType)

	n := t.Len()
	values := make([]string, n)
	present := make([]bool, n)
	for i := range n {
		if !target.IsNull(i) {
			values[i], present[i] = im.Canonical(target.Value(i))
		}
	}

	groups, err := groupKeys(years, kinds)
	if err != nil {
		return 0, err
	}
	idx, err := groups.GroupBy(ColReleaseYear, ColType)
	if err != nil {
		return 0, err
	}
	modes := BuildModeTable(idx, values, present)
	keyYears, _ := groups.Column(ColReleaseYear)

	out := make([]string, n)
	flags := make([]string, n)
	imputed := 0
	for i := range n {
		row := imputeRow{
			value:   values[i],
			present: present[i],
			year:    years.Value(i),
			keyed:   !keyYears.IsBlank(i) && !kinds.IsBlank(i),
			key:     GroupKey{ReleaseYear: keyYears.Value(i), Kind: kinds.Value(i)},
		}
		v, filled := im.resolve(row, modes)
		out[i] = v
		flags[i] = strconv.FormatBool(filled)
		if filled {
			imputed++
		}
	}

	if err := t.AddColumn(table.NewColumn(im.Target, out)); err != nil {
		return 0, err
	}
	if err := t.AddColumn(table.NewColumn(im.Flag, flags)); err != nil {
		return 0, err
	}
	return imputed, nil
}

// groupKeys builds the key columns for mode lookup. Release years are
// canonicalized so "2015" and "2015.0" share a group; unparseable years are
// kept verbatim.
func groupKeys(years, kinds *table.Column) (*table.Table, error) {
	canon := years.Values()
	for i := range canon {
		if years.IsBlank(i) {
			continue
		}
		if y, ok := ParseReleaseYear(canon[i]); ok {
			canon[i] = strconv.Itoa(y)
		}
	}
	return table.New(
		table.NewNullableColumn(ColReleaseYear, canon, nil),
		table.NewNullableColumn(ColType, kinds.Values(), nil),
	)
}

type imputeRow struct {
	value   string
	present bool
	year    string
	keyed   bool
	key     GroupKey
}

// resolve returns the value for one row and whether it was imputed.
func (im Imputer) resolve(row imputeRow, modes ModeTable) (string, bool) {
	if row.present {
		return row.value, false
	}
	if row.keyed {
		if m, ok := modes.Lookup(row.key); ok {
			return m, true
		}
	}
	if im.Fallback != nil {
		if v, ok := im.Fallback(row.year); ok {
			return v, true
		}
	}
	return im.Default, true
}
