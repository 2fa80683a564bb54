package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/paveg/scrub/internal/table"
	"github.com/paveg/scrub/internal/validation"
)

// NormalizeText fills missing cells of each named column with the sentinel,
// then trims and lowercases the rest. Values are NFC-normalized first so that
// composed and decomposed spellings compare equal afterwards.
func NormalizeText(t *table.Table, columns ...string) error {
	if err := validation.ValidateColumns(t, "NormalizeText", columns...); err != nil {
		return err
	}

	lower := cases.Lower(language.Und)
	for _, name := range columns {
		col, _ := t.Column(name)
		col.Map(func(v string, null bool) (string, bool) {
			return normalizeCell(lower, v, null), true
		})
	}
	return nil
}

func normalizeCell(lower cases.Caser, v string, null bool) string {
	if null {
		return Sentinel
	}
	v = strings.TrimSpace(norm.NFC.String(v))
	if v == "" {
		return Sentinel
	}
	return lower.String(v)
}

// FillMissing replaces null or blank cells of a column with the sentinel
// without otherwise touching the values.
func FillMissing(t *table.Table, column string) error {
	col, err := t.Lookup("FillMissing", column)
	if err != nil {
		return err
	}
	for i := range col.Len() {
		if col.IsBlank(i) {
			col.Set(i, Sentinel)
		}
	}
	return nil
}

// NormalizeLists rewrites comma-joined cells as a sorted, de-duplicated list
// joined by ", ". Sentinel cells are left alone. Applying it twice is the same
// as applying it once.
func NormalizeLists(t *table.Table, columns ...string) error {
	if err := validation.ValidateColumns(t, "NormalizeLists", columns...); err != nil {
		return err
	}

	for _, name := range columns {
		col, _ := t.Column(name)
		col.Map(func(v string, null bool) (string, bool) {
			if null {
				return v, false
			}
			return NormalizeList(v), true
		})
	}
	return nil
}

// NormalizeList normalizes a single comma-joined value. A value with no
// tokens left becomes the sentinel.
func NormalizeList(v string) string {
	if v == Sentinel {
		return v
	}
	parts := strings.Split(v, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return Sentinel
	}
	slices.Sort(items)
	return strings.Join(slices.Compact(items), ", ")
}
