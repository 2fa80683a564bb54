package catalog

import (
	"github.com/paveg/scrub/internal/table"
)

// GroupKey scopes mode computation to titles of one kind released in one year.
type GroupKey struct {
	ReleaseYear string
	Kind        string
}

// ModeTable maps a group to the most frequent present value of the target
// column within it. Groups with no present values are absent.
type ModeTable map[GroupKey]string

// Lookup returns the mode for key, if any.
func (m ModeTable) Lookup(key GroupKey) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// BuildModeTable computes the mode of values within each group of idx, which
// must be keyed by (release year, kind). Only cells with present[i] set take
// part.
func BuildModeTable(idx *table.GroupIndex, values []string, present []bool) ModeTable {
	modes := make(ModeTable, idx.Len())
	idx.Each(func(key []string, rows []int) {
		candidates := make([]string, 0, len(rows))
		for _, r := range rows {
			if present[r] {
				candidates = append(candidates, values[r])
			}
		}
		if m, ok := Mode(candidates); ok {
			modes[GroupKey{ReleaseYear: key[0], Kind: key[1]}] = m
		}
	})
	return modes
}

// Mode returns the most frequent value. Ties go to the lexicographically
// smallest value, which for ISO dates is the earliest one.
func Mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	var best string
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best, true
}
