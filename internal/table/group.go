package table

import (
	"slices"

	"github.com/cespare/xxhash/v2"
)

const keySeparator = '\x1f'

// GroupIndex maps composite keys to the rows that carry them. Keys are
// bucketed by their xxhash digest and compared exactly within a bucket.
type GroupIndex struct {
	columns []string
	buckets map[uint64][]groupEntry
	size    int
}

type groupEntry struct {
	key  []string
	rows []int
}

// GroupBy indexes the rows of t by the values of the given columns. Rows with
// a blank value in any key column are left out, so they never belong to a group.
func (t *Table) GroupBy(columns ...string) (*GroupIndex, error) {
	cols := make([]*Column, len(columns))
	for i, name := range columns {
		c, err := t.Lookup("GroupBy", name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	g := &GroupIndex{
		columns: append([]string(nil), columns...),
		buckets: make(map[uint64][]groupEntry),
	}
	key := make([]string, len(cols))
rows:
	for i := range t.Len() {
		for j, c := range cols {
			if c.IsBlank(i) {
				continue rows
			}
			key[j] = c.Value(i)
		}
		g.add(key, i)
	}
	return g, nil
}

// Columns returns the key column names.
func (g *GroupIndex) Columns() []string {
	return append([]string(nil), g.columns...)
}

// Len returns the number of distinct keys.
func (g *GroupIndex) Len() int {
	return g.size
}

// Rows returns the rows of the group with the given key.
func (g *GroupIndex) Rows(key ...string) ([]int, bool) {
	for _, e := range g.buckets[hashKey(key)] {
		if slices.Equal(e.key, key) {
			return e.rows, true
		}
	}
	return nil, false
}

// Each calls fn for every group in ascending key order.
func (g *GroupIndex) Each(fn func(key []string, rows []int)) {
	entries := make([]groupEntry, 0, g.size)
	for _, bucket := range g.buckets {
		entries = append(entries, bucket...)
	}
	slices.SortFunc(entries, func(a, b groupEntry) int {
		return slices.Compare(a.key, b.key)
	})
	for _, e := range entries {
		fn(e.key, e.rows)
	}
}

func (g *GroupIndex) add(key []string, row int) {
	h := hashKey(key)
	bucket := g.buckets[h]
	for i := range bucket {
		if slices.Equal(bucket[i].key, key) {
			bucket[i].rows = append(bucket[i].rows, row)
			return
		}
	}
	g.buckets[h] = append(bucket, groupEntry{key: append([]string(nil), key...), rows: []int{row}})
	g.size++
}

func hashKey(key []string) uint64 {
	d := xxhash.New()
	for _, part := range key {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{keySeparator})
	}
	return d.Sum64()
}
