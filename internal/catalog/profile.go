package catalog

import (
	"fmt"
	"slices"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/paveg/scrub/internal/table"
)

// Profile summarizes a raw catalog before cleaning.
type Profile struct {
	Rows             int
	Columns          []string
	Nulls            map[string]int
	Empty            map[string]int
	DuplicateRows    int
	DuplicateShowIDs int
	Kinds            []string
	Ratings          []string
	Head             [][]string
	Tail             [][]string
}

// BuildProfile inspects t. preview bounds the head and tail samples.
func BuildProfile(t *table.Table, preview int) Profile {
	p := Profile{
		Rows:    t.Len(),
		Columns: t.Columns(),
		Nulls:   make(map[string]int, t.Width()),
		Empty:   make(map[string]int, t.Width()),
	}

	for _, name := range p.Columns {
		col, _ := t.Column(name)
		p.Nulls[name] = col.NullCount()
		for i := range col.Len() {
			if !col.IsNull(i) && col.Value(i) == "" {
				p.Empty[name]++
			}
		}
	}

	seen := make(map[string]struct{}, t.Len())
	for i := range t.Len() {
		key := strings.Join(t.Row(i), "\x1f")
		if _, dup := seen[key]; dup {
			p.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}
	}

	if ids, ok := t.Column(ColShowID); ok {
		p.DuplicateShowIDs = countDuplicates(ids)
	}
	if kinds, ok := t.Column(ColType); ok {
		p.Kinds = distinct(kinds)
	}
	if ratings, ok := t.Column(ColRating); ok {
		p.Ratings = distinct(ratings)
	}

	headN := min(preview, t.Len())
	for i := range headN {
		p.Head = append(p.Head, t.Row(i))
	}
	for i := max(t.Len()-preview, 0); i < t.Len(); i++ {
		p.Tail = append(p.Tail, t.Row(i))
	}
	return p
}

func countDuplicates(col *table.Column) int {
	seen := make(map[string]struct{}, col.Len())
	dups := 0
	for i := range col.Len() {
		if col.IsNull(i) {
			continue
		}
		if _, ok := seen[col.Value(i)]; ok {
			dups++
			continue
		}
		seen[col.Value(i)] = struct{}{}
	}
	return dups
}

func distinct(col *table.Column) []string {
	var out []string
	for i := range col.Len() {
		if !col.IsNull(i) {
			out = append(out, col.Value(i))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Render formats the profile as console tables.
func (p Profile) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "shape: %d rows x %d columns\n", p.Rows, len(p.Columns))
	fmt.Fprintf(&b, "duplicated rows: %d\n", p.DuplicateRows)
	fmt.Fprintf(&b, "duplicated %s: %d\n", ColShowID, p.DuplicateShowIDs)
	fmt.Fprintf(&b, "%s: %s\n", ColType, strings.Join(p.Kinds, ", "))
	fmt.Fprintf(&b, "%s: %s\n", ColRating, strings.Join(p.Ratings, ", "))

	counts := prettytable.NewWriter()
	counts.AppendHeader(prettytable.Row{"Column", "Nulls", "Empty strings"})
	for _, name := range p.Columns {
		counts.AppendRow(prettytable.Row{name, p.Nulls[name], p.Empty[name]})
	}
	counts.SetStyle(prettytable.StyleLight)
	b.WriteString(counts.Render())
	b.WriteString("\n")

	if len(p.Head) > 0 {
		b.WriteString("first rows:\n")
		b.WriteString(p.renderRows(p.Head))
		b.WriteString("\nlast rows:\n")
		b.WriteString(p.renderRows(p.Tail))
		b.WriteString("\n")
	}
	return b.String()
}

func (p Profile) renderRows(rows [][]string) string {
	w := prettytable.NewWriter()
	header := make(prettytable.Row, len(p.Columns))
	for i, c := range p.Columns {
		header[i] = c
	}
	w.AppendHeader(header)
	for _, r := range rows {
		row := make(prettytable.Row, len(r))
		for i, v := range r {
			row[i] = truncate(v, 24)
		}
		w.AppendRow(row)
	}
	w.SetStyle(prettytable.StyleLight)
	return w.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
