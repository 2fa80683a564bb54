package model

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/paveg/scrub/internal/errors"
)

// NewRand returns the deterministic generator used everywhere a seed is
// configured.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5851f42d4c957f2d)) //nolint:gosec // reproducible, not secret
}

// StratifiedSplit partitions row indices into train and test sets so that
// each class keeps its share of the test fraction. The test set receives
// ceil(testSize*n) rows in total, spread over classes by largest remainder;
// every class keeps at least one training row. Both outputs are sorted.
func StratifiedSplit(labels []int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValidationError("StratifiedSplit", "test_size", "must be in (0, 1)")
	}
	if len(labels) < 2 {
		return nil, nil, &errors.PipelineError{Op: "StratifiedSplit", Message: "need at least two rows", Cause: errors.ErrEmptyTable}
	}

	byClass := make(map[int][]int)
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	n := len(labels)
	nTest := int(math.Ceil(testSize * float64(n)))
	alloc := make(map[int]int, len(classes))
	type remainder struct {
		class int
		frac  float64
	}
	rems := make([]remainder, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / float64(n)
		alloc[c] = int(math.Floor(exact))
		assigned += alloc[c]
		rems = append(rems, remainder{c, exact - math.Floor(exact)})
	}
	slices.SortStableFunc(rems, func(a, b remainder) int {
		switch {
		case a.frac > b.frac:
			return -1
		case a.frac < b.frac:
			return 1
		default:
			return 0
		}
	})
	for i := 0; assigned < nTest && i < len(rems); i++ {
		alloc[rems[i].class]++
		assigned++
	}

	rng := NewRand(seed)
	for _, c := range classes {
		rows := slices.Clone(byClass[c])
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		k := min(alloc[c], len(rows)-1)
		test = append(test, rows[:k]...)
		train = append(train, rows[k:]...)
	}
	slices.Sort(train)
	slices.Sort(test)
	return train, test, nil
}
