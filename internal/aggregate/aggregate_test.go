package aggregate

import (
	"testing"
	"time"

	"github.com/cecat/soundviz/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRows = [][]string{
	{"2024-01-01T10:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "open", ""},
	{"2024-01-01T10:15:00", "camA", "birds", "0.7", "birds.crow", "0.6", "", ""},
	{"not-a-date", "camA", "people", "0.5", "people.talk", "0.4", "", ""},
}

func TestReduceSample(t *testing.T) {
	result := Reduce(0, sampleRows)

	assert.Equal(t, 1, result.Invalid)
	require.Len(t, result.Rows, 2)

	p := result.Partial
	assert.Equal(t, map[string]int{"birds": 2}, p.Classifications)
	assert.Equal(t, map[string]int{"camA": 2}, p.CameraEvents)
	assert.Equal(t, map[model.GroupClassKey]int{
		{Group: "birds", Class: "crow"}: 2,
	}, p.GroupClasses)
	assert.Equal(t, map[model.HourlyKey]int{
		{Hour: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Camera: "camA", Group: "open"}: 1,
	}, p.HourlyEvents)

	assert.Equal(t, model.TimeSpan{
		Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC),
	}, p.Span)
}

func TestReduceEmptyChunk(t *testing.T) {
	result := Reduce(3, nil)

	assert.Equal(t, 3, result.Index)
	assert.Zero(t, result.Invalid)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Partial.Classifications)
	assert.Empty(t, result.Partial.HourlyEvents)
	assert.True(t, result.Partial.Span.IsZero())

	// An empty partial is a valid merge operand, not an error.
	merged := Merge(result.Partial, Reduce(0, sampleRows).Partial)
	assert.Equal(t, Reduce(0, sampleRows).Partial, merged)
}

func TestReduceAllInvalidChunk(t *testing.T) {
	result := Reduce(0, [][]string{
		{"nope", "camA", "birds", "0.9", "birds.crow", "0.8", "", ""},
		{"", "camA", "birds", "0.9", "birds.crow", "0.8", "", ""},
	})
	assert.Equal(t, 2, result.Invalid)
	assert.Empty(t, result.Rows)
	assert.True(t, result.Partial.Span.IsZero())
}

func TestGroupStartAsymmetry(t *testing.T) {
	withStart := []string{"2024-01-01 10:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "birds", ""}
	withoutStart := []string{"2024-01-01 10:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "", ""}

	a := Reduce(0, [][]string{withStart}).Partial
	b := Reduce(0, [][]string{withoutStart}).Partial

	// Both rows count identically everywhere except the hourly events.
	assert.Equal(t, a.Classifications, b.Classifications)
	assert.Equal(t, a.GroupClasses, b.GroupClasses)
	assert.Equal(t, a.CameraEvents, b.CameraEvents)
	assert.Len(t, a.HourlyEvents, 1)
	assert.Empty(t, b.HourlyEvents)
}

func TestDotlessClassPathCounted(t *testing.T) {
	p := Reduce(0, [][]string{
		{"2024-01-01 10:00:00", "camA", "environment", "0.5", "environment", "", "", ""},
	}).Partial

	assert.Equal(t, map[string]int{"environment": 1}, p.Classifications)
	assert.Equal(t, map[model.GroupClassKey]int{
		{Group: "environment", Class: ""}: 1,
	}, p.GroupClasses)
}

// partialFixtures builds distinct partials with overlapping and disjoint
// keys for the merge property tests.
func partialFixtures() []Partial {
	rows := [][][]string{
		{
			{"2024-01-01 10:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "birds", ""},
			{"2024-01-01 11:00:00", "camA", "birds", "0.9", "birds.jay", "0.8", "", ""},
		},
		{
			{"2024-01-01 10:30:00", "camB", "people", "0.9", "people.talk", "0.8", "people", ""},
			{"2024-01-01 10:40:00", "camA", "birds", "0.9", "birds.crow", "0.8", "birds", ""},
		},
		{
			{"2024-01-02 09:00:00", "camC", "vehicles", "0.9", "vehicles.car", "0.8", "", ""},
		},
		nil, // empty partial in the mix
	}
	partials := make([]Partial, len(rows))
	for i, chunk := range rows {
		partials[i] = Reduce(i, chunk).Partial
	}
	return partials
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, perm := range permutations(n - 1) {
		for i := 0; i <= len(perm); i++ {
			next := make([]int, 0, n)
			next = append(next, perm[:i]...)
			next = append(next, n-1)
			next = append(next, perm[i:]...)
			out = append(out, next)
		}
	}
	return out
}

func TestMergeCommutativeOverPermutations(t *testing.T) {
	partials := partialFixtures()

	reference := NewPartial()
	for _, p := range partials {
		reference = Merge(reference, p)
	}

	for _, perm := range permutations(len(partials)) {
		acc := NewPartial()
		for _, i := range perm {
			acc = Merge(acc, partials[i])
		}
		require.Equal(t, reference, acc, "permutation %v changed the totals", perm)
	}
}

func TestMergeAssociativeGroupings(t *testing.T) {
	partials := partialFixtures()

	linear := NewPartial()
	for _, p := range partials {
		linear = Merge(linear, p)
	}

	// Binary-tree fold: ((0+1)+(2+3)).
	tree := Merge(Merge(partials[0], partials[1]), Merge(partials[2], partials[3]))
	assert.Equal(t, linear, tree)

	// Right fold: (0+(1+(2+3))).
	right := Merge(partials[0], Merge(partials[1], Merge(partials[2], partials[3])))
	assert.Equal(t, linear, right)
}

func TestMergeLeavesInputsUntouched(t *testing.T) {
	a := Reduce(0, sampleRows).Partial
	b := Reduce(1, [][]string{
		{"2024-01-01 12:00:00", "camB", "people", "0.9", "people.talk", "0.8", "people", ""},
	}).Partial

	aBefore := Reduce(0, sampleRows).Partial
	_ = Merge(a, b)
	assert.Equal(t, aBefore, a, "merge must not mutate its operands")
}

func TestCameraGroupTotals(t *testing.T) {
	p := Reduce(0, [][]string{
		{"2024-01-01 10:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "birds", ""},
		{"2024-01-01 11:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "birds", ""},
		{"2024-01-01 11:00:00", "camB", "people", "0.9", "people.talk", "0.8", "people", ""},
	}).Partial

	assert.Equal(t, map[string]map[string]int{
		"camA": {"birds": 2},
		"camB": {"people": 1},
	}, p.CameraGroupTotals())
}

func TestClassTotalsByGroup(t *testing.T) {
	p := Reduce(0, [][]string{
		{"2024-01-01 10:00:00", "camA", "birds", "0.9", "birds.crow", "0.8", "", ""},
		{"2024-01-01 10:05:00", "camA", "birds", "0.9", "birds.jay", "0.8", "", ""},
		{"2024-01-01 10:10:00", "camA", "birds", "0.9", "birds.crow", "0.8", "", ""},
	}).Partial

	assert.Equal(t, map[string]map[string]int{
		"birds": {"crow": 2, "jay": 1},
	}, p.ClassTotalsByGroup())
	assert.Equal(t, 3, p.TotalDetections())
}
