package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Score
	}{
		{name: "plain float", raw: "0.82", want: Score{Value: 0.82, Valid: true}},
		{name: "zero is a real score", raw: "0", want: Score{Value: 0, Valid: true}},
		{name: "whitespace trimmed", raw: " 0.5 ", want: Score{Value: 0.5, Valid: true}},
		{name: "empty is absent", raw: "", want: Score{}},
		{name: "garbage is absent", raw: "n/a", want: Score{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScore(tt.raw))
		})
	}
}

func TestSplitClassPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantGroup string
		wantClass string
	}{
		{name: "group and class", path: "birds.crow", wantGroup: "birds", wantClass: "crow"},
		{name: "splits on first dot only", path: "people.talk.loud", wantGroup: "people", wantClass: "talk.loud"},
		{name: "no dot keeps whole string as group", path: "environment", wantGroup: "environment", wantClass: ""},
		{name: "empty path", path: "", wantGroup: "", wantClass: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, class := SplitClassPath(tt.path)
			assert.Equal(t, tt.wantGroup, group)
			assert.Equal(t, tt.wantClass, class)
		})
	}
}

func TestTimeSpanObserve(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Minute)
	t2 := t0.Add(-time.Hour)

	var span TimeSpan
	require.True(t, span.IsZero())

	span = span.Observe(t0)
	assert.Equal(t, TimeSpan{Start: t0, End: t0}, span)

	span = span.Observe(t1)
	assert.Equal(t, TimeSpan{Start: t0, End: t1}, span)

	span = span.Observe(t2)
	assert.Equal(t, TimeSpan{Start: t2, End: t1}, span)
}

func TestTimeSpanUnion(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	a := TimeSpan{Start: t0, End: t0.Add(time.Hour)}
	b := TimeSpan{Start: t0.Add(-time.Hour), End: t0.Add(30 * time.Minute)}

	want := TimeSpan{Start: t0.Add(-time.Hour), End: t0.Add(time.Hour)}
	assert.Equal(t, want, a.Union(b))
	assert.Equal(t, want, b.Union(a), "union is commutative")

	assert.Equal(t, a, a.Union(TimeSpan{}), "zero span is identity")
	assert.Equal(t, a, TimeSpan{}.Union(a))
}

func TestTimeSpanHours(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)

	hours := TimeSpan{Start: start, End: end}.Hours()
	require.Len(t, hours, 3)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), hours[0])
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), hours[2])

	assert.Nil(t, TimeSpan{}.Hours())
}
