package model

import "time"

// TimeSpan is the closed [Start, End] range of timestamps observed in
// some set of rows. The zero value means "no rows observed" and acts as
// the identity for Union.
type TimeSpan struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the span covers no rows.
func (s TimeSpan) IsZero() bool {
	return s.Start.IsZero() && s.End.IsZero()
}

// Observe extends the span to include t.
func (s TimeSpan) Observe(t time.Time) TimeSpan {
	if s.IsZero() {
		return TimeSpan{Start: t, End: t}
	}
	if t.Before(s.Start) {
		s.Start = t
	}
	if t.After(s.End) {
		s.End = t
	}
	return s
}

// Union combines two spans, treating a zero span as identity.
func (s TimeSpan) Union(other TimeSpan) TimeSpan {
	if s.IsZero() {
		return other
	}
	if other.IsZero() {
		return s
	}
	out := s
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// Hours returns every hour bucket from Start floored to the hour through
// End, inclusive. Used by the report timelines to plot empty hours.
func (s TimeSpan) Hours() []time.Time {
	if s.IsZero() {
		return nil
	}
	var hours []time.Time
	for h := s.Start.Truncate(time.Hour); !h.After(s.End); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}
	return hours
}
