// Package model defines the core domain models used throughout the application.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Score is an optional detection score. Log rows may omit either score
// field; an absent score still counts the row, so "no score" must stay
// distinct from "score is zero".
type Score struct {
	Value float64
	Valid bool
}

// ParseScore converts a raw score field to a Score. Empty or unparsable
// input yields an absent score, never an error.
func ParseScore(raw string) Score {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Score{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Score{}
	}
	return Score{Value: v, Valid: true}
}

// Record is a single validated, normalized log row.
type Record struct {
	Timestamp  time.Time
	Hour       time.Time // Timestamp floored to the hour
	Camera     string
	Group      string // raw group column
	GroupScore Score
	ClassGroup string // group portion of the class path
	ClassName  string // class portion of the class path
	ClassScore Score
	GroupStart string // "" when the row does not open an event window
	GroupEnd   string
}

// SplitClassPath splits a "group.class" path on the first dot. A path
// with no dot is a bare group name with an empty class.
func SplitClassPath(path string) (group, class string) {
	group, class, _ = strings.Cut(path, ".")
	return group, class
}

// HourlyKey identifies one cell of the hourly event counts: events of a
// given type seen by one camera during one clock hour.
type HourlyKey struct {
	Hour   time.Time
	Camera string
	Group  string // group_start value of the opening row
}

// GroupClassKey identifies a (group, class) pair in the class mix counts.
type GroupClassKey struct {
	Group string
	Class string
}
