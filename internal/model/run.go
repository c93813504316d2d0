package model

import "time"

// RunSummary records the outcome of one report run for the history store.
type RunSummary struct {
	CreatedAt   time.Time
	LogPath     string
	ReportPath  string
	Span        TimeSpan
	GroupCounts map[string]int
	ID          int64
	TotalRows   int
	ValidRows   int
	InvalidRows int
	Batches     int
}
