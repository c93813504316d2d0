// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// ErrNoValidData is returned when the log was read in full but no row
	// carried a parseable timestamp. Distinct from a missing input file,
	// which surfaces as a wrapped fs.ErrNotExist.
	ErrNoValidData = errors.New("no usable data in log")
)
