package service

import "errors"

// Sentinel kinds for view errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrNoMatchingRecords = errors.New("no records match the selected filters")
	ErrNoEstimate        = errors.New("not enough data to estimate salary for this combination")
	ErrNoJobsSelected    = errors.New("no job titles selected")
	ErrUnknownChart      = errors.New("unknown chart")
)
