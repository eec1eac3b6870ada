package repository

import "errors"

// Sentinel kinds for dataset load errors.
var (
	// ErrDataUnavailable means the source is missing, unreadable or malformed.
	ErrDataUnavailable = errors.New("dataset unavailable")
	// ErrDataIntegrity means a row holds a value outside its domain.
	ErrDataIntegrity = errors.New("dataset integrity violation")
)
