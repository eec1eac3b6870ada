package aggregate

import "errors"

var (
	// ErrUnknownColumn is returned for a group-by or metric column that does not exist.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotNumeric is returned when the metric column is not numeric.
	ErrNotNumeric = errors.New("metric column is not numeric")
	// ErrInvalidOp is returned for an unsupported operation.
	ErrInvalidOp = errors.New("invalid aggregation op")
)
