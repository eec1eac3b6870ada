package dataset

import "errors"

// ErrUnknownColumn is returned when a filter names a column that does not exist.
var ErrUnknownColumn = errors.New("unknown column")
