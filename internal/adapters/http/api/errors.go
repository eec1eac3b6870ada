package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotReady    = errors.New("dataset not ready")
	ErrRateLimited = errors.New("rate limited")
)

// opError tags a kind and an optional cause with the operation that failed.
type opError struct {
	op    string
	kind  error
	cause error
}

func (e *opError) Error() string {
	switch {
	case e.kind != nil && e.cause != nil:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.cause)
	case e.kind != nil:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.op, e.cause)
	}
	return e.op
}

func (e *opError) Unwrap() []error {
	var out []error
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.cause != nil {
		out = append(out, e.cause)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// Wrap tags cause with op. A nil cause yields nil.
func Wrap(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &opError{op: op, cause: cause}
}

// WrapKind tags cause with op and classifies it as kind.
func WrapKind(op string, kind, cause error) error {
	return &opError{op: op, kind: kind, cause: cause}
}
