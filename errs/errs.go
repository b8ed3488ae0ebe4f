// Package errs classifies engine failures: configuration faults caught before
// any replicate runs, data faults local to one replicate's inputs, numerical
// faults aborting a computation, and replicate failures collected by the
// ensemble manager.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Config Kind = iota // invalid registration, ranges, or dimensions; fatal pre-run
	Data               // missing or non-finite external inputs; fatal per replicate
	Numerical          // non-positive-definite matrices, non-finite kernels
	Replicate          // any uncaught failure within a single replicate
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "configuration"
	case Data:
		return "data"
	case Numerical:
		return "numerical"
	default:
		return "replicate"
	}
}

type Error struct {
	K   Kind
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s error: %v", e.K, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error; format/args as in fmt.Errorf.
func Errorf(k Kind, format string, args ...interface{}) error {
	return &Error{K: k, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) carries kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.K == k
	}
	return false
}
