package panel

import (
	"fmt"
)

// ErrorKind classifies a toolkit error for presentation. All kinds are
// user-visible and none are fatal to the process.
type ErrorKind int

const (
	// KindValidation covers precondition failures raised before any
	// mutation: the panel is left unchanged.
	KindValidation ErrorKind = iota
	// KindStream covers decode/read failures: the panel reverts to empty.
	KindStream
	// KindRuntime covers unexpected failures during draw/warp/export: the
	// panel enters the error status until reset or remove.
	KindRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStream:
		return "stream"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error is the structured {msg, type} surfaced to the user. Every failure
// crossing a panel operation boundary is converted into one of these.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// AsError returns the structured error within err, or wraps err as a
// runtime error when it carries no classification.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*Error); ok {
		return pe
	}
	return &Error{Kind: KindRuntime, Msg: err.Error()}
}

// ErrMaxControlPoints reports an attempt to place a point beyond the cap.
func ErrMaxControlPoints(max int) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf("maximum of %d control points reached", max)}
}

// ErrCollinearPoints reports a degenerate correspondence set.
func ErrCollinearPoints() *Error {
	return &Error{Kind: KindValidation, Msg: "control points are collinear; place points that span the image"}
}

// ErrMissingPoints reports too few or mismatched control points.
func ErrMissingPoints(this, other int) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf("alignment requires at least 3 matched control points on both panels (have %d and %d)", this, other)}
}

// ErrMismatchedDims reports control points that no longer fit their
// panel's raster grid, usually after a resize changed the dimensions.
func ErrMismatchedDims() *Error {
	return &Error{Kind: KindValidation, Msg: "control points fall outside the image; dimensions changed since they were placed"}
}

// ErrEmptyCanvas reports an operation attempted with no image loaded.
func ErrEmptyCanvas() *Error {
	return &Error{Kind: KindValidation, Msg: "no image loaded"}
}

// ErrInvalidTransition reports an operation not permitted in the current
// panel status.
func ErrInvalidTransition(from Status, op string) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf("cannot %s while panel is %s", op, from)}
}

// StreamErr wraps a decode/read failure.
func StreamErr(err error) *Error {
	return &Error{Kind: KindStream, Msg: err.Error()}
}

// RuntimeErr wraps an unexpected operation failure.
func RuntimeErr(err error) *Error {
	return &Error{Kind: KindRuntime, Msg: err.Error()}
}
