package manager

import "fmt"

// Kind categorizes an engine error so the control-plane adapter can map it
// to an HTTP status with a single switch, per the taxonomy the resource
// model is specified against.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Conflict
	InvalidArgument
	CapacityExceeded
	Precondition
)

// Error is the engine's categorized error type. Every resource operation
// exposed by the manager returns one of these (or nil) rather than a bare
// error, so callers never have to string-match messages to decide how to
// respond. Recompute is the exception: it returns storage errors as they are.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...interface{}) *Error {
	return newErr(NotFound, format, args...)
}

func errConflict(format string, args ...interface{}) *Error {
	return newErr(Conflict, format, args...)
}

func errInvalid(format string, args ...interface{}) *Error {
	return newErr(InvalidArgument, format, args...)
}

func errCapacity(format string, args ...interface{}) *Error {
	return newErr(CapacityExceeded, format, args...)
}

func errPrecondition(format string, args ...interface{}) *Error {
	return newErr(Precondition, format, args...)
}

func errInternal(format string, args ...interface{}) *Error {
	return newErr(Internal, format, args...)
}

// AsError unwraps err into an *Error if possible, otherwise wraps it as
// Internal. Used at the control-plane boundary so every handler has a
// single code path for status mapping regardless of where the error
// originated.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: Internal, Message: err.Error()}
}
