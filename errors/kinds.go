// Package errors defines the closed set of failure kinds this module's
// operations can return, plus a DriverError wrapper for attaching context
// to a sentinel without losing errors.Is / errors.Unwrap support.
package errors

import "fmt"

// DriverError is a sentinel-backed error: a fixed failure kind that can
// carry an additional message or a wrapped cause while still satisfying
// errors.Is against the original kind.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	WrapError(err error) DriverError
}

// FatError is a sentinel error kind. Every operation in this module
// fails with one of the constants below, optionally wrapped with
// WithMessage or WrapError for additional context.
type FatError string

// BadArguments: a null/invalid handle, a non-positive count, or an
// unrecognized `whence` value was passed to an operation.
const ErrBadArguments = FatError("bad arguments")

// NotFound: the image file is missing, or the requested filename isn't
// present in the root directory.
const ErrNotFound = FatError("not found")

// Invalid: the BPB is rejected (zero sector size, inconsistent
// geometry), the two FAT copies disagree, or a directory path other
// than the root literal was requested.
const ErrInvalid = FatError("invalid FAT12 volume")

// Range: a read ran past the end of the image, or a short read was
// returned by the underlying device.
const ErrRange = FatError("range error")

// IsDirectory: the matched directory entry has the directory
// attribute set.
const ErrIsDirectory = FatError("is a directory")

// OutOfMemory: an allocation failed.
const ErrOutOfMemory = FatError("out of memory")

// EndOfDirectory is not a failure; it's the terminal, non-error return
// from Directory.Next once the 0x00 terminator slot is reached.
const ErrEndOfDirectory = FatError("end of directory")

func (e FatError) Error() string {
	return string(e)
}

func (e FatError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		kind:          e,
		originalError: e,
	}
}

func (e FatError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		kind:          e,
		originalError: err,
	}
}

// customDriverError attaches a message (and, via WrapError, a wrapped
// cause) to a FatError sentinel. Its Unwrap lets errors.Is/errors.As
// see through to that sentinel or cause, and its Is matches the
// sentinel kind even when Unwrap leads to a wrapped cause, without
// DriverError itself needing to declare Unwrap.
type customDriverError struct {
	message       string
	kind          FatError
	originalError error
}

func (e customDriverError) Is(target error) bool {
	kind, ok := target.(FatError)
	return ok && kind == e.kind
}

func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		kind:          e.kind,
		originalError: e,
	}
}

func (e customDriverError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		kind:          e.kind,
		originalError: err,
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}
