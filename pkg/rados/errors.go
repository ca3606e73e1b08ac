package rados

import (
	"errors"
	"fmt"
)

// Code is a negative integer result code. The values are errno-compatible
// so that callers written against the production cluster's client API see
// identical codes from the stand-in.
//
// Verbs return 0 or a positive count on success and a negative Code on
// failure, carried by *Error.
type Code int

const (
	// CodeNotFound indicates no qualifying revision exists for the
	// requested view (object missing, or head removed).
	CodeNotFound Code = -2

	// CodeIOError indicates an internal invariant was violated, typically a
	// backing-store failure surfaced by an omap backend.
	CodeIOError Code = -5

	// CodeAlreadyExists indicates an exclusive create collided with a live
	// object.
	CodeAlreadyExists Code = -17

	// CodeInvalidArgument indicates malformed input: a writesame length
	// that is not a positive multiple of the pattern, an invalid
	// SnapContext, an unknown comparison operator, or a bad numeric parse.
	CodeInvalidArgument Code = -22

	// CodeReadOnly indicates a mutating verb was issued against a
	// historical (non-head) read view.
	CodeReadOnly Code = -30

	// CodeRange indicates assert_version saw a caller version below the
	// stored version.
	CodeRange Code = -34

	// CodeNoData indicates a missing extended attribute.
	CodeNoData Code = -61

	// CodeNotSupported indicates an exec call with no class handler
	// installed on the cluster.
	CodeNotSupported Code = -95

	// CodeOverflow indicates assert_version saw a caller version above the
	// stored version.
	CodeOverflow Code = -75

	// CodeFenced indicates the client is blocklisted; every verb fails with
	// this code before any other check.
	CodeFenced Code = -108

	// CodeComparisonFailed indicates a cmpxattr comparison evaluated false.
	CodeComparisonFailed Code = -125
)

// maxErrno bounds the errno space; extent comparison mismatches are encoded
// below it so they cannot collide with real codes.
const maxErrno = 4095

// CmpMismatch encodes the result code for an extent comparison that found
// its first mismatching byte at index idx: -(maxErrno + idx).
func CmpMismatch(idx uint64) Code {
	return Code(-(int64(maxErrno) + int64(idx)))
}

// MismatchIndex decodes the first-mismatch byte index from an extent
// comparison code. The second return is false if the code does not encode a
// mismatch.
func MismatchIndex(c Code) (uint64, bool) {
	if c > -maxErrno {
		return 0, false
	}
	return uint64(-int64(c) - maxErrno), true
}

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not found"
	case CodeIOError:
		return "I/O error"
	case CodeAlreadyExists:
		return "already exists"
	case CodeInvalidArgument:
		return "invalid argument"
	case CodeReadOnly:
		return "read-only snapshot view"
	case CodeRange:
		return "version below stored version"
	case CodeNoData:
		return "no data"
	case CodeNotSupported:
		return "operation not supported"
	case CodeOverflow:
		return "version above stored version"
	case CodeFenced:
		return "client fenced"
	case CodeComparisonFailed:
		return "comparison failed"
	}
	if _, ok := MismatchIndex(c); ok {
		return "extent comparison mismatch"
	}
	return fmt.Sprintf("code %d", int(c))
}

// Error is the typed error returned by every verb. It carries the negative
// result code plus the operation and locator for context.
//
// Callers needing the raw integer contract use ErrorCode; callers matching
// categories use errors.As / Is with a *Error of the wanted code.
type Error struct {
	// Code is the negative result code.
	Code Code

	// Op is the verb that failed (e.g. "write", "omap_set").
	Op string

	// Object is the locator the verb targeted, when one applies.
	Object string
}

func (e *Error) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("rados: %s %s: %s", e.Op, e.Object, e.Code)
	}
	return fmt.Sprintf("rados: %s: %s", e.Op, e.Code)
}

// Is matches two *Error values by code alone, so
// errors.Is(err, &Error{Code: CodeNotFound}) works regardless of Op.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// ErrorCode extracts the negative result code from an error. A nil error
// maps to 0; a non-*Error maps to CodeIOError.
func ErrorCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return int(e.Code)
	}
	return int(CodeIOError)
}

// CodeError converts a raw result code to an error: nil for codes >= 0,
// otherwise a *Error with the given operation context. This is the mapping
// used by the async completion adapter.
func CodeError(code int, op, object string) error {
	if code >= 0 {
		return nil
	}
	return &Error{Code: Code(code), Op: op, Object: object}
}
