package brine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	// ErrTruncated means fewer bytes remained than a tag or declared
	// length required.
	ErrTruncated ErrorKind = iota + 1

	// ErrUnknownType means a type tag byte matched no known kind.
	ErrUnknownType

	// ErrInvalidUTF8 means a String payload was not valid UTF-8.
	ErrInvalidUTF8

	// ErrInvalidBool means a Bool payload byte was neither 0 nor 1.
	ErrInvalidBool

	// ErrDuplicateField means a field identifier appeared twice within one
	// struct instance.
	ErrDuplicateField

	// ErrDuplicateKey means a key appeared twice within one map.
	ErrDuplicateKey

	// ErrUnknownVariant means an enum variant identifier was not among the
	// reader's declared variants.
	ErrUnknownVariant

	// ErrDepthExceeded means nesting went past the configured depth limit.
	ErrDepthExceeded

	// ErrLengthExceeded means a length, count, or varint went past a
	// configured or representable limit.
	ErrLengthExceeded

	// ErrTrailingBytes means a complete value was decoded but unconsumed
	// bytes remained.
	ErrTrailingBytes

	// ErrTypeMismatch means the decoded tag did not match the tag the
	// reader's schema expected.
	ErrTypeMismatch

	// ErrEnumPayload means an enum's wire payload presence disagreed with
	// the reader's declaration for that variant.
	ErrEnumPayload

	// ErrMissingField means a field declared required by the caller was
	// absent from the decoded struct.
	ErrMissingField
)

var kindNames = map[ErrorKind]string{
	ErrTruncated:      "truncated input",
	ErrUnknownType:    "unknown type tag",
	ErrInvalidUTF8:    "invalid UTF-8",
	ErrInvalidBool:    "invalid bool byte",
	ErrDuplicateField: "duplicate field id",
	ErrDuplicateKey:   "duplicate map key",
	ErrUnknownVariant: "unknown enum variant",
	ErrDepthExceeded:  "depth limit exceeded",
	ErrLengthExceeded: "length limit exceeded",
	ErrTrailingBytes:  "trailing bytes",
	ErrTypeMismatch:   "type mismatch",
	ErrEnumPayload:    "enum payload mismatch",
	ErrMissingField:   "missing required field",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned by every decode entry point. Offset is
// the byte position in the input at which decoding failed.
type Error struct {
	Offset int
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("brine: %v at offset %d: %s", e.Kind, e.Offset, e.Detail)
	}
	return fmt.Sprintf("brine: %v at offset %d", e.Kind, e.Offset)
}

func errAt(offset int, kind ErrorKind, format string, args ...any) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Offset: offset, Kind: kind, Detail: detail}
}

// IsKind reports whether err is a brine decode error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
