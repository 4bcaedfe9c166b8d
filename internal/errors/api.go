package errors

import (
	stdErrors "errors"
	"fmt"
	"time"
)

// New returns a new root error instance from the given value.
func New(e interface{}) error {
	if e == nil {
		return nil
	}
	var err error
	switch e := e.(type) {
	case *Error:
		return e
	case error:
		err = e
	default:
		err = fmt.Errorf("%v", e)
	}
	return &Error{
		ts:     time.Now().UnixMilli(),
		err:    err,
		frames: getStack(1),
	}
}

// Errorf returns a new root error instance with a formatted message.
func Errorf(format string, args ...interface{}) error {
	return &Error{
		ts:     time.Now().UnixMilli(),
		err:    fmt.Errorf(format, args...),
		frames: getStack(1),
	}
}

// Wrap a given error into another one, preserving its stacktrace if present.
func Wrap(e error, prefix string) error {
	if e == nil {
		return nil
	}
	frames := getStack(1)
	var se HasStack
	if As(e, &se) {
		frames = se.StackTrace()
	}
	return &Error{
		ts:     time.Now().UnixMilli(),
		err:    &Error{err: e},
		prev:   e,
		prefix: prefix,
		frames: frames,
	}
}

// Wrapf wraps an error using a formatted string as prefix.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithKind wraps (or tags in place) an error with a taxonomy Kind.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	var e *Error
	if As(err, &e) {
		e.SetTag(tagKind, kind)
		return e
	}
	wrapped := New(err).(*Error) //nolint:errcheck
	wrapped.SetTag(tagKind, kind)
	return wrapped
}

// New constructors for each taxonomy kind, used pervasively across the SDK
// instead of ad-hoc fmt.Errorf calls.

// InputErr builds an Input-kind error.
func InputErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Input)
}

// EncodingErr builds an Encoding-kind error.
func EncodingErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Encoding)
}

// CryptoErr builds a Cryptographic-kind error.
func CryptoErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Cryptographic)
}

// IntegrityErr builds an Integrity-kind error.
func IntegrityErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Integrity)
}

// NotFoundErr builds a NotFound-kind error.
func NotFoundErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), NotFound)
}

// InvalidTransitionErr builds an InvalidTransition-kind error.
func InvalidTransitionErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), InvalidTransition)
}

// ExternalErr builds an External-kind error.
func ExternalErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), External)
}

// RepresentationErr builds a Representation-kind error.
func RepresentationErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Representation)
}

// QuarantineErr builds a Quarantine-kind error.
func QuarantineErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Quarantine)
}

// TimeoutErr builds a Timeout-kind error.
func TimeoutErr(format string, args ...interface{}) error {
	return WithKind(Errorf(format, args...), Timeout)
}

// KindOf returns the taxonomy Kind attached to err, if any.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind()
	}
	return ""
}

// Is reports whether err matches target, per the standard errors.Is rules.
func Is(err, target error) bool {
	return stdErrors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	if target == nil {
		return false
	}
	return stdErrors.As(err, target)
}

// Unwrap unpacks a wrapped error by one level.
func Unwrap(err error) error {
	return stdErrors.Unwrap(err)
}

// Cause recursively retrieves the topmost error without a cause.
func Cause(err error) error {
	var ce hasCause
	if As(err, &ce) {
		return ce.Cause()
	}
	return err
}

// HasStack is implemented by errors that carry a stacktrace.
type HasStack interface {
	StackTrace() []StackFrame
}
