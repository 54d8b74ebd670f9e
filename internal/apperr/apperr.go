// Package apperr defines the error kinds shared by the stores, services and
// HTTP handlers. Stores never return driver or ORM errors directly; they wrap
// them in an *Error so callers can switch on Kind instead of matching text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for the HTTP status mapping.
type Kind int

const (
	// Store is the zero value so that unclassified errors are treated as fatal.
	Store Kind = iota
	Validation
	ImmutableField
	ReferentialIntegrity
	NotFound
	Conflict
	Unauthenticated
	Expired
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case ImmutableField:
		return "immutable_field"
	case ReferentialIntegrity:
		return "referential_integrity"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	case Expired:
		return "expired"
	case Forbidden:
		return "forbidden"
	default:
		return "store"
	}
}

// Error is a classified error. Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. An err that is already an *Error keeps its kind so that
// re-wrapping at an outer layer does not downgrade, e.g., a NotFound to a Store.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are Store.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Store
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Validationf(format string, args ...any) error { return New(Validation, format, args...) }
func NotFoundf(format string, args ...any) error { return New(NotFound, format, args...) }
func Conflictf(format string, args ...any) error { return New(Conflict, format, args...) }
func Immutablef(format string, args ...any) error { return New(ImmutableField, format, args...) }
func Referentialf(format string, args ...any) error { return New(ReferentialIntegrity, format, args...) }
func Unauthenticatedf(format string, args ...any) error { return New(Unauthenticated, format, args...) }
