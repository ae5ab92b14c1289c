package tracking

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindDuplicateItemNumber Kind = "DUPLICATE_ITEM_NUMBER"
	KindDuplicateAssignment Kind = "DUPLICATE_ASSIGNMENT"
	KindDuplicateEmail      Kind = "DUPLICATE_EMAIL"
	KindPersistence         Kind = "PERSISTENCE_FAILURE"
)

// Error is the only error type returned by the managers. Message is safe to
// show to end users; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindPersistence for foreign errors.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindPersistence
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func notFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
