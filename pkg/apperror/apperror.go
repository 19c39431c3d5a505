package apperror

import (
	"errors"
	"strings"
)

// Kind classifies an error for callers that must react to it (HTTP mapping,
// retry decisions, security logging).
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindAccessDenied    Kind = "access_denied"
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation_failed"
	KindConflict        Kind = "conflict"
	KindPartialMutation Kind = "partial_mutation"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

func (k Kind) Error() string { return string(k) }

var (
	ErrUnauthenticated error = KindUnauthenticated
	ErrAccessDenied    error = KindAccessDenied
	ErrNotFound        error = KindNotFound
	ErrValidation      error = KindValidation
	ErrConflict        error = KindConflict
	ErrPartialMutation error = KindPartialMutation
	ErrRateLimited     error = KindRateLimited
	ErrInternal        error = KindInternal
)

// Error is a kind-tagged error. Domain packages declare their sentinels with New
// so that errors.Is matches both the sentinel and its Kind.
type Error struct {
	Kind  Kind
	Code  string
	Field string
	cause error
}

func New(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Wrap attaches a cause while keeping the kind visible to errors.Is.
func Wrap(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, cause: cause}
}

// Validation reports a malformed or missing input field.
func Validation(field, code string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field}
}

func (e *Error) Error() string {
	code := e.Code
	if code == "" {
		code = string(e.Kind)
	}
	if e.cause != nil {
		return code + ": " + e.cause.Error()
	}
	return code
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// KindOf returns the kind carried by err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	var kind Kind
	if errors.As(err, &kind) {
		return kind
	}
	return KindInternal
}

// FieldOf returns the offending field for validation errors.
func FieldOf(err error) string {
	var tagged *Error
	if errors.As(err, &tagged) {
		if tagged.Field != "" {
			return tagged.Field
		}
		return strings.TrimPrefix(tagged.Code, "invalid_")
	}
	return ""
}

// CodeOf returns the machine readable code of err.
func CodeOf(err error) string {
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Code != "" {
		return tagged.Code
	}
	return string(KindOf(err))
}
