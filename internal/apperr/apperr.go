// Package apperr defines the typed error kinds shared by the validation, attachment
// and service layers. Transport code maps a Kind to a status code; nothing else
// should inspect error strings.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind is a machine-readable error classification.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindAuthorization      Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindAttachmentRejected Kind = "ATTACHMENT_REJECTED"
	KindStorage            Kind = "STORAGE_ERROR"
)

// Error is the single error type returned across the core.
// Field is set for single-field errors (attachment rejections); Fields carries
// per-field messages for validation failures.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" [")
		b.WriteString(e.Field)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a field-addressable validation error.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: fields}
}

// ValidationField is a shorthand for a single-field validation error.
func ValidationField(field, msg string) *Error {
	return Validation(map[string]string{field: msg})
}

// Forbidden reports that the actor lacks scope for the target row.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// NotFound reports a missing row.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AttachmentRejected reports a disallowed type or oversized payload for field.
func AttachmentRejected(field, msg string) *Error {
	return &Error{Kind: KindAttachmentRejected, Field: field, Message: msg}
}

// Storage wraps a durable I/O failure. The message is for logs only.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// As extracts the *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Wrapf is fmt.Errorf with a storage kind attached, for repository failures
// that surface on the primary mutation path.
func Wrapf(err error, format string, args ...any) *Error {
	return Storage(fmt.Sprintf(format, args...), err)
}
