package models

import (
	"errors"
	"strings"
)

// ErrorKind classifies application errors for the transport layer
type ErrorKind int

// ErrorKind constants
const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
)

// Error is an application error with a stable machine-readable code
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// NewError creates a new application error
func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// FieldError describes a single violated field constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field constraint of one input
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field violation
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field was violated
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// KindOf returns the kind of err, unwrapping as needed.
// Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}
	return KindInternal
}

// Shared application errors
var (
	ErrNewsNotFound    = NewError(KindNotFound, "news_not_found", "article not found")
	ErrCommentNotFound = NewError(KindNotFound, "comment_not_found", "comment not found")
	ErrUserNotFound    = NewError(KindNotFound, "user_not_found", "user not found")
	ErrUserExists      = NewError(KindConflict, "user_exists", "username or email already exists")
	ErrAlreadyLiked    = NewError(KindConflict, "already_liked", "article already liked")
)
