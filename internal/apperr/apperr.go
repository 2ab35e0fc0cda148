// Package apperr defines the error taxonomy shared by the access gate,
// the lifecycle engine and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	Unauthenticated     Code = "Unauthenticated"
	InsufficientRole    Code = "InsufficientRole"
	NotOwner            Code = "NotOwner"
	InvalidState        Code = "InvalidState"
	AlreadyTransitioned Code = "AlreadyTransitioned"
	MissingReviewNote   Code = "MissingReviewNote"
	NotFound            Code = "NotFound"
	ValidationError     Code = "ValidationError"
	Internal            Code = "Internal"
)

var statusByCode = map[Code]int{
	Unauthenticated:     http.StatusUnauthorized,
	InsufficientRole:    http.StatusForbidden,
	NotOwner:            http.StatusForbidden,
	InvalidState:        http.StatusConflict,
	AlreadyTransitioned: http.StatusConflict,
	MissingReviewNote:   http.StatusBadRequest,
	NotFound:            http.StatusNotFound,
	ValidationError:     http.StatusBadRequest,
	Internal:            http.StatusInternalServerError,
}

// HTTPStatus maps a code to its response status. Unknown codes are 500.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified failure safe to show to the caller.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(ValidationError, message)
}

var (
	ErrUnauthenticated     = New(Unauthenticated, "authentication required")
	ErrInsufficientRole    = New(InsufficientRole, "your role does not allow this action")
	ErrNotOwner            = New(NotOwner, "only the author can do this")
	ErrInvalidState        = New(InvalidState, "action is not allowed in the current state")
	ErrAlreadyTransitioned = New(AlreadyTransitioned, "this item was already changed by someone else")
	ErrMissingReviewNote   = New(MissingReviewNote, "a review note is required to reject")
	ErrNotFound            = New(NotFound, "not found")
)

// CodeOf classifies err. Anything that is not an *Error is Internal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
