package domain

import "errors"

// Error kinds. Every error a service returns either is, or wraps, one of
// these; anything else is treated as an internal failure by the API layer.
var (
	ErrUnauthenticated = errors.New("unauthorized")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrInvalidCredentials = NewError(ErrUnauthenticated, "Invalid username or password")
	ErrLoginThrottled     = NewError(ErrUnauthenticated, "Too many failed login attempts, try again later")

	ErrUserExists   = NewError(ErrConflict, "User already exists")
	ErrClientExists = NewError(ErrConflict, "Client already exists")
	ErrGroupExists  = NewError(ErrConflict, "Group already exists")

	ErrUserNotFound    = NewError(ErrNotFound, "User not found")
	ErrClientNotFound  = NewError(ErrNotFound, "Client not found")
	ErrNoteNotFound    = NewError(ErrNotFound, "Note not found")
	ErrGroupNotFound   = NewError(ErrNotFound, "Group not found")
	ErrTaskNotFound    = NewError(ErrNotFound, "Task not found")
	ErrHostingNotFound = NewError(ErrNotFound, "Hosting service not found")
)

// Error pairs an error kind with the message shown to API callers.
type Error struct {
	Kind    error
	Message string
}

// NewError returns an *Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation is shorthand for a validation error carrying msg.
func Validation(msg string) *Error {
	return NewError(ErrValidation, msg)
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }
