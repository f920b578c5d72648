package domain

import "errors"

var (
	// ErrInvalidInput is the category matched by every validation failure.
	// Concrete failures carry their own message via Invalid.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidID     = errors.New("invalid sweet ID format")
	ErrSweetNotFound = errors.New("sweet not found")
	ErrSweetExists   = errors.New("sweet with this name already exists")
	ErrOutOfStock    = errors.New("sweet is out of stock")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrForbidden          = errors.New("access forbidden")
)

// validationError keeps the human-readable message while still matching
// ErrInvalidInput through errors.Is.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid returns an input-validation error with the given message.
func Invalid(msg string) error {
	return &validationError{msg: msg}
}
