package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing recipes, users, ingredients, short
	// links and removal of a relation that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is the Conflict outcome of the toggle primitive.
	ErrAlreadyExists = errors.New("already exists")

	// ErrForbidden is returned when a user mutates a recipe they do
	// not own.
	ErrForbidden = errors.New("forbidden")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries a caller-facing message for a rejected write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a *ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
