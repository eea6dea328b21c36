package models

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the ledger operations. Handlers translate these
// into HTTP status codes; none of them should ever reach a client as a bare
// 500.
var (
	// ErrItemNotFound means the operation targeted an item that does not
	// exist (or belongs to another user, which is indistinguishable).
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateCode means the product code is already used by a live
	// item of the same user.
	ErrDuplicateCode = errors.New("product code already registered")

	// ErrInsufficientStock means a stock-out asked for more than the
	// current quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUserNotFound is returned by the user repository.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail means the signup email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUpstream marks a failure of the text-completion collaborator. The
	// assistant converts it into a fixed fallback message, so it never
	// reaches the end user directly.
	ErrUpstream = errors.New("completion service failed")
)

// ValidationError reports malformed or missing input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
