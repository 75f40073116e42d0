package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials = fmt.Errorf("no active account found with the given credentials: %w", ErrUnauthenticated)
	ErrCartNotFound       = errors.New("no cart with the given id was found")
	ErrCartEmpty          = errors.New("the cart is empty")
	ErrProtectedProduct   = errors.New("this product cannot be deleted")
)

// ValidationError carries field level messages for a rejected request. Err is the cause, if any,
// so callers can still match sentinel errors with errors.Is.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func NewValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}, Err: cause}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// notFound converts gorm's missing-row error into ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
