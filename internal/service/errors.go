package service

import (
	"errors"
	"fmt"

	"github.com/JerraForge/hydroponic-backend/internal/repository"
)

// ErrNotFound the system does not exist or belongs to another identity.
// Callers cannot tell the two apart.
var ErrNotFound = errors.New("not found")

// ErrUnauthenticated the request carried no identity.
var ErrUnauthenticated = errors.New("authentication required")

// ValidationError rejected input; nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// translateRepoError maps repository.ErrNotFound to ErrNotFound and wraps everything else.
func translateRepoError(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// IsNotFound reports whether err means the system is absent (or not visible).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, repository.ErrNotFound)
}
