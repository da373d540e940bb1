package auth

import "errors"

// Sentinel errors returned by the auth flows. Handlers map them to HTTP
// status codes with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError describes a rejected request field. It matches ErrValidation
// with errors.Is, and Reason is safe to show to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationError(reason string) error {
	return &ValidationError{Reason: reason}
}
