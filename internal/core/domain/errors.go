package domain

import "errors"

var (
	ErrValidation = errors.New("validation failed")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrOTPNotFound = errors.New("OTP not found or has expired")
	ErrOTPExpired  = errors.New("OTP has expired")
	ErrOTPMismatch = errors.New("invalid OTP")

	ErrTokenMissing        = errors.New("access token not provided")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrForbidden           = errors.New("insufficient privileges")
)

// ValidationError describes malformed or missing input. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns a ValidationError with msg.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
