package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth2 client
var (
	// Callback errors
	ErrMissingCode      = errors.New("missing authorization code")
	ErrProviderDenied   = errors.New("provider denied authorization")
	ErrInvalidState     = errors.New("invalid state parameter")
	ErrStateExpired     = errors.New("state parameter expired")
	ErrSessionMismatch  = errors.New("state issued to a different session")
	ErrNonceMismatch    = errors.New("id token nonce mismatch")
	ErrMissingIDToken   = errors.New("token response has no id_token")
	ErrNoRefreshToken   = errors.New("credential has no refresh token")
	ErrInvalidSessionID = errors.New("invalid session id")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
