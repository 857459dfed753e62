package identity

import (
	"errors"
	"fmt"
)

type Reason string

const (
	ReasonSignatureInvalid Reason = "signature_invalid"
	ReasonExpired          Reason = "expired"
	ReasonAudienceMismatch Reason = "audience_mismatch"
	ReasonMalformed        Reason = "malformed"
)

// VerificationError explains why an identity token was rejected.
type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[identity] %s", e.Reason)
	}
	return fmt.Sprintf("[identity] %s: %v", e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func ReasonOf(err error) (Reason, bool) {
	var vErr *VerificationError
	if errors.As(err, &vErr) {
		return vErr.Reason, true
	}
	return "", false
}

func fail(reason Reason, err error) *VerificationError {
	return &VerificationError{Reason: reason, Err: err}
}
