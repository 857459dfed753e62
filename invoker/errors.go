package invoker

import (
	"errors"
	"fmt"
)

type Reason string

const (
	ReasonUnauthenticated     Reason = "unauthenticated"
	ReasonUpstreamUnavailable Reason = "upstream_unavailable"
	ReasonTokenRejected       Reason = "token_rejected"
	ReasonUpstreamError       Reason = "upstream_error"
)

// AuthError is returned for every failed authorized call. Detail is for logs
// only and must not be shown to end users.
type AuthError struct {
	Reason Reason
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("[invoker] %s", e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func ReasonOf(err error) (Reason, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Reason, true
	}
	return "", false
}

// HTTPStatusError is implemented by API call errors that know the HTTP status
// the upstream answered with.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}
