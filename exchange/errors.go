package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/oauth2"
)

// Reason classifies why a code exchange failed.
type Reason string

const (
	ReasonInvalidCode    Reason = "invalid_code"
	ReasonNetworkFailure Reason = "network_failure"
	ReasonProviderError  Reason = "provider_error"
)

// ExchangeError is returned by every failed exchange, refresh or revocation.
type ExchangeError struct {
	Reason Reason
	Err    error
}

func (e *ExchangeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[exchange] %s", e.Reason)
	}
	return fmt.Sprintf("[exchange] %s: %v", e.Reason, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the reason of an *ExchangeError anywhere in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return exErr.Reason, true
	}
	return "", false
}

func classify(err error) *ExchangeError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return &ExchangeError{Reason: ReasonInvalidCode, Err: err}
		}
		return &ExchangeError{Reason: ReasonProviderError, Err: err}
	}
	if isNetworkError(err) {
		return &ExchangeError{Reason: ReasonNetworkFailure, Err: err}
	}
	return &ExchangeError{Reason: ReasonProviderError, Err: err}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
