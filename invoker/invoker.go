// Package invoker runs downstream API calls on behalf of a session's user.
package invoker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/jrsteele09/go-workspace-auth/session"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// CredentialReader is the read side of the session store.
type CredentialReader interface {
	Get(h session.Handle) (credential.Credential, bool)
}

// APICall performs one downstream request. The client already attaches the
// session's access token to every request.
type APICall[T any] func(ctx context.Context, client *http.Client, cred credential.Credential) (T, error)

// Invoker carries what every authorized call needs. It never mutates the
// session and never retries.
type Invoker struct {
	store   CredentialReader
	base    *http.Client
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

type Option func(*Invoker)

// WithHTTPClient sets the client whose transport carries API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(inv *Invoker) {
		inv.base = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(inv *Invoker) {
		inv.timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(inv *Invoker) {
		inv.now = now
	}
}

func New(store CredentialReader, logger zerolog.Logger, opts ...Option) *Invoker {
	inv := &Invoker{
		store:   store,
		base:    &http.Client{},
		timeout: 15 * time.Second,
		now:     time.Now,
		logger:  logger.With().Str("component", "invoker").Logger(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke runs call with the credential bound to h. Go methods cannot take
// type parameters, hence the free function.
func Invoke[T any](ctx context.Context, inv *Invoker, h session.Handle, call APICall[T]) (T, error) {
	var zero T

	cred, ok := inv.store.Get(h)
	if !ok {
		return zero, &AuthError{Reason: ReasonUnauthenticated}
	}
	if cred.Token.Expired(inv.now()) {
		return zero, &AuthError{Reason: ReasonTokenRejected, Detail: "access token expired"}
	}

	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, inv.base),
		oauth2.StaticTokenSource(cred.Token.OAuth2Token()),
	)

	result, err := call(ctx, client, cred)
	if err != nil {
		authErr := classify(err)
		inv.logger.Warn().
			Err(err).
			Str("reason", string(authErr.Reason)).
			Str("subject", cred.Identity.Subject).
			Msg("authorized call failed")
		return zero, authErr
	}
	return result, nil
}

func classify(err error) *AuthError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &AuthError{Reason: ReasonTokenRejected, Detail: retrieveErr.ErrorCode, Err: err}
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.HTTPStatus() == http.StatusUnauthorized {
			return &AuthError{Reason: ReasonTokenRejected, Detail: statusErr.Error(), Err: err}
		}
		return &AuthError{Reason: ReasonUpstreamError, Detail: statusErr.Error(), Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AuthError{Reason: ReasonUpstreamUnavailable, Detail: "timeout", Err: err}
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &AuthError{Reason: ReasonUpstreamUnavailable, Err: err}
	}

	return &AuthError{Reason: ReasonUpstreamError, Detail: err.Error(), Err: err}
}
