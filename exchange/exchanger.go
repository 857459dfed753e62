// Package exchange trades authorization codes and refresh tokens for token
// sets at the provider's token endpoint.
package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
	"golang.org/x/oauth2"
)

// CodeExchanger exchanges a one-time authorization code for tokens.
// Codes are single use; reuse is rejected by the provider.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, codeVerifier string) (credential.TokenSet, error)
}

// Refresher trades a refresh token for a new token set.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (credential.TokenSet, error)
}

// Revoker invalidates a token at the provider.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// OAuth2Exchanger implements CodeExchanger, Refresher and Revoker on top of
// golang.org/x/oauth2.
type OAuth2Exchanger struct {
	config    *oauth2.Config
	client    *http.Client
	timeout   time.Duration
	revokeURL string
}

var (
	_ CodeExchanger = (*OAuth2Exchanger)(nil)
	_ Refresher     = (*OAuth2Exchanger)(nil)
	_ Revoker       = (*OAuth2Exchanger)(nil)
)

type Option func(*OAuth2Exchanger)

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(e *OAuth2Exchanger) {
		e.client = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *OAuth2Exchanger) {
		e.timeout = d
	}
}

// WithRevokeURL enables token revocation against the given endpoint.
func WithRevokeURL(u string) Option {
	return func(e *OAuth2Exchanger) {
		e.revokeURL = u
	}
}

func New(config *oauth2.Config, opts ...Option) *OAuth2Exchanger {
	e := &OAuth2Exchanger{
		config:  config,
		client:  &http.Client{},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *OAuth2Exchanger) Exchange(ctx context.Context, code, codeVerifier string) (credential.TokenSet, error) {
	if strings.TrimSpace(code) == "" {
		return credential.TokenSet{}, &ExchangeError{Reason: ReasonInvalidCode, Err: apperrors.ErrMissingCode}
	}

	ctx, cancel := e.withClient(ctx)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	tok, err := e.config.Exchange(ctx, code, opts...)
	if err != nil {
		return credential.TokenSet{}, classify(err)
	}
	return credential.FromOAuth2Token(tok), nil
}

// Refresh is only ever called explicitly; nothing refreshes in the background.
func (e *OAuth2Exchanger) Refresh(ctx context.Context, refreshToken string) (credential.TokenSet, error) {
	if refreshToken == "" {
		return credential.TokenSet{}, &ExchangeError{Reason: ReasonInvalidCode, Err: apperrors.ErrNoRefreshToken}
	}

	ctx, cancel := e.withClient(ctx)
	defer cancel()

	// An expired token forces the source to hit the token endpoint.
	src := e.config.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Unix(1, 0),
	})
	tok, err := src.Token()
	if err != nil {
		return credential.TokenSet{}, classify(err)
	}

	ts := credential.FromOAuth2Token(tok)
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	return ts, nil
}

// Revoke posts the token to the configured RFC 7009 endpoint. It is a no-op
// when no endpoint is configured.
func (e *OAuth2Exchanger) Revoke(ctx context.Context, token string) error {
	if e.revokeURL == "" || token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &ExchangeError{Reason: ReasonProviderError, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return &ExchangeError{Reason: ReasonNetworkFailure, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ExchangeError{
			Reason: ReasonProviderError,
			Err:    fmt.Errorf("revocation endpoint returned %d", resp.StatusCode),
		}
	}
	return nil
}

func (e *OAuth2Exchanger) withClient(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)
	return context.WithTimeout(ctx, e.timeout)
}
