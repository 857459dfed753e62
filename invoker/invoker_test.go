package invoker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/jrsteele09/go-workspace-auth/invoker"
	"github.com/jrsteele09/go-workspace-auth/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1_800_000_000, 0)

type fakeStore map[session.Handle]credential.Credential

func (f fakeStore) Get(h session.Handle) (credential.Credential, bool) {
	c, ok := f[h]
	return c, ok
}

type statusError struct{ code int }

func (e statusError) Error() string   { return fmt.Sprintf("upstream returned %d", e.code) }
func (e statusError) HTTPStatus() int { return e.code }

// getBody is an APICall that fetches url and returns the response body.
func getBody(url string) invoker.APICall[string] {
	return func(ctx context.Context, client *http.Client, _ credential.Credential) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", statusError{code: resp.StatusCode}
		}
		b, err := io.ReadAll(resp.Body)
		return string(b), err
	}
}

func setup(t *testing.T, handler http.HandlerFunc, opts ...invoker.Option) (*invoker.Invoker, session.Handle, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := session.NewHandle()
	store := fakeStore{h: {
		Token: credential.TokenSet{
			AccessToken: "ya29.valid",
			TokenType:   "Bearer",
			Expiry:      fixedNow.Add(time.Hour),
		},
		Identity: credential.IdentityClaims{Subject: "108", Email: "ada@example.com"},
	}}

	opts = append([]invoker.Option{invoker.WithHTTPClient(srv.Client()), invoker.WithClock(func() time.Time { return fixedNow })}, opts...)
	return invoker.New(store, zerolog.Nop(), opts...), h, srv
}

func requireReason(t *testing.T, err error, want invoker.Reason) {
	t.Helper()
	require.Error(t, err)
	reason, ok := invoker.ReasonOf(err)
	require.True(t, ok, "not an AuthError: %v", err)
	require.Equal(t, want, reason)
}

func TestInvoke_AttachesBearerToken(t *testing.T) {
	inv, h, srv := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	})

	got, err := invoker.Invoke(context.Background(), inv, h, getBody(srv.URL))
	require.NoError(t, err)
	require.Equal(t, "Bearer ya29.valid", got)
}

func TestInvoke_PassesCredentialToCall(t *testing.T) {
	inv, h, _ := setup(t, http.NotFound)

	email, err := invoker.Invoke(context.Background(), inv, h, func(_ context.Context, _ *http.Client, cred credential.Credential) (string, error) {
		return cred.Identity.Email, nil
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", email)
}

func TestInvoke_Unauthenticated(t *testing.T) {
	inv, _, _ := setup(t, http.NotFound)

	called := false
	_, err := invoker.Invoke(context.Background(), inv, session.NewHandle(), func(context.Context, *http.Client, credential.Credential) (int, error) {
		called = true
		return 0, nil
	})

	requireReason(t, err, invoker.ReasonUnauthenticated)
	require.False(t, called)
}

func TestInvoke_ExpiredTokenIsNotSent(t *testing.T) {
	inv, h, _ := setup(t, http.NotFound, invoker.WithClock(func() time.Time { return fixedNow.Add(2 * time.Hour) }))

	called := false
	_, err := invoker.Invoke(context.Background(), inv, h, func(context.Context, *http.Client, credential.Credential) (int, error) {
		called = true
		return 0, nil
	})

	requireReason(t, err, invoker.ReasonTokenRejected)
	require.False(t, called)
}

func TestInvoke_FailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason invoker.Reason
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, reason: invoker.ReasonTokenRejected},
		{name: "forbidden", status: http.StatusForbidden, reason: invoker.ReasonUpstreamError},
		{name: "server error", status: http.StatusInternalServerError, reason: invoker.ReasonUpstreamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, h, srv := setup(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := invoker.Invoke(context.Background(), inv, h, getBody(srv.URL))
			requireReason(t, err, tt.reason)

			var statusErr invoker.HTTPStatusError
			require.True(t, errors.As(err, &statusErr))
			require.Equal(t, tt.status, statusErr.HTTPStatus())
		})
	}
}

func TestInvoke_UpstreamUnavailable(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		inv, h, srv := setup(t, http.NotFound)
		url := srv.URL
		srv.Close()

		_, err := invoker.Invoke(context.Background(), inv, h, getBody(url))
		requireReason(t, err, invoker.ReasonUpstreamUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		inv, h, srv := setup(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}, invoker.WithTimeout(50*time.Millisecond))
		defer close(release)

		_, err := invoker.Invoke(context.Background(), inv, h, getBody(srv.URL))
		requireReason(t, err, invoker.ReasonUpstreamUnavailable)
	})
}

func TestInvoke_OtherErrorsAreUpstreamErrors(t *testing.T) {
	inv, h, _ := setup(t, http.NotFound)

	_, err := invoker.Invoke(context.Background(), inv, h, func(context.Context, *http.Client, credential.Credential) (int, error) {
		return 0, errors.New("unexpected payload")
	})
	requireReason(t, err, invoker.ReasonUpstreamError)
	require.ErrorContains(t, err, "unexpected payload")
}
