package exchange_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-workspace-auth/exchange"
	"github.com/jrsteele09/go-workspace-auth/internal/providertest"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newExchanger(p *providertest.Provider, opts ...exchange.Option) *exchange.OAuth2Exchanger {
	cfg := &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  "http://localhost:3000/auth/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: p.AuthURL(), TokenURL: p.TokenURL()},
		Scopes:       []string{"openid", "email"},
	}
	opts = append([]exchange.Option{exchange.WithHTTPClient(p.Server.Client()), exchange.WithRevokeURL(p.RevokeURL())}, opts...)
	return exchange.New(cfg, opts...)
}

func requireReason(t *testing.T, err error, want exchange.Reason) {
	t.Helper()
	require.Error(t, err)
	reason, ok := exchange.ReasonOf(err)
	require.True(t, ok, "not an ExchangeError: %v", err)
	require.Equal(t, want, reason)
}

func TestExchange_Success(t *testing.T) {
	p := providertest.New(t)
	p.AddCode("valid-code-123", providertest.Grant{Identity: providertest.DefaultIdentity, Nonce: "n-1"})
	ex := newExchanger(p)

	before := time.Now()
	ts, err := ex.Exchange(context.Background(), "valid-code-123", "")
	require.NoError(t, err)

	require.NotEmpty(t, ts.AccessToken)
	require.Equal(t, "Bearer", ts.TokenType)
	require.NotEmpty(t, ts.RefreshToken)
	require.NotEmpty(t, ts.IDToken)
	require.WithinDuration(t, before.Add(time.Hour), ts.Expiry, 5*time.Second)
	require.True(t, p.ValidAccessToken(ts.AccessToken))
}

func TestExchange_CodeIsSingleUse(t *testing.T) {
	p := providertest.New(t)
	p.AddCode("once", providertest.Grant{Identity: providertest.DefaultIdentity})
	ex := newExchanger(p)

	_, err := ex.Exchange(context.Background(), "once", "")
	require.NoError(t, err)

	_, err = ex.Exchange(context.Background(), "once", "")
	requireReason(t, err, exchange.ReasonInvalidCode)
}

func TestExchange_PKCE(t *testing.T) {
	p := providertest.New(t)
	verifier := oauth2.GenerateVerifier()

	t.Run("matching verifier", func(t *testing.T) {
		u := (&oauth2.Config{Endpoint: oauth2.Endpoint{AuthURL: p.AuthURL()}}).AuthCodeURL("s", oauth2.S256ChallengeOption(verifier))
		q := p.Approve(t, u, "pkce-ok", providertest.DefaultIdentity)

		_, err := newExchanger(p).Exchange(context.Background(), q.Get("code"), verifier)
		require.NoError(t, err)
	})

	t.Run("wrong verifier", func(t *testing.T) {
		u := (&oauth2.Config{Endpoint: oauth2.Endpoint{AuthURL: p.AuthURL()}}).AuthCodeURL("s", oauth2.S256ChallengeOption(verifier))
		q := p.Approve(t, u, "pkce-bad", providertest.DefaultIdentity)

		_, err := newExchanger(p).Exchange(context.Background(), q.Get("code"), oauth2.GenerateVerifier())
		requireReason(t, err, exchange.ReasonInvalidCode)
	})
}

func TestExchange_EmptyCodeMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	ex := exchange.New(&oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: srv.URL}})

	_, err := ex.Exchange(context.Background(), "  ", "")
	requireReason(t, err, exchange.ReasonInvalidCode)
	require.Zero(t, calls.Load())
}

func TestExchange_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason exchange.Reason
	}{
		{name: "invalid grant", status: http.StatusBadRequest, body: `{"error":"invalid_grant"}`, reason: exchange.ReasonInvalidCode},
		{name: "invalid client", status: http.StatusUnauthorized, body: `{"error":"invalid_client"}`, reason: exchange.ReasonProviderError},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, reason: exchange.ReasonProviderError},
		{name: "missing access token", status: http.StatusOK, body: `{"token_type":"Bearer"}`, reason: exchange.ReasonProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ex := exchange.New(&oauth2.Config{
				ClientID: "id",
				Endpoint: oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams},
			}, exchange.WithHTTPClient(srv.Client()))

			_, err := ex.Exchange(context.Background(), "some-code", "")
			requireReason(t, err, tt.reason)
		})
	}
}

func TestExchange_NetworkFailure(t *testing.T) {
	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		ex := exchange.New(&oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: url, AuthStyle: oauth2.AuthStyleInParams}})

		_, err := ex.Exchange(context.Background(), "code", "")
		requireReason(t, err, exchange.ReasonNetworkFailure)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ex := exchange.New(
			&oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams}},
			exchange.WithHTTPClient(srv.Client()),
			exchange.WithTimeout(50*time.Millisecond),
		)

		_, err := ex.Exchange(context.Background(), "code", "")
		requireReason(t, err, exchange.ReasonNetworkFailure)
	})
}

func TestRefresh(t *testing.T) {
	p := providertest.New(t)
	p.AddCode("code", providertest.Grant{Identity: providertest.DefaultIdentity})
	ex := newExchanger(p)

	first, err := ex.Exchange(context.Background(), "code", "")
	require.NoError(t, err)

	refreshed, err := ex.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, refreshed.AccessToken)
	require.Equal(t, first.RefreshToken, refreshed.RefreshToken)

	_, err = ex.Refresh(context.Background(), "1//unknown")
	requireReason(t, err, exchange.ReasonInvalidCode)

	_, err = ex.Refresh(context.Background(), "")
	requireReason(t, err, exchange.ReasonInvalidCode)
}

func TestRevoke(t *testing.T) {
	p := providertest.New(t)
	ex := newExchanger(p)
	token := p.IssueAccessToken(providertest.DefaultIdentity)

	require.NoError(t, ex.Revoke(context.Background(), token))
	require.Equal(t, []string{token}, p.Revoked())
	require.False(t, p.ValidAccessToken(token))

	noRevoke := exchange.New(&oauth2.Config{})
	require.NoError(t, noRevoke.Revoke(context.Background(), "anything"))
}
