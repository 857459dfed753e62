// Package provider resolves the identity provider's endpoints and builds the
// shared OAuth2 client configuration and identity verifier.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-workspace-auth/identity"
	"github.com/jrsteele09/go-workspace-auth/internal/config"
	"golang.org/x/oauth2"
)

// Provider is built once at startup and shared read-only.
type Provider struct {
	OAuth2    *oauth2.Config
	Verifier  *identity.OIDCVerifier
	RevokeURL string
	Issuer    string
}

type discoveryExtras struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
}

// Discover fetches the provider's discovery document, unless auth, token and
// JWKS URLs are all configured, in which case no request is made.
func Discover(ctx context.Context, cfg config.OAuthConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.GetProviderTimeout()}
	}
	// go-oidc keeps only the client from this context for later JWKS fetches.
	ctx = oidc.ClientContext(ctx, client)

	var (
		op  *oidc.Provider
		err error
	)
	if cfg.GetAuthURL() != "" && cfg.GetTokenURL() != "" && cfg.GetJWKSURL() != "" {
		op = (&oidc.ProviderConfig{
			IssuerURL:  cfg.GetIssuer(),
			AuthURL:    cfg.GetAuthURL(),
			TokenURL:   cfg.GetTokenURL(),
			JWKSURL:    cfg.GetJWKSURL(),
			Algorithms: []string{oidc.RS256},
		}).NewProvider(ctx)
	} else {
		discoverCtx, cancel := context.WithTimeout(ctx, cfg.GetProviderTimeout())
		defer cancel()
		if op, err = oidc.NewProvider(discoverCtx, cfg.GetIssuer()); err != nil {
			return nil, fmt.Errorf("[provider Discover] %s: %w", cfg.GetIssuer(), err)
		}
	}

	revokeURL := cfg.GetRevokeURL()
	if revokeURL == "" {
		var extras discoveryExtras
		if err := op.Claims(&extras); err == nil {
			revokeURL = extras.RevocationEndpoint
		}
	}

	endpoint := op.Endpoint()
	if cfg.GetAuthURL() != "" {
		endpoint.AuthURL = cfg.GetAuthURL()
	}
	if cfg.GetTokenURL() != "" {
		endpoint.TokenURL = cfg.GetTokenURL()
	}

	return &Provider{
		OAuth2: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			RedirectURL:  cfg.GetRedirectURL(),
			Endpoint:     endpoint,
			Scopes:       cfg.GetScopes(),
		},
		Verifier:  identity.NewFromProvider(op, time.Now),
		RevokeURL: revokeURL,
		Issuer:    cfg.GetIssuer(),
	}, nil
}
