// Package identity verifies OpenID Connect identity tokens and extracts the
// claims the rest of the system trusts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-workspace-auth/credential"
)

// Verifier validates a raw identity token for the expected audience.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken, expectedAudience string) (credential.IdentityClaims, error)
}

// OIDCVerifier delegates signature and issuer checks to go-oidc and applies
// expiry and audience checks itself so each failure gets its own reason.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
	now      func() time.Time
}

var _ Verifier = (*OIDCVerifier)(nil)

func oidcConfig(now func() time.Time) *oidc.Config {
	return &oidc.Config{
		SkipClientIDCheck: true,
		SkipExpiryCheck:   true,
		Now:               now,
	}
}

// NewFromProvider verifies against the provider's remote JWKS.
func NewFromProvider(p *oidc.Provider, now func() time.Time) *OIDCVerifier {
	if now == nil {
		now = time.Now
	}
	return &OIDCVerifier{verifier: p.Verifier(oidcConfig(now)), now: now}
}

// NewFromKeySet verifies tokens from issuer against a caller supplied key set.
func NewFromKeySet(issuer string, keySet oidc.KeySet, now func() time.Time) *OIDCVerifier {
	if now == nil {
		now = time.Now
	}
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, keySet, oidcConfig(now)), now: now}
}

type extraClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken, expectedAudience string) (credential.IdentityClaims, error) {
	if rawIDToken == "" {
		return credential.IdentityClaims{}, fail(ReasonMalformed, errors.New("empty token"))
	}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, jwt.MapClaims{}); err != nil {
		return credential.IdentityClaims{}, fail(ReasonMalformed, err)
	}

	tok, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return credential.IdentityClaims{}, fail(ReasonSignatureInvalid, err)
	}

	if tok.Expiry.IsZero() {
		return credential.IdentityClaims{}, fail(ReasonMalformed, errors.New("missing exp claim"))
	}
	if now := v.now(); !now.Before(tok.Expiry) {
		return credential.IdentityClaims{}, fail(ReasonExpired, fmt.Errorf("token expired at %s", tok.Expiry.UTC().Format(time.RFC3339)))
	}

	if expectedAudience == "" || !slices.Contains(tok.Audience, expectedAudience) {
		return credential.IdentityClaims{}, fail(ReasonAudienceMismatch, fmt.Errorf("expected audience %q, got %v", expectedAudience, tok.Audience))
	}

	var extra extraClaims
	if err := tok.Claims(&extra); err != nil {
		return credential.IdentityClaims{}, fail(ReasonMalformed, err)
	}
	if tok.Subject == "" {
		return credential.IdentityClaims{}, fail(ReasonMalformed, errors.New("missing sub claim"))
	}
	if extra.Email == "" {
		return credential.IdentityClaims{}, fail(ReasonMalformed, errors.New("missing email claim"))
	}

	return credential.IdentityClaims{
		Subject:       tok.Subject,
		Email:         extra.Email,
		EmailVerified: extra.EmailVerified,
		Name:          extra.Name,
		Picture:       extra.Picture,
		Nonce:         tok.Nonce,
	}, nil
}
