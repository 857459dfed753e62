package config

import (
	"slices"
	"strings"
	"time"
)

const (
	clientIDVar     = "CLIENT_ID"
	clientSecretVar = "CLIENT_SECRET"
	scopesVar       = "OAUTH_SCOPES"
)

// OAuthConfig is the client registration with the identity provider.
type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
	GetScopes() []string
	GetIssuer() string
	GetAuthURL() string
	GetTokenURL() string
	GetJWKSURL() string
	GetRevokeURL() string
	GetOfflineAccess() bool
	GetForceConsent() bool
	GetProviderTimeout() time.Duration
	GetAPITimeout() time.Duration
	GetAuthFlowTTL() time.Duration
}

type OAuth struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:3000/auth/callback"`

	Issuer    string `env:"OAUTH_ISSUER" envDefault:"https://accounts.google.com"`
	AuthURL   string `env:"OAUTH_AUTH_URL"`
	TokenURL  string `env:"OAUTH_TOKEN_URL"`
	JWKSURL   string `env:"OAUTH_JWKS_URL"`
	RevokeURL string `env:"OAUTH_REVOKE_URL" envDefault:"https://oauth2.googleapis.com/revoke"`

	Scopes []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile,https://www.googleapis.com/auth/drive.metadata.readonly,https://www.googleapis.com/auth/drive.file,https://www.googleapis.com/auth/gmail.readonly,https://www.googleapis.com/auth/gmail.send,https://www.googleapis.com/auth/calendar.readonly,https://www.googleapis.com/auth/calendar.events,https://www.googleapis.com/auth/spreadsheets.readonly,https://www.googleapis.com/auth/youtube.readonly"`

	// OfflineAccess requests a refresh token; ForceConsent makes the provider
	// re-prompt, which is the only reliable way to get one on repeat logins.
	OfflineAccess bool `env:"OAUTH_OFFLINE_ACCESS" envDefault:"true"`
	ForceConsent  bool `env:"OAUTH_FORCE_CONSENT" envDefault:"true"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
	APITimeout      time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	AuthFlowTTL     time.Duration `env:"AUTH_FLOW_TTL" envDefault:"10m"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return strings.TrimSpace(o.ClientID)
}

func (o OAuth) GetClientSecret() string {
	return strings.TrimSpace(o.ClientSecret)
}

func (o OAuth) GetRedirectURL() string {
	return o.RedirectURL
}

// GetScopes returns a copy of the configured scopes with blanks removed.
func (o OAuth) GetScopes() []string {
	scopes := make([]string, 0, len(o.Scopes))
	for _, s := range o.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return slices.Clip(scopes)
}

func (o OAuth) GetIssuer() string {
	return o.Issuer
}

func (o OAuth) GetAuthURL() string {
	return o.AuthURL
}

func (o OAuth) GetTokenURL() string {
	return o.TokenURL
}

func (o OAuth) GetJWKSURL() string {
	return o.JWKSURL
}

func (o OAuth) GetRevokeURL() string {
	return o.RevokeURL
}

func (o OAuth) GetOfflineAccess() bool {
	return o.OfflineAccess
}

func (o OAuth) GetForceConsent() bool {
	return o.ForceConsent
}

func (o OAuth) GetProviderTimeout() time.Duration {
	return o.ProviderTimeout
}

func (o OAuth) GetAPITimeout() time.Duration {
	return o.APITimeout
}

func (o OAuth) GetAuthFlowTTL() time.Duration {
	return o.AuthFlowTTL
}
