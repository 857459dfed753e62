// Package providertest runs an in-process OpenID Connect provider for tests:
// discovery, JWKS, token, revocation and a bearer-checked userinfo endpoint.
package providertest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	DefaultClientID     = "client-123.apps.example.com"
	DefaultClientSecret = "test-client-secret"

	pathDiscovery = "/.well-known/openid-configuration"
	pathJWKS      = "/oauth2/v3/certs"
	pathAuthorize = "/o/oauth2/v2/auth"
	pathToken     = "/token"
	pathRevoke    = "/revoke"
	pathUserInfo  = "/v1/userinfo"
)

// Grant is what the provider remembers about an issued authorization code.
type Grant struct {
	Identity      Identity
	Nonce         string
	CodeChallenge string
	Scope         string
	// Audience overrides the client id placed in the ID token's aud claim.
	Audience string
	// OmitIDToken drops the id_token from the token response.
	OmitIDToken bool
}

// Provider is a fake identity provider backed by httptest.Server.
type Provider struct {
	Server       *httptest.Server
	Key          *KeyPair
	ClientID     string
	ClientSecret string

	// AccessTokenTTL is reported as expires_in.
	AccessTokenTTL time.Duration
	IDTokenTTL     time.Duration
	// IssueRefreshTokens controls whether code exchanges return a refresh token.
	IssueRefreshTokens bool
	Now                func() time.Time

	mu            sync.Mutex
	codes         map[string]Grant
	refreshTokens map[string]Grant
	accessTokens  map[string]Identity
	revoked       []string
}

// New starts a provider that is shut down when the test ends.
func New(t testing.TB) *Provider {
	t.Helper()

	key, err := GenerateRSAKeyPair("test-key-" + uuid.NewString()[:8])
	require.NoError(t, err)

	p := &Provider{
		Key:                key,
		ClientID:           DefaultClientID,
		ClientSecret:       DefaultClientSecret,
		AccessTokenTTL:     time.Hour,
		IDTokenTTL:         time.Hour,
		IssueRefreshTokens: true,
		Now:                time.Now,
		codes:              make(map[string]Grant),
		refreshTokens:      make(map[string]Grant),
		accessTokens:       make(map[string]Identity),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+pathDiscovery, p.discoveryHandler)
	mux.HandleFunc("GET "+pathJWKS, p.jwksHandler)
	mux.HandleFunc("POST "+pathToken, p.tokenHandler)
	mux.HandleFunc("POST "+pathRevoke, p.revokeHandler)
	mux.HandleFunc("GET "+pathUserInfo, p.userInfoHandler)

	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

func (p *Provider) Issuer() string      { return p.Server.URL }
func (p *Provider) AuthURL() string     { return p.Server.URL + pathAuthorize }
func (p *Provider) TokenURL() string    { return p.Server.URL + pathToken }
func (p *Provider) JWKSURL() string     { return p.Server.URL + pathJWKS }
func (p *Provider) RevokeURL() string   { return p.Server.URL + pathRevoke }
func (p *Provider) UserInfoURL() string { return p.Server.URL + pathUserInfo }

// AddCode registers a code the token endpoint will accept exactly once.
func (p *Provider) AddCode(code string, g Grant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[code] = g
}

// Approve simulates the user consenting on the provider's page: it reads the
// nonce and PKCE challenge from authURL, registers code for them and returns
// the query the provider would send back to the redirect URI.
func (p *Provider) Approve(t testing.TB, authURL, code string, id Identity) url.Values {
	t.Helper()

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()

	p.AddCode(code, Grant{
		Identity:      id,
		Nonce:         q.Get("nonce"),
		CodeChallenge: q.Get("code_challenge"),
		Scope:         q.Get("scope"),
	})

	return url.Values{"code": {code}, "state": {q.Get("state")}}
}

// SignIDToken signs an arbitrary claim set with the provider key.
func (p *Provider) SignIDToken(t testing.TB, claims map[string]any) string {
	t.Helper()
	raw, err := p.Key.Sign(claims)
	require.NoError(t, err)
	return raw
}

// IDToken signs a well-formed identity token for the default client.
func (p *Provider) IDToken(t testing.TB, nonce string, id Identity) string {
	t.Helper()
	return p.SignIDToken(t, IDTokenClaims(p.Issuer(), p.ClientID, nonce, id, p.Now(), p.IDTokenTTL))
}

// IssueAccessToken mints an access token the userinfo endpoint will accept.
func (p *Provider) IssueAccessToken(id Identity) string {
	token := "ya29." + uuid.NewString()
	p.mu.Lock()
	p.accessTokens[token] = id
	p.mu.Unlock()
	return token
}

// ValidAccessToken reports whether token was issued and not revoked.
func (p *Provider) ValidAccessToken(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.accessTokens[token]
	return ok
}

// Revoked lists tokens posted to the revocation endpoint.
func (p *Provider) Revoked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.revoked...)
}

func (p *Provider) discoveryHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                p.Issuer(),
		"authorization_endpoint":                p.AuthURL(),
		"token_endpoint":                        p.TokenURL(),
		"userinfo_endpoint":                     p.UserInfoURL(),
		"jwks_uri":                              p.JWKSURL(),
		"revocation_endpoint":                   p.RevokeURL(),
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{RS256},
		"token_endpoint_auth_methods_supported": []string{"client_secret_basic", "client_secret_post"},
		"code_challenge_methods_supported":      []string{"S256", "plain"},
	})
}

func (p *Provider) jwksHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, JWKS{Keys: []JWK{p.Key.ToJWK()}})
}

func (p *Provider) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}
	if !p.authenticateClient(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid_client"})
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		p.exchangeCode(w, r)
	case "refresh_token":
		p.refresh(w, r)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported_grant_type"})
	}
}

func (p *Provider) authenticateClient(r *http.Request) bool {
	id, secret, ok := r.BasicAuth()
	if ok {
		id, _ = url.QueryUnescape(id)
		secret, _ = url.QueryUnescape(secret)
	} else {
		id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	return id == p.ClientID && secret == p.ClientSecret
}

func (p *Provider) exchangeCode(w http.ResponseWriter, r *http.Request) {
	code := r.PostForm.Get("code")

	p.mu.Lock()
	grant, ok := p.codes[code]
	delete(p.codes, code)
	p.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant", ErrorDescription: "Malformed auth code."})
		return
	}
	if grant.CodeChallenge != "" && challengeS256(r.PostForm.Get("code_verifier")) != grant.CodeChallenge {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant", ErrorDescription: "Invalid code verifier."})
		return
	}

	refreshToken := ""
	if p.IssueRefreshTokens {
		refreshToken = "1//" + uuid.NewString()
		p.mu.Lock()
		p.refreshTokens[refreshToken] = grant
		p.mu.Unlock()
	}

	p.writeTokens(w, grant, refreshToken)
}

func (p *Provider) refresh(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	grant, ok := p.refreshTokens[r.PostForm.Get("refresh_token")]
	p.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_grant", ErrorDescription: "Token has been expired or revoked."})
		return
	}
	// Like Google, refresh responses carry no new refresh token.
	p.writeTokens(w, grant, "")
}

func (p *Provider) writeTokens(w http.ResponseWriter, grant Grant, refreshToken string) {
	resp := TokenResponse{
		AccessToken:  p.IssueAccessToken(grant.Identity),
		TokenType:    "Bearer",
		ExpiresIn:    int(p.AccessTokenTTL / time.Second),
		RefreshToken: optional(refreshToken),
		Scope:        grant.Scope,
	}

	if !grant.OmitIDToken {
		aud := grant.Audience
		if aud == "" {
			aud = p.ClientID
		}
		raw, err := p.Key.Sign(IDTokenClaims(p.Issuer(), aud, grant.Nonce, grant.Identity, p.Now(), p.IDTokenTTL))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
			return
		}
		resp.IDToken = optional(raw)
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func (p *Provider) revokeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	token := r.PostForm.Get("token")

	p.mu.Lock()
	p.revoked = append(p.revoked, token)
	delete(p.accessTokens, token)
	delete(p.refreshTokens, token)
	p.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (p *Provider) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": 401, "message": "Request is missing required authentication credential."}})
		return
	}

	p.mu.Lock()
	id, ok := p.accessTokens[token]
	p.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"code": 401, "message": "Invalid Credentials"}})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sub":     id.Subject,
		"email":   id.Email,
		"name":    id.Name,
		"picture": id.Picture,
	})
}

func challengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
