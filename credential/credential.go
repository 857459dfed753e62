// Package credential holds the token set and verified identity bound to one
// authenticated session.
package credential

import (
	"slices"
	"time"

	"golang.org/x/oauth2"
)

// TokenSet is the result of a successful code exchange or refresh.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"` // Only present when offline access was granted
	IDToken      string    `json:"id_token,omitempty"`      // Signed OIDC identity token
	Expiry       time.Time `json:"expiry,omitempty"`        // Zero when the provider reported no lifetime
}

// IdentityClaims are extracted from a verified identity token only.
type IdentityClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Nonce         string `json:"nonce,omitempty"`
}

// Credential is the unit stored per session. It is replaced wholesale, never
// edited field by field.
type Credential struct {
	Token           TokenSet       `json:"token"`
	Identity        IdentityClaims `json:"identity"`
	Scopes          []string       `json:"scopes,omitempty"`
	AuthenticatedAt time.Time      `json:"authenticated_at"`
}

// FromOAuth2Token converts an x/oauth2 token, pulling the id_token out of the
// extra response fields.
func FromOAuth2Token(tok *oauth2.Token) TokenSet {
	if tok == nil {
		return TokenSet{}
	}
	idToken, _ := tok.Extra("id_token").(string)
	return TokenSet{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.Type(),
		RefreshToken: tok.RefreshToken,
		IDToken:      idToken,
		Expiry:       tok.Expiry,
	}
}

// OAuth2Token returns the x/oauth2 representation used to authorize requests.
func (t TokenSet) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

// Expired reports whether the access token is past its expiry at now.
func (t TokenSet) Expired(now time.Time) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return !now.Before(t.Expiry)
}

func (t TokenSet) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// IsValid reports whether the token set carries an access token at all.
func (t TokenSet) IsValid() bool {
	return t.AccessToken != ""
}

// Clone returns a deep copy so stores never share slices with callers.
func (c Credential) Clone() Credential {
	c.Scopes = slices.Clone(c.Scopes)
	return c
}

// WithToken returns a copy of c carrying a new token set. A refresh response
// that omits the refresh token keeps the previous one.
func (c Credential) WithToken(t TokenSet) Credential {
	next := c.Clone()
	if t.RefreshToken == "" {
		t.RefreshToken = c.Token.RefreshToken
	}
	if t.IDToken == "" {
		t.IDToken = c.Token.IDToken
	}
	next.Token = t
	return next
}
