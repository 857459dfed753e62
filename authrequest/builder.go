// Package authrequest builds the provider authorization URL that starts the
// authorization-code flow.
package authrequest

import (
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Options toggles the optional authorization request parameters. State, Nonce
// and CodeVerifier are generated by the caller so the builder stays pure.
type Options struct {
	OfflineAccess bool
	ForceConsent  bool
	State         string
	Nonce         string
	CodeVerifier  string
}

// Builder derives authorization URLs from a shared, read-only client config.
type Builder struct {
	config *oauth2.Config
}

func NewBuilder(config *oauth2.Config) *Builder {
	return &Builder{config: config}
}

// Scopes returns the configured scope set in canonical order.
func (b *Builder) Scopes() []string {
	return NormalizeScopes(b.config.Scopes)
}

// BuildAuthorizationURL returns the provider URL for the given scopes. When
// scopes is empty the configured scopes are used. Identical inputs always
// produce an identical URL.
func (b *Builder) BuildAuthorizationURL(scopes []string, opts Options) string {
	if len(scopes) == 0 {
		scopes = b.config.Scopes
	}

	cfg := *b.config
	cfg.Scopes = NormalizeScopes(scopes)

	params := make([]oauth2.AuthCodeOption, 0, 4)
	if opts.OfflineAccess {
		params = append(params, oauth2.AccessTypeOffline)
	}
	if opts.ForceConsent {
		params = append(params, oauth2.ApprovalForce)
	}
	if opts.Nonce != "" {
		params = append(params, oidc.Nonce(opts.Nonce))
	}
	if opts.CodeVerifier != "" {
		params = append(params, oauth2.S256ChallengeOption(opts.CodeVerifier))
	}

	return cfg.AuthCodeURL(opts.State, params...)
}

// NormalizeScopes trims, de-duplicates and sorts scopes. The scope parameter
// is a set, so ordering carries no meaning.
func NormalizeScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
