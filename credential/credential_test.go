package credential_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFromOAuth2Token(t *testing.T) {
	expiry := time.Unix(1_900_000_000, 0).UTC()
	tok := (&oauth2.Token{
		AccessToken:  "ya29.access",
		TokenType:    "Bearer",
		RefreshToken: "1//refresh",
		Expiry:       expiry,
	}).WithExtra(map[string]any{"id_token": "header.payload.sig"})

	ts := credential.FromOAuth2Token(tok)

	require.Equal(t, credential.TokenSet{
		AccessToken:  "ya29.access",
		TokenType:    "Bearer",
		RefreshToken: "1//refresh",
		IDToken:      "header.payload.sig",
		Expiry:       expiry,
	}, ts)
	require.True(t, ts.HasRefreshToken())
	require.True(t, ts.IsValid())
}

func TestFromOAuth2Token_Nil(t *testing.T) {
	ts := credential.FromOAuth2Token(nil)
	require.False(t, ts.IsValid())
}

func TestTokenSet_Expired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	t.Run("future expiry", func(t *testing.T) {
		ts := credential.TokenSet{AccessToken: "a", Expiry: now.Add(time.Minute)}
		require.False(t, ts.Expired(now))
	})

	t.Run("expiry reached", func(t *testing.T) {
		ts := credential.TokenSet{AccessToken: "a", Expiry: now}
		require.True(t, ts.Expired(now))
	})

	t.Run("no lifetime reported", func(t *testing.T) {
		ts := credential.TokenSet{AccessToken: "a"}
		require.False(t, ts.Expired(now))
	})
}

func TestCredential_WithToken(t *testing.T) {
	original := credential.Credential{
		Token: credential.TokenSet{
			AccessToken:  "old",
			RefreshToken: "keep-me",
			IDToken:      "id-old",
		},
		Identity: credential.IdentityClaims{Subject: "108", Email: "ada@example.com"},
		Scopes:   []string{"openid"},
	}

	next := original.WithToken(credential.TokenSet{AccessToken: "new"})

	require.Equal(t, "new", next.Token.AccessToken)
	require.Equal(t, "keep-me", next.Token.RefreshToken)
	require.Equal(t, "id-old", next.Token.IDToken)
	require.Equal(t, original.Identity, next.Identity)

	next.Scopes[0] = "changed"
	require.Equal(t, "openid", original.Scopes[0])
	require.Equal(t, "old", original.Token.AccessToken)
}
