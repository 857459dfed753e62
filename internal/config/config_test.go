package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-workspace-auth/internal/config"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_ID", "client-123.apps.example.com")
	t.Setenv("CLIENT_SECRET", "shh")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "client-123.apps.example.com", c.GetClientID())
	require.Equal(t, "http://localhost:3000/auth/callback", c.GetRedirectURL())
	require.Equal(t, "https://accounts.google.com", c.GetIssuer())
	require.True(t, c.GetOfflineAccess())
	require.True(t, c.GetForceConsent())
	require.Equal(t, 10*time.Second, c.GetProviderTimeout())
	require.Equal(t, 24*time.Hour, c.GetSessionTTL())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())

	scopes := c.GetScopes()
	require.Len(t, scopes, 13)
	require.Contains(t, scopes, "openid")
	require.Contains(t, scopes, "https://www.googleapis.com/auth/youtube.readonly")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("OAUTH_SCOPES", "openid, email ,,profile")
	t.Setenv("OAUTH_OFFLINE_ACCESS", "false")
	t.Setenv("SESSION_STORE", "bolt")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, []string{"openid", "email", "profile"}, c.GetScopes())
	require.False(t, c.GetOfflineAccess())
	require.Equal(t, config.SessionStoreBolt, c.GetSessionStore())
	require.Equal(t, 30*time.Minute, c.GetSessionTTL())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.example.com"))
}

func TestLoad_ScopesAreCopies(t *testing.T) {
	setRequired(t)

	c, err := config.Load()
	require.NoError(t, err)

	scopes := c.GetScopes()
	scopes[0] = "tampered"
	require.NotEqual(t, "tampered", c.GetScopes()[0])
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing client id", env: map[string]string{"CLIENT_ID": ""}, wantErr: "CLIENT_ID is required"},
		{name: "missing client secret", env: map[string]string{"CLIENT_SECRET": ""}, wantErr: "CLIENT_SECRET is required"},
		{name: "short session secret", env: map[string]string{"SESSION_SECRET": "SuperSecretKey"}, wantErr: "SESSION_SECRET must be at least"},
		{name: "unknown store", env: map[string]string{"SESSION_STORE": "redis"}, wantErr: "SESSION_STORE must be"},
		{name: "blank scopes", env: map[string]string{"OAUTH_SCOPES": " , "}, wantErr: "OAUTH_SCOPES must name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
