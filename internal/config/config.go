package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process-wide, read-only configuration. It is loaded once at
// startup and handed to each component explicitly.
type Config interface {
	EnvConfig
	OAuthConfig
	SessionConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Session
	Cors
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config Load] parsing environment: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("[config Load] %w", err)
	}
	return c, nil
}

func (c mainConfig) validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("%s is required", clientIDVar)
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("%s is required", clientSecretVar)
	}
	if len(c.Secret) < minSessionSecretLength {
		return fmt.Errorf("%s must be at least %d characters", sessionSecretVar, minSessionSecretLength)
	}
	if len(c.GetScopes()) == 0 {
		return fmt.Errorf("%s must name at least one scope", scopesVar)
	}
	switch c.GetSessionStore() {
	case SessionStoreMemory, SessionStoreBolt:
	default:
		return fmt.Errorf("%s must be %q or %q", sessionStoreVar, SessionStoreMemory, SessionStoreBolt)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}
