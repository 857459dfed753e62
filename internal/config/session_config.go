package config

import "time"

const (
	sessionSecretVar = "SESSION_SECRET"
	sessionStoreVar  = "SESSION_STORE"

	minSessionSecretLength = 16

	SessionStoreMemory = "memory"
	SessionStoreBolt   = "bolt"
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetSessionStore() string
	GetSessionDBPath() string
	GetSessionCleanupInterval() time.Duration
	GetCookieSecure() bool
}

type Session struct {
	Secret          string        `env:"SESSION_SECRET"`
	TTL             time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Store           string        `env:"SESSION_STORE" envDefault:"memory"`
	DBPath          string        `env:"SESSION_DB_PATH" envDefault:"./data/sessions.db"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

var _ SessionConfig = Session{}

func (s Session) GetSessionSecret() string {
	return s.Secret
}

func (s Session) GetSessionTTL() time.Duration {
	return s.TTL
}

func (s Session) GetSessionStore() string {
	return s.Store
}

func (s Session) GetSessionDBPath() string {
	return s.DBPath
}

func (s Session) GetSessionCleanupInterval() time.Duration {
	if s.CleanupInterval <= 0 {
		return 5 * time.Minute
	}
	return s.CleanupInterval
}

func (s Session) GetCookieSecure() bool {
	return s.CookieSecure
}
