package authflowrepo

import (
	"time"

	"github.com/jrsteele09/go-workspace-auth/session"
)

// AuthFlowState is everything the callback needs to finish a login that the
// provider must not be trusted to echo back. It is keyed by the CSRF state.
type AuthFlowState struct {
	SessionID    session.Handle
	CodeVerifier string
	Nonce        string
	Scopes       []string
	CreatedAt    time.Time
}

func (s AuthFlowState) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) >= ttl
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
	// Consume returns the state and removes it in one step, so a state can
	// complete at most one callback.
	Consume(state string) (*AuthFlowState, error)
	DeleteCreatedBefore(cutoff time.Time) int
}
