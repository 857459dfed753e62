package session

import (
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
)

// Record is what a backend persists for one handle.
type Record struct {
	Credential credential.Credential `json:"credential"`
	ExpiresAt  time.Time             `json:"expires_at"`
}

func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Repo is a session backend. Get returns errors.ErrSessionNotFound for
// unknown handles; Delete of an unknown handle is not an error.
type Repo interface {
	Upsert(h Handle, rec Record) error
	Get(h Handle) (Record, error)
	Delete(h Handle) error
	DeleteExpired(now time.Time) (int, error)
}
