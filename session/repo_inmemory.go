package session

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
)

// InMemoryRepo keeps sessions in a map. Contents are lost on restart.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[Handle]Record
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[Handle]Record),
	}
}

func (r *InMemoryRepo) Upsert(h Handle, rec Record) error {
	if h == "" {
		return fmt.Errorf("handle is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec.Credential = rec.Credential.Clone()
	r.sessions[h] = rec
	return nil
}

func (r *InMemoryRepo) Get(h Handle) (Record, error) {
	if h == "" {
		return Record{}, fmt.Errorf("handle is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[h]
	if !ok {
		return Record{}, apperrors.ErrSessionNotFound
	}
	rec.Credential = rec.Credential.Clone()
	return rec, nil
}

func (r *InMemoryRepo) Delete(h Handle) error {
	if h == "" {
		return fmt.Errorf("handle is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, h)
	return nil
}

func (r *InMemoryRepo) DeleteExpired(now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for h, rec := range r.sessions {
		if rec.Expired(now) {
			delete(r.sessions, h)
			removed++
		}
	}
	return removed, nil
}
