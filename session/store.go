// Package session binds credentials to opaque session handles.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
	"github.com/rs/zerolog"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Store holds at most one credential per handle. Reads never fail: a backend
// error is logged and reported as an absent credential.
type Store struct {
	repo   Repo
	ttl    time.Duration
	logger zerolog.Logger

	mu sync.Mutex
	// destroyed maps handles to the time their tombstone may be dropped.
	destroyed map[Handle]time.Time
}

func NewStore(repo Repo, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		repo:      repo,
		ttl:       ttl,
		logger:    logger.With().Str("component", "session").Logger(),
		destroyed: make(map[Handle]time.Time),
	}
}

func (s *Store) isDestroyed(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.destroyed[h]
	return ok
}

// Attach stores cred under h, replacing whatever was there.
func (s *Store) Attach(h Handle, cred credential.Credential) error {
	if h == "" {
		return fmt.Errorf("[session Attach] %w", apperrors.ErrInvalidSessionID)
	}
	if s.isDestroyed(h) {
		return fmt.Errorf("[session Attach] handle was destroyed: %w", apperrors.ErrInvalidSessionID)
	}

	rec := Record{
		Credential: cred.Clone(),
		ExpiresAt:  NowTimeFunc().Add(s.ttl),
	}
	if err := s.repo.Upsert(h, rec); err != nil {
		return fmt.Errorf("[session Attach] %w", err)
	}
	return nil
}

// Get returns the credential bound to h, if any.
func (s *Store) Get(h Handle) (credential.Credential, bool) {
	if h == "" || s.isDestroyed(h) {
		return credential.Credential{}, false
	}

	rec, err := s.repo.Get(h)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			s.logger.Err(err).Msg("session lookup failed")
		}
		return credential.Credential{}, false
	}
	if rec.Expired(NowTimeFunc()) {
		return credential.Credential{}, false
	}
	return rec.Credential, true
}

// Clear removes the credential bound to h. Clearing an empty session is not
// an error.
func (s *Store) Clear(h Handle) error {
	if h == "" {
		return nil
	}
	if err := s.repo.Delete(h); err != nil {
		return fmt.Errorf("[session Clear] %w", err)
	}
	return nil
}

// DestroySession ends the session. The handle is tombstoned before the
// backend delete so a failing backend can never resurrect it.
func (s *Store) DestroySession(h Handle) {
	if h == "" {
		return
	}

	s.mu.Lock()
	s.destroyed[h] = NowTimeFunc().Add(s.ttl)
	s.mu.Unlock()

	if err := s.repo.Delete(h); err != nil {
		s.logger.Err(err).Str("session", h.String()).Msg("failed to delete destroyed session")
	}
}

// Cleanup reaps expired records and tombstones that have outlived them.
func (s *Store) Cleanup() {
	now := NowTimeFunc()

	removed, err := s.repo.DeleteExpired(now)
	if err != nil {
		s.logger.Err(err).Msg("failed to reap expired sessions")
	}

	s.mu.Lock()
	for h, until := range s.destroyed {
		if !now.Before(until) {
			delete(s.destroyed, h)
		}
	}
	tombstones := len(s.destroyed)
	s.mu.Unlock()

	s.logger.Debug().Int("removed", removed).Int("tombstones", tombstones).Msg("session cleanup")
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
