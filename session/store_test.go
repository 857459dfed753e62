package session_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-workspace-auth/credential"
	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
	"github.com/jrsteele09/go-workspace-auth/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testCredential(access string) credential.Credential {
	return credential.Credential{
		Token: credential.TokenSet{
			AccessToken:  access,
			TokenType:    "Bearer",
			RefreshToken: "1//refresh-" + access,
			IDToken:      "header.payload.sig",
			Expiry:       time.Unix(1_900_000_000, 0).UTC(),
		},
		Identity: credential.IdentityClaims{
			Subject: "108234567890123456789",
			Email:   "ada@example.com",
			Name:    "Ada Lovelace",
		},
		Scopes:          []string{"email", "openid"},
		AuthenticatedAt: time.Unix(1_800_000_000, 0).UTC(),
	}
}

func withNow(t *testing.T, now *time.Time) {
	t.Helper()
	orig := session.NowTimeFunc
	session.NowTimeFunc = func() time.Time { return *now }
	t.Cleanup(func() { session.NowTimeFunc = orig })
}

func repos(t *testing.T) map[string]session.Repo {
	t.Helper()
	bolt, err := session.OpenBoltRepo(filepath.Join(t.TempDir(), "sessions.db"), testSecret)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]session.Repo{
		"memory": session.NewInMemoryRepo(),
		"bolt":   bolt,
	}
}

func TestStore_AttachGet(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			store := session.NewStore(repo, time.Hour, zerolog.Nop())
			h := session.NewHandle()

			_, ok := store.Get(h)
			require.False(t, ok)

			cred := testCredential("ya29.first")
			require.NoError(t, store.Attach(h, cred))

			got, ok := store.Get(h)
			require.True(t, ok)
			require.Equal(t, cred, got)

			// Last attach wins.
			require.NoError(t, store.Attach(h, testCredential("ya29.second")))
			got, ok = store.Get(h)
			require.True(t, ok)
			require.Equal(t, "ya29.second", got.Token.AccessToken)

			// Handles are isolated.
			_, ok = store.Get(session.NewHandle())
			require.False(t, ok)
		})
	}
}

func TestStore_StoredCredentialIsACopy(t *testing.T) {
	store := session.NewStore(session.NewInMemoryRepo(), time.Hour, zerolog.Nop())
	h := session.NewHandle()
	cred := testCredential("ya29.a")
	require.NoError(t, store.Attach(h, cred))

	cred.Scopes[0] = "tampered"
	got, _ := store.Get(h)
	require.Equal(t, "email", got.Scopes[0])
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			store := session.NewStore(repo, time.Hour, zerolog.Nop())
			h := session.NewHandle()
			require.NoError(t, store.Attach(h, testCredential("ya29.a")))

			require.NoError(t, store.Clear(h))
			require.NoError(t, store.Clear(h))
			require.NoError(t, store.Clear(session.NewHandle()))

			_, ok := store.Get(h)
			require.False(t, ok)
		})
	}
}

func TestStore_TTL(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	withNow(t, &now)

	store := session.NewStore(session.NewInMemoryRepo(), time.Hour, zerolog.Nop())
	h := session.NewHandle()
	require.NoError(t, store.Attach(h, testCredential("ya29.a")))

	now = now.Add(59 * time.Minute)
	_, ok := store.Get(h)
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = store.Get(h)
	require.False(t, ok)
}

// failingRepo wraps a repo and fails the selected operations.
type failingRepo struct {
	session.Repo
	mu         sync.Mutex
	failGet    bool
	failDelete bool
	deletes    int
}

var errBackend = errors.New("backend unavailable")

func (f *failingRepo) Get(h session.Handle) (session.Record, error) {
	if f.failGet {
		return session.Record{}, errBackend
	}
	return f.Repo.Get(h)
}

func (f *failingRepo) Delete(h session.Handle) error {
	f.mu.Lock()
	f.deletes++
	f.mu.Unlock()
	if f.failDelete {
		return errBackend
	}
	return f.Repo.Delete(h)
}

func TestStore_DestroySession(t *testing.T) {
	t.Run("removes the credential", func(t *testing.T) {
		store := session.NewStore(session.NewInMemoryRepo(), time.Hour, zerolog.Nop())
		h := session.NewHandle()
		require.NoError(t, store.Attach(h, testCredential("ya29.a")))

		store.DestroySession(h)

		_, ok := store.Get(h)
		require.False(t, ok)
	})

	t.Run("absent even when the backend delete fails", func(t *testing.T) {
		repo := &failingRepo{Repo: session.NewInMemoryRepo(), failDelete: true}
		var logs bytes.Buffer
		store := session.NewStore(repo, time.Hour, zerolog.New(&logs))
		h := session.NewHandle()
		require.NoError(t, store.Attach(h, testCredential("ya29.a")))

		store.DestroySession(h)

		require.Equal(t, 1, repo.deletes)
		_, ok := store.Get(h)
		require.False(t, ok)
		require.Contains(t, logs.String(), "failed to delete destroyed session")

		// A destroyed handle cannot be reused.
		require.ErrorIs(t, store.Attach(h, testCredential("ya29.b")), apperrors.ErrInvalidSessionID)
	})
}

func TestStore_GetSwallowsBackendErrors(t *testing.T) {
	repo := &failingRepo{Repo: session.NewInMemoryRepo()}
	var logs bytes.Buffer
	store := session.NewStore(repo, time.Hour, zerolog.New(&logs))
	h := session.NewHandle()
	require.NoError(t, store.Attach(h, testCredential("ya29.a")))

	repo.failGet = true
	_, ok := store.Get(h)
	require.False(t, ok)
	require.Contains(t, logs.String(), "backend unavailable")
}

func TestStore_Cleanup(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	withNow(t, &now)

	repo := session.NewInMemoryRepo()
	store := session.NewStore(repo, time.Hour, zerolog.Nop())

	old, fresh := session.NewHandle(), session.NewHandle()
	require.NoError(t, store.Attach(old, testCredential("ya29.old")))
	now = now.Add(30 * time.Minute)
	require.NoError(t, store.Attach(fresh, testCredential("ya29.fresh")))
	now = now.Add(45 * time.Minute)

	store.Cleanup()

	_, err := repo.Get(old)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = repo.Get(fresh)
	require.NoError(t, err)
}

func TestStore_Run(t *testing.T) {
	repo := session.NewInMemoryRepo()
	store := session.NewStore(repo, time.Millisecond, zerolog.Nop())
	h := session.NewHandle()
	require.NoError(t, store.Attach(h, testCredential("ya29.a")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool {
		_, err := repo.Get(h)
		return errors.Is(err, apperrors.ErrSessionNotFound)
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestBoltRepo_PersistsSealedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sessions.db")
	h := session.NewHandle()
	cred := testCredential("ya29.super-secret-access-token")

	repo, err := session.OpenBoltRepo(path, testSecret)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(h, session.Record{Credential: cred, ExpiresAt: time.Now().Add(time.Hour).UTC()}))
	require.NoError(t, repo.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "ya29.super-secret-access-token")
	require.NotContains(t, string(raw), cred.Token.RefreshToken)
	require.NotContains(t, string(raw), "ada@example.com")
	require.NotContains(t, string(raw), h.String())

	t.Run("reopened with the same secret", func(t *testing.T) {
		repo, err := session.OpenBoltRepo(path, testSecret)
		require.NoError(t, err)
		defer repo.Close()

		rec, err := repo.Get(h)
		require.NoError(t, err)
		require.Equal(t, cred, rec.Credential)
	})

	t.Run("reopened with another secret", func(t *testing.T) {
		repo, err := session.OpenBoltRepo(path, []byte("another-secret-another-secret!!"))
		require.NoError(t, err)
		defer repo.Close()

		_, err = repo.Get(h)
		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestBoltRepo_DeleteExpired(t *testing.T) {
	repo, err := session.OpenBoltRepo(filepath.Join(t.TempDir(), "sessions.db"), testSecret)
	require.NoError(t, err)
	defer repo.Close()

	now := time.Unix(1_800_000_000, 0).UTC()
	expired, live := session.NewHandle(), session.NewHandle()
	require.NoError(t, repo.Upsert(expired, session.Record{Credential: testCredential("a"), ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, repo.Upsert(live, session.Record{Credential: testCredential("b"), ExpiresAt: now.Add(time.Hour)}))

	removed, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = repo.Get(expired)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = repo.Get(live)
	require.NoError(t, err)
}

func TestOpenBoltRepo_RequiresSecret(t *testing.T) {
	_, err := session.OpenBoltRepo(filepath.Join(t.TempDir(), "sessions.db"), nil)
	require.Error(t, err)
}
