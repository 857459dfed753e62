package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	// dbDirPerm is the permission mode for the database directory.
	dbDirPerm = fs.FileMode(0o700)

	// dbFilePerm is the permission mode for the database file.
	dbFilePerm = fs.FileMode(0o600)

	// dbOpenTimeout is the maximum time to wait for the bolt database lock.
	dbOpenTimeout = 5 * time.Second
)

var sessionsBucket = []byte("sessions")

// sealedRecord is the on-disk value. The expiry stays in the clear so the
// reaper can skip decryption.
type sealedRecord struct {
	ExpiresAt time.Time `json:"expires_at"`
	Sealed    []byte    `json:"sealed"`
}

// BoltRepo persists sessions in a bbolt file. Handles are stored as SHA-256
// digests and credentials are sealed, so neither appears on disk in the clear.
type BoltRepo struct {
	db     *bolt.DB
	sealer *sealer
}

var _ Repo = (*BoltRepo)(nil)

// OpenBoltRepo opens or creates the database at path. secret is the session
// secret the sealing key is derived from.
func OpenBoltRepo(path string, secret []byte) (*BoltRepo, error) {
	s, err := newSealer(secret)
	if err != nil {
		return nil, fmt.Errorf("[session OpenBoltRepo] %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dbDirPerm); err != nil {
		return nil, fmt.Errorf("[session OpenBoltRepo] creating directory: %w", err)
	}

	db, err := bolt.Open(path, dbFilePerm, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("[session OpenBoltRepo] opening db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("[session OpenBoltRepo] initializing db: %w", err)
	}

	return &BoltRepo{db: db, sealer: s}, nil
}

func (r *BoltRepo) Close() error {
	return r.db.Close()
}

func handleKey(h Handle) []byte {
	sum := sha256.Sum256([]byte(h))
	dst := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(dst, sum[:])
	return dst
}

func (r *BoltRepo) Upsert(h Handle, rec Record) error {
	if h == "" {
		return fmt.Errorf("handle is required")
	}

	plain, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("[session BoltRepo.Upsert] marshal: %w", err)
	}

	key := handleKey(h)
	sealed, err := r.sealer.seal(plain, key)
	if err != nil {
		return fmt.Errorf("[session BoltRepo.Upsert] %w", err)
	}

	value, err := json.Marshal(sealedRecord{ExpiresAt: rec.ExpiresAt, Sealed: sealed})
	if err != nil {
		return fmt.Errorf("[session BoltRepo.Upsert] marshal envelope: %w", err)
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(key, value)
	})
}

func (r *BoltRepo) Get(h Handle) (Record, error) {
	if h == "" {
		return Record{}, fmt.Errorf("handle is required")
	}

	key := handleKey(h)
	var value []byte
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get(key)
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("[session BoltRepo.Get] %w", err)
	}
	if value == nil {
		return Record{}, apperrors.ErrSessionNotFound
	}

	var env sealedRecord
	if err := json.Unmarshal(value, &env); err != nil {
		return Record{}, fmt.Errorf("[session BoltRepo.Get] envelope: %w", err)
	}

	plain, err := r.sealer.open(env.Sealed, key)
	if err != nil {
		return Record{}, fmt.Errorf("[session BoltRepo.Get] %w", err)
	}

	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return Record{}, fmt.Errorf("[session BoltRepo.Get] record: %w", err)
	}
	return rec, nil
}

func (r *BoltRepo) Delete(h Handle) error {
	if h == "" {
		return fmt.Errorf("handle is required")
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(handleKey(h))
	})
}

func (r *BoltRepo) DeleteExpired(now time.Time) (int, error) {
	removed := 0
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionsBucket)

		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var env sealedRecord
			// Unreadable entries are reaped along with expired ones.
			if err := json.Unmarshal(v, &env); err != nil || !now.Before(env.ExpiresAt) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("[session BoltRepo.DeleteExpired] %w", err)
	}
	return removed, nil
}
