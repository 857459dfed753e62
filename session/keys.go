package session

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	derivedKeyLen = 32

	infoCookieKey = "workspace-auth session cookie v1"
	infoSealKey   = "workspace-auth session seal v1"
)

// deriveKey expands the configured session secret into an independent
// subkey per purpose.
func deriveKey(secret []byte, info string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is required")
	}
	key := make([]byte, derivedKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("deriving %s: %w", info, err)
	}
	return key, nil
}
