package session

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealer encrypts records at rest with XChaCha20-Poly1305. Output layout is
// [24-byte nonce][ciphertext+tag].
type sealer struct {
	aead cipher.AEAD
}

func newSealer(secret []byte) (*sealer, error) {
	key, err := deriveKey(secret, infoSealKey)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	return &sealer{aead: aead}, nil
}

// seal binds the ciphertext to ad so a record cannot be moved to another key.
func (s *sealer) seal(plaintext, ad []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, ad), nil
}

func (s *sealer) open(data, ad []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("sealed record too short")
	}
	plain, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], ad)
	if err != nil {
		return nil, fmt.Errorf("opening sealed record: %w", err)
	}
	return plain, nil
}
