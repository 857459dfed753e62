package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
)

// CookieCodec signs session handles for use as cookie values so a client
// cannot guess or forge a handle. Values look like "<handle>.<mac>".
type CookieCodec struct {
	key []byte
}

func NewCookieCodec(secret []byte) (*CookieCodec, error) {
	key, err := deriveKey(secret, infoCookieKey)
	if err != nil {
		return nil, fmt.Errorf("[session NewCookieCodec] %w", err)
	}
	return &CookieCodec{key: key}, nil
}

func (c *CookieCodec) mac(h Handle) []byte {
	m := hmac.New(sha256.New, c.key)
	m.Write([]byte(h))
	return m.Sum(nil)
}

func (c *CookieCodec) Encode(h Handle) string {
	return h.String() + "." + base64.RawURLEncoding.EncodeToString(c.mac(h))
}

// Decode verifies value and returns the handle it carries.
func (c *CookieCodec) Decode(value string) (Handle, error) {
	raw, sig, ok := strings.Cut(value, ".")
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSessionID, "[session Decode] unsigned value")
	}

	h, err := ParseHandle(raw)
	if err != nil {
		return "", err
	}

	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, c.mac(h)) {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSessionID, "[session Decode] bad signature")
	}
	return h, nil
}
