package providertest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity describes the user a fake provider authenticates.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// DefaultIdentity is the user every test signs in as unless told otherwise.
var DefaultIdentity = Identity{
	Subject:       "108234567890123456789",
	Email:         "ada@example.com",
	EmailVerified: true,
	Name:          "Ada Lovelace",
	Picture:       "https://example.com/ada.png",
}

// IDTokenClaims builds the claim set of an identity token issued at now.
// Callers tweak the returned map to produce invalid tokens.
func IDTokenClaims(issuer, audience, nonce string, id Identity, now time.Time, ttl time.Duration) jwt.MapClaims {
	claims := jwt.MapClaims{
		"iss":            issuer,
		"sub":            id.Subject,
		"aud":            audience,
		"email":          id.Email,
		"email_verified": id.EmailVerified,
		"name":           id.Name,
		"picture":        id.Picture,
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
		"jti":            uuid.New().String(),
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	return claims
}
