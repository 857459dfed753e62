package session

import (
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-workspace-auth/internal/errors"
)

// Handle is the opaque identifier of a server-side session. It carries no
// information and is only meaningful as a lookup key.
type Handle string

func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// ParseHandle accepts only well-formed handles so arbitrary cookie input never
// reaches a backend.
func ParseHandle(s string) (Handle, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSessionID, "[session ParseHandle] %q", s)
	}
	return Handle(id.String()), nil
}

func (h Handle) String() string {
	return string(h)
}
