package auth

import (
	"errors"
	"fmt"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
)

// ErrUnauthorized is returned when a credential does not carry the role
// an operation requires, or could not be decoded at all.  When decoding
// failed the underlying ErrTokenExpired/ErrTokenInvalid is wrapped so
// callers can still tell the cases apart with errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// Guard enforces role policy on top of the credential codec.
type Guard struct {
	codec *Codec
}

func NewGuard(codec *Codec) *Guard { return &Guard{codec: codec} }

// RequireRole fails unless the credential decodes cleanly and its role
// claim equals want.  Role comparison is exact: a MANAGER credential
// does not satisfy a CREATOR requirement.
func (g *Guard) RequireRole(credential string, want model.Role) error {
	got, err := g.codec.RoleOf(credential)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if got != want {
		return fmt.Errorf("%w: role %s, need %s", ErrUnauthorized, got, want)
	}
	return nil
}

// Elevate mints a credential carrying a new role for the user.  The
// user must be eligible for that role.  Registering the new credential
// and revoking the old one is the caller's job; the documented order
// is issue, register new, remove old, clear the user's cache partition,
// then acknowledge the new credential.
func (g *Guard) Elevate(u *model.User, want model.Role) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: no identity", ErrInvalidArgument)
	}
	if !u.EligibleFor(want) {
		return "", fmt.Errorf("%w: user %d not eligible for %s", ErrUnauthorized, u.ID, want)
	}
	return g.codec.Issue(u.ID, want)
}
