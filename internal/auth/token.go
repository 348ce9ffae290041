package auth // package auth implements the credential codec and role checks

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // unique jti claim per issued credential

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
)

// DefaultTTL is how long an issued credential stays cryptographically
// valid.  There is no refresh flow; after expiry the client must
// authenticate again and receive a brand new credential.
const DefaultTTL = 24 * time.Hour

// Leeway tolerated on the exp claim to absorb clock skew between the
// issuing process and validators.
const Leeway = 60 * time.Second

// ErrInvalidArgument is returned by Issue when the subject id is unset
// or the role is not one of the recognized roles.
var ErrInvalidArgument = errors.New("invalid identity or role")

// ErrTokenExpired is returned when a credential is past its expiry.
// The session registry entry for such a credential should be removed
// by the caller; the codec itself keeps no state.
var ErrTokenExpired = errors.New("credential expired")

// ErrTokenInvalid is returned when a credential is empty, malformed or
// its signature does not verify.
var ErrTokenInvalid = errors.New("credential invalid")

// Codec issues and validates signed, expiring credentials.  Every
// claim read goes through a full parse + signature check; nothing is
// cached, so a tampered string can never be trusted by incidental
// reuse of an earlier validation.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a codec signing with the given process-wide secret.
// A non-positive ttl falls back to DefaultTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue mints a credential for the given user id and role.  The jti
// claim makes two credentials minted within the same second distinct,
// so they key separate session registry entries.
func (c *Codec) Issue(userID uint64, role model.Role) (string, error) {
	if userID == 0 {
		return "", fmt.Errorf("%w: subject id must be positive", ErrInvalidArgument)
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: unrecognized role", ErrInvalidArgument)
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role.String(),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(c.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

// Validate checks the signature, structure and expiry of a credential.
func (c *Codec) Validate(credential string) error {
	_, err := c.parse(credential)
	return err
}

// RoleOf re-validates the credential and returns its role claim.
func (c *Codec) RoleOf(credential string) (model.Role, error) {
	claims, err := c.parse(credential)
	if err != nil {
		return model.RoleUnknown, err
	}
	s, ok := claims["role"].(string)
	if !ok {
		return model.RoleUnknown, fmt.Errorf("%w: missing role claim", ErrTokenInvalid)
	}
	role, ok := model.ParseRole(s)
	if !ok {
		return model.RoleUnknown, fmt.Errorf("%w: unrecognized role claim %q", ErrTokenInvalid, s)
	}
	return role, nil
}

// IdentityOf re-validates the credential and returns its subject id.
func (c *Codec) IdentityOf(credential string) (uint64, error) {
	claims, err := c.parse(credential)
	if err != nil {
		return 0, err
	}
	// JWT numeric claims decode as float64; tolerate string subjects
	// the way some issuers encode them.
	switch sub := claims["sub"].(type) {
	case float64:
		if sub <= 0 {
			return 0, fmt.Errorf("%w: non-positive subject", ErrTokenInvalid)
		}
		return uint64(sub), nil
	default:
		return 0, fmt.Errorf("%w: missing subject claim", ErrTokenInvalid)
	}
}

// parse runs the full verification pipeline and maps library errors
// onto the codec's sentinel kinds.
func (c *Codec) parse(credential string) (jwt.MapClaims, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: empty credential", ErrTokenInvalid)
	}
	tok, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; an attacker
		// must not be able to downgrade to "none" or swap key types.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithLeeway(Leeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("%w: malformed claims", ErrTokenInvalid)
	}
	return claims, nil
}
