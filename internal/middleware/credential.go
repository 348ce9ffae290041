package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/session"
)

// Context keys populated by CredentialAuth for downstream handlers.
const (
	CtxCredential = "credential"
	CtxUserID     = "user_id"
	CtxRole       = "role"
)

// CredentialAuth returns an Echo middleware that validates a Bearer
// credential and injects the credential string, subject id and role
// into the request context.  Two checks run in order: the session
// registry confirms the credential has not been revoked, then the
// codec re-verifies signature and expiry; registry membership is a
// revocation list, never a validity proof.  An expired credential is
// dropped from the registry on the spot.
func CredentialAuth(codec *auth.Codec, registry *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer credential"})
			}
			cred := strings.TrimPrefix(header, "Bearer ")

			if !registry.IsAlive(cred) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session revoked"})
			}

			uid, err := codec.IdentityOf(cred)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					registry.Remove(cred)
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credential expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential"})
			}
			role, err := codec.RoleOf(cred)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential"})
			}

			c.Set(CtxCredential, cred)
			c.Set(CtxUserID, uid)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}
