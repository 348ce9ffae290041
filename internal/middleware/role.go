package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the specified roles.  It assumes
// CredentialAuth has already stored the decoded role in the context.
// Roles are compared as enum values, not strings, so an unknown claim
// can never match.  If the role is missing or not allowed, the request
// is aborted with a 403 Forbidden response.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
