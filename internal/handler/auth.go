package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DMlogobardi/Quizy-sub001/internal/middleware"
	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type credentialResp struct {
	Credential string `json:"credential"`
}

// Register: create a compiler-role user.  No credential is issued
// here; the client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Register(ctx, service.RegisterInput{Username: req.Username, Password: req.Password}); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// Login: verify the password and return a live credential.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cred, err := h.Auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, credentialResp{Credential: cred})
}

// Logout revokes the presented credential.  Runs behind CredentialAuth
// so only a live credential ever reaches it; revocation itself cannot
// fail.
func (h *AuthHandler) Logout(c echo.Context) error {
	cred, _ := c.Get(middleware.CtxCredential).(string)
	h.Auth.Logout(cred)
	return c.NoContent(http.StatusNoContent)
}

// Elevate swaps a live compiler credential for a creator one.  The old
// credential is dead by the time the response is written.
func (h *AuthHandler) Elevate(c echo.Context) error {
	cred, _ := c.Get(middleware.CtxCredential).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	newCred, err := h.Auth.ElevateRole(ctx, cred)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, credentialResp{Credential: newCred})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	role, _ := c.Get(middleware.CtxRole).(model.Role)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get(middleware.CtxUserID),
		"role":    role.String(),
	})
}
