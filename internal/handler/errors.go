package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/repository"
	"github.com/DMlogobardi/Quizy-sub001/internal/service"
)

// statusFor maps service-layer errors onto HTTP statuses.  The precise
// internal reason never leaves the server; clients get the coarse
// category only.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "credential expired"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, "invalid credential"
	case errors.Is(err, auth.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, service.ErrLoginFailed):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrRegisterFailed):
		if errors.Is(err, repository.ErrUserExists) {
			return http.StatusConflict, "username already exists"
		}
		return http.StatusBadRequest, "registration failed"
	case errors.Is(err, repository.ErrQuizNotFound):
		return http.StatusNotFound, "quiz not found"
	case errors.Is(err, service.ErrQuizRequest):
		return http.StatusBadRequest, "quiz request failed"
	case errors.Is(err, service.ErrQuizInternal):
		return http.StatusInternalServerError, "service error"
	default:
		return http.StatusInternalServerError, "service error"
	}
}

func fail(c echo.Context, err error) error {
	code, msg := statusFor(err)
	return c.JSON(code, echo.Map{"error": msg})
}
