package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/repository"
	"github.com/DMlogobardi/Quizy-sub001/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"expired credential", auth.ErrTokenExpired, http.StatusUnauthorized},
		{"unauthorized", auth.ErrUnauthorized, http.StatusForbidden},
		{"invalid credential", auth.ErrTokenInvalid, http.StatusUnauthorized},
		{"bad argument", auth.ErrInvalidArgument, http.StatusBadRequest},
		{"login failure", service.ErrLoginFailed, http.StatusUnauthorized},
		{"duplicate username", fmt.Errorf("%w: %w", service.ErrRegisterFailed, repository.ErrUserExists), http.StatusConflict},
		{"registration failure", service.ErrRegisterFailed, http.StatusBadRequest},
		{"missing quiz", repository.ErrQuizNotFound, http.StatusNotFound},
		{"bad quiz request", service.ErrQuizRequest, http.StatusBadRequest},
		{"persistence failure", fmt.Errorf("%w: dial tcp: connection refused", service.ErrQuizInternal), http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := statusFor(tt.err)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
			// Transport-level failures must not leak detail to clients.
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, msg, "refused")
			}
		})
	}
}
