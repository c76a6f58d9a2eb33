package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body.Error
}

func TestHTTPErrorHandler_DomainMappings(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized},
		{"account disabled", domain.ErrAccountDisabled, http.StatusForbidden},
		{"account locked", domain.ErrAccountLocked, http.StatusForbidden},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"duplicate username", domain.ErrDuplicateUsername, http.StatusConflict},
		{"duplicate email", domain.ErrDuplicateEmail, http.StatusConflict},
		{"duplicate role", domain.ErrDuplicateRole, http.StatusConflict},
		{"duplicate permission", domain.ErrDuplicatePermission, http.StatusConflict},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"role not found", domain.ErrRoleNotFound, http.StatusNotFound},
		{"permission not found", domain.ErrPermissionNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := renderError(t, tc.err)
			if code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, code)
			}
			if msg == "" {
				t.Fatal("empty error message")
			}
		})
	}
}

func TestHTTPErrorHandler_EchoErrorPassesThrough(t *testing.T) {
	code, msg := renderError(t, echo.NewHTTPError(http.StatusTeapot, "short and stout"))
	if code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", code)
	}
	if msg != "short and stout" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestHTTPErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	code, msg := renderError(t, errors.New("connection refused to internal dependency"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}
