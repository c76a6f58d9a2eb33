package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toronto-opendata/auth-service/internal/api/middleware"
	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Authenticate middleware
// and fast-fails before any service call when the request carries no usable
// identity.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil || principal.Username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return principal, nil
}
