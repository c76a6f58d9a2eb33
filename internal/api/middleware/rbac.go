package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// RequireAuthority rejects requests whose principal holds none of the given
// authority strings. Unauthenticated requests get 401, authenticated ones
// without a matching authority get 403.
func RequireAuthority(authorities ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := PrincipalFrom(c)
			if principal == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, a := range authorities {
				if principal.HasAuthority(a) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}

// RequireRole is RequireAuthority for a role marker, e.g. RequireRole("ADMIN")
// checks for the ROLE_ADMIN authority.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	authorities := make([]string, len(roles))
	for i, r := range roles {
		authorities[i] = domain.RolePrefix + r
	}
	return RequireAuthority(authorities...)
}

// RequireAuthenticated only demands a principal, any authority set.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if PrincipalFrom(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
