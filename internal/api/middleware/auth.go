package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/toronto-opendata/auth-service/internal/api/metrics"
	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// PrincipalKey is the echo context key under which the resolved principal is
// stored for the remainder of request processing.
const PrincipalKey = "principal"

// Authenticate extracts a bearer token, validates it and attaches a resolved
// principal to the context. A missing, malformed or invalid credential never
// fails the request here; it simply leaves the call unauthenticated so the
// authorization layer produces the uniform 401/403 without exposing codec
// internals. Authorities are resolved fresh on every request, and account
// flags are re-checked so a lock applied after token issuance takes effect
// immediately.
func Authenticate(tokens ports.TokenService, users ports.UserRepository, resolver ports.AuthorityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				metrics.TokenValidationsTotal.WithLabelValues("absent").Inc()
				return next(c)
			}

			claims, err := tokens.Validate(token, ports.TokenTypeAccess)
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := users.FindByUsername(ctx, claims.Subject)
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}
			if !user.Active() {
				// Cryptographically valid token, administratively dead account.
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			authorities, err := resolver.Resolve(ctx, user)
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(PrincipalKey, &domain.Principal{
				Username:    user.Username,
				Authorities: authorities,
				Enabled:     user.Enabled,
				Locked:      !user.AccountNonLocked,
			})
			return next(c)
		}
	}
}

// bearerToken pulls the token out of "Authorization: Bearer <token>". A
// missing header or a different scheme counts as "no credential presented".
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// PrincipalFrom returns the principal attached by Authenticate, or nil when
// the request is unauthenticated.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}
