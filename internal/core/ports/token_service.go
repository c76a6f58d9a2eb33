package ports

import "time"

// Token classes. Access and refresh tokens share the signing key; the class
// claim is what keeps one from standing in for the other, and it is checked
// on every validation.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the decoded, already-verified content of a bearer token.
type TokenClaims struct {
	Subject     string
	Authorities []string
	TokenType   string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// TokenService signs and validates bearer tokens. Validate collapses every
// failure mode (signature, structure, expiry, class) into
// domain.ErrInvalidToken.
type TokenService interface {
	IssueAccessToken(subject string, authorities []string) (string, error)
	IssueRefreshToken(subject string) (string, error)
	Validate(token, tokenType string) (*TokenClaims, error)
	Subject(token string) (string, error)
}
