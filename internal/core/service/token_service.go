package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

const minSecretLength = 32

// ErrWeakSecret is returned by NewTokenService when the signing secret is
// missing or too short. It is a startup-time condition: the service must not
// run with a guessable key.
var ErrWeakSecret = errors.New("jwt secret missing or shorter than 32 bytes")

const (
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// tokenClaims is the wire shape of both token classes. Authorities is only
// populated on access tokens; refresh tokens carry the subject alone so a
// refreshed access token always reflects the current role state.
type tokenClaims struct {
	Authorities []string `json:"authorities,omitempty"`
	TokenType   string   `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 bearer tokens.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a TokenService. The secret is validated here so a
// misconfigured deployment fails at startup instead of per request. Zero TTLs
// fall back to 24h access / 7d refresh.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken signs an access token carrying the subject and its
// resolved authority set.
func (s *TokenService) IssueAccessToken(subject string, authorities []string) (string, error) {
	return s.sign(subject, authorities, ports.TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken signs a refresh token carrying only the subject.
func (s *TokenService) IssueRefreshToken(subject string) (string, error) {
	return s.sign(subject, nil, ports.TokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) sign(subject string, authorities []string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Authorities: authorities,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate verifies signature, structure, expiry and token class. Every
// failure mode collapses into domain.ErrInvalidToken so callers cannot tell
// a bad signature from an expired token.
func (s *TokenService) Validate(token, tokenType string) (*ports.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != tokenType || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	out := &ports.TokenClaims{
		Subject:     claims.Subject,
		Authorities: claims.Authorities,
		TokenType:   claims.TokenType,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Subject extracts the subject from a valid access token.
func (s *TokenService) Subject(token string) (string, error) {
	claims, err := s.Validate(token, ports.TokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
