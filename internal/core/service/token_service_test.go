package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestNewTokenService_WeakSecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour, time.Hour); !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret for empty secret, got %v", err)
	}
	if _, err := NewTokenService("short", time.Hour, time.Hour); !errors.Is(err, ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret for short secret, got %v", err)
	}
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	token, err := svc.IssueAccessToken("alice", []string{"ROLE_USER", "READ_DATASETS"})
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	claims, err := svc.Validate(token, ports.TokenTypeAccess)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if len(claims.Authorities) != 2 {
		t.Fatalf("unexpected authorities: %v", claims.Authorities)
	}
	if claims.TokenType != ports.TokenTypeAccess {
		t.Fatalf("unexpected token type: %s", claims.TokenType)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", claims.ExpiresAt)
	}
}

func TestTokenService_RefreshCarriesNoAuthorities(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	token, err := svc.IssueRefreshToken("alice")
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	claims, err := svc.Validate(token, ports.TokenTypeRefresh)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(claims.Authorities) != 0 {
		t.Fatalf("refresh token should carry no authorities, got %v", claims.Authorities)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)
	// Force an already-expired token through the private signer.
	token, err := svc.sign("alice", nil, ports.TokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Validate(token, ports.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	token, err := svc.IssueAccessToken("alice", []string{"ROLE_USER"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip one byte of the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Validate(tampered, ports.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)
	other, err := NewTokenService("ffffffffffffffffffffffffffffffff", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := other.IssueAccessToken("alice", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Validate(token, ports.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestTokenService_ClassMismatch(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	access, err := svc.IssueAccessToken("alice", []string{"ROLE_USER"})
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := svc.IssueRefreshToken("alice")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	// An access token must not stand in for a refresh token, or vice versa.
	if _, err := svc.Validate(access, ports.TokenTypeRefresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access-as-refresh, got %v", err)
	}
	if _, err := svc.Validate(refresh, ports.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh-as-access, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := svc.Validate(token, ports.TokenTypeAccess); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestTokenService_Subject(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	token, err := svc.IssueAccessToken("bob", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := svc.Subject(token)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if subject != "bob" {
		t.Fatalf("unexpected subject: %s", subject)
	}

	if _, err := svc.Subject("garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
