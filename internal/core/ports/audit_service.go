package ports

import (
	"context"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// AuditService records authentication events to the audit trail.
type AuditService interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditPublisher enqueues events for asynchronous recording. Publishing is
// best-effort and must never block the authentication path.
type AuditPublisher interface {
	Publish(event domain.AuthEvent)
}

// LoginThrottle tracks failed login attempts per username.
type LoginThrottle interface {
	// Blocked reports whether the username has exceeded the failure budget.
	Blocked(ctx context.Context, username string) (bool, error)
	// RecordFailure counts one failed attempt.
	RecordFailure(ctx context.Context, username string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, username string) error
}
