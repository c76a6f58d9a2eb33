package ports

import (
	"context"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
	FindRecent(ctx context.Context, limit int64) ([]domain.AuthEvent, error)
}
