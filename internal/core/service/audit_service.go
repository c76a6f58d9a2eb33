package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// AuditService persists authentication events delivered by the dispatcher.
type AuditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (s *AuditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		return err
	}
	s.log.Debug().
		Str("username", event.Username).
		Str("action", event.Action).
		Str("outcome", event.Outcome).
		Msg("audit event recorded")
	return nil
}

// Recent returns the latest audit entries, newest first.
func (s *AuditService) Recent(ctx context.Context, limit int64) ([]domain.AuthEvent, error) {
	return s.repo.FindRecent(ctx, limit)
}
