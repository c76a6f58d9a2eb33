package ports

import (
	"context"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Username and email
// uniqueness is enforced by the store itself (unique indexes), so two
// concurrent Create calls with the same username resolve with exactly one
// winner; the loser observes domain.ErrDuplicateUsername or
// domain.ErrDuplicateEmail.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// RemoveRoleFromAll severs the given role id from every user's edge set.
	// Called before a role is deleted so no dangling membership survives.
	RemoveRoleFromAll(ctx context.Context, roleID string) error
}
