package ports

import (
	"context"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// RoleRepository defines persistence for roles. Name uniqueness is enforced
// at the store level; violations surface as domain.ErrDuplicateRole.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindAll(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Delete(ctx context.Context, id string) error

	// RemovePermissionFromAll severs the given permission id from every
	// role's edge set. Called before a permission is deleted.
	RemovePermissionFromAll(ctx context.Context, permissionID string) error
}
