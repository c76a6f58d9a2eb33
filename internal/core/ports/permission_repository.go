package ports

import (
	"context"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// PermissionRepository defines persistence for permissions. The
// (resource, action) pair is unique at the store level; violations surface as
// domain.ErrDuplicatePermission.
type PermissionRepository interface {
	Create(ctx context.Context, permission *domain.Permission) (*domain.Permission, error)
	FindByID(ctx context.Context, id string) (*domain.Permission, error)
	FindByResource(ctx context.Context, resource string) ([]domain.Permission, error)
	FindByAction(ctx context.Context, action string) ([]domain.Permission, error)
	FindByResourceAndAction(ctx context.Context, resource, action string) (*domain.Permission, error)
	FindAll(ctx context.Context) ([]domain.Permission, error)
	Update(ctx context.Context, permission *domain.Permission) (*domain.Permission, error)
	Delete(ctx context.Context, id string) error
}
