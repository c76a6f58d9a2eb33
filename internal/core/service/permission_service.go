package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// PermissionService implements permission management. The display name is
// always derived from the (resource, action) pair, never accepted from the
// caller, so authority strings can only name permissions that exist.
type PermissionService struct {
	permissions ports.PermissionRepository
	roles       ports.RoleRepository
	log         zerolog.Logger
}

func NewPermissionService(permissions ports.PermissionRepository, roles ports.RoleRepository, log zerolog.Logger) *PermissionService {
	return &PermissionService{permissions: permissions, roles: roles, log: log}
}

func (s *PermissionService) GetAll(ctx context.Context) ([]domain.Permission, error) {
	return s.permissions.FindAll(ctx)
}

func (s *PermissionService) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	return s.permissions.FindByID(ctx, id)
}

func (s *PermissionService) GetByResource(ctx context.Context, resource string) ([]domain.Permission, error) {
	return s.permissions.FindByResource(ctx, resource)
}

func (s *PermissionService) GetByAction(ctx context.Context, action string) ([]domain.Permission, error) {
	return s.permissions.FindByAction(ctx, action)
}

func (s *PermissionService) GetByResourceAndAction(ctx context.Context, resource, action string) (*domain.Permission, error) {
	return s.permissions.FindByResourceAndAction(ctx, resource, action)
}

func (s *PermissionService) Exists(ctx context.Context, resource, action string) (bool, error) {
	_, err := s.permissions.FindByResourceAndAction(ctx, resource, action)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *PermissionService) Create(ctx context.Context, resource, action, description string) (*domain.Permission, error) {
	if _, err := s.permissions.FindByResourceAndAction(ctx, resource, action); err == nil {
		return nil, domain.ErrDuplicatePermission
	} else if !errors.Is(err, domain.ErrPermissionNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	perm := &domain.Permission{
		Resource:    resource,
		Action:      action,
		Name:        domain.PermissionName(resource, action),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.permissions.Create(ctx, perm)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("permission", created.Name).Msg("permission created")
	return created, nil
}

// Update changes resource/action/description. A pair change re-checks
// uniqueness and regenerates the display name.
func (s *PermissionService) Update(ctx context.Context, id, resource, action, description string) (*domain.Permission, error) {
	perm, err := s.permissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newResource := perm.Resource
	newAction := perm.Action
	if resource != "" {
		newResource = resource
	}
	if action != "" {
		newAction = action
	}

	if newResource != perm.Resource || newAction != perm.Action {
		if _, err := s.permissions.FindByResourceAndAction(ctx, newResource, newAction); err == nil {
			return nil, domain.ErrDuplicatePermission
		} else if !errors.Is(err, domain.ErrPermissionNotFound) {
			return nil, err
		}
		perm.Resource = newResource
		perm.Action = newAction
		perm.Name = domain.PermissionName(newResource, newAction)
	}
	if description != "" {
		perm.Description = description
	}

	perm.UpdatedAt = time.Now().UTC()
	return s.permissions.Update(ctx, perm)
}

// Delete severs the permission from every role granting it, then removes the
// permission record. Edges first, node last.
func (s *PermissionService) Delete(ctx context.Context, id string) error {
	perm, err := s.permissions.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.roles.RemovePermissionFromAll(ctx, id); err != nil {
		return err
	}
	if err := s.permissions.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("permission", perm.Name).Msg("permission deleted")
	return nil
}
