package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// RoleService implements role management, including the edge-severing delete
// order that keeps the role/user and role/permission graphs free of dangling
// references.
type RoleService struct {
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
	users       ports.UserRepository
	log         zerolog.Logger
}

func NewRoleService(
	roles ports.RoleRepository,
	permissions ports.PermissionRepository,
	users ports.UserRepository,
	log zerolog.Logger,
) *RoleService {
	return &RoleService{roles: roles, permissions: permissions, users: users, log: log}
}

func (s *RoleService) GetAll(ctx context.Context) ([]domain.Role, error) {
	return s.roles.FindAll(ctx)
}

func (s *RoleService) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *RoleService) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return s.roles.FindByName(ctx, name)
}

func (s *RoleService) Create(ctx context.Context, name, description string) (*domain.Role, error) {
	if _, err := s.roles.FindByName(ctx, name); err == nil {
		return nil, domain.ErrDuplicateRole
	} else if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:          name,
		Description:   description,
		PermissionIDs: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.roles.Create(ctx, role)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("role", created.Name).Msg("role created")
	return created, nil
}

func (s *RoleService) Update(ctx context.Context, id, name, description string) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" && name != role.Name {
		if _, err := s.roles.FindByName(ctx, name); err == nil {
			return nil, domain.ErrDuplicateRole
		} else if !errors.Is(err, domain.ErrRoleNotFound) {
			return nil, err
		}
		role.Name = name
	}
	if description != "" {
		role.Description = description
	}

	role.UpdatedAt = time.Now().UTC()
	return s.roles.Update(ctx, role)
}

// Delete severs every user's membership edge first, then removes the role.
// The ordering is a hard invariant: the node must never disappear while edges
// still point at it.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.RemoveRoleFromAll(ctx, id); err != nil {
		return err
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("role", role.Name).Msg("role deleted")
	return nil
}

// AssignPermission adds a permission edge to the role. Duplicate assignment
// is a no-op.
func (s *RoleService) AssignPermission(ctx context.Context, roleID, permissionID string) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.FindByID(ctx, permissionID); err != nil {
		return nil, err
	}

	for _, id := range role.PermissionIDs {
		if id == permissionID {
			return role, nil
		}
	}
	role.PermissionIDs = append(role.PermissionIDs, permissionID)
	role.UpdatedAt = time.Now().UTC()
	return s.roles.Update(ctx, role)
}

// RemovePermission drops the permission edge; the permission itself survives.
func (s *RoleService) RemovePermission(ctx context.Context, roleID, permissionID string) (*domain.Role, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.permissions.FindByID(ctx, permissionID); err != nil {
		return nil, err
	}

	kept := role.PermissionIDs[:0]
	for _, id := range role.PermissionIDs {
		if id != permissionID {
			kept = append(kept, id)
		}
	}
	role.PermissionIDs = kept
	role.UpdatedAt = time.Now().UTC()
	return s.roles.Update(ctx, role)
}

// GetPermissions resolves the role's permission edges to full records,
// skipping ids whose permission has since been deleted.
func (s *RoleService) GetPermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	perms := make([]domain.Permission, 0, len(role.PermissionIDs))
	for _, id := range role.PermissionIDs {
		perm, err := s.permissions.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrPermissionNotFound) {
				continue
			}
			return nil, err
		}
		perms = append(perms, *perm)
	}
	return perms, nil
}
