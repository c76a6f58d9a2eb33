package service

import (
	"context"
	"errors"
	"sort"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// AuthorityResolver walks a user's roles and each role's permissions and
// produces the flattened authority set. Every resolution reads the stores
// fresh, so role and permission changes take effect on the next request
// without token reissuance.
type AuthorityResolver struct {
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
}

func NewAuthorityResolver(roles ports.RoleRepository, permissions ports.PermissionRepository) *AuthorityResolver {
	return &AuthorityResolver{roles: roles, permissions: permissions}
}

// Resolve returns the deduplicated union of ROLE_<name> markers and
// permission names reachable through the user's roles, sorted for
// deterministic output. Edge ids pointing at entities deleted since the edge
// was written are skipped; a half-severed graph must not fail authentication.
func (r *AuthorityResolver) Resolve(ctx context.Context, user *domain.User) ([]string, error) {
	set := make(map[string]struct{})

	for _, roleID := range user.RoleIDs {
		role, err := r.roles.FindByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, domain.ErrRoleNotFound) {
				continue
			}
			return nil, err
		}
		set[role.Authority()] = struct{}{}

		for _, permID := range role.PermissionIDs {
			perm, err := r.permissions.FindByID(ctx, permID)
			if err != nil {
				if errors.Is(err, domain.ErrPermissionNotFound) {
					continue
				}
				return nil, err
			}
			set[perm.Name] = struct{}{}
		}
	}

	authorities := make([]string, 0, len(set))
	for a := range set {
		authorities = append(authorities, a)
	}
	sort.Strings(authorities)
	return authorities, nil
}
