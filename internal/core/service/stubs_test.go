package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

// In-memory repositories used across the service tests. They enforce the
// same uniqueness rules as the MongoDB implementations so the services see
// identical error behavior.

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.RoleIDs = append([]string(nil), u.RoleIDs...)
	return &clone
}

func (r *stubUserRepo) nextID() string {
	r.seq++
	return "user-" + strconv.Itoa(r.seq)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	created := cloneUser(user)
	created.ID = r.nextID()
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) RemoveRoleFromAll(_ context.Context, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		kept := u.RoleIDs[:0]
		for _, id := range u.RoleIDs {
			if id != roleID {
				kept = append(kept, id)
			}
		}
		u.RoleIDs = kept
	}
	return nil
}

type stubRoleRepo struct {
	mu    sync.Mutex
	seq   int
	roles map[string]*domain.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func cloneRole(role *domain.Role) *domain.Role {
	if role == nil {
		return nil
	}
	clone := *role
	clone.PermissionIDs = append([]string(nil), role.PermissionIDs...)
	return &clone
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return nil, domain.ErrDuplicateRole
		}
	}
	r.seq++
	created := cloneRole(role)
	created.ID = "role-" + strconv.Itoa(r.seq)
	r.roles[created.ID] = cloneRole(created)
	return created, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[id]; ok {
		return cloneRole(role), nil
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindAll(_ context.Context) ([]domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *cloneRole(role))
	}
	return out, nil
}

func (r *stubRoleRepo) Update(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role.ID]; !ok {
		return nil, domain.ErrRoleNotFound
	}
	r.roles[role.ID] = cloneRole(role)
	return cloneRole(role), nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *stubRoleRepo) RemovePermissionFromAll(_ context.Context, permissionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		kept := role.PermissionIDs[:0]
		for _, id := range role.PermissionIDs {
			if id != permissionID {
				kept = append(kept, id)
			}
		}
		role.PermissionIDs = kept
	}
	return nil
}

type stubPermissionRepo struct {
	mu    sync.Mutex
	seq   int
	perms map[string]*domain.Permission
}

func newStubPermissionRepo() *stubPermissionRepo {
	return &stubPermissionRepo{perms: make(map[string]*domain.Permission)}
}

func clonePermission(p *domain.Permission) *domain.Permission {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (r *stubPermissionRepo) Create(_ context.Context, permission *domain.Permission) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.perms {
		if p.Resource == permission.Resource && p.Action == permission.Action {
			return nil, domain.ErrDuplicatePermission
		}
	}
	r.seq++
	created := clonePermission(permission)
	created.ID = "perm-" + strconv.Itoa(r.seq)
	r.perms[created.ID] = clonePermission(created)
	return created, nil
}

func (r *stubPermissionRepo) FindByID(_ context.Context, id string) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.perms[id]; ok {
		return clonePermission(p), nil
	}
	return nil, domain.ErrPermissionNotFound
}

func (r *stubPermissionRepo) FindByResource(_ context.Context, resource string) ([]domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Permission
	for _, p := range r.perms {
		if p.Resource == resource {
			out = append(out, *clonePermission(p))
		}
	}
	return out, nil
}

func (r *stubPermissionRepo) FindByAction(_ context.Context, action string) ([]domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Permission
	for _, p := range r.perms {
		if p.Action == action {
			out = append(out, *clonePermission(p))
		}
	}
	return out, nil
}

func (r *stubPermissionRepo) FindByResourceAndAction(_ context.Context, resource, action string) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.perms {
		if p.Resource == resource && p.Action == action {
			return clonePermission(p), nil
		}
	}
	return nil, domain.ErrPermissionNotFound
}

func (r *stubPermissionRepo) FindAll(_ context.Context) ([]domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Permission, 0, len(r.perms))
	for _, p := range r.perms {
		out = append(out, *clonePermission(p))
	}
	return out, nil
}

func (r *stubPermissionRepo) Update(_ context.Context, permission *domain.Permission) (*domain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.perms[permission.ID]; !ok {
		return nil, domain.ErrPermissionNotFound
	}
	r.perms[permission.ID] = clonePermission(permission)
	return clonePermission(permission), nil
}

func (r *stubPermissionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.perms[id]; !ok {
		return domain.ErrPermissionNotFound
	}
	delete(r.perms, id)
	return nil
}

// stubPublisher records published audit events synchronously.
type stubPublisher struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (p *stubPublisher) Publish(event domain.AuthEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *stubPublisher) byAction(action string) []domain.AuthEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.AuthEvent
	for _, e := range p.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// stubThrottle is a deterministic LoginThrottle for tests.
type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	limit    int
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) Blocked(_ context.Context, username string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[username] >= t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, username)
	return nil
}
