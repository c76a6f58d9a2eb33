package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

func newPermissionFixture(t *testing.T) (*PermissionService, *stubRoleRepo, *stubPermissionRepo, map[string]string) {
	t.Helper()
	roles, perms, ids := seedRBAC(t)
	return NewPermissionService(perms, roles, zerolog.Nop()), roles, perms, ids
}

func TestPermissionService_CreateDerivesName(t *testing.T) {
	svc, _, _, _ := newPermissionFixture(t)

	perm, err := svc.Create(context.Background(), "users", "delete", "remove accounts")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if perm.Name != "DELETE_USERS" {
		t.Fatalf("unexpected name: %s", perm.Name)
	}
}

func TestPermissionService_CreateDuplicatePair(t *testing.T) {
	svc, _, _, _ := newPermissionFixture(t)

	if _, err := svc.Create(context.Background(), "datasets", "read", "again"); !errors.Is(err, domain.ErrDuplicatePermission) {
		t.Fatalf("expected ErrDuplicatePermission, got %v", err)
	}
}

func TestPermissionService_UpdateRegeneratesName(t *testing.T) {
	svc, _, _, ids := newPermissionFixture(t)

	updated, err := svc.Update(context.Background(), ids["read"], "reports", "", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Resource != "reports" || updated.Action != "read" {
		t.Fatalf("pair not applied: %+v", updated)
	}
	if updated.Name != "READ_REPORTS" {
		t.Fatalf("name not regenerated: %s", updated.Name)
	}
}

func TestPermissionService_UpdatePairCollision(t *testing.T) {
	svc, _, _, ids := newPermissionFixture(t)

	// Moving "write datasets" onto the existing "read datasets" pair collides.
	if _, err := svc.Update(context.Background(), ids["write"], "", "read", ""); !errors.Is(err, domain.ErrDuplicatePermission) {
		t.Fatalf("expected ErrDuplicatePermission, got %v", err)
	}
}

func TestPermissionService_DeleteSeversRoleEdges(t *testing.T) {
	svc, roles, perms, ids := newPermissionFixture(t)

	if err := svc.Delete(context.Background(), ids["read"]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := perms.FindByID(context.Background(), ids["read"]); !errors.Is(err, domain.ErrPermissionNotFound) {
		t.Fatalf("permission still present: %v", err)
	}

	// Both granting roles must have lost the edge; unrelated edges survive.
	all, err := roles.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find roles: %v", err)
	}
	for _, role := range all {
		for _, permID := range role.PermissionIDs {
			if permID == ids["read"] {
				t.Fatalf("role %s still references deleted permission", role.Name)
			}
		}
	}
	admin, err := roles.FindByID(context.Background(), ids["ADMIN"])
	if err != nil {
		t.Fatalf("find role: %v", err)
	}
	if len(admin.PermissionIDs) != 1 || admin.PermissionIDs[0] != ids["write"] {
		t.Fatalf("unrelated edges disturbed: %v", admin.PermissionIDs)
	}
}

func TestPermissionService_DeleteUnknown(t *testing.T) {
	svc, _, _, _ := newPermissionFixture(t)

	if err := svc.Delete(context.Background(), "perm-missing"); !errors.Is(err, domain.ErrPermissionNotFound) {
		t.Fatalf("expected ErrPermissionNotFound, got %v", err)
	}
}

func TestPermissionService_Exists(t *testing.T) {
	svc, _, _, _ := newPermissionFixture(t)

	ok, err := svc.Exists(context.Background(), "datasets", "read")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("expected existing pair")
	}

	ok, err = svc.Exists(context.Background(), "datasets", "purge")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("expected missing pair")
	}
}
