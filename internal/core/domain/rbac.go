package domain

import (
	"strings"
	"time"
)

// RolePrefix distinguishes "is-a-role" authorities from permission names in a
// resolved authority set.
const RolePrefix = "ROLE_"

// DefaultRoleName is assigned on registration when no roles are requested.
const DefaultRoleName = "USER"

// Role is a named authorization group granting a set of permissions.
// Permission membership is an edge set of permission ids.
type Role struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	PermissionIDs []string  `json:"permission_ids" bson:"permission_ids"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// Authority returns the role-membership authority string, e.g. "ROLE_ADMIN".
// Role names are stored upper-case by convention; the name is used verbatim so
// the authority always matches what the store actually holds.
func (r *Role) Authority() string {
	return RolePrefix + r.Name
}

// Permission is an atomic capability identified by a (resource, action) pair.
// Name is derived from the pair and is the string consumed by authorization
// checks.
type Permission struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Resource    string    `json:"resource" bson:"resource"`
	Action      string    `json:"action" bson:"action"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// PermissionName derives the display name for a (resource, action) pair using
// the {ACTION}_{RESOURCE} convention, e.g. ("datasets", "read") -> "READ_DATASETS".
func PermissionName(resource, action string) string {
	return strings.ToUpper(action) + "_" + strings.ToUpper(resource)
}
