// Package services – role-based access control.
//
// Staff identity is resolved by an upstream boundary (gateway or session
// layer); the services only receive a caller identity plus role and gate
// administrative mutations on a static role → permission-set table. Every
// decision is logged, mirroring the product's RBAC audit trail.
package services

import (
	"github.com/rs/zerolog/log"
)

// Role is a staff role as resolved by the identity boundary.
type Role string

// Known roles.
const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Permission is one of the four coarse actions gated by RBAC.
type Permission string

// Known permissions.
const (
	PermCreate Permission = "create"
	PermRead   Permission = "read"
	PermUpdate Permission = "update"
	PermDelete Permission = "delete"
)

// rolePermissions maps each role to its permitted actions.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:    {PermCreate, PermRead, PermUpdate, PermDelete},
	RoleOperator: {PermRead, PermUpdate},
	RoleViewer:   {PermRead},
}

// Identity is the resolved caller passed into role-gated service methods.
type Identity struct {
	UserID string
	Role   Role
}

// Permits reports whether role allows the given permission. Unknown roles
// permit nothing. Each decision is written to the RBAC audit log.
func Permits(role Role, perm Permission) bool {
	allowed := false
	for _, p := range rolePermissions[role] {
		if p == perm {
			allowed = true
			break
		}
	}
	log.Debug().
		Str("role", string(role)).
		Str("permission", string(perm)).
		Bool("allowed", allowed).
		Msg("rbac decision")
	return allowed
}

// requirePermission returns ErrPermissionDenied unless id's role permits perm.
func requirePermission(id Identity, perm Permission) error {
	if !Permits(id.Role, perm) {
		return ErrPermissionDenied
	}
	return nil
}
