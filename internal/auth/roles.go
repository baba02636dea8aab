package auth

import (
	"errors"
	"fmt"

	"github.com/flownest/flownest-server/internal/models"
)

// ErrForbidden marks a principal whose role is outside a route's allow-set
var ErrForbidden = errors.New("forbidden")

// RoleError reports which role was refused.
type RoleError struct {
	Role models.Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("Access denied. Role '%s' is not authorized to access this resource", e.Role)
}

func (e *RoleError) Unwrap() error { return ErrForbidden }

// AllowSet is the explicit set of roles a route admits. There is no
// implied ordering between roles; a route that should admit superadmins
// wherever owners are admitted lists both.
type AllowSet map[models.Role]struct{}

// Allow builds an allow-set from the given roles.
func Allow(roles ...models.Role) AllowSet {
	set := make(AllowSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Permits reports whether role is a member of the set.
func (s AllowSet) Permits(role models.Role) bool {
	_, ok := s[role]
	return ok
}

// Check returns a *RoleError when role is not permitted.
func (s AllowSet) Check(role models.Role) error {
	if s.Permits(role) {
		return nil
	}
	return &RoleError{Role: role}
}

// Allow-sets used by the HTTP routes
var (
	AnyRole        = Allow(models.RoleStaff, models.RoleOwner, models.RoleSuperadmin)
	TenantMembers  = Allow(models.RoleStaff, models.RoleOwner)
	OwnerOnly      = Allow(models.RoleOwner)
	OwnerOrAdmin   = Allow(models.RoleOwner, models.RoleSuperadmin)
	SuperadminOnly = Allow(models.RoleSuperadmin)
)
