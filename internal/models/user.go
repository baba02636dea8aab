package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the capability tag carried by every principal.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleOwner      Role = "owner"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleOwner, RoleSuperadmin:
		return true
	}
	return false
}

// User represents a principal: a shop owner, a member of their staff, or a
// platform superadmin.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone,omitempty" db:"phone"`

	PasswordHash string `json:"-" db:"password_hash"`

	Role Role `json:"role" db:"role"`

	// TenantID may be nil for users created by older registration paths;
	// the identity resolver repairs it for owners.
	TenantID *uuid.UUID `json:"tenantId,omitempty" db:"tenant_id"`

	// HourlyRate drives salaryEarned on attendance check-out.
	HourlyRate float64 `json:"hourlyRate" db:"hourly_rate"`
}

// HasTenant reports whether the user carries a tenant link.
func (u *User) HasTenant() bool {
	return u.TenantID != nil && *u.TenantID != uuid.Nil
}
