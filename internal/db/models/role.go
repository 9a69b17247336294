package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// SystemScope is the scope key shared by all system roles.
const SystemScope = "system"

// ErrSystemRoleWithOrg is returned when a role is both system and org scoped.
var ErrSystemRoleWithOrg = errors.New("system roles can not belong to an organization")

// Role is a named bundle of submodule grants. System roles have no
// organization and are shared by all tenants, custom roles belong to one
// organization. Names are unique within their scope.
type Role struct {
	// ID is the unique role identifier (e.g. "role_org_admin").
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Name is unique among system roles, or within the owning organization.
	Name string `gorm:"size:100;not null;uniqueIndex:idx_role_scope_name" json:"name"`
	// Description is a human-readable explanation of the role's purpose.
	Description string `gorm:"size:255" json:"description"`
	// OrgID is nil for system roles.
	OrgID *string `gorm:"size:64;index" json:"org_id"`
	// IsSystem marks roles created by the bootstrap.
	IsSystem bool `gorm:"not null;default:false" json:"is_system"`
	// ScopeKey is SystemScope or the OrgID, it backs the uniqueness of Name.
	ScopeKey  string    `gorm:"size:64;not null;uniqueIndex:idx_role_scope_name" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}

// BeforeCreate derives the scope key.
func (r *Role) BeforeCreate(_ *gorm.DB) error {
	if r.IsSystem && r.OrgID != nil {
		return ErrSystemRoleWithOrg
	}

	r.ScopeKey = RoleScopeKey(r.OrgID)

	return nil
}

// RoleScopeKey returns the uniqueness scope for a role of orgID.
func RoleScopeKey(orgID *string) string {
	if orgID == nil || *orgID == "" {
		return SystemScope
	}

	return *orgID
}

// VisibleTo reports whether members of orgID may see and use the role.
// A nil orgID (super admin) sees every role.
func (r *Role) VisibleTo(orgID *string) bool {
	if orgID == nil || r.OrgID == nil {
		return true
	}

	return *r.OrgID == *orgID
}
