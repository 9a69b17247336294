package auth

import (
	"github.com/enterprise-suite/authgate/internal/db/models"
)

// OrgAdminRoleID is the bootstrap organization admin role. Holders pass
// every permission check of their own organization.
const OrgAdminRoleID = "role_org_admin"

// AccessKind tags an AccessLevel.
type AccessKind int

const (
	// AccessRole is a regular user, permissions come from the role grants.
	AccessRole AccessKind = iota
	// AccessOrgAdmin holds the bootstrap organization admin role.
	AccessOrgAdmin
	// AccessSuperAdmin is a platform operator, not tenant scoped.
	AccessSuperAdmin
)

// AccessLevel is resolved once when a principal is built and replaces
// scattered super admin flag and role id comparisons.
type AccessLevel struct {
	Kind AccessKind
	// RoleID is the assigned role, empty when none.
	RoleID string
}

// ResolveAccessLevel derives the access level from the user flags.
// The super admin flag wins over any role.
func ResolveAccessLevel(isSuperAdmin bool, roleID *string) AccessLevel {
	var role string
	if roleID != nil {
		role = *roleID
	}

	switch {
	case isSuperAdmin:
		return AccessLevel{Kind: AccessSuperAdmin, RoleID: role}
	case role == OrgAdminRoleID:
		return AccessLevel{Kind: AccessOrgAdmin, RoleID: role}
	default:
		return AccessLevel{Kind: AccessRole, RoleID: role}
	}
}

// IsSuperAdmin reports platform super admin access.
func (a AccessLevel) IsSuperAdmin() bool {
	return a.Kind == AccessSuperAdmin
}

// CanAdministerOrg reports org admin or super admin access.
func (a AccessLevel) CanAdministerOrg() bool {
	return a.Kind == AccessSuperAdmin || a.Kind == AccessOrgAdmin
}

// BypassesPermissions reports whether role grants are irrelevant.
func (a AccessLevel) BypassesPermissions() bool {
	return a.CanAdministerOrg()
}

func (a AccessLevel) String() string {
	switch a.Kind {
	case AccessSuperAdmin:
		return "super_admin"
	case AccessOrgAdmin:
		return "org_admin"
	default:
		if a.RoleID == "" {
			return "no_role"
		}

		return "role:" + a.RoleID
	}
}

// Principal is the authenticated caller of a request. It starts as the
// access token claims and is enriched with live organization state by the
// tenant resolver.
type Principal struct {
	UserID             string
	OrgID              *string
	RoleID             *string
	IsSuperAdmin       bool
	SubscriptionStatus models.SubscriptionStatus
	OrgPlan            string
	OrgName            string
	Access             AccessLevel
	// TenantResolved is set once the live organization state was loaded.
	TenantResolved bool
}

// OrgScope returns the organization filter for queries: nil for super
// admins, whose queries span every organization.
func (p *Principal) OrgScope() *string {
	if p.IsSuperAdmin {
		return nil
	}

	return p.OrgID
}

// PrincipalFromUser builds a principal from a stored user and organization.
func PrincipalFromUser(user *models.User, org *models.Organization) Principal {
	p := Principal{
		UserID:       user.ID,
		OrgID:        user.OrgID,
		RoleID:       user.RoleID,
		IsSuperAdmin: user.IsSuperAdmin,
		Access:       ResolveAccessLevel(user.IsSuperAdmin, user.RoleID),
	}

	if org != nil {
		p.SubscriptionStatus = org.Subscription()
		p.OrgPlan = org.Plan
		p.OrgName = org.Name
	}

	return p
}
