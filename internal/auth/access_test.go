package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enterprise-suite/authgate/internal/db/dbtest"
)

func TestResolveAccessLevel(t *testing.T) {
	testCases := []struct {
		name         string
		isSuperAdmin bool
		roleID       *string
		kind         AccessKind
		orgAdmin     bool
		str          string
	}{
		{name: "super admin", isSuperAdmin: true, kind: AccessSuperAdmin, orgAdmin: true, str: "super_admin"},
		{name: "super admin with role", isSuperAdmin: true, roleID: dbtest.Ptr(StaffRoleID), kind: AccessSuperAdmin, orgAdmin: true, str: "super_admin"},
		{name: "org admin", roleID: dbtest.Ptr(OrgAdminRoleID), kind: AccessOrgAdmin, orgAdmin: true, str: "org_admin"},
		{name: "plain admin name is not the marker", roleID: dbtest.Ptr("admin"), kind: AccessRole, str: "role:admin"},
		{name: "role", roleID: dbtest.Ptr(StaffRoleID), kind: AccessRole, str: "role:role_staff"},
		{name: "no role", kind: AccessRole, str: "no_role"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := ResolveAccessLevel(tc.isSuperAdmin, tc.roleID)
			assert.Equal(t, tc.kind, a.Kind)
			assert.Equal(t, tc.orgAdmin, a.CanAdministerOrg())
			assert.Equal(t, tc.str, a.String())
		})
	}
}

func TestPrincipalOrgScope(t *testing.T) {
	super := Principal{IsSuperAdmin: true, OrgID: dbtest.Ptr("org_a")}
	assert.Nil(t, super.OrgScope())

	member := Principal{OrgID: dbtest.Ptr("org_a")}
	assert.Equal(t, "org_a", *member.OrgScope())
}

func TestErrorPayload(t *testing.T) {
	assert.ErrorIs(t, UpgradeRequired("trial"), ErrUpgradeRequired)
	assert.NotErrorIs(t, ErrAccountInactive, ErrInvalidCredentials)
	assert.ErrorIs(t, InvalidInput("bad"), ErrInvalidInput)

	// inactive accounts look like bad credentials to the client
	assert.Equal(t, ErrInvalidCredentials.Payload(), ErrAccountInactive.Payload())
	assert.Equal(t, http.StatusUnauthorized, ErrAccountInactive.Status)

	_, hasStatus := ErrPermissionDenied.Payload()["subscription_status"]
	assert.False(t, hasStatus)
}
