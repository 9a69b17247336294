package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-suite/authgate/internal/db/dbtest"
	"github.com/enterprise-suite/authgate/internal/db/models"
)

func catalogSize() int {
	n := 0

	for _, m := range Catalog() {
		for _, r := range m.Resources {
			n += len(r.Actions)
		}
	}

	return n
}

func TestCheckPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org := f.org(t, models.SubscriptionActive)
	role := f.customRole(t, org.ID, "customers.view")

	super := f.superAdmin(t)
	admin := f.user(t, &org.ID, dbtest.Ptr(OrgAdminRoleID))
	viewer := f.user(t, &org.ID, &role.ID)
	noRole := f.user(t, &org.ID, nil)
	inactive := f.user(t, &org.ID, &role.ID)
	require.NoError(t, f.users.DeactivateUser(ctx, inactive.ID))

	testCases := []struct {
		name     string
		userID   string
		module   string
		action   string
		expected bool
	}{
		{name: "super admin any permission", userID: super.ID, module: "ledger", action: "delete", expected: true},
		{name: "super admin unknown submodule", userID: super.ID, module: "reports", action: "export", expected: true},
		{name: "org admin bypass", userID: admin.ID, module: "invoices", action: "approve", expected: true},
		{name: "granted", userID: viewer.ID, module: "customers", action: "view", expected: true},
		{name: "not granted", userID: viewer.ID, module: "customers", action: "create", expected: false},
		{name: "unknown submodule", userID: viewer.ID, module: "reports", action: "export", expected: false},
		{name: "no role", userID: noRole.ID, module: "customers", action: "view", expected: false},
		{name: "unknown user", userID: "usr_missing", module: "customers", action: "view", expected: false},
		{name: "inactive user", userID: inactive.ID, module: "customers", action: "view", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.svc.CheckPermission(ctx, tc.userID, tc.module, tc.action))
		})
	}
}

func TestCheckPermissionDeniesOnStorageError(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, models.SubscriptionActive)
	user := f.user(t, &org.ID, dbtest.Ptr(OrgAdminRoleID))

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.False(t, f.svc.CheckPermission(context.Background(), user.ID, "customers", "view"))
}

func TestSystemRoleGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.org(t, models.SubscriptionActive)

	staff := f.user(t, &org.ID, dbtest.Ptr(StaffRoleID))
	manager := f.user(t, &org.ID, dbtest.Ptr(ManagerRoleID))
	viewer := f.user(t, &org.ID, dbtest.Ptr(ViewerRoleID))

	assert.True(t, f.svc.CheckPermission(ctx, staff.ID, ResourceCustomers, ActionCreate))
	assert.True(t, f.svc.CheckPermission(ctx, staff.ID, ResourceLeads, ActionView))
	assert.False(t, f.svc.CheckPermission(ctx, staff.ID, ResourceInvoices, ActionView))
	assert.False(t, f.svc.CheckPermission(ctx, staff.ID, ResourceCustomers, ActionDelete))

	assert.True(t, f.svc.CheckPermission(ctx, manager.ID, ResourceInvoices, ActionUpdate))
	assert.False(t, f.svc.CheckPermission(ctx, manager.ID, ResourceInvoices, ActionApprove))

	assert.True(t, f.svc.CheckPermission(ctx, viewer.ID, ResourceAssets, ActionView))
	assert.False(t, f.svc.CheckPermission(ctx, viewer.ID, ResourceAssets, ActionUpdate))
}

func TestAssignPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.org(t, models.SubscriptionActive)
	role := f.customRole(t, org.ID)

	names := func() []string {
		grants, err := f.svc.RolePermissions(ctx, role.ID)
		require.NoError(t, err)

		out := make([]string, 0, len(grants))
		for _, g := range grants {
			assert.True(t, g.Granted)
			out = append(out, g.SubmoduleName)
		}

		return out
	}

	require.NoError(t, f.svc.AssignPermissions(ctx, role.ID, []string{"sub_customers_view", "sub_orders_view"}))
	assert.Equal(t, []string{"customers.view", "orders.view"}, names())

	// full replace, duplicates collapse
	require.NoError(t, f.svc.AssignPermissions(ctx, role.ID, []string{"sub_leads_create", "sub_leads_create"}))
	assert.Equal(t, []string{"leads.create"}, names())

	// unknown id changes nothing
	err := f.svc.AssignPermissions(ctx, role.ID, []string{"sub_customers_view", "sub_missing"})
	require.ErrorIs(t, err, ErrSubmoduleNotFound)
	assert.Equal(t, []string{"leads.create"}, names())

	err = f.svc.AssignPermissions(ctx, "role_missing", []string{"sub_customers_view"})
	require.ErrorIs(t, err, ErrRoleNotFound)

	require.NoError(t, f.svc.AssignPermissions(ctx, role.ID, nil))
	assert.Empty(t, names())
}

func TestRolePermissionsUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RolePermissions(context.Background(), "role_missing")
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestUserPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.org(t, models.SubscriptionActive)
	role := f.customRole(t, org.ID, "orders.view", "customers.view")

	admin := f.user(t, &org.ID, dbtest.Ptr(OrgAdminRoleID))
	member := f.user(t, &org.ID, &role.ID)
	noRole := f.user(t, &org.ID, nil)

	perms, err := f.svc.UserPermissions(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, perms, catalogSize())

	perms, err = f.svc.UserPermissions(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers.view", "orders.view"}, perms)

	perms, err = f.svc.UserPermissions(ctx, noRole.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	_, err = f.svc.UserPermissions(ctx, "usr_missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orgA := f.org(t, models.SubscriptionActive)
	orgB := f.org(t, models.SubscriptionActive)

	testCases := []struct {
		name          string
		orgID         *string
		roleName      string
		expectedError error
	}{
		{name: "custom role", orgID: &orgA.ID, roleName: "accountant"},
		{name: "duplicate in same org", orgID: &orgA.ID, roleName: "accountant", expectedError: ErrRoleNameExists},
		{name: "same name other org", orgID: &orgB.ID, roleName: "accountant"},
		{name: "system role name in org scope", orgID: &orgA.ID, roleName: "manager"},
		{name: "duplicate system role", orgID: nil, roleName: "manager", expectedError: ErrRoleNameExists},
		{name: "empty name", orgID: &orgA.ID, roleName: "   ", expectedError: ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := f.svc.CreateRole(ctx, tc.orgID, tc.roleName, "desc")
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.roleName, role.Name)
			assert.Equal(t, tc.orgID == nil, role.IsSystem)
		})
	}
}

func TestListRolesAndGetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orgA := f.org(t, models.SubscriptionActive)
	orgB := f.org(t, models.SubscriptionActive)
	roleA := f.customRole(t, orgA.ID)
	roleB := f.customRole(t, orgB.ID)

	ids := func(roles []models.Role) []string {
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			out = append(out, r.ID)
		}

		return out
	}

	roles, err := f.svc.ListRoles(ctx, &orgA.ID)
	require.NoError(t, err)
	assert.Len(t, roles, len(systemRoles())+1)
	assert.Contains(t, ids(roles), roleA.ID)
	assert.NotContains(t, ids(roles), roleB.ID)
	assert.True(t, roles[0].IsSystem, "system roles first")

	all, err := f.svc.ListRoles(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(systemRoles())+2)

	_, err = f.svc.GetRole(ctx, &orgA.ID, roleB.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)

	got, err := f.svc.GetRole(ctx, &orgA.ID, OrgAdminRoleID)
	require.NoError(t, err)
	assert.True(t, got.IsSystem)

	_, err = f.svc.GetRole(ctx, nil, roleB.ID)
	require.NoError(t, err)
}

func TestAssignRoleToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orgA := f.org(t, models.SubscriptionActive)
	orgB := f.org(t, models.SubscriptionActive)
	roleA := f.customRole(t, orgA.ID, "customers.view")
	roleB := f.customRole(t, orgB.ID)
	userA := f.user(t, &orgA.ID, nil)
	userB := f.user(t, &orgB.ID, nil)

	testCases := []struct {
		name          string
		scope         *string
		userID        string
		roleID        string
		expectedError error
	}{
		{name: "custom role same org", scope: &orgA.ID, userID: userA.ID, roleID: roleA.ID},
		{name: "system role", scope: &orgA.ID, userID: userA.ID, roleID: ViewerRoleID},
		{name: "role of other org", scope: &orgA.ID, userID: userA.ID, roleID: roleB.ID, expectedError: ErrRoleNotFound},
		{name: "user of other org", scope: &orgA.ID, userID: userB.ID, roleID: ViewerRoleID, expectedError: ErrUserNotFound},
		{name: "super admin any org", scope: nil, userID: userB.ID, roleID: roleB.ID},
		{name: "super admin cross org role", scope: nil, userID: userB.ID, roleID: roleA.ID, expectedError: ErrRoleNotFound},
		{name: "unknown role", scope: &orgA.ID, userID: userA.ID, roleID: "role_missing", expectedError: ErrRoleNotFound},
		{name: "unknown user", scope: &orgA.ID, userID: "usr_missing", roleID: ViewerRoleID, expectedError: ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.AssignRoleToUser(ctx, tc.scope, tc.userID, tc.roleID)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)

			user, err := f.users.GetUserByID(ctx, tc.userID)
			require.NoError(t, err)
			require.NotNil(t, user.RoleID)
			assert.Equal(t, tc.roleID, *user.RoleID)
		})
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var modules, submodules, roles int64

	count := func() {
		require.NoError(t, f.db.Model(&models.Module{}).Count(&modules).Error)
		require.NoError(t, f.db.Model(&models.Submodule{}).Count(&submodules).Error)
		require.NoError(t, f.db.Model(&models.Role{}).Count(&roles).Error)
	}

	count()
	assert.EqualValues(t, len(Catalog()), modules)
	assert.EqualValues(t, catalogSize(), submodules)
	assert.EqualValues(t, len(systemRoles()), roles)

	// edited system role grants survive a second bootstrap
	require.NoError(t, f.svc.AssignPermissions(ctx, ViewerRoleID, []string{SubmoduleID(ResourceOrders, ActionView)}))
	require.NoError(t, f.svc.Bootstrap(ctx))

	count()
	assert.EqualValues(t, len(Catalog()), modules)
	assert.EqualValues(t, catalogSize(), submodules)
	assert.EqualValues(t, len(systemRoles()), roles)

	grants, err := f.svc.RolePermissions(ctx, ViewerRoleID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "orders.view", grants[0].SubmoduleName)
}

func TestListModules(t *testing.T) {
	f := newFixture(t)

	modules, err := f.svc.ListModules(context.Background())
	require.NoError(t, err)
	require.Len(t, modules, len(Catalog()))

	var finance *models.Module

	for i := range modules {
		if modules[i].Name == ModuleFinance {
			finance = &modules[i]
		}
	}

	require.NotNil(t, finance)

	names := make([]string, 0, len(finance.Submodules))
	for _, s := range finance.Submodules {
		assert.Equal(t, models.SubmoduleName(s.Resource, s.Action), s.Name)
		assert.Equal(t, SubmoduleID(s.Resource, s.Action), s.ID)
		names = append(names, s.Name)
	}

	assert.Contains(t, names, "invoices.approve")
	assert.NotContains(t, names, "ledger.approve")
}

func TestSubmoduleID(t *testing.T) {
	assert.Equal(t, "sub_customers_view", SubmoduleID(ResourceCustomers, ActionView))
	assert.Equal(t, "sub_invoices_approve", SubmoduleID(ResourceInvoices, ActionApprove))
}
