package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/db/controller/organization"
	"github.com/enterprise-suite/authgate/internal/db/dbtest"
	"github.com/enterprise-suite/authgate/internal/db/models"
)

const testPassword = "correct horse battery staple"

// fixture is a bootstrapped database with the auth services on top.
type fixture struct {
	db      *gorm.DB
	svc     *Service
	users   *LocalProvider
	tokens  *TokenService
	tenants *TenantResolver
}

func testAuthConfig() config.Auth {
	return config.Auth{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		Issuer:        "authgate-test",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	svc := NewService(db)
	require.NoError(t, svc.Bootstrap(context.Background()))

	return &fixture{
		db:      db,
		svc:     svc,
		users:   NewLocalProvider(db),
		tokens:  NewTokenService(db, testAuthConfig()),
		tenants: NewTenantResolver(db),
	}
}

func (f *fixture) org(t *testing.T, status models.SubscriptionStatus) *models.Organization {
	t.Helper()

	org, err := organization.Create(f.db, "Org "+uuid.NewString()[:8], "growth", status)
	require.NoError(t, err)

	return org
}

func (f *fixture) user(t *testing.T, orgID, roleID *string) *models.User {
	t.Helper()

	user, err := f.users.CreateUser(context.Background(), NewUser{
		Email:    uuid.NewString() + "@example.com",
		Password: testPassword,
		FullName: "Test User",
		OrgID:    orgID,
		RoleID:   roleID,
	})
	require.NoError(t, err)

	return user
}

func (f *fixture) superAdmin(t *testing.T) *models.User {
	t.Helper()

	user, err := f.users.CreateUser(context.Background(), NewUser{
		Email:        uuid.NewString() + "@platform.example.com",
		Password:     testPassword,
		IsSuperAdmin: true,
	})
	require.NoError(t, err)

	return user
}

// customRole creates a role in orgID granted the given "<resource>.<action>" names.
func (f *fixture) customRole(t *testing.T, orgID string, grants ...string) *models.Role {
	t.Helper()

	ctx := context.Background()

	role, err := f.svc.CreateRole(ctx, &orgID, "role "+uuid.NewString()[:8], "")
	require.NoError(t, err)

	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, "sub_"+strings.ReplaceAll(g, ".", "_"))
	}

	require.NoError(t, f.svc.AssignPermissions(ctx, role.ID, ids))

	return role
}

func (f *fixture) accessToken(t *testing.T, user *models.User) string {
	t.Helper()

	var org *models.Organization

	if user.OrgID != nil {
		var err error

		org, err = organization.Get(f.db, *user.OrgID)
		require.NoError(t, err)
	}

	pair, err := f.tokens.IssueTokens(context.Background(), user, org)
	require.NoError(t, err)

	return pair.AccessToken
}
