package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/db/dbtest"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler/admin/role"
	"github.com/enterprise-suite/authgate/internal/web/handler/handlertest"
	"github.com/enterprise-suite/authgate/internal/web/handler/login"
)

const customersPath = "/enterprise/customers"

func newService(t *testing.T) *Service {
	t.Helper()

	svc, err := New(handlertest.Config(), dbtest.Open(t))
	require.NoError(t, err)
	require.NoError(t, svc.Env.RBAC.Bootstrap(context.Background()))

	// a business route of the kind the gate protects
	svc.App.Get(customersPath, append(svc.Env.Guards.ReadWith(auth.ResourceCustomers, auth.ActionView), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"customers": []string{}})
	})...)

	return svc
}

func TestNew(t *testing.T) {
	_, err := New(nil, dbtest.Open(t))
	require.Error(t, err)

	_, err = New(handlertest.Config(), nil)
	require.Error(t, err)
}

func TestCheckAliveAndMetrics(t *testing.T) {
	svc := newService(t)

	get := func(path string) (int, string) {
		resp, err := svc.App.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)

		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		return resp.StatusCode, string(body)
	}

	status, body := get(CheckAlivePath)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	// deny one request so the decision counter has a sample
	status, _ = get(customersPath)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = get(MetricsPath)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "authgate_guard_decisions_total")

	svc.alive.Store(false)

	status, _ = get(CheckAlivePath)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestLoginDoesNotRevealEmails(t *testing.T) {
	svc := newService(t)
	org := handlertest.Org(t, svc.Env, models.SubscriptionActive)
	user := handlertest.User(t, svc.Env, &org.ID, dbtest.Ptr(auth.StaffRoleID))

	wrong := handlertest.Do(t, svc.App, http.MethodPost, login.Path, "", map[string]string{"email": user.Email, "password": "wrong"})
	unknown := handlertest.Do(t, svc.App, http.MethodPost, login.Path, "", map[string]string{"email": "nobody@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Status)
	assert.Equal(t, http.StatusUnauthorized, unknown.Status)
	assert.Equal(t, wrong.JSON, unknown.JSON)
	assert.Equal(t, "INVALID_CREDENTIALS", wrong.JSON["error"])
}

func TestOrgAdminReplacesRolePermissions(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	org := handlertest.Org(t, svc.Env, models.SubscriptionActive)
	admin := handlertest.Token(t, svc.Env, handlertest.User(t, svc.Env, &org.ID, dbtest.Ptr(auth.OrgAdminRoleID)))

	clerk, err := svc.Env.RBAC.CreateRole(ctx, &org.ID, "clerk", "")
	require.NoError(t, err)
	require.NoError(t, svc.Env.RBAC.AssignPermissions(ctx, clerk.ID, []string{auth.SubmoduleID(auth.ResourceInvoices, auth.ActionView)}))

	path := role.Path + "/" + clerk.ID + "/permissions"

	resp := handlertest.Do(t, svc.App, http.MethodPost, path, admin, map[string][]string{"submodule_ids": {"sub_customers_view"}})
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

	var out struct {
		Permissions []auth.Grant `json:"permissions"`
	}

	resp = handlertest.Do(t, svc.App, http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	resp.Decode(t, &out)

	require.Len(t, out.Permissions, 1)
	assert.Equal(t, "sub_customers_view", out.Permissions[0].SubmoduleID)
	assert.Equal(t, "customers.view", out.Permissions[0].SubmoduleName)
	assert.True(t, out.Permissions[0].Granted)
}

func TestExpiredSubscriptionBlocksWrites(t *testing.T) {
	svc := newService(t)
	org := handlertest.Org(t, svc.Env, models.SubscriptionExpired)
	admin := handlertest.Token(t, svc.Env, handlertest.User(t, svc.Env, &org.ID, dbtest.Ptr(auth.OrgAdminRoleID)))

	resp := handlertest.Do(t, svc.App, http.MethodPost, role.RouteCreate, admin, map[string]string{"name": "clerk"})
	require.Equal(t, http.StatusPaymentRequired, resp.Status, string(resp.Body))
	assert.Equal(t, "UPGRADE_REQUIRED", resp.JSON["error"])
	assert.Equal(t, "expired", resp.JSON["subscription_status"])

	// reads stay open
	resp = handlertest.Do(t, svc.App, http.MethodGet, role.Path, admin, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestPermissionNeedsGrantOrAdminMarker(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	org := handlertest.Org(t, svc.Env, models.SubscriptionActive)

	lookalike, err := svc.Env.RBAC.CreateRole(ctx, &org.ID, auth.OrgAdminRoleID, "named like the admin role")
	require.NoError(t, err)

	admin := handlertest.Token(t, svc.Env, handlertest.User(t, svc.Env, &org.ID, dbtest.Ptr(auth.OrgAdminRoleID)))
	impostor := handlertest.User(t, svc.Env, &org.ID, &lookalike.ID)
	impostorToken := handlertest.Token(t, svc.Env, impostor)

	resp := handlertest.Do(t, svc.App, http.MethodGet, customersPath, admin, nil)
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = handlertest.Do(t, svc.App, http.MethodGet, customersPath, impostorToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "PERMISSION_DENIED", resp.JSON["error"])

	// the legacy "admin" role id is an ordinary role
	legacy := models.Role{ID: "admin", Name: "admin", OrgID: &org.ID}
	require.NoError(t, svc.Env.DB.Create(&legacy).Error)

	resp = handlertest.Do(t, svc.App, http.MethodGet, customersPath, handlertest.Token(t, svc.Env, handlertest.User(t, svc.Env, &org.ID, &legacy.ID)), nil)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	customersView := auth.SubmoduleID(auth.ResourceCustomers, auth.ActionView)
	require.NoError(t, svc.Env.RBAC.AssignPermissions(ctx, lookalike.ID, []string{customersView}))

	resp = handlertest.Do(t, svc.App, http.MethodGet, customersPath, impostorToken, nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestSharedLimiterStorage(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := handlertest.Config()
	cfg.Webserver.LoginRateLimit = 1
	cfg.Webserver.LimiterRedis = "redis://" + mr.Addr()

	svc, err := New(cfg, dbtest.Open(t))
	require.NoError(t, err)
	require.NotNil(t, svc.Env.LimiterStorage)

	body := map[string]string{"email": "nobody@example.com", "password": "wrong"}

	resp := handlertest.Do(t, svc.App, http.MethodPost, login.Path, "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = handlertest.Do(t, svc.App, http.MethodPost, login.Path, "", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	assert.NotEmpty(t, mr.Keys())

	cfg.Webserver.LimiterRedis = "bogus://"
	_, err = New(cfg, dbtest.Open(t))
	require.Error(t, err)
}
