// Package handlertest builds fiber apps with a bootstrapped in-memory
// database for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/db/controller/organization"
	"github.com/enterprise-suite/authgate/internal/db/dbtest"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler"
)

// Password is the password of every user created by the helpers.
const Password = "correct horse battery staple"

// Config returns a valid configuration for tests.
func Config() *config.Config {
	return &config.Config{
		Auth: config.Auth{
			AccessSecret:  "access-secret-for-tests",
			RefreshSecret: "refresh-secret-for-tests",
			Issuer:        "authgate-test",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost"},
	}
}

// New returns an app using handler.ErrorHandler and an env on a fresh,
// bootstrapped database. Register the handler under test on the app.
func New(t *testing.T) (*fiber.App, *handler.Env) {
	t.Helper()

	env := handler.NewEnv(Config(), dbtest.Open(t))
	require.NoError(t, env.RBAC.Bootstrap(context.Background()))

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})

	return app, env
}

// Org creates an active organization with status.
func Org(t *testing.T, env *handler.Env, status models.SubscriptionStatus) *models.Organization {
	t.Helper()

	org, err := organization.Create(env.DB, "Org "+uuid.NewString()[:8], "growth", status)
	require.NoError(t, err)

	return org
}

// User creates an active member of orgID with roleID, both may be nil.
func User(t *testing.T, env *handler.Env, orgID, roleID *string) *models.User {
	t.Helper()

	user, err := env.Users.CreateUser(context.Background(), auth.NewUser{
		Email:    uuid.NewString() + "@example.com",
		Password: Password,
		OrgID:    orgID,
		RoleID:   roleID,
	})
	require.NoError(t, err)

	return user
}

// SuperAdmin creates a platform super admin.
func SuperAdmin(t *testing.T, env *handler.Env) *models.User {
	t.Helper()

	user, err := env.Users.CreateUser(context.Background(), auth.NewUser{
		Email:        uuid.NewString() + "@platform.example.com",
		Password:     Password,
		IsSuperAdmin: true,
	})
	require.NoError(t, err)

	return user
}

// Token issues an access token for user.
func Token(t *testing.T, env *handler.Env, user *models.User) string {
	t.Helper()

	var org *models.Organization

	if user.OrgID != nil {
		var err error

		org, err = organization.Get(env.DB, *user.OrgID)
		require.NoError(t, err)
	}

	pair, err := env.Tokens.IssueTokens(context.Background(), user, org)
	require.NoError(t, err)

	return pair.AccessToken
}

// Response is a decoded test response.
type Response struct {
	Status int
	Body   []byte
	JSON   map[string]interface{}
}

// Do sends a request with an optional JSON body and bearer token.
func Do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := Response{Status: resp.StatusCode, Body: raw}
	_ = json.Unmarshal(raw, &out.JSON)

	return out
}

// Decode unmarshals the response body into v.
func (r Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}
