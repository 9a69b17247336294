package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler/handlertest"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := handlertest.Config()
	cfg.DB = config.DB{
		Engine:   config.EngineSQLite,
		Name:     filepath.Join(t.TempDir(), "authgate.db"),
		LogLevel: "silent",
	}
	cfg.Bootstrap.SuperAdminEmail = "root@authgate.test"

	return cfg
}

func TestSeedSuperAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	conn, err := Prepare(ctx, cfg)
	require.NoError(t, err)

	// Prepare already seeded, a second run finds the user
	res, err := SeedSuperAdmin(ctx, cfg, conn)
	require.NoError(t, err)
	assert.False(t, res.Created)

	var users []models.User
	require.NoError(t, conn.Where("email = ?", cfg.Bootstrap.SuperAdminEmail).Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsSuperAdmin)
	assert.Nil(t, users[0].OrgID)

	var roles int64
	require.NoError(t, conn.Model(&models.Role{}).Where("id = ?", auth.OrgAdminRoleID).Count(&roles).Error)
	assert.Equal(t, int64(1), roles)
}

func TestSeedGeneratesPassword(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	cfg.Bootstrap.SuperAdminEmail = ""

	conn, err := Prepare(ctx, cfg)
	require.NoError(t, err)

	res, err := SeedSuperAdmin(ctx, cfg, conn)
	require.NoError(t, err)
	assert.False(t, res.Created, "nothing configured")

	cfg.Bootstrap.SuperAdminEmail = "ops@authgate.test"

	res, err = SeedSuperAdmin(ctx, cfg, conn)
	require.NoError(t, err)
	require.True(t, res.Created)
	require.NotEmpty(t, res.Password)

	user, err := auth.NewLocalProvider(conn).Authenticate(ctx, res.Email, res.Password)
	require.NoError(t, err)
	assert.True(t, user.IsSuperAdmin)

	cfg.Bootstrap.SuperAdminEmail = "fixed@authgate.test"
	cfg.Bootstrap.SuperAdminPassword = "a-configured-password"

	res, err = SeedSuperAdmin(ctx, cfg, conn)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Empty(t, res.Password, "configured passwords are not echoed")
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.ErrorIs(t, err, config.ErrConfigNil)

	d, err := New(context.Background(), sqliteConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, d.webService)
}
