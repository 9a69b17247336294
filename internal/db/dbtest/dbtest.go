// Package dbtest provides an isolated, migrated in-memory database for tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/enterprise-suite/authgate/internal/db/models"
)

// Open returns a fresh sqlite database with every table migrated.
// Each call gets its own named shared-cache memory database, so pooled
// connections of one test see the same data and tests never share state.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(models.All()...)
	require.NoError(t, err, "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, errDB := db.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Ptr returns a pointer to s, handy for the nullable id columns.
func Ptr(s string) *string {
	return &s
}
