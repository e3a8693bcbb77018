// Package repotest provides an in-memory SQLite database for tests that need
// the real repositories.
package repotest

import (
	"testing"

	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh migrated in-memory database that is closed when t ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gormCfg := config.GormConfig()
	gormCfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), gormCfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
