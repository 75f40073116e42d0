// Package testdb opens throwaway SQLite databases with the production schema.
package testdb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated database file under t.TempDir. Transactions start with BEGIN
// IMMEDIATE so concurrent writers queue on the busy timeout instead of failing.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storefront.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", path)

	cfg := configs.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	if err := migrations.AutoMigrate(db); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
