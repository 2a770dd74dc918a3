// Package testutil opens throwaway databases with the production schema.
package testutil

import (
	"path/filepath"
	"testing"

	"orderdesk/internal/infra/db"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewSQLite returns a migrated sqlite-backed *gorm.DB living in t.TempDir().
func NewSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders.db")
	gdb, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), db.GormConfig(zap.NewNop()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
