// Package sqlite opens GORM SQLite connections only.
// Table models and CRUD belong to the plugin that uses this DB.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a SQLite DB at dbPath with GORM, creating the parent dir if needed.
// GORM's own logger is silenced; callers log their own failures.
// Caller is responsible for AutoMigrate and all CRUD.
func Open(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", dbPath, err)
	}
	return db, nil
}
