package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"KasirApp/app/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LocalDB manages the local SQLite database holding per-installation state
// (user preferences) that must survive without the sales database.
type LocalDB struct {
	db     *gorm.DB
	dbPath string
}

var localDB *LocalDB

// InitializeLocalDB opens (or creates) the local SQLite database.
func InitializeLocalDB(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// CGO-free SQLite driver
	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to local database: %w", err)
	}

	if err := conn.AutoMigrate(&models.Preference{}); err != nil {
		return fmt.Errorf("failed to migrate local database: %w", err)
	}

	localDB = &LocalDB{db: conn, dbPath: dbPath}
	return nil
}

// GetLocalDB returns the local database instance, or nil before
// InitializeLocalDB has run.
func GetLocalDB() *gorm.DB {
	if localDB == nil {
		return nil
	}
	return localDB.db
}

// OpenLocalDB opens a standalone local database at the given path without
// touching the package singleton. Used by tests.
func OpenLocalDB(dbPath string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	if err := conn.AutoMigrate(&models.Preference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local database: %w", err)
	}
	return conn, nil
}
