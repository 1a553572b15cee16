package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"KasirApp/app/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDB returns the sales database instance.
func GetDB() *gorm.DB {
	return db
}

// buildDSN constructs the database connection string from environment
// variables. Priority: DATABASE_URL > individual variables > defaults.
func buildDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		log.Printf("Using DATABASE_URL for database connection")
		return dsn
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "5432"
	}
	if user == "" {
		user = "postgres"
	}
	if password == "" {
		password = "postgres"
	}
	if dbname == "" {
		dbname = "kasirapp"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// Initialize opens the Postgres sales database and migrates the schema.
func Initialize() error {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if os.Getenv("DB_DEBUG") == "true" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	conn, err := gorm.Open(postgres.Open(buildDSN()), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db = conn
	return Migrate(conn)
}

// Migrate runs auto-migration for the sales schema.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.Toko{},
		&models.User{},
		&models.Pembeli{},
		&models.Penjualan{},
		&models.PenjualanDetail{},
		&models.SheetsConfig{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the sales database connection.
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
