// Package db owns the local sqlite snapshot: the synced catalog vocabulary,
// the questionnaire and every customer's saved closing plans.
package db

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the snapshot database. WAL mode keeps a running catalog
// sync from blocking concurrent plan reads and edits.
func Initialize(dbPath string, environment string) error {
	var err error

	// Development traces every query; production only logs slow ones and errors
	logLevel := logger.Info
	if environment == "production" {
		logLevel = logger.Warn
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}

	log.Printf("Snapshot database ready at %s (WAL mode)", dbPath)
	return nil
}

// AutoMigrate runs schema migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.AutoMigrate(models...)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Schema migrations completed")
	return nil
}

// Close closes the underlying sqlite handle
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
