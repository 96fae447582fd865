package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/models"
)

// Open connects to PostgreSQL when a DSN is configured and falls back to the local SQLite file.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	if dsn != "" {
		return ConnectPostgres(dsn)
	}
	return ConnectSQLite(sqlitePath)
}

// Migrate creates or updates every table of the service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
