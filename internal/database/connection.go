package database

import (
	"fmt"
	"log/slog"

	"moving_ops/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string, l *slog.Logger) (*gorm.DB, error) {
	// Configure GORM
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(databaseURL), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	l.Info("database connected and migrated")
	return db, nil
}

// AutoMigrate creates or updates every table the API uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Service{},
		&models.Employment{},
		&models.Order{},
		&models.OrderService{},
		&models.Offer{},
		&models.Transaction{},
	)
}
