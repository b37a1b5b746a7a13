package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	// Custom types must exist before auto-migrate references them
	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.User{},
		&model.Wallet{},
		&model.Cooperative{},
		&model.Membership{},
		&model.ContributionPlan{},
		&model.Contribution{},
		&model.Loan{},
		&model.LedgerEntry{},
		&model.Payment{},
		&model.Shop{},
		&model.Product{},
		&model.Order{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return err
	}
	return nil
}

// createCustomTypes creates custom PostgreSQL types
func createCustomTypes(db *gorm.DB) error {
	var exists bool

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'ledger_direction')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE ledger_direction AS ENUM ('CREDIT', 'DEBIT')`).Error; err != nil {
			return err
		}
	}

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'ledger_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE ledger_status AS ENUM ('PENDING', 'SUCCESS', 'FAILED')`).Error; err != nil {
			return err
		}
	}

	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Partial index for reconciliation lookups on open entries
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_ledger_entries_pending ON ledger_entries (created_at) WHERE status = 'PENDING'`).Error; err != nil {
		return err
	}

	// Merchant refs are optional; index only the rows that carry one
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_ledger_entries_merchant_ref_present ON ledger_entries (merchant_ref) WHERE merchant_ref IS NOT NULL`).Error; err != nil {
		return err
	}

	return nil
}
