package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// ledgerRepository implements the LedgerRepository interface
type ledgerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB, logger *zap.Logger) repository.LedgerRepository {
	return &ledgerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	err := dbFromContext(ctx, r.db).Create(entry).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(apperrors.ErrConflict,
				fmt.Sprintf("ledger entry with reference %s already exists", entry.Reference), err)
		}
		r.logger.Error("failed to create ledger entry",
			zap.String("reference", entry.Reference),
			zap.Error(err))
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetByReferenceOrMerchantRef(ctx context.Context, reference, merchantRef string) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry

	query := dbFromContext(ctx, r.db).Where("reference = ?", reference)
	if merchantRef != "" {
		query = dbFromContext(ctx, r.db).
			Where("reference = ? OR merchant_ref = ?", reference, merchantRef)
	}

	err := query.First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Error("failed to look up ledger entry",
			zap.String("reference", reference),
			zap.String("merchant_ref", merchantRef),
			zap.Error(err))
		return nil, fmt.Errorf("failed to look up ledger entry: %w", err)
	}

	return &entry, nil
}

func (r *ledgerRepository) GetDebitByReference(ctx context.Context, reference string) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry

	err := dbFromContext(ctx, r.db).
		Where("reference = ? AND direction = ?", reference, model.LedgerDirectionDebit).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up debit entry: %w", err)
	}

	return &entry, nil
}

func (r *ledgerRepository) Update(ctx context.Context, entry *model.LedgerEntry) error {
	if err := dbFromContext(ctx, r.db).Save(entry).Error; err != nil {
		r.logger.Error("failed to update ledger entry",
			zap.String("reference", entry.Reference),
			zap.Error(err))
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry

	err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, nil
}

func (r *ledgerRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64

	err := dbFromContext(ctx, r.db).
		Model(&model.LedgerEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

func (r *ledgerRepository) SumSuccessfulCredits(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal

	err := dbFromContext(ctx, r.db).
		Model(&model.LedgerEntry{}).
		Select("SUM(amount)").
		Where("user_id = ? AND direction = ? AND status = ?",
			userID, model.LedgerDirectionCredit, model.LedgerStatusSuccess).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum credits: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}

	return total.Decimal, nil
}

// isUniqueViolation matches the postgres duplicate-key error (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
