package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := dbFromContext(ctx, r.db).Create(payment).Error; err != nil {
		r.logger.Error("failed to create payment",
			zap.String("transaction_reference", payment.TransactionReference),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByTransactionReference(ctx context.Context, reference string) (*model.Payment, error) {
	var payment model.Payment

	err := dbFromContext(ctx, r.db).
		Where("transaction_reference = ?", reference).
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	if err := dbFromContext(ctx, r.db).Save(payment).Error; err != nil {
		r.logger.Error("failed to update payment",
			zap.String("transaction_reference", payment.TransactionReference),
			zap.Error(err))
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Payment, error) {
	var payments []model.Payment

	err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
