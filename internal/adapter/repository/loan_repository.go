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

type loanRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB, logger *zap.Logger) repository.LoanRepository {
	return &loanRepository{
		db:     db,
		logger: logger,
	}
}

func (r *loanRepository) Create(ctx context.Context, loan *model.Loan) error {
	if err := dbFromContext(ctx, r.db).Create(loan).Error; err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*model.Loan, error) {
	var loan model.Loan

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&loan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return &loan, nil
}

func (r *loanRepository) GetOpenByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (*model.Loan, error) {
	var loan model.Loan

	err := dbFromContext(ctx, r.db).
		Where("cooperative_id = ? AND user_id = ? AND status IN ?",
			cooperativeID, userID,
			[]model.LoanStatus{model.LoanStatusPending, model.LoanStatusApproved}).
		First(&loan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open loan: %w", err)
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *model.Loan) error {
	if err := dbFromContext(ctx, r.db).Save(loan).Error; err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return nil
}

func (r *loanRepository) ListByCooperative(ctx context.Context, cooperativeID int64) ([]model.Loan, error) {
	var loans []model.Loan

	err := dbFromContext(ctx, r.db).
		Where("cooperative_id = ?", cooperativeID).
		Order("created_at DESC").
		Find(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	return loans, nil
}
