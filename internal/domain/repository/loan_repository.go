package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	GetByID(ctx context.Context, id int64) (*model.Loan, error)

	// GetOpenByUser returns a user's pending or approved (not yet repaid)
	// loan within a cooperative, or nil.
	GetOpenByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (*model.Loan, error)

	Update(ctx context.Context, loan *model.Loan) error
	ListByCooperative(ctx context.Context, cooperativeID int64) ([]model.Loan, error)
}
