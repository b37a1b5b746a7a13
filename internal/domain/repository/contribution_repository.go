package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

type ContributionRepository interface {
	CreatePlan(ctx context.Context, plan *model.ContributionPlan) error
	GetPlan(ctx context.Context, id int64) (*model.ContributionPlan, error)
	ListPlans(ctx context.Context, cooperativeID int64) ([]model.ContributionPlan, error)

	// CreateIgnoreDuplicates inserts contributions, silently skipping rows
	// whose (membership, period) pair already exists. Returns the number
	// of rows actually inserted.
	CreateIgnoreDuplicates(ctx context.Context, contributions []model.Contribution) (int64, error)

	GetByID(ctx context.Context, id int64) (*model.Contribution, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (*model.Contribution, error)
	Update(ctx context.Context, contribution *model.Contribution) error
	ListByMembership(ctx context.Context, membershipID int64) ([]model.Contribution, error)

	// CountPaidByUser counts a member's paid contributions within a
	// cooperative, for loan eligibility.
	CountPaidByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (int64, error)

	// SumPaidByUser totals a member's paid contributions within a
	// cooperative, for loan limits.
	SumPaidByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (decimal.Decimal, error)
}
