package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

type contributionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *gorm.DB, logger *zap.Logger) repository.ContributionRepository {
	return &contributionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *contributionRepository) CreatePlan(ctx context.Context, plan *model.ContributionPlan) error {
	if err := dbFromContext(ctx, r.db).Create(plan).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("plan %q already exists in cooperative: %w", plan.Name, err)
		}
		return fmt.Errorf("failed to create contribution plan: %w", err)
	}
	return nil
}

func (r *contributionRepository) GetPlan(ctx context.Context, id int64) (*model.ContributionPlan, error) {
	var plan model.ContributionPlan

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contribution plan: %w", err)
	}

	return &plan, nil
}

func (r *contributionRepository) ListPlans(ctx context.Context, cooperativeID int64) ([]model.ContributionPlan, error) {
	var plans []model.ContributionPlan

	err := dbFromContext(ctx, r.db).
		Where("cooperative_id = ?", cooperativeID).
		Order("monthly_amount ASC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contribution plans: %w", err)
	}

	return plans, nil
}

// CreateIgnoreDuplicates relies on the unique (membership_id, period)
// index so that rerunning monthly generation inserts nothing new.
func (r *contributionRepository) CreateIgnoreDuplicates(ctx context.Context, contributions []model.Contribution) (int64, error) {
	if len(contributions) == 0 {
		return 0, nil
	}

	result := dbFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&contributions)
	if result.Error != nil {
		r.logger.Error("failed to create contributions", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to create contributions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *contributionRepository) GetByID(ctx context.Context, id int64) (*model.Contribution, error) {
	var contribution model.Contribution

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&contribution).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}

	return &contribution, nil
}

func (r *contributionRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*model.Contribution, error) {
	var contribution model.Contribution

	err := dbFromContext(ctx, r.db).Where("payment_ref = ?", paymentRef).First(&contribution).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contribution by payment ref: %w", err)
	}

	return &contribution, nil
}

func (r *contributionRepository) Update(ctx context.Context, contribution *model.Contribution) error {
	if err := dbFromContext(ctx, r.db).Save(contribution).Error; err != nil {
		return fmt.Errorf("failed to update contribution: %w", err)
	}
	return nil
}

func (r *contributionRepository) ListByMembership(ctx context.Context, membershipID int64) ([]model.Contribution, error) {
	var contributions []model.Contribution

	err := dbFromContext(ctx, r.db).
		Where("membership_id = ?", membershipID).
		Order("period DESC").
		Find(&contributions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}

	return contributions, nil
}

func (r *contributionRepository) CountPaidByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (int64, error) {
	var count int64

	err := dbFromContext(ctx, r.db).
		Model(&model.Contribution{}).
		Joins("JOIN memberships ON memberships.id = contributions.membership_id").
		Where("memberships.cooperative_id = ? AND memberships.user_id = ? AND contributions.status = ?",
			cooperativeID, userID, model.ContributionStatusPaid).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count paid contributions: %w", err)
	}

	return count, nil
}

func (r *contributionRepository) SumPaidByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := dbFromContext(ctx, r.db).
		Model(&model.Contribution{}).
		Select("SUM(contributions.amount)").
		Joins("JOIN memberships ON memberships.id = contributions.membership_id").
		Where("memberships.cooperative_id = ? AND memberships.user_id = ? AND contributions.status = ?",
			cooperativeID, userID, model.ContributionStatusPaid).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid contributions: %w", err)
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
