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

type cooperativeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCooperativeRepository creates a new cooperative repository
func NewCooperativeRepository(db *gorm.DB, logger *zap.Logger) repository.CooperativeRepository {
	return &cooperativeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *cooperativeRepository) Create(ctx context.Context, coop *model.Cooperative) error {
	if err := dbFromContext(ctx, r.db).Create(coop).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cooperative %q already exists: %w", coop.Name, err)
		}
		return fmt.Errorf("failed to create cooperative: %w", err)
	}
	return nil
}

func (r *cooperativeRepository) GetByID(ctx context.Context, id int64) (*model.Cooperative, error) {
	var coop model.Cooperative

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&coop).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cooperative: %w", err)
	}

	return &coop, nil
}

func (r *cooperativeRepository) List(ctx context.Context, limit, offset int) ([]model.Cooperative, error) {
	var coops []model.Cooperative

	err := dbFromContext(ctx, r.db).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&coops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cooperatives: %w", err)
	}

	return coops, nil
}

func (r *cooperativeRepository) CreateMembership(ctx context.Context, membership *model.Membership) error {
	if err := dbFromContext(ctx, r.db).Create(membership).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership already exists: %w", err)
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *cooperativeRepository) GetMembership(ctx context.Context, cooperativeID int64, userID uuid.UUID) (*model.Membership, error) {
	var membership model.Membership

	err := dbFromContext(ctx, r.db).
		Where("cooperative_id = ? AND user_id = ?", cooperativeID, userID).
		First(&membership).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &membership, nil
}

func (r *cooperativeRepository) GetMembershipByID(ctx context.Context, id int64) (*model.Membership, error) {
	var membership model.Membership

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&membership).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &membership, nil
}

func (r *cooperativeRepository) UpdateMembership(ctx context.Context, membership *model.Membership) error {
	if err := dbFromContext(ctx, r.db).Save(membership).Error; err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

func (r *cooperativeRepository) ListMemberships(ctx context.Context, cooperativeID int64) ([]model.Membership, error) {
	var memberships []model.Membership

	err := dbFromContext(ctx, r.db).
		Where("cooperative_id = ?", cooperativeID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	return memberships, nil
}

func (r *cooperativeRepository) ListActiveMemberships(ctx context.Context) ([]model.Membership, error) {
	var memberships []model.Membership

	err := dbFromContext(ctx, r.db).
		Where("status = ?", model.MembershipStatusActive).
		Preload("Plan").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active memberships: %w", err)
	}

	return memberships, nil
}
