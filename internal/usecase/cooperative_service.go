package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// CreateCooperativeRequest creates a new cooperative.
type CreateCooperativeRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description,omitempty"`
}

// CreatePlanRequest adds a contribution tier to a cooperative.
type CreatePlanRequest struct {
	Name          string          `json:"name" validate:"required"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount" validate:"required"`
}

// CooperativeService manages cooperatives, memberships, and tiers.
type CooperativeService struct {
	coopRepo         repository.CooperativeRepository
	contributionRepo repository.ContributionRepository
	tx               repository.TxManager
	notifier         Notifier
	logger           *zap.Logger
}

// NewCooperativeService creates a new cooperative service
func NewCooperativeService(
	coopRepo repository.CooperativeRepository,
	contributionRepo repository.ContributionRepository,
	tx repository.TxManager,
	notifier Notifier,
	logger *zap.Logger,
) *CooperativeService {
	return &CooperativeService{
		coopRepo:         coopRepo,
		contributionRepo: contributionRepo,
		tx:               tx,
		notifier:         notifier,
		logger:           logger,
	}
}

// Create creates a cooperative; the creator becomes its first active
// admin member.
func (s *CooperativeService) Create(ctx context.Context, creatorID uuid.UUID, req *CreateCooperativeRequest) (*model.Cooperative, error) {
	coop := &model.Cooperative{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   creatorID,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.coopRepo.Create(ctx, coop); err != nil {
			return err
		}

		now := time.Now()
		membership := &model.Membership{
			CooperativeID: coop.ID,
			UserID:        creatorID,
			Status:        model.MembershipStatusActive,
			Role:          model.MembershipRoleAdmin,
			JoinedAt:      &now,
		}
		return s.coopRepo.CreateMembership(ctx, membership)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cooperative created",
		zap.Int64("cooperative_id", coop.ID),
		zap.String("name", coop.Name))

	return coop, nil
}

// Join requests membership in a cooperative; an admin must approve it.
func (s *CooperativeService) Join(ctx context.Context, cooperativeID int64, userID uuid.UUID, planID *int64) (*model.Membership, error) {
	coop, err := s.coopRepo.GetByID(ctx, cooperativeID)
	if err != nil {
		return nil, err
	}
	if coop == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "cooperative not found", nil)
	}

	existing, err := s.coopRepo.GetMembership(ctx, cooperativeID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "already a member or pending approval", nil)
	}

	if planID != nil {
		plan, err := s.contributionRepo.GetPlan(ctx, *planID)
		if err != nil {
			return nil, err
		}
		if plan == nil || plan.CooperativeID != cooperativeID {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "plan does not belong to cooperative", nil)
		}
	}

	membership := &model.Membership{
		CooperativeID: cooperativeID,
		UserID:        userID,
		PlanID:        planID,
		Status:        model.MembershipStatusPending,
		Role:          model.MembershipRoleMember,
	}
	if err := s.coopRepo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, "membership.requested", map[string]interface{}{
		"cooperative_id": cooperativeID,
		"user_id":        userID.String(),
	})

	return membership, nil
}

// Approve activates a pending membership. Only cooperative admins may
// approve.
func (s *CooperativeService) Approve(ctx context.Context, cooperativeID, membershipID int64, approverID uuid.UUID) (*model.Membership, error) {
	if err := s.requireAdmin(ctx, cooperativeID, approverID); err != nil {
		return nil, err
	}

	membership, err := s.coopRepo.GetMembershipByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil || membership.CooperativeID != cooperativeID {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "membership not found", nil)
	}
	if membership.Status == model.MembershipStatusActive {
		return membership, nil
	}

	now := time.Now()
	membership.Status = model.MembershipStatusActive
	membership.JoinedAt = &now
	if err := s.coopRepo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, "membership.approved", map[string]interface{}{
		"cooperative_id": cooperativeID,
		"membership_id":  membershipID,
	})

	return membership, nil
}

// CreatePlan adds a contribution tier. Only cooperative admins may
// create tiers.
func (s *CooperativeService) CreatePlan(ctx context.Context, cooperativeID int64, creatorID uuid.UUID, req *CreatePlanRequest) (*model.ContributionPlan, error) {
	if err := s.requireAdmin(ctx, cooperativeID, creatorID); err != nil {
		return nil, err
	}

	if !req.MonthlyAmount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "monthly amount must be positive", nil)
	}

	plan := &model.ContributionPlan{
		CooperativeID: cooperativeID,
		Name:          req.Name,
		MonthlyAmount: req.MonthlyAmount,
	}
	if err := s.contributionRepo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// ListMembers lists a cooperative's memberships.
func (s *CooperativeService) ListMembers(ctx context.Context, cooperativeID int64) ([]model.Membership, error) {
	coop, err := s.coopRepo.GetByID(ctx, cooperativeID)
	if err != nil {
		return nil, err
	}
	if coop == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "cooperative not found", nil)
	}

	return s.coopRepo.ListMemberships(ctx, cooperativeID)
}

func (s *CooperativeService) requireAdmin(ctx context.Context, cooperativeID int64, userID uuid.UUID) error {
	membership, err := s.coopRepo.GetMembership(ctx, cooperativeID, userID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Status != model.MembershipStatusActive || membership.Role != model.MembershipRoleAdmin {
		return apperrors.NewAppError(apperrors.ErrUnauthorized, "cooperative admin role required", nil)
	}
	return nil
}
