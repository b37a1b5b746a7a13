package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

type CooperativeRepository interface {
	Create(ctx context.Context, coop *model.Cooperative) error
	GetByID(ctx context.Context, id int64) (*model.Cooperative, error)
	List(ctx context.Context, limit, offset int) ([]model.Cooperative, error)

	CreateMembership(ctx context.Context, membership *model.Membership) error
	GetMembership(ctx context.Context, cooperativeID int64, userID uuid.UUID) (*model.Membership, error)
	GetMembershipByID(ctx context.Context, id int64) (*model.Membership, error)
	UpdateMembership(ctx context.Context, membership *model.Membership) error
	ListMemberships(ctx context.Context, cooperativeID int64) ([]model.Membership, error)

	// ListActiveMemberships returns active memberships across all
	// cooperatives, used by monthly contribution generation.
	ListActiveMemberships(ctx context.Context) ([]model.Membership, error)
}
