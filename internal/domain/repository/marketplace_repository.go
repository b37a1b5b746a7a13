package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	ListByShop(ctx context.Context, shopID int64) ([]model.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error

	// MarkPaidOnce flips an order's payment status from unpaid to paid,
	// setting escrow to held and advancing fulfilment status. Returns
	// false when the order was already paid, without writing anything.
	MarkPaidOnce(ctx context.Context, orderID int64) (bool, error)

	// MarkEscrowReleasedOnce flips escrow from held to released. Returns
	// false when escrow was not in the held state.
	MarkEscrowReleasedOnce(ctx context.Context, orderID int64) (bool, error)

	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Order, error)
}
