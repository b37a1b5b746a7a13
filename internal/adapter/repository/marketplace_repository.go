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

type shopRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *gorm.DB, logger *zap.Logger) repository.ShopRepository {
	return &shopRepository{db: db, logger: logger}
}

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	if err := dbFromContext(ctx, r.db).Create(shop).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("shop %q already exists: %w", shop.Name, err)
		}
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *shopRepository) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&shop).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return &shop, nil
}

func (r *shopRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	var shop model.Shop

	err := dbFromContext(ctx, r.db).Where("owner_id = ?", ownerID).First(&shop).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shop by owner: %w", err)
	}

	return &shop, nil
}

type productRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB, logger *zap.Logger) repository.ProductRepository {
	return &productRepository{db: db, logger: logger}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	if err := dbFromContext(ctx, r.db).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	if err := dbFromContext(ctx, r.db).Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *productRepository) ListByShop(ctx context.Context, shopID int64) ([]model.Product, error) {
	var products []model.Product

	err := dbFromContext(ctx, r.db).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) repository.OrderRepository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if err := dbFromContext(ctx, r.db).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	if err := dbFromContext(ctx, r.db).Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// MarkPaidOnce guards the unpaid→paid transition with the current-state
// predicate, so concurrent confirmations apply it exactly once.
func (r *orderRepository) MarkPaidOnce(ctx context.Context, orderID int64) (bool, error) {
	result := dbFromContext(ctx, r.db).
		Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.OrderPaymentUnpaid).
		Updates(map[string]interface{}{
			"payment_status": model.OrderPaymentPaid,
			"escrow_status":  model.OrderEscrowHeld,
			"status":         model.OrderStatusProcessing,
		})
	if result.Error != nil {
		r.logger.Error("failed to mark order paid",
			zap.Int64("order_id", orderID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to mark order paid: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepository) MarkEscrowReleasedOnce(ctx context.Context, orderID int64) (bool, error) {
	result := dbFromContext(ctx, r.db).
		Model(&model.Order{}).
		Where("id = ? AND escrow_status = ?", orderID, model.OrderEscrowHeld).
		Update("escrow_status", model.OrderEscrowReleased)
	if result.Error != nil {
		return false, fmt.Errorf("failed to release escrow: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Order, error) {
	var orders []model.Order

	err := dbFromContext(ctx, r.db).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}
