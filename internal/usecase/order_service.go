package usecase

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// OrderService covers the marketplace surface that feeds reconciliation:
// storefronts, listings, orders and their payment intents, and escrow
// release after delivery.
type OrderService struct {
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	provider    provider.WalletProvider
	notifier    Notifier
	clientURL   string
	logger      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	walletProvider provider.WalletProvider,
	notifier Notifier,
	clientURL string,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		shopRepo:    shopRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		provider:    walletProvider,
		notifier:    notifier,
		clientURL:   clientURL,
		logger:      logger,
	}
}

// CreateShop opens a storefront for the user. One shop per owner.
func (s *OrderService) CreateShop(ctx context.Context, ownerID uuid.UUID, name string) (*model.Shop, error) {
	if name == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "shop name is required", nil)
	}

	existing, err := s.shopRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "user already owns a shop", nil)
	}

	shop := &model.Shop{OwnerID: ownerID, Name: name}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// CreateProductInput carries a new listing.
type CreateProductInput struct {
	Name  string          `json:"name" validate:"required,max=255"`
	Price decimal.Decimal `json:"price" validate:"required"`
	Stock int             `json:"stock" validate:"min=0"`
}

// CreateProduct lists a product in the caller's shop.
func (s *OrderService) CreateProduct(ctx context.Context, ownerID uuid.UUID, in *CreateProductInput) (*model.Product, error) {
	if !in.Price.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "price must be positive", nil)
	}

	shop, err := s.shopRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "caller has no shop", nil)
	}

	product := &model.Product{
		ShopID: shop.ID,
		Name:   in.Name,
		Price:  in.Price,
		Stock:  in.Stock,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateOrderInput carries a purchase request.
type CreateOrderInput struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// CreateOrder records an order and opens a provider checkout for it. The
// order id rides along as the merchant reference so the webhook and the
// verification poll can both find their way back. Payment is confirmed
// by reconciliation only.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID uuid.UUID, in *CreateOrderInput) (*model.Order, *model.Payment, error) {
	if in.Quantity < 1 {
		return nil, nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "quantity must be at least 1", nil)
	}

	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, apperrors.NewAppError(apperrors.ErrNotFound, "product not found", nil)
	}
	if product.Stock < in.Quantity {
		return nil, nil, apperrors.NewAppError(apperrors.ErrConflict, "insufficient stock", nil)
	}

	shop, err := s.shopRepo.GetByID(ctx, product.ShopID)
	if err != nil {
		return nil, nil, err
	}
	if shop == nil {
		return nil, nil, apperrors.NewAppError(apperrors.ErrNotFound, "shop not found", nil)
	}
	if shop.OwnerID == buyerID {
		return nil, nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "cannot order from your own shop", nil)
	}

	amount := product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))

	order := &model.Order{
		BuyerID:   buyerID,
		ShopID:    product.ShopID,
		ProductID: product.ID,
		Quantity:  in.Quantity,
		Amount:    amount,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, nil, err
	}

	session, err := s.provider.InitializeCharge(ctx, &provider.ChargeRequest{
		UserID:      buyerID.String(),
		Amount:      amount,
		Currency:    "NGN",
		MerchantRef: orderMerchantRef(order.ID),
		RedirectURL: s.clientURL + "/orders/" + strconv.FormatInt(order.ID, 10),
		Narration:   "order " + strconv.FormatInt(order.ID, 10),
	})
	if err != nil {
		return nil, nil, err
	}

	payment := &model.Payment{
		UserID:               buyerID,
		OrderID:              &order.ID,
		Amount:               amount,
		Currency:             "NGN",
		TransactionReference: session.Reference,
		RedirectURL:          session.RedirectURL,
		Channel:              session.Channel,
		Status:               model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("buyer_id", buyerID.String()),
		zap.String("reference", session.Reference))

	return order, payment, nil
}

// GetOrder returns an order visible to its buyer or the shop owner.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "order not found", nil)
	}

	if order.BuyerID != userID {
		shop, err := s.shopRepo.GetByID(ctx, order.ShopID)
		if err != nil {
			return nil, err
		}
		if shop == nil || shop.OwnerID != userID {
			return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, "order belongs to another user", nil)
		}
	}

	return order, nil
}

// ListOrders lists the caller's purchases.
func (s *OrderService) ListOrders(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orderRepo.ListByBuyer(ctx, buyerID, limit, offset)
}

// MarkDelivered is the buyer's confirmation that the goods arrived.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID int64, buyerID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "order not found", nil)
	}
	if order.BuyerID != buyerID {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, "only the buyer can confirm delivery", nil)
	}
	if order.PaymentStatus != model.OrderPaymentPaid {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "order has not been paid", nil)
	}
	if order.Status == model.OrderStatusDelivered {
		return order, nil
	}

	order.Status = model.OrderStatusDelivered
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ReleaseEscrow releases held funds to the seller after delivery. The
// guarded update makes release happen at most once even under concurrent
// requests.
func (s *OrderService) ReleaseEscrow(ctx context.Context, orderID int64, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "order not found", nil)
	}

	shop, err := s.shopRepo.GetByID(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "shop not found", nil)
	}
	if order.BuyerID != userID && shop.OwnerID != userID {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, "order belongs to another user", nil)
	}

	if order.Status != model.OrderStatusDelivered {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "escrow releases only after delivery", nil)
	}

	released, err := s.orderRepo.MarkEscrowReleasedOnce(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "escrow is not held", nil)
	}

	order.EscrowStatus = model.OrderEscrowReleased

	s.notifier.Notify(ctx, "escrow.released", map[string]interface{}{
		"order_id":  order.ID,
		"seller_id": shop.OwnerID.String(),
		"amount":    order.Amount.String(),
	})

	return order, nil
}

func orderMerchantRef(id int64) string {
	return "order-" + strconv.FormatInt(id, 10)
}
