package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
)

type orderMocks struct {
	shop     *MockShopRepository
	product  *MockProductRepository
	order    *MockOrderRepository
	payment  *MockPaymentRepository
	provider *MockWalletProvider
}

func newOrderService() (*OrderService, *orderMocks) {
	m := &orderMocks{
		shop:     new(MockShopRepository),
		product:  new(MockProductRepository),
		order:    new(MockOrderRepository),
		payment:  new(MockPaymentRepository),
		provider: new(MockWalletProvider),
	}
	svc := NewOrderService(m.shop, m.product, m.order, m.payment, m.provider,
		NewNopNotifier(), "https://app.example.com", zap.NewNop())
	return svc, m
}

func TestOrderService_CreateOrder(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	product := func() *model.Product {
		return &model.Product{
			ID:     10,
			ShopID: 3,
			Name:   "yam flour 5kg",
			Price:  decimal.NewFromInt(2500),
			Stock:  8,
		}
	}
	shop := func() *model.Shop {
		return &model.Shop{ID: 3, OwnerID: sellerID, Name: "Ada Stores"}
	}

	t.Run("rejects unknown product", func(t *testing.T) {
		svc, m := newOrderService()
		m.product.On("GetByID", mock.Anything, int64(10)).Return(nil, nil)

		order, payment, err := svc.CreateOrder(context.Background(), buyerID, &CreateOrderInput{ProductID: 10, Quantity: 1})

		assert.Error(t, err)
		assert.Nil(t, order)
		assert.Nil(t, payment)
		assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
	})

	t.Run("rejects quantity above stock", func(t *testing.T) {
		svc, m := newOrderService()
		m.product.On("GetByID", mock.Anything, int64(10)).Return(product(), nil)

		_, _, err := svc.CreateOrder(context.Background(), buyerID, &CreateOrderInput{ProductID: 10, Quantity: 9})

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
		m.order.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects buying from own shop", func(t *testing.T) {
		svc, m := newOrderService()
		m.product.On("GetByID", mock.Anything, int64(10)).Return(product(), nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).Return(shop(), nil)

		_, _, err := svc.CreateOrder(context.Background(), sellerID, &CreateOrderInput{ProductID: 10, Quantity: 1})

		assert.Error(t, err)
		assert.Equal(t, apperrors.ErrInvalidArgument, apperrors.CodeOf(err))
	})

	t.Run("opens checkout with the order as merchant reference", func(t *testing.T) {
		svc, m := newOrderService()
		m.product.On("GetByID", mock.Anything, int64(10)).Return(product(), nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).Return(shop(), nil)
		m.order.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
			return o.BuyerID == buyerID && o.Amount.Equal(decimal.NewFromInt(5000))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Order).ID = 42
		}).Return(nil)
		m.provider.On("InitializeCharge", mock.Anything, mock.MatchedBy(func(r *provider.ChargeRequest) bool {
			return r.MerchantRef == "order-42" && r.Amount.Equal(decimal.NewFromInt(5000))
		})).Return(&provider.ChargeSession{
			Reference:   "pv-ref-1",
			RedirectURL: "https://pay.example.com/pv-ref-1",
		}, nil)
		m.payment.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
			return p.OrderID != nil && *p.OrderID == 42 &&
				p.TransactionReference == "pv-ref-1" &&
				p.Status == model.PaymentStatusPending
		})).Return(nil)

		order, payment, err := svc.CreateOrder(context.Background(), buyerID, &CreateOrderInput{ProductID: 10, Quantity: 2})

		assert.NoError(t, err)
		assert.Equal(t, int64(42), order.ID)
		assert.Equal(t, "pv-ref-1", payment.TransactionReference)
		m.provider.AssertExpectations(t)
		m.payment.AssertExpectations(t)
	})
}

func TestOrderService_ReleaseEscrow(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()

	deliveredOrder := func() *model.Order {
		return &model.Order{
			ID:            42,
			BuyerID:       buyerID,
			ShopID:        3,
			Amount:        decimal.NewFromInt(5000),
			Status:        model.OrderStatusDelivered,
			PaymentStatus: model.OrderPaymentPaid,
			EscrowStatus:  model.OrderEscrowHeld,
		}
	}
	shop := func() *model.Shop {
		return &model.Shop{ID: 3, OwnerID: sellerID}
	}

	t.Run("rejects release before delivery", func(t *testing.T) {
		svc, m := newOrderService()
		order := deliveredOrder()
		order.Status = model.OrderStatusPending
		m.order.On("GetByID", mock.Anything, int64(42)).Return(order, nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).Return(shop(), nil)

		result, err := svc.ReleaseEscrow(context.Background(), 42, buyerID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
		m.order.AssertNotCalled(t, "MarkEscrowReleasedOnce", mock.Anything, mock.Anything)
	})

	t.Run("rejects a stranger", func(t *testing.T) {
		svc, m := newOrderService()
		m.order.On("GetByID", mock.Anything, int64(42)).Return(deliveredOrder(), nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).Return(shop(), nil)

		result, err := svc.ReleaseEscrow(context.Background(), 42, uuid.New())

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
	})

	t.Run("releases held escrow once", func(t *testing.T) {
		svc, m := newOrderService()
		m.order.On("GetByID", mock.Anything, int64(42)).Return(deliveredOrder(), nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).Return(shop(), nil)
		m.order.On("MarkEscrowReleasedOnce", mock.Anything, int64(42)).Return(true, nil)

		result, err := svc.ReleaseEscrow(context.Background(), 42, buyerID)

		assert.NoError(t, err)
		assert.Equal(t, model.OrderEscrowReleased, result.EscrowStatus)
	})

	t.Run("second release is a conflict", func(t *testing.T) {
		svc, m := newOrderService()
		m.order.On("GetByID", mock.Anything, int64(42)).Return(deliveredOrder(), nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).Return(shop(), nil)
		m.order.On("MarkEscrowReleasedOnce", mock.Anything, int64(42)).Return(false, nil)

		result, err := svc.ReleaseEscrow(context.Background(), 42, buyerID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	})
}

func TestOrderService_MarkDelivered(t *testing.T) {
	buyerID := uuid.New()

	t.Run("requires a paid order", func(t *testing.T) {
		svc, m := newOrderService()
		m.order.On("GetByID", mock.Anything, int64(42)).
			Return(&model.Order{ID: 42, BuyerID: buyerID, PaymentStatus: model.OrderPaymentUnpaid}, nil)

		result, err := svc.MarkDelivered(context.Background(), 42, buyerID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	})

	t.Run("repeat confirmation is a no-op", func(t *testing.T) {
		svc, m := newOrderService()
		m.order.On("GetByID", mock.Anything, int64(42)).
			Return(&model.Order{
				ID:            42,
				BuyerID:       buyerID,
				PaymentStatus: model.OrderPaymentPaid,
				Status:        model.OrderStatusDelivered,
			}, nil)

		result, err := svc.MarkDelivered(context.Background(), 42, buyerID)

		assert.NoError(t, err)
		assert.Equal(t, model.OrderStatusDelivered, result.Status)
		m.order.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
