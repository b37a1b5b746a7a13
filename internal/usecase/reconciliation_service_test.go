package usecase

import (
	"context"
	"encoding/json"
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

type reconciliationMocks struct {
	ledger       *MockLedgerRepository
	payment      *MockPaymentRepository
	order        *MockOrderRepository
	shop         *MockShopRepository
	wallet       *MockWalletRepository
	user         *MockUserRepository
	contribution *MockContributionRepository
	provider     *MockWalletProvider
}

func newReconciliationService() (*ReconciliationService, *reconciliationMocks) {
	m := &reconciliationMocks{
		ledger:       new(MockLedgerRepository),
		payment:      new(MockPaymentRepository),
		order:        new(MockOrderRepository),
		shop:         new(MockShopRepository),
		wallet:       new(MockWalletRepository),
		user:         new(MockUserRepository),
		contribution: new(MockContributionRepository),
		provider:     new(MockWalletProvider),
	}
	svc := NewReconciliationService(
		m.ledger, m.payment, m.order, m.shop, m.wallet, m.user, m.contribution,
		MockTxManager{}, m.provider, NewNopNotifier(), zap.NewNop())
	return svc, m
}

func webhookBody(t *testing.T, envelope provider.WebhookEnvelope) []byte {
	t.Helper()
	body, err := json.Marshal(envelope)
	assert.NoError(t, err)
	return body
}

func TestReconciliationService_HandleWebhook(t *testing.T) {
	t.Run("rejects invalid signature before parsing", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "bad-sig").Return(false)

		result, err := svc.HandleWebhook(context.Background(), []byte(`{"Code":"00"}`), "bad-sig")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrUnauthenticated, apperrors.CodeOf(err))
		m.ledger.AssertNotCalled(t, "GetByReferenceOrMerchantRef", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects payload without transaction data", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)

		body := webhookBody(t, provider.WebhookEnvelope{Code: "00", Succeeded: true})
		result, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrInvalidArgument, apperrors.CodeOf(err))
	})

	t.Run("replay of settled entry is a no-op", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
		m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R1", "").
			Return(&model.LedgerEntry{
				Reference: "R1",
				Status:    model.LedgerStatusSuccess,
			}, nil)

		body := webhookBody(t, provider.WebhookEnvelope{
			Code:      "00",
			Succeeded: true,
			Data: &provider.WebhookData{
				Reference:  "R1",
				Amount:     decimal.NewFromInt(5000),
				Status:     "Successful",
				CustomerID: "W1",
			},
		})

		result, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.NoError(t, err)
		assert.True(t, result.AlreadyProcessed)
		assert.Equal(t, "R1", result.Reference)
		m.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.ledger.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("settles pending entry in place", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
		m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R1", "").
			Return(&model.LedgerEntry{
				Reference: "R1",
				Status:    model.LedgerStatusPending,
				Direction: model.LedgerDirectionDebit,
			}, nil)
		m.ledger.On("Update", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
			return e.Reference == "R1" && e.Status == model.LedgerStatusSuccess
		})).Return(nil)

		body := webhookBody(t, provider.WebhookEnvelope{
			Code:      "00",
			Succeeded: true,
			Data: &provider.WebhookData{
				Reference:  "R1",
				Amount:     decimal.NewFromInt(5000),
				Status:     "Successful",
				CustomerID: "W1",
			},
		})

		result, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.NoError(t, err)
		assert.False(t, result.AlreadyProcessed)
		assert.Equal(t, model.LedgerStatusSuccess, result.Status)
		m.ledger.AssertExpectations(t)
	})

	t.Run("any disagreeing success indicator settles FAILED", func(t *testing.T) {
		cases := []struct {
			name     string
			envelope provider.WebhookEnvelope
		}{
			{
				name: "code not 00",
				envelope: provider.WebhookEnvelope{Code: "91", Succeeded: true, Data: &provider.WebhookData{
					Reference: "R2", Status: "Successful", CustomerID: "W1"}},
			},
			{
				name: "succeeded false",
				envelope: provider.WebhookEnvelope{Code: "00", Succeeded: false, Data: &provider.WebhookData{
					Reference: "R2", Status: "Successful", CustomerID: "W1"}},
			},
			{
				name: "status not Successful",
				envelope: provider.WebhookEnvelope{Code: "00", Succeeded: true, Data: &provider.WebhookData{
					Reference: "R2", Status: "Failed", CustomerID: "W1"}},
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc, m := newReconciliationService()
				m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
				m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R2", "").
					Return(&model.LedgerEntry{
						Reference: "R2",
						Status:    model.LedgerStatusPending,
					}, nil)
				m.ledger.On("Update", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
					return e.Status == model.LedgerStatusFailed
				})).Return(nil)

				result, err := svc.HandleWebhook(context.Background(), webhookBody(t, tc.envelope), "sig")

				assert.NoError(t, err)
				assert.Equal(t, model.LedgerStatusFailed, result.Status)
				m.ledger.AssertExpectations(t)
			})
		}
	})

	t.Run("unknown wallet is rejected without writing", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
		m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R3", "").Return(nil, nil)
		m.wallet.On("GetByExternalID", mock.Anything, "nobody").Return(nil, nil)

		body := webhookBody(t, provider.WebhookEnvelope{
			Code:      "00",
			Succeeded: true,
			Data: &provider.WebhookData{
				Reference:  "R3",
				Amount:     decimal.NewFromInt(100),
				Status:     "Successful",
				CustomerID: "nobody",
			},
		})

		result, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
		m.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates credit entry for provider-originated event", func(t *testing.T) {
		svc, m := newReconciliationService()
		userID := uuid.New()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
		m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R1", "").Return(nil, nil)
		m.wallet.On("GetByExternalID", mock.Anything, "W1").
			Return(&model.Wallet{ID: 7, UserID: userID, ExternalID: "W1"}, nil)
		m.ledger.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
			return e.Reference == "R1" &&
				e.Direction == model.LedgerDirectionCredit &&
				e.Status == model.LedgerStatusSuccess &&
				e.Amount.Equal(decimal.NewFromInt(5000)) &&
				e.WalletID == 7 &&
				e.UserID == userID
		})).Return(nil)

		body := webhookBody(t, provider.WebhookEnvelope{
			Code:      "00",
			Succeeded: true,
			Data: &provider.WebhookData{
				Reference:  "R1",
				Amount:     decimal.NewFromInt(5000),
				Status:     "Successful",
				CustomerID: "W1",
			},
		})

		result, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.NoError(t, err)
		assert.True(t, result.Created)
		assert.Equal(t, model.LedgerStatusSuccess, result.Status)
		m.ledger.AssertExpectations(t)
	})

	t.Run("lost creation race is reported as replay", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
		m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R4", "").Return(nil, nil)
		m.wallet.On("GetByExternalID", mock.Anything, "W1").
			Return(&model.Wallet{ID: 7, UserID: uuid.New(), ExternalID: "W1"}, nil)
		m.ledger.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.NewAppError(apperrors.ErrConflict, "reference already recorded", nil))

		body := webhookBody(t, provider.WebhookEnvelope{
			Code:      "00",
			Succeeded: true,
			Data: &provider.WebhookData{
				Reference:  "R4",
				Amount:     decimal.NewFromInt(250),
				Status:     "Successful",
				CustomerID: "W1",
			},
		})

		result, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.NoError(t, err)
		assert.True(t, result.AlreadyProcessed)
	})

	t.Run("debit type creates debit entry", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyWebhookSignature", mock.Anything, "sig").Return(true)
		m.ledger.On("GetByReferenceOrMerchantRef", mock.Anything, "R5", "").Return(nil, nil)
		m.wallet.On("GetByExternalID", mock.Anything, "W1").
			Return(&model.Wallet{ID: 7, UserID: uuid.New(), ExternalID: "W1"}, nil)
		m.ledger.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
			return e.Direction == model.LedgerDirectionDebit
		})).Return(nil)

		body := webhookBody(t, provider.WebhookEnvelope{
			Code:      "00",
			Succeeded: true,
			Data: &provider.WebhookData{
				Reference:  "R5",
				Amount:     decimal.NewFromInt(900),
				Type:       "Debit",
				Status:     "Successful",
				CustomerID: "W1",
			},
		})

		_, err := svc.HandleWebhook(context.Background(), body, "sig")

		assert.NoError(t, err)
		m.ledger.AssertExpectations(t)
	})
}

func TestReconciliationService_VerifyPayment(t *testing.T) {
	orderID := int64(42)
	buyerID := uuid.New()
	sellerID := uuid.New()
	operatorID := uuid.New()

	successStatus := &provider.TransactionStatus{
		Reference:         "pay-1",
		Successful:        true,
		Status:            "Successful",
		Amount:            decimal.NewFromInt(5000),
		Charge:            decimal.NewFromInt(50),
		AmountAfterCharge: decimal.NewFromInt(4950),
	}

	t.Run("unknown reference is not found", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyTransaction", mock.Anything, "ghost").Return(successStatus, nil)
		m.payment.On("GetByTransactionReference", mock.Anything, "ghost").Return(nil, nil)

		result, err := svc.VerifyPayment(context.Background(), "ghost")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
	})

	t.Run("failed payment updates status without settlement", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyTransaction", mock.Anything, "pay-1").
			Return(&provider.TransactionStatus{Reference: "pay-1", Status: "Failed"}, nil)
		m.payment.On("GetByTransactionReference", mock.Anything, "pay-1").
			Return(&model.Payment{TransactionReference: "pay-1", OrderID: &orderID}, nil)
		m.payment.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
			return p.Status == model.PaymentStatusFailed
		})).Return(nil)

		result, err := svc.VerifyPayment(context.Background(), "pay-1")

		assert.NoError(t, err)
		assert.False(t, result.OrderSettled)
		m.order.AssertNotCalled(t, "MarkPaidOnce", mock.Anything, mock.Anything)
	})

	t.Run("settles order once with platform credit and seller balance", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyTransaction", mock.Anything, "pay-1").Return(successStatus, nil)
		m.payment.On("GetByTransactionReference", mock.Anything, "pay-1").
			Return(&model.Payment{
				UserID:               buyerID,
				OrderID:              &orderID,
				TransactionReference: "pay-1",
				Amount:               decimal.NewFromInt(5000),
			}, nil)
		m.payment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.order.On("GetByID", mock.Anything, orderID).
			Return(&model.Order{
				ID:            orderID,
				BuyerID:       buyerID,
				ShopID:        3,
				Amount:        decimal.NewFromInt(5000),
				PaymentStatus: model.OrderPaymentUnpaid,
			}, nil)
		m.order.On("MarkPaidOnce", mock.Anything, orderID).Return(true, nil)
		m.user.On("GetPlatformOperator", mock.Anything).
			Return(&model.User{
				ID:     operatorID,
				Wallet: &model.Wallet{ID: 1, UserID: operatorID},
			}, nil)
		m.ledger.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LedgerEntry) bool {
			return e.Reference == "pay-1" &&
				e.Direction == model.LedgerDirectionCredit &&
				e.Amount.Equal(decimal.NewFromInt(4950)) &&
				e.Status == model.LedgerStatusSuccess
		})).Return(nil)
		m.shop.On("GetByID", mock.Anything, int64(3)).
			Return(&model.Shop{ID: 3, OwnerID: sellerID}, nil)
		m.wallet.On("GetByUserID", mock.Anything, sellerID).
			Return(&model.Wallet{ID: 9, UserID: sellerID}, nil)
		m.wallet.On("AddPendingBalance", mock.Anything, int64(9), decimal.NewFromInt(5000)).Return(nil)

		result, err := svc.VerifyPayment(context.Background(), "pay-1")

		assert.NoError(t, err)
		assert.True(t, result.OrderSettled)
		assert.Equal(t, model.PaymentStatusSuccessful, result.Payment.Status)
		m.ledger.AssertExpectations(t)
		m.wallet.AssertExpectations(t)
	})

	t.Run("second verification of paid order settles nothing", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyTransaction", mock.Anything, "pay-1").Return(successStatus, nil)
		m.payment.On("GetByTransactionReference", mock.Anything, "pay-1").
			Return(&model.Payment{
				UserID:               buyerID,
				OrderID:              &orderID,
				TransactionReference: "pay-1",
			}, nil)
		m.payment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.order.On("GetByID", mock.Anything, orderID).
			Return(&model.Order{
				ID:            orderID,
				PaymentStatus: model.OrderPaymentPaid,
				EscrowStatus:  model.OrderEscrowHeld,
			}, nil)

		result, err := svc.VerifyPayment(context.Background(), "pay-1")

		assert.NoError(t, err)
		assert.True(t, result.AlreadySettled)
		assert.False(t, result.OrderSettled)
		m.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.wallet.AssertNotCalled(t, "AddPendingBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing platform wallet is a configuration error", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyTransaction", mock.Anything, "pay-1").Return(successStatus, nil)
		m.payment.On("GetByTransactionReference", mock.Anything, "pay-1").
			Return(&model.Payment{OrderID: &orderID, TransactionReference: "pay-1"}, nil)
		m.payment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.order.On("GetByID", mock.Anything, orderID).
			Return(&model.Order{ID: orderID, ShopID: 3, PaymentStatus: model.OrderPaymentUnpaid}, nil)
		m.order.On("MarkPaidOnce", mock.Anything, orderID).Return(true, nil)
		m.user.On("GetPlatformOperator", mock.Anything).Return(nil, nil)

		result, err := svc.VerifyPayment(context.Background(), "pay-1")

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, apperrors.ErrConfiguration, apperrors.CodeOf(err))
	})

	t.Run("settles contribution payment without order", func(t *testing.T) {
		svc, m := newReconciliationService()
		m.provider.On("VerifyTransaction", mock.Anything, "pay-2").Return(successStatus, nil)
		m.payment.On("GetByTransactionReference", mock.Anything, "pay-2").
			Return(&model.Payment{TransactionReference: "pay-2"}, nil)
		m.payment.On("Update", mock.Anything, mock.Anything).Return(nil)
		m.contribution.On("GetByPaymentRef", mock.Anything, "pay-2").
			Return(&model.Contribution{ID: 11, Period: "2026-08", Status: model.ContributionStatusPending}, nil)
		m.contribution.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Contribution) bool {
			return c.Status == model.ContributionStatusPaid && c.PaidAt != nil
		})).Return(nil)

		result, err := svc.VerifyPayment(context.Background(), "pay-2")

		assert.NoError(t, err)
		assert.False(t, result.OrderSettled)
		m.contribution.AssertExpectations(t)
	})
}
