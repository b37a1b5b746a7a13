package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// WebhookResult reports the outcome of processing one webhook delivery.
type WebhookResult struct {
	Reference        string             `json:"reference"`
	Status           model.LedgerStatus `json:"status"`
	AlreadyProcessed bool               `json:"already_processed"`
	Created          bool               `json:"created"`
}

// VerificationResult reports the outcome of a payment verification poll.
type VerificationResult struct {
	Payment        *model.Payment `json:"payment"`
	OrderSettled   bool           `json:"order_settled"`
	AlreadySettled bool           `json:"already_settled"`
}

// ReconciliationService reconciles local payment, order, and ledger
// state against the provider's authoritative transaction status. It is
// driven by inbound webhooks and by explicit verification polling and
// must apply every external event exactly once.
type ReconciliationService struct {
	ledgerRepo       repository.LedgerRepository
	paymentRepo      repository.PaymentRepository
	orderRepo        repository.OrderRepository
	shopRepo         repository.ShopRepository
	walletRepo       repository.WalletRepository
	userRepo         repository.UserRepository
	contributionRepo repository.ContributionRepository
	tx               repository.TxManager
	provider         provider.WalletProvider
	notifier         Notifier
	logger           *zap.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	ledgerRepo repository.LedgerRepository,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	shopRepo repository.ShopRepository,
	walletRepo repository.WalletRepository,
	userRepo repository.UserRepository,
	contributionRepo repository.ContributionRepository,
	tx repository.TxManager,
	walletProvider provider.WalletProvider,
	notifier Notifier,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		ledgerRepo:       ledgerRepo,
		paymentRepo:      paymentRepo,
		orderRepo:        orderRepo,
		shopRepo:         shopRepo,
		walletRepo:       walletRepo,
		userRepo:         userRepo,
		contributionRepo: contributionRepo,
		tx:               tx,
		provider:         walletProvider,
		notifier:         notifier,
		logger:           logger,
	}
}

// finalStatusOf computes the settlement status from the payload's own
// success indicators. All three must agree for SUCCESS; any
// disagreement is FAILED. This three-way AND is a provider-contract
// assumption.
func finalStatusOf(envelope *provider.WebhookEnvelope) model.LedgerStatus {
	if envelope.Code == "00" && envelope.Succeeded && envelope.Data.Status == "Successful" {
		return model.LedgerStatusSuccess
	}
	return model.LedgerStatusFailed
}

// HandleWebhook processes one inbound webhook delivery. The raw body is
// verified against the signature header before anything is parsed, and
// replayed deliveries for an already-settled reference are reported as
// already processed without writing anything.
func (s *ReconciliationService) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (*WebhookResult, error) {
	if !s.provider.VerifyWebhookSignature(rawBody, signatureHeader) {
		s.logger.Warn("webhook signature rejected",
			zap.Int("body_size", len(rawBody)))
		return nil, apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid webhook signature", nil)
	}

	var envelope provider.WebhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "malformed webhook body", err)
	}
	if envelope.Data == nil || envelope.Data.Reference == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "webhook payload missing transaction data", nil)
	}
	data := envelope.Data

	existing, err := s.ledgerRepo.GetByReferenceOrMerchantRef(ctx, data.Reference, data.MerchantRef)
	if err != nil {
		return nil, err
	}

	if existing != nil && existing.Status == model.LedgerStatusSuccess {
		s.logger.Info("webhook replay ignored",
			zap.String("reference", data.Reference))
		return &WebhookResult{
			Reference:        existing.Reference,
			Status:           existing.Status,
			AlreadyProcessed: true,
		}, nil
	}

	finalStatus := finalStatusOf(&envelope)

	var rawPayload model.JSONB
	_ = json.Unmarshal(rawBody, &rawPayload)

	var txDate *time.Time
	if data.TransactionDate != "" {
		if t, err := time.Parse(time.RFC3339, data.TransactionDate); err == nil {
			txDate = &t
		}
	}

	if existing != nil {
		existing.Status = finalStatus
		existing.TransactionDate = txDate
		if data.BeneficiaryAccount != "" {
			existing.BeneficiaryAccount = &data.BeneficiaryAccount
		}
		existing.RawWebhookPayload = rawPayload

		if err := s.ledgerRepo.Update(ctx, existing); err != nil {
			return nil, err
		}

		s.logger.Info("ledger entry settled by webhook",
			zap.String("reference", existing.Reference),
			zap.String("status", string(finalStatus)))

		s.notifier.Notify(ctx, "ledger.settled", map[string]interface{}{
			"reference": existing.Reference,
			"status":    string(finalStatus),
		})

		return &WebhookResult{
			Reference: existing.Reference,
			Status:    finalStatus,
		}, nil
	}

	// No local record preceded this event, so it originated at the
	// provider. Resolve the owning wallet and create the entry directly
	// at its final status.
	wallet, err := s.walletRepo.GetByExternalID(ctx, data.CustomerID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		s.logger.Warn("webhook for unknown wallet",
			zap.String("reference", data.Reference),
			zap.String("customer_id", data.CustomerID))
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "no wallet matches webhook customer", nil)
	}

	direction := model.LedgerDirectionCredit
	if data.Type == "Debit" {
		direction = model.LedgerDirectionDebit
	}

	entry := &model.LedgerEntry{
		UserID:            wallet.UserID,
		WalletID:          wallet.ID,
		Reference:         data.Reference,
		Direction:         direction,
		Amount:            data.Amount,
		Status:            finalStatus,
		Channel:           s.provider.Name(),
		RawWebhookPayload: rawPayload,
		TransactionDate:   txDate,
	}
	if data.MerchantRef != "" {
		entry.MerchantRef = &data.MerchantRef
	}
	if data.BeneficiaryAccount != "" {
		entry.BeneficiaryAccount = &data.BeneficiaryAccount
	}

	// The unique index on reference is the backstop against concurrent
	// double delivery; losing the race surfaces as a conflict here.
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrConflict {
			s.logger.Info("webhook lost creation race, treating as replay",
				zap.String("reference", data.Reference))
			return &WebhookResult{
				Reference:        data.Reference,
				Status:           finalStatus,
				AlreadyProcessed: true,
			}, nil
		}
		return nil, err
	}

	s.logger.Info("ledger entry created from webhook",
		zap.String("reference", entry.Reference),
		zap.String("status", string(finalStatus)),
		zap.String("direction", string(direction)))

	s.notifier.Notify(ctx, "ledger.created", map[string]interface{}{
		"reference": entry.Reference,
		"status":    string(finalStatus),
	})

	return &WebhookResult{
		Reference: entry.Reference,
		Status:    finalStatus,
		Created:   true,
	}, nil
}

// VerifyPayment polls the provider for the authoritative status of a
// payment and applies order settlement side effects exactly once. The
// call is always safe to repeat.
func (s *ReconciliationService) VerifyPayment(ctx context.Context, reference string) (*VerificationResult, error) {
	status, err := s.provider.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByTransactionReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "no payment matches reference", nil)
	}

	// Local payment state always follows the provider's view.
	switch {
	case status.Successful:
		payment.Status = model.PaymentStatusSuccessful
	case status.Status == "Failed":
		payment.Status = model.PaymentStatusFailed
	default:
		payment.Status = model.PaymentStatusPending
	}
	payment.Charge = status.Charge
	payment.AmountAfterCharge = status.AmountAfterCharge
	if status.Channel != "" {
		payment.Channel = status.Channel
	}
	if status.Raw != nil {
		payment.RawResponse = model.JSONB(status.Raw)
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	if !status.Successful {
		return &VerificationResult{Payment: payment}, nil
	}

	if payment.OrderID == nil {
		if err := s.settleContribution(ctx, payment); err != nil {
			return nil, err
		}
		return &VerificationResult{Payment: payment}, nil
	}

	return s.settleOrder(ctx, payment, status)
}

// settleOrder applies the paid-order side effects atomically: the order
// flips to paid/held, the platform wallet is credited with the net
// amount, and the seller's pending balance grows by the gross amount.
// Partial application is the failure mode to guard against, so all of
// it happens in one transaction.
func (s *ReconciliationService) settleOrder(ctx context.Context, payment *model.Payment, status *provider.TransactionStatus) (*VerificationResult, error) {
	order, err := s.orderRepo.GetByID(ctx, *payment.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "order for payment not found", nil)
	}

	if order.PaymentStatus == model.OrderPaymentPaid {
		return &VerificationResult{Payment: payment, AlreadySettled: true}, nil
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		flipped, err := s.orderRepo.MarkPaidOnce(ctx, order.ID)
		if err != nil {
			return err
		}
		if !flipped {
			// A concurrent verification beat us to it; nothing left to do.
			return nil
		}

		operator, err := s.userRepo.GetPlatformOperator(ctx)
		if err != nil {
			return err
		}
		if operator == nil || operator.Wallet == nil {
			// Funds have nowhere to be credited; this needs operator
			// intervention, not a retry.
			return apperrors.NewAppError(apperrors.ErrConfiguration, "no platform wallet configured", nil)
		}

		merchantRef := payment.TransactionReference
		entry := &model.LedgerEntry{
			UserID:      operator.ID,
			WalletID:    operator.Wallet.ID,
			Reference:   payment.TransactionReference,
			MerchantRef: &merchantRef,
			Direction:   model.LedgerDirectionCredit,
			Amount:      status.AmountAfterCharge,
			Status:      model.LedgerStatusSuccess,
			Channel:     s.provider.Name(),
			Narration:   "order settlement",
		}
		if status.Raw != nil {
			entry.RawWebhookPayload = model.JSONB(status.Raw)
		}
		if err := s.ledgerRepo.Create(ctx, entry); err != nil {
			return err
		}

		shop, err := s.shopRepo.GetByID(ctx, order.ShopID)
		if err != nil {
			return err
		}
		if shop == nil {
			return apperrors.NewAppError(apperrors.ErrNotFound, "shop for order not found", nil)
		}

		sellerWallet, err := s.walletRepo.GetByUserID(ctx, shop.OwnerID)
		if err != nil {
			return err
		}
		if sellerWallet == nil {
			return apperrors.NewAppError(apperrors.ErrNotFound, "seller has no wallet", nil)
		}

		return s.walletRepo.AddPendingBalance(ctx, sellerWallet.ID, order.Amount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order settled",
		zap.Int64("order_id", order.ID),
		zap.String("reference", payment.TransactionReference))

	s.notifier.Notify(ctx, "order.paid", map[string]interface{}{
		"order_id":  order.ID,
		"reference": payment.TransactionReference,
	})

	return &VerificationResult{Payment: payment, OrderSettled: true}, nil
}

// settleContribution marks a contribution paid when its payment intent
// settles. Repeating the call is harmless.
func (s *ReconciliationService) settleContribution(ctx context.Context, payment *model.Payment) error {
	contribution, err := s.contributionRepo.GetByPaymentRef(ctx, payment.TransactionReference)
	if err != nil {
		return err
	}
	if contribution == nil || contribution.Status == model.ContributionStatusPaid {
		return nil
	}

	now := time.Now()
	contribution.Status = model.ContributionStatusPaid
	contribution.PaidAt = &now

	if err := s.contributionRepo.Update(ctx, contribution); err != nil {
		return err
	}

	s.notifier.Notify(ctx, "contribution.paid", map[string]interface{}{
		"contribution_id": contribution.ID,
		"period":          contribution.Period,
	})

	return nil
}
