package usecase

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// PayoutRequest initiates a wallet-to-bank transfer.
type PayoutRequest struct {
	// Reference is an optional caller-supplied idempotency key; when
	// empty the service generates one before any provider call.
	Reference     string          `json:"reference,omitempty"`
	PIN           string          `json:"pin" validate:"required,len=4,numeric"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	BankCode      string          `json:"bank_code" validate:"required"`
	AccountNumber string          `json:"account_number" validate:"required,len=10,numeric"`
	AccountName   string          `json:"account_name" validate:"required"`
}

// PayoutResult is the outcome of a payout initiation.
type PayoutResult struct {
	Reference string             `json:"reference"`
	Status    model.LedgerStatus `json:"status"`
	Amount    decimal.Decimal    `json:"amount"`
	Charge    decimal.Decimal    `json:"charge"`
}

// PayoutService initiates outbound transfers, enforcing balance
// sufficiency and idempotency before any money can move.
type PayoutService struct {
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	ledgerRepo repository.LedgerRepository
	provider   provider.WalletProvider
	notifier   Notifier
	logger     *zap.Logger
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	ledgerRepo repository.LedgerRepository,
	walletProvider provider.WalletProvider,
	notifier Notifier,
	logger *zap.Logger,
) *PayoutService {
	return &PayoutService{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		provider:   walletProvider,
		notifier:   notifier,
		logger:     logger,
	}
}

// InitiatePayout runs the payout sequence: PIN check, idempotency
// guard, charge quote, balance check, PENDING ledger entry, provider
// transfer, ledger finalization. A PENDING record always exists before
// any provider transfer call is made.
func (s *PayoutService) InitiatePayout(ctx context.Context, userID uuid.UUID, req *PayoutRequest) (*PayoutResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "user not found", nil)
	}
	if user.PinHash == nil {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "transaction PIN not set", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PinHash), []byte(req.PIN)); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthenticated, "incorrect transaction PIN", nil)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "user has no wallet", nil)
	}

	// The idempotency reference exists before any provider call so a
	// retry after a crash can be detected.
	reference := req.Reference
	if reference == "" {
		reference = "payout-" + uuid.NewString()
	}

	existing, err := s.ledgerRepo.GetDebitByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Warn("duplicate payout attempt",
			zap.String("reference", reference),
			zap.String("status", string(existing.Status)))
		return nil, apperrors.NewAppError(apperrors.ErrConflict,
			fmt.Sprintf("payout %s already submitted", reference), nil)
	}

	quote, err := s.provider.TransferQuote(ctx, &provider.TransferQuoteRequest{
		Amount:       req.Amount,
		TransferType: "interbank",
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.provider.WalletBalance(ctx, wallet.AccountNumber)
	if err != nil {
		return nil, err
	}

	total := req.Amount.Add(quote.Charge)
	if total.GreaterThan(balance) {
		return nil, apperrors.NewAppError(apperrors.ErrInsufficientFunds,
			fmt.Sprintf("insufficient funds: need %s (amount %s + charge %s), available %s",
				total, req.Amount, quote.Charge, balance), nil)
	}

	beneficiary := req.AccountNumber
	entry := &model.LedgerEntry{
		UserID:             userID,
		WalletID:           wallet.ID,
		Reference:          reference,
		Direction:          model.LedgerDirectionDebit,
		Amount:             req.Amount,
		Status:             model.LedgerStatusPending,
		Channel:            s.provider.Name(),
		BeneficiaryAccount: &beneficiary,
		Narration:          "wallet payout",
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		// A conflict here means a concurrent submission won the race.
		return nil, err
	}

	resp, err := s.provider.Transfer(ctx, &provider.TransferRequest{
		Reference:     reference,
		Amount:        req.Amount,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Narration:     "wallet payout",
	})
	if err != nil {
		if isTimeout(err) {
			// Unknown outcome: the transfer may have gone through. Leave
			// the entry PENDING for verification polling to reconcile.
			s.logger.Error("transfer call timed out, outcome unknown",
				zap.String("reference", reference))
			return nil, apperrors.NewAppError(apperrors.ErrTimeout,
				"transfer outcome unknown, pending reconciliation", err)
		}

		entry.Status = model.LedgerStatusFailed
		if updateErr := s.ledgerRepo.Update(ctx, entry); updateErr != nil {
			s.logger.Error("failed to mark payout ledger entry FAILED",
				zap.String("reference", reference),
				zap.Error(updateErr))
		}
		return nil, err
	}

	entry.Status = model.LedgerStatusSuccess
	if resp.Raw != nil {
		entry.RawWebhookPayload = model.JSONB(resp.Raw)
	}
	if err := s.ledgerRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("payout completed",
		zap.String("reference", reference),
		zap.String("amount", req.Amount.String()))

	s.notifier.Notify(ctx, "payout.completed", map[string]interface{}{
		"reference": reference,
		"amount":    req.Amount.String(),
	})

	return &PayoutResult{
		Reference: reference,
		Status:    model.LedgerStatusSuccess,
		Amount:    req.Amount,
		Charge:    quote.Charge,
	}, nil
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
