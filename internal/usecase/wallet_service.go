package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// WalletService exposes balance and transaction history.
type WalletService struct {
	walletRepo repository.WalletRepository
	ledgerRepo repository.LedgerRepository
	provider   provider.WalletProvider
	logger     *zap.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	walletRepo repository.WalletRepository,
	ledgerRepo repository.LedgerRepository,
	walletProvider provider.WalletProvider,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		provider:   walletProvider,
		logger:     logger,
	}
}

// WalletBalance pairs the provider's live figure with the locally held
// pending payout balance.
type WalletBalance struct {
	AccountNumber    string          `json:"account_number"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	PendingBalance   decimal.Decimal `json:"pending_balance"`
	TotalCredited    decimal.Decimal `json:"total_credited"`
}

// GetBalance queries the provider for the live balance. The provider is
// the source of truth for available funds; the local pending balance
// tracks settlements awaiting transfer.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*WalletBalance, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "no wallet for user", nil)
	}

	available, err := s.provider.WalletBalance(ctx, wallet.AccountNumber)
	if err != nil {
		return nil, err
	}

	credited, err := s.ledgerRepo.SumSuccessfulCredits(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &WalletBalance{
		AccountNumber:    wallet.AccountNumber,
		AvailableBalance: available,
		PendingBalance:   wallet.PendingBalance,
		TotalCredited:    credited,
	}, nil
}

// TransactionHistory is a page of a user's ledger.
type TransactionHistory struct {
	Entries []model.LedgerEntry `json:"entries"`
	Total   int64               `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// GetHistory pages through a user's ledger entries, newest first.
func (s *WalletService) GetHistory(ctx context.Context, userID uuid.UUID, limit, offset int) (*TransactionHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.ledgerRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.ledgerRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TransactionHistory{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// ListBanks proxies the provider's bank directory for payout forms.
func (s *WalletService) ListBanks(ctx context.Context) ([]provider.Bank, error) {
	return s.provider.ListBanks(ctx)
}

// ResolveAccount performs a name enquiry before a payout is submitted.
func (s *WalletService) ResolveAccount(ctx context.Context, bankCode, accountNumber string) (*provider.ResolvedAccount, error) {
	if bankCode == "" || accountNumber == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "bank code and account number are required", nil)
	}
	return s.provider.ResolveAccount(ctx, bankCode, accountNumber)
}
