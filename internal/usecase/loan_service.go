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

const (
	// minPaidContributions is how many paid periods a member needs before
	// they can borrow.
	minPaidContributions = 6

	// loanLimitMultiplier caps a loan at this multiple of the member's
	// total paid contributions.
	loanLimitMultiplier = 2
)

// LoanService handles member loans against contribution history.
type LoanService struct {
	loanRepo         repository.LoanRepository
	coopRepo         repository.CooperativeRepository
	contributionRepo repository.ContributionRepository
	ledgerRepo       repository.LedgerRepository
	walletRepo       repository.WalletRepository
	tx               repository.TxManager
	notifier         Notifier
	logger           *zap.Logger
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repository.LoanRepository,
	coopRepo repository.CooperativeRepository,
	contributionRepo repository.ContributionRepository,
	ledgerRepo repository.LedgerRepository,
	walletRepo repository.WalletRepository,
	tx repository.TxManager,
	notifier Notifier,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:         loanRepo,
		coopRepo:         coopRepo,
		contributionRepo: contributionRepo,
		ledgerRepo:       ledgerRepo,
		walletRepo:       walletRepo,
		tx:               tx,
		notifier:         notifier,
		logger:           logger,
	}
}

// LoanApplication is a member's request to borrow.
type LoanApplication struct {
	CooperativeID int64           `json:"cooperative_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Purpose       string          `json:"purpose" validate:"max=255"`
}

// Apply checks eligibility and records a pending loan. Eligibility is an
// active membership, at least six paid contributions and no open loan;
// the amount is capped at a multiple of everything the member has paid
// in so far.
func (s *LoanService) Apply(ctx context.Context, userID uuid.UUID, app *LoanApplication) (*model.Loan, error) {
	if !app.Amount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "loan amount must be positive", nil)
	}

	membership, err := s.coopRepo.GetMembership(ctx, app.CooperativeID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil || membership.Status != model.MembershipStatusActive {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, "active membership required", nil)
	}

	paidCount, err := s.contributionRepo.CountPaidByUser(ctx, app.CooperativeID, userID)
	if err != nil {
		return nil, err
	}
	if paidCount < minPaidContributions {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "at least 6 paid contributions required", nil)
	}

	open, err := s.loanRepo.GetOpenByUser(ctx, app.CooperativeID, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "an open loan already exists", nil)
	}

	totalPaid, err := s.contributionRepo.SumPaidByUser(ctx, app.CooperativeID, userID)
	if err != nil {
		return nil, err
	}
	limit := totalPaid.Mul(decimal.NewFromInt(loanLimitMultiplier))
	if app.Amount.GreaterThan(limit) {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument,
			"requested amount exceeds loan limit of "+limit.StringFixed(2), nil)
	}

	loan := &model.Loan{
		CooperativeID: app.CooperativeID,
		UserID:        userID,
		Amount:        app.Amount,
		Purpose:       app.Purpose,
		Status:        model.LoanStatusPending,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.logger.Info("loan application recorded",
		zap.Int64("loan_id", loan.ID),
		zap.String("user_id", userID.String()),
		zap.String("amount", app.Amount.String()))

	return loan, nil
}

// Approve marks a pending loan approved and credits the member's wallet.
// The disbursement ledger entry and the balance increment commit with the
// status change or not at all.
func (s *LoanService) Approve(ctx context.Context, loanID int64, reviewerID uuid.UUID) (*model.Loan, error) {
	loan, err := s.reviewableLoan(ctx, loanID, reviewerID)
	if err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, loan.UserID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "borrower has no wallet", nil)
	}

	reference := "loan-" + uuid.NewString()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := time.Now()
		loan.Status = model.LoanStatusApproved
		loan.ReviewedBy = &reviewerID
		loan.ReviewedAt = &now
		loan.DisbursedRef = &reference
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}

		entry := &model.LedgerEntry{
			UserID:    loan.UserID,
			WalletID:  wallet.ID,
			Reference: reference,
			Direction: model.LedgerDirectionCredit,
			Amount:    loan.Amount,
			Status:    model.LedgerStatusSuccess,
			Channel:   "internal",
			Narration: "loan disbursement",
		}
		if err := s.ledgerRepo.Create(ctx, entry); err != nil {
			return err
		}

		return s.walletRepo.AddPendingBalance(ctx, wallet.ID, loan.Amount)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, "loan.approved", map[string]interface{}{
		"loan_id":   loan.ID,
		"user_id":   loan.UserID.String(),
		"amount":    loan.Amount.String(),
		"reference": reference,
	})

	return loan, nil
}

// Reject marks a pending loan rejected.
func (s *LoanService) Reject(ctx context.Context, loanID int64, reviewerID uuid.UUID) (*model.Loan, error) {
	loan, err := s.reviewableLoan(ctx, loanID, reviewerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	loan.Status = model.LoanStatusRejected
	loan.ReviewedBy = &reviewerID
	loan.ReviewedAt = &now
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// ListByCooperative lists a cooperative's loans, admin only.
func (s *LoanService) ListByCooperative(ctx context.Context, cooperativeID int64, userID uuid.UUID) ([]model.Loan, error) {
	if err := s.requireAdmin(ctx, cooperativeID, userID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListByCooperative(ctx, cooperativeID)
}

// reviewableLoan loads a loan and verifies the reviewer is a cooperative
// admin and the loan is still pending.
func (s *LoanService) reviewableLoan(ctx context.Context, loanID int64, reviewerID uuid.UUID) (*model.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "loan not found", nil)
	}
	if err := s.requireAdmin(ctx, loan.CooperativeID, reviewerID); err != nil {
		return nil, err
	}
	if loan.Status != model.LoanStatusPending {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "loan has already been reviewed", nil)
	}
	return loan, nil
}

func (s *LoanService) requireAdmin(ctx context.Context, cooperativeID int64, userID uuid.UUID) error {
	membership, err := s.coopRepo.GetMembership(ctx, cooperativeID, userID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Status != model.MembershipStatusActive || membership.Role != model.MembershipRoleAdmin {
		return apperrors.NewAppError(apperrors.ErrUnauthorized, "cooperative admin role required", nil)
	}
	return nil
}
