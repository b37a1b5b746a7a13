package usecase

import (
	"context"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ContributionService generates and collects tiered monthly
// contributions.
type ContributionService struct {
	coopRepo         repository.CooperativeRepository
	contributionRepo repository.ContributionRepository
	paymentRepo      repository.PaymentRepository
	provider         provider.WalletProvider
	clientURL        string
	logger           *zap.Logger
}

// NewContributionService creates a new contribution service
func NewContributionService(
	coopRepo repository.CooperativeRepository,
	contributionRepo repository.ContributionRepository,
	paymentRepo repository.PaymentRepository,
	walletProvider provider.WalletProvider,
	clientURL string,
	logger *zap.Logger,
) *ContributionService {
	return &ContributionService{
		coopRepo:         coopRepo,
		contributionRepo: contributionRepo,
		paymentRepo:      paymentRepo,
		provider:         walletProvider,
		clientURL:        clientURL,
		logger:           logger,
	}
}

// GenerateMonthly creates the pending contribution rows for one period
// across all active memberships with a tier. Rerunning it for the same
// period inserts nothing new; the (membership, period) unique index is
// the guarantee, not this code.
func (s *ContributionService) GenerateMonthly(ctx context.Context, period string) (int64, error) {
	if !periodPattern.MatchString(period) {
		return 0, apperrors.NewAppError(apperrors.ErrInvalidArgument, "period must be YYYY-MM", nil)
	}

	memberships, err := s.coopRepo.ListActiveMemberships(ctx)
	if err != nil {
		return 0, err
	}

	contributions := make([]model.Contribution, 0, len(memberships))
	for _, m := range memberships {
		if m.Plan == nil {
			continue
		}
		contributions = append(contributions, model.Contribution{
			MembershipID: m.ID,
			Period:       period,
			Amount:       m.Plan.MonthlyAmount,
			Status:       model.ContributionStatusPending,
		})
	}

	created, err := s.contributionRepo.CreateIgnoreDuplicates(ctx, contributions)
	if err != nil {
		return 0, err
	}

	s.logger.Info("monthly contributions generated",
		zap.String("period", period),
		zap.Int("eligible", len(contributions)),
		zap.Int64("created", created))

	return created, nil
}

// InitiatePayment opens a provider checkout session for a pending
// contribution and records the payment intent. The contribution is only
// marked paid by reconciliation, never here.
func (s *ContributionService) InitiatePayment(ctx context.Context, contributionID int64, userID uuid.UUID) (*model.Payment, string, error) {
	contribution, err := s.contributionRepo.GetByID(ctx, contributionID)
	if err != nil {
		return nil, "", err
	}
	if contribution == nil {
		return nil, "", apperrors.NewAppError(apperrors.ErrNotFound, "contribution not found", nil)
	}
	if contribution.Status == model.ContributionStatusPaid {
		return nil, "", apperrors.NewAppError(apperrors.ErrConflict, "contribution already paid", nil)
	}

	membership, err := s.coopRepo.GetMembershipByID(ctx, contribution.MembershipID)
	if err != nil {
		return nil, "", err
	}
	if membership == nil || membership.UserID != userID {
		return nil, "", apperrors.NewAppError(apperrors.ErrUnauthorized, "contribution belongs to another member", nil)
	}

	session, err := s.provider.InitializeCharge(ctx, &provider.ChargeRequest{
		UserID:      userID.String(),
		Amount:      contribution.Amount,
		Currency:    "NGN",
		MerchantRef: contributionMerchantRef(contribution.ID),
		RedirectURL: s.clientURL + "/contributions",
		Narration:   "monthly contribution " + contribution.Period,
	})
	if err != nil {
		return nil, "", err
	}

	payment := &model.Payment{
		UserID:               userID,
		Amount:               contribution.Amount,
		Currency:             "NGN",
		TransactionReference: session.Reference,
		RedirectURL:          session.RedirectURL,
		Channel:              session.Channel,
		Status:               model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, "", err
	}

	contribution.PaymentRef = &session.Reference
	if err := s.contributionRepo.Update(ctx, contribution); err != nil {
		return nil, "", err
	}

	return payment, session.RedirectURL, nil
}

// ListByMembership lists a membership's contributions.
func (s *ContributionService) ListByMembership(ctx context.Context, membershipID int64, userID uuid.UUID) ([]model.Contribution, error) {
	membership, err := s.coopRepo.GetMembershipByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, "membership not found", nil)
	}
	if membership.UserID != userID {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthorized, "membership belongs to another user", nil)
	}

	return s.contributionRepo.ListByMembership(ctx, membershipID)
}

func contributionMerchantRef(id int64) string {
	return "contribution-" + strconv.FormatInt(id, 10)
}
