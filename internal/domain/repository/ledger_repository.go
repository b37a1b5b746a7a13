package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

// LedgerRepository persists wallet-affecting transactions. Reference
// uniqueness is enforced by the store; Create surfaces a conflict error
// on a duplicate reference.
type LedgerRepository interface {
	Create(ctx context.Context, entry *model.LedgerEntry) error

	// GetByReferenceOrMerchantRef looks an entry up by either identifier.
	// The OR lookup is deliberate: the provider may send either the
	// transaction reference or the merchant reference first.
	GetByReferenceOrMerchantRef(ctx context.Context, reference, merchantRef string) (*model.LedgerEntry, error)

	// GetDebitByReference finds an existing DEBIT entry for a payout
	// idempotency check.
	GetDebitByReference(ctx context.Context, reference string) (*model.LedgerEntry, error)

	Update(ctx context.Context, entry *model.LedgerEntry) error

	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.LedgerEntry, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// SumSuccessfulCredits totals a user's settled inbound funds.
	SumSuccessfulCredits(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}
