package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error

	// GetPlatformOperator returns the admin user that owns the platform's
	// operating wallet, or nil if none is configured.
	GetPlatformOperator(ctx context.Context) (*model.User, error)
}

type WalletRepository interface {
	Create(ctx context.Context, wallet *model.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Wallet, error)
	Update(ctx context.Context, wallet *model.Wallet) error

	// AddPendingBalance atomically increments a wallet's pending payout
	// balance.
	AddPendingBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error
}
