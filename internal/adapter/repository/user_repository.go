package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := dbFromContext(ctx, r.db).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User

	err := dbFromContext(ctx, r.db).Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := dbFromContext(ctx, r.db).Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := dbFromContext(ctx, r.db).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) GetPlatformOperator(ctx context.Context) (*model.User, error) {
	var user model.User

	// The operating account is the admin user that has a wallet attached.
	err := dbFromContext(ctx, r.db).
		Joins("JOIN wallets ON wallets.user_id = users.id").
		Where("users.role = ?", model.UserRoleAdmin).
		Preload("Wallet").
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get platform operator: %w", err)
	}

	return &user, nil
}

type walletRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB, logger *zap.Logger) repository.WalletRepository {
	return &walletRepository{
		db:     db,
		logger: logger,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *model.Wallet) error {
	if err := dbFromContext(ctx, r.db).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	var wallet model.Wallet

	err := dbFromContext(ctx, r.db).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Wallet, error) {
	var wallet model.Wallet

	err := dbFromContext(ctx, r.db).Where("external_id = ?", externalID).First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet by external id: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) Update(ctx context.Context, wallet *model.Wallet) error {
	if err := dbFromContext(ctx, r.db).Save(wallet).Error; err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) AddPendingBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	result := dbFromContext(ctx, r.db).
		Model(&model.Wallet{}).
		Where("id = ?", walletID).
		Update("pending_balance", gorm.Expr("pending_balance + ?", amount))
	if result.Error != nil {
		r.logger.Error("failed to add pending balance",
			zap.Int64("wallet_id", walletID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to add pending balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("wallet %d not found", walletID)
	}
	return nil
}
