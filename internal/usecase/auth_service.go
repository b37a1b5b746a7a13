package usecase

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest authenticates a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and identity.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService handles registration, login, and transaction PIN setup.
type AuthService struct {
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	provider   provider.WalletProvider
	notifier   Notifier
	jwtSecret  string
	jwtTTL     time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	walletProvider provider.WalletProvider,
	notifier Notifier,
	jwtSecret string,
	jwtTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	if jwtTTL == 0 {
		jwtTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		provider:   walletProvider,
		notifier:   notifier,
		jwtSecret:  jwtSecret,
		jwtTTL:     jwtTTL,
		logger:     logger,
	}
}

// Register creates a user and provisions their provider-backed wallet.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConflict, "email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         model.UserRoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	account, err := s.provider.CreateVirtualAccount(ctx, &provider.CreateVirtualAccountRequest{
		UserID:    user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	})
	if err != nil {
		// The account exists without a wallet; wallet provisioning can
		// be retried, so registration still succeeds.
		s.logger.Error("failed to provision wallet at registration",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	} else {
		wallet := &model.Wallet{
			UserID:        user.ID,
			ExternalID:    account.ExternalID,
			AccountNumber: account.AccountNumber,
			AccountName:   account.AccountName,
			BankName:      account.BankName,
		}
		if err := s.walletRepo.Create(ctx, wallet); err != nil {
			s.logger.Error("failed to save wallet",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, "user.registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrUnauthenticated, "invalid email or password", nil)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// SetTransactionPIN sets or replaces the user's transaction PIN.
func (s *AuthService) SetTransactionPIN(ctx context.Context, userID uuid.UUID, pin string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewAppError(apperrors.ErrNotFound, "user not found", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, "failed to hash PIN")
	}

	pinHash := string(hash)
	user.PinHash = &pinHash

	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.jwtTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}
