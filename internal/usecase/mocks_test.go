package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByReferenceOrMerchantRef(ctx context.Context, reference, merchantRef string) (*model.LedgerEntry, error) {
	args := m.Called(ctx, reference, merchantRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetDebitByReference(ctx context.Context, reference string) (*model.LedgerEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Update(ctx context.Context, entry *model.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SumSuccessfulCredits(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByTransactionReference(ctx context.Context, reference string) (*model.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Payment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetPlatformOperator(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *model.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Wallet, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Update(ctx context.Context, wallet *model.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) AddPendingBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

// MockCooperativeRepository is a mock implementation of CooperativeRepository
type MockCooperativeRepository struct {
	mock.Mock
}

func (m *MockCooperativeRepository) Create(ctx context.Context, coop *model.Cooperative) error {
	args := m.Called(ctx, coop)
	return args.Error(0)
}

func (m *MockCooperativeRepository) GetByID(ctx context.Context, id int64) (*model.Cooperative, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cooperative), args.Error(1)
}

func (m *MockCooperativeRepository) List(ctx context.Context, limit, offset int) ([]model.Cooperative, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Cooperative), args.Error(1)
}

func (m *MockCooperativeRepository) CreateMembership(ctx context.Context, membership *model.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockCooperativeRepository) GetMembership(ctx context.Context, cooperativeID int64, userID uuid.UUID) (*model.Membership, error) {
	args := m.Called(ctx, cooperativeID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockCooperativeRepository) GetMembershipByID(ctx context.Context, id int64) (*model.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockCooperativeRepository) UpdateMembership(ctx context.Context, membership *model.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockCooperativeRepository) ListMemberships(ctx context.Context, cooperativeID int64) ([]model.Membership, error) {
	args := m.Called(ctx, cooperativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Membership), args.Error(1)
}

func (m *MockCooperativeRepository) ListActiveMemberships(ctx context.Context) ([]model.Membership, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Membership), args.Error(1)
}

// MockContributionRepository is a mock implementation of ContributionRepository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) CreatePlan(ctx context.Context, plan *model.ContributionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockContributionRepository) GetPlan(ctx context.Context, id int64) (*model.ContributionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContributionPlan), args.Error(1)
}

func (m *MockContributionRepository) ListPlans(ctx context.Context, cooperativeID int64) ([]model.ContributionPlan, error) {
	args := m.Called(ctx, cooperativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ContributionPlan), args.Error(1)
}

func (m *MockContributionRepository) CreateIgnoreDuplicates(ctx context.Context, contributions []model.Contribution) (int64, error) {
	args := m.Called(ctx, contributions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContributionRepository) GetByID(ctx context.Context, id int64) (*model.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contribution), args.Error(1)
}

func (m *MockContributionRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*model.Contribution, error) {
	args := m.Called(ctx, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contribution), args.Error(1)
}

func (m *MockContributionRepository) Update(ctx context.Context, contribution *model.Contribution) error {
	args := m.Called(ctx, contribution)
	return args.Error(0)
}

func (m *MockContributionRepository) ListByMembership(ctx context.Context, membershipID int64) ([]model.Contribution, error) {
	args := m.Called(ctx, membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contribution), args.Error(1)
}

func (m *MockContributionRepository) CountPaidByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, cooperativeID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContributionRepository) SumPaidByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, cooperativeID, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLoanRepository is a mock implementation of LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *model.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*model.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetOpenByUser(ctx context.Context, cooperativeID int64, userID uuid.UUID) (*model.Loan, error) {
	args := m.Called(ctx, cooperativeID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *model.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByCooperative(ctx context.Context, cooperativeID int64) ([]model.Loan, error) {
	args := m.Called(ctx, cooperativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

// MockShopRepository is a mock implementation of ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, shop *model.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ListByShop(ctx context.Context, shopID int64) ([]model.Product, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaidOnce(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkEscrowReleasedOnce(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, buyerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockTxManager runs transaction bodies directly against the caller's
// context so usecases can be tested without a database.
type MockTxManager struct{}

func (MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockWalletProvider is a mock implementation of WalletProvider
type MockWalletProvider struct {
	mock.Mock
}

func (m *MockWalletProvider) CreateVirtualAccount(ctx context.Context, req *provider.CreateVirtualAccountRequest) (*provider.VirtualAccount, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.VirtualAccount), args.Error(1)
}

func (m *MockWalletProvider) InitializeCharge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChargeSession), args.Error(1)
}

func (m *MockWalletProvider) WalletBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountNumber)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletProvider) TransferQuote(ctx context.Context, req *provider.TransferQuoteRequest) (*provider.TransferQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.TransferQuote), args.Error(1)
}

func (m *MockWalletProvider) Transfer(ctx context.Context, req *provider.TransferRequest) (*provider.TransferResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.TransferResponse), args.Error(1)
}

func (m *MockWalletProvider) VerifyTransaction(ctx context.Context, reference string) (*provider.TransactionStatus, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.TransactionStatus), args.Error(1)
}

func (m *MockWalletProvider) ResolveAccount(ctx context.Context, bankCode, accountNumber string) (*provider.ResolvedAccount, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ResolvedAccount), args.Error(1)
}

func (m *MockWalletProvider) ListBanks(ctx context.Context) ([]provider.Bank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]provider.Bank), args.Error(1)
}

func (m *MockWalletProvider) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	args := m.Called(rawBody, signatureHeader)
	return args.Bool(0)
}

func (m *MockWalletProvider) Name() string {
	return "payvault"
}
