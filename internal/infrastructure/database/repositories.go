package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coopvine/coopvine-backend/internal/adapter/repository"
	domainRepo "github.com/coopvine/coopvine-backend/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	User         domainRepo.UserRepository
	Wallet       domainRepo.WalletRepository
	Ledger       domainRepo.LedgerRepository
	Payment      domainRepo.PaymentRepository
	Cooperative  domainRepo.CooperativeRepository
	Contribution domainRepo.ContributionRepository
	Loan         domainRepo.LoanRepository
	Shop         domainRepo.ShopRepository
	Product      domainRepo.ProductRepository
	Order        domainRepo.OrderRepository
	Tx           domainRepo.TxManager
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db, logger),
		Wallet:       repository.NewWalletRepository(db, logger),
		Ledger:       repository.NewLedgerRepository(db, logger),
		Payment:      repository.NewPaymentRepository(db, logger),
		Cooperative:  repository.NewCooperativeRepository(db, logger),
		Contribution: repository.NewContributionRepository(db, logger),
		Loan:         repository.NewLoanRepository(db, logger),
		Shop:         repository.NewShopRepository(db, logger),
		Product:      repository.NewProductRepository(db, logger),
		Order:        repository.NewOrderRepository(db, logger),
		Tx:           repository.NewTxManager(db),
	}
}
