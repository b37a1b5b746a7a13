package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/pkg/logger"

	handlers "github.com/coopvine/coopvine-backend/internal/adapter/handler/http"
	"github.com/coopvine/coopvine-backend/internal/config"
	"github.com/coopvine/coopvine-backend/internal/domain/provider"
	"github.com/coopvine/coopvine-backend/internal/infrastructure/database"
	"github.com/coopvine/coopvine-backend/internal/middleware/auth"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	provider provider.WalletProvider
	notifier usecase.Notifier
}

// requestValidator adapts go-playground/validator to echo's Validator
// interface.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	repos *database.Repositories,
	walletProvider provider.WalletProvider,
	notifier usecase.Notifier,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		repos:    repos,
		provider: walletProvider,
		notifier: notifier,
	}
}

func (s *Server) Start() error {
	s.echo.Use(logger.NewEchoRequestLogger(s.logger))
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Services
	authService := usecase.NewAuthService(
		s.repos.User, s.repos.Wallet, s.provider, s.notifier,
		s.config.Service.JWTSecret, s.config.Service.JWTTTL, s.logger)
	coopService := usecase.NewCooperativeService(
		s.repos.Cooperative, s.repos.Contribution, s.repos.Tx, s.notifier, s.logger)
	contributionService := usecase.NewContributionService(
		s.repos.Cooperative, s.repos.Contribution, s.repos.Payment,
		s.provider, s.config.Service.ClientURL, s.logger)
	loanService := usecase.NewLoanService(
		s.repos.Loan, s.repos.Cooperative, s.repos.Contribution,
		s.repos.Ledger, s.repos.Wallet, s.repos.Tx, s.notifier, s.logger)
	orderService := usecase.NewOrderService(
		s.repos.Shop, s.repos.Product, s.repos.Order, s.repos.Payment,
		s.provider, s.notifier, s.config.Service.ClientURL, s.logger)
	walletService := usecase.NewWalletService(
		s.repos.Wallet, s.repos.Ledger, s.provider, s.logger)
	payoutService := usecase.NewPayoutService(
		s.repos.User, s.repos.Wallet, s.repos.Ledger, s.provider, s.notifier, s.logger)
	reconciliationService := usecase.NewReconciliationService(
		s.repos.Ledger, s.repos.Payment, s.repos.Order, s.repos.Shop,
		s.repos.Wallet, s.repos.User, s.repos.Contribution, s.repos.Tx,
		s.provider, s.notifier, s.logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, s.logger)
	coopHandler := handlers.NewCooperativeHandler(coopService, s.logger)
	contributionHandler := handlers.NewContributionHandler(contributionService, s.logger)
	loanHandler := handlers.NewLoanHandler(loanService, s.logger)
	walletHandler := handlers.NewWalletHandler(walletService, payoutService, reconciliationService, s.logger)
	marketplaceHandler := handlers.NewMarketplaceHandler(orderService, s.logger)
	webhookHandler := handlers.NewWebhookHandler(reconciliationService, s.logger)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
	}

	v1 := s.echo.Group("/api/v1")

	// Public routes
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	protected.POST("/auth/pin", authHandler.SetTransactionPIN)

	cooperatives := protected.Group("/cooperatives")
	cooperatives.POST("", coopHandler.Create)
	cooperatives.POST("/:id/join", coopHandler.Join)
	cooperatives.POST("/:id/memberships/:membershipId/approve", coopHandler.ApproveMembership)
	cooperatives.POST("/:id/plans", coopHandler.CreatePlan)
	cooperatives.GET("/:id/members", coopHandler.ListMembers)
	cooperatives.GET("/:id/loans", loanHandler.ListByCooperative)

	protected.GET("/memberships/:membershipId/contributions", contributionHandler.ListByMembership)
	protected.POST("/contributions/:id/pay", contributionHandler.Pay)

	loans := protected.Group("/loans")
	loans.POST("", loanHandler.Apply)
	loans.POST("/:id/approve", loanHandler.Approve)
	loans.POST("/:id/reject", loanHandler.Reject)

	wallet := protected.Group("/wallet")
	wallet.GET("/balance", walletHandler.GetBalance)
	wallet.GET("/transactions", walletHandler.GetHistory)
	wallet.POST("/payouts", walletHandler.InitiatePayout)
	wallet.GET("/banks", walletHandler.ListBanks)
	wallet.GET("/resolve-account", walletHandler.ResolveAccount)

	protected.POST("/payments/:reference/verify", walletHandler.VerifyPayment)

	shops := protected.Group("/shops")
	shops.POST("", marketplaceHandler.CreateShop)
	shops.POST("/products", marketplaceHandler.CreateProduct)

	orders := protected.Group("/orders")
	orders.POST("", marketplaceHandler.CreateOrder)
	orders.GET("", marketplaceHandler.ListOrders)
	orders.GET("/:id", marketplaceHandler.GetOrder)
	orders.POST("/:id/delivered", marketplaceHandler.MarkDelivered)
	orders.POST("/:id/release-escrow", marketplaceHandler.ReleaseEscrow)

	// Webhook route (outside API versioning, signature-authenticated)
	s.echo.POST("/webhook/payvault", webhookHandler.Handle)
}
