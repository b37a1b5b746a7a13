package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/middleware/auth"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

// PayoutIdempotencyHeader lets a client pin the payout reference so a
// retried request cannot debit twice.
const PayoutIdempotencyHeader = "X-Idempotency-Key"

type WalletHandler struct {
	wallets        *usecase.WalletService
	payouts        *usecase.PayoutService
	reconciliation *usecase.ReconciliationService
	logger         *zap.Logger
}

func NewWalletHandler(
	wallets *usecase.WalletService,
	payouts *usecase.PayoutService,
	reconciliation *usecase.ReconciliationService,
	logger *zap.Logger,
) *WalletHandler {
	return &WalletHandler{
		wallets:        wallets,
		payouts:        payouts,
		reconciliation: reconciliation,
		logger:         logger,
	}
}

func (h *WalletHandler) GetBalance(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	balance, err := h.wallets.GetBalance(c.Request().Context(), user.UserID)
	if err != nil {
		apperrors.LogError(h.logger, err, "balance lookup failed",
			zap.String("user_id", user.UserID.String()))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, balance)
}

func (h *WalletHandler) GetHistory(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	history, err := h.wallets.GetHistory(c.Request().Context(), user.UserID, limit, offset)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, history)
}

func (h *WalletHandler) InitiatePayout(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req usecase.PayoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}
	if key := c.Request().Header.Get(PayoutIdempotencyHeader); key != "" {
		req.Reference = key
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_FAILED",
		})
	}

	result, err := h.payouts.InitiatePayout(c.Request().Context(), user.UserID, &req)
	if err != nil {
		apperrors.LogError(h.logger, err, "payout initiation failed",
			zap.String("user_id", user.UserID.String()))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *WalletHandler) VerifyPayment(c echo.Context) error {
	if _, err := auth.RequireAuth(c); err != nil {
		return err
	}

	reference := c.Param("reference")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Missing transaction reference",
		})
	}

	result, err := h.reconciliation.VerifyPayment(c.Request().Context(), reference)
	if err != nil {
		apperrors.LogError(h.logger, err, "payment verification failed",
			zap.String("reference", reference))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *WalletHandler) ListBanks(c echo.Context) error {
	if _, err := auth.RequireAuth(c); err != nil {
		return err
	}

	banks, err := h.wallets.ListBanks(c.Request().Context())
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, banks)
}

func (h *WalletHandler) ResolveAccount(c echo.Context) error {
	if _, err := auth.RequireAuth(c); err != nil {
		return err
	}

	account, err := h.wallets.ResolveAccount(c.Request().Context(),
		c.QueryParam("bank_code"), c.QueryParam("account_number"))
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, account)
}
