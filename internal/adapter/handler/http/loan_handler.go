package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/middleware/auth"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

type LoanHandler struct {
	usecase *usecase.LoanService
	logger  *zap.Logger
}

func NewLoanHandler(usecase *usecase.LoanService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *LoanHandler) Apply(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req usecase.LoanApplication
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
			"code":  "VALIDATION_FAILED",
		})
	}

	loan, err := h.usecase.Apply(c.Request().Context(), user.UserID, &req)
	if err != nil {
		apperrors.LogError(h.logger, err, "loan application failed",
			zap.String("user_id", user.UserID.String()))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, loan)
}

func (h *LoanHandler) Approve(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	loan, err := h.usecase.Approve(c.Request().Context(), loanID, user.UserID)
	if err != nil {
		apperrors.LogError(h.logger, err, "loan approval failed",
			zap.Int64("loan_id", loanID))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) Reject(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	loanID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	loan, err := h.usecase.Reject(c.Request().Context(), loanID, user.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, loan)
}

func (h *LoanHandler) ListByCooperative(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	coopID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	loans, err := h.usecase.ListByCooperative(c.Request().Context(), coopID, user.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, loans)
}
