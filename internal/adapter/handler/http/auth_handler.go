package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/middleware/auth"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

type AuthHandler struct {
	usecase *usecase.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(usecase *usecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterRequest
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

	resp, err := h.usecase.Register(c.Request().Context(), &req)
	if err != nil {
		apperrors.LogError(h.logger, err, "registration failed")
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.LoginRequest
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

	resp, err := h.usecase.Login(c.Request().Context(), &req)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

type SetPINRequest struct {
	PIN string `json:"pin" validate:"required,len=4,numeric"`
}

func (h *AuthHandler) SetTransactionPIN(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req SetPINRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "PIN must be 4 digits",
			"code":  "VALIDATION_FAILED",
		})
	}

	if err := h.usecase.SetTransactionPIN(c.Request().Context(), user.UserID, req.PIN); err != nil {
		apperrors.LogError(h.logger, err, "set PIN failed")
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}
