package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/infrastructure/provider/payvault"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

// WebhookHandler receives provider settlement callbacks.
type WebhookHandler struct {
	usecase *usecase.ReconciliationService
	logger  *zap.Logger
}

func NewWebhookHandler(usecase *usecase.ReconciliationService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Handle verifies and applies a provider webhook. The body is read raw
// before any parsing because the signature covers the exact bytes sent.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Failed to read request body",
			"code":  "INVALID_REQUEST",
		})
	}

	signature := c.Request().Header.Get(payvault.SignatureHeader)

	result, err := h.usecase.HandleWebhook(c.Request().Context(), body, signature)
	if err != nil {
		apperrors.LogError(h.logger, err, "webhook processing failed")
		return apperrors.Respond(c, err)
	}

	if result.AlreadyProcessed {
		h.logger.Info("Webhook replay ignored",
			zap.String("reference", result.Reference))
	} else {
		h.logger.Info("Webhook applied",
			zap.String("reference", result.Reference),
			zap.String("status", string(result.Status)))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}
