package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/coopvine/coopvine-backend/pkg/errors"

	"github.com/coopvine/coopvine-backend/internal/middleware/auth"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

type ContributionHandler struct {
	usecase *usecase.ContributionService
	logger  *zap.Logger
}

func NewContributionHandler(usecase *usecase.ContributionService, logger *zap.Logger) *ContributionHandler {
	return &ContributionHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *ContributionHandler) ListByMembership(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	membershipID, err := pathID(c, "membershipId")
	if err != nil {
		return err
	}

	contributions, err := h.usecase.ListByMembership(c.Request().Context(), membershipID, user.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, contributions)
}

func (h *ContributionHandler) Pay(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	contributionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	payment, redirectURL, err := h.usecase.InitiatePayment(c.Request().Context(), contributionID, user.UserID)
	if err != nil {
		apperrors.LogError(h.logger, err, "contribution payment initiation failed",
			zap.Int64("contribution_id", contributionID))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"payment":      payment,
		"redirect_url": redirectURL,
	})
}
