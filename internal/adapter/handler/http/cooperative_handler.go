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

type CooperativeHandler struct {
	usecase *usecase.CooperativeService
	logger  *zap.Logger
}

func NewCooperativeHandler(usecase *usecase.CooperativeService, logger *zap.Logger) *CooperativeHandler {
	return &CooperativeHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *CooperativeHandler) Create(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req usecase.CreateCooperativeRequest
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

	coop, err := h.usecase.Create(c.Request().Context(), user.UserID, &req)
	if err != nil {
		apperrors.LogError(h.logger, err, "create cooperative failed")
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, coop)
}

type JoinCooperativeRequest struct {
	PlanID *int64 `json:"plan_id,omitempty"`
}

func (h *CooperativeHandler) Join(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	coopID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req JoinCooperativeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}

	membership, err := h.usecase.Join(c.Request().Context(), coopID, user.UserID, req.PlanID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, membership)
}

func (h *CooperativeHandler) ApproveMembership(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	coopID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	membershipID, err := pathID(c, "membershipId")
	if err != nil {
		return err
	}

	membership, err := h.usecase.Approve(c.Request().Context(), coopID, membershipID, user.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, membership)
}

func (h *CooperativeHandler) CreatePlan(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	coopID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req usecase.CreatePlanRequest
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

	plan, err := h.usecase.CreatePlan(c.Request().Context(), coopID, user.UserID, &req)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, plan)
}

func (h *CooperativeHandler) ListMembers(c echo.Context) error {
	if _, err := auth.RequireAuth(c); err != nil {
		return err
	}

	coopID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	members, err := h.usecase.ListMembers(c.Request().Context(), coopID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, members)
}

// pathID parses a numeric path parameter, answering 400 itself on bad
// input.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid " + name + " parameter",
		})
	}
	return id, nil
}
