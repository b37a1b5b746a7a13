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

type MarketplaceHandler struct {
	usecase *usecase.OrderService
	logger  *zap.Logger
}

func NewMarketplaceHandler(usecase *usecase.OrderService, logger *zap.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{
		usecase: usecase,
		logger:  logger,
	}
}

type CreateShopRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *MarketplaceHandler) CreateShop(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req CreateShopRequest
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

	shop, err := h.usecase.CreateShop(c.Request().Context(), user.UserID, req.Name)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, shop)
}

func (h *MarketplaceHandler) CreateProduct(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req usecase.CreateProductInput
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

	product, err := h.usecase.CreateProduct(c.Request().Context(), user.UserID, &req)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *MarketplaceHandler) CreateOrder(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req usecase.CreateOrderInput
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

	order, payment, err := h.usecase.CreateOrder(c.Request().Context(), user.UserID, &req)
	if err != nil {
		apperrors.LogError(h.logger, err, "order creation failed",
			zap.String("buyer_id", user.UserID.String()))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"order":        order,
		"payment":      payment,
		"redirect_url": payment.RedirectURL,
	})
}

func (h *MarketplaceHandler) GetOrder(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.usecase.GetOrder(c.Request().Context(), orderID, user.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *MarketplaceHandler) ListOrders(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	orders, err := h.usecase.ListOrders(c.Request().Context(), user.UserID, limit, offset)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *MarketplaceHandler) MarkDelivered(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.usecase.MarkDelivered(c.Request().Context(), orderID, user.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *MarketplaceHandler) ReleaseEscrow(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.usecase.ReleaseEscrow(c.Request().Context(), orderID, user.UserID)
	if err != nil {
		apperrors.LogError(h.logger, err, "escrow release failed",
			zap.Int64("order_id", orderID))
		return apperrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, order)
}
