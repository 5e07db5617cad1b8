package handler

import (
	"errors"
	"net/http"

	"labelmart/internal/repository"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type AdminHandler struct {
	orderRepo        repository.OrderRepository
	ledgerRepo       repository.LedgerRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewAdminHandler(
	orderRepo repository.OrderRepository,
	ledgerRepo repository.LedgerRepository,
	webhookEventRepo repository.WebhookEventRepository,
) *AdminHandler {
	return &AdminHandler{
		orderRepo:        orderRepo,
		ledgerRepo:       ledgerRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderRepo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("id")

	order, err := h.orderRepo.FindByOrderID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	items, err := h.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	if err := h.orderRepo.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListLedgerEntries(c echo.Context) error {
	entries, err := h.ledgerRepo.ListEntries(c.Request().Context(), c.Param("principal"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) ListWebhookEvents(c echo.Context) error {
	events, err := h.webhookEventRepo.ListRecent(c.Request().Context(), 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, events)
}
