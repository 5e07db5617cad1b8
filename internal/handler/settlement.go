package handler

import (
	"errors"
	"io"
	"net/http"

	"labelmart/internal/dto"
	"labelmart/internal/middleware"
	"labelmart/internal/service"

	"github.com/labstack/echo/v4"
)

const signatureHeader = "X-CC-Webhook-Signature"

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

func (h *SettlementHandler) GetBalance(c echo.Context) error {
	ctx := c.Request().Context()

	balance, err := h.settlementService.GetBalance(ctx, middleware.Principal(c))
	if err != nil {
		return settlementError(err)
	}

	return c.JSON(http.StatusOK, &dto.BalanceResponse{
		BalanceUSD: balance.USDString(),
	})
}

func (h *SettlementHandler) PayWithCredits(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PayWithCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.settlementService.PayWithCredits(ctx, middleware.Principal(c), req.Items)
	if err != nil {
		return settlementError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *SettlementHandler) CreateCharge(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateChargeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.settlementService.CheckoutWithCharge(ctx, middleware.Principal(c), req.Items)
	if err != nil {
		return settlementError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *SettlementHandler) TopUpCreateCharge(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TopUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.settlementService.TopUpCredits(ctx, middleware.Principal(c), req.AmountUSD)
	if err != nil {
		return settlementError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *SettlementHandler) CommerceWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.settlementService.HandleWebhook(ctx, c.Request().Header.Get(signatureHeader), body)
	if errors.Is(err, service.ErrInvalidSignature) {
		return c.NoContent(http.StatusBadRequest)
	}
	if err != nil {
		// Transient internal failure: let the gateway retry.
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook processing failed")
	}

	return c.JSON(http.StatusOK, map[string]bool{"acknowledged": true})
}

// settlementError maps internal error kinds to stable client-facing
// responses; store detail never leaks.
func settlementError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInvalidAmount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInsufficientFunds):
		return echo.NewHTTPError(http.StatusPaymentRequired, "insufficient credit balance")
	case errors.Is(err, service.ErrDuplicateOrder):
		return echo.NewHTTPError(http.StatusConflict, "order already exists")
	case errors.Is(err, service.ErrGatewayUnavailable),
		errors.Is(err, service.ErrGatewayResponseInvalid):
		return echo.NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
