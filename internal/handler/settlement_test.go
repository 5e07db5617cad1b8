package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"labelmart/internal/dto"
	"labelmart/internal/money"
	"labelmart/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSettlementService struct {
	webhookErr error
	payErr     error
	balance    money.Money
}

func (s *stubSettlementService) GetBalance(ctx context.Context, principal string) (money.Money, error) {
	return s.balance, nil
}

func (s *stubSettlementService) PayWithCredits(ctx context.Context, principal string, items []*dto.CartItem) (*dto.PayWithCreditsResponse, error) {
	if s.payErr != nil {
		return nil, s.payErr
	}
	return &dto.PayWithCreditsResponse{OrderID: "order-1"}, nil
}

func (s *stubSettlementService) CheckoutWithCharge(ctx context.Context, principal string, items []*dto.CartItem) (*dto.CreateChargeResponse, error) {
	if s.payErr != nil {
		return nil, s.payErr
	}
	return &dto.CreateChargeResponse{OrderID: "order-1", CheckoutURL: "https://commerce.test/pay"}, nil
}

func (s *stubSettlementService) TopUpCredits(ctx context.Context, principal string, amountUSD string) (*dto.TopUpResponse, error) {
	return &dto.TopUpResponse{TopupID: "topup-1", CheckoutURL: "https://commerce.test/pay"}, nil
}

func (s *stubSettlementService) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	return s.webhookErr
}

func doRequest(t *testing.T, handlerFunc echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handlerFunc(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCommerceWebhookStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "acknowledged", serviceErr: nil, wantStatus: http.StatusOK},
		{name: "bad signature", serviceErr: service.ErrInvalidSignature, wantStatus: http.StatusBadRequest},
		{name: "transient failure retried", serviceErr: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSettlementHandler(&stubSettlementService{webhookErr: tt.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/api/webhook/commerce", strings.NewReader(`{}`))
			req.Header.Set(signatureHeader, "deadbeef")

			rec := doRequest(t, h.CommerceWebhook, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestSettlementErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "empty cart", serviceErr: service.ErrEmptyCart, wantStatus: http.StatusBadRequest},
		{name: "invalid item", serviceErr: service.ErrInvalidItem, wantStatus: http.StatusBadRequest},
		{name: "insufficient funds", serviceErr: service.ErrInsufficientFunds, wantStatus: http.StatusPaymentRequired},
		{name: "duplicate order", serviceErr: service.ErrDuplicateOrder, wantStatus: http.StatusConflict},
		{name: "gateway unavailable", serviceErr: service.ErrGatewayUnavailable, wantStatus: http.StatusBadGateway},
		{name: "gateway invalid response", serviceErr: service.ErrGatewayResponseInvalid, wantStatus: http.StatusBadGateway},
		{name: "reconciliation required", serviceErr: service.ErrReconciliationRequired, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSettlementHandler(&stubSettlementService{payErr: tt.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/api/orders/pay-with-credits",
				strings.NewReader(`{"items":[{"kind":"label"}]}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

			rec := doRequest(t, h.PayWithCredits, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetBalance(t *testing.T) {
	h := NewSettlementHandler(&stubSettlementService{balance: money.FromCents(4601)})

	req := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
	rec := doRequest(t, h.GetBalance, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance_usd":"46.01"`)
}
