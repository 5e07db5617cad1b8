package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"labelmart/internal/config"
	"labelmart/internal/model"
	"labelmart/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) CommerceClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewCommerceClient(&config.Commerce{
		BaseApiURL: srv.URL,
		APIKey:     "test-key",
	})
}

func TestCreateCharge(t *testing.T) {
	var gotPayload map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-CC-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{
				"id":         "charge-123",
				"hosted_url": "https://commerce.test/pay/charge-123",
			},
		})
	})

	resp, err := c.CreateCharge(context.Background(), &CreateChargeRequest{
		Name:        "Labelmart order",
		Description: "Order abc",
		Amount:      money.FromCents(4900),
		RedirectURL: "https://labelmart.test/success",
		Metadata: model.ChargeMetadata{
			Purpose:   model.PurposeOrder,
			OrderID:   "abc",
			AmountUSD: "49.00",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "charge-123", resp.ChargeID)
	assert.Equal(t, "https://commerce.test/pay/charge-123", resp.HostedURL)

	assert.Equal(t, "fixed_price", gotPayload["pricing_type"])
	localPrice := gotPayload["local_price"].(map[string]interface{})
	assert.Equal(t, "49.00", localPrice["amount"])
	assert.Equal(t, "USD", localPrice["currency"])
	metadata := gotPayload["metadata"].(map[string]interface{})
	assert.Equal(t, "order", metadata["purpose"])
	assert.Equal(t, "abc", metadata["order_id"])
}

func TestCreateChargeGatewayError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.CreateCharge(context.Background(), &CreateChargeRequest{
		Amount: money.FromCents(100),
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateChargeMissingHostedURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "charge-123"},
		})
	})

	_, err := c.CreateCharge(context.Background(), &CreateChargeRequest{
		Amount: money.FromCents(100),
	})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCreateChargeConnectionRefused(t *testing.T) {
	c := NewCommerceClient(&config.Commerce{
		BaseApiURL: "http://127.0.0.1:1",
	})

	_, err := c.CreateCharge(context.Background(), &CreateChargeRequest{
		Amount: money.FromCents(100),
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}
