package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"labelmart/internal/config"
	"labelmart/internal/model"
	"labelmart/internal/money"
)

var (
	// ErrUnavailable: transport failure, timeout, or non-success status
	// from the gateway.
	ErrUnavailable = errors.New("commerce gateway unavailable")
	// ErrInvalidResponse: the gateway answered 2xx but the charge has no
	// hosted checkout URL.
	ErrInvalidResponse = errors.New("commerce gateway returned invalid response")
)

type CommerceClient interface {
	CreateCharge(ctx context.Context, req *CreateChargeRequest) (*CreateChargeResponse, error)
}

type CreateChargeRequest struct {
	Name        string
	Description string
	Amount      money.Money
	RedirectURL string
	CancelURL   string
	Metadata    model.ChargeMetadata
}

type CreateChargeResponse struct {
	ChargeID  string
	HostedURL string
}

type commerceClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
}

func NewCommerceClient(commerceCfg *config.Commerce) CommerceClient {
	return &commerceClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: commerceCfg.BaseApiURL,
		apiKey:     commerceCfg.APIKey,
	}
}

type createChargePayload struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	PricingType string               `json:"pricing_type"`
	LocalPrice  localPrice           `json:"local_price"`
	RedirectURL string               `json:"redirect_url"`
	CancelURL   string               `json:"cancel_url"`
	Metadata    model.ChargeMetadata `json:"metadata"`
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type createChargeResult struct {
	Data model.ChargeData `json:"data"`
}

func (c *commerceClientImpl) CreateCharge(ctx context.Context, req *CreateChargeRequest) (*CreateChargeResponse, error) {
	payload := createChargePayload{
		Name:        req.Name,
		Description: req.Description,
		PricingType: "fixed_price",
		LocalPrice: localPrice{
			Amount:   req.Amount.USDString(),
			Currency: "USD",
		},
		RedirectURL: req.RedirectURL,
		CancelURL:   req.CancelURL,
		Metadata:    req.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal charge payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseApiURL+"/charges",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create charge request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-CC-Api-Key", c.apiKey)
	httpReq.Header.Set("X-CC-Version", "2018-03-22")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, string(b))
	}

	var result createChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err)
	}

	if result.Data.HostedURL == "" {
		return nil, fmt.Errorf("%w: missing hosted_url", ErrInvalidResponse)
	}

	return &CreateChargeResponse{
		ChargeID:  result.Data.ID,
		HostedURL: result.Data.HostedURL,
	}, nil
}
