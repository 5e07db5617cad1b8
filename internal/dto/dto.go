package dto

import "encoding/json"

// CartItem is a tagged union: kind "label" carries shipment data opaque to
// settlement, kind "account" carries its own price.
type CartItem struct {
	Kind     string          `json:"kind"` // label | account
	PriceUSD string          `json:"price_usd,omitempty"`
	Shipment json.RawMessage `json:"shipment,omitempty"`
	Product  string          `json:"product,omitempty"`
}

type PayWithCreditsRequest struct {
	Items []*CartItem `json:"items"`
}

type PayWithCreditsResponse struct {
	OrderID    string `json:"order_id"`
	TotalUSD   string `json:"total_usd"`
	BalanceUSD string `json:"balance_usd"`
}

type CreateChargeRequest struct {
	Items []*CartItem `json:"items"`
}

type CreateChargeResponse struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

type TopUpRequest struct {
	AmountUSD string `json:"amount_usd"`
}

type TopUpResponse struct {
	TopupID     string `json:"topup_id"`
	CheckoutURL string `json:"checkout_url"`
}

type BalanceResponse struct {
	BalanceUSD string `json:"balance_usd"`
}
