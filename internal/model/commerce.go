package model

// Metadata values the settlement service attaches to a gateway charge. The
// webhook resolves these back to local records, so every charge carries
// either an order id or a topup id.
const (
	PurposeOrder = "order"
	PurposeTopup = "topup"
)

type ChargeMetadata struct {
	Purpose   string `json:"purpose"`
	OrderID   string `json:"order_id,omitempty"`
	TopupID   string `json:"topup_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	AmountUSD string `json:"amount_usd"`
}

type ChargeData struct {
	ID        string         `json:"id"`
	HostedURL string         `json:"hosted_url"`
	Metadata  ChargeMetadata `json:"metadata"`
}

// WebhookEventPayload is one gateway notification. Only charge:confirmed and
// charge:resolved trigger settlement effects.
type WebhookEventPayload struct {
	ID   string     `json:"id"`
	Type string     `json:"type"`
	Data ChargeData `json:"data"`
}

// WebhookEnvelope is the documented wire shape; some gateway versions send
// the event fields at the top level instead.
type WebhookEnvelope struct {
	Event WebhookEventPayload `json:"event"`
}
