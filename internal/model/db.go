package model

import "time"

// Order statuses.
const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
)

// Payment methods.
const (
	PaymentMethodCredits  = "credits"
	PaymentMethodExternal = "external"
)

// Ledger entry reasons.
const (
	LedgerReasonPurchase = "purchase"
	LedgerReasonTopup    = "topup"
	LedgerReasonRefund   = "refund"
)

// Cart item kinds.
const (
	ItemKindLabel   = "label"
	ItemKindAccount = "account"
)

// LedgerAccount is a principal's credit balance. Created implicitly on the
// first adjustment; mutated only through LedgerRepository.Adjust.
type LedgerAccount struct {
	Principal    string `gorm:"primaryKey;size:64;not null"`
	BalanceCents int64  `gorm:"not null"`
	UpdatedAt    time.Time
}

// LedgerEntry is an append-only audit record of one balance adjustment.
// Never updated or deleted.
type LedgerEntry struct {
	ID                    uint   `gorm:"primaryKey"`
	Principal             string `gorm:"size:64;index;not null"`
	DeltaCents            int64  `gorm:"not null"`
	ResultingBalanceCents int64  `gorm:"not null"`
	Reason                string `gorm:"size:16;not null"` // purchase, topup, refund
	Meta                  string `gorm:"type:text"`
	CreatedAt             time.Time
}

type Order struct {
	OrderID         string `gorm:"primaryKey;size:64;not null"`
	Principal       string `gorm:"size:64;index"` // empty for guest checkout
	Status          string `gorm:"size:32;index;not null"`
	PaymentMethod   string `gorm:"size:16"`
	GatewayChargeID string `gorm:"size:128;index"`
	TotalCents      int64  `gorm:"not null"`
	Currency        string `gorm:"size:8;not null"`
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID      uint   `gorm:"primaryKey"`
	OrderID string `gorm:"size:64;index;not null"`
	Kind    string `gorm:"size:16;not null"` // label, account
	// Shipment/customs data for labels, product snapshot for accounts.
	// Opaque to settlement.
	Detail     string `gorm:"type:text"`
	PriceCents int64  `gorm:"not null"`
	CreatedAt  time.Time
}

// WebhookEvent is the append-only log of verified gateway notifications,
// keyed by the gateway's event id. DispatchedAt marks that the event's side
// effect has been applied; a replay of the same event is a no-op.
type WebhookEvent struct {
	EventID      string `gorm:"primaryKey;size:128;not null"`
	ChargeID     string `gorm:"size:128;index"`
	EventType    string `gorm:"size:64;index"`
	Payload      string `gorm:"type:text;not null"`
	ReceivedAt   time.Time
	DispatchedAt *time.Time
}
