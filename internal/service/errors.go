package service

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidItem       = errors.New("invalid cart item")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient credit balance")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrInvalidSignature  = errors.New("invalid webhook signature")

	// ErrGatewayUnavailable covers transport failures, timeouts and
	// non-success statuses from the payment gateway.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayResponseInvalid means the gateway answered but the response
	// was missing the hosted checkout URL.
	ErrGatewayResponseInvalid = errors.New("invalid payment gateway response")

	// ErrReconciliationRequired means a ledger debit committed but the
	// matching order write failed. Money has moved; the operation must be
	// reconciled, never silently retried.
	ErrReconciliationRequired = errors.New("settlement requires reconciliation")
)
