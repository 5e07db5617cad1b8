package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"labelmart/internal/client"
	"labelmart/internal/dto"
	"labelmart/internal/model"
	"labelmart/internal/money"
	"labelmart/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementService interface {
	GetBalance(ctx context.Context, principal string) (money.Money, error)
	PayWithCredits(ctx context.Context, principal string, items []*dto.CartItem) (*dto.PayWithCreditsResponse, error)
	CheckoutWithCharge(ctx context.Context, principal string, items []*dto.CartItem) (*dto.CreateChargeResponse, error)
	TopUpCredits(ctx context.Context, principal string, amountUSD string) (*dto.TopUpResponse, error)
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}

type settlementServiceImpl struct {
	db                *gorm.DB
	commerceClient    client.CommerceClient
	serviceBaseURL    string
	chargeRedirectURL string
	webhookSecret     string
	labelPrice        money.Money
	ledgerRepo        repository.LedgerRepository
	orderRepo         repository.OrderRepository
	webhookEventRepo  repository.WebhookEventRepository
}

func NewSettlementService(
	db *gorm.DB,
	commerceClient client.CommerceClient,
	serviceBaseURL string,
	chargeRedirectURL string,
	webhookSecret string,
	labelPrice money.Money,
	ledgerRepo repository.LedgerRepository,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
) SettlementService {
	return &settlementServiceImpl{
		db:                db,
		commerceClient:    commerceClient,
		serviceBaseURL:    serviceBaseURL,
		chargeRedirectURL: chargeRedirectURL,
		webhookSecret:     webhookSecret,
		labelPrice:        labelPrice,
		ledgerRepo:        ledgerRepo,
		orderRepo:        orderRepo,
		webhookEventRepo:  webhookEventRepo,
	}
}

func (s *settlementServiceImpl) GetBalance(ctx context.Context, principal string) (money.Money, error) {
	return s.ledgerRepo.GetBalance(ctx, principal)
}

func (s *settlementServiceImpl) PayWithCredits(ctx context.Context, principal string, items []*dto.CartItem) (*dto.PayWithCreditsResponse, error) {
	total, err := ComputeTotal(items, s.labelPrice)
	if err != nil {
		return nil, err
	}

	// Pre-check so an obviously underfunded cart fails before any write.
	// The debit below re-checks atomically in the store.
	balance, err := s.ledgerRepo.GetBalance(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance.Cents() < total.Cents() {
		return nil, ErrInsufficientFunds
	}

	orderID := uuid.NewString()
	meta, _ := json.Marshal(map[string]string{"order_id": orderID})

	var newBalance money.Money
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newBalance, err = s.ledgerRepo.Adjust(ctx, tx, principal, total.Neg(), model.LedgerReasonPurchase, string(meta))
		return err
	})
	if errors.Is(err, repository.ErrInsufficientFunds) {
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, fmt.Errorf("debit credits: %w", err)
	}

	// The debit has committed. An order-write failure from here on means
	// money moved without a record of what it bought.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		order := &model.Order{
			OrderID:       orderID,
			Principal:     principal,
			Status:        model.OrderStatusPaid,
			PaymentMethod: model.PaymentMethodCredits,
			TotalCents:    total.Cents(),
			Currency:      "USD",
			PaidAt:        &now,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		return s.orderRepo.CreateOrderItems(ctx, tx, s.buildOrderItems(orderID, items))
	})
	if err != nil {
		log.Printf("RECONCILIATION REQUIRED: principal=%s order=%s amount=%s new_balance=%s err=%v",
			principal, orderID, total.USDString(), newBalance.USDString(), err)
		return nil, fmt.Errorf("%w: order %s", ErrReconciliationRequired, orderID)
	}

	return &dto.PayWithCreditsResponse{
		OrderID:    orderID,
		TotalUSD:   total.USDString(),
		BalanceUSD: newBalance.USDString(),
	}, nil
}

func (s *settlementServiceImpl) CheckoutWithCharge(ctx context.Context, principal string, items []*dto.CartItem) (*dto.CreateChargeResponse, error) {
	total, err := ComputeTotal(items, s.labelPrice)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()

	// The pending order is written before the gateway call so the webhook
	// can always resolve its metadata, even if we crash right after the
	// charge is created.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := &model.Order{
			OrderID:    orderID,
			Principal:  principal,
			Status:     model.OrderStatusPending,
			TotalCents: total.Cents(),
			Currency:   "USD",
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}
		return s.orderRepo.CreateOrderItems(ctx, tx, s.buildOrderItems(orderID, items))
	})
	if errors.Is(err, repository.ErrDuplicateOrder) {
		return nil, ErrDuplicateOrder
	}
	if err != nil {
		return nil, fmt.Errorf("store pending order: %w", err)
	}

	resp, err := s.createCharge(ctx, &client.CreateChargeRequest{
		Name:        "Labelmart order",
		Description: fmt.Sprintf("Order %s", orderID),
		Amount:      total,
		Metadata: model.ChargeMetadata{
			Purpose:   model.PurposeOrder,
			OrderID:   orderID,
			UserID:    principal,
			AmountUSD: total.USDString(),
		},
	})
	if err != nil {
		// The pending order stays behind; it never transitions without a
		// confirmed charge.
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("gateway_charge_id", resp.ChargeID).Error; err != nil {
		log.Printf("store charge id for order %s: %v", orderID, err)
	}

	return &dto.CreateChargeResponse{
		OrderID:     orderID,
		CheckoutURL: resp.HostedURL,
	}, nil
}

func (s *settlementServiceImpl) TopUpCredits(ctx context.Context, principal string, amountUSD string) (*dto.TopUpResponse, error) {
	amount, err := money.FromUSDString(amountUSD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	topupID := uuid.NewString()

	resp, err := s.createCharge(ctx, &client.CreateChargeRequest{
		Name:        "Labelmart credits",
		Description: fmt.Sprintf("Top up %s USD", amount.USDString()),
		Amount:      amount,
		Metadata: model.ChargeMetadata{
			Purpose:   model.PurposeTopup,
			TopupID:   topupID,
			UserID:    principal,
			AmountUSD: amount.USDString(),
		},
	})
	if err != nil {
		return nil, err
	}

	return &dto.TopUpResponse{
		TopupID:     topupID,
		CheckoutURL: resp.HostedURL,
	}, nil
}

func (s *settlementServiceImpl) createCharge(ctx context.Context, req *client.CreateChargeRequest) (*client.CreateChargeResponse, error) {
	req.RedirectURL = s.chargeRedirectURL
	if req.RedirectURL == "" {
		req.RedirectURL = s.serviceBaseURL + "/checkout/success"
	}
	req.CancelURL = s.serviceBaseURL

	resp, err := s.commerceClient.CreateCharge(ctx, req)
	if errors.Is(err, client.ErrUnavailable) {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if errors.Is(err, client.ErrInvalidResponse) {
		return nil, fmt.Errorf("%w: %v", ErrGatewayResponseInvalid, err)
	}
	if err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	return resp, nil
}

func (s *settlementServiceImpl) buildOrderItems(orderID string, items []*dto.CartItem) []*model.OrderItem {
	orderItems := make([]*model.OrderItem, len(items))
	for i, item := range items {
		orderItem := &model.OrderItem{
			OrderID: orderID,
			Kind:    item.Kind,
		}
		switch item.Kind {
		case model.ItemKindLabel:
			orderItem.Detail = string(item.Shipment)
			orderItem.PriceCents = s.labelPrice.Cents()
		case model.ItemKindAccount:
			orderItem.Detail = item.Product
			// Validated by ComputeTotal before this point.
			price, _ := money.FromUSDString(item.PriceUSD)
			orderItem.PriceCents = price.Cents()
		}
		orderItems[i] = orderItem
	}
	return orderItems
}

// errWebhookRejected marks a verified event we will never be able to apply
// (bad metadata, unknown order). It is logged and acknowledged so the
// gateway stops retrying.
var errWebhookRejected = errors.New("webhook rejected")

func (s *settlementServiceImpl) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if err := s.verifySignature(signature, body); err != nil {
		return err
	}

	event, err := decodeWebhookEvent(body)
	if err != nil {
		log.Printf("webhook: %v", err)
		return nil
	}

	eventID := event.ID
	if eventID == "" {
		eventID = event.Data.ID
	}
	if eventID == "" {
		log.Printf("webhook: %s event without an id, ignoring", event.Type)
		return nil
	}

	// resolved covers the processor's chargeback edge case and counts as a
	// confirmation. Other types are audited but carry no effect.
	dispatchable := event.Type == "charge:confirmed" || event.Type == "charge:resolved"

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alreadyDispatched, err := s.webhookEventRepo.Append(ctx, tx, &model.WebhookEvent{
			EventID:   eventID,
			ChargeID:  event.Data.ID,
			EventType: event.Type,
			Payload:   string(body),
		})
		if err != nil {
			return fmt.Errorf("append webhook event: %w", err)
		}
		if !dispatchable || alreadyDispatched {
			return nil
		}

		err = s.dispatch(ctx, tx, event)
		if errors.Is(err, errWebhookRejected) {
			// Keep the audit row, skip the effect, acknowledge.
			log.Printf("webhook %s: %v", eventID, err)
			return nil
		}
		if err != nil {
			return err
		}

		return s.webhookEventRepo.MarkDispatched(ctx, tx, eventID)
	})
}

func (s *settlementServiceImpl) verifySignature(signature string, body []byte) error {
	if s.webhookSecret == "" || signature == "" {
		return ErrInvalidSignature
	}

	given, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), given) {
		return ErrInvalidSignature
	}

	return nil
}

func decodeWebhookEvent(body []byte) (*model.WebhookEventPayload, error) {
	var envelope model.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Event.Type != "" {
		return &envelope.Event, nil
	}

	// Some gateway versions send the event fields at the top level.
	var event model.WebhookEventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	if event.Type == "" {
		return nil, errors.New("event payload has no type")
	}

	return &event, nil
}

func (s *settlementServiceImpl) dispatch(ctx context.Context, tx *gorm.DB, event *model.WebhookEventPayload) error {
	metadata := event.Data.Metadata

	if metadata.Purpose == model.PurposeTopup {
		if metadata.UserID == "" {
			return fmt.Errorf("%w: topup without user_id", errWebhookRejected)
		}
		amount, err := money.FromUSDString(metadata.AmountUSD)
		if err != nil || !amount.IsPositive() {
			return fmt.Errorf("%w: topup with bad amount %q", errWebhookRejected, metadata.AmountUSD)
		}

		meta, _ := json.Marshal(map[string]string{
			"charge_id":  event.Data.ID,
			"event_type": event.Type,
		})
		if _, err := s.ledgerRepo.Adjust(ctx, tx, metadata.UserID, amount, model.LedgerReasonTopup, string(meta)); err != nil {
			return fmt.Errorf("credit topup: %w", err)
		}
		return nil
	}

	// Everything that is not a topup settles a cart order.
	if metadata.OrderID == "" {
		return fmt.Errorf("%w: charge without order_id", errWebhookRejected)
	}

	_, err := s.orderRepo.MarkPaid(ctx, tx, metadata.OrderID, model.PaymentMethodExternal, event.Data.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: unknown order %s", errWebhookRejected, metadata.OrderID)
	}
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	return nil
}
