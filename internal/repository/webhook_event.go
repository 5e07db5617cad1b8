package repository

import (
	"context"
	"errors"
	"time"

	"labelmart/internal/model"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	// Append records a verified event before its side effect is applied.
	// Returns the stored row; alreadyDispatched is true when a previous
	// delivery of the same event id completed its dispatch.
	Append(ctx context.Context, tx *gorm.DB, event *model.WebhookEvent) (alreadyDispatched bool, err error)
	MarkDispatched(ctx context.Context, tx *gorm.DB, eventID string) error
	// ListRecent returns the newest audit rows, for operator forensics.
	ListRecent(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{db: db}
}

func (r *webhookEventRepoImpl) Append(ctx context.Context, tx *gorm.DB, event *model.WebhookEvent) (bool, error) {
	// A charge settles once even when the gateway emits distinct events for
	// it (confirmed, then resolved after a chargeback).
	var dispatched int64
	dedup := tx.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("dispatched_at IS NOT NULL")
	if event.ChargeID != "" {
		dedup = dedup.Where("charge_id = ?", event.ChargeID)
	} else {
		dedup = dedup.Where("event_id = ?", event.EventID)
	}
	if err := dedup.Count(&dispatched).Error; err != nil {
		return false, err
	}

	var existing model.WebhookEvent
	err := tx.WithContext(ctx).
		Where("event_id = ?", event.EventID).
		First(&existing).Error

	if err == nil {
		return dispatched > 0, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	event.ReceivedAt = time.Now()
	if err := tx.WithContext(ctx).Create(event).Error; err != nil {
		return false, err
	}

	return dispatched > 0, nil
}

func (r *webhookEventRepoImpl) MarkDispatched(ctx context.Context, tx *gorm.DB, eventID string) error {
	return tx.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Update("dispatched_at", time.Now()).Error
}

func (r *webhookEventRepoImpl) ListRecent(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent
	err := r.db.WithContext(ctx).
		Order("received_at DESC").
		Limit(limit).
		Find(&events).Error

	if err != nil {
		return nil, err
	}

	return events, nil
}
