package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labelmart/internal/model"

	"gorm.io/gorm"
)

// ErrDuplicateOrder is returned by Create when the order id already exists.
var ErrDuplicateOrder = errors.New("duplicate order")

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error)
	// MarkPaid transitions PENDING -> PAID. Returns false with no error when
	// the order is already paid, so a webhook replay is a no-op.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID, paymentMethod, gatewayChargeID string) (bool, error)
	List(ctx context.Context) ([]*model.Order, error)
	Delete(ctx context.Context, orderID string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", order.OrderID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateOrder
	}

	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID, paymentMethod, gatewayChargeID string) (bool, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return false, fmt.Errorf("load order: %w", err)
	}

	if order.Status == model.OrderStatusPaid {
		return false, nil
	}

	now := time.Now()
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status <> ?", orderID, model.OrderStatusPaid).
		Updates(map[string]interface{}{
			"status":            model.OrderStatusPaid,
			"payment_method":    paymentMethod,
			"gateway_charge_id": gatewayChargeID,
			"paid_at":           now,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) List(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) Delete(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", orderID).Delete(&model.Order{}).Error
	})
}
