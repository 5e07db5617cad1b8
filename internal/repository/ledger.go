package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labelmart/internal/model"
	"labelmart/internal/money"

	"gorm.io/gorm"
)

// ErrInsufficientFunds is returned by Adjust when a debit would take the
// balance below zero. The account is left unchanged.
var ErrInsufficientFunds = errors.New("insufficient funds")

type LedgerRepository interface {
	GetBalance(ctx context.Context, principal string) (money.Money, error)
	// Adjust applies balance += delta and appends the matching ledger entry
	// as one unit inside tx. The balance update is a single guarded SQL
	// statement, so concurrent adjustments to the same principal cannot
	// interleave a stale read-modify-write.
	Adjust(ctx context.Context, tx *gorm.DB, principal string, delta money.Money, reason, meta string) (money.Money, error)
	ListEntries(ctx context.Context, principal string) ([]*model.LedgerEntry, error)
}

type ledgerRepoImpl struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepoImpl{db: db}
}

func (r *ledgerRepoImpl) GetBalance(ctx context.Context, principal string) (money.Money, error) {
	var account model.LedgerAccount
	err := r.db.WithContext(ctx).
		Where("principal = ?", principal).
		First(&account).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Unknown principal reads as zero, never as an error.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return money.FromCents(account.BalanceCents), nil
}

func (r *ledgerRepoImpl) Adjust(ctx context.Context, tx *gorm.DB, principal string, delta money.Money, reason, meta string) (money.Money, error) {
	// Zero-balance account on first touch.
	account := model.LedgerAccount{Principal: principal}
	if err := tx.WithContext(ctx).
		Where(model.LedgerAccount{Principal: principal}).
		FirstOrCreate(&account).Error; err != nil {
		return 0, fmt.Errorf("load ledger account: %w", err)
	}

	result := tx.WithContext(ctx).Model(&model.LedgerAccount{}).
		Where("principal = ? AND balance_cents + ? >= 0", principal, delta.Cents()).
		Updates(map[string]interface{}{
			"balance_cents": gorm.Expr("balance_cents + ?", delta.Cents()),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("update ledger balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return money.FromCents(account.BalanceCents), ErrInsufficientFunds
	}

	var updated model.LedgerAccount
	if err := tx.WithContext(ctx).
		Where("principal = ?", principal).
		First(&updated).Error; err != nil {
		return 0, fmt.Errorf("reload ledger account: %w", err)
	}

	entry := &model.LedgerEntry{
		Principal:             principal,
		DeltaCents:            delta.Cents(),
		ResultingBalanceCents: updated.BalanceCents,
		Reason:                reason,
		Meta:                  meta,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}

	return money.FromCents(updated.BalanceCents), nil
}

func (r *ledgerRepoImpl) ListEntries(ctx context.Context, principal string) ([]*model.LedgerEntry, error) {
	var entries []*model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("principal = ?", principal).
		Order("id DESC").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
