package service

import (
	"fmt"

	"labelmart/internal/dto"
	"labelmart/internal/model"
	"labelmart/internal/money"
)

// ComputeTotal sums a cart in integer cents. Labels cost the configured flat
// price; account products carry their own price. Order of items does not
// affect the result.
func ComputeTotal(items []*dto.CartItem, labelPrice money.Money) (money.Money, error) {
	if len(items) == 0 {
		return 0, ErrEmptyCart
	}

	total := money.FromCents(0)
	for _, item := range items {
		switch item.Kind {
		case model.ItemKindLabel:
			total = total.Add(labelPrice)
		case model.ItemKindAccount:
			price, err := money.FromUSDString(item.PriceUSD)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInvalidItem, err)
			}
			if !price.IsPositive() {
				return 0, fmt.Errorf("%w: account price must be positive", ErrInvalidItem)
			}
			total = total.Add(price)
		default:
			return 0, fmt.Errorf("%w: unknown item kind %q", ErrInvalidItem, item.Kind)
		}
	}

	return total, nil
}
