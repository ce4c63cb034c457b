package services

import "order-service/models"

// All prices are USD cents. Precedence for the price actually owed:
// final > order-level negotiated > sum of per-item prices.

// EffectiveCents resolves the effective price of an order.
func EffectiveCents(order *models.Order) int64 {
	if order.FinalCents != nil {
		return *order.FinalCents
	}
	if order.NegotiatedCents != nil {
		return *order.NegotiatedCents
	}
	return SumItemCents(order.OrderItems)
}

// SumItemCents sums per-item prices, preferring the item-level negotiated price.
func SumItemCents(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		if item.NegotiatedCents != nil {
			total += *item.NegotiatedCents
		} else {
			total += item.OriginalPriceCents
		}
	}
	return total
}

// SumOriginalCents sums the catalog snapshot prices, used at creation and
// after item removal.
func SumOriginalCents(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.OriginalPriceCents
	}
	return total
}
