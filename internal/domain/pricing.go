package domain

import "github.com/shopspring/decimal"

// EffectivePrice resolves the unit price a buyer pays right now: the sale
// price when the product is on sale and carries a positive sale price,
// otherwise the list price. Checkout session building and order
// materialisation must both go through this method so the charged amount and
// the snapshotted amount cannot diverge.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.IsOnSale && p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// CartTotals aggregates a priced cart.
type CartTotals struct {
	Total     decimal.Decimal
	ItemCount int
}

// IsEmpty reports whether the totals describe a cart with no items.
func (t CartTotals) IsEmpty() bool { return t.ItemCount == 0 }

// Totals sums effective price times quantity across the cart items. Items
// must carry their Product association. A cart with zero items yields zero
// totals, which callers treat as "no cart".
func Totals(items []CartItem) CartTotals {
	totals := CartTotals{Total: decimal.Zero}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		line := item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
		totals.Total = totals.Total.Add(line)
		totals.ItemCount += item.Quantity
	}
	return totals
}

// MinorUnits converts a decimal amount to integer minor units (cents) the
// payment provider expects, rounding half-up to two places first.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}
