package domain

import "github.com/shopspring/decimal"

// Pricing holds the storefront's fixed charges. Discounts are computed by the catalog, not here.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	Currency              string
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeDeliveryThreshold: decimal.NewFromInt(30),
		DeliveryFee:           decimal.RequireFromString("4.99"),
		Currency:              "USD",
	}
}

// Summarize computes subtotal, tax, delivery fee and total for the given lines.
// An empty cart has a zero subtotal and no delivery fee.
func (p Pricing) Summarize(lines []CartLine) CartSnapshot {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	fee := decimal.Zero
	if len(lines) > 0 && subtotal.LessThan(p.FreeDeliveryThreshold) {
		fee = p.DeliveryFee
	}

	tax := subtotal.Mul(p.TaxRate).Round(2)

	return CartSnapshot{
		Lines:       lines,
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
		Currency:    p.Currency,
	}
}
