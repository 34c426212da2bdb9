package lineitems

import "github.com/shopspring/decimal"

// Totals are the derived amounts of a document.
// Subtotal == sum(Amount) and Total == Subtotal - Discount + Tax.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums the amounts of items.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// ComputeTotals derives document totals from items, an absolute discount and
// an absolute tax amount. Negative discount or tax are treated as zero and
// the discount is capped at the subtotal so the total never goes negative.
func ComputeTotals(items []LineItem, discount, tax decimal.Decimal) Totals {
	sub := Subtotal(items)
	disc := capDiscount(nonNegative(discount).RoundBank(Places), sub)
	tx := nonNegative(tax).RoundBank(Places)
	return Totals{
		Subtotal: sub,
		Discount: disc,
		Tax:      tx,
		Total:    sub.Sub(disc).Add(tx),
	}
}

// ComputeTaxedTotals is ComputeTotals with the tax derived from a rate
// (0.20 for 20%) applied to the discounted subtotal.
func ComputeTaxedTotals(items []LineItem, discount, taxRate decimal.Decimal) Totals {
	sub := Subtotal(items)
	disc := capDiscount(nonNegative(discount).RoundBank(Places), sub)
	tax := sub.Sub(disc).Mul(nonNegative(taxRate)).RoundBank(Places)
	return ComputeTotals(items, disc, tax)
}

func capDiscount(discount, subtotal decimal.Decimal) decimal.Decimal {
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
