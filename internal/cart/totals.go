package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/types"
)

// Pricing holds the tax and shipping rules.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultPricing is 10% tax, free shipping strictly above 50, otherwise 10.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.10"),
		FreeShippingThreshold: decimal.NewFromInt(50),
		FlatShippingFee:       decimal.NewFromInt(10),
	}
}

// PricingFromConfig converts the configured rates. Floats from YAML are
// converted through their shortest decimal representation.
func PricingFromConfig(c config.PricingConfig) Pricing {
	return Pricing{
		TaxRate:               decimal.NewFromFloat(c.TaxRate),
		FreeShippingThreshold: decimal.NewFromFloat(c.FreeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(c.FlatShippingFee),
	}
}

// Totals is the priced cart. Values are exact; round only for display.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal sums price × quantity over lines.
func Subtotal(lines []types.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Shipping returns the fee for subtotal. Shipping is free only when the
// subtotal is strictly greater than the threshold.
func (p Pricing) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

// Compute prices lines.
func (p Pricing) Compute(lines []types.CartLineItem) Totals {
	subtotal := Subtotal(lines)
	tax := subtotal.Mul(p.TaxRate)
	shipping := p.Shipping(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// FreeShippingGap is how much more must be spent before shipping is free,
// or zero when it already is. At exactly the threshold the gap is zero even
// though the fee still applies, matching the "add $X more" hint.
func (p Pricing) FreeShippingGap(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(p.FreeShippingThreshold) {
		return p.FreeShippingThreshold.Sub(subtotal)
	}
	return decimal.Zero
}

// Format renders d with two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatMoney renders d as "$12.34".
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
