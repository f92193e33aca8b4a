package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/types"
)

func line(id int64, price string, qty int) types.CartLineItem {
	return types.CartLineItem{ProductID: id, Name: "p", Price: decimal.RequireFromString(price), Quantity: qty}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotals_Scenario(t *testing.T) {
	c := New(line(1, "20", 2), line(2, "5", 1))
	got := c.Totals(DefaultPricing())

	assert.Equal(t, "45.00", Format(got.Subtotal))
	assert.Equal(t, "4.50", Format(got.Tax))
	assert.Equal(t, "10.00", Format(got.Shipping))
	assert.Equal(t, "59.50", Format(got.Total))
}

func TestTotals_ShippingBoundary(t *testing.T) {
	p := DefaultPricing()
	tests := []struct {
		subtotal string
		shipping string
	}{
		{"0", "10"},
		{"49.99", "10"},
		{"50.00", "10"},
		{"50.01", "0"},
		{"120", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := New(line(1, tt.subtotal, 1)).Totals(p)
			assert.True(t, got.Shipping.Equal(dec(tt.shipping)), "subtotal %s: shipping %s", tt.subtotal, got.Shipping)
		})
	}
}

func TestTotals_EmptyCart(t *testing.T) {
	got := New().Totals(DefaultPricing())
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Shipping.Equal(dec("10")))
	assert.True(t, got.Total.Equal(dec("10")))
}

func TestTotals_NoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style accumulation must be exact.
	var lines []types.CartLineItem
	for i := int64(0); i < 30; i++ {
		lines = append(lines, line(i, "0.10", 1))
	}
	got := DefaultPricing().Compute(lines)
	assert.Equal(t, "3", got.Subtotal.String())
	assert.Equal(t, "0.3", got.Tax.String())
}

func TestProperty_TotalIsSumAndShippingRule(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	p := DefaultPricing()
	for round := 0; round < 500; round++ {
		var lines []types.CartLineItem
		for i := 0; i < r.Intn(6); i++ {
			lines = append(lines, line(int64(i), decimal.New(int64(r.Intn(4000)), -2).String(), 1+r.Intn(4)))
		}
		got := p.Compute(lines)
		require.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.Shipping)))
		require.Equal(t, got.Subtotal.GreaterThan(dec("50")), got.Shipping.IsZero(), "subtotal %s", got.Subtotal)
	}
}

func TestFreeShippingGap(t *testing.T) {
	p := DefaultPricing()
	assert.Equal(t, "5.00", Format(p.FreeShippingGap(dec("45"))))
	assert.True(t, p.FreeShippingGap(dec("50")).IsZero())
	assert.True(t, p.FreeShippingGap(dec("80")).IsZero())
}

func TestPricingFromConfig(t *testing.T) {
	p := PricingFromConfig(config.DefaultConfig().Pricing)
	assert.True(t, p.TaxRate.Equal(dec("0.1")))
	assert.True(t, p.FreeShippingThreshold.Equal(dec("50")))
	assert.True(t, p.FlatShippingFee.Equal(dec("10")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$59.50", FormatMoney(dec("59.5")))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "-$1.25", FormatMoney(dec("-1.25")))
	assert.Equal(t, "1.13", Format(dec("1.125")))
}

func TestCart_AddMergesByProduct(t *testing.T) {
	c := New()
	c = c.Add(line(1, "20", 1))
	c = c.Add(line(2, "5", 1))
	c = c.Add(line(1, "25", 2)) // later price is ignored

	require.Equal(t, 2, c.Len())
	l, ok := c.Line(1)
	require.True(t, ok)
	assert.Equal(t, 3, l.Quantity)
	assert.True(t, l.Price.Equal(dec("20")))
	assert.Equal(t, 4, c.Count())
	assert.Equal(t, []int64{1, 2}, []int64{c.Lines()[0].ProductID, c.Lines()[1].ProductID})
}

func TestCart_AddZeroQuantityCountsAsOne(t *testing.T) {
	c := New().Add(line(1, "1", 0))
	assert.Equal(t, 1, c.Count())
}

func TestCart_IsImmutable(t *testing.T) {
	orig := New(line(1, "20", 1))
	_ = orig.Add(line(1, "20", 5))
	_, _ = orig.SetQuantity(1, 9)
	_ = orig.Remove(1)

	l, _ := orig.Line(1)
	assert.Equal(t, 1, l.Quantity)

	lines := orig.Lines()
	lines[0].Quantity = 42
	l, _ = orig.Line(1)
	assert.Equal(t, 1, l.Quantity)
}

func TestCart_SetQuantity(t *testing.T) {
	c := New(line(1, "20", 1))

	c2, err := c.SetQuantity(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c2.Count())

	_, err = c.SetQuantity(1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = c.SetQuantity(7, 2)
	assert.ErrorIs(t, err, ErrNotInCart)
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := New(line(1, "20", 1), line(2, "5", 1), line(3, "1", 1))
	c = c.Remove(2).Remove(99)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Line(2)
	assert.False(t, ok)

	assert.True(t, c.Clear().IsEmpty())
}

func TestReduce(t *testing.T) {
	var s State
	s = Reduce(s, ItemAdded{Item: line(1, "20", 2)})
	s = Reduce(s, ItemAdded{Item: line(2, "5", 1)})
	assert.Equal(t, 3, s.Cart.Count())

	s = Reduce(s, QuantityChanged{ProductID: 1, Quantity: 0})
	assert.Equal(t, ErrInvalidQuantity.Error(), s.LastError)
	assert.Equal(t, 3, s.Cart.Count(), "rejected change leaves cart untouched")

	s = Reduce(s, ErrorCleared{})
	assert.Empty(t, s.LastError)

	s = Reduce(s, QuantityChanged{ProductID: 1, Quantity: 5})
	assert.Equal(t, 6, s.Cart.Count())

	s = Reduce(s, ItemRemoved{ProductID: 2})
	assert.Equal(t, 5, s.Cart.Count())

	s = Reduce(s, Cleared{})
	assert.True(t, s.Cart.IsEmpty())
}
