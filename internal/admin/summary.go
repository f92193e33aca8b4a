// Package admin computes the inventory figures shown on the admin dashboard.
package admin

import (
	"slices"

	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/types"
)

// LowStockThreshold is the exclusive upper bound for a low-stock product.
const LowStockThreshold = 10

// Summary holds the dashboard counters.
type Summary struct {
	Products       int
	Categories     int
	OutOfStock     int
	LowStock       int
	InventoryValue decimal.Decimal
}

// IsLowStock reports 0 < stock < LowStockThreshold.
func IsLowStock(p types.Product) bool {
	return p.StockQuantity > 0 && p.StockQuantity < LowStockThreshold
}

// Summarize counts products and values the stock on hand.
func Summarize(products []types.Product) Summary {
	sum := Summary{
		Products:       len(products),
		Categories:     len(catalog.Categories(products)),
		InventoryValue: decimal.Zero,
	}
	for _, p := range products {
		switch {
		case p.StockQuantity <= 0:
			sum.OutOfStock++
		case IsLowStock(p):
			sum.LowStock++
		}
		if p.StockQuantity > 0 {
			sum.InventoryValue = sum.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity))))
		}
	}
	return sum
}

// LowStock returns the low-stock products, fewest units first. Ties keep
// catalog order.
func LowStock(products []types.Product) []types.Product {
	out := make([]types.Product, 0)
	for _, p := range products {
		if IsLowStock(p) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b types.Product) int {
		return a.StockQuantity - b.StockQuantity
	})
	return out
}
