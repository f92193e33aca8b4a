package ui

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/admin"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/types"
)

func TestStars(t *testing.T) {
	cases := map[float64]string{
		0:   "☆☆☆☆☆",
		2.4: "★★☆☆☆",
		2.5: "★★★☆☆",
		5:   "★★★★★",
		7:   "★★★★★",
		-1:  "☆☆☆☆☆",
	}
	for rating, want := range cases {
		if got := Stars(rating); got != want {
			t.Errorf("Stars(%v) = %q, want %q", rating, got, want)
		}
	}
}

func TestStockLabel(t *testing.T) {
	if got := StockLabel(types.Product{StockQuantity: 4}); got != "In Stock (4 available)" {
		t.Errorf("got %q", got)
	}
	if got := StockLabel(types.Product{}); got != "Out of Stock" {
		t.Errorf("got %q", got)
	}
}

func TestProductTable_Empty(t *testing.T) {
	view := ProductTable(catalog.Page{}, DefaultStyles())
	if !strings.Contains(view, "No products found") {
		t.Errorf("expected empty hint, got %q", view)
	}
}

func TestProductTable_Footer(t *testing.T) {
	page := catalog.Page{
		Items:     []types.Product{{ID: 9, Name: "Hat", Price: decimal.RequireFromString("12.5"), Rating: 4}},
		Total:     13,
		Page:      2,
		PageSize:  12,
		PageCount: 2,
	}
	view := ProductTable(page, DefaultStyles())
	for _, want := range []string{"Hat", "$12.50", "Page 2 of 2 (13 products)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTotalsView(t *testing.T) {
	pricing := cart.DefaultPricing()
	styles := DefaultStyles()

	small := pricing.Compute([]types.CartLineItem{{ProductID: 1, Price: decimal.RequireFromString("20"), Quantity: 1}})
	view := TotalsView(small, pricing, styles)
	for _, want := range []string{"Tax (10%)", "$2.00", "$10.00", "$32.00", "Add $30.00 more for free shipping!"} {
		if !strings.Contains(view, want) {
			t.Errorf("small cart view missing %q:\n%s", want, view)
		}
	}

	big := pricing.Compute([]types.CartLineItem{{ProductID: 1, Price: decimal.RequireFromString("60"), Quantity: 1}})
	view = TotalsView(big, pricing, styles)
	if !strings.Contains(view, "FREE") {
		t.Errorf("expected free shipping:\n%s", view)
	}
	if strings.Contains(view, "more for free shipping") {
		t.Errorf("no hint once shipping is free:\n%s", view)
	}
}

func TestCartTable_Cursor(t *testing.T) {
	lines := []types.CartLineItem{
		{ProductID: 1, Name: "Hat", Price: decimal.RequireFromString("5"), Quantity: 2},
		{ProductID: 2, Name: "Coat", Price: decimal.RequireFromString("50"), Quantity: 1},
	}
	view := CartTable(lines, 1, DefaultStyles())
	if strings.Count(view, "›") != 1 {
		t.Errorf("expected exactly one cursor mark:\n%s", view)
	}
	if !strings.Contains(view, "$10.00") {
		t.Errorf("expected line total:\n%s", view)
	}
	if got := CartTable(nil, 0, DefaultStyles()); !strings.Contains(got, "Your cart is empty.") {
		t.Errorf("got %q", got)
	}
}

func TestSummaryView(t *testing.T) {
	products := []types.Product{
		{ID: 1, Name: "Hat", Price: decimal.RequireFromString("10"), StockQuantity: 3, Category: "Hats"},
		{ID: 2, Name: "Coat", Price: decimal.RequireFromString("100"), StockQuantity: 50, Category: "Coats"},
	}
	view := SummaryView(admin.Summarize(products), admin.LowStock(products), DefaultStyles())
	for _, want := range []string{"Admin Dashboard", "$5030.00", "Low stock (< 10)", "Hat"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	view = SummaryView(admin.Summary{}, nil, DefaultStyles())
	if !strings.Contains(view, "No low-stock products.") {
		t.Errorf("expected empty low-stock hint:\n%s", view)
	}
}

func TestProductDetail(t *testing.T) {
	p := types.Product{
		Name: "Trail Shoe", Price: decimal.RequireFromString("40"), Brand: "Acme",
		Category: "Shoes", Rating: 4.5, ReviewCount: 12, Description: "Grippy shoe.",
	}
	view := ProductDetail(p, DefaultStyles(), 60)
	for _, want := range []string{"Trail Shoe", "$40.00", "Brand: Acme", "(12 reviews)", "Out of Stock", "Grippy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
