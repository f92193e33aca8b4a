package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"storefront/internal/admin"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/types"
)

// Stars renders a 0-5 rating as filled and empty stars, rounding halves up.
func Stars(rating float64) string {
	n := int(rating + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// StockLabel describes availability the way the product page does.
func StockLabel(p types.Product) string {
	if p.InStock() {
		return fmt.Sprintf("In Stock (%d available)", p.StockQuantity)
	}
	return "Out of Stock"
}

// ProductTable renders one catalog page. An empty page renders a hint.
func ProductTable(page catalog.Page, styles Styles) string {
	if len(page.Items) == 0 {
		return styles.Muted.Render("No products found. Try adjusting your filters.") + "\n"
	}
	t := NewSimpleTable("", []string{"ID", "Name", "Category", "Brand", "Price", "Rating", "Stock"})
	t.AlignRight(0, 4, 6)
	for _, p := range page.Items {
		t.AddRow(
			strconv.FormatInt(p.ID, 10),
			truncate(p.Name, 32),
			p.Category,
			p.Brand,
			cart.FormatMoney(p.Price),
			fmt.Sprintf("%s %.1f", Stars(p.Rating), p.Rating),
			strconv.Itoa(p.StockQuantity),
		)
	}
	return t.View(styles) + PageFooter(page, styles) + "\n"
}

// PageFooter renders "Page 2 of 5 (54 products)".
func PageFooter(page catalog.Page, styles Styles) string {
	if page.PageCount == 0 {
		return styles.Muted.Render("0 products")
	}
	return styles.Muted.Render(fmt.Sprintf("Page %d of %d (%d products)", page.Page, page.PageCount, page.Total))
}

// RenderMarkdown renders a product description. Rendering problems fall back
// to the raw text.
func RenderMarkdown(md string, width int, theme Theme) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	style := "light"
	if theme.IsDark {
		style = "dark"
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// ProductDetail renders the product page body.
func ProductDetail(p types.Product, styles Styles, width int) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(p.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Price.Render(cart.FormatMoney(p.Price)))
	sb.WriteString("\n\n")

	meta := []string{}
	if p.Brand != "" {
		meta = append(meta, "Brand: "+p.Brand)
	}
	if p.Category != "" {
		meta = append(meta, "Category: "+p.Category)
	}
	if p.SKU != "" {
		meta = append(meta, "SKU: "+p.SKU)
	}
	if len(meta) > 0 {
		sb.WriteString(styles.Muted.Render(strings.Join(meta, "  ·  ")))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("%s %.1f (%d reviews)\n", Stars(p.Rating), p.Rating, p.ReviewCount))
	if p.InStock() {
		sb.WriteString(styles.Success.Render(StockLabel(p)))
	} else {
		sb.WriteString(styles.Error.Render(StockLabel(p)))
	}
	sb.WriteString("\n")

	if desc := RenderMarkdown(p.Description, width, styles.Theme); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}
	return sb.String()
}

// CartTable renders the cart lines. The cursor row, if in range, is marked.
func CartTable(lines []types.CartLineItem, cursor int, styles Styles) string {
	if len(lines) == 0 {
		return styles.Muted.Render("Your cart is empty.") + "\n"
	}
	t := NewSimpleTable("", []string{"", "Product", "Price", "Qty", "Total"})
	t.AlignRight(2, 3, 4)
	for i, l := range lines {
		mark := " "
		if i == cursor {
			mark = styles.Selected.Render("›")
		}
		t.AddRow(mark, truncate(l.Name, 32), cart.FormatMoney(l.Price), strconv.Itoa(l.Quantity), cart.FormatMoney(l.LineTotal()))
	}
	return t.View(styles)
}

// TotalsView renders the order summary with the free-shipping hint.
func TotalsView(t cart.Totals, p cart.Pricing, styles Styles) string {
	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("%-16s %10s\n", label, value))
	}
	row("Subtotal", cart.FormatMoney(t.Subtotal))
	row(fmt.Sprintf("Tax (%s%%)", p.TaxRate.Shift(2).String()), cart.FormatMoney(t.Tax))
	if t.Shipping.IsZero() {
		row("Shipping", "FREE")
	} else {
		row("Shipping", cart.FormatMoney(t.Shipping))
	}
	sb.WriteString(styles.RenderDivider(27))
	sb.WriteString("\n")
	sb.WriteString(styles.Bold.Render(fmt.Sprintf("%-16s %10s", "Total", cart.FormatMoney(t.Total))))
	sb.WriteString("\n")
	if gap := p.FreeShippingGap(t.Subtotal); gap.IsPositive() {
		sb.WriteString(styles.Info.Render(fmt.Sprintf("Add %s more for free shipping!", cart.FormatMoney(gap))))
		sb.WriteString("\n")
	}
	return sb.String()
}

// SummaryView renders the admin dashboard.
func SummaryView(sum admin.Summary, low []types.Product, styles Styles) string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Admin Dashboard"))
	sb.WriteString("\n")
	stat := func(label string, v string) {
		sb.WriteString(fmt.Sprintf("%-18s %s\n", label, styles.Bold.Render(v)))
	}
	stat("Products", strconv.Itoa(sum.Products))
	stat("Categories", strconv.Itoa(sum.Categories))
	stat("Out of stock", strconv.Itoa(sum.OutOfStock))
	stat("Low stock", strconv.Itoa(sum.LowStock))
	stat("Inventory value", cart.FormatMoney(sum.InventoryValue))
	sb.WriteString("\n")

	if len(low) == 0 {
		sb.WriteString(styles.Muted.Render("No low-stock products."))
		sb.WriteString("\n")
		return sb.String()
	}
	t := NewSimpleTable(fmt.Sprintf("Low stock (< %d)", admin.LowStockThreshold), []string{"ID", "Name", "Stock"})
	t.AlignRight(0, 2)
	for _, p := range low {
		t.AddRow(strconv.FormatInt(p.ID, 10), truncate(p.Name, 32), strconv.Itoa(p.StockQuantity))
	}
	sb.WriteString(t.View(styles))
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
