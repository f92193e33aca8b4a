package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/auth"
	"storefront/internal/checkout"
)

type cartPage struct {
	cursor int
}

func (m *Model) clampCartCursor() {
	n := m.state.Cart.Cart.Len()
	if m.cart.cursor >= n {
		m.cart.cursor = n - 1
	}
	if m.cart.cursor < 0 {
		m.cart.cursor = 0
	}
}

func (m *Model) cartKey(k tea.KeyMsg) tea.Cmd {
	lines := m.state.Cart.Cart.Lines()
	if len(lines) == 0 {
		return nil
	}
	m.clampCartCursor()
	line := lines[m.cart.cursor]

	switch k.String() {
	case "up", "k":
		if m.cart.cursor > 0 {
			m.cart.cursor--
		}
	case "down", "j":
		if m.cart.cursor < len(lines)-1 {
			m.cart.cursor++
		}
	case "+", "=", "right":
		_ = m.app.Cart.SetQuantity(line.ProductID, line.Quantity+1)
	case "-", "left":
		// a rejected change is reported through the cart state
		_ = m.app.Cart.SetQuantity(line.ProductID, line.Quantity-1)
	case "d", "delete":
		m.app.Cart.Remove(line.ProductID)
		m.notify("Removed " + line.Name)
	case "x":
		m.app.Cart.Clear()
		m.notify("Cart cleared")
	case "enter":
		return m.navigate(PageCheckout)
	}
	m.state = m.app.State()
	m.clampCartCursor()
	return nil
}

func (m Model) cartView() string {
	s := m.styles
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Shopping Cart"))
	sb.WriteString("\n")

	c := m.state.Cart.Cart
	if c.IsEmpty() {
		sb.WriteString(s.Muted.Render("Your cart is empty."))
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render("Press p to continue shopping."))
		return sb.String()
	}
	sb.WriteString(CartTable(c.Lines(), m.cart.cursor, s))
	sb.WriteString("\n")
	if msg := m.state.Cart.LastError; msg != "" {
		sb.WriteString(s.Warning.Render(msg))
		sb.WriteString("\n")
	}
	sb.WriteString(s.Card.Render(strings.TrimRight(TotalsView(m.app.Cart.Totals(), m.app.Cart.Pricing(), s), "\n")))
	return sb.String()
}

// startCheckout opens the wizard over the current cart.
func (m *Model) startCheckout() tea.Cmd {
	w, err := m.app.StartCheckout()
	switch {
	case errors.Is(err, auth.ErrLoginRequired):
		return m.requireLogin(PageCheckout)
	case errors.Is(err, checkout.ErrEmptyCart):
		m.page = PageCart
		m.status = "Your cart is empty"
		m.statusErr = true
		return nil
	case err != nil:
		m.page = PageCart
		m.fail(err)
		return nil
	}
	m.checkout = newCheckoutPage(w)
	return m.checkout.shipping.FocusIndex(0)
}
