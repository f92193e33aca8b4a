package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/cart"
	"storefront/internal/checkout"
)

var paymentMethods = []checkout.PaymentMethod{checkout.PaymentCredit, checkout.PaymentDebit, checkout.PaymentPayPal}

func methodLabel(m checkout.PaymentMethod) string {
	switch m {
	case checkout.PaymentCredit:
		return "Credit Card"
	case checkout.PaymentDebit:
		return "Debit Card"
	case checkout.PaymentPayPal:
		return "PayPal"
	}
	return string(m)
}

type checkoutPage struct {
	wizard   *checkout.Wizard
	shipping Form
	payment  Form
	method   checkout.PaymentMethod
	receipt  *checkout.OrderConfirmation
}

func newCheckoutPage(w *checkout.Wizard) checkoutPage {
	ship := NewForm(
		FieldSpec{Key: "firstName", Label: "First name"},
		FieldSpec{Key: "lastName", Label: "Last name"},
		FieldSpec{Key: "email", Label: "Email"},
		FieldSpec{Key: "phone", Label: "Phone"},
		FieldSpec{Key: "address", Label: "Address"},
		FieldSpec{Key: "city", Label: "City"},
		FieldSpec{Key: "state", Label: "State"},
		FieldSpec{Key: "zipCode", Label: "ZIP code", CharLimit: 12},
		FieldSpec{Key: "country", Label: "Country"},
	)
	d := w.Draft().Shipping
	ship.SetValue("firstName", d.FirstName)
	ship.SetValue("lastName", d.LastName)
	ship.SetValue("email", d.Email)
	ship.SetValue("phone", d.Phone)
	ship.SetValue("address", d.Address)
	ship.SetValue("city", d.City)
	ship.SetValue("state", d.State)
	ship.SetValue("zipCode", d.ZipCode)
	ship.SetValue("country", d.Country)

	pay := NewForm(
		FieldSpec{Key: "cardNumber", Label: "Card number", Placeholder: "1234 5678 9012 3456", CharLimit: 23},
		FieldSpec{Key: "cardName", Label: "Name on card"},
		FieldSpec{Key: "expiryDate", Label: "Expiry", Placeholder: "MM/YY", CharLimit: 5},
		FieldSpec{Key: "cvv", Label: "CVV", Placeholder: "123", Secret: true, CharLimit: 4},
	)
	pay.Blur()

	return checkoutPage{
		wizard:   w,
		shipping: ship,
		payment:  pay,
		method:   w.Draft().PaymentMethod,
	}
}

func (c checkoutPage) capturing() bool {
	if c.wizard == nil {
		return false
	}
	step := c.wizard.Step()
	return step == checkout.StepShipping || step == checkout.StepPayment
}

func (c checkoutPage) help() string {
	if c.wizard == nil {
		return "c cart • p products • q quit"
	}
	switch c.wizard.Step() {
	case checkout.StepShipping:
		return "tab next field • enter continue • esc cancel checkout"
	case checkout.StepPayment:
		return "tab next field • ctrl+t payment method • enter review • esc back"
	case checkout.StepReview:
		return "enter place order • esc back"
	}
	return "enter continue shopping • q quit"
}

func (c checkoutPage) shippingInfo() checkout.ShippingInfo {
	f := c.shipping
	return checkout.ShippingInfo{
		FirstName: f.Value("firstName"),
		LastName:  f.Value("lastName"),
		Email:     f.Value("email"),
		Phone:     f.Value("phone"),
		Address:   f.Value("address"),
		City:      f.Value("city"),
		State:     f.Value("state"),
		ZipCode:   f.Value("zipCode"),
		Country:   f.Value("country"),
	}
}

func (c checkoutPage) paymentInfo() checkout.PaymentInfo {
	f := c.payment
	return checkout.PaymentInfo{
		CardNumber: f.Value("cardNumber"),
		CardName:   f.Value("cardName"),
		ExpiryDate: f.Value("expiryDate"),
		CVV:        f.Value("cvv"),
	}
}

// advance moves the wizard forward, putting validation messages on form.
func (m *Model) advance(form *Form) tea.Cmd {
	err := m.checkout.wizard.Next()
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		form.SetErrors(verr.Fields)
		m.status = "Please fill in all required fields"
		m.statusErr = true
		return nil
	case err != nil:
		m.fail(err)
		return nil
	}
	form.SetErrors(nil)
	form.Blur()
	m.status = ""
	if m.checkout.wizard.Step() == checkout.StepPayment {
		return m.checkout.payment.FocusIndex(0)
	}
	return nil
}

func (m *Model) checkoutKey(k tea.KeyMsg) tea.Cmd {
	c := &m.checkout
	if c.wizard == nil {
		return nil
	}
	w := c.wizard

	switch w.Step() {
	case checkout.StepShipping:
		switch k.String() {
		case "esc":
			w.Abandon()
			c.wizard = nil
			m.page = PageCart
			m.notify("Checkout cancelled")
			return nil
		case "enter":
			if err := w.SetShipping(c.shippingInfo()); err != nil {
				m.fail(err)
				return nil
			}
			return m.advance(&c.shipping)
		}
		return c.shipping.Update(k)

	case checkout.StepPayment:
		switch k.String() {
		case "esc":
			_ = w.SetPayment(c.method, c.paymentInfo())
			_ = w.Back()
			c.payment.Blur()
			return c.shipping.FocusIndex(0)
		case "ctrl+t":
			c.method = nextOf(paymentMethods, c.method)
			return nil
		case "enter":
			if err := w.SetPayment(c.method, c.paymentInfo()); err != nil {
				m.fail(err)
				return nil
			}
			return m.advance(&c.payment)
		}
		return c.payment.Update(k)

	case checkout.StepReview:
		switch k.String() {
		case "esc":
			_ = w.Back()
			return c.payment.FocusIndex(0)
		case "enter":
			receipt, err := m.app.PlaceOrder(w)
			if err != nil {
				m.fail(err)
				return nil
			}
			c.receipt = &receipt
			m.state = m.app.State()
			m.notify("Order placed successfully!")
		}

	case checkout.StepPlaced:
		switch k.String() {
		case "enter", "esc":
			m.checkout = checkoutPage{}
			m.page = PageCatalog
		}
	}
	return nil
}

func (m Model) stepsView(cur checkout.Step) string {
	parts := make([]string, 0, len(checkout.Steps))
	for i, st := range checkout.Steps {
		label := fmt.Sprintf("%d. %s", i+1, st)
		switch {
		case st == cur:
			parts = append(parts, m.styles.TabOn.Render(label))
		case st < cur:
			parts = append(parts, m.styles.Success.Render("✓ "+st.String()))
		default:
			parts = append(parts, m.styles.TabOff.Render(label))
		}
	}
	return strings.Join(parts, m.styles.Muted.Render(" › "))
}

func (m Model) checkoutView() string {
	c := m.checkout
	s := m.styles
	if c.wizard == nil {
		return s.Muted.Render("No checkout in progress.")
	}
	var sb strings.Builder
	sb.WriteString(s.Title.Render("Checkout"))
	sb.WriteString("\n")
	step := c.wizard.Step()
	if step != checkout.StepPlaced {
		sb.WriteString(m.stepsView(step))
		sb.WriteString("\n\n")
	}

	switch step {
	case checkout.StepShipping:
		sb.WriteString(s.Subtitle.Render(step.String()))
		sb.WriteString("\n")
		sb.WriteString(c.shipping.View(s))
	case checkout.StepPayment:
		sb.WriteString(s.Subtitle.Render(step.String()))
		sb.WriteString("\n")
		sb.WriteString(s.Label.Render("Method"))
		sb.WriteString(s.Bold.Render(methodLabel(c.method)))
		sb.WriteString("\n")
		sb.WriteString(c.payment.View(s))
	case checkout.StepReview:
		d := c.wizard.Draft()
		sh := d.Shipping
		sb.WriteString(s.Bold.Render("Ship to"))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s %s\n%s\n%s, %s %s\n%s\n", sh.FirstName, sh.LastName, sh.Address, sh.City, sh.State, sh.ZipCode, sh.Country))
		sb.WriteString("\n")
		sb.WriteString(s.Bold.Render("Payment"))
		sb.WriteString("\n")
		sb.WriteString(methodLabel(d.PaymentMethod))
		if n := d.Payment.CardNumber; len(n) >= 4 {
			sb.WriteString(" ending " + n[len(n)-4:])
		}
		sb.WriteString("\n\n")
		sb.WriteString(CartTable(c.wizard.Lines(), -1, s))
		sb.WriteString("\n")
		sb.WriteString(TotalsView(c.wizard.Totals(), m.app.Cart.Pricing(), s))
	case checkout.StepPlaced:
		if c.receipt == nil {
			break
		}
		r := c.receipt
		sb.WriteString(s.Success.Render("Thank you! Your order has been placed."))
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf("Order reference: %s\n", s.Bold.Render(r.Reference)))
		sb.WriteString(fmt.Sprintf("Items: %d\n", len(r.Lines)))
		sb.WriteString(fmt.Sprintf("Total charged: %s\n", s.Price.Render(cart.FormatMoney(r.Totals.Total))))
		sb.WriteString(fmt.Sprintf("Paid with: %s\n", methodLabel(r.Method)))
	}
	return sb.String()
}
