// Package checkout implements the checkout wizard as a finite state machine:
// Shipping → Payment → Review → Placed. The wizard holds the draft (shipping
// address, payment method and card fields) and discards it when the order is
// placed or the wizard is abandoned. Placing an order is simulated; nothing
// leaves the process.
package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/cart"
	"storefront/internal/logging"
	"storefront/internal/types"
)

var (
	// ErrEmptyCart is returned when checkout starts with nothing to buy.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrWrongStep is returned when a transition is not valid from the current step.
	ErrWrongStep = errors.New("transition not allowed from current step")
	// ErrAbandoned is returned by any transition on an abandoned wizard.
	ErrAbandoned = errors.New("checkout abandoned")
)

// Step is a wizard state.
type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepReview
	StepPlaced
)

// String returns the step title shown to the user.
func (s Step) String() string {
	switch s {
	case StepShipping:
		return "Shipping Information"
	case StepPayment:
		return "Payment Method"
	case StepReview:
		return "Review & Confirm"
	case StepPlaced:
		return "Order Placed"
	default:
		return "Unknown"
	}
}

// Steps lists the user-facing steps in order.
var Steps = []Step{StepShipping, StepPayment, StepReview}

// PaymentMethod is the chosen way to pay.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentPayPal PaymentMethod = "paypal"
)

// ShippingInfo is the delivery address.
type ShippingInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
}

// PaymentInfo holds card fields. They are collected and then discarded.
type PaymentInfo struct {
	CardNumber string
	CardName   string
	ExpiryDate string
	CVV        string
}

// Draft is everything the user has entered so far.
type Draft struct {
	Shipping      ShippingInfo
	PaymentMethod PaymentMethod
	Payment       PaymentInfo
}

// NewDraft returns an empty draft with the country defaulted to US.
func NewDraft() Draft {
	return Draft{
		Shipping:      ShippingInfo{Country: "US"},
		PaymentMethod: PaymentCredit,
	}
}

// PrefillFrom copies known profile fields into empty shipping fields.
func (d Draft) PrefillFrom(u types.User) Draft {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&d.Shipping.FirstName, u.FirstName)
	fill(&d.Shipping.LastName, u.LastName)
	fill(&d.Shipping.Email, u.Email)
	fill(&d.Shipping.Phone, u.PhoneNumber)
	fill(&d.Shipping.Address, u.Address)
	fill(&d.Shipping.City, u.City)
	fill(&d.Shipping.State, u.State)
	fill(&d.Shipping.ZipCode, u.ZipCode)
	if u.Country != "" {
		d.Shipping.Country = u.Country
	}
	return d
}

// ValidationError lists the fields that block a transition, keyed by field
// name with a message each.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: missing %s", e.Step, strings.Join(names, ", "))
}

// ValidateShipping checks that every shipping field is filled in.
func ValidateShipping(s ShippingInfo) error {
	fields := map[string]string{}
	required(fields, "firstName", s.FirstName)
	required(fields, "lastName", s.LastName)
	required(fields, "email", s.Email)
	required(fields, "phone", s.Phone)
	required(fields, "address", s.Address)
	required(fields, "city", s.City)
	required(fields, "state", s.State)
	required(fields, "zipCode", s.ZipCode)
	required(fields, "country", s.Country)
	if len(fields) > 0 {
		return &ValidationError{Step: StepShipping, Fields: fields}
	}
	return nil
}

// ValidatePayment checks the payment method and card fields.
func ValidatePayment(method PaymentMethod, p PaymentInfo) error {
	fields := map[string]string{}
	switch method {
	case PaymentCredit, PaymentDebit, PaymentPayPal:
	default:
		fields["paymentMethod"] = "Select a payment method"
	}
	required(fields, "cardNumber", p.CardNumber)
	required(fields, "cardName", p.CardName)
	required(fields, "expiryDate", p.ExpiryDate)
	required(fields, "cvv", p.CVV)
	if len(fields) > 0 {
		return &ValidationError{Step: StepPayment, Fields: fields}
	}
	return nil
}

func required(fields map[string]string, name, v string) {
	if strings.TrimSpace(v) == "" {
		fields[name] = "Required"
	}
}

// OrderConfirmation is the receipt of a simulated order.
type OrderConfirmation struct {
	Reference string
	PlacedAt  time.Time
	Lines     []types.CartLineItem
	Totals    cart.Totals
	ShipTo    ShippingInfo
	Method    PaymentMethod
}

// Wizard is one checkout session. It is not safe for concurrent use.
type Wizard struct {
	step      Step
	draft     Draft
	lines     []types.CartLineItem
	pricing   cart.Pricing
	abandoned bool
	receipt   *OrderConfirmation
	now       func() time.Time
}

// New starts a wizard over the lines of c.
func New(c cart.Cart, pricing cart.Pricing) (*Wizard, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	logging.Checkout("Checkout started with %d lines", c.Len())
	return &Wizard{
		step:    StepShipping,
		draft:   NewDraft(),
		lines:   c.Lines(),
		pricing: pricing,
		now:     time.Now,
	}, nil
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Draft returns the current draft.
func (w *Wizard) Draft() Draft { return w.draft }

// Totals prices the lines being checked out.
func (w *Wizard) Totals() cart.Totals { return w.pricing.Compute(w.lines) }

// Lines returns the lines being checked out.
func (w *Wizard) Lines() []types.CartLineItem {
	out := make([]types.CartLineItem, len(w.lines))
	copy(out, w.lines)
	return out
}

// Receipt returns the confirmation once the order is placed.
func (w *Wizard) Receipt() (OrderConfirmation, bool) {
	if w.receipt == nil {
		return OrderConfirmation{}, false
	}
	return *w.receipt, true
}

// SetShipping replaces the shipping info. Allowed on the shipping step.
func (w *Wizard) SetShipping(s ShippingInfo) error {
	if err := w.require(StepShipping); err != nil {
		return err
	}
	w.draft.Shipping = s
	return nil
}

// SetPayment replaces the method and card fields. Allowed on the payment step.
func (w *Wizard) SetPayment(method PaymentMethod, p PaymentInfo) error {
	if err := w.require(StepPayment); err != nil {
		return err
	}
	w.draft.PaymentMethod = method
	w.draft.Payment = p
	return nil
}

// Prefill copies profile fields into empty shipping fields.
func (w *Wizard) Prefill(u types.User) {
	if w.step == StepShipping && !w.abandoned {
		w.draft = w.draft.PrefillFrom(u)
	}
}

func (w *Wizard) require(step Step) error {
	if w.abandoned {
		return ErrAbandoned
	}
	if w.step != step {
		return fmt.Errorf("%w: at %q, need %q", ErrWrongStep, w.step, step)
	}
	return nil
}

// Next advances one step if the current step is complete. From Review it
// places the order.
func (w *Wizard) Next() error {
	if w.abandoned {
		return ErrAbandoned
	}
	switch w.step {
	case StepShipping:
		if err := ValidateShipping(w.draft.Shipping); err != nil {
			return err
		}
		w.step = StepPayment
	case StepPayment:
		if err := ValidatePayment(w.draft.PaymentMethod, w.draft.Payment); err != nil {
			return err
		}
		w.step = StepReview
	case StepReview:
		_, err := w.PlaceOrder()
		return err
	default:
		return fmt.Errorf("%w: at %q", ErrWrongStep, w.step)
	}
	logging.Get(logging.CategoryCheckout).Debug("Checkout advanced to %s", w.step)
	return nil
}

// Back returns to the previous step. It is a no-op on the first step and
// not allowed once the order is placed.
func (w *Wizard) Back() error {
	if w.abandoned {
		return ErrAbandoned
	}
	switch w.step {
	case StepShipping:
		return nil
	case StepPlaced:
		return fmt.Errorf("%w: order already placed", ErrWrongStep)
	}
	w.step--
	return nil
}

// PlaceOrder simulates placing the order from the review step. The draft is
// discarded; the caller is responsible for clearing the cart.
func (w *Wizard) PlaceOrder() (OrderConfirmation, error) {
	if err := w.require(StepReview); err != nil {
		return OrderConfirmation{}, err
	}
	receipt := OrderConfirmation{
		Reference: strings.ToUpper(uuid.NewString()[:8]),
		PlacedAt:  w.now(),
		Lines:     w.Lines(),
		Totals:    w.Totals(),
		ShipTo:    w.draft.Shipping,
		Method:    w.draft.PaymentMethod,
	}
	w.receipt = &receipt
	w.draft = Draft{}
	w.step = StepPlaced

	logging.Checkout("Order %s placed: %d lines, total %s", receipt.Reference, len(receipt.Lines), cart.Format(receipt.Totals.Total))
	return receipt, nil
}

// Abandon discards the draft. Every later transition fails with ErrAbandoned.
func (w *Wizard) Abandon() {
	if w.step == StepPlaced {
		return
	}
	w.draft = Draft{}
	w.abandoned = true
	logging.Checkout("Checkout abandoned at %s", w.step)
}

// Abandoned reports whether the wizard was abandoned.
func (w *Wizard) Abandoned() bool { return w.abandoned }
