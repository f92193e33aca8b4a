package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/logging"
	"storefront/internal/state"
	"storefront/internal/types"
)

// Service applies cart edits through the store and prices the result.
type Service struct {
	pricing  Pricing
	dispatch func(state.Action)
	current  func() State
}

// NewService wires the cart to a dispatcher. current must return the latest
// cart slice.
func NewService(pricing Pricing, dispatch func(state.Action), current func() State) *Service {
	return &Service{pricing: pricing, dispatch: dispatch, current: current}
}

// Pricing returns the rates the service totals with.
func (s *Service) Pricing() Pricing { return s.pricing }

// Add puts quantity units of p in the cart at its current price.
func (s *Service) Add(p types.Product, quantity int) {
	item := types.LineItemFor(p)
	item.Quantity = quantity
	s.dispatch(ItemAdded{Item: item})
	logging.Cart("Added product %d (qty %d)", p.ID, item.Quantity)
}

// SetQuantity changes a line's quantity. The rejection reason, if any, is
// also left in State.LastError.
func (s *Service) SetQuantity(productID int64, quantity int) error {
	_, err := s.current().Cart.SetQuantity(productID, quantity)
	s.dispatch(QuantityChanged{ProductID: productID, Quantity: quantity})
	if err != nil {
		logging.Get(logging.CategoryCart).Warn("Quantity change rejected for %d: %v", productID, err)
	}
	return err
}

// Remove drops a line.
func (s *Service) Remove(productID int64) {
	s.dispatch(ItemRemoved{ProductID: productID})
}

// Clear empties the cart.
func (s *Service) Clear() {
	s.dispatch(Cleared{})
	logging.Cart("Cart cleared")
}

// Cart returns the current cart.
func (s *Service) Cart() Cart { return s.current().Cart }

// Totals prices the current cart.
func (s *Service) Totals() Totals {
	return s.current().Cart.Totals(s.pricing)
}

// FreeShippingGap is how much more must be spent for free shipping.
func (s *Service) FreeShippingGap() decimal.Decimal {
	return s.pricing.FreeShippingGap(s.Totals().Subtotal)
}
