package cart

import (
	"storefront/internal/state"
	"storefront/internal/types"
)

// State is the cart slice. LastError holds the most recent rejected
// mutation for one-time display.
type State struct {
	Cart      Cart
	LastError string
}

type ItemAdded struct{ Item types.CartLineItem }
type QuantityChanged struct {
	ProductID int64
	Quantity  int
}
type ItemRemoved struct{ ProductID int64 }
type Cleared struct{}
type ErrorCleared struct{}

func (ItemAdded) ActionName() string       { return "cart/itemAdded" }
func (QuantityChanged) ActionName() string { return "cart/quantityChanged" }
func (ItemRemoved) ActionName() string     { return "cart/itemRemoved" }
func (Cleared) ActionName() string         { return "cart/cleared" }
func (ErrorCleared) ActionName() string    { return "cart/errorCleared" }

// Reduce applies a cart action.
func Reduce(s State, a state.Action) State {
	switch a := a.(type) {
	case ItemAdded:
		s.Cart = s.Cart.Add(a.Item)
		s.LastError = ""
	case QuantityChanged:
		c, err := s.Cart.SetQuantity(a.ProductID, a.Quantity)
		if err != nil {
			s.LastError = err.Error()
			return s
		}
		s.Cart = c
		s.LastError = ""
	case ItemRemoved:
		s.Cart = s.Cart.Remove(a.ProductID)
	case Cleared:
		s.Cart = s.Cart.Clear()
		s.LastError = ""
	case ErrorCleared:
		s.LastError = ""
	}
	return s
}
