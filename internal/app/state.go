package app

import (
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/state"
)

// State is the whole client state: one slice per feature.
type State struct {
	Auth    auth.State
	Catalog catalog.State
	Cart    cart.State
}

// NewState returns the initial state for a catalog query.
func NewState(q catalog.Query) State {
	return State{
		Auth:    auth.NewState(),
		Catalog: catalog.NewState(q),
	}
}

// Reduce offers every action to every slice. Slices ignore actions they do
// not own.
func Reduce(s State, a state.Action) State {
	s.Auth = auth.Reduce(s.Auth, a)
	s.Catalog = catalog.Reduce(s.Catalog, a)
	s.Cart = cart.Reduce(s.Cart, a)
	return s
}
