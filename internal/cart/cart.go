// Package cart holds the cart slice and the order totals calculator.
package cart

import (
	"errors"
	"slices"

	"storefront/internal/types"
)

// ErrInvalidQuantity is returned when a quantity below 1 is requested.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrNotInCart is returned when a product has no line in the cart.
var ErrNotInCart = errors.New("product not in cart")

// Cart is an ordered list of lines keyed by product ID. Cart values are
// immutable: every operation returns a new Cart.
type Cart struct {
	lines []types.CartLineItem
}

// New returns a cart holding lines. Lines with the same product are merged.
func New(lines ...types.CartLineItem) Cart {
	var c Cart
	for _, l := range lines {
		c = c.Add(l)
	}
	return c
}

// Lines returns a copy of the cart lines in insertion order.
func (c Cart) Lines() []types.CartLineItem {
	return slices.Clone(c.lines)
}

// Len returns the number of distinct products.
func (c Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Count returns the total number of units.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Line returns the line for productID.
func (c Cart) Line(productID int64) (types.CartLineItem, bool) {
	i := c.index(productID)
	if i < 0 {
		return types.CartLineItem{}, false
	}
	return c.lines[i], true
}

func (c Cart) index(productID int64) int {
	return slices.IndexFunc(c.lines, func(l types.CartLineItem) bool {
		return l.ProductID == productID
	})
}

// Add puts item in the cart. An existing line for the same product has its
// quantity increased and keeps its original price snapshot. A quantity
// below 1 counts as 1.
func (c Cart) Add(item types.CartLineItem) Cart {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	lines := slices.Clone(c.lines)
	if i := c.index(item.ProductID); i >= 0 {
		lines[i].Quantity += item.Quantity
	} else {
		lines = append(lines, item)
	}
	return Cart{lines: lines}
}

// SetQuantity replaces the quantity of an existing line.
func (c Cart) SetQuantity(productID int64, quantity int) (Cart, error) {
	if quantity < 1 {
		return c, ErrInvalidQuantity
	}
	i := c.index(productID)
	if i < 0 {
		return c, ErrNotInCart
	}
	lines := slices.Clone(c.lines)
	lines[i].Quantity = quantity
	return Cart{lines: lines}, nil
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (c Cart) Remove(productID int64) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	return Cart{lines: slices.Delete(slices.Clone(c.lines), i, i+1)}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Totals prices the cart with p.
func (c Cart) Totals(p Pricing) Totals {
	return p.Compute(c.lines)
}
