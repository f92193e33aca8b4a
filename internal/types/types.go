// Package types provides the shared storefront data model used across packages.
// This package exists to break import cycles between api, catalog, cart and auth.
// Types in this package should be plain data structures with no behavior beyond
// small helpers.
package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG
// =============================================================================

// Product is a catalog entry as served by the remote API.
// The client never mutates a Product; it is replaced wholesale on every fetch.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category"`
	Brand         string          `json:"brand"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	SKU           string          `json:"sku,omitempty"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// =============================================================================
// CART
// =============================================================================

// CartLineItem is one product line in the cart. Price is a snapshot taken
// when the product was added and does not follow later catalog changes.
type CartLineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns price × quantity without rounding.
func (l CartLineItem) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineItemFor builds a single-unit cart line from a product.
func LineItemFor(p Product) CartLineItem {
	return CartLineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	}
}

// =============================================================================
// USERS
// =============================================================================

// Role is the account role assigned by the server.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the profile record returned by login, OTP verification and the
// profile endpoint. It is never persisted on the client.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        Role       `json:"role"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Country     string     `json:"country,omitempty"`
	ZipCode     string     `json:"zipCode,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Enabled     *bool      `json:"enabled,omitempty"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u User) IsAdmin() bool {
	return Role(strings.ToUpper(string(u.Role))) == RoleAdmin
}

// DisplayName returns "First Last", falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// ProfileUpdate carries the editable profile fields sent with PUT /api/auth/profile.
type ProfileUpdate struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	ZipCode     string `json:"zipCode"`
}

// ApplyTo merges the update into a copy of u.
func (p ProfileUpdate) ApplyTo(u User) User {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.PhoneNumber = p.PhoneNumber
	u.Address = p.Address
	u.City = p.City
	u.State = p.State
	u.Country = p.Country
	u.ZipCode = p.ZipCode
	return u
}

// Merge returns u with every non-zero field of o laid over it. Servers that
// answer an update with a partial user do not erase what the client knows.
func (u User) Merge(o User) User {
	if o.ID != 0 {
		u.ID = o.ID
	}
	if o.Role != "" {
		u.Role = o.Role
	}
	if o.CreatedAt != nil {
		u.CreatedAt = o.CreatedAt
	}
	if o.Enabled != nil {
		u.Enabled = o.Enabled
	}
	for _, f := range []struct{ dst, src *string }{
		{&u.Email, &o.Email},
		{&u.FirstName, &o.FirstName},
		{&u.LastName, &o.LastName},
		{&u.PhoneNumber, &o.PhoneNumber},
		{&u.Address, &o.Address},
		{&u.City, &o.City},
		{&u.State, &o.State},
		{&u.Country, &o.Country},
		{&u.ZipCode, &o.ZipCode},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	return u
}
