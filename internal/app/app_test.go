package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const productsJSON = `[
	{"id":1,"name":"Trail Shoe","price":40.00,"stockQuantity":3,"category":"Shoes","brand":"Acme","rating":4.5},
	{"id":2,"name":"Wool Sock","price":5.00,"stockQuantity":0,"category":"Socks","brand":"Acme","rating":4.0},
	{"id":3,"name":"Sun Hat","price":12.50,"stockQuantity":20,"category":"Hats","brand":"Brim","rating":3.5}
]`

// fakeAPI serves the product list and accepts only the "good" token.
func fakeAPI(t *testing.T, failProducts bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		if failProducts {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("/api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"email":"admin@shop.test","firstName":"Ada","lastName":"Min","role":"ADMIN","city":"Oslo"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Client().CloseIdleConnections()
		srv.Close()
	})
	return srv
}

func newTestApp(t *testing.T, srv *httptest.Server, tokens store.TokenStore) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = srv.URL

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t), WithTokenStore(tokens), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestBootstrap_RestoresSession(t *testing.T) {
	srv := fakeAPI(t, false)
	tokens := store.NewMemoryTokenStore()
	require.NoError(t, tokens.Save(context.Background(), "good"))

	a := newTestApp(t, srv, tokens)
	assert.False(t, a.State().Auth.Authenticated, "token is not trusted before the profile fetch")

	require.NoError(t, a.Bootstrap(context.Background()))

	st := a.State()
	assert.True(t, st.Auth.Authenticated)
	assert.Equal(t, "Ada Min", st.Auth.User.DisplayName())
	assert.Len(t, st.Catalog.Products(), 3)
	assert.Equal(t, 3, st.Catalog.Visible().Total)

	sum, err := a.AdminSummary()
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Products)
	assert.Equal(t, 1, sum.OutOfStock)
	assert.Equal(t, 1, sum.LowStock)
	assert.Equal(t, "370.00", sum.InventoryValue.StringFixed(2))
}

func TestBootstrap_ExpiredTokenAndCatalogFailureAreNotFatal(t *testing.T) {
	srv := fakeAPI(t, true)
	tokens := store.NewMemoryTokenStore()
	require.NoError(t, tokens.Save(context.Background(), "expired"))

	a := newTestApp(t, srv, tokens)
	require.NoError(t, a.Bootstrap(context.Background()))

	st := a.State()
	assert.Nil(t, st.Auth.Token)
	assert.False(t, st.Auth.Authenticated)
	assert.True(t, st.Catalog.List.IsFailed())
	assert.Empty(t, st.Catalog.Products())

	_, ok, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "rejected token is removed from storage")

	_, err = a.AdminSummary()
	assert.ErrorIs(t, err, auth.ErrLoginRequired)
}

func TestCheckoutFlow(t *testing.T) {
	srv := fakeAPI(t, false)
	tokens := store.NewMemoryTokenStore()
	require.NoError(t, tokens.Save(context.Background(), "good"))
	a := newTestApp(t, srv, tokens)
	require.NoError(t, a.Bootstrap(context.Background()))

	products := a.State().Catalog.Products()
	a.Cart.Add(products[0], 1)
	a.Cart.Add(products[2], 1)
	assert.Equal(t, "57.75", a.Cart.Totals().Total.StringFixed(2), "52.50 + 5.25 tax, free shipping")

	w, err := a.StartCheckout()
	require.NoError(t, err)
	assert.Equal(t, "Oslo", w.Draft().Shipping.City, "prefilled from profile")

	ship := w.Draft().Shipping
	ship.Address = "1 Main St"
	ship.State = "OS"
	ship.ZipCode = "0150"
	ship.Phone = "5551234567"
	require.NoError(t, w.SetShipping(ship))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetPayment(checkout.PaymentDebit, checkout.PaymentInfo{
		CardNumber: "4111111111111111", CardName: "Ada Min", ExpiryDate: "12/30", CVV: "123",
	}))
	require.NoError(t, w.Next())
	require.Equal(t, checkout.StepReview, w.Step())

	receipt, err := a.PlaceOrder(w)
	require.NoError(t, err)
	assert.Len(t, receipt.Reference, 8)
	assert.Equal(t, "57.75", receipt.Totals.Total.StringFixed(2))
	assert.True(t, a.State().Cart.Cart.IsEmpty())
}

func TestStartCheckout_Guards(t *testing.T) {
	srv := fakeAPI(t, false)
	a := newTestApp(t, srv, store.NewMemoryTokenStore())

	_, err := a.StartCheckout()
	assert.ErrorIs(t, err, auth.ErrLoginRequired)
}

func TestNew_OpensConfiguredStore(t *testing.T) {
	srv := fakeAPI(t, false)
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = srv.URL
	cfg.Session.Backend = config.BackendFile

	tokens := store.NewFileTokenStore(filepath.Join(cfg.DataDir, "session.json"))
	require.NoError(t, tokens.Save(context.Background(), "good"))

	a, err := New(context.Background(), cfg, nil, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "good", a.State().Auth.TokenValue())
}

func TestNew_RejectsBadURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "ftp://nope"
	_, err := New(context.Background(), cfg, nil, WithTokenStore(store.NewMemoryTokenStore()))
	assert.Error(t, err)
}
