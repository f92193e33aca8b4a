package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/config"
)

const cliProducts = `[
	{"id":1,"name":"Trail Shoe","price":40.00,"stockQuantity":3,"category":"Shoes","brand":"Acme","rating":4.5},
	{"id":2,"name":"Wool Sock","price":5.00,"stockQuantity":0,"category":"Socks","brand":"Acme","rating":4.0},
	{"id":3,"name":"Sun Hat","price":12.50,"stockQuantity":20,"category":"Hats","brand":"Brim","rating":3.5}
]`

// withGlobals points the command globals at a throwaway config and api, and
// restores them afterwards.
func withGlobals(t *testing.T, url string) {
	t.Helper()
	old := struct {
		configPath, apiURL string
		ephemeral          bool
		timeout            time.Duration
		logger             *zap.Logger
	}{configPath, apiURL, ephemeral, timeout, logger}
	t.Cleanup(func() {
		configPath, apiURL, ephemeral, timeout, logger = old.configPath, old.apiURL, old.ephemeral, old.timeout, old.logger
	})

	t.Setenv("STOREFRONT_API_URL", "")
	t.Setenv("STOREFRONT_SESSION_BACKEND", "")
	t.Setenv("STOREFRONT_REDIS_URL", "")
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	apiURL = url
	ephemeral = true
	timeout = 5 * time.Second
	logger = zap.NewNop()
}

// captureCommand returns a command whose output lands in the buffer.
func captureCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func newCLIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cliProducts))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"t1","user":{"id":1,"email":"ada@shop.test","firstName":"Ada","lastName":"Min","role":"USER"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		in      string
		id      int64
		qty     int
		wantErr bool
	}{
		{in: "3", id: 3, qty: 1},
		{in: "3:2", id: 3, qty: 2},
		{in: " 7:10 ", id: 7, qty: 10},
		{in: "x", wantErr: true},
		{in: "3:0", wantErr: true},
		{in: "3:-1", wantErr: true},
		{in: "3:two", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, qty, err := parseItem(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.qty, qty)
		})
	}
}

func TestListFilters(t *testing.T) {
	defer func(c, b string, lo, hi float64) {
		listCategory, listBrand, listMin, listMax = c, b, lo, hi
	}(listCategory, listBrand, listMin, listMax)

	cfg := config.DefaultConfig()

	listCategory, listBrand, listMin, listMax = "", "", -1, -1
	f := listFilters(cfg)
	assert.True(t, f.PriceMin.Equal(decimal.Zero))
	assert.True(t, f.PriceMax.Equal(decimal.NewFromInt(100)))

	listCategory, listBrand, listMin, listMax = "Shoes", "Acme", 5, 45.5
	f = listFilters(cfg)
	assert.Equal(t, "Shoes", f.Category)
	assert.Equal(t, "Acme", f.Brand)
	assert.True(t, f.PriceMin.Equal(decimal.NewFromInt(5)))
	assert.True(t, f.PriceMax.Equal(decimal.RequireFromString("45.5")))
}

func TestConfigInitAndShow(t *testing.T) {
	withGlobals(t, "")
	defer func(v bool) { configForce = v }(configForce)
	configForce = false

	cmd, out := captureCommand()
	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, out.String(), "Wrote "+configPath)

	err := runConfigInit(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	configForce = true
	require.NoError(t, runConfigInit(cmd, nil))

	apiURL = "https://shop.example.com"
	cmd, out = captureCommand()
	require.NoError(t, runConfigShow(cmd, nil))
	assert.Contains(t, out.String(), "base_url: https://shop.example.com")
	assert.Contains(t, out.String(), "backend: memory")
}

func TestConfigShow_InvalidURL(t *testing.T) {
	withGlobals(t, "not a url")
	cmd, _ := captureCommand()
	assert.Error(t, runConfigShow(cmd, nil))
}

func TestProductsCommand(t *testing.T) {
	srv := newCLIServer(t)
	withGlobals(t, srv.URL)
	defer func(s, c, b, k string, lo, hi float64, p int) {
		listSearch, listCategory, listBrand, listSort, listMin, listMax, listPage = s, c, b, k, lo, hi, p
	}(listSearch, listCategory, listBrand, listSort, listMin, listMax, listPage)

	listSearch, listCategory, listBrand, listSort, listMin, listMax, listPage = "", "", "", "price-low", -1, 20, 1

	cmd, out := captureCommand()
	require.NoError(t, runProducts(cmd, nil))
	view := out.String()
	assert.Contains(t, view, "Sun Hat")
	assert.Contains(t, view, "Wool Sock")
	assert.NotContains(t, view, "Trail Shoe")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Wool Sock")), bytes.Index(out.Bytes(), []byte("Sun Hat")))
	assert.Contains(t, view, "Page 1 of 1 (2 products)")
}

func TestQuoteCommand(t *testing.T) {
	srv := newCLIServer(t)
	withGlobals(t, srv.URL)
	defer func(v []string) { quoteItems = v }(quoteItems)

	quoteItems = []string{"1:2", "3"}
	cmd, out := captureCommand()
	require.NoError(t, runQuote(cmd, nil))
	view := out.String()
	assert.Contains(t, view, "$92.50")
	assert.Contains(t, view, "$9.25")
	assert.Contains(t, view, "FREE")
	assert.Contains(t, view, "$101.75")

	quoteItems = []string{"99"}
	err := runQuote(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product 99 not found")

	quoteItems = []string{"1:0"}
	assert.Error(t, runQuote(cmd, nil))
}

func TestLoginCommand(t *testing.T) {
	srv := newCLIServer(t)
	withGlobals(t, srv.URL)
	defer func(e, p string) { authEmail, authPassword = e, p }(authEmail, authPassword)

	authEmail, authPassword = "ada@shop.test", "secret1"
	cmd, out := captureCommand()
	require.NoError(t, runLogin(cmd, nil))
	assert.Contains(t, out.String(), "Logged in as")

	authPassword = "wrong1"
	err := runLogin(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	authEmail = "not-an-email"
	assert.Error(t, runLogin(cmd, nil))
}

func TestAdminSummary_RequiresLogin(t *testing.T) {
	srv := newCLIServer(t)
	withGlobals(t, srv.URL)

	cmd, _ := captureCommand()
	err := runAdminSummary(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}
