// Package app wires the storefront client together: API client, token store,
// state store and the feature services that drive it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/admin"
	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/state"
	"storefront/internal/store"
)

// App is a running storefront client.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	client *api.Client
	tokens store.TokenStore
	store  *state.Store[State]

	Auth    *auth.Service
	Catalog *catalog.Service
	Cart    *cart.Service
}

type options struct {
	tokens     store.TokenStore
	httpClient *http.Client
}

// Option customizes New.
type Option func(*options)

// WithTokenStore uses ts instead of opening the configured backend. The App
// takes ownership and closes it.
func WithTokenStore(ts store.TokenStore) Option {
	return func(o *options) { o.tokens = ts }
}

// WithHTTPClient replaces the API transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds the client from cfg and loads the persisted token into state.
// The token is not trusted until Bootstrap confirms it with a profile fetch.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithHTTPClient(o.httpClient),
		api.WithTimeout(cfg.GetAPITimeout()),
		api.WithLogger(logger.Named("api")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	tokens := o.tokens
	if tokens == nil {
		tokens, err = store.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %w", err)
		}
	}

	q := catalog.NewQuery(
		cfg.Catalog.PageSize,
		decimal.NewFromFloat(cfg.Catalog.PriceMin),
		decimal.NewFromFloat(cfg.Catalog.PriceMax),
		cfg.Catalog.Locale,
	)

	a := &App{cfg: cfg, logger: logger, client: client, tokens: tokens}
	a.store = state.NewStore(NewState(q), Reduce, a.trace)
	dispatch := func(act state.Action) { a.store.Dispatch(act) }

	a.Auth = auth.NewService(client, tokens, dispatch, func() auth.State { return a.store.State().Auth })
	a.Catalog = catalog.NewService(client, dispatch, func() catalog.State { return a.store.State().Catalog })
	a.Cart = cart.NewService(cart.PricingFromConfig(cfg.Pricing), dispatch, func() cart.State { return a.store.State().Cart })

	if err := a.Auth.Initialize(ctx); err != nil {
		logger.Warn("failed to read persisted token", zap.Error(err))
	}
	logging.Boot("Storefront client ready (api=%s, session=%s)", client.BaseURL(), cfg.Session.Backend)
	return a, nil
}

func (a *App) trace(act state.Action, before, after State) {
	if ce := a.logger.Check(zap.DebugLevel, "dispatch"); ce != nil {
		ce.Write(
			zap.String("action", act.ActionName()),
			zap.Bool("authenticated", after.Auth.Authenticated),
			zap.String("auth_phase", string(after.Auth.Phase)),
			zap.Int("cart_lines", after.Cart.Cart.Len()),
		)
	}
	logging.StoreDebug("dispatch %s", act.ActionName())
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config { return a.cfg }

// State returns the current state snapshot.
func (a *App) State() State { return a.store.State() }

// Subscribe streams states after every dispatch, newest-wins.
func (a *App) Subscribe() (<-chan State, func()) { return a.store.Subscribe() }

// Bootstrap loads the catalog and confirms the persisted token concurrently.
// Failures land in the owning slice's state; only cancellation is returned.
func (a *App) Bootstrap(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := a.Catalog.Load(ctx); err != nil {
			a.logger.Warn("catalog load failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := a.Auth.FetchProfile(ctx); err != nil {
			a.logger.Info("session not restored", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()
	return ctx.Err()
}

// StartCheckout opens a checkout over the current cart, prefilled from the
// profile. A session is required.
func (a *App) StartCheckout() (*checkout.Wizard, error) {
	st := a.State()
	if err := auth.RequireAuth(st.Auth); err != nil {
		return nil, err
	}
	w, err := checkout.New(st.Cart.Cart, a.Cart.Pricing())
	if err != nil {
		return nil, err
	}
	if st.Auth.User != nil {
		w.Prefill(*st.Auth.User)
	}
	return w, nil
}

// PlaceOrder places the order from the review step and empties the cart.
func (a *App) PlaceOrder(w *checkout.Wizard) (checkout.OrderConfirmation, error) {
	receipt, err := w.PlaceOrder()
	if err != nil {
		return checkout.OrderConfirmation{}, err
	}
	a.Cart.Clear()
	return receipt, nil
}

// AdminSummary computes dashboard figures over the loaded catalog.
func (a *App) AdminSummary() (admin.Summary, error) {
	st := a.State()
	if err := auth.RequireAdmin(st.Auth); err != nil {
		return admin.Summary{}, err
	}
	return admin.Summarize(st.Catalog.Products()), nil
}

// Close releases the token store.
func (a *App) Close() error {
	var errs []error
	if err := a.tokens.Close(); err != nil && !errors.Is(err, store.ErrClosed) {
		errs = append(errs, fmt.Errorf("close token store: %w", err))
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
