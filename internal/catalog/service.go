package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/api"
	"storefront/internal/logging"
	"storefront/internal/state"
	"storefront/internal/types"
)

// ProductSource is the part of the API client the catalog needs.
type ProductSource interface {
	Products(ctx context.Context) ([]types.Product, error)
	SearchProducts(ctx context.Context, query string) ([]types.Product, error)
	Product(ctx context.Context, id int64) (types.Product, error)
}

// Service runs catalog fetches and feeds the results through the store.
type Service struct {
	src      ProductSource
	dispatch func(state.Action)
	current  func() State
}

// NewService wires a product source to a dispatcher. current must return the
// latest catalog slice.
func NewService(src ProductSource, dispatch func(state.Action), current func() State) *Service {
	return &Service{src: src, dispatch: dispatch, current: current}
}

// Load fetches the list for the current query: a server search when a search
// term is set, otherwise the full product list.
func (s *Service) Load(ctx context.Context) error {
	requestID := uuid.NewString()
	term := strings.TrimSpace(s.current().Query.SearchTerm)
	s.dispatch(ListRequested{RequestID: requestID})

	var (
		products []types.Product
		err      error
	)
	if term != "" {
		logging.Catalog("Searching products for %q", term)
		products, err = s.src.SearchProducts(ctx, term)
	} else {
		logging.CatalogDebug("Fetching product list")
		products, err = s.src.Products(ctx)
	}
	if err != nil {
		fallback := "Failed to fetch products"
		if term != "" {
			fallback = "Failed to search products"
		}
		logging.Get(logging.CategoryCatalog).Warn("%s: %v", fallback, err)
		s.dispatch(ListFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, fallback)})
		return err
	}

	logging.CatalogDebug("Loaded %d products", len(products))
	s.dispatch(ListLoaded{RequestID: requestID, Products: products})
	return nil
}

// LoadProduct fetches one product into the selection.
func (s *Service) LoadProduct(ctx context.Context, id int64) error {
	requestID := uuid.NewString()
	s.dispatch(DetailRequested{RequestID: requestID, ID: id})

	p, err := s.src.Product(ctx, id)
	if err != nil {
		s.dispatch(DetailFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "Failed to fetch product")})
		return err
	}
	s.dispatch(DetailLoaded{RequestID: requestID, Product: p})
	return nil
}

// SetSearch changes the search term and reloads. An empty term goes back to
// the full list.
func (s *Service) SetSearch(ctx context.Context, term string) error {
	s.dispatch(SearchChanged{Term: term})
	return s.Load(ctx)
}

// SetFilters changes category, brand and price bounds.
func (s *Service) SetFilters(f Filters) {
	s.dispatch(FiltersChanged{Filters: f})
}

// SetSort changes the ordering.
func (s *Service) SetSort(k SortKey) {
	s.dispatch(SortChanged{Sort: k})
}

// SetPage moves to page p.
func (s *Service) SetPage(p int) {
	s.dispatch(PageChanged{Page: p})
}

// ClearSelection drops the selected product.
func (s *Service) ClearSelection() {
	s.dispatch(SelectionCleared{})
}

// Visible derives the current page from the latest state.
func (s *Service) Visible() Page {
	return s.current().Visible()
}
