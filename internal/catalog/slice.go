package catalog

import (
	"storefront/internal/state"
	"storefront/internal/types"
)

// State is the products slice.
type State struct {
	List     state.Op[[]types.Product]
	Selected state.Op[types.Product]
	Query    Query
}

// NewState returns an idle slice with query q.
func NewState(q Query) State {
	return State{
		List:     state.Idle[[]types.Product](),
		Selected: state.Idle[types.Product](),
		Query:    q,
	}
}

// Products returns the loaded list, or an empty slice while loading or
// after a failure.
func (s State) Products() []types.Product {
	return s.List.ValueOr([]types.Product{})
}

// Visible derives the current page.
func (s State) Visible() Page {
	return View(s.Products(), s.Query)
}

// =============================================================================
// ACTIONS
// =============================================================================

type ListRequested struct{ RequestID string }
type ListLoaded struct {
	RequestID string
	Products  []types.Product
}
type ListFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}

type DetailRequested struct {
	RequestID string
	ID        int64
}
type DetailLoaded struct {
	RequestID string
	Product   types.Product
}
type DetailFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}
type SelectionCleared struct{}

type FiltersChanged struct{ Filters Filters }
type SortChanged struct{ Sort SortKey }
type SearchChanged struct{ Term string }
type PageChanged struct{ Page int }

func (ListRequested) ActionName() string    { return "catalog/listRequested" }
func (ListLoaded) ActionName() string       { return "catalog/listLoaded" }
func (ListFailed) ActionName() string       { return "catalog/listFailed" }
func (DetailRequested) ActionName() string  { return "catalog/detailRequested" }
func (DetailLoaded) ActionName() string     { return "catalog/detailLoaded" }
func (DetailFailed) ActionName() string     { return "catalog/detailFailed" }
func (SelectionCleared) ActionName() string { return "catalog/selectionCleared" }
func (FiltersChanged) ActionName() string   { return "catalog/filtersChanged" }
func (SortChanged) ActionName() string      { return "catalog/sortChanged" }
func (SearchChanged) ActionName() string    { return "catalog/searchChanged" }
func (PageChanged) ActionName() string      { return "catalog/pageChanged" }

// Reduce applies a catalog action. Unknown actions return s unchanged.
// Responses whose request is no longer the pending one are dropped.
func Reduce(s State, a state.Action) State {
	switch a := a.(type) {
	case ListRequested:
		s.List = state.Pending[[]types.Product](a.RequestID)
	case ListLoaded:
		if s.List.Accepts(a.RequestID) {
			products := a.Products
			if products == nil {
				products = []types.Product{}
			}
			s.List = state.Succeeded(products)
		}
	case ListFailed:
		if s.List.Accepts(a.RequestID) {
			s.List = state.Failed[[]types.Product](a.Kind, a.Message)
		}

	case DetailRequested:
		s.Selected = state.Pending[types.Product](a.RequestID)
	case DetailLoaded:
		if s.Selected.Accepts(a.RequestID) {
			s.Selected = state.Succeeded(a.Product)
		}
	case DetailFailed:
		if s.Selected.Accepts(a.RequestID) {
			s.Selected = state.Failed[types.Product](a.Kind, a.Message)
		}
	case SelectionCleared:
		s.Selected = state.Idle[types.Product]()

	case FiltersChanged:
		s.Query = s.Query.WithFilters(a.Filters)
	case SortChanged:
		s.Query = s.Query.WithSort(a.Sort)
	case SearchChanged:
		s.Query = s.Query.WithSearch(a.Term)
	case PageChanged:
		s.Query = s.Query.WithPage(a.Page)
	}
	return s
}
