// Package catalog derives the visible product page from a fetched product
// list and holds the products slice of application state.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/types"
)

// DefaultPageSize is the number of products shown per page.
const DefaultPageSize = 12

// SortKey selects the product ordering.
type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

// SortKeys lists the supported keys in menu order.
var SortKeys = []SortKey{SortName, SortPriceLow, SortPriceHigh, SortRating}

// ParseSortKey maps a user string to a key; unknown input falls back to name.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, k) {
		return k
	}
	return SortName
}

// Filters are the user-chosen predicates. Empty Category or Brand matches
// everything. Price bounds are inclusive.
type Filters struct {
	Category   string
	Brand      string
	PriceMin   decimal.Decimal
	PriceMax   decimal.Decimal
	SearchTerm string
}

// Searching reports whether a search term is active.
func (f Filters) Searching() bool {
	return strings.TrimSpace(f.SearchTerm) != ""
}

// Match reports whether p satisfies the category, brand and price predicates.
func (f Filters) Match(p types.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	return p.Price.GreaterThanOrEqual(f.PriceMin) && p.Price.LessThanOrEqual(f.PriceMax)
}

// Query is everything needed to derive one visible page.
type Query struct {
	Filters
	Sort     SortKey
	Page     int
	PageSize int
	// Locale is the BCP 47 tag used for name collation.
	Locale string
}

// NewQuery returns the initial query: no category or brand, the given price
// range, name order, first page.
func NewQuery(pageSize int, priceMin, priceMax decimal.Decimal, locale string) Query {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Query{
		Filters:  Filters{PriceMin: priceMin, PriceMax: priceMax},
		Sort:     SortName,
		Page:     1,
		PageSize: pageSize,
		Locale:   locale,
	}
}

// DefaultQuery is NewQuery with a page size of 12 and a price range of 0-100.
func DefaultQuery() Query {
	return NewQuery(DefaultPageSize, decimal.Zero, decimal.NewFromInt(100), "en")
}

// WithFilters replaces category, brand and price bounds and resets to page 1.
// The search term is kept.
func (q Query) WithFilters(f Filters) Query {
	term := q.SearchTerm
	q.Filters = f
	q.SearchTerm = term
	q.Page = 1
	return q
}

// WithSearch replaces the search term and resets to page 1.
func (q Query) WithSearch(term string) Query {
	q.SearchTerm = term
	q.Page = 1
	return q
}

// WithSort replaces the sort key and resets to page 1.
func (q Query) WithSort(k SortKey) Query {
	q.Sort = ParseSortKey(string(k))
	q.Page = 1
	return q
}

// WithPage moves to page p; values below 1 become 1.
func (q Query) WithPage(p int) Query {
	if p < 1 {
		p = 1
	}
	q.Page = p
	return q
}

// Page is one derived page of results.
type Page struct {
	Items     []types.Product
	Total     int // matches before paging
	Page      int
	PageSize  int
	PageCount int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.PageCount }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// View filters, sorts and pages products. It never fails: an empty source
// gives an empty page, and a page past the end gives an empty Items slice.
//
// When a search term is set the list is assumed to already be the server's
// search result, and the category, brand and price predicates are skipped.
func View(products []types.Product, q Query) Page {
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	matched := make([]types.Product, 0, len(products))
	if q.Searching() {
		matched = append(matched, products...)
	} else {
		for _, p := range products {
			if q.Match(p) {
				matched = append(matched, p)
			}
		}
	}

	SortProducts(matched, q.Sort, q.Locale)

	total := len(matched)
	out := Page{
		Items:     []types.Product{},
		Total:     total,
		Page:      page,
		PageSize:  size,
		PageCount: (total + size - 1) / size,
	}

	start := (page - 1) * size
	if start >= total {
		return out
	}
	end := min(start+size, total)
	out.Items = matched[start:end]
	return out
}

// SortProducts orders products in place. The sort is stable: ties keep
// their incoming order.
func SortProducts(products []types.Product, key SortKey, locale string) {
	switch ParseSortKey(string(key)) {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b types.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b types.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		slices.SortStableFunc(products, func(a, b types.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	default:
		col := newCollator(locale)
		slices.SortStableFunc(products, func(a, b types.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
}

func newCollator(locale string) *collate.Collator {
	tag := language.English
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return collate.New(tag)
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(products []types.Product) []string {
	return distinct(products, func(p types.Product) string { return p.Category })
}

// Brands returns the distinct non-empty brands, sorted.
func Brands(products []types.Product) []string {
	return distinct(products, func(p types.Product) string { return p.Brand })
}

func distinct(products []types.Product, field func(types.Product) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
