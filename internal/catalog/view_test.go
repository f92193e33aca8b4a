package catalog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/types"
)

func product(id int64, name, category, brand, price string, rating float64) types.Product {
	return types.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Brand:    brand,
		Price:    decimal.RequireFromString(price),
		Rating:   rating,
	}
}

func ids(products []types.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func sampleProducts() []types.Product {
	return []types.Product{
		product(1, "banana", "fruit", "acme", "3.00", 4.1),
		product(2, "Apple", "fruit", "orchard", "2.50", 4.8),
		product(3, "cherry", "fruit", "acme", "12.00", 3.9),
		product(4, "Drill", "tools", "bolt", "89.99", 4.8),
		product(5, "éclair", "bakery", "acme", "4.00", 4.5),
		product(6, "Saw", "tools", "bolt", "150.00", 4.0),
	}
}

// randomProducts builds a reproducible catalog with many ties.
func randomProducts(r *rand.Rand, n int) []types.Product {
	cats := []string{"a", "b", "c"}
	brands := []string{"x", "y"}
	out := make([]types.Product, n)
	for i := range out {
		out[i] = types.Product{
			ID:       int64(i + 1),
			Name:     fmt.Sprintf("item-%02d", r.Intn(20)),
			Category: cats[r.Intn(len(cats))],
			Brand:    brands[r.Intn(len(brands))],
			Price:    decimal.New(int64(r.Intn(15000)), -2),
			Rating:   float64(r.Intn(6)),
		}
	}
	return out
}

func TestView_EmptySource(t *testing.T) {
	page := View(nil, DefaultQuery())
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.PageCount)
}

func TestView_DefaultPriceRangeExcludesExpensive(t *testing.T) {
	page := View(sampleProducts(), DefaultQuery())
	assert.Equal(t, 5, page.Total)
	assert.NotContains(t, ids(page.Items), int64(6))
}

func TestView_NameSortIsLocaleAware(t *testing.T) {
	q := DefaultQuery()
	q.PriceMax = decimal.NewFromInt(1000)
	page := View(sampleProducts(), q)

	// Case and accents do not push capitalised or accented names to the edges.
	assert.Equal(t, []int64{2, 1, 3, 4, 5, 6}, ids(page.Items))
}

func TestView_SortKeys(t *testing.T) {
	q := DefaultQuery()
	q.PriceMax = decimal.NewFromInt(1000)

	q.Sort = SortPriceLow
	assert.Equal(t, []int64{2, 1, 5, 3, 4, 6}, ids(View(sampleProducts(), q).Items))

	q.Sort = SortPriceHigh
	assert.Equal(t, []int64{6, 4, 3, 5, 1, 2}, ids(View(sampleProducts(), q).Items))

	// 2 and 4 tie on rating and keep their source order.
	q.Sort = SortRating
	assert.Equal(t, []int64{2, 4, 5, 1, 6, 3}, ids(View(sampleProducts(), q).Items))

	q.Sort = "bogus"
	assert.Equal(t, []int64{2, 1, 3, 4, 5, 6}, ids(View(sampleProducts(), q).Items))
}

func TestView_Filters(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want []int64
	}{
		{"category", Filters{Category: "tools", PriceMax: decimal.NewFromInt(1000)}, []int64{4, 6}},
		{"brand", Filters{Brand: "acme", PriceMax: decimal.NewFromInt(1000)}, []int64{1, 3, 5}},
		{"category and brand", Filters{Category: "fruit", Brand: "acme", PriceMax: decimal.NewFromInt(1000)}, []int64{1, 3}},
		{"inclusive bounds", Filters{PriceMin: decimal.RequireFromString("3"), PriceMax: decimal.RequireFromString("12")}, []int64{1, 3, 5}},
		{"no match", Filters{Category: "garden", PriceMax: decimal.NewFromInt(1000)}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := DefaultQuery().WithFilters(tt.f)
			got := ids(View(sampleProducts(), q).Items)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filtered ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestView_SearchBypassesFilters(t *testing.T) {
	// The list is a server search result; the tools filter must not apply.
	q := DefaultQuery().WithFilters(Filters{Category: "tools", PriceMax: decimal.NewFromInt(1)})
	q = q.WithSearch("a")

	page := View(sampleProducts(), q)
	assert.Equal(t, 6, page.Total)
}

func TestView_Paging(t *testing.T) {
	products := randomProducts(rand.New(rand.NewSource(7)), 30)
	q := DefaultQuery()
	q.PriceMax = decimal.NewFromInt(1000)
	q.PageSize = 12

	p1 := View(products, q.WithPage(1))
	assert.Len(t, p1.Items, 12)
	assert.Equal(t, 3, p1.PageCount)
	assert.True(t, p1.HasNext())
	assert.False(t, p1.HasPrev())

	p3 := View(products, q.WithPage(3))
	assert.Len(t, p3.Items, 6)
	assert.False(t, p3.HasNext())

	past := View(products, q.WithPage(9))
	assert.Empty(t, past.Items)
	assert.Equal(t, 30, past.Total)

	zero := q
	zero.Page = 0
	assert.Equal(t, ids(p1.Items), ids(View(products, zero).Items))
}

func TestQuery_ChangesResetPage(t *testing.T) {
	q := DefaultQuery().WithPage(4)
	assert.Equal(t, 1, q.WithSort(SortRating).Page)
	assert.Equal(t, 1, q.WithSearch("lamp").Page)
	assert.Equal(t, 1, q.WithFilters(Filters{Category: "x"}).Page)

	q = q.WithSearch("lamp").WithPage(3).WithFilters(Filters{Brand: "b"})
	assert.Equal(t, "lamp", q.SearchTerm, "filters keep the search term")
	assert.Equal(t, 1, q.Page)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceHigh, ParseSortKey(" Price-High "))
	assert.Equal(t, SortName, ParseSortKey(""))
	assert.Equal(t, SortName, ParseSortKey("popularity"))
}

func TestCategoriesAndBrands(t *testing.T) {
	products := append(sampleProducts(), types.Product{ID: 9})
	assert.Equal(t, []string{"bakery", "fruit", "tools"}, Categories(products))
	assert.Equal(t, []string{"acme", "bolt", "orchard"}, Brands(products))
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestProperty_PageItemsSatisfyFilters(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		products := randomProducts(r, r.Intn(40))
		lo := decimal.New(int64(r.Intn(8000)), -2)
		f := Filters{
			Category: []string{"", "a", "b", "c"}[r.Intn(4)],
			Brand:    []string{"", "x", "y"}[r.Intn(3)],
			PriceMin: lo,
			PriceMax: lo.Add(decimal.New(int64(r.Intn(8000)), -2)),
		}
		q := DefaultQuery().WithFilters(f).WithPage(1 + r.Intn(4))

		for _, p := range View(products, q).Items {
			require.True(t, f.Match(p), "round %d: product %+v escaped filters %+v", round, p, f)
		}
	}
}

func TestProperty_PriceLowIsReverseOfPriceHigh(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for round := 0; round < 100; round++ {
		// distinct prices
		n := r.Intn(25)
		perm := r.Perm(n)
		products := make([]types.Product, n)
		for i := range products {
			products[i] = types.Product{ID: int64(i), Price: decimal.New(int64(perm[i]), -1)}
		}

		low := append([]types.Product(nil), products...)
		high := append([]types.Product(nil), products...)
		SortProducts(low, SortPriceLow, "en")
		SortProducts(high, SortPriceHigh, "en")

		for i := range low {
			require.Equal(t, low[i].ID, high[n-1-i].ID)
		}
	}
}

func TestProperty_PagesConcatenateToFullList(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for round := 0; round < 100; round++ {
		products := randomProducts(r, r.Intn(50))
		q := DefaultQuery()
		q.PriceMax = decimal.NewFromInt(200)
		q.Sort = SortKeys[r.Intn(len(SortKeys))]
		q.PageSize = 1 + r.Intn(13)

		full := q
		full.PageSize = len(products) + 1
		want := ids(View(products, full).Items)

		var got []int64
		first := View(products, q)
		for page := 1; page <= first.PageCount; page++ {
			got = append(got, ids(View(products, q.WithPage(page)).Items)...)
		}
		if got == nil {
			got = []int64{}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round %d: pages do not reproduce the list (-want +got):\n%s", round, diff)
		}
	}
}

func TestProperty_SortIsStable(t *testing.T) {
	products := make([]types.Product, 20)
	for i := range products {
		products[i] = types.Product{ID: int64(i), Name: "same", Price: decimal.NewFromInt(5), Rating: 3}
	}
	for _, k := range SortKeys {
		sorted := append([]types.Product(nil), products...)
		SortProducts(sorted, k, "en")
		assert.Equal(t, ids(products), ids(sorted), "sort %s reordered ties", k)
	}
}
