package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/cmd/storefront/ui"
	"storefront/internal/api"
	"storefront/internal/app"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/types"
)

// Catalog flags
var (
	listSearch   string
	listCategory string
	listBrand    string
	listMin      float64
	listMax      float64
	listSort     string
	listPage     int

	quoteItems []string
)

// productsCmd lists the catalog
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products with filters, sorting and paging",
	Long: `Lists one page of the catalog.

A search term queries the server and ignores category, brand and price filters.

Sort keys: name, price-low, price-high, rating

Examples:
  storefront products --category Shoes --sort price-low
  storefront products --search "trail" --page 2`,
	RunE: runProducts,
}

// productCmd shows a single product
var productCmd = &cobra.Command{
	Use:   "product [id]",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

// quoteCmd prices a cart without checking out
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a cart of products",
	Long: `Builds a cart from product ids and prints the order totals.

Example:
  storefront quote --item 3:2 --item 7`,
	RunE: runQuote,
}

func init() {
	productsCmd.Flags().StringVar(&listSearch, "search", "", "Server-side search term")
	productsCmd.Flags().StringVar(&listCategory, "category", "", "Only this category")
	productsCmd.Flags().StringVar(&listBrand, "brand", "", "Only this brand")
	productsCmd.Flags().Float64Var(&listMin, "min", -1, "Minimum price (default from config)")
	productsCmd.Flags().Float64Var(&listMax, "max", -1, "Maximum price (default from config)")
	productsCmd.Flags().StringVar(&listSort, "sort", string(catalog.SortName), "Sort key")
	productsCmd.Flags().IntVar(&listPage, "page", 1, "Page number")

	quoteCmd.Flags().StringArrayVar(&quoteItems, "item", nil, "Product as id or id:qty (repeatable)")
	_ = quoteCmd.MarkFlagRequired("item")
}

// listFilters builds the filters from flags, falling back to the configured
// price range.
func listFilters(cfg *config.Config) catalog.Filters {
	f := catalog.Filters{
		Category: listCategory,
		Brand:    listBrand,
		PriceMin: decimal.NewFromFloat(cfg.Catalog.PriceMin),
		PriceMax: decimal.NewFromFloat(cfg.Catalog.PriceMax),
	}
	if listMin >= 0 {
		f.PriceMin = decimal.NewFromFloat(listMin)
	}
	if listMax >= 0 {
		f.PriceMax = decimal.NewFromFloat(listMax)
	}
	return f
}

func runProducts(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Catalog.SetFilters(listFilters(a.Config()))
	a.Catalog.SetSort(catalog.ParseSortKey(listSort))
	if err := a.Catalog.SetSearch(ctx, listSearch); err != nil {
		return fmt.Errorf("%s", catalogError(a, err))
	}
	a.Catalog.SetPage(listPage)

	fmt.Fprint(cmd.OutOrStdout(), ui.ProductTable(a.Catalog.Visible(), ui.NewStyles(ui.ThemeNamed(a.Config().UI.Theme))))
	return nil
}

func catalogError(a *app.App, err error) string {
	if _, msg, failed := a.State().Catalog.List.Err(); failed && msg != "" {
		return msg
	}
	return api.MessageOf(err, "Failed to fetch products")
}

func runProduct(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Catalog.LoadProduct(ctx, id); err != nil {
		return fmt.Errorf("%s", api.MessageOf(err, "Failed to fetch product"))
	}
	p, _ := a.State().Catalog.Selected.Value()
	styles := ui.NewStyles(ui.ThemeNamed(a.Config().UI.Theme))
	fmt.Fprint(cmd.OutOrStdout(), ui.ProductDetail(p, styles, ui.MarkdownMaxWidth))
	return nil
}

// parseItem reads "id" or "id:qty".
func parseItem(s string) (int64, int, error) {
	idPart, qtyPart, hasQty := strings.Cut(strings.TrimSpace(s), ":")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid item %q: bad product id", s)
	}
	qty := 1
	if hasQty {
		qty, err = strconv.Atoi(qtyPart)
		if err != nil || qty < 1 {
			return 0, 0, fmt.Errorf("invalid item %q: quantity must be a positive number", s)
		}
	}
	return id, qty, nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	type want struct {
		id  int64
		qty int
	}
	var wants []want
	for _, s := range quoteItems {
		id, qty, err := parseItem(s)
		if err != nil {
			return err
		}
		wants = append(wants, want{id, qty})
	}
	if len(wants) == 0 {
		return fmt.Errorf("at least one --item is required")
	}

	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Catalog.Load(ctx); err != nil {
		return fmt.Errorf("%s", catalogError(a, err))
	}
	byID := make(map[int64]types.Product)
	for _, p := range a.State().Catalog.Products() {
		byID[p.ID] = p
	}
	for _, w := range wants {
		p, ok := byID[w.id]
		if !ok {
			return fmt.Errorf("product %d not found", w.id)
		}
		a.Cart.Add(p, w.qty)
	}

	styles := ui.NewStyles(ui.ThemeNamed(a.Config().UI.Theme))
	out := cmd.OutOrStdout()
	fmt.Fprint(out, ui.CartTable(a.Cart.Cart().Lines(), -1, styles))
	fmt.Fprintln(out)
	fmt.Fprint(out, ui.TotalsView(a.Cart.Totals(), a.Cart.Pricing(), styles))
	return nil
}
