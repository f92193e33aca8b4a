package ui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/types"
)

// priceStep is how far , and . move the maximum price.
var priceStep = decimal.NewFromInt(10)

type catalogPage struct {
	table     table.Model
	search    textinput.Model
	searching bool
	debounce  *Debouncer
	items     []types.Product
}

func newCatalogPage(styles Styles) catalogPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Name", Width: 30},
			{Title: "Category", Width: 14},
			{Title: "Brand", Width: 12},
			{Title: "Price", Width: 10},
			{Title: "Rating", Width: 10},
			{Title: "Stock", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Foreground(styles.Theme.Brand).Bold(true)
	ts.Selected = styles.Selected
	t.SetStyles(ts)

	in := textinput.New()
	in.Placeholder = "Search products..."
	in.Prompt = "/ "
	in.Cursor.SetMode(cursor.CursorStatic)
	in.CharLimit = 80
	in.Width = FormWidth

	return catalogPage{
		table:    t,
		search:   in,
		debounce: NewDebouncer("search", DefaultSearchDelay),
	}
}

// selected returns the product under the table cursor.
func (c catalogPage) selected() (types.Product, bool) {
	i := c.table.Cursor()
	if i < 0 || i >= len(c.items) {
		return types.Product{}, false
	}
	return c.items[i], true
}

func (m *Model) refreshCatalog() {
	page := m.state.Catalog.Visible()
	m.catalog.items = page.Items
	rows := make([]table.Row, 0, len(page.Items))
	for _, p := range page.Items {
		rows = append(rows, table.Row{
			strconv.FormatInt(p.ID, 10),
			truncate(p.Name, 30),
			p.Category,
			p.Brand,
			cart.FormatMoney(p.Price),
			Stars(p.Rating),
			strconv.Itoa(p.StockQuantity),
		})
	}
	m.catalog.table.SetRows(rows)
	if c := m.catalog.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.catalog.table.SetCursor(len(rows) - 1)
	}
}

// runSearch queries the server for the term in the search box.
func (m *Model) runSearch() tea.Cmd {
	term := strings.TrimSpace(m.catalog.search.Value())
	return m.do(func(ctx context.Context) error {
		return m.app.Catalog.SetSearch(ctx, term)
	}, func(m *Model, err error) tea.Cmd {
		// failures are shown from the catalog state
		return nil
	})
}

func (m *Model) reloadCatalog() tea.Cmd {
	return m.do(m.app.Catalog.Load, func(m *Model, err error) tea.Cmd { return nil })
}

func (m *Model) catalogKey(k tea.KeyMsg) tea.Cmd {
	c := &m.catalog
	if c.searching {
		switch k.String() {
		case "esc":
			c.searching = false
			c.search.Blur()
			return nil
		case "enter":
			c.searching = false
			c.search.Blur()
			c.debounce.Cancel()
			return m.runSearch()
		}
		var cmd tea.Cmd
		before := c.search.Value()
		c.search, cmd = c.search.Update(k)
		if c.search.Value() == before {
			return cmd
		}
		return tea.Batch(cmd, c.debounce.Trigger())
	}

	q := m.state.Catalog.Query
	switch k.String() {
	case "/":
		c.searching = true
		return c.search.Focus()
	case "enter":
		p, ok := c.selected()
		if !ok {
			return nil
		}
		m.page = PageDetail
		m.detail.viewport.GotoTop()
		id := p.ID
		return m.do(func(ctx context.Context) error {
			return m.app.Catalog.LoadProduct(ctx, id)
		}, func(m *Model, err error) tea.Cmd { return nil })
	case "+", "=":
		if p, ok := c.selected(); ok {
			m.addToCart(p)
		}
	case "s":
		m.app.Catalog.SetSort(nextOf(catalog.SortKeys, q.Sort))
	case "f":
		f := q.Filters
		f.Category = nextOf(append([]string{""}, catalog.Categories(m.state.Catalog.Products())...), f.Category)
		m.app.Catalog.SetFilters(f)
	case "b":
		f := q.Filters
		f.Brand = nextOf(append([]string{""}, catalog.Brands(m.state.Catalog.Products())...), f.Brand)
		m.app.Catalog.SetFilters(f)
	case ".":
		f := q.Filters
		f.PriceMax = f.PriceMax.Add(priceStep)
		m.app.Catalog.SetFilters(f)
	case ",":
		f := q.Filters
		f.PriceMax = decimal.Max(f.PriceMin, f.PriceMax.Sub(priceStep))
		m.app.Catalog.SetFilters(f)
	case "right", "n":
		if m.state.Catalog.Visible().HasNext() {
			m.app.Catalog.SetPage(q.Page + 1)
		}
	case "left", "N":
		if m.state.Catalog.Visible().HasPrev() {
			m.app.Catalog.SetPage(q.Page - 1)
		}
	case "r":
		return m.reloadCatalog()
	case "x":
		cfg := m.app.Config().Catalog
		m.app.Catalog.SetFilters(catalog.Filters{
			PriceMin: decimal.NewFromFloat(cfg.PriceMin),
			PriceMax: decimal.NewFromFloat(cfg.PriceMax),
		})
		m.app.Catalog.SetSort(catalog.SortName)
		if q.Searching() {
			c.search.Reset()
			c.debounce.Cancel()
			return m.runSearch()
		}
	default:
		var cmd tea.Cmd
		c.table, cmd = c.table.Update(k)
		return cmd
	}
	m.state = m.app.State()
	return nil
}

// addToCart adds one unit of p. Out-of-stock products are refused.
func (m *Model) addToCart(p types.Product) {
	if !p.InStock() {
		m.status = p.Name + " is out of stock"
		m.statusErr = true
		return
	}
	m.app.Cart.Add(p, 1)
	m.state = m.app.State()
	m.notify(fmt.Sprintf("Added %s to cart", p.Name))
}

// nextOf returns the element after cur in opts, wrapping. An unknown cur
// gives the first element.
func nextOf[T comparable](opts []T, cur T) T {
	if len(opts) == 0 {
		return cur
	}
	i := slices.Index(opts, cur)
	return opts[(i+1)%len(opts)]
}

func orAll(s string) string {
	if s == "" {
		return "All"
	}
	return s
}

func (m Model) catalogView() string {
	st := m.state.Catalog
	s := m.styles
	var sb strings.Builder

	sb.WriteString(s.Title.Render("Products"))
	sb.WriteString("\n")
	if m.catalog.searching || st.Query.Searching() {
		sb.WriteString(m.catalog.search.View())
		sb.WriteString("\n")
	}
	q := st.Query
	if q.Searching() {
		sb.WriteString(s.Muted.Render(fmt.Sprintf("Search results for %q (filters ignored) • sort: %s", q.SearchTerm, q.Sort)))
	} else {
		sb.WriteString(s.Muted.Render(fmt.Sprintf("Category: %s • Brand: %s • Price: %s-%s • Sort: %s",
			orAll(q.Category), orAll(q.Brand), cart.FormatMoney(q.PriceMin), cart.FormatMoney(q.PriceMax), q.Sort)))
	}
	sb.WriteString("\n\n")

	if _, msg, failed := st.List.Err(); failed {
		sb.WriteString(s.Error.Render(msg))
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render("Press r to retry."))
		return sb.String()
	}
	if st.List.IsPending() && len(st.Products()) == 0 {
		sb.WriteString(s.Muted.Render("Loading products..."))
		return sb.String()
	}
	page := st.Visible()
	if len(page.Items) == 0 {
		sb.WriteString(s.Muted.Render("No products found. Try adjusting your filters."))
		return sb.String()
	}
	sb.WriteString(m.catalog.table.View())
	sb.WriteString("\n")
	sb.WriteString(PageFooter(page, s))
	return sb.String()
}
