package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storefront/internal/api"
	"storefront/internal/app"
	"storefront/internal/auth"
	"storefront/internal/logging"
)

// Page identifies a screen.
type Page int

const (
	PageCatalog Page = iota
	PageDetail
	PageCart
	PageCheckout
	PageLogin
	PageRegister
	PageProfile
	PageAdmin
)

func (p Page) String() string {
	switch p {
	case PageCatalog:
		return "Products"
	case PageDetail:
		return "Product"
	case PageCart:
		return "Cart"
	case PageCheckout:
		return "Checkout"
	case PageLogin:
		return "Login"
	case PageRegister:
		return "Register"
	case PageProfile:
		return "Account"
	case PageAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}

// tabs are the pages reachable with a single key from anywhere.
var tabs = []struct {
	page Page
	key  string
}{
	{PageCatalog, "p"},
	{PageCart, "c"},
	{PageProfile, "u"},
	{PageAdmin, "a"},
}

// stateMsg carries a state published by the store.
type stateMsg app.State

// opDoneMsg reports a finished background operation. done runs on the UI
// goroutine.
type opDoneMsg struct {
	err  error
	done func(m *Model, err error) tea.Cmd
}

// Model is the root bubbletea model.
type Model struct {
	app     *app.App
	ctx     context.Context
	timeout time.Duration
	styles  Styles
	layout  LayoutConfig

	state  app.State
	states <-chan app.State
	unsub  func()

	page       Page
	afterLogin Page

	spinner   spinner.Model
	spinning  bool
	status    string
	statusErr bool

	catalog  catalogPage
	detail   detailPage
	cart     cartPage
	checkout checkoutPage
	login    loginPage
	register registerPage
	profile  profilePage
}

// NewModel builds the UI over a running App. timeout bounds each request.
func NewModel(ctx context.Context, a *app.App, timeout time.Duration) Model {
	styles := NewStyles(ThemeNamed(a.Config().UI.Theme))
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	states, unsub := a.Subscribe()
	m := Model{
		app:        a,
		ctx:        ctx,
		timeout:    timeout,
		styles:     styles,
		layout:     NewLayoutConfig(MinimumTerminalWidth*2, 30),
		state:      a.State(),
		states:     states,
		unsub:      unsub,
		page:       PageCatalog,
		afterLogin: PageCatalog,
		spinner:    sp,
		spinning:   true,
		catalog:    newCatalogPage(styles),
		detail:     newDetailPage(),
		login:      newLoginPage(),
		register:   newRegisterPage(),
		profile:    newProfilePage(),
	}
	m.resize()
	m.refresh()
	return m
}

// Close stops the state subscription.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, a *app.App, timeout time.Duration) error {
	m := NewModel(ctx, a, timeout)
	defer m.Close()

	logging.UI("Starting terminal UI")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func waitForState(ch <-chan app.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

// Init loads the catalog and restores the session.
func (m Model) Init() tea.Cmd {
	bootstrap := func() tea.Msg {
		return opDoneMsg{err: m.app.Bootstrap(m.ctx)}
	}
	return tea.Batch(waitForState(m.states), bootstrap, m.spinner.Tick)
}

// do runs fn off the UI goroutine with the request timeout, then calls done
// with its error.
func (m *Model) do(fn func(ctx context.Context) error, done func(m *Model, err error) tea.Cmd) tea.Cmd {
	ctx, timeout := m.ctx, m.timeout
	op := func() tea.Msg {
		c, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return opDoneMsg{err: fn(c), done: done}
	}
	return tea.Batch(op, m.startSpinner())
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// loading reports whether any request is in flight.
func (m Model) loading() bool {
	st := m.state
	return st.Auth.Loading() || st.Catalog.List.IsPending() || st.Catalog.Selected.IsPending()
}

func (m *Model) notify(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) fail(err error) {
	m.status = errorText(err)
	m.statusErr = true
	logging.Get(logging.CategoryUI).Warn("%v", err)
}

// errorText is what the status line shows for err.
func errorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrLoginRequired):
		return "Please log in to continue"
	case errors.Is(err, auth.ErrForbidden):
		return "Access denied: admin role required"
	case errors.Is(err, auth.ErrOAuthUnavailable):
		return "OAuth login coming soon!"
	}
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return api.MessageOf(err, err.Error())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayoutConfig(msg.Width, msg.Height)
		m.resize()
		m.refresh()
		return m, nil

	case stateMsg:
		m.state = app.State(msg)
		m.refresh()
		var spin tea.Cmd
		if m.loading() {
			spin = m.startSpinner()
		}
		return m, tea.Batch(waitForState(m.states), spin)

	case opDoneMsg:
		m.state = m.app.State()
		var cmd tea.Cmd
		if msg.done != nil {
			cmd = msg.done(&m, msg.err)
		} else if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.fail(msg.err)
		}
		m.refresh()
		return m, cmd

	case spinner.TickMsg:
		if !m.loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.catalog.debounce.Fire(msg) {
		return m, m.runSearch()
	}
	return m, nil
}

// capturing reports whether the active page takes plain keys as text.
func (m Model) capturing() bool {
	switch m.page {
	case PageCatalog:
		return m.catalog.searching
	case PageCheckout:
		return m.checkout.capturing()
	case PageLogin, PageRegister:
		return true
	case PageProfile:
		return m.profile.editing
	}
	return false
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if !m.capturing() {
		if k.String() == "q" {
			return m, tea.Quit
		}
		for _, t := range tabs {
			if k.String() == t.key {
				cmd := m.navigate(t.page)
				m.refresh()
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch m.page {
	case PageCatalog:
		cmd = m.catalogKey(k)
	case PageDetail:
		cmd = m.detailKey(k)
	case PageCart:
		cmd = m.cartKey(k)
	case PageCheckout:
		cmd = m.checkoutKey(k)
	case PageLogin:
		cmd = m.loginKey(k)
	case PageRegister:
		cmd = m.registerKey(k)
	case PageProfile:
		cmd = m.profileKey(k)
	case PageAdmin:
		cmd = m.adminKey(k)
	}
	m.state = m.app.State()
	m.refresh()
	return m, cmd
}

// navigate switches pages, applying the session guards.
func (m *Model) navigate(p Page) tea.Cmd {
	switch p {
	case PageProfile, PageCheckout:
		if err := auth.RequireAuth(m.state.Auth); err != nil {
			return m.requireLogin(p)
		}
	case PageAdmin:
		if err := auth.RequireAdmin(m.state.Auth); err != nil {
			if errors.Is(err, auth.ErrLoginRequired) {
				return m.requireLogin(p)
			}
			m.fail(err)
			return nil
		}
	}

	logging.UIDebug("Navigate %s -> %s", m.page, p)
	m.page = p
	switch p {
	case PageProfile:
		m.profile.editing = false
		if m.state.Auth.User == nil {
			return m.do(m.app.Auth.FetchProfile, nil)
		}
	case PageCheckout:
		return m.startCheckout()
	case PageLogin:
		return m.login.focus(m.state.Auth)
	case PageRegister:
		return m.register.form.FocusIndex(0)
	}
	return nil
}

// requireLogin sends the user to the login page and remembers where to go
// afterwards.
func (m *Model) requireLogin(target Page) tea.Cmd {
	m.afterLogin = target
	m.notify("Please log in to continue")
	m.page = PageLogin
	return m.login.focus(m.state.Auth)
}

// signedIn continues to the page that required a login.
func (m *Model) signedIn() tea.Cmd {
	target := m.afterLogin
	m.afterLogin = PageCatalog
	if u := m.state.Auth.User; u != nil {
		m.notify("Welcome, " + u.DisplayName())
	}
	return m.navigate(target)
}

func (m *Model) resize() {
	h := m.layout.PageHeight()
	m.catalog.table.SetHeight(max(h-6, 3))
	m.catalog.table.SetWidth(m.layout.PageWidth())
	m.detail.viewport.Width = m.layout.PageWidth()
	m.detail.viewport.Height = max(h-1, 3)
	m.detail.shownID = 0
}

// refresh pushes the latest state into page widgets.
func (m *Model) refresh() {
	m.refreshCatalog()
	m.refreshDetail()
	m.clampCartCursor()
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n")
	sb.WriteString(m.tabsView())
	sb.WriteString("\n\n")

	var body string
	switch m.page {
	case PageCatalog:
		body = m.catalogView()
	case PageDetail:
		body = m.detailView()
	case PageCart:
		body = m.cartView()
	case PageCheckout:
		body = m.checkoutView()
	case PageLogin:
		body = m.loginView()
	case PageRegister:
		body = m.registerView()
	case PageProfile:
		body = m.profileView()
	case PageAdmin:
		body = m.adminView()
	}
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.statusView())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(m.helpText()))
	return sb.String()
}

func (m Model) headerView() string {
	who := "Guest"
	if u := m.state.Auth.User; u != nil && m.state.Auth.Authenticated {
		who = u.DisplayName()
		if u.IsAdmin() {
			who += " (admin)"
		}
	}
	count := m.state.Cart.Cart.Count()
	right := fmt.Sprintf("%s  🛒 %d", who, count)
	left := "Storefront"
	gap := m.layout.PageWidth() - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return m.styles.Header.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) tabsView() string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := fmt.Sprintf("[%s] %s", t.key, t.page)
		active := m.page == t.page ||
			(t.page == PageCatalog && m.page == PageDetail) ||
			(t.page == PageCart && m.page == PageCheckout) ||
			(t.page == PageProfile && (m.page == PageLogin || m.page == PageRegister))
		if active {
			parts = append(parts, m.styles.TabOn.Render(label))
		} else {
			parts = append(parts, m.styles.TabOff.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) statusView() string {
	var sb strings.Builder
	if m.loading() {
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
	}
	if m.status != "" {
		if m.statusErr {
			sb.WriteString(m.styles.Error.Render(m.status))
		} else {
			sb.WriteString(m.styles.Success.Render(m.status))
		}
	}
	return sb.String()
}

func (m Model) helpText() string {
	global := "p/c/u/a pages • q quit"
	switch m.page {
	case PageCatalog:
		if m.catalog.searching {
			return "type to search • enter search now • esc done"
		}
		return "↑/↓ select • enter details • + add to cart • / search • s sort • f category • b brand • ,/. max price • ←/→ page • x reset • " + global
	case PageDetail:
		return "+ add to cart • esc back • " + global
	case PageCart:
		return "↑/↓ select • +/- quantity • d remove • x clear • enter checkout • " + global
	case PageCheckout:
		return m.checkout.help()
	case PageLogin:
		return "tab next field • enter submit • ctrl+o code login • ctrl+r register • ctrl+g Google • esc back"
	case PageRegister:
		return "tab next field • enter submit • ctrl+r resend code • esc back"
	case PageProfile:
		if m.profile.editing {
			return "tab next field • enter save • esc cancel"
		}
		return "e edit • l logout • " + global
	case PageAdmin:
		return "r reload • " + global
	}
	return global
}
