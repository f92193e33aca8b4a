package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"storefront/internal/admin"
	"storefront/internal/auth"
	"storefront/internal/types"
)

// =============================================================================
// LOGIN
// =============================================================================

type loginMode int

const (
	loginCredentials loginMode = iota
	loginOTPEmail
	loginOTPCode
)

func loginModeOf(st auth.State) loginMode {
	switch st.Phase {
	case auth.PhaseOTPEmailEntry, auth.PhaseOTPSending:
		return loginOTPEmail
	case auth.PhaseOTPCodeEntry, auth.PhaseOTPVerifying:
		return loginOTPCode
	}
	return loginCredentials
}

type loginPage struct {
	creds Form
	email Form
	code  Form
}

func newLoginPage() loginPage {
	return loginPage{
		creds: NewForm(
			FieldSpec{Key: "email", Label: "Email", Placeholder: "you@example.com"},
			FieldSpec{Key: "password", Label: "Password", Secret: true},
		),
		email: NewForm(FieldSpec{Key: "email", Label: "Email", Placeholder: "you@example.com"}),
		code:  NewForm(FieldSpec{Key: "otp", Label: "Code", Placeholder: "6 digits", CharLimit: 6}),
	}
}

// active returns the form for the current login mode.
func (l *loginPage) active(st auth.State) *Form {
	switch loginModeOf(st) {
	case loginOTPEmail:
		return &l.email
	case loginOTPCode:
		return &l.code
	}
	return &l.creds
}

func (l *loginPage) focus(st auth.State) tea.Cmd {
	l.creds.Blur()
	l.email.Blur()
	l.code.Blur()
	return l.active(st).FocusIndex(0)
}

// formErrors puts validation messages on f and reports whether err was one.
func formErrors(f *Form, err error) bool {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		f.SetErrors(verr.Fields)
		return true
	}
	return false
}

// afterAuth finishes a login attempt: validation messages go to the form
// chosen by pick, server errors are left in the auth state for display.
func afterAuth(pick func(m *Model) *Form) func(m *Model, err error) tea.Cmd {
	return func(m *Model, err error) tea.Cmd {
		if formErrors(pick(m), err) {
			return nil
		}
		if err != nil || !m.state.Auth.Authenticated {
			return m.login.focus(m.state.Auth)
		}
		m.login = newLoginPage()
		return m.signedIn()
	}
}

func (m *Model) loginKey(k tea.KeyMsg) tea.Cmd {
	st := m.state.Auth
	l := &m.login
	mode := loginModeOf(st)

	switch k.String() {
	case "esc":
		if mode != loginCredentials {
			m.app.Auth.CancelOTP()
			m.state = m.app.State()
			return l.focus(m.state.Auth)
		}
		m.app.Auth.ClearError()
		m.afterLogin = PageCatalog
		m.page = PageCatalog
		return nil
	case "ctrl+o":
		if st.Loading() {
			return nil
		}
		if mode == loginCredentials {
			m.app.Auth.StartOTP()
		} else {
			m.app.Auth.CancelOTP()
		}
		m.state = m.app.State()
		return l.focus(m.state.Auth)
	case "ctrl+g":
		m.fail(auth.OAuthLogin("google"))
		return nil
	case "ctrl+r":
		m.app.Auth.ClearError()
		m.page = PageRegister
		return m.register.form.FocusIndex(0)
	case "enter":
		if st.Loading() {
			return nil
		}
		return m.submitLogin(mode)
	}
	return l.active(st).Update(k)
}

func (m *Model) submitLogin(mode loginMode) tea.Cmd {
	l := &m.login
	switch mode {
	case loginOTPEmail:
		email := l.email.Value("email")
		l.email.SetErrors(nil)
		return m.do(func(ctx context.Context) error {
			return m.app.Auth.SendOTP(ctx, email)
		}, func(m *Model, err error) tea.Cmd {
			if formErrors(&m.login.email, err) {
				return nil
			}
			return m.login.focus(m.state.Auth)
		})
	case loginOTPCode:
		code := l.code.Value("otp")
		l.code.SetErrors(nil)
		return m.do(func(ctx context.Context) error {
			return m.app.Auth.VerifyOTP(ctx, "", code)
		}, afterAuth(func(m *Model) *Form { return &m.login.code }))
	}
	email, password := l.creds.Value("email"), l.creds.RawValue("password")
	l.creds.SetErrors(nil)
	return m.do(func(ctx context.Context) error {
		return m.app.Auth.Login(ctx, email, password)
	}, afterAuth(func(m *Model) *Form { return &m.login.creds }))
}

func (m Model) authMessages() string {
	var sb strings.Builder
	st := m.state.Auth
	if st.Error != "" {
		sb.WriteString(m.styles.Error.Render(st.Error))
		sb.WriteString("\n")
	}
	if st.Notice != "" {
		sb.WriteString(m.styles.Success.Render(st.Notice))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) loginView() string {
	s := m.styles
	st := m.state.Auth
	var sb strings.Builder
	switch loginModeOf(st) {
	case loginOTPEmail:
		sb.WriteString(s.Title.Render("Login with a one-time code"))
		sb.WriteString("\n")
		sb.WriteString(m.authMessages())
		sb.WriteString(m.login.email.View(s))
		sb.WriteString(s.Muted.Render("We'll email you a 6-digit code."))
	case loginOTPCode:
		sb.WriteString(s.Title.Render("Enter your code"))
		sb.WriteString("\n")
		sb.WriteString(m.authMessages())
		sb.WriteString(s.Muted.Render("Code sent to " + st.OTPEmail))
		sb.WriteString("\n")
		sb.WriteString(m.login.code.View(s))
	default:
		sb.WriteString(s.Title.Render("Login"))
		sb.WriteString("\n")
		sb.WriteString(m.authMessages())
		sb.WriteString(m.login.creds.View(s))
		sb.WriteString(s.Muted.Render("Don't have an account? Press ctrl+r to register."))
	}
	if st.Loading() {
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render("Please wait..."))
	}
	return sb.String()
}

// =============================================================================
// REGISTER
// =============================================================================

type registerPage struct {
	form Form
	code Form
}

func newRegisterPage() registerPage {
	return registerPage{
		form: NewForm(
			FieldSpec{Key: "firstName", Label: "First name"},
			FieldSpec{Key: "lastName", Label: "Last name"},
			FieldSpec{Key: "email", Label: "Email", Placeholder: "you@example.com"},
			FieldSpec{Key: "phoneNumber", Label: "Phone", Placeholder: "+1 555 123 4567"},
			FieldSpec{Key: "password", Label: "Password", Secret: true},
			FieldSpec{Key: "confirmPassword", Label: "Confirm password", Secret: true},
		),
		code: NewForm(FieldSpec{Key: "otp", Label: "Code", Placeholder: "6 digits", CharLimit: 6}),
	}
}

func verifyingRegistration(st auth.State) bool {
	return st.Phase == auth.PhaseRegistrationOTP || st.Phase == auth.PhaseRegistrationVerifying
}

func (m *Model) registerKey(k tea.KeyMsg) tea.Cmd {
	st := m.state.Auth
	r := &m.register
	coding := verifyingRegistration(st)

	switch k.String() {
	case "esc":
		m.app.Auth.CancelOTP()
		m.app.Auth.ClearError()
		m.page = PageLogin
		m.state = m.app.State()
		return m.login.focus(m.state.Auth)
	case "ctrl+r":
		if !coding {
			return nil
		}
		return m.do(func(ctx context.Context) error {
			return m.app.Auth.ResendRegistrationOTP(ctx, "")
		}, func(m *Model, err error) tea.Cmd { return nil })
	case "enter":
		if st.Loading() {
			return nil
		}
		if coding {
			code := r.code.Value("otp")
			r.code.SetErrors(nil)
			return m.do(func(ctx context.Context) error {
				return m.app.Auth.VerifyRegistration(ctx, "", code)
			}, func(m *Model, err error) tea.Cmd {
				if formErrors(&m.register.code, err) || err != nil {
					return nil
				}
				m.register = newRegisterPage()
				if m.state.Auth.Authenticated {
					return m.signedIn()
				}
				m.page = PageLogin
				return m.login.focus(m.state.Auth)
			})
		}
		form := auth.RegistrationForm{
			FirstName:       r.form.Value("firstName"),
			LastName:        r.form.Value("lastName"),
			Email:           r.form.Value("email"),
			PhoneNumber:     r.form.Value("phoneNumber"),
			Password:        r.form.RawValue("password"),
			ConfirmPassword: r.form.RawValue("confirmPassword"),
		}
		r.form.SetErrors(nil)
		return m.do(func(ctx context.Context) error {
			return m.app.Auth.Register(ctx, form)
		}, func(m *Model, err error) tea.Cmd {
			if formErrors(&m.register.form, err) || err != nil {
				return nil
			}
			m.register.form.Blur()
			return m.register.code.FocusIndex(0)
		})
	}
	if coding {
		return r.code.Update(k)
	}
	return r.form.Update(k)
}

func (m Model) registerView() string {
	s := m.styles
	st := m.state.Auth
	var sb strings.Builder
	if verifyingRegistration(st) {
		sb.WriteString(s.Title.Render("Verify your email"))
		sb.WriteString("\n")
		sb.WriteString(m.authMessages())
		sb.WriteString(s.Muted.Render("Enter the code sent to " + st.OTPEmail))
		sb.WriteString("\n")
		sb.WriteString(m.register.code.View(s))
		sb.WriteString(s.Muted.Render("Didn't get it? Press ctrl+r to resend."))
		return sb.String()
	}
	sb.WriteString(s.Title.Render("Create an account"))
	sb.WriteString("\n")
	sb.WriteString(m.authMessages())
	sb.WriteString(m.register.form.View(s))
	return sb.String()
}

// =============================================================================
// PROFILE
// =============================================================================

type profilePage struct {
	editing bool
	form    Form
}

func newProfilePage() profilePage {
	return profilePage{form: profileForm()}
}

func profileForm() Form {
	return NewForm(
		FieldSpec{Key: "firstName", Label: "First name"},
		FieldSpec{Key: "lastName", Label: "Last name"},
		FieldSpec{Key: "phoneNumber", Label: "Phone"},
		FieldSpec{Key: "address", Label: "Address"},
		FieldSpec{Key: "city", Label: "City"},
		FieldSpec{Key: "state", Label: "State"},
		FieldSpec{Key: "country", Label: "Country"},
		FieldSpec{Key: "zipCode", Label: "ZIP code", CharLimit: 12},
	)
}

func (m *Model) profileKey(k tea.KeyMsg) tea.Cmd {
	p := &m.profile
	u := m.state.Auth.User

	if !p.editing {
		switch k.String() {
		case "e":
			if u == nil {
				return nil
			}
			p.form = profileForm()
			p.form.SetValue("firstName", u.FirstName)
			p.form.SetValue("lastName", u.LastName)
			p.form.SetValue("phoneNumber", u.PhoneNumber)
			p.form.SetValue("address", u.Address)
			p.form.SetValue("city", u.City)
			p.form.SetValue("state", u.State)
			p.form.SetValue("country", u.Country)
			p.form.SetValue("zipCode", u.ZipCode)
			p.editing = true
			return p.form.FocusIndex(0)
		case "l":
			return m.do(m.app.Auth.Logout, func(m *Model, err error) tea.Cmd {
				m.page = PageCatalog
				m.profile = newProfilePage()
				if err != nil {
					m.fail(err)
					return nil
				}
				m.notify("Logged out")
				return nil
			})
		}
		return nil
	}

	switch k.String() {
	case "esc":
		p.editing = false
		p.form.Blur()
		return nil
	case "enter":
		if m.state.Auth.Loading() {
			return nil
		}
		f := p.form
		upd := types.ProfileUpdate{
			FirstName:   f.Value("firstName"),
			LastName:    f.Value("lastName"),
			PhoneNumber: f.Value("phoneNumber"),
			Address:     f.Value("address"),
			City:        f.Value("city"),
			State:       f.Value("state"),
			Country:     f.Value("country"),
			ZipCode:     f.Value("zipCode"),
		}
		p.form.SetErrors(nil)
		return m.do(func(ctx context.Context) error {
			return m.app.Auth.UpdateProfile(ctx, upd)
		}, func(m *Model, err error) tea.Cmd {
			if formErrors(&m.profile.form, err) || err != nil {
				return nil
			}
			m.profile.editing = false
			m.profile.form.Blur()
			m.notify("Profile updated successfully")
			return nil
		})
	}
	return p.form.Update(k)
}

func (m Model) profileView() string {
	s := m.styles
	st := m.state.Auth
	var sb strings.Builder
	sb.WriteString(s.Title.Render("My Account"))
	sb.WriteString("\n")

	u := st.User
	if u == nil {
		if st.Loading() {
			sb.WriteString(s.Muted.Render("Loading profile..."))
		} else {
			sb.WriteString(m.authMessages())
			sb.WriteString(s.Muted.Render("Not logged in."))
		}
		return sb.String()
	}
	if st.Error != "" {
		sb.WriteString(s.Error.Render(st.Error))
		sb.WriteString("\n")
	}
	if m.profile.editing {
		sb.WriteString(m.profile.form.View(s))
		return sb.String()
	}

	row := func(label, v string) {
		if v == "" {
			v = s.Muted.Render("-")
		}
		sb.WriteString(s.Label.Render(label))
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	row("Name", u.DisplayName())
	row("Email", u.Email)
	row("Role", string(u.Role))
	row("Phone", u.PhoneNumber)
	row("Address", u.Address)
	row("City", u.City)
	row("State", u.State)
	row("Country", u.Country)
	row("ZIP code", u.ZipCode)
	if u.CreatedAt != nil {
		row("Member since", u.CreatedAt.Format("January 2, 2006"))
	}
	return sb.String()
}

// =============================================================================
// ADMIN
// =============================================================================

func (m *Model) adminKey(k tea.KeyMsg) tea.Cmd {
	if k.String() == "r" {
		return m.reloadCatalog()
	}
	return nil
}

func (m Model) adminView() string {
	if err := auth.RequireAdmin(m.state.Auth); err != nil {
		return m.styles.Error.Render(errorText(err))
	}
	if _, msg, failed := m.state.Catalog.List.Err(); failed {
		return m.styles.Error.Render(fmt.Sprintf("Could not load inventory: %s", msg))
	}
	products := m.state.Catalog.Products()
	return SummaryView(admin.Summarize(products), admin.LowStock(products), m.styles)
}
