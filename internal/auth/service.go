package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"storefront/internal/api"
	"storefront/internal/logging"
	"storefront/internal/state"
	"storefront/internal/store"
	"storefront/internal/types"
)

// ErrSuperseded is returned when a newer auth request replaced this one
// before its response arrived. The response was dropped.
var ErrSuperseded = errors.New("request superseded")

// ErrMissingToken is returned when a success response carries no token.
var ErrMissingToken = errors.New("server response did not include a token")

// Client is the part of the API client the auth flow uses.
type Client interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	SendOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (api.AuthResponse, error)
	VerifyRegistrationOTP(ctx context.Context, email, otp string) (api.RegistrationResult, error)
	ResendRegistrationOTP(ctx context.Context, email string) (string, error)
	Profile(ctx context.Context, token string) (types.User, error)
	UpdateProfile(ctx context.Context, token string, upd types.ProfileUpdate) (types.User, error)
}

// Service runs the auth flows: it validates input, calls the API, persists
// the token and dispatches the resulting transitions.
type Service struct {
	api      Client
	tokens   store.TokenStore
	dispatch func(state.Action)
	current  func() State

	// Identical submissions in flight at the same time share one request.
	inflight singleflight.Group
}

// NewService wires the auth flows. current must return the latest auth slice.
func NewService(c Client, tokens store.TokenStore, dispatch func(state.Action), current func() State) *Service {
	return &Service{api: c, tokens: tokens, dispatch: dispatch, current: current}
}

func (s *Service) once(key string, fn func() error) error {
	_, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		return nil, fn()
	})
	if shared {
		logging.AuthDebug("Collapsed duplicate request %s", key)
	}
	return err
}

// loginKey identifies a credential login for deduplication. The password is
// hashed so it never shows up in the collapsed-request log line.
func loginKey(email, password string) string {
	sum := sha256.Sum256([]byte(password))
	return "login:" + email + ":" + hex.EncodeToString(sum[:8])
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Initialize reads the persisted token into state without trusting it.
func (s *Service) Initialize(ctx context.Context) error {
	token, ok, err := s.tokens.Load(ctx)
	if err != nil {
		logging.AuthWarn("Failed to load persisted token: %v", err)
		s.dispatch(Initialized{})
		return err
	}
	if !ok {
		s.dispatch(Initialized{})
		return nil
	}
	logging.AuthDebug("Loaded persisted token")
	s.dispatch(Initialized{Token: &token})
	return nil
}

// persist writes a freshly issued token. A storage failure is logged; the
// session still works for this process.
func (s *Service) persist(ctx context.Context, token string) {
	if err := s.tokens.Save(ctx, token); err != nil {
		logging.AuthWarn("Failed to persist token: %v", err)
	}
}

// forgetRejected removes the persisted token only if it is still the one the
// server rejected. A token saved by a newer login is left alone.
func (s *Service) forgetRejected(ctx context.Context, rejected string) {
	stored, ok, err := s.tokens.Load(ctx)
	if err != nil {
		logging.AuthWarn("Failed to read persisted token: %v", err)
		return
	}
	if !ok || stored != rejected {
		logging.AuthDebug("Persisted token changed since the rejected request; keeping it")
		return
	}
	_ = s.forget(ctx)
}

func (s *Service) forget(ctx context.Context) error {
	if err := s.tokens.Remove(ctx); err != nil {
		logging.AuthWarn("Failed to remove persisted token: %v", err)
		return err
	}
	return nil
}

// accepts reports whether requestID is still the pending auth request.
func (s *Service) accepts(requestID string) bool {
	return s.current().Op.Accepts(requestID)
}

// Login signs in with email and password.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if err := ValidateLogin(email, password); err != nil {
		return err
	}

	return s.once(loginKey(email, password), func() error {
		requestID := uuid.NewString()
		s.dispatch(LoginRequested{RequestID: requestID, Email: email})
		logging.Auth("Login attempt for %s", email)

		resp, err := s.api.Login(ctx, email, password)
		if err != nil {
			s.dispatch(LoginFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "Login failed")})
			return err
		}
		if !s.accepts(requestID) {
			return ErrSuperseded
		}
		if resp.Token == "" {
			s.dispatch(LoginFailed{RequestID: requestID, Kind: state.ErrorKindDecode, Message: msgMissingToken})
			return ErrMissingToken
		}

		s.persist(ctx, resp.Token)
		s.dispatch(LoginSucceeded{RequestID: requestID, Token: resp.Token, User: resp.User})
		logging.Auth("Login succeeded for %s", email)
		return nil
	})
}

// StartOTP switches the UI to the code login flow.
func (s *Service) StartOTP() { s.dispatch(OTPEntryStarted{}) }

// CancelOTP leaves the code login flow.
func (s *Service) CancelOTP() { s.dispatch(OTPCancelled{}) }

// SendOTP emails a login code.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Fields: map[string]string{"email": "Please enter your email address"}}
	}

	return s.once("send-otp:"+email, func() error {
		requestID := uuid.NewString()
		s.dispatch(OTPRequested{RequestID: requestID, Email: email})

		msg, err := s.api.SendOTP(ctx, email)
		if err != nil {
			s.dispatch(OTPSendFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "Failed to send OTP")})
			return err
		}
		if msg == "" {
			msg = "OTP sent to your email!"
		}
		s.dispatch(OTPSent{RequestID: requestID, Message: msg})
		return nil
	})
}

// VerifyOTP exchanges a login code for a session. An empty email uses the
// address the code was sent to.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" {
		email = s.current().OTPEmail
	}
	code = strings.TrimSpace(code)
	if err := ValidateOTP(code); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	return s.once("verify-otp:"+email+":"+code, func() error {
		requestID := uuid.NewString()
		s.dispatch(OTPVerifyRequested{RequestID: requestID})

		resp, err := s.api.VerifyOTP(ctx, email, code)
		if err != nil {
			s.dispatch(OTPVerifyFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "OTP verification failed")})
			return err
		}
		if !s.accepts(requestID) {
			return ErrSuperseded
		}
		if resp.Token == "" {
			s.dispatch(OTPVerifyFailed{RequestID: requestID, Kind: state.ErrorKindDecode, Message: msgMissingToken})
			return ErrMissingToken
		}

		s.persist(ctx, resp.Token)
		s.dispatch(OTPVerified{RequestID: requestID, Token: resp.Token, User: resp.User})
		logging.Auth("OTP login succeeded for %s", email)
		return nil
	})
}

// Register creates an account; the server then emails a verification code.
func (s *Service) Register(ctx context.Context, form RegistrationForm) error {
	form.Email = normalizeEmail(form.Email)
	if err := ValidateRegistration(form); err != nil {
		return err
	}

	return s.once("register:"+form.Email, func() error {
		requestID := uuid.NewString()
		s.dispatch(RegisterRequested{RequestID: requestID, Email: form.Email})

		msg, err := s.api.Register(ctx, api.RegisterRequest{
			Email:       form.Email,
			Password:    form.Password,
			FirstName:   strings.TrimSpace(form.FirstName),
			LastName:    strings.TrimSpace(form.LastName),
			PhoneNumber: strings.TrimSpace(form.PhoneNumber),
		})
		if err != nil {
			s.dispatch(RegisterFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "Registration failed")})
			return err
		}
		if msg == "" {
			msg = "Registration successful! Please check your email for the verification code."
		}
		s.dispatch(RegisterSucceeded{RequestID: requestID, Email: form.Email, Message: msg})
		return nil
	})
}

// VerifyRegistration confirms a registration code. When the server issues a
// token the session starts (confirmed by a profile fetch if no user came
// back); otherwise the user is asked to log in.
func (s *Service) VerifyRegistration(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" {
		email = s.current().OTPEmail
	}
	code = strings.TrimSpace(code)
	if err := ValidateOTP(code); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	err := s.once("register-verify:"+email+":"+code, func() error {
		requestID := uuid.NewString()
		s.dispatch(RegistrationVerifyRequested{RequestID: requestID})

		res, err := s.api.VerifyRegistrationOTP(ctx, email, code)
		if err != nil {
			s.dispatch(RegistrationVerifyFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "OTP verification failed")})
			return err
		}
		if !s.accepts(requestID) {
			return ErrSuperseded
		}

		msg := "Registration successful! Please login with your credentials."
		if res.Token != "" {
			s.persist(ctx, res.Token)
			msg = "Registration successful! You are now logged in."
		}
		s.dispatch(RegistrationVerified{RequestID: requestID, Token: res.Token, User: res.User, Message: msg})
		return nil
	})
	if err != nil {
		return err
	}

	if st := s.current(); st.Token != nil && st.User == nil {
		return s.FetchProfile(ctx)
	}
	return nil
}

// ResendRegistrationOTP asks for a fresh registration code. Rapid repeated
// calls for the same address share one request.
func (s *Service) ResendRegistrationOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		email = s.current().OTPEmail
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	return s.once("register-resend:"+email, func() error {
		msg, err := s.api.ResendRegistrationOTP(ctx, email)
		if err != nil {
			s.dispatch(RegistrationResendFailed{Kind: api.KindOf(err), Message: api.MessageOf(err, "Failed to resend OTP")})
			return err
		}
		if msg == "" {
			msg = "OTP resent to your email"
		}
		s.dispatch(RegistrationResent{Message: msg})
		return nil
	})
}

// FetchProfile validates a held token by loading its user. It does nothing
// without a token or when the user is already loaded. Any failure ends the
// session; the persisted token is removed only when the server rejected it.
func (s *Service) FetchProfile(ctx context.Context) error {
	st := s.current()
	if st.Token == nil || st.User != nil {
		return nil
	}
	token := *st.Token

	return s.once("profile:"+token, func() error {
		requestID := uuid.NewString()
		s.dispatch(ProfileRequested{RequestID: requestID})

		user, err := s.api.Profile(ctx, token)
		if err != nil {
			switch {
			case !s.accepts(requestID):
				logging.AuthDebug("Dropping superseded profile failure: %v", err)
				return ErrSuperseded
			case api.IsUnauthorized(err):
				logging.Auth("Persisted token rejected (%v); signing out", err)
				s.forgetRejected(ctx, token)
			default:
				logging.AuthWarn("Profile fetch failed: %v", err)
			}
			s.dispatch(ProfileFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "Failed to fetch profile")})
			return err
		}
		s.dispatch(ProfileLoaded{RequestID: requestID, User: user})
		return nil
	})
}

// UpdateProfile saves the editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, upd types.ProfileUpdate) error {
	st := s.current()
	if err := RequireAuth(st); err != nil {
		return err
	}
	f := fieldErrors{}
	if strings.TrimSpace(upd.FirstName) == "" {
		f["firstName"] = "First name is required"
	}
	if strings.TrimSpace(upd.LastName) == "" {
		f["lastName"] = "Last name is required"
	}
	if upd.PhoneNumber != "" && !phonePattern.MatchString(upd.PhoneNumber) {
		f["phoneNumber"] = "Phone number is invalid"
	}
	if err := f.err(); err != nil {
		return err
	}
	token := *st.Token

	requestID := uuid.NewString()
	s.dispatch(ProfileUpdateRequested{RequestID: requestID})

	user, err := s.api.UpdateProfile(ctx, token, upd)
	if err != nil {
		s.dispatch(ProfileUpdateFailed{RequestID: requestID, Kind: api.KindOf(err), Message: api.MessageOf(err, "Failed to update profile")})
		return err
	}
	s.dispatch(ProfileUpdated{RequestID: requestID, Update: upd, User: user})
	return nil
}

// Logout ends the session and removes the persisted token.
func (s *Service) Logout(ctx context.Context) error {
	err := s.forget(ctx)
	s.dispatch(LoggedOut{})
	logging.Auth("Logged out")
	return err
}

// ClearError drops the one-shot error and notice.
func (s *Service) ClearError() {
	s.dispatch(ErrorCleared{})
}
