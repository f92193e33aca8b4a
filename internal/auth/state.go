// Package auth is the client-side session state machine: credential login,
// email one-time-code login, registration with code verification, profile
// validation of a persisted token, and logout.
//
// The reducer in this file is the only place session state changes. It keeps
// one invariant at all times: Authenticated implies a token is held, and
// Authenticated only becomes true in response to a server reply that issued a
// token or confirmed a profile.
package auth

import (
	"storefront/internal/state"
	"storefront/internal/types"
)

// Phase is where the session is in its flow.
type Phase string

const (
	PhaseAnonymous             Phase = "anonymous"
	PhaseCredentialsPending    Phase = "credentials-pending"
	PhaseOTPEmailEntry         Phase = "otp-email-entry"
	PhaseOTPSending            Phase = "otp-sending"
	PhaseOTPCodeEntry          Phase = "otp-code-entry"
	PhaseOTPVerifying          Phase = "otp-verifying"
	PhaseRegistrationPending   Phase = "registration-pending"
	PhaseRegistrationOTP       Phase = "registration-otp"
	PhaseRegistrationVerifying Phase = "registration-verifying"
	PhaseProfilePending        Phase = "profile-pending"
	PhaseAuthenticated         Phase = "authenticated"
)

// State is the auth slice.
type State struct {
	Token         *string
	User          *types.User
	Authenticated bool
	Phase         Phase
	// Op tracks the single in-flight auth request.
	Op state.Op[struct{}]
	// Error and Notice are shown once and then cleared.
	Error  string
	Notice string
	// OTPEmail is the address a code was sent to.
	OTPEmail string
}

// NewState returns the anonymous state.
func NewState() State {
	return State{Phase: PhaseAnonymous, Op: state.Idle[struct{}]()}
}

// HasToken reports whether a token is held.
func (s State) HasToken() bool { return s.Token != nil }

// TokenValue returns the token or "".
func (s State) TokenValue() string {
	if s.Token == nil {
		return ""
	}
	return *s.Token
}

// Loading reports whether an auth request is in flight.
func (s State) Loading() bool { return s.Op.IsPending() }

// resting is the phase to fall back to when a request ends without changing
// who the user is.
func (s State) resting() Phase {
	if s.Authenticated {
		return PhaseAuthenticated
	}
	return PhaseAnonymous
}

// =============================================================================
// ACTIONS
// =============================================================================

// Initialized loads a persisted token without trusting it.
type Initialized struct{ Token *string }

type LoginRequested struct {
	RequestID string
	Email     string
}
type LoginSucceeded struct {
	RequestID string
	Token     string
	User      types.User
}
type LoginFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}

type OTPEntryStarted struct{}
type OTPCancelled struct{}
type OTPRequested struct {
	RequestID string
	Email     string
}
type OTPSent struct {
	RequestID string
	Message   string
}
type OTPSendFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}
type OTPVerifyRequested struct{ RequestID string }
type OTPVerified struct {
	RequestID string
	Token     string
	User      types.User
}
type OTPVerifyFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}

type RegisterRequested struct {
	RequestID string
	Email     string
}
type RegisterSucceeded struct {
	RequestID string
	Email     string
	Message   string
}
type RegisterFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}
type RegistrationVerifyRequested struct{ RequestID string }

// RegistrationVerified settles a registration code check. Token is empty
// when the server wants the user to log in separately.
type RegistrationVerified struct {
	RequestID string
	Token     string
	User      *types.User
	Message   string
}
type RegistrationVerifyFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}
type RegistrationResent struct{ Message string }
type RegistrationResendFailed struct {
	Kind    state.ErrorKind
	Message string
}

type ProfileRequested struct{ RequestID string }
type ProfileLoaded struct {
	RequestID string
	User      types.User
}

// ProfileFailed ends a profile fetch. Any failure drops the token and user:
// the token could not be confirmed.
type ProfileFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}

type ProfileUpdateRequested struct{ RequestID string }
// ProfileUpdated carries the submitted fields and whatever user the server
// echoed back, which may be partial or empty.
type ProfileUpdated struct {
	RequestID string
	Update    types.ProfileUpdate
	User      types.User
}
type ProfileUpdateFailed struct {
	RequestID string
	Kind      state.ErrorKind
	Message   string
}

type LoggedOut struct{}
type ErrorCleared struct{}

func (Initialized) ActionName() string                 { return "auth/initialized" }
func (LoginRequested) ActionName() string              { return "auth/login/pending" }
func (LoginSucceeded) ActionName() string              { return "auth/login/fulfilled" }
func (LoginFailed) ActionName() string                 { return "auth/login/rejected" }
func (OTPEntryStarted) ActionName() string             { return "auth/otp/started" }
func (OTPCancelled) ActionName() string                { return "auth/otp/cancelled" }
func (OTPRequested) ActionName() string                { return "auth/sendOtp/pending" }
func (OTPSent) ActionName() string                     { return "auth/sendOtp/fulfilled" }
func (OTPSendFailed) ActionName() string               { return "auth/sendOtp/rejected" }
func (OTPVerifyRequested) ActionName() string          { return "auth/verifyOtp/pending" }
func (OTPVerified) ActionName() string                 { return "auth/verifyOtp/fulfilled" }
func (OTPVerifyFailed) ActionName() string             { return "auth/verifyOtp/rejected" }
func (RegisterRequested) ActionName() string           { return "auth/register/pending" }
func (RegisterSucceeded) ActionName() string           { return "auth/register/fulfilled" }
func (RegisterFailed) ActionName() string              { return "auth/register/rejected" }
func (RegistrationVerifyRequested) ActionName() string { return "auth/registerVerify/pending" }
func (RegistrationVerified) ActionName() string        { return "auth/registerVerify/fulfilled" }
func (RegistrationVerifyFailed) ActionName() string    { return "auth/registerVerify/rejected" }
func (RegistrationResent) ActionName() string          { return "auth/registerResend/fulfilled" }
func (RegistrationResendFailed) ActionName() string    { return "auth/registerResend/rejected" }
func (ProfileRequested) ActionName() string            { return "auth/fetchProfile/pending" }
func (ProfileLoaded) ActionName() string               { return "auth/fetchProfile/fulfilled" }
func (ProfileFailed) ActionName() string               { return "auth/fetchProfile/rejected" }
func (ProfileUpdateRequested) ActionName() string      { return "auth/updateProfile/pending" }
func (ProfileUpdated) ActionName() string              { return "auth/updateProfile/fulfilled" }
func (ProfileUpdateFailed) ActionName() string         { return "auth/updateProfile/rejected" }
func (LoggedOut) ActionName() string                   { return "auth/logout" }
func (ErrorCleared) ActionName() string                { return "auth/clearError" }

// msgMissingToken is shown when a success response carries no token.
const msgMissingToken = "Invalid response from server"

// =============================================================================
// REDUCER
// =============================================================================

// Reduce applies an auth action.
func Reduce(s State, a state.Action) State {
	s = reduce(s, a)
	// Never authenticated without a token, whatever path got here.
	if s.Token == nil {
		s.Authenticated = false
		if s.Phase == PhaseAuthenticated {
			s.Phase = PhaseAnonymous
		}
	}
	return s
}

func reduce(s State, a state.Action) State {
	switch a := a.(type) {
	case Initialized:
		s = NewState()
		if a.Token != nil && *a.Token != "" {
			tok := *a.Token
			s.Token = &tok
		}

	// ---- credentials ----
	case LoginRequested:
		s = begin(s, a.RequestID, PhaseCredentialsPending)
	case LoginSucceeded:
		if s.Op.Accepts(a.RequestID) {
			s = signIn(s, a.Token, a.User)
		}
	case LoginFailed:
		if s.Op.Accepts(a.RequestID) {
			s = fail(s, a.Kind, a.Message, s.resting())
		}

	// ---- one-time code ----
	case OTPEntryStarted:
		if !s.Op.IsPending() {
			s.Phase = PhaseOTPEmailEntry
			s.Error, s.Notice = "", ""
		}
	case OTPCancelled:
		if !s.Op.IsPending() {
			s.Phase = s.resting()
			s.OTPEmail = ""
		}
	case OTPRequested:
		s = begin(s, a.RequestID, PhaseOTPSending)
		s.OTPEmail = a.Email
	case OTPSent:
		if s.Op.Accepts(a.RequestID) {
			s.Op = state.Succeeded(struct{}{})
			s.Phase = PhaseOTPCodeEntry
			s.Notice = a.Message
		}
	case OTPSendFailed:
		if s.Op.Accepts(a.RequestID) {
			s = fail(s, a.Kind, a.Message, PhaseOTPEmailEntry)
		}
	case OTPVerifyRequested:
		s = begin(s, a.RequestID, PhaseOTPVerifying)
	case OTPVerified:
		if s.Op.Accepts(a.RequestID) {
			s = signIn(s, a.Token, a.User)
			if s.Authenticated {
				s.OTPEmail = ""
			}
		}
	case OTPVerifyFailed:
		if s.Op.Accepts(a.RequestID) {
			s = fail(s, a.Kind, a.Message, PhaseOTPCodeEntry)
		}

	// ---- registration ----
	case RegisterRequested:
		s = begin(s, a.RequestID, PhaseRegistrationPending)
	case RegisterSucceeded:
		if s.Op.Accepts(a.RequestID) {
			s.Op = state.Succeeded(struct{}{})
			s.Phase = PhaseRegistrationOTP
			s.OTPEmail = a.Email
			s.Notice = a.Message
		}
	case RegisterFailed:
		if s.Op.Accepts(a.RequestID) {
			s = fail(s, a.Kind, a.Message, s.resting())
		}
	case RegistrationVerifyRequested:
		s = begin(s, a.RequestID, PhaseRegistrationVerifying)
	case RegistrationVerified:
		if !s.Op.Accepts(a.RequestID) {
			break
		}
		switch {
		case a.Token == "":
			// Verified, but the server wants a separate login.
			s.Op = state.Succeeded(struct{}{})
			s.Phase = s.resting()
			s.OTPEmail = ""
			s.Notice = a.Message
		case a.User != nil:
			s = signIn(s, a.Token, *a.User)
			s.OTPEmail = ""
			s.Notice = a.Message
		default:
			// Token issued without a profile: hold it, confirm via profile fetch.
			tok := a.Token
			s.Op = state.Succeeded(struct{}{})
			s.Token = &tok
			s.User = nil
			s.Authenticated = false
			s.Phase = PhaseProfilePending
			s.OTPEmail = ""
			s.Notice = a.Message
		}
	case RegistrationVerifyFailed:
		if s.Op.Accepts(a.RequestID) {
			s = fail(s, a.Kind, a.Message, PhaseRegistrationOTP)
		}
	case RegistrationResent:
		s.Notice = a.Message
		s.Error = ""
	case RegistrationResendFailed:
		s.Error = a.Message

	// ---- profile ----
	case ProfileRequested:
		if s.Token == nil {
			break
		}
		s = begin(s, a.RequestID, PhaseProfilePending)
	case ProfileLoaded:
		if s.Op.Accepts(a.RequestID) && s.Token != nil {
			u := a.User
			s.Op = state.Succeeded(struct{}{})
			s.User = &u
			s.Authenticated = true
			s.Phase = PhaseAuthenticated
		}
	case ProfileFailed:
		if s.Op.Accepts(a.RequestID) {
			s.Op = state.Failed[struct{}](a.Kind, a.Message)
			s.Token = nil
			s.User = nil
			s.Authenticated = false
			s.Phase = PhaseAnonymous
			s.Error = a.Message
		}
	case ProfileUpdateRequested:
		if s.Token == nil {
			break
		}
		phase := s.Phase
		s = begin(s, a.RequestID, phase)
	case ProfileUpdated:
		if s.Op.Accepts(a.RequestID) {
			s.Op = state.Succeeded(struct{}{})
			if s.User != nil {
				u := a.Update.ApplyTo(*s.User).Merge(a.User)
				s.User = &u
			}
			s.Notice = "Profile updated successfully"
		}
	case ProfileUpdateFailed:
		if s.Op.Accepts(a.RequestID) {
			s = fail(s, a.Kind, a.Message, s.Phase)
		}

	case LoggedOut:
		s = NewState()
	case ErrorCleared:
		s.Error = ""
		s.Notice = ""
	}
	return s
}

func begin(s State, requestID string, phase Phase) State {
	s.Op = state.Pending[struct{}](requestID)
	s.Phase = phase
	s.Error = ""
	s.Notice = ""
	return s
}

func fail(s State, kind state.ErrorKind, msg string, phase Phase) State {
	s.Op = state.Failed[struct{}](kind, msg)
	s.Phase = phase
	s.Error = msg
	return s
}

// signIn stores a server-issued token and user. A success without a token is
// not a sign-in.
func signIn(s State, token string, user types.User) State {
	if token == "" {
		return fail(s, state.ErrorKindDecode, msgMissingToken, s.resting())
	}
	tok := token
	u := user
	s.Op = state.Succeeded(struct{}{})
	s.Token = &tok
	s.User = &u
	s.Authenticated = true
	s.Phase = PhaseAuthenticated
	s.Error = ""
	return s
}
