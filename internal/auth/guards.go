package auth

import "errors"

var (
	// ErrLoginRequired is returned when a page needs a session and none is held.
	ErrLoginRequired = errors.New("login required")
	// ErrForbidden is returned when the user lacks the ADMIN role.
	ErrForbidden = errors.New("admin access required")
	// ErrOAuthUnavailable is returned for social login providers.
	ErrOAuthUnavailable = errors.New("OAuth login coming soon")
)

// RequireAuth gates pages that need a session. Holding a token is enough;
// the profile fetch decides whether it is still valid.
func RequireAuth(s State) error {
	if s.Token == nil {
		return ErrLoginRequired
	}
	return nil
}

// RequireAdmin gates admin pages.
func RequireAdmin(s State) error {
	if err := RequireAuth(s); err != nil {
		return err
	}
	if s.User == nil || !s.User.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// OAuthLogin is the entry point for social providers, which are not offered.
func OAuthLogin(provider string) error {
	return ErrOAuthUnavailable
}
