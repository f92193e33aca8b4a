package auth

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ValidationError carries per-field messages for inline display. It is
// produced before any network call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for one field.
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func (f fieldErrors) email(v string) {
	switch {
	case strings.TrimSpace(v) == "":
		f["email"] = "Email is required"
	case !emailPattern.MatchString(v):
		f["email"] = "Email is invalid"
	}
}

// ValidateEmail checks a single email address.
func ValidateEmail(email string) error {
	f := fieldErrors{}
	f.email(email)
	return f.err()
}

// ValidateLogin checks the credentials form.
func ValidateLogin(email, password string) error {
	f := fieldErrors{}
	f.email(email)
	if password == "" {
		f["password"] = "Password is required"
	}
	return f.err()
}

// ValidateOTP checks that code is exactly six digits.
func ValidateOTP(code string) error {
	f := fieldErrors{}
	switch {
	case strings.TrimSpace(code) == "":
		f["otp"] = "Please enter the OTP"
	case !otpPattern.MatchString(code):
		f["otp"] = "Please enter a valid 6-digit OTP"
	}
	return f.err()
}

// RegistrationForm is the sign-up form.
type RegistrationForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	PhoneNumber     string
}

// ValidateRegistration checks the sign-up form.
func ValidateRegistration(r RegistrationForm) error {
	f := fieldErrors{}
	if strings.TrimSpace(r.FirstName) == "" {
		f["firstName"] = "First name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		f["lastName"] = "Last name is required"
	}
	f.email(r.Email)
	switch {
	case strings.TrimSpace(r.PhoneNumber) == "":
		f["phoneNumber"] = "Phone number is required"
	case !phonePattern.MatchString(r.PhoneNumber):
		f["phoneNumber"] = "Phone number is invalid"
	}
	switch {
	case r.Password == "":
		f["password"] = "Password is required"
	case len(r.Password) < MinPasswordLength:
		f["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	if r.Password != r.ConfirmPassword {
		f["confirmPassword"] = "Passwords do not match"
	}
	return f.err()
}
