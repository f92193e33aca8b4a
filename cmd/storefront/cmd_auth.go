package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/auth"
	"storefront/internal/types"
)

// Auth flags
var (
	authEmail    string
	authPassword string
	authCode     string

	regConfirm string
	regFirst   string
	regLast    string
	regPhone   string

	profFirst   string
	profLast    string
	profPhone   string
	profAddress string
	profCity    string
	profState   string
	profCountry string
	profZip     string
)

// loginCmd signs in with email and password
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Signs in and stores the session token so later commands run as you.

Example:
  storefront login --email ann@example.com --password secret1`,
	RunE: runLogin,
}

// logoutCmd ends the session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE:  runLogout,
}

// otpCmd groups the one-time code login flow
var otpCmd = &cobra.Command{
	Use:   "otp",
	Short: "Sign in with a one-time code sent by email",
	Long: `Passwordless login in two steps:

  storefront otp send --email ann@example.com
  storefront otp verify --email ann@example.com --code 123456`,
}

var otpSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email a login code",
	RunE:  runOTPSend,
}

var otpVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Exchange a login code for a session",
	RunE:  runOTPVerify,
}

// registerCmd creates an account
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Creates an account. The server emails a verification code, which is
confirmed with 'storefront register verify'.`,
	RunE: runRegister,
}

var registerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm the registration code",
	RunE:  runRegisterVerify,
}

var registerResendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Send a fresh registration code",
	RunE:  runRegisterResend,
}

// profileCmd shows the signed-in user
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE:  runProfile,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	Long: `Updates the given profile fields; fields without a flag keep their value.

Example:
  storefront profile update --city Oslo --zip 0150`,
	RunE: runProfileUpdate,
}

func init() {
	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password")

	otpSendCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	otpVerifyCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	otpVerifyCmd.Flags().StringVar(&authCode, "code", "", "6-digit code from the email")
	otpCmd.AddCommand(otpSendCmd, otpVerifyCmd)

	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Password (at least 6 characters)")
	registerCmd.Flags().StringVar(&regConfirm, "confirm", "", "Password again")
	registerCmd.Flags().StringVar(&regFirst, "first", "", "First name")
	registerCmd.Flags().StringVar(&regLast, "last", "", "Last name")
	registerCmd.Flags().StringVar(&regPhone, "phone", "", "Phone number")
	registerVerifyCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerVerifyCmd.Flags().StringVar(&authCode, "code", "", "6-digit code from the email")
	registerResendCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.AddCommand(registerVerifyCmd, registerResendCmd)

	profileUpdateCmd.Flags().StringVar(&profFirst, "first", "", "First name")
	profileUpdateCmd.Flags().StringVar(&profLast, "last", "", "Last name")
	profileUpdateCmd.Flags().StringVar(&profPhone, "phone", "", "Phone number")
	profileUpdateCmd.Flags().StringVar(&profAddress, "address", "", "Street address")
	profileUpdateCmd.Flags().StringVar(&profCity, "city", "", "City")
	profileUpdateCmd.Flags().StringVar(&profState, "state", "", "State or region")
	profileUpdateCmd.Flags().StringVar(&profCountry, "country", "", "Country")
	profileUpdateCmd.Flags().StringVar(&profZip, "zip", "", "Postal code")
	profileCmd.AddCommand(profileUpdateCmd)
}

// authFailure turns a service error into what the user should read: field
// messages for validation, the session's error message for server failures.
func authFailure(a *app.App, err error) error {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	if msg := a.State().Auth.Error; msg != "" {
		return errors.New(msg)
	}
	return err
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Auth.Login(ctx, authEmail, authPassword); err != nil {
		return authFailure(a, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.State().Auth.User.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runOTPSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Auth.SendOTP(ctx, authEmail); err != nil {
		return authFailure(a, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.State().Auth.Notice)
	return nil
}

func runOTPVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Auth.VerifyOTP(ctx, authEmail, authCode); err != nil {
		return authFailure(a, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.State().Auth.User.DisplayName())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	form := auth.RegistrationForm{
		Email:           authEmail,
		Password:        authPassword,
		ConfirmPassword: regConfirm,
		FirstName:       regFirst,
		LastName:        regLast,
		PhoneNumber:     regPhone,
	}
	if err := a.Auth.Register(ctx, form); err != nil {
		return authFailure(a, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, a.State().Auth.Notice)
	fmt.Fprintf(out, "Confirm with: storefront register verify --email %s --code <code>\n", a.State().Auth.OTPEmail)
	return nil
}

func runRegisterVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Auth.VerifyRegistration(ctx, authEmail, authCode); err != nil {
		return authFailure(a, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.State().Auth.Notice)
	return nil
}

func runRegisterResend(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Auth.ResendRegistrationOTP(ctx, authEmail); err != nil {
		return authFailure(a, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.State().Auth.Notice)
	return nil
}

// signedIn confirms the stored token and returns the user.
func signedIn(ctx context.Context, a *app.App) (*types.User, error) {
	if err := auth.RequireAuth(a.State().Auth); err != nil {
		return nil, fmt.Errorf("not logged in: run 'storefront login' first")
	}
	if err := a.Auth.FetchProfile(ctx); err != nil {
		return nil, fmt.Errorf("session expired, please log in again: %w", authFailure(a, err))
	}
	return a.State().Auth.User, nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := signedIn(ctx, a)
	if err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), *u)
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := signedIn(ctx, a)
	if err != nil {
		return err
	}

	upd := types.ProfileUpdate{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		City:        u.City,
		State:       u.State,
		Country:     u.Country,
		ZipCode:     u.ZipCode,
	}
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("first", &upd.FirstName, profFirst)
	set("last", &upd.LastName, profLast)
	set("phone", &upd.PhoneNumber, profPhone)
	set("address", &upd.Address, profAddress)
	set("city", &upd.City, profCity)
	set("state", &upd.State, profState)
	set("country", &upd.Country, profCountry)
	set("zip", &upd.ZipCode, profZip)

	if err := a.Auth.UpdateProfile(ctx, upd); err != nil {
		return authFailure(a, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, a.State().Auth.Notice)
	printProfile(out, *a.State().Auth.User)
	return nil
}

func printProfile(w io.Writer, u types.User) {
	fmt.Fprintf(w, "Name:    %s\n", u.DisplayName())
	fmt.Fprintf(w, "Email:   %s\n", u.Email)
	fmt.Fprintf(w, "Role:    %s\n", u.Role)
	if u.PhoneNumber != "" {
		fmt.Fprintf(w, "Phone:   %s\n", u.PhoneNumber)
	}
	if u.Address != "" || u.City != "" {
		fmt.Fprintf(w, "Address: %s, %s %s %s %s\n", u.Address, u.City, u.State, u.ZipCode, u.Country)
	}
}
