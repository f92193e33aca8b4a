// Package api is the HTTP client for the remote storefront API. The API owns
// all business truth (pricing, inventory, accounts); this package only calls
// it and maps every response to canonical internal types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/types"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client talks to the storefront API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the process logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client rooted at baseURL (scheme and host, optional path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// AuthResponse is returned by login and OTP verification.
type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// RegistrationResult is returned by registration OTP verification. The
// server may or may not issue a token; without one the user must log in.
type RegistrationResult struct {
	Token   string      `json:"token"`
	User    *types.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a token and user.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	err := c.doJSON(ctx, "login", http.MethodPost, "/api/auth/login", nil, "", body, &out)
	return out, err
}

// Register creates an account and triggers a registration OTP email.
// It returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	raw, err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", nil, "", req)
	if err != nil {
		return "", err
	}
	return responseMessage(raw), nil
}

// SendOTP emails a login code to email.
func (c *Client) SendOTP(ctx context.Context, email string) (string, error) {
	q := url.Values{"email": {email}}
	raw, err := c.do(ctx, "send-otp", http.MethodPost, "/api/auth/send-otp", q, "", nil)
	if err != nil {
		return "", err
	}
	return responseMessage(raw), nil
}

// VerifyOTP exchanges an emailed login code for a token and user.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (AuthResponse, error) {
	var out AuthResponse
	q := url.Values{"email": {email}, "otp": {otp}}
	err := c.doJSON(ctx, "verify-otp", http.MethodPost, "/api/auth/verify-otp", q, "", nil, &out)
	return out, err
}

// VerifyRegistrationOTP confirms a registration code.
func (c *Client) VerifyRegistrationOTP(ctx context.Context, email, otp string) (RegistrationResult, error) {
	q := url.Values{"email": {email}, "otp": {otp}}
	raw, err := c.do(ctx, "register/verify-otp", http.MethodPost, "/api/auth/register/verify-otp", q, "", nil)
	if err != nil {
		return RegistrationResult{}, err
	}
	var out RegistrationResult
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return RegistrationResult{}, &DecodeError{Op: "register/verify-otp", Err: err}
		}
		return out, nil
	}
	out.Message = responseMessage(raw)
	return out, nil
}

// ResendRegistrationOTP sends a fresh registration code.
func (c *Client) ResendRegistrationOTP(ctx context.Context, email string) (string, error) {
	q := url.Values{"email": {email}}
	raw, err := c.do(ctx, "register/resend-otp", http.MethodPost, "/api/auth/register/resend-otp", q, "", nil)
	if err != nil {
		return "", err
	}
	return responseMessage(raw), nil
}

// Profile fetches the user that owns token.
func (c *Client) Profile(ctx context.Context, token string) (types.User, error) {
	var out types.User
	err := c.doJSON(ctx, "profile", http.MethodGet, "/api/auth/profile", nil, token, nil, &out)
	return out, err
}

// UpdateProfile saves editable profile fields and returns the updated user.
// A 2xx answer without a JSON user (empty, plain text) still means the
// update was saved, so it returns a zero User and no error.
func (c *Client) UpdateProfile(ctx context.Context, token string, upd types.ProfileUpdate) (types.User, error) {
	raw, err := c.do(ctx, "update-profile", http.MethodPut, "/api/auth/profile", nil, token, upd)
	if err != nil {
		return types.User{}, err
	}
	if body := bytes.TrimSpace(raw); len(body) == 0 || body[0] != '{' {
		logging.APIDebug("update-profile: non-JSON success body (%d bytes)", len(raw))
		return types.User{}, nil
	}
	var out types.User
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.User{}, &DecodeError{Op: "update-profile", Err: err}
	}
	return out, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

// Products fetches the full product list.
func (c *Client) Products(ctx context.Context) ([]types.Product, error) {
	raw, err := c.do(ctx, "products", http.MethodGet, "/api/products", nil, "", nil)
	if err != nil {
		return nil, err
	}
	products, err := NormalizeProductList(raw)
	if err != nil {
		return nil, &DecodeError{Op: "products", Err: err}
	}
	return products, nil
}

// Product fetches one product by id.
func (c *Client) Product(ctx context.Context, id int64) (types.Product, error) {
	var out types.Product
	path := "/api/products/" + strconv.FormatInt(id, 10)
	err := c.doJSON(ctx, "product", http.MethodGet, path, nil, "", nil, &out)
	return out, err
}

// SearchProducts runs a server-side search.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]types.Product, error) {
	q := url.Values{"query": {query}}
	raw, err := c.do(ctx, "search", http.MethodGet, "/api/products/search", q, "", nil)
	if err != nil {
		return nil, err
	}
	products, err := NormalizeSearchResults(raw)
	if err != nil {
		return nil, &DecodeError{Op: "search", Err: err}
	}
	return products, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, token string, in, out interface{}) error {
	raw, err := c.do(ctx, op, method, path, query, token, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, in interface{}) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	timer := logging.StartTimer(logging.CategoryAPI, method+" "+path)
	resp, err := c.http.Do(req)
	elapsed := timer.StopWithThreshold(5 * time.Second)
	if err != nil {
		logging.Get(logging.CategoryAPI).Warn("%s %s failed: %v", method, path, err)
		c.logger.Debug("api request failed",
			zap.String("op", op), zap.String("request_id", requestID), zap.Error(err))
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	logging.APIDebug("%s %s -> %d (%d bytes, %v)", method, path, resp.StatusCode, len(raw), elapsed)
	c.logger.Debug("api request",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, raw)
	}
	return raw, nil
}

// responseMessage extracts a human-readable confirmation from a success body.
func responseMessage(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "{") {
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil {
			return payload.Message
		}
	}
	return strings.Trim(text, `"`)
}
