package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRefreshLeeway = 30 * time.Second
	defaultLocale        = "en"
)

// HTTPClient talks to the platform auth API over HTTP/JSON. Every request
// carries the active locale in Accept-Language and a generated
// X-Request-ID; the bearer token is attached by the auth transport.
type HTTPClient struct {
	baseURL string
	locale  string
	timeout time.Duration
	leeway  time.Duration
	http    *http.Client
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithLocale sets the Accept-Language value sent with every request.
func WithLocale(locale string) Option {
	return func(c *HTTPClient) { c.locale = locale }
}

// WithTimeout bounds every outbound request. When the timeout elapses the
// request is cancelled and reported as ErrUnavailable.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithRefreshLeeway sets how close to its exp claim a token may get before
// the transport refreshes it eagerly. Zero disables eager refresh.
func WithRefreshLeeway(d time.Duration) Option {
	return func(c *HTTPClient) { c.leeway = d }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient constructs a client for the API at baseURL. The tokens
// source supplies, replaces and invalidates the bearer token; pass the
// session service here.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		locale:  defaultLocale,
		timeout: defaultTimeout,
		leeway:  defaultRefreshLeeway,
		logger:  logging.NewSlogLogger(slog.Default()),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = &http.Client{
		Timeout: c.timeout,
		Transport: &authTransport{
			base:   http.DefaultTransport,
			tokens: tokens,
			leeway: c.leeway,
			logger: c.logger,
		},
	}
	return c
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var res authResult
	err := c.doRequest(ctx, http.MethodPost, pathLogin, nil, loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return "", nil, err
	}
	return res.AccessToken, &res.User, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password, passwordConfirmation string) (string, *models.User, error) {
	req := registerRequest{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: passwordConfirmation,
	}
	var res authResult
	if err := c.doRequest(ctx, http.MethodPost, pathRegister, nil, req, &res); err != nil {
		return "", nil, err
	}
	return res.AccessToken, &res.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, pathLogout, nil, nil, nil)
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doRequest(ctx, http.MethodGet, pathProfile, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// EditProfile submits a multipart profile update. The avatar part is
// written only when a non-nil reader is supplied.
func (c *HTTPClient) EditProfile(ctx context.Context, name, email string, avatar io.Reader, avatarName string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", name); err != nil {
		return fmt.Errorf("failed to build profile form: %w", err)
	}
	if err := w.WriteField("email", email); err != nil {
		return fmt.Errorf("failed to build profile form: %w", err)
	}
	if avatar != nil {
		fw, err := w.CreateFormFile("avatar", avatarName)
		if err != nil {
			return fmt.Errorf("failed to build avatar part: %w", err)
		}
		if _, err := io.Copy(fw, avatar); err != nil {
			return fmt.Errorf("failed to read avatar: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish profile form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathEditProfile, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, nil)
}

func (c *HTTPClient) RefreshToken(ctx context.Context) (string, error) {
	var res refreshResult
	if err := c.doRequest(ctx, http.MethodPost, pathRefreshToken, nil, nil, &res); err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

func (c *HTTPClient) SendOtp(ctx context.Context, email string) (*models.OtpChallenge, error) {
	query := url.Values{"email": {email}}
	var res models.OtpChallenge
	if err := c.doRequest(ctx, http.MethodPost, pathSendOtp, query, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) VerifyOtp(ctx context.Context, email, otp, verifyToken string) (string, error) {
	req := verifyOtpRequest{Otp: otp, VerifyToken: verifyToken, Email: email}
	var res verifyOtpResult
	if err := c.doRequest(ctx, http.MethodPost, pathVerifyOtp, nil, req, &res); err != nil {
		return "", err
	}
	return res.ResetToken, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, newPassword, passwordConfirmation, resetToken string) error {
	req := resetPasswordRequest{
		NewPassword:          newPassword,
		PasswordConfirmation: passwordConfirmation,
		ResetToken:           resetToken,
	}
	return c.doRequest(ctx, http.MethodPost, pathResetPassword, nil, req, nil)
}

// doRequest marshals body (when non-nil) as JSON and performs the request.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do sends a prepared request, decodes the response envelope and, on
// success, unmarshals the result payload into result (when non-nil).
func (c *HTTPClient) do(req *http.Request, result any) error {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.locale)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	c.logger.Debug(req.Context(), "api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(respBody)),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &Error{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Title:   env.Title,
			Message: env.Message,
			Fields:  env.Errors,
		}
	}

	if result != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}
