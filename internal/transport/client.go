package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/pkg/util"
)

// Session is the slice of the session store the transport needs. Implemented
// by *session.Store.
type Session interface {
	AccessToken() string
	RefreshToken() string
	ApplyTokens(access, refresh string)
	Clear(reason string)
}

// Client issues every outbound API call with correct credentials and makes
// token expiry invisible to callers.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	uploader   *http.Client
	session    Session
	csrf       *CSRFManager
	refresh    *refreshCoordinator
	logger     *zap.Logger

	// onSessionExpired is the global hook fired on unrecoverable auth
	// failure, the CLI analog of redirecting to the login page.
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithSessionExpiredHook sets the global unrecoverable-auth-failure handler.
func WithSessionExpiredHook(hook func()) Option {
	return func(c *Client) {
		c.onSessionExpired = hook
	}
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.uploader = hc
	}
}

// NewClient constructs the shared request pipeline.
func NewClient(cfg config.APIConfig, sess Session, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
			Jar:     jar,
		},
		uploader: &http.Client{
			// Uploads get an extended timeout so large files are not
			// mistaken for hangs.
			Timeout: cfg.UploadTimeout(),
			Jar:     jar,
		},
		session:          sess,
		logger:           logger,
		onSessionExpired: func() {},
	}
	c.csrf = newCSRFManager(c)
	c.refresh = newRefreshCoordinator(c)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CSRF exposes the CSRF manager for the rotation worker.
func (c *Client) CSRF() *CSRFManager {
	return c.csrf
}

// ForceRefresh triggers the single-flight token refresh directly, used by the
// pre-emptive refresh timer. It shares the in-flight coordination with the
// reactive 401 path.
func (c *Client) ForceRefresh(ctx context.Context) error {
	_, err := c.refresh.refresh(ctx)
	return err
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one request through the full pipeline: bearer and CSRF injection
// on the way out, coordinated refresh and replay on a 401 on the way back.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = raw
	}
	return c.send(ctx, attempt{
		method:      method,
		path:        path,
		payload:     payload,
		contentType: "application/json",
	}, out)
}

// attempt carries everything needed to (re)build one HTTP request, so the
// 401 and CSRF retries can replay it verbatim with fresh credentials.
type attempt struct {
	method      string
	path        string
	payload     []byte
	contentType string
	upload      *uploadPayload

	retried401  bool
	csrfRetried bool
}

func (c *Client) send(ctx context.Context, att attempt, out any) error {
	req, err := c.buildRequest(ctx, &att)
	if err != nil {
		return err
	}

	client := c.httpClient
	if att.upload != nil {
		client = c.uploader
	}

	resp, err := client.Do(req)
	if err != nil {
		return &util.NetworkError{Op: att.method + " " + att.path, Err: err}
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return &util.NetworkError{Op: att.method + " " + att.path, Err: readErr}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized && !att.retried401 {
		return c.handleUnauthorized(ctx, att, out)
	}

	return util.DecodeAPIError(resp.StatusCode, respBody)
}

// handleUnauthorized funnels the request through the single-flight refresh
// and replays it on success. A refresh rejected for CSRF gets a fresh CSRF
// token and exactly one replay of the original request; any other refresh
// failure has already cleared the session and is terminal.
func (c *Client) handleUnauthorized(ctx context.Context, att attempt, out any) error {
	_, err := c.refresh.refresh(ctx)
	if err != nil {
		if util.IsCSRFRejection(err) && !att.csrfRetried {
			if _, rotateErr := c.csrf.Rotate(ctx); rotateErr != nil {
				return err
			}
			att.csrfRetried = true
			att.retried401 = true
			return c.send(ctx, att, out)
		}
		return err
	}

	att.retried401 = true
	return c.send(ctx, att, out)
}

func (c *Client) buildRequest(ctx context.Context, att *attempt) (*http.Request, error) {
	target := c.baseURL.JoinPath(att.path)

	var bodyReader io.Reader
	contentType := att.contentType
	if att.upload != nil {
		reader, uploadType, err := att.upload.open()
		if err != nil {
			return nil, err
		}
		bodyReader = reader
		contentType = uploadType
	} else if len(att.payload) > 0 {
		bodyReader = bytes.NewReader(att.payload)
	}

	req, err := http.NewRequestWithContext(ctx, att.method, target.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	if bodyReader != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if isMutating(att.method) {
		token, err := c.csrf.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtain csrf token: %w", err)
		}
		req.Header.Set(csrfHeader, token)
	}

	return req, nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
