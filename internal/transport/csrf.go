package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/pkg/util"
)

const (
	csrfHeader = "X-CSRF-Token"
	csrfPath   = "/security/csrf-token"
)

// CSRFManager holds the process-wide anti-forgery token. The token lives only
// in memory, is fetched out-of-band from the request pipeline, and is replaced
// wholesale on every fetch: latest wins.
type CSRFManager struct {
	client *Client

	mu    sync.Mutex
	token string
}

func newCSRFManager(client *Client) *CSRFManager {
	return &CSRFManager{client: client}
}

// Token returns the current CSRF token, fetching one synchronously when none
// is held yet. Mutating requests block on this before they are sent.
func (m *CSRFManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.token != "" {
		token := m.token
		m.mu.Unlock()
		return token, nil
	}
	m.mu.Unlock()
	return m.Rotate(ctx)
}

// Rotate fetches a fresh token and installs it.
func (m *CSRFManager) Rotate(ctx context.Context) (string, error) {
	token, err := m.fetch(ctx)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return token, nil
}

// RunRotationLoop re-fetches the token on a fixed interval. Blocks until ctx
// is done.
func (m *CSRFManager) RunRotationLoop(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Rotate(ctx); err != nil {
				logger.Warn("csrf rotation failed", zap.Error(err))
			}
		}
	}
}

// fetch retrieves a token with a bare GET outside the interceptor pipeline,
// so a CSRF fetch can never recurse into refresh handling.
func (m *CSRFManager) fetch(ctx context.Context) (string, error) {
	target := m.client.baseURL.JoinPath(csrfPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if token := m.client.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := m.client.httpClient.Do(req)
	if err != nil {
		return "", &util.NetworkError{Op: "GET " + csrfPath, Err: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", &util.NetworkError{Op: "GET " + csrfPath, Err: readErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", util.DecodeAPIError(resp.StatusCode, body)
	}

	token, err := decodeCSRFBody(body)
	if err != nil {
		return "", err
	}
	return token, nil
}

func decodeCSRFBody(body []byte) (string, error) {
	var plain struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &plain); err == nil && plain.Token != "" {
		return plain.Token, nil
	}

	var wrapped struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data.Token != "" {
		return wrapped.Data.Token, nil
	}
	return "", fmt.Errorf("csrf response carried no token")
}
