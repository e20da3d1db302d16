package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/pkg/util"
)

const refreshPath = "/auth/refresh"

// ErrSessionExpired is returned to callers whose request was pending when a
// refresh failed terminally.
var ErrSessionExpired = errors.New("session expired")

type refreshOutcome struct {
	accessToken string
	err         error
}

// refreshCoordinator enforces the system-wide invariant that at most one
// refresh call is ever in flight. Requests that hit a 401 while a refresh is
// pending enqueue a waiter and are satisfied by the same outcome.
type refreshCoordinator struct {
	client *Client

	mu       sync.Mutex
	inFlight bool
	waiters  []chan refreshOutcome
}

func newRefreshCoordinator(client *Client) *refreshCoordinator {
	return &refreshCoordinator{client: client}
}

// refresh returns the access token produced by the refresh that unblocked the
// caller, never a stale one.
func (r *refreshCoordinator) refresh(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.inFlight {
		ch := make(chan refreshOutcome, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		select {
		case outcome := <-ch:
			return outcome.accessToken, outcome.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	r.inFlight = true
	r.mu.Unlock()

	token, err := r.doRefresh(ctx)

	r.mu.Lock()
	r.inFlight = false
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	// FIFO release: every queued continuation observes the same outcome.
	for _, ch := range waiters {
		ch <- refreshOutcome{accessToken: token, err: err}
	}
	return token, err
}

// doRefresh performs the actual network call. On success the rotated tokens
// are persisted before any waiter is released. On a non-CSRF failure the
// session is cleared and the global expiry hook fires; the CSRF case is left
// for the caller to retry once.
func (r *refreshCoordinator) doRefresh(ctx context.Context) (string, error) {
	refreshToken := r.client.session.RefreshToken()
	if refreshToken == "" {
		r.expire("no refresh token held")
		return "", ErrSessionExpired
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}

	target := r.client.baseURL.JoinPath(refreshPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// The refresh endpoint mutates server-side session state, so it carries
	// the CSRF header like any other POST.
	csrfToken, err := r.client.csrf.Token(ctx)
	if err != nil {
		return "", err
	}
	req.Header.Set(csrfHeader, csrfToken)

	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		netErr := &util.NetworkError{Op: "POST " + refreshPath, Err: err}
		r.expire("refresh network failure")
		return "", netErr
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		r.expire("refresh read failure")
		return "", &util.NetworkError{Op: "POST " + refreshPath, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := util.DecodeAPIError(resp.StatusCode, body)
		if util.IsCSRFRejection(apiErr) {
			// Not terminal: the caller re-fetches the CSRF token and
			// retries the original request exactly once.
			return "", apiErr
		}
		r.expire("refresh rejected")
		return "", apiErr
	}

	access, rotated, err := decodeAuthTokens(body)
	if err != nil {
		r.expire("refresh response malformed")
		return "", err
	}

	r.client.session.ApplyTokens(access, rotated)
	r.client.logger.Debug("access token refreshed", zap.Bool("refresh_token_rotated", rotated != ""))
	return access, nil
}

func (r *refreshCoordinator) expire(reason string) {
	r.client.session.Clear(reason)
	if r.client.onSessionExpired != nil {
		r.client.onSessionExpired()
	}
}

// decodeAuthTokens tolerates both the flat and the data-wrapped envelope the
// backend is known to emit.
func decodeAuthTokens(body []byte) (access, refresh string, err error) {
	var flat struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.AccessToken != "" {
		return flat.AccessToken, flat.RefreshToken, nil
	}

	var wrapped struct {
		Data struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data.AccessToken != "" {
		return wrapped.Data.AccessToken, wrapped.Data.RefreshToken, nil
	}
	return "", "", errors.New("refresh response carried no access token")
}
