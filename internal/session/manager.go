package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// LoginResult carries the credentials returned by POST /auth/login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

// AuthAPI is the slice of the backend the manager needs for login.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
}

// Refresher triggers the transport's coordinated token refresh. Both the
// periodic timer below and the reactive 401 path converge on the same
// single-flight implementation, so the two can never race into issuing
// concurrent refresh calls.
type Refresher interface {
	ForceRefresh(ctx context.Context) error
}

// Manager drives session lifecycle: login, logout, restore, refresh.
type Manager struct {
	store     *Store
	auth      AuthAPI
	refresher Refresher
	logger    *zap.Logger
}

// NewManager constructs a manager.
func NewManager(store *Store, auth AuthAPI, refresher Refresher, logger *zap.Logger) *Manager {
	return &Manager{store: store, auth: auth, refresher: refresher, logger: logger}
}

// Login authenticates and installs the resulting session.
func (m *Manager) Login(ctx context.Context, email, password string) (State, error) {
	result, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return m.store.Current(), err
	}
	m.store.SetSession(result.AccessToken, result.RefreshToken, result.User)

	if exp, err := TokenExpiry(result.AccessToken); err == nil {
		m.logger.Debug("logged in", zap.Time("access_token_expiry", exp))
	}
	return m.store.Current(), nil
}

// Logout clears the session from memory and durable storage.
func (m *Manager) Logout() {
	m.store.Clear("user logout")
}

// Restore returns the session seeded from durable storage at startup, and
// whether it represents an authenticated user.
func (m *Manager) Restore() (State, bool) {
	state := m.store.Current()
	return state, state.IsAuthenticated
}

// Refresh forces a token refresh through the shared single-flight path.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresher.ForceRefresh(ctx)
}

// RunRefreshLoop pre-emptively refreshes the access token on a fixed period
// so it is renewed before it would cause a 401. Blocks until ctx is done.
func (m *Manager) RunRefreshLoop(ctx context.Context, interval time.Duration) {
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
			state := m.store.Current()
			if !state.IsAuthenticated {
				continue
			}
			if err := m.Refresh(ctx); err != nil {
				m.logger.Warn("pre-emptive refresh failed", zap.Error(err))
				continue
			}
			if exp, err := TokenExpiry(m.store.AccessToken()); err == nil {
				m.logger.Debug("session refreshed", zap.Time("access_token_expiry", exp))
			}
		}
	}
}
