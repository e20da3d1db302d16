package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/events"
)

type fakeAuthAPI struct {
	result LoginResult
	err    error
	email  string
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (LoginResult, error) {
	f.email = email
	return f.result, f.err
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) ForceRefresh(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestManagerLoginInstallsSession(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "session.json"))
	auth := &fakeAuthAPI{result: LoginResult{
		AccessToken:  "A1",
		RefreshToken: "R1",
		User:         testUser(),
	}}
	mgr := NewManager(store, auth, &fakeRefresher{}, zap.NewNop())

	state, err := mgr.Login(context.Background(), "staff@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", auth.email)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "A1", store.AccessToken())

	restored, ok := mgr.Restore()
	assert.True(t, ok)
	assert.Equal(t, "A1", restored.AccessToken)
}

func TestManagerLoginFailureLeavesSessionUntouched(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "session.json"))
	auth := &fakeAuthAPI{err: errors.New("invalid credentials")}
	mgr := NewManager(store, auth, &fakeRefresher{}, zap.NewNop())

	state, err := mgr.Login(context.Background(), "staff@example.com", "wrong")
	assert.Error(t, err)
	assert.False(t, state.IsAuthenticated)

	_, ok := mgr.Restore()
	assert.False(t, ok)
}

func TestManagerLogoutClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := newTestStore(t, path)
	store.SetSession("A1", "R1", testUser())
	mgr := NewManager(store, &fakeAuthAPI{}, &fakeRefresher{}, zap.NewNop())

	mgr.Logout()

	_, ok := mgr.Restore()
	assert.False(t, ok)
	assert.Empty(t, store.AccessToken())
}

func TestManagerRefreshDelegatesToSingleFlight(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "session.json"))
	refresher := &fakeRefresher{}
	mgr := NewManager(store, &fakeAuthAPI{}, refresher, zap.NewNop())

	require.NoError(t, mgr.Refresh(context.Background()))
	assert.Equal(t, 1, refresher.calls)
}

func TestStoreClearPublishesSessionClearedEvent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	var reasons []string
	dispatcher.Subscribe(events.EventSessionCleared, func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.SessionClearedPayload); ok {
			reasons = append(reasons, payload.Reason)
		}
		return nil
	})

	store, err := NewStore(NewFileStorage(filepath.Join(t.TempDir(), "session.json")), dispatcher, zap.NewNop())
	require.NoError(t, err)

	store.SetSession("A1", "R1", testUser())
	store.Clear("refresh rejected")

	require.Len(t, reasons, 1)
	assert.Equal(t, "refresh rejected", reasons[0])
}
