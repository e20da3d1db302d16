package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "u-1",
		Name:  "Pat Staff",
		Email: "staff@example.com",
		Role:  domain.RoleStaff,
	}
}

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(NewFileStorage(path), events.NewInMemoryDispatcher(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestStoreRestoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := newTestStore(t, path)
	store.SetSession("A1", "R1", testUser())
	store.SetSidebarCollapsed(true)

	// A fresh store over the same file must observe the identical session.
	restored := newTestStore(t, path)
	state := restored.Current()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "A1", state.AccessToken)
	assert.Equal(t, "R1", state.RefreshToken)
	assert.True(t, state.SidebarCollapsed)
	require.NotNil(t, state.User)
	assert.Equal(t, "u-1", state.User.ID)
	assert.Equal(t, domain.RoleStaff, state.User.Role)
}

func TestStoreMissingFileMeansLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "session.json")

	store := newTestStore(t, path)
	state := store.Current()
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}

func TestApplyTokensKeepsRefreshWhenNotRotated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := newTestStore(t, path)
	store.SetSession("A1", "R1", testUser())

	store.ApplyTokens("A2", "")
	assert.Equal(t, "A2", store.AccessToken())
	assert.Equal(t, "R1", store.RefreshToken(), "empty rotation keeps the stored refresh token")

	store.ApplyTokens("A3", "R3")
	assert.Equal(t, "A3", store.AccessToken())
	assert.Equal(t, "R3", store.RefreshToken())
}

func TestClearKeepsSidebarPreference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := newTestStore(t, path)
	store.SetSession("A1", "R1", testUser())
	store.SetSidebarCollapsed(true)

	store.Clear("logout")

	state := store.Current()
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, state.AccessToken)
	assert.Empty(t, state.RefreshToken)
	assert.Nil(t, state.User)
	assert.True(t, state.SidebarCollapsed, "UI preference survives logout")

	// And the cleared state is what a restart sees.
	restored := newTestStore(t, path)
	assert.False(t, restored.Current().IsAuthenticated)
	assert.True(t, restored.Current().SidebarCollapsed)
}

func TestSubscribersSeeEveryTransition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := newTestStore(t, path)

	var seen []State
	store.Subscribe(func(s State) { seen = append(seen, s) })

	store.SetSession("A1", "R1", testUser())
	store.ApplyTokens("A2", "R2")
	store.Clear("logout")

	require.Len(t, seen, 3)
	assert.True(t, seen[0].IsAuthenticated)
	assert.Equal(t, "A2", seen[1].AccessToken)
	assert.False(t, seen[2].IsAuthenticated)
}

func TestHasRole(t *testing.T) {
	officer := &domain.User{ID: "u-2", Role: domain.RoleITOfficer}

	tests := []struct {
		name  string
		state State
		min   domain.Role
		want  bool
	}{
		{"unauthenticated", State{}, domain.RoleStaff, false},
		{"missing user", State{IsAuthenticated: true}, domain.RoleStaff, false},
		{"exact role", State{IsAuthenticated: true, User: officer}, domain.RoleITOfficer, true},
		{"outranks", State{IsAuthenticated: true, User: officer}, domain.RoleStaff, true},
		{"outranked", State{IsAuthenticated: true, User: officer}, domain.RoleAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.HasRole(tt.min))
		})
	}
}
