package stub

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/api"
	"github.com/spec-kit/complaint-portal/internal/cache"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/session"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// startTestServer boots the stub on a loopback listener and returns its base
// URL, so the real transport client can talk to it over the wire.
func startTestServer(t *testing.T) string {
	t.Helper()

	app := newTestApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	baseURL := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/health/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "stub server did not come up")
	return baseURL
}

func newPortalClient(t *testing.T, baseURL string) (*transport.Client, *session.Store, *session.Manager) {
	t.Helper()

	logger := zap.NewNop()
	storage := session.NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	store, err := session.NewStore(storage, events.NewInMemoryDispatcher(logger), logger)
	require.NoError(t, err)

	client, err := transport.NewClient(config.APIConfig{
		BaseURL:           baseURL,
		RequestTimeoutSec: 5,
		UploadTimeoutSec:  10,
	}, store, logger)
	require.NoError(t, err)

	manager := session.NewManager(store, api.NewAuthClient(client), client, logger)
	return client, store, manager
}

func TestClientRefreshRoundTripAgainstStub(t *testing.T) {
	baseURL := startTestServer(t)
	client, store, manager := newPortalClient(t, baseURL)

	state, err := manager.Login(context.Background(), "staff@example.com", "password123")
	require.NoError(t, err)
	require.True(t, state.IsAuthenticated)
	originalRefresh := store.RefreshToken()
	require.NotEmpty(t, originalRefresh)

	// Sabotage the access token so the next call draws a 401 from the stub,
	// the way a token past its exp would.
	store.ApplyTokens("not-a-valid-jwt", "")

	users := api.NewUsersClient(client)
	me, err := users.Me(context.Background())
	require.NoError(t, err, "the 401 must be absorbed by refresh and replay")
	assert.Equal(t, "staff@example.com", me.Email)

	assert.NotEqual(t, "not-a-valid-jwt", store.AccessToken(), "access token was renewed")
	assert.NotEqual(t, originalRefresh, store.RefreshToken(), "refresh token was rotated")

	// The rotated credentials keep working without another login.
	again, err := users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, me.ID, again.ID)
}

func TestClientMutationRoundTripAgainstStub(t *testing.T) {
	baseURL := startTestServer(t)
	client, _, manager := newPortalClient(t, baseURL)

	_, err := manager.Login(context.Background(), "staff@example.com", "password123")
	require.NoError(t, err)

	// A create exercises CSRF fetch + header injection against the stub's
	// enforcement, and the double-wrapped envelopes on the way back.
	complaints := api.NewComplaintsClient(client, cache.NewMemoryStore(), time.Minute)
	created, err := complaints.Create(context.Background(), api.CreateComplaintRequest{
		Subject:      "stale coffee",
		Description:  "the fourth-floor machine has been broken for a week",
		CategoryID:   "cat-facilities",
		DepartmentID: "dep-ops",
		PriorityID:   "pr-low",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	page, err := complaints.List(context.Background(), api.ComplaintListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Complaints, 1)
	assert.Equal(t, created.ID, page.Complaints[0].ID)
	assert.Equal(t, 1, page.Meta.Total)
}
