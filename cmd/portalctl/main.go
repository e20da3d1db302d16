// Package main provides the portalctl binary, the terminal front end for the
// staff complaint portal.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/api"
	"github.com/spec-kit/complaint-portal/internal/cache"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/observability"
	"github.com/spec-kit/complaint-portal/internal/session"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

const version = "0.1.0"

// app bundles everything the commands need.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	dispatcher events.Dispatcher
	storage    *session.FileStorage
	store      *session.Store
	manager    *session.Manager
	http       *transport.Client

	auth          *api.AuthClient
	complaints    *api.ComplaintsClient
	tracking      *api.TrackingClient
	attachments   *api.AttachmentsClient
	reference     *api.ReferenceClient
	users         *api.UsersClient
	dashboard     *api.DashboardClient
	notifications *api.NotificationsClient

	cache cache.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	storage := session.NewFileStorage(cfg.Session.FilePath)
	store, err := session.NewStore(storage, dispatcher, logger)
	if err != nil {
		return nil, err
	}

	httpClient, err := transport.NewClient(cfg.API, store, logger,
		transport.WithSessionExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, please run `portalctl login`")
		}),
	)
	if err != nil {
		return nil, err
	}

	var queryCache cache.Store
	if cfg.Cache.Backend == "redis" {
		queryCache = cache.NewRedisStore(cfg.Cache, logger)
	} else {
		queryCache = cache.NewMemoryStore()
	}
	ttl := cfg.Cache.TTL()

	authClient := api.NewAuthClient(httpClient)

	return &app{
		cfg:           cfg,
		logger:        logger,
		dispatcher:    dispatcher,
		storage:       storage,
		store:         store,
		manager:       session.NewManager(store, authClient, httpClient, logger),
		http:          httpClient,
		auth:          authClient,
		complaints:    api.NewComplaintsClient(httpClient, queryCache, ttl),
		tracking:      api.NewTrackingClient(httpClient),
		attachments:   api.NewAttachmentsClient(httpClient),
		reference:     api.NewReferenceClient(httpClient, queryCache, ttl),
		users:         api.NewUsersClient(httpClient),
		dashboard:     api.NewDashboardClient(httpClient, queryCache, ttl),
		notifications: api.NewNotificationsClient(httpClient),
		cache:         queryCache,
	}, nil
}

func (a *app) close() {
	_ = a.cache.Close()
	_ = a.logger.Sync()
}

func main() {
	a, err := newApp()
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer a.close()

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Terminal client for the staff complaint portal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.complaintCmd(),
		a.trackCmd(),
		a.categoriesCmd(),
		a.statusesCmd(),
		a.prioritiesCmd(),
		a.departmentsCmd(),
		a.dashboardCmd(),
		a.reportCmd(),
		a.notificationsCmd(),
		a.panelCmd(),
		a.settingsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}
