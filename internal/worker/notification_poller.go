package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/api"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/session"
)

// NotificationPoller polls the notifications endpoint and publishes an event
// for each alert it has not seen before. The panel UI subscribes to these.
type NotificationPoller struct {
	client     *api.NotificationsClient
	store      *session.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	seen       map[string]struct{}
}

// NewNotificationPoller constructs the poller.
func NewNotificationPoller(client *api.NotificationsClient, store *session.Store, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationPoller {
	return &NotificationPoller{
		client:     client,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}

// Run polls on a fixed period until ctx is done. Polling is skipped while
// logged out.
func (p *NotificationPoller) Run(ctx context.Context, interval time.Duration) {
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
			if !p.store.Current().IsAuthenticated {
				continue
			}
			p.poll(ctx)
		}
	}
}

func (p *NotificationPoller) poll(ctx context.Context) {
	notifications, err := p.client.List(ctx, true)
	if err != nil {
		p.logger.Warn("notification poll failed", zap.Error(err))
		return
	}

	for _, n := range notifications {
		if _, ok := p.seen[n.ID]; ok {
			continue
		}
		p.seen[n.ID] = struct{}{}
		_ = p.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventNotificationReceived,
			Timestamp: time.Now(),
			Payload:   events.NotificationReceivedPayload{Notification: n},
		})
	}
}
