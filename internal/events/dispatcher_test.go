package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEvent(eventType EventType) Event {
	return Event{ID: "evt-1", Type: eventType, Timestamp: time.Now()}
}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var order []string
	d.Subscribe(EventSessionStarted, func(ctx context.Context, e Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(EventSessionStarted, func(ctx context.Context, e Event) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), testEvent(EventSessionStarted)))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishMatchesTypeOnly(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var hits int
	d.Subscribe(EventSessionCleared, func(ctx context.Context, e Event) error {
		hits++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), testEvent(EventSessionStarted)))
	assert.Zero(t, hits)

	require.NoError(t, d.Publish(context.Background(), testEvent(EventSessionCleared)))
	assert.Equal(t, 1, hits)
}

func TestFailingHandlerDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var delivered bool
	d.Subscribe(EventNotificationReceived, func(ctx context.Context, e Event) error {
		return errors.New("handler exploded")
	})
	d.Subscribe(EventNotificationReceived, func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), testEvent(EventNotificationReceived)))
	assert.True(t, delivered, "later handlers still run after a failure")
}
