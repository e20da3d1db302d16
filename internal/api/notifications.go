package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// NotificationsClient covers the notifications panel endpoints.
type NotificationsClient struct {
	http *transport.Client
}

// NewNotificationsClient constructs the client.
func NewNotificationsClient(http *transport.Client) *NotificationsClient {
	return &NotificationsClient{http: http}
}

// List fetches the current user's notifications.
func (c *NotificationsClient) List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	path := "/notifications"
	if unreadOnly {
		path += "?unread=true"
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if _, err := decodeList(raw, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a notification as read.
func (c *NotificationsClient) MarkRead(ctx context.Context, id string) error {
	return c.http.Patch(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}
