package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// TrackingClient covers anonymous access via opaque tracking tokens. No
// session is required; the token itself is the credential.
type TrackingClient struct {
	http *transport.Client
}

// NewTrackingClient constructs the client.
func NewTrackingClient(http *transport.Client) *TrackingClient {
	return &TrackingClient{http: http}
}

// Get fetches the complaint behind a tracking token.
func (c *TrackingClient) Get(ctx context.Context, token string) (domain.Complaint, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Complaint{}, fmt.Errorf("tracking token required")
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, "/complaints/tracking/"+url.PathEscape(token), &raw); err != nil {
		return domain.Complaint{}, err
	}
	var complaint domain.Complaint
	if err := decodeObject(raw, &complaint); err != nil {
		return domain.Complaint{}, err
	}
	return complaint, nil
}

// AddComment lets an anonymous complainant reply on their own submission.
func (c *TrackingClient) AddComment(ctx context.Context, token, body string) (domain.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Comment{}, fmt.Errorf("comment body required")
	}

	var raw json.RawMessage
	path := "/complaints/tracking/" + url.PathEscape(token) + "/comments"
	if err := c.http.Post(ctx, path, map[string]string{"body": body}, &raw); err != nil {
		return domain.Comment{}, err
	}
	var comment domain.Comment
	if err := decodeObject(raw, &comment); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}
