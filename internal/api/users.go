package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// UsersClient covers /users endpoints.
type UsersClient struct {
	http *transport.Client
}

// NewUsersClient constructs the client.
func NewUsersClient(http *transport.Client) *UsersClient {
	return &UsersClient{http: http}
}

// Me fetches the current user record.
func (c *UsersClient) Me(ctx context.Context) (domain.User, error) {
	var raw json.RawMessage
	if err := c.http.Get(ctx, "/users/me", &raw); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	if err := decodeObject(raw, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ByRole fetches users holding a given role.
func (c *UsersClient) ByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var raw json.RawMessage
	if err := c.http.Get(ctx, "/users/by-role/"+url.PathEscape(role.String()), &raw); err != nil {
		return nil, err
	}
	var users []domain.User
	if _, err := decodeList(raw, &users); err != nil {
		return nil, err
	}
	return users, nil
}
