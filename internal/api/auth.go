package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/session"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// AuthClient covers the login endpoint. Refresh lives in the transport layer
// where 401 handling needs it.
type AuthClient struct {
	http *transport.Client
}

// NewAuthClient constructs the client.
func NewAuthClient(http *transport.Client) *AuthClient {
	return &AuthClient{http: http}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *domain.User `json:"user"`
}

// Login authenticates against POST /auth/login.
func (c *AuthClient) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	var raw json.RawMessage
	if err := c.http.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &raw); err != nil {
		return session.LoginResult{}, err
	}

	var payload authPayload
	if err := decodeObject(raw, &payload); err != nil {
		return session.LoginResult{}, err
	}
	if payload.AccessToken == "" || payload.User == nil {
		return session.LoginResult{}, errors.New("login response missing credentials")
	}

	return session.LoginResult{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		User:         payload.User,
	}, nil
}
