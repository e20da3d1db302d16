package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spec-kit/complaint-portal/internal/cache"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// ReferenceClient covers the slow-moving lookup collections: categories,
// statuses, priorities, departments. All reads are cached.
type ReferenceClient struct {
	http  *transport.Client
	cache cache.Store
	ttl   time.Duration
}

// NewReferenceClient constructs the client.
func NewReferenceClient(http *transport.Client, store cache.Store, ttl time.Duration) *ReferenceClient {
	return &ReferenceClient{http: http, cache: store, ttl: ttl}
}

// Categories fetches complaint categories.
func (c *ReferenceClient) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.cachedList(ctx, "reference:categories", "/complaint-categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Statuses fetches complaint statuses.
func (c *ReferenceClient) Statuses(ctx context.Context) ([]domain.Status, error) {
	var out []domain.Status
	if err := c.cachedList(ctx, "reference:statuses", "/complaint-statuses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActivePriorities fetches the currently active priorities.
func (c *ReferenceClient) ActivePriorities(ctx context.Context) ([]domain.Priority, error) {
	var out []domain.Priority
	if err := c.cachedList(ctx, "reference:priorities", "/complaint-priorities/active", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Departments fetches departments.
func (c *ReferenceClient) Departments(ctx context.Context) ([]domain.Department, error) {
	var out []domain.Department
	if err := c.cachedList(ctx, "reference:departments", "/departments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReferenceClient) cachedList(ctx context.Context, key, path string, out any) error {
	if hit, err := c.cache.Get(ctx, key, out); err == nil && hit {
		return nil
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, path, &raw); err != nil {
		return err
	}
	if _, err := decodeList(raw, out); err != nil {
		return err
	}

	_ = c.cache.Set(ctx, key, out, c.ttl)
	return nil
}
