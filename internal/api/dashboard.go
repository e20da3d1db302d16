package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spec-kit/complaint-portal/internal/cache"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

// DashboardClient covers role-scoped dashboards and reports.
type DashboardClient struct {
	http  *transport.Client
	cache cache.Store
	ttl   time.Duration
}

// NewDashboardClient constructs the client.
func NewDashboardClient(http *transport.Client, store cache.Store, ttl time.Duration) *DashboardClient {
	return &DashboardClient{http: http, cache: store, ttl: ttl}
}

// Summary fetches the dashboard for the given role.
func (c *DashboardClient) Summary(ctx context.Context, role domain.Role) (domain.DashboardSummary, error) {
	key := "dashboard:" + role.String()
	var summary domain.DashboardSummary
	if hit, err := c.cache.Get(ctx, key, &summary); err == nil && hit {
		return summary, nil
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, "/dashboard/"+url.PathEscape(role.String()), &raw); err != nil {
		return domain.DashboardSummary{}, err
	}
	if err := decodeObject(raw, &summary); err != nil {
		return domain.DashboardSummary{}, err
	}

	_ = c.cache.Set(ctx, key, summary, c.ttl)
	return summary, nil
}

// Report fetches the IT or HR report.
func (c *DashboardClient) Report(ctx context.Context, kind string) (domain.Report, error) {
	if kind != "it" && kind != "hr" {
		return domain.Report{}, fmt.Errorf("unknown report kind %q", kind)
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, "/reports/"+kind, &raw); err != nil {
		return domain.Report{}, err
	}
	var report domain.Report
	if err := decodeObject(raw, &report); err != nil {
		return domain.Report{}, err
	}
	return report, nil
}
