package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/complaint-portal/internal/cache"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/transport"
)

const complaintsCachePrefix = "complaints:"

// ComplaintsClient covers /complaints and its sub-resources.
type ComplaintsClient struct {
	http  *transport.Client
	cache cache.Store
	ttl   time.Duration
}

// NewComplaintsClient constructs the client.
func NewComplaintsClient(http *transport.Client, store cache.Store, ttl time.Duration) *ComplaintsClient {
	return &ComplaintsClient{http: http, cache: store, ttl: ttl}
}

// ComplaintListQuery captures list filters; zero values are omitted.
type ComplaintListQuery struct {
	StatusIDs    []string
	CategoryIDs  []string
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
}

func (q ComplaintListQuery) values() url.Values {
	vals := url.Values{}
	for _, id := range q.StatusIDs {
		vals.Add("status_id", id)
	}
	for _, id := range q.CategoryIDs {
		vals.Add("category_id", id)
	}
	if q.DepartmentID != "" {
		vals.Set("department_id", q.DepartmentID)
	}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Page > 0 {
		vals.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		vals.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return vals
}

// ComplaintPage bundles a page of complaints with its server-side meta.
type ComplaintPage struct {
	Complaints []domain.Complaint `json:"complaints"`
	Meta       PageMeta           `json:"meta"`
}

// List fetches a page of complaints, read-through-cached by query key.
func (c *ComplaintsClient) List(ctx context.Context, query ComplaintListQuery) (ComplaintPage, error) {
	key := complaintsCachePrefix + "list:" + query.values().Encode()
	var page ComplaintPage
	if hit, err := c.cache.Get(ctx, key, &page); err == nil && hit {
		return page, nil
	}

	path := "/complaints"
	if encoded := query.values().Encode(); encoded != "" {
		path += "?" + encoded
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, path, &raw); err != nil {
		return ComplaintPage{}, err
	}
	meta, err := decodeList(raw, &page.Complaints)
	if err != nil {
		return ComplaintPage{}, err
	}
	page.Meta = meta

	_ = c.cache.Set(ctx, key, page, c.ttl)
	return page, nil
}

// Get fetches one complaint with its comment and attachment threads.
func (c *ComplaintsClient) Get(ctx context.Context, id string) (domain.Complaint, error) {
	key := complaintsCachePrefix + "detail:" + id
	var complaint domain.Complaint
	if hit, err := c.cache.Get(ctx, key, &complaint); err == nil && hit {
		return complaint, nil
	}

	var raw json.RawMessage
	if err := c.http.Get(ctx, "/complaints/"+url.PathEscape(id), &raw); err != nil {
		return domain.Complaint{}, err
	}
	if err := decodeObject(raw, &complaint); err != nil {
		return domain.Complaint{}, err
	}

	_ = c.cache.Set(ctx, key, complaint, c.ttl)
	return complaint, nil
}

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	CategoryID   string `json:"category_id"`
	DepartmentID string `json:"department_id"`
	PriorityID   string `json:"priority_id"`
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	Anonymous    bool   `json:"anonymous"`
}

// Validate checks the payload before any network call.
func (r CreateComplaintRequest) Validate() error {
	missing := []string{}
	if strings.TrimSpace(r.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(r.Description) == "" {
		missing = append(missing, "description")
	}
	if r.CategoryID == "" {
		missing = append(missing, "category_id")
	}
	if r.DepartmentID == "" {
		missing = append(missing, "department_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create submits a new complaint. The response carries the tracking token for
// anonymous submissions.
func (c *ComplaintsClient) Create(ctx context.Context, req CreateComplaintRequest) (domain.Complaint, error) {
	if err := req.Validate(); err != nil {
		return domain.Complaint{}, err
	}

	var raw json.RawMessage
	if err := c.http.Post(ctx, "/complaints", req, &raw); err != nil {
		return domain.Complaint{}, err
	}
	var complaint domain.Complaint
	if err := decodeObject(raw, &complaint); err != nil {
		return domain.Complaint{}, err
	}

	_ = c.cache.Invalidate(ctx, complaintsCachePrefix)
	return complaint, nil
}

// UpdateComplaintRequest carries partial updates; nil fields are untouched.
type UpdateComplaintRequest struct {
	StatusID   *string `json:"status_id,omitempty"`
	PriorityID *string `json:"priority_id,omitempty"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// Update patches a complaint.
func (c *ComplaintsClient) Update(ctx context.Context, id string, req UpdateComplaintRequest) (domain.Complaint, error) {
	var raw json.RawMessage
	if err := c.http.Patch(ctx, "/complaints/"+url.PathEscape(id), req, &raw); err != nil {
		return domain.Complaint{}, err
	}
	var complaint domain.Complaint
	if err := decodeObject(raw, &complaint); err != nil {
		return domain.Complaint{}, err
	}

	_ = c.cache.Invalidate(ctx, complaintsCachePrefix)
	return complaint, nil
}

// Delete removes a complaint.
func (c *ComplaintsClient) Delete(ctx context.Context, id string) error {
	if err := c.http.Delete(ctx, "/complaints/"+url.PathEscape(id)); err != nil {
		return err
	}
	return c.cache.Invalidate(ctx, complaintsCachePrefix)
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// AddComment appends to a complaint's comment thread.
func (c *ComplaintsClient) AddComment(ctx context.Context, complaintID string, req AddCommentRequest) (domain.Comment, error) {
	if strings.TrimSpace(req.Body) == "" {
		return domain.Comment{}, fmt.Errorf("comment body required")
	}

	var raw json.RawMessage
	if err := c.http.Post(ctx, "/complaints/"+url.PathEscape(complaintID)+"/comments", req, &raw); err != nil {
		return domain.Comment{}, err
	}
	var comment domain.Comment
	if err := decodeObject(raw, &comment); err != nil {
		return domain.Comment{}, err
	}

	_ = c.cache.Invalidate(ctx, complaintsCachePrefix+"detail:"+complaintID)
	return comment, nil
}

// Comments fetches a complaint's comment thread.
func (c *ComplaintsClient) Comments(ctx context.Context, complaintID string) ([]domain.Comment, error) {
	var raw json.RawMessage
	if err := c.http.Get(ctx, "/complaints/"+url.PathEscape(complaintID)+"/comments", &raw); err != nil {
		return nil, err
	}
	var comments []domain.Comment
	if _, err := decodeList(raw, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
