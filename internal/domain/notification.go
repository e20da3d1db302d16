package domain

import "time"

// Notification is a per-user alert surfaced in the notifications panel.
type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ComplaintID *string   `json:"complaint_id,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardSummary is the role-scoped dashboard payload. Breakdown maps are
// rendered as-is; the client owns no aggregation rules.
type DashboardSummary struct {
	Role             string         `json:"role"`
	OpenCount        int            `json:"open_count"`
	ResolvedCount    int            `json:"resolved_count"`
	OverdueCount     int            `json:"overdue_count"`
	ByStatus         map[string]int `json:"by_status"`
	ByCategory       map[string]int `json:"by_category"`
	RecentComplaints []Complaint    `json:"recent_complaints"`
}

// Report is the IT/HR report payload, opaque beyond its headline fields.
type Report struct {
	Kind        string           `json:"kind"`
	GeneratedAt time.Time        `json:"generated_at"`
	Totals      map[string]int   `json:"totals"`
	Rows        []map[string]any `json:"rows"`
}
