package domain

import "time"

// Complaint is the aggregate for staff grievances. Anonymous submissions carry
// a tracking token instead of a submitter.
type Complaint struct {
	ID            string       `json:"id"`
	ReferenceKey  string       `json:"reference_key"`
	TrackingToken *string      `json:"tracking_token,omitempty"`
	SubmitterID   *string      `json:"submitter_id,omitempty"`
	AssigneeID    *string      `json:"assignee_id,omitempty"`
	CategoryID    string       `json:"category_id"`
	DepartmentID  string       `json:"department_id"`
	StatusID      string       `json:"status_id"`
	PriorityID    string       `json:"priority_id"`
	Subject       string       `json:"subject"`
	Description   string       `json:"description"`
	Anonymous     bool         `json:"anonymous"`
	Comments      []Comment    `json:"comments,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	ResolvedAt    *time.Time   `json:"resolved_at,omitempty"`
}

// Comment is a thread entry on a complaint. AuthorID is nil for anonymous
// complainants commenting via tracking token.
type Comment struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	AuthorID    *string   `json:"author_id,omitempty"`
	AuthorName  string    `json:"author_name"`
	Body        string    `json:"body"`
	Internal    bool      `json:"internal"`
	CreatedAt   time.Time `json:"created_at"`
}

// Attachment is file metadata attached to a complaint.
type Attachment struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
