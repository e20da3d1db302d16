package stub

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

type createComplaintRequest struct {
	CategoryID   string `json:"category_id"`
	DepartmentID string `json:"department_id"`
	PriorityID   string `json:"priority_id"`
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	Anonymous    bool   `json:"anonymous"`
}

// CreateComplaint handles POST /complaints. Authenticated callers file under
// their own account; everyone else gets an anonymous submission with a
// tracking token.
func (h *Handlers) CreateComplaint(c *fiber.Ctx) error {
	var req createComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Subject == "" || req.Description == "" || req.CategoryID == "" || req.DepartmentID == "" {
		return fiber.NewError(http.StatusBadRequest, "subject, description, category_id, department_id required")
	}
	if req.PriorityID == "" {
		req.PriorityID = "pr-medium"
	}

	now := time.Now()
	complaint := &domain.Complaint{
		ID:           uuid.NewString(),
		ReferenceKey: "CMP-" + strconv.FormatInt(now.UnixMilli(), 36),
		CategoryID:   req.CategoryID,
		DepartmentID: req.DepartmentID,
		StatusID:     "st-open",
		PriorityID:   req.PriorityID,
		Subject:      req.Subject,
		Description:  req.Description,
		Anonymous:    req.Anonymous,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	principal, authed := PrincipalFromContext(c)
	if authed && !req.Anonymous {
		id := principal.User.ID
		complaint.SubmitterID = &id
	} else {
		complaint.Anonymous = true
		tracking := uuid.NewString()
		complaint.TrackingToken = &tracking
	}

	h.store.SaveComplaint(complaint)
	h.logger.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.Bool("anonymous", complaint.Anonymous))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaint})
}

// ListComplaints handles GET /complaints with filters and paging. Staff see
// their own submissions; officers and above see everything.
func (h *Handlers) ListComplaints(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := ComplaintFilter{
		StatusIDs:    queryMulti(c, "status_id"),
		CategoryIDs:  queryMulti(c, "category_id"),
		DepartmentID: c.Query("department_id"),
		Search:       c.Query("search"),
	}
	if !principal.User.Role.AtLeast(domain.RoleDepartmentOfficer) {
		filter.SubmitterID = principal.User.ID
	}

	all := h.store.ListComplaints(filter)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"data": all[start:end],
			"meta": fiber.Map{"page": page, "page_size": pageSize, "total": len(all)},
		},
	})
}

// GetComplaint handles GET /complaints/:id.
func (h *Handlers) GetComplaint(c *fiber.Ctx) error {
	complaint, ok := h.store.Complaint(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}
	return c.JSON(fiber.Map{"data": complaint})
}

type updateComplaintRequest struct {
	StatusID   *string `json:"status_id"`
	PriorityID *string `json:"priority_id"`
	AssigneeID *string `json:"assignee_id"`
}

// UpdateComplaint handles PATCH /complaints/:id.
func (h *Handlers) UpdateComplaint(c *fiber.Ctx) error {
	var req updateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	complaint, ok := h.store.Complaint(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}

	if req.StatusID != nil {
		complaint.StatusID = *req.StatusID
		if *req.StatusID == "st-resolved" {
			now := time.Now()
			complaint.ResolvedAt = &now
		}
	}
	if req.PriorityID != nil {
		complaint.PriorityID = *req.PriorityID
	}
	if req.AssigneeID != nil {
		complaint.AssigneeID = req.AssigneeID
	}
	complaint.UpdatedAt = time.Now()
	h.store.SaveComplaint(complaint)

	h.notifySubmitter(complaint, "Complaint updated", "Your complaint "+complaint.ReferenceKey+" was updated")
	return c.JSON(fiber.Map{"data": complaint})
}

// DeleteComplaint handles DELETE /complaints/:id.
func (h *Handlers) DeleteComplaint(c *fiber.Ctx) error {
	if !h.store.DeleteComplaint(c.Params("id")) {
		return apperrors.NewNotFound("complaint", nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

type addCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// AddComment handles POST /complaints/:id/comments.
func (h *Handlers) AddComment(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil || req.Body == "" {
		return fiber.NewError(http.StatusBadRequest, "comment body required")
	}

	complaint, found := h.store.Complaint(c.Params("id"))
	if !found {
		return apperrors.NewNotFound("complaint", nil)
	}

	authorID := principal.User.ID
	comment := domain.Comment{
		ID:          uuid.NewString(),
		ComplaintID: complaint.ID,
		AuthorID:    &authorID,
		AuthorName:  principal.User.Name,
		Body:        req.Body,
		Internal:    req.Internal,
		CreatedAt:   time.Now(),
	}
	complaint.Comments = append(complaint.Comments, comment)
	complaint.UpdatedAt = comment.CreatedAt
	h.store.SaveComplaint(complaint)

	if !req.Internal {
		h.notifySubmitter(complaint, "New comment", "New comment on "+complaint.ReferenceKey)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

// ListComments handles GET /complaints/:id/comments.
func (h *Handlers) ListComments(c *fiber.Ctx) error {
	complaint, ok := h.store.Complaint(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}
	return listJSON(c, complaint.Comments, len(complaint.Comments))
}

// UploadAttachment handles POST /complaints/:id/attachments (multipart).
func (h *Handlers) UploadAttachment(c *fiber.Ctx) error {
	complaint, ok := h.store.Complaint(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file field required")
	}

	attachment := domain.Attachment{
		ID:          uuid.NewString(),
		ComplaintID: complaint.ID,
		FileName:    file.Filename,
		MimeType:    file.Header.Get("Content-Type"),
		SizeBytes:   file.Size,
		CreatedAt:   time.Now(),
	}
	complaint.Attachments = append(complaint.Attachments, attachment)
	complaint.UpdatedAt = attachment.CreatedAt
	h.store.SaveComplaint(complaint)

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachment})
}

// ListAttachments handles GET /complaints/:id/attachments.
func (h *Handlers) ListAttachments(c *fiber.Ctx) error {
	complaint, ok := h.store.Complaint(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}
	return listJSON(c, complaint.Attachments, len(complaint.Attachments))
}

// TrackComplaint handles GET /complaints/tracking/:token.
func (h *Handlers) TrackComplaint(c *fiber.Ctx) error {
	complaint, ok := h.store.ComplaintByTracking(c.Params("token"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}
	return c.JSON(fiber.Map{"data": complaint})
}

// TrackComment handles POST /complaints/tracking/:token/comments, the
// anonymous complainant's reply channel.
func (h *Handlers) TrackComment(c *fiber.Ctx) error {
	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil || req.Body == "" {
		return fiber.NewError(http.StatusBadRequest, "comment body required")
	}

	complaint, ok := h.store.ComplaintByTracking(c.Params("token"))
	if !ok {
		return apperrors.NewNotFound("complaint", nil)
	}

	comment := domain.Comment{
		ID:          uuid.NewString(),
		ComplaintID: complaint.ID,
		AuthorName:  "Anonymous",
		Body:        req.Body,
		CreatedAt:   time.Now(),
	}
	complaint.Comments = append(complaint.Comments, comment)
	complaint.UpdatedAt = comment.CreatedAt
	h.store.SaveComplaint(complaint)

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

func (h *Handlers) notifySubmitter(complaint *domain.Complaint, title, body string) {
	if complaint.SubmitterID == nil {
		return
	}
	complaintID := complaint.ID
	h.store.AddNotification(domain.Notification{
		ID:          uuid.NewString(),
		UserID:      *complaint.SubmitterID,
		ComplaintID: &complaintID,
		Title:       title,
		Body:        body,
		CreatedAt:   time.Now(),
	})
}

func queryMulti(c *fiber.Ctx, key string) []string {
	var out []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) == key && len(v) > 0 {
			out = append(out, string(v))
		}
	})
	return out
}
