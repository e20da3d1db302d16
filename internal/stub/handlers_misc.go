package stub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/domain"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// Live handles GET /health/live.
func (h *Handlers) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Categories handles GET /complaint-categories.
func (h *Handlers) Categories(c *fiber.Ctx) error {
	items := h.store.Categories()
	return listJSON(c, items, len(items))
}

// Statuses handles GET /complaint-statuses.
func (h *Handlers) Statuses(c *fiber.Ctx) error {
	items := h.store.Statuses()
	return listJSON(c, items, len(items))
}

// ActivePriorities handles GET /complaint-priorities/active.
func (h *Handlers) ActivePriorities(c *fiber.Ctx) error {
	items := h.store.ActivePriorities()
	return listJSON(c, items, len(items))
}

// Departments handles GET /departments.
func (h *Handlers) Departments(c *fiber.Ctx) error {
	items := h.store.Departments()
	return listJSON(c, items, len(items))
}

// Dashboard handles GET /dashboard/:role.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	role, err := parseRoleParam(c.Params("role"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if !principal.User.Role.AtLeast(role) {
		return apperrors.NewForbidden("insufficient role for this dashboard")
	}

	all := h.store.ListComplaints(ComplaintFilter{})
	summary := domain.DashboardSummary{
		Role:       role.String(),
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, complaint := range all {
		summary.ByStatus[complaint.StatusID]++
		summary.ByCategory[complaint.CategoryID]++
		switch complaint.StatusID {
		case "st-resolved", "st-dismissed":
			summary.ResolvedCount++
		default:
			summary.OpenCount++
			if time.Since(complaint.CreatedAt) > 14*24*time.Hour {
				summary.OverdueCount++
			}
		}
	}
	if len(all) > 5 {
		all = all[:5]
	}
	summary.RecentComplaints = all

	return c.JSON(fiber.Map{"data": summary})
}

// Report handles GET /reports/:kind.
func (h *Handlers) Report(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	kind := c.Params("kind")
	switch kind {
	case "it":
		if !principal.User.Role.AtLeast(domain.RoleITOfficer) {
			return apperrors.NewForbidden("insufficient role for IT reports")
		}
	case "hr":
		if !principal.User.Role.AtLeast(domain.RoleHRAdmin) {
			return apperrors.NewForbidden("insufficient role for HR reports")
		}
	default:
		return apperrors.NewNotFound("report", map[string]any{"kind": kind})
	}

	categoryID := "cat-it"
	if kind == "hr" {
		categoryID = "cat-conduct"
	}
	matching := h.store.ListComplaints(ComplaintFilter{CategoryIDs: []string{categoryID}})

	report := domain.Report{
		Kind:        kind,
		GeneratedAt: time.Now(),
		Totals:      map[string]int{"complaints": len(matching)},
	}
	for _, complaint := range matching {
		report.Rows = append(report.Rows, map[string]any{
			"id":         complaint.ID,
			"reference":  complaint.ReferenceKey,
			"subject":    complaint.Subject,
			"status_id":  complaint.StatusID,
			"created_at": complaint.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": report})
}

// Notifications handles GET /notifications.
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	items := h.store.Notifications(principal.User.ID, c.Query("unread") == "true")
	return listJSON(c, items, len(items))
}

// MarkNotificationRead handles PATCH /notifications/:id/read.
func (h *Handlers) MarkNotificationRead(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !h.store.MarkNotificationRead(principal.User.ID, c.Params("id")) {
		return apperrors.NewNotFound("notification", nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseRoleParam(raw string) (domain.Role, error) {
	role, err := domain.ParseRole(raw)
	if err != nil {
		return domain.RoleUnknown, fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// listJSON wraps a collection in the double envelope the real backend emits
// on list endpoints.
func listJSON(c *fiber.Ctx, items any, total int) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"data": items,
			"meta": fiber.Map{"page": 1, "page_size": total, "total": total},
		},
	})
}
