package stub

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Handlers *Handlers
	Auth     *AuthMiddleware
	CSRF     *CSRFMiddleware
}

// RegisterRoutes wires the stub endpoint surface.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	h := cfg.Handlers

	app.Get("/health/live", h.Live)
	app.Get("/security/csrf-token", h.CSRFToken)

	app.Use(cfg.CSRF.Handle)

	app.Post("/auth/login", h.Login)
	app.Post("/auth/refresh", h.Refresh)

	// Anonymous tracking access needs no session; the token is the credential.
	app.Get("/complaints/tracking/:token", h.TrackComplaint)
	app.Post("/complaints/tracking/:token/comments", h.TrackComment)

	// Reference data is public reads.
	app.Get("/complaint-categories", h.Categories)
	app.Get("/complaint-statuses", h.Statuses)
	app.Get("/complaint-priorities/active", h.ActivePriorities)
	app.Get("/departments", h.Departments)

	// Complaint submission allows both authenticated and anonymous callers.
	app.Post("/complaints", cfg.Auth.Optional, h.CreateComplaint)

	protected := app.Group("", cfg.Auth.Handle)
	protected.Get("/complaints", h.ListComplaints)
	protected.Get("/complaints/:id", h.GetComplaint)
	protected.Patch("/complaints/:id", RequireRole(domain.RoleDepartmentOfficer), h.UpdateComplaint)
	protected.Delete("/complaints/:id", RequireRole(domain.RoleHRAdmin), h.DeleteComplaint)
	protected.Get("/complaints/:id/comments", h.ListComments)
	protected.Post("/complaints/:id/comments", h.AddComment)
	protected.Get("/complaints/:id/attachments", h.ListAttachments)
	protected.Post("/complaints/:id/attachments", h.UploadAttachment)

	protected.Get("/users/me", h.Me)
	protected.Get("/users/by-role/:role", RequireRole(domain.RoleDepartmentOfficer), h.UsersByRole)
	protected.Get("/dashboard/:role", h.Dashboard)
	protected.Get("/reports/:kind", h.Report)

	protected.Get("/notifications", h.Notifications)
	protected.Patch("/notifications/:id/read", h.MarkNotificationRead)
}
