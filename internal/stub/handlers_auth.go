package stub

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// Handlers bundles the stub endpoint implementations.
type Handlers struct {
	store  *Store
	tokens *TokenManager
	logger *zap.Logger
}

// NewHandlers constructs handlers.
func NewHandlers(store *Store, tokens *TokenManager, logger *zap.Logger) *Handlers {
	return &Handlers{store: store, tokens: tokens, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, ok := h.store.Authenticate(req.Email, req.Password)
	if !ok {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	access, exp, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	refresh := h.store.IssueRefreshToken(user.ID)

	h.logger.Info("login", zap.String("user_id", user.ID), zap.String("role", user.Role.String()))
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"accessToken":  access,
			"refreshToken": refresh,
			"user":         user,
			"expiresAt":    exp,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh. The presented refresh token is rotated.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return fiber.NewError(http.StatusBadRequest, "refreshToken required")
	}

	userID, rotated, ok := h.store.RotateRefreshToken(req.RefreshToken)
	if !ok {
		return apperrors.NewUnauthorized("invalid refresh token")
	}
	user, ok := h.store.UserByID(userID)
	if !ok {
		return apperrors.NewUnauthorized("user not found")
	}

	access, exp, err := h.tokens.GenerateToken(user)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"accessToken":  access,
			"refreshToken": rotated,
			"user":         user,
			"expiresAt":    exp,
		},
	})
}

// CSRFToken handles GET /security/csrf-token.
func (h *Handlers) CSRFToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{"token": h.store.IssueCSRFToken()},
	})
}

// Me handles GET /users/me.
func (h *Handlers) Me(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": principal.User})
}

// UsersByRole handles GET /users/by-role/:role.
func (h *Handlers) UsersByRole(c *fiber.Ctx) error {
	role, err := parseRoleParam(c.Params("role"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	users := h.store.UsersByRole(role)
	return listJSON(c, users, len(users))
}
