package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/service"
	apperrors "github.com/spec-kit/academy-auth/pkg/util"
)

// AdminHandler exposes administrator-only session controls.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// ForceReauth handles POST /admin/subjects/:id/force-reauth.
func (h *AdminHandler) ForceReauth(c *fiber.Ctx) error {
	subjectID := strings.TrimSpace(c.Params("id"))
	if subjectID == "" {
		return fiber.NewError(http.StatusBadRequest, "subject id required")
	}
	if _, err := uuid.Parse(subjectID); err != nil {
		return apperrors.NewNotFound("subject", nil)
	}
	actor, _ := auth.IdentityFromContext(c)
	if err := h.auth.ForceReauthentication(c.UserContext(), actor, subjectID); err != nil {
		return mapAuthError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
