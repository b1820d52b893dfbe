package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/academy-auth/internal/api/dto"
	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/service"
	apperrors "github.com/spec-kit/academy-auth/pkg/util"
)

// AuthHandler exposes login, logout and self-service account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := apperrors.ValidateStruct(req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Secret)
	if err != nil {
		return mapAuthError(err)
	}

	return c.JSON(fiber.Map{
		"data": dto.LoginResponse{
			Token:       res.Token.Token,
			ExpiresAt:   res.Token.ExpiresAt,
			LandingPath: res.LandingPath,
			Subject:     dto.NewSubjectResponse(res.Subject),
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthenticated")
	}
	if err := h.auth.Logout(c.UserContext(), identity); err != nil {
		return mapAuthError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthenticated")
	}
	return c.JSON(fiber.Map{
		"data": dto.IdentityResponse{
			SubjectID:   identity.SubjectID,
			Roles:       identity.Roles,
			ExpiresAt:   identity.ExpiresAt,
			LandingPath: auth.ResolveLandingPath(identity.Roles),
		},
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := apperrors.ValidateStruct(req); err != nil {
		return err
	}

	subject, err := h.auth.Register(c.UserContext(), req.Email, req.Secret, req.Roles)
	if err != nil {
		return mapAuthError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewSubjectResponse(subject),
	})
}

// ChangePassword handles POST /auth/password/change. Every token the caller holds,
// including the one on this request, stops working afterwards.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("unauthenticated")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := apperrors.ValidateStruct(req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), identity, req.CurrentSecret, req.NewSecret); err != nil {
		return mapAuthError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
