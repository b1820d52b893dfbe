package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/academy-auth/internal/domain"
	apperrors "github.com/spec-kit/academy-auth/pkg/util"
)

// RequireAuthenticated ensures an identity was attached by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized(unauthenticatedMessage)
		}
		return c.Next()
	}
}

// RequireRole ensures the caller's token carries at least one of the allowed roles.
// Roles come from the token snapshot, so a role change applies after re-login.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(unauthenticatedMessage)
		}
		for _, role := range allowed {
			if domain.HasRole(identity.Roles, role) {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}
