package handlers

import (
	"errors"

	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/service"
	apperrors "github.com/spec-kit/academy-auth/pkg/util"
)

// mapAuthError translates auth and service errors into client-facing DomainErrors.
// Token rejections all collapse into one message.
func mapAuthError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case auth.IsUnauthenticated(err):
		return apperrors.NewUnauthorized("unauthenticated")
	case errors.Is(err, auth.ErrConflict):
		return apperrors.NewConflict("email already registered", nil)
	case errors.Is(err, auth.ErrUnavailable):
		return apperrors.NewUnavailable("authentication temporarily unavailable", err)
	case errors.Is(err, service.ErrRoleNotSelfService):
		return apperrors.NewValidationError("role cannot be self-assigned", map[string]any{"fields": map[string]any{"roles": "contains a role that requires an administrator"}})
	case errors.Is(err, service.ErrSubjectNotFound):
		return apperrors.NewNotFound("subject", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
