package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/academy-auth/pkg/util"
)

// unauthenticatedMessage is the only rejection text clients ever see for a bad token.
const unauthenticatedMessage = "unauthenticated"

// FailureRecorder counts token rejections by internal kind.
type FailureRecorder interface {
	RecordAuthFailure(kind string)
}

// AuthMiddleware validates bearer tokens and attaches the identity to the request.
type AuthMiddleware struct {
	validator *Validator
	logger    *zap.Logger
	metrics   FailureRecorder
}

// NewAuthMiddleware constructs middleware. metrics may be nil.
func NewAuthMiddleware(validator *Validator, logger *zap.Logger, metrics FailureRecorder) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{validator: validator, logger: logger, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr, ok := BearerToken(c)
	if !ok {
		return m.reject(c, ErrMalformed)
	}

	identity, err := m.validator.Validate(c.UserContext(), tokenStr)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			m.logger.Warn("token validation unavailable", zap.String("path", c.Path()), zap.Error(err))
			return apperrors.NewUnavailable("authentication temporarily unavailable", err)
		}
		return m.reject(c, err)
	}

	c.Locals(identityKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
	return c.Next()
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, err error) error {
	kind := FailureKind(err)
	if m.metrics != nil {
		m.metrics.RecordAuthFailure(kind)
	}
	m.logger.Info("token rejected",
		zap.String("reason", kind),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()))
	return apperrors.NewUnauthorized(unauthenticatedMessage)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
