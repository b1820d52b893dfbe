package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/academy-auth/internal/domain"
)

// Validator turns a presented bearer token into an Identity. It never writes, so one
// instance serves every in-flight request.
type Validator struct {
	tokens   *TokenManager
	registry RevocationRegistry
	now      func() time.Time
}

// NewValidator wires a validator to the token manager and revocation registry.
func NewValidator(tokens *TokenManager, registry RevocationRegistry) *Validator {
	return &Validator{tokens: tokens, registry: registry, now: time.Now}
}

// WithClock returns a copy of the validator that reads time from now.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	clone := *v
	clone.now = now
	return &clone
}

// Validate checks, in order: structure, signature, expiry, revocation. The first failing
// check decides the error (ErrMalformed, ErrInvalidSignature, ErrExpired, ErrRevoked).
func (v *Validator) Validate(ctx context.Context, tokenStr string) (*domain.Identity, error) {
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	claims, err := v.tokens.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	expiresAt := claims.ExpiresAt.Time
	if v.now().After(expiresAt) {
		return nil, ErrExpired
	}

	revoked, err := v.registry.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}

	issuedAt := claims.IssuedAtTime()
	cutoff, ok, err := v.registry.SubjectCutoff(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if ok && !issuedAt.After(cutoff) {
		return nil, fmt.Errorf("%w: subject re-authentication required", ErrRevoked)
	}

	return &domain.Identity{
		SubjectID: claims.Subject,
		Roles:     append([]domain.Role(nil), claims.Roles...),
		TokenID:   claims.ID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
