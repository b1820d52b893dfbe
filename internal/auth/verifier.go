package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/academy-auth/internal/domain"
	"github.com/spec-kit/academy-auth/internal/repository"
)

// CredentialVerifier checks a submitted secret against the stored hash.
type CredentialVerifier struct {
	subjects     repository.SubjectRepository
	decoyHash    string
	storeTimeout time.Duration
	logger       *zap.Logger
}

// NewCredentialVerifier builds a verifier. The decoy hash is generated once with the same
// bcrypt cost used for real subjects.
func NewCredentialVerifier(subjects repository.SubjectRepository, bcryptCost int, storeTimeout time.Duration, logger *zap.Logger) (*CredentialVerifier, error) {
	decoy, err := newDecoyHash(bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate decoy hash: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialVerifier{
		subjects:     subjects,
		decoyHash:    decoy,
		storeTimeout: storeTimeout,
		logger:       logger,
	}, nil
}

// Verify returns the subject owning email when secret matches. Unknown email and wrong
// secret both yield ErrInvalidCredentials after comparable work.
func (v *CredentialVerifier) Verify(ctx context.Context, email, secret string) (*domain.Subject, error) {
	email = domain.NormalizeEmail(email)

	lookupCtx, cancel := withStoreDeadline(ctx, v.storeTimeout)
	subject, err := v.subjects.FindByEmail(lookupCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			_ = ComparePassword(v.decoyHash, secret)
			return nil, ErrInvalidCredentials
		}
		v.logger.Warn("credential lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := ComparePassword(subject.SecretHash, secret); err != nil {
		if !IsMismatch(err) {
			v.logger.Error("stored secret hash unusable", zap.String("subject_id", subject.ID), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}
	return subject, nil
}

func withStoreDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
