package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/config"
	"github.com/spec-kit/academy-auth/internal/domain"
	"github.com/spec-kit/academy-auth/internal/events"
	"github.com/spec-kit/academy-auth/internal/repository"
)

var (
	// ErrRoleNotSelfService is returned when self-registration asks for a staff role.
	ErrRoleNotSelfService = errors.New("role cannot be self-assigned")
	// ErrSubjectNotFound is returned by admin actions targeting an unknown subject.
	ErrSubjectNotFound = errors.New("subject not found")
)

// SelfServiceRoles are the roles a visitor may pick when registering.
var SelfServiceRoles = []domain.Role{
	domain.RoleLearner,
	domain.RoleJobSeeker,
	domain.RoleEnterprise,
	domain.RoleTrainer,
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Subject     *domain.Subject
	Token       domain.AccessToken
	LandingPath string
}

// AuthService coordinates registration, login, logout and re-authentication flows.
type AuthService struct {
	subjects     repository.SubjectRepository
	verifier     *auth.CredentialVerifier
	tokens       *auth.TokenManager
	validator    *auth.Validator
	registry     auth.RevocationRegistry
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	bcryptCost   int
	storeTimeout time.Duration
	now          func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	SubjectRepo repository.SubjectRepository
	Registry    auth.RevocationRegistry
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// NewAuthService builds the service from configuration read once at startup.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	registry := deps.Registry
	if registry == nil {
		registry = auth.NewMemoryRegistry()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}

	verifier, err := auth.NewCredentialVerifier(deps.SubjectRepo, cfg.Auth.BcryptCost, cfg.Auth.StoreTimeout(), logger)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL()).WithClock(now)

	return &AuthService{
		subjects:     deps.SubjectRepo,
		verifier:     verifier,
		tokens:       tokens,
		validator:    auth.NewValidator(tokens, registry).WithClock(now),
		registry:     registry,
		dispatcher:   dispatcher,
		logger:       logger,
		bcryptCost:   cfg.Auth.BcryptCost,
		storeTimeout: cfg.Auth.StoreTimeout(),
		now:          now,
	}, nil
}

// Register creates a subject with self-service roles. An empty role list means learner.
func (s *AuthService) Register(ctx context.Context, email, secret string, roles []domain.Role) (*domain.Subject, error) {
	roles = domain.DedupeRoles(roles)
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleLearner}
	}
	for _, r := range roles {
		if !domain.HasRole(SelfServiceRoles, r) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotSelfService, r)
		}
	}
	return s.CreateSubject(ctx, email, secret, roles)
}

// CreateSubject inserts a subject with any valid roles. Used by operators and seeding.
func (s *AuthService) CreateSubject(ctx context.Context, email, secret string, roles []domain.Role) (*domain.Subject, error) {
	roles = domain.DedupeRoles(roles)
	if len(roles) == 0 {
		return nil, errors.New("at least one valid role required")
	}

	hash, err := auth.HashPassword(secret, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	subject := &domain.Subject{
		ID:         uuid.NewString(),
		Email:      domain.NormalizeEmail(email),
		SecretHash: hash,
		Roles:      roles,
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.subjects.Insert(storeCtx, subject); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, auth.ErrConflict
		}
		s.logger.Warn("subject insert failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", auth.ErrUnavailable, err)
	}

	s.publish(ctx, events.NewEvent(events.EventSubjectRegistered, subject.ID, nil))
	return subject, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, secret string) (*LoginResult, error) {
	subject, err := s.verifier.Verify(ctx, email, secret)
	if err != nil {
		s.publish(ctx, events.NewEvent(events.EventLoginFailed, "", events.LoginFailedPayload{Reason: auth.FailureKind(err)}))
		return nil, err
	}

	token, err := s.tokens.Issue(subject)
	if err != nil {
		return nil, err
	}
	landing := auth.ResolveLandingPath(subject.Roles)

	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, subject.ID, events.LoginSucceededPayload{
		TokenID:     token.TokenID,
		Roles:       token.Roles,
		LandingPath: landing,
		ExpiresAt:   token.ExpiresAt,
	}))
	return &LoginResult{Subject: subject, Token: token, LandingPath: landing}, nil
}

// Logout revokes the token behind identity until it would have expired.
func (s *AuthService) Logout(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return auth.ErrMalformed
	}
	if err := s.registry.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return err
	}
	s.publish(ctx, events.NewEvent(events.EventLoggedOut, identity.SubjectID, events.LoggedOutPayload{
		TokenID:   identity.TokenID,
		ExpiresAt: identity.ExpiresAt,
	}))
	return nil
}

func (s *AuthService) loadSubject(ctx context.Context, subjectID string) (*domain.Subject, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	subject, err := s.subjects.GetByID(storeCtx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrUnavailable, err)
	}
	return subject, nil
}

// ChangePassword checks the current secret, stores the new hash and forces every token the
// subject holds, including the one used for this call, to re-authenticate.
func (s *AuthService) ChangePassword(ctx context.Context, identity *domain.Identity, currentSecret, newSecret string) error {
	subject, err := s.loadSubject(ctx, identity.SubjectID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(subject.SecretHash, currentSecret); err != nil {
		return auth.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newSecret, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.subjects.UpdateSecretHash(storeCtx, subject.ID, hash); err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("%w: %v", auth.ErrUnavailable, err)
	}

	s.publish(ctx, events.NewEvent(events.EventSecretChanged, subject.ID, nil))
	return s.revokeSubject(ctx, identity.SubjectID, subject.ID)
}

// ForceReauthentication invalidates every token issued to subjectID so far.
func (s *AuthService) ForceReauthentication(ctx context.Context, actor *domain.Identity, subjectID string) error {
	if _, err := s.loadSubject(ctx, subjectID); err != nil {
		return err
	}

	actorID := ""
	if actor != nil {
		actorID = actor.SubjectID
	}
	return s.revokeSubject(ctx, actorID, subjectID)
}

func (s *AuthService) revokeSubject(ctx context.Context, actorID, subjectID string) error {
	cutoff := s.now().Truncate(time.Millisecond)
	until := cutoff.Add(s.tokens.TTL())
	if err := s.registry.RevokeSubject(ctx, subjectID, cutoff, until); err != nil {
		return err
	}

	event := events.NewEvent(events.EventReauthForced, subjectID, events.ReauthForcedPayload{Cutoff: cutoff, Until: until})
	event.ActorID = actorID
	s.publish(ctx, event)
	return nil
}

// Validator exposes the token validator for middleware usage.
func (s *AuthService) Validator() *auth.Validator {
	return s.validator
}

func (s *AuthService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
