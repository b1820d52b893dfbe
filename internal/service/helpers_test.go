package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/config"
	"github.com/spec-kit/academy-auth/internal/domain"
	"github.com/spec-kit/academy-auth/internal/events"
	"github.com/spec-kit/academy-auth/internal/repository"
)

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connection refused")

type memSubjectRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Subject
	byEmail map[string]*domain.Subject
	failErr error
}

func newMemSubjectRepo() *memSubjectRepo {
	return &memSubjectRepo{
		byID:    make(map[string]*domain.Subject),
		byEmail: make(map[string]*domain.Subject),
	}
}

func (r *memSubjectRepo) FindByEmail(_ context.Context, email string) (*domain.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	s, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrSubjectNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubjectRepo) GetByID(_ context.Context, id string) (*domain.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrSubjectNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubjectRepo) Insert(_ context.Context, s *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.byEmail[s.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *s
	r.byID[s.ID] = &cp
	r.byEmail[s.Email] = &cp
	return nil
}

func (r *memSubjectRepo) UpdateSecretHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	s, ok := r.byID[id]
	if !ok {
		return repository.ErrSubjectNotFound
	}
	s.SecretHash = hash
	return nil
}

func (r *memSubjectRepo) fail(err error) {
	r.mu.Lock()
	r.failErr = err
	r.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingDispatcher wraps the in-memory dispatcher and remembers published event types.
type recordingDispatcher struct {
	events.Dispatcher
	mu    sync.Mutex
	types []events.EventType
	last  map[events.EventType]events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{
		Dispatcher: events.NewInMemoryDispatcher(),
		last:       make(map[events.EventType]events.Event),
	}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.types = append(d.types, event.Type)
	d.last[event.Type] = event
	d.mu.Unlock()
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) lastOf(t events.EventType) (events.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.last[t]
	return e, ok
}

type serviceFixture struct {
	svc        *AuthService
	repo       *memSubjectRepo
	registry   *auth.MemoryRegistry
	clock      *fakeClock
	dispatcher *recordingDispatcher
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "0123456789abcdef0123456789abcdef",
			JWTIssuer:             "academy-auth-test",
			AccessTokenTTLMinutes: 120,
			BcryptCost:            bcrypt.MinCost,
			StoreTimeoutMillis:    500,
			RevocationBackend:     config.RevocationBackendMemory,
		},
	}
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	clock := newFakeClock()
	repo := newMemSubjectRepo()
	registry := auth.NewMemoryRegistry().WithClock(clock.Now)
	dispatcher := newRecordingDispatcher()

	svc, err := NewAuthService(testConfig(), AuthDependencies{
		SubjectRepo: repo,
		Registry:    registry,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
		Now:         clock.Now,
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &serviceFixture{svc: svc, repo: repo, registry: registry, clock: clock, dispatcher: dispatcher}
}
