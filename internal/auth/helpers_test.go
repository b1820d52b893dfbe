package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/academy-auth/internal/domain"
	"github.com/spec-kit/academy-auth/internal/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memSubjectRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Subject
	byEmail map[string]*domain.Subject
	lookups int
	failErr error
}

func newMemSubjectRepo() *memSubjectRepo {
	return &memSubjectRepo{
		byID:    make(map[string]*domain.Subject),
		byEmail: make(map[string]*domain.Subject),
	}
}

func (r *memSubjectRepo) FindByEmail(ctx context.Context, email string) (*domain.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
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

func (r *memSubjectRepo) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrSubjectNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubjectRepo) Insert(ctx context.Context, s *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[s.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *s
	r.byID[s.ID] = &cp
	r.byEmail[s.Email] = &cp
	return nil
}

func (r *memSubjectRepo) UpdateSecretHash(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return repository.ErrSubjectNotFound
	}
	s.SecretHash = hash
	return nil
}

func mustSubject(t *testing.T, repo *memSubjectRepo, id, email, secret string, roles ...domain.Role) *domain.Subject {
	t.Helper()
	hash, err := HashPassword(secret, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s := &domain.Subject{ID: id, Email: email, SecretHash: hash, Roles: roles}
	if err := repo.Insert(context.Background(), s); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return s
}

// fakeClock is a settable clock shared by the token manager, validator and registry.
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

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connection refused")
