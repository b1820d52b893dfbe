package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/academy-auth/internal/domain"
)

func newTestVerifier(t *testing.T, repo *memSubjectRepo) *CredentialVerifier {
	t.Helper()
	v, err := NewCredentialVerifier(repo, bcrypt.MinCost, time.Second, nil)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return v
}

func TestVerifyCorrectSecret(t *testing.T) {
	repo := newMemSubjectRepo()
	mustSubject(t, repo, "subj-1", "alice@example.com", "password123", domain.RoleLearner)
	v := newTestVerifier(t, repo)

	subject, err := v.Verify(context.Background(), "  Alice@Example.COM ", "password123")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject.ID != "subj-1" {
		t.Fatalf("unexpected subject %q", subject.ID)
	}
}

func TestVerifyWrongSecretMatchesUnknownEmail(t *testing.T) {
	repo := newMemSubjectRepo()
	mustSubject(t, repo, "subj-1", "alice@example.com", "password123", domain.RoleLearner)
	v := newTestVerifier(t, repo)
	ctx := context.Background()

	_, wrongSecret := v.Verify(ctx, "alice@example.com", "password124")
	_, unknownEmail := v.Verify(ctx, "mallory@example.com", "password123")

	if wrongSecret != ErrInvalidCredentials || unknownEmail != ErrInvalidCredentials {
		t.Fatalf("expected identical ErrInvalidCredentials, got %v and %v", wrongSecret, unknownEmail)
	}
	if wrongSecret.Error() != unknownEmail.Error() {
		t.Fatal("error messages must not distinguish unknown email from wrong secret")
	}
}

func TestVerifyUnknownEmailStillComparesDecoy(t *testing.T) {
	repo := newMemSubjectRepo()
	v := newTestVerifier(t, repo)
	if err := bcrypt.CompareHashAndPassword([]byte(v.decoyHash), []byte("x")); !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Fatalf("decoy must be a well-formed bcrypt hash, got %v", err)
	}
	cost, err := bcrypt.Cost([]byte(v.decoyHash))
	if err != nil || cost != bcrypt.MinCost {
		t.Fatalf("decoy cost should match configured cost, got %d (err=%v)", cost, err)
	}
}

func TestVerifyStoreFailureIsUnavailable(t *testing.T) {
	repo := newMemSubjectRepo()
	repo.failErr = errStoreDown
	v := newTestVerifier(t, repo)

	_, err := v.Verify(context.Background(), "alice@example.com", "password123")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("outage must not look like bad credentials")
	}
	if repo.lookups != 1 {
		t.Fatalf("store must not be retried internally, got %d lookups", repo.lookups)
	}
}

type slowRepo struct{ *memSubjectRepo }

func (slowRepo) FindByEmail(ctx context.Context, _ string) (*domain.Subject, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestVerifyHonoursStoreDeadline(t *testing.T) {
	v, err := NewCredentialVerifier(slowRepo{newMemSubjectRepo()}, bcrypt.MinCost, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	start := time.Now()
	_, err = v.Verify(context.Background(), "alice@example.com", "password123")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("verify hung for %s", elapsed)
	}
}
