package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/academy-auth/internal/domain"
)

func TestRoleConversionRoundTrip(t *testing.T) {
	roles := []domain.Role{domain.RoleTrainer, domain.RoleLearner}
	got := stringsToRoles(rolesToStrings(roles))
	if len(got) != 2 || got[0] != domain.RoleTrainer || got[1] != domain.RoleLearner {
		t.Fatalf("unexpected roles: %v", got)
	}
}

func TestUnconfiguredPoolReportsNotConfigured(t *testing.T) {
	repo := NewSubjectRepository(nil)
	ctx := context.Background()

	if _, err := repo.FindByEmail(ctx, "alice@example.com"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("find: expected ErrNotConfigured, got %v", err)
	}
	if err := repo.Insert(ctx, &domain.Subject{ID: "s-1"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("insert: expected ErrNotConfigured, got %v", err)
	}
	if err := repo.UpdateSecretHash(ctx, "s-1", "hash"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("update: expected ErrNotConfigured, got %v", err)
	}
}
