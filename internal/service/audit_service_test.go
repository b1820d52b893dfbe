package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/academy-auth/internal/domain"
	"github.com/spec-kit/academy-auth/internal/events"
)

func TestAuditServiceLogsLifecycleWithoutSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := newServiceFixture(t)
	NewAuditService(f.dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	if _, err := f.svc.CreateSubject(ctx, "alice@example.com", "top-secret-pw", []domain.Role{domain.RoleLearner}); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := f.svc.Login(ctx, "alice@example.com", "top-secret-pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Login(ctx, "alice@example.com", "bad"); err == nil {
		t.Fatal("expected failed login")
	}

	want := map[string]bool{
		string(events.EventSubjectRegistered): false,
		string(events.EventLoginSucceeded):    false,
		string(events.EventLoginFailed):       false,
	}
	for _, entry := range logs.All() {
		if _, ok := want[entry.Message]; ok {
			want[entry.Message] = true
		}
		for _, field := range entry.Context {
			if strings.Contains(field.String, "top-secret-pw") || strings.Contains(field.String, res.Token.Token) {
				t.Fatalf("log entry %q leaked credential material in field %s", entry.Message, field.Key)
			}
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Fatalf("expected audit entry %q", msg)
		}
	}
}
