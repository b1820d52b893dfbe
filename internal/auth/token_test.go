package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/academy-auth/internal/domain"
)

func TestIssueEmbedsClaims(t *testing.T) {
	clock := newFakeClock()
	tm := NewTokenManager(testSecret, "academy-auth", 2*time.Hour).WithClock(clock.Now)
	subject := &domain.Subject{ID: "subj-1", Roles: []domain.Role{domain.RoleTrainer, domain.RoleLearner}}

	token, err := tm.Issue(subject)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.SubjectID != "subj-1" || token.TokenID == "" || token.TokenID == token.SubjectID {
		t.Fatalf("unexpected token ids: %+v", token)
	}
	if !token.IssuedAt.Equal(clock.Now()) || !token.ExpiresAt.Equal(clock.Now().Add(2*time.Hour)) {
		t.Fatalf("unexpected lifetime: iat=%s exp=%s", token.IssuedAt, token.ExpiresAt)
	}

	claims, err := tm.ParseToken(token.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "subj-1" || claims.ID != token.TokenID || len(claims.Roles) != 2 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssueGeneratesDistinctTokenIDs(t *testing.T) {
	tm := NewTokenManager(testSecret, "", time.Hour)
	subject := &domain.Subject{ID: "subj-1", Roles: []domain.Role{domain.RoleLearner}}
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		token, err := tm.Issue(subject)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, dup := seen[token.TokenID]; dup {
			t.Fatalf("duplicate token id %q", token.TokenID)
		}
		if len(token.TokenID) != 22 {
			t.Fatalf("expected 16-byte base64url id, got %q", token.TokenID)
		}
		seen[token.TokenID] = struct{}{}
	}
}

func TestIssueRequiresSubjectID(t *testing.T) {
	tm := NewTokenManager(testSecret, "", time.Hour)
	if _, err := tm.Issue(&domain.Subject{}); err == nil {
		t.Fatal("expected error for subject without id")
	}
}

func TestParseTokenRejectsTamperedRoles(t *testing.T) {
	tm := NewTokenManager(testSecret, "", time.Hour)
	token, err := tm.Issue(&domain.Subject{ID: "subj-1", Roles: []domain.Role{domain.RoleLearner}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Roles:            []domain.Role{domain.RoleAdministrator},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subj-1", ID: token.TokenID, ExpiresAt: jwt.NewNumericDate(token.ExpiresAt)},
	})
	forgedStr, err := forged.SignedString([]byte("attacker-key"))
	if err != nil {
		t.Fatalf("sign forged: %v", err)
	}
	// Keep the original signature, swap the payload.
	origParts := strings.Split(token.Token, ".")
	forgedParts := strings.Split(forgedStr, ".")
	spliced := origParts[0] + "." + forgedParts[1] + "." + origParts[2]

	if _, err := tm.ParseToken(spliced); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	tm := NewTokenManager(testSecret, "", time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subj-1", ID: "tid", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := tm.ParseToken(tokenStr); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestParseTokenMissingClaimsIsMalformed(t *testing.T) {
	tm := NewTokenManager(testSecret, "", time.Hour)
	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subj-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	tokenStr, err := noID.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.ParseToken(tokenStr); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseTokenRejectsForeignIssuer(t *testing.T) {
	other := NewTokenManager(testSecret, "someone-else", time.Hour)
	token, err := other.Issue(&domain.Subject{ID: "subj-1", Roles: []domain.Role{domain.RoleLearner}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tm := NewTokenManager(testSecret, "academy-auth", time.Hour)
	if _, err := tm.ParseToken(token.Token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
