package auth

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/academy-auth/internal/domain"
)

// RevocationRegistry is the denylist consulted on every authenticated request.
//
// Entries are bounded by the lifetime of the token they revoke: once a token would have
// expired anyway its entry carries no information and may be dropped by Sweep. Correctness
// never depends on Sweep having run, because the Validator rejects expired tokens first.
type RevocationRegistry interface {
	// Revoke records tokenID as revoked until expiresAt. Revoking twice, or revoking a token
	// that already expired, is a no-op.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	// IsRevoked reports whether tokenID was revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// RevokeSubject rejects every token of subjectID issued at or before cutoff. The record is
	// kept until until, which callers set to cutoff plus the token TTL.
	RevokeSubject(ctx context.Context, subjectID string, cutoff, until time.Time) error
	// SubjectCutoff returns the latest forced re-authentication instant for subjectID.
	SubjectCutoff(ctx context.Context, subjectID string) (time.Time, bool, error)
	// Sweep drops entries whose expiry is before now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type subjectCutoff struct {
	cutoff time.Time
	until  time.Time
}

// MemoryRegistry is a process-local RevocationRegistry. Readers share an RWMutex so
// IsRevoked never waits on other readers.
type MemoryRegistry struct {
	mu       sync.RWMutex
	tokens   map[string]domain.RevocationEntry
	subjects map[string]subjectCutoff
	now      func() time.Time
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		tokens:   make(map[string]domain.RevocationEntry),
		subjects: make(map[string]subjectCutoff),
		now:      time.Now,
	}
}

// WithClock replaces the clock used to decide whether a revoked token already expired.
func (r *MemoryRegistry) WithClock(now func() time.Time) *MemoryRegistry {
	r.now = now
	return r
}

func (r *MemoryRegistry) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" || !expiresAt.After(r.now()) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.tokens[tokenID]; ok && !expiresAt.After(current.ExpiresAt) {
		return nil
	}
	r.tokens[tokenID] = domain.RevocationEntry{TokenID: tokenID, ExpiresAt: expiresAt}
	return nil
}

func (r *MemoryRegistry) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	_, ok := r.tokens[tokenID]
	r.mu.RUnlock()
	return ok, nil
}

func (r *MemoryRegistry) RevokeSubject(_ context.Context, subjectID string, cutoff, until time.Time) error {
	if subjectID == "" || !until.After(r.now()) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.subjects[subjectID]
	if ok && !cutoff.After(current.cutoff) {
		return nil
	}
	r.subjects[subjectID] = subjectCutoff{cutoff: cutoff, until: until}
	return nil
}

func (r *MemoryRegistry) SubjectCutoff(_ context.Context, subjectID string) (time.Time, bool, error) {
	r.mu.RLock()
	entry, ok := r.subjects[subjectID]
	r.mu.RUnlock()
	return entry.cutoff, ok, nil
}

func (r *MemoryRegistry) Sweep(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.tokens {
		if entry.ExpiresAt.Before(now) {
			delete(r.tokens, id)
			removed++
		}
	}
	for id, entry := range r.subjects {
		if entry.until.Before(now) {
			delete(r.subjects, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live token entries.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
