package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRevocationPrefix = "auth:revoked"

// raiseCutoffScript only ever moves a subject cutoff forward.
var raiseCutoffScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local incoming = tonumber(ARGV[1])
if incoming > current then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
return 0
`)

// RedisRegistry stores revocations as keys that expire with the token they revoke,
// so Redis itself performs the sweep and several processes share one denylist.
type RedisRegistry struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRegistry creates a registry on client. An empty prefix uses "auth:revoked".
func NewRedisRegistry(client redis.UniversalClient, prefix string) *RedisRegistry {
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}
	return &RedisRegistry{client: client, prefix: prefix, now: time.Now}
}

// WithClock replaces the clock used to compute key lifetimes.
func (r *RedisRegistry) WithClock(now func() time.Time) *RedisRegistry {
	r.now = now
	return r
}

func (r *RedisRegistry) tokenKey(tokenID string) string {
	return r.prefix + ":token:" + tokenID
}

func (r *RedisRegistry) subjectKey(subjectID string) string {
	return r.prefix + ":subject:" + subjectID
}

func (r *RedisRegistry) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	// NX keeps a second revoke from touching the existing entry.
	if err := r.client.SetNX(ctx, r.tokenKey(tokenID), expiresAt.UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("%w: revoke: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisRegistry) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: lookup: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (r *RedisRegistry) RevokeSubject(ctx context.Context, subjectID string, cutoff, until time.Time) error {
	ttl := until.Sub(r.now())
	if subjectID == "" || ttl <= 0 {
		return nil
	}
	err := raiseCutoffScript.Run(ctx, r.client,
		[]string{r.subjectKey(subjectID)},
		cutoff.UnixMilli(),
		ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: revoke subject: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisRegistry) SubjectCutoff(ctx context.Context, subjectID string) (time.Time, bool, error) {
	raw, err := r.client.Get(ctx, r.subjectKey(subjectID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: subject cutoff: %v", ErrUnavailable, err)
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt subject cutoff %q: %w", raw, err)
	}
	return time.UnixMilli(millis), true, nil
}

// Sweep is a no-op: every key carries its own expiry.
func (r *RedisRegistry) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
