package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
)

const (
	defaultLockTTL        = 10 * time.Second
	defaultAcquireTimeout = 2 * time.Second
	baseBackoff           = 25 * time.Millisecond
)

// releaseScript deletes the lock key only while the stored token matches
// the caller's, so a holder whose lock already expired cannot free a lock
// that a newer holder now owns.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker implements a per-key advisory lock on redis with SET NX, a
// TTL to bound the blast radius of a crashed holder, and a unique token
// per acquisition.
type RedisLocker struct {
	client         *redis.Client
	ttl            time.Duration
	acquireTimeout time.Duration
}

type Option func(*RedisLocker)

// WithTTL overrides how long an unreleased lock survives.
func WithTTL(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

// WithAcquireTimeout overrides the hard deadline on lock acquisition.
func WithAcquireTimeout(d time.Duration) Option {
	return func(l *RedisLocker) {
		if d > 0 {
			l.acquireTimeout = d
		}
	}
}

func NewRedisLocker(client *redis.Client, opts ...Option) *RedisLocker {
	l := &RedisLocker{
		client:         client,
		ttl:            defaultLockTTL,
		acquireTimeout: defaultAcquireTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire takes the lock for key, retrying with exponential backoff until
// the acquire timeout elapses. It returns the holder token on success and
// domain.ErrLockContention once the deadline passes.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := baseBackoff

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		if time.Now().Add(backoff).After(deadline) {
			return "", domain.ErrLockContention
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
	}
}

// Release frees the lock if token still owns it. A token mismatch means the
// lock expired and was re-acquired by someone else; there is nothing left
// to release and that is not an error.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	return l.client.Eval(ctx, releaseScript, []string{key}, token).Err()
}
