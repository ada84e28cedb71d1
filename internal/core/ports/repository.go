package ports

import (
	"context"
	"time"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
)

type EventRepository interface {
	GetByID(ctx context.Context, eventID int64) (*domain.Event, error)
	ListAll(ctx context.Context) ([]domain.Event, error)
	ListAvailable(ctx context.Context) ([]domain.Event, error)
}

type ReservationRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)
	// CreateWithEvent persists the mutated event and the new reservation in
	// a single transaction. Either both writes commit or neither does.
	CreateWithEvent(ctx context.Context, event *domain.Event, reservation *domain.Reservation) error
	// CancelWithEvent persists the restocked event and the cancelled
	// reservation in a single transaction.
	CancelWithEvent(ctx context.Context, event *domain.Event, reservation *domain.Reservation) error
}

// EventLocker is the per-event mutual exclusion primitive shared across all
// service instances. Acquire blocks with backoff up to a configured deadline
// and returns domain.ErrLockContention when the deadline elapses. Release
// only deletes the lock while token still owns it.
type EventLocker interface {
	Acquire(ctx context.Context, key string) (token string, err error)
	Release(ctx context.Context, key, token string) error
}

// SnapshotCache holds JSON snapshots of store data. Get returns
// domain.ErrCacheMiss when the key is absent or expired.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ReservationPublisher emits reservation lifecycle events to the message
// broker. Publishing is best-effort; callers log failures and move on.
type ReservationPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
