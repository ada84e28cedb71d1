package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/ports"
)

const (
	cacheTTL        = 5 * time.Minute
	maxCodeAttempts = 3
)

func eventLockKey(eventID int64) string {
	return fmt.Sprintf("seat:lock:%d", eventID)
}

func eventKey(eventID int64) string {
	return fmt.Sprintf("event:%d", eventID)
}

func availableEventsKey() string {
	return "event:available"
}

type ReserveRequest struct {
	EventID  int64  `json:"event_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Quantity int    `json:"quantity"`
}

// ReservationEvent is the payload published to the broker after a booking
// commits or a reservation is cancelled.
type ReservationEvent struct {
	Type            string    `json:"type"`
	ReservationCode string    `json:"reservation_code"`
	EventID         int64     `json:"event_id"`
	Quantity        int       `json:"quantity"`
	TotalPrice      int       `json:"total_price"`
	OccurredAt      time.Time `json:"occurred_at"`
}

const (
	EventTypeReservationConfirmed = "reservation.confirmed"
	EventTypeReservationCancelled = "reservation.cancelled"
)

// TicketingService serializes all seat mutations for an event behind a
// per-event distributed lock and keeps the cache consistent with the store
// by deleting stale keys after every committed write.
type TicketingService struct {
	eventRepo       ports.EventRepository
	reservationRepo ports.ReservationRepository
	locker          ports.EventLocker
	cache           ports.SnapshotCache
	publisher       ports.ReservationPublisher
}

func NewTicketingService(
	eventRepo ports.EventRepository,
	reservationRepo ports.ReservationRepository,
	locker ports.EventLocker,
	cache ports.SnapshotCache,
	publisher ports.ReservationPublisher,
) *TicketingService {
	return &TicketingService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		locker:          locker,
		cache:           cache,
		publisher:       publisher,
	}
}

// Reserve books quantity seats on an event. The event lock is held from
// before the inventory read until after the transactional write, so no two
// bookings can act on the same seat count. The lock is released on every
// path out of this function.
func (s *TicketingService) Reserve(ctx context.Context, req ReserveRequest) (*domain.Reservation, error) {
	if req.Quantity < domain.MinQuantity || req.Quantity > domain.MaxQuantity {
		return nil, domain.ErrInvalidQuantity
	}

	lockKey := eventLockKey(req.EventID)
	token, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			log.Printf("Failed to release lock %s: %v", lockKey, err)
		}
	}()

	// Always read the authoritative store inside the lock; the cache may
	// be stale.
	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	if err := event.Reserve(req.Quantity); err != nil {
		return nil, err
	}

	now := time.Now()

	var reservation *domain.Reservation
	for attempt := 1; ; attempt++ {
		reservation = domain.NewReservation(event, req.UserName, req.Email, req.Phone, req.Quantity, newReservationCode(now), now)

		err = s.reservationRepo.CreateWithEvent(ctx, event, reservation)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateReservationCode) && attempt < maxCodeAttempts {
			continue
		}
		return nil, err
	}

	s.invalidateEventCache(ctx, event.ID)
	s.publish(ctx, EventTypeReservationConfirmed, reservation)

	return reservation, nil
}

// CancelReservation returns the reserved seats to the event's pool. It runs
// under the same per-event lock as Reserve so a concurrent booking cannot
// lose the restocked seats.
func (s *TicketingService) CancelReservation(ctx context.Context, code string) error {
	reservation, err := s.reservationRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if reservation.Status == domain.ReservationCancelled {
		return domain.ErrAlreadyCancelled
	}

	lockKey := eventLockKey(reservation.EventID)
	token, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		return err
	}

	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			log.Printf("Failed to release lock %s: %v", lockKey, err)
		}
	}()

	// Re-read inside the lock; a concurrent cancel may have won the race.
	reservation, err = s.reservationRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := reservation.Cancel(); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, reservation.EventID)
	if err != nil {
		return err
	}
	event.Restock(reservation.Quantity)

	if err := s.reservationRepo.CancelWithEvent(ctx, event, reservation); err != nil {
		return err
	}

	s.invalidateEventCache(ctx, event.ID)
	s.publish(ctx, EventTypeReservationCancelled, reservation)

	return nil
}

// GetEvent reads one event cache-aside: serve the snapshot when present,
// otherwise read the store and populate the cache.
func (s *TicketingService) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	var cached domain.Event
	err := s.cache.Get(ctx, eventKey(eventID), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("Cache read failed for event %d: %v", eventID, err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, eventKey(eventID), event, cacheTTL); err != nil {
		log.Printf("Cache populate failed for event %d: %v", eventID, err)
	}

	return event, nil
}

// ListAvailableEvents reads the bookable-events list cache-aside.
func (s *TicketingService) ListAvailableEvents(ctx context.Context) ([]domain.Event, error) {
	var cached []domain.Event
	err := s.cache.Get(ctx, availableEventsKey(), &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("Cache read failed for available events: %v", err)
	}

	events, err := s.eventRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, availableEventsKey(), events, cacheTTL); err != nil {
		log.Printf("Cache populate failed for available events: %v", err)
	}

	return events, nil
}

func (s *TicketingService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.eventRepo.ListAll(ctx)
}

func (s *TicketingService) GetReservation(ctx context.Context, code string) (*domain.Reservation, error) {
	return s.reservationRepo.GetByCode(ctx, code)
}

// RunCacheWarmer periodically refreshes the available-events snapshot so
// the first read after an invalidation rarely pays the store round trip.
func (s *TicketingService) RunCacheWarmer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Cache warmer started: refreshing available events every %s...", interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Cache warmer stopped.")
			return
		case <-ticker.C:
			events, err := s.eventRepo.ListAvailable(ctx)
			if err != nil {
				log.Printf("Cache warmer: failed to list available events: %v", err)
				continue
			}
			if err := s.cache.Set(ctx, availableEventsKey(), events, cacheTTL); err != nil {
				log.Printf("Cache warmer: failed to populate cache: %v", err)
			}
		}
	}
}

// invalidateEventCache deletes the snapshot keys touched by a write. The
// next read repopulates them; TTL bounds staleness if the delete fails.
func (s *TicketingService) invalidateEventCache(ctx context.Context, eventID int64) {
	if err := s.cache.Delete(ctx, eventKey(eventID), availableEventsKey()); err != nil {
		log.Printf("Cache invalidation failed for event %d: %v", eventID, err)
	}
}

func (s *TicketingService) publish(ctx context.Context, eventType string, reservation *domain.Reservation) {
	if s.publisher == nil {
		return
	}

	evt := ReservationEvent{
		Type:            eventType,
		ReservationCode: reservation.ReservationCode,
		EventID:         reservation.EventID,
		Quantity:        reservation.Quantity,
		TotalPrice:      reservation.TotalPrice,
		OccurredAt:      time.Now(),
	}

	if err := s.publisher.Publish(ctx, reservation.ReservationCode, evt); err != nil {
		log.Printf("Failed to publish %s for %s: %v", eventType, reservation.ReservationCode, err)
	}
}
