package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/ports/mocks"
	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/services"
)

type serviceMocks struct {
	eventRepo       *mocks.EventRepository
	reservationRepo *mocks.ReservationRepository
	locker          *mocks.EventLocker
	cache           *mocks.SnapshotCache
}

func newService(t *testing.T) (*services.TicketingService, serviceMocks) {
	m := serviceMocks{
		eventRepo:       mocks.NewEventRepository(t),
		reservationRepo: mocks.NewReservationRepository(t),
		locker:          mocks.NewEventLocker(t),
		cache:           mocks.NewSnapshotCache(t),
	}

	svc := services.NewTicketingService(m.eventRepo, m.reservationRepo, m.locker, m.cache, nil)
	return svc, m
}

func availableEvent(id int64, seats, price int) *domain.Event {
	return &domain.Event{
		ID:             id,
		Name:           "Spring Concert",
		Venue:          "Grand Hall",
		TotalSeats:     10,
		AvailableSeats: seats,
		Price:          price,
		Status:         domain.EventAvailable,
	}
}

func TestReserve_Success(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(availableEvent(1, 10, 100), nil)
	m.reservationRepo.On("CreateWithEvent", ctx, mock.AnythingOfType("*domain.Event"), mock.AnythingOfType("*domain.Reservation")).Return(nil)
	m.cache.On("Delete", ctx, "event:1", "event:available").Return(nil)

	reservation, err := svc.Reserve(ctx, services.ReserveRequest{
		EventID:  1,
		UserName: "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "010-1234-5678",
		Quantity: 4,
	})

	require.NoError(t, err)
	require.NotNil(t, reservation)
	assert.Equal(t, 400, reservation.TotalPrice)
	assert.Equal(t, domain.ReservationConfirmed, reservation.Status)
	assert.True(t, strings.HasPrefix(reservation.ReservationCode, "RSV-"))
	require.NotNil(t, reservation.ConfirmedAt)
}

func TestReserve_LastSeatsMarkEventSoldOut(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	var persisted *domain.Event

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(availableEvent(1, 4, 100), nil)
	m.reservationRepo.On("CreateWithEvent", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*domain.Event)
		}).
		Return(nil)
	m.cache.On("Delete", ctx, "event:1", "event:available").Return(nil)

	_, err := svc.Reserve(ctx, services.ReserveRequest{EventID: 1, UserName: "Jane Doe", Email: "jane@example.com", Phone: "010-1234-5678", Quantity: 4})

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 0, persisted.AvailableSeats)
	assert.Equal(t, domain.EventSoldOut, persisted.Status)
}

func TestReserve_InsufficientSeats(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(availableEvent(1, 0, 100), nil)

	reservation, err := svc.Reserve(ctx, services.ReserveRequest{EventID: 1, UserName: "Jane Doe", Email: "jane@example.com", Phone: "010-1234-5678", Quantity: 1})

	var insufficient *domain.InsufficientSeatsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Remaining)
	assert.Contains(t, err.Error(), "remaining: 0")
	assert.Nil(t, reservation)
	m.reservationRepo.AssertNotCalled(t, "CreateWithEvent", mock.Anything, mock.Anything, mock.Anything)
	m.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserve_LockContention(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("", domain.ErrLockContention)

	reservation, err := svc.Reserve(ctx, services.ReserveRequest{EventID: 1, UserName: "Jane Doe", Email: "jane@example.com", Phone: "010-1234-5678", Quantity: 2})

	assert.ErrorIs(t, err, domain.ErrLockContention)
	assert.Nil(t, reservation)
	m.eventRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestReserve_InvalidQuantityRejectedBeforeLocking(t *testing.T) {
	svc, m := newService(t)

	_, err := svc.Reserve(context.Background(), services.ReserveRequest{EventID: 1, Quantity: 5})

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	m.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
}

func TestReserve_ReleasesLockWhenStoreReadFails(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(nil, errors.New("connection reset"))

	_, err := svc.Reserve(ctx, services.ReserveRequest{EventID: 1, UserName: "Jane Doe", Email: "jane@example.com", Phone: "010-1234-5678", Quantity: 1})

	assert.Error(t, err)
	m.locker.AssertCalled(t, "Release", mock.Anything, "seat:lock:1", "token-1")
}

func TestReserve_RetriesOnDuplicateReservationCode(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(availableEvent(1, 10, 100), nil)
	m.reservationRepo.On("CreateWithEvent", ctx, mock.Anything, mock.Anything).Return(domain.ErrDuplicateReservationCode).Once()
	m.reservationRepo.On("CreateWithEvent", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	m.cache.On("Delete", ctx, "event:1", "event:available").Return(nil)

	reservation, err := svc.Reserve(ctx, services.ReserveRequest{EventID: 1, UserName: "Jane Doe", Email: "jane@example.com", Phone: "010-1234-5678", Quantity: 2})

	require.NoError(t, err)
	assert.NotEmpty(t, reservation.ReservationCode)
	m.reservationRepo.AssertNumberOfCalls(t, "CreateWithEvent", 2)
}

func TestReserve_PublishesConfirmedEvent(t *testing.T) {
	m := serviceMocks{
		eventRepo:       mocks.NewEventRepository(t),
		reservationRepo: mocks.NewReservationRepository(t),
		locker:          mocks.NewEventLocker(t),
		cache:           mocks.NewSnapshotCache(t),
	}
	publisher := mocks.NewReservationPublisher(t)
	svc := services.NewTicketingService(m.eventRepo, m.reservationRepo, m.locker, m.cache, publisher)
	ctx := context.Background()

	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(availableEvent(1, 10, 100), nil)
	m.reservationRepo.On("CreateWithEvent", ctx, mock.Anything, mock.Anything).Return(nil)
	m.cache.On("Delete", ctx, "event:1", "event:available").Return(nil)

	var published services.ReservationEvent
	publisher.On("Publish", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("services.ReservationEvent")).
		Run(func(args mock.Arguments) {
			published = args.Get(2).(services.ReservationEvent)
		}).
		Return(nil)

	reservation, err := svc.Reserve(ctx, services.ReserveRequest{EventID: 1, UserName: "Jane Doe", Email: "jane@example.com", Phone: "010-1234-5678", Quantity: 3})

	require.NoError(t, err)
	assert.Equal(t, services.EventTypeReservationConfirmed, published.Type)
	assert.Equal(t, reservation.ReservationCode, published.ReservationCode)
	assert.Equal(t, 3, published.Quantity)
}

func confirmedReservation(code string, eventID int64, quantity int) *domain.Reservation {
	confirmedAt := time.Now()
	return &domain.Reservation{
		ID:              11,
		EventID:         eventID,
		UserName:        "Jane Doe",
		Email:           "jane@example.com",
		Phone:           "010-1234-5678",
		Quantity:        quantity,
		TotalPrice:      quantity * 100,
		Status:          domain.ReservationConfirmed,
		ReservationCode: code,
		CreatedAt:       confirmedAt,
		ConfirmedAt:     &confirmedAt,
	}
}

func TestCancelReservation_Success(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	soldOut := availableEvent(1, 0, 100)
	soldOut.Status = domain.EventSoldOut

	var persistedEvent *domain.Event
	var persistedReservation *domain.Reservation

	m.reservationRepo.On("GetByCode", ctx, "RSV-20250901-4F9A2C1B").Return(confirmedReservation("RSV-20250901-4F9A2C1B", 1, 4), nil)
	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(soldOut, nil)
	m.reservationRepo.On("CancelWithEvent", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persistedEvent = args.Get(1).(*domain.Event)
			persistedReservation = args.Get(2).(*domain.Reservation)
		}).
		Return(nil)
	m.cache.On("Delete", ctx, "event:1", "event:available").Return(nil)

	err := svc.CancelReservation(ctx, "RSV-20250901-4F9A2C1B")

	require.NoError(t, err)
	require.NotNil(t, persistedEvent)
	assert.Equal(t, 4, persistedEvent.AvailableSeats)
	assert.Equal(t, domain.EventAvailable, persistedEvent.Status)
	assert.Equal(t, domain.ReservationCancelled, persistedReservation.Status)
}

func TestCancelReservation_NotFound(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.reservationRepo.On("GetByCode", ctx, "RSV-MISSING").Return(nil, domain.ErrReservationNotFound)

	err := svc.CancelReservation(ctx, "RSV-MISSING")

	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	m.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
}

func TestCancelReservation_AlreadyCancelled(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	cancelled := confirmedReservation("RSV-20250901-4F9A2C1B", 1, 2)
	cancelled.Status = domain.ReservationCancelled

	m.reservationRepo.On("GetByCode", ctx, "RSV-20250901-4F9A2C1B").Return(cancelled, nil)

	err := svc.CancelReservation(ctx, "RSV-20250901-4F9A2C1B")

	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	m.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
	m.eventRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCancelReservation_LosesRaceToConcurrentCancel(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	confirmed := confirmedReservation("RSV-20250901-4F9A2C1B", 1, 2)
	cancelled := confirmedReservation("RSV-20250901-4F9A2C1B", 1, 2)
	cancelled.Status = domain.ReservationCancelled

	// First read sees CONFIRMED; the re-read under the lock sees that a
	// concurrent cancel already won.
	m.reservationRepo.On("GetByCode", ctx, "RSV-20250901-4F9A2C1B").Return(confirmed, nil).Once()
	m.reservationRepo.On("GetByCode", ctx, "RSV-20250901-4F9A2C1B").Return(cancelled, nil).Once()
	m.locker.On("Acquire", ctx, "seat:lock:1").Return("token-1", nil)
	m.locker.On("Release", mock.Anything, "seat:lock:1", "token-1").Return(nil)

	err := svc.CancelReservation(ctx, "RSV-20250901-4F9A2C1B")

	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	m.reservationRepo.AssertNotCalled(t, "CancelWithEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetEvent_CacheHit(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	snapshot := *availableEvent(1, 6, 100)

	m.cache.On("Get", ctx, "event:1", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*domain.Event)
			*dest = snapshot
		}).
		Return(nil)

	event, err := svc.GetEvent(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 6, event.AvailableSeats)
	m.eventRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetEvent_CacheMissPopulates(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	stored := availableEvent(1, 6, 100)

	m.cache.On("Get", ctx, "event:1", mock.Anything).Return(domain.ErrCacheMiss)
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(stored, nil)
	m.cache.On("Set", ctx, "event:1", stored, 5*time.Minute).Return(nil)

	event, err := svc.GetEvent(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, stored, event)
}

func TestListAvailableEvents_CacheMissPopulates(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	stored := []domain.Event{*availableEvent(1, 6, 100), *availableEvent(2, 3, 250)}

	m.cache.On("Get", ctx, "event:available", mock.Anything).Return(domain.ErrCacheMiss)
	m.eventRepo.On("ListAvailable", ctx).Return(stored, nil)
	m.cache.On("Set", ctx, "event:available", stored, 5*time.Minute).Return(nil)

	events, err := svc.ListAvailableEvents(ctx)

	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestGetEvent_CacheFailureFallsBackToStore(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	stored := availableEvent(1, 6, 100)

	m.cache.On("Get", ctx, "event:1", mock.Anything).Return(errors.New("redis down"))
	m.eventRepo.On("GetByID", ctx, int64(1)).Return(stored, nil)
	m.cache.On("Set", ctx, "event:1", stored, 5*time.Minute).Return(errors.New("redis down"))

	event, err := svc.GetEvent(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, stored, event)
}
