package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
)

const uniqueViolation = "23505"

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	query := `
	SELECT id, event_id, user_name, email, phone, quantity, total_price, status, reservation_code, created_at, confirmed_at
	FROM reservations
	WHERE reservation_code = $1
	`

	var reservation domain.Reservation
	var confirmedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&reservation.ID,
		&reservation.EventID,
		&reservation.UserName,
		&reservation.Email,
		&reservation.Phone,
		&reservation.Quantity,
		&reservation.TotalPrice,
		&reservation.Status,
		&reservation.ReservationCode,
		&reservation.CreatedAt,
		&confirmedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}

		return nil, err
	}

	if confirmedAt.Valid {
		reservation.ConfirmedAt = &confirmedAt.Time
	}

	return &reservation, nil
}

// CreateWithEvent commits the seat decrement and the reservation insert as
// one transaction, so a crash can never leave inventory taken with no
// matching reservation. A reservation-code collision surfaces as
// domain.ErrDuplicateReservationCode and rolls back the seat update too.
func (r *ReservationRepository) CreateWithEvent(ctx context.Context, event *domain.Event, reservation *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if err := updateEventSeats(ctx, tx, event); err != nil {
		return err
	}

	queryInsert := `
	INSERT INTO reservations (event_id, user_name, email, phone, quantity, total_price, status, reservation_code, created_at, confirmed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
	`

	err = tx.QueryRowContext(ctx, queryInsert,
		reservation.EventID,
		reservation.UserName,
		reservation.Email,
		reservation.Phone,
		reservation.Quantity,
		reservation.TotalPrice,
		reservation.Status,
		reservation.ReservationCode,
		reservation.CreatedAt,
		reservation.ConfirmedAt,
	).Scan(&reservation.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateReservationCode
		}

		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

// CancelWithEvent commits the seat restock and the status transition as one
// transaction.
func (r *ReservationRepository) CancelWithEvent(ctx context.Context, event *domain.Event, reservation *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	if err := updateEventSeats(ctx, tx, event); err != nil {
		return err
	}

	queryCancel := `
	UPDATE reservations
	SET status = $1
	WHERE id = $2
	`

	if _, err := tx.ExecContext(ctx, queryCancel, reservation.Status, reservation.ID); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation transaction: %w", err)
	}

	return nil
}

func updateEventSeats(ctx context.Context, tx *sql.Tx, event *domain.Event) error {
	query := `
	UPDATE events
	SET available_seats = $1,
		status = $2,
		updated_at = NOW()
	WHERE id = $3
	`

	result, err := tx.ExecContext(ctx, query, event.AvailableSeats, event.Status, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event seats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}
