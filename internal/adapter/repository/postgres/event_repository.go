package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qkrtpdlr/terraform-ticketing-platform/internal/core/domain"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, name, description, venue, event_date, total_seats, available_seats, price, status, created_at, updated_at`

func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (*domain.Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM events
	WHERE id = $1
	`

	var event domain.Event
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.EventDate,
		&event.TotalSeats,
		&event.AvailableSeats,
		&event.Price,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}

		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) ListAll(ctx context.Context) ([]domain.Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM events
	ORDER BY event_date
	`

	return r.queryEvents(ctx, query)
}

func (r *EventRepository) ListAvailable(ctx context.Context) ([]domain.Event, error) {
	query := `
	SELECT ` + eventColumns + `
	FROM events
	WHERE status = 'AVAILABLE' AND available_seats > 0
	ORDER BY event_date
	`

	return r.queryEvents(ctx, query)
}

func (r *EventRepository) queryEvents(ctx context.Context, query string) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Venue,
			&event.EventDate,
			&event.TotalSeats,
			&event.AvailableSeats,
			&event.Price,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, rows.Err()
}
