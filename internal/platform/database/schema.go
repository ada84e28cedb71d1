package database

import (
	"database/sql"
	"log"
)

// InitializeSchema creates the tables on startup when they do not exist
// yet. The unique index on reservation_code backs the collision-checked
// code generation in the booking path.
func InitializeSchema(db *sql.DB) error {
	log.Println("Checking database schema...")

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		venue TEXT NOT NULL,
		event_date TIMESTAMPTZ NOT NULL,
		total_seats INT NOT NULL CHECK (total_seats > 0),
		available_seats INT NOT NULL CHECK (available_seats >= 0 AND available_seats <= total_seats),
		price INT NOT NULL CHECK (price > 0),
		status TEXT NOT NULL DEFAULT 'AVAILABLE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS reservations (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id),
		user_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity BETWEEN 1 AND 4),
		total_price INT NOT NULL,
		status TEXT NOT NULL,
		reservation_code TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		confirmed_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_event_id ON reservations(event_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}

	log.Println("Database schema ready.")
	return nil
}
