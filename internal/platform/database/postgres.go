package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c Config) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

const (
	connectRetries = 10
	retryDelay     = 2 * time.Second
	maxConns       = 25
)

// NewPostgresDB opens a pooled connection, waiting for the database to
// come up. The retry loop covers the common case of the service starting
// before postgres is ready.
func NewPostgresDB(cfg Config) (*sql.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= connectRetries; attempt++ {
		log.Printf("Connecting to database (Attempt %d/%d)...", attempt, connectRetries)

		db, err := sql.Open("postgres", cfg.dsn())
		if err == nil {
			err = db.Ping()
		}

		if err == nil {
			db.SetMaxOpenConns(maxConns)
			db.SetMaxIdleConns(maxConns)
			db.SetConnMaxLifetime(5 * time.Minute)

			log.Println("Database connected successfully!")
			return db, nil
		}

		lastErr = err
		if db != nil {
			db.Close()
		}

		log.Printf("Database not ready yet. Waiting %s...", retryDelay)
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectRetries, lastErr)
}
