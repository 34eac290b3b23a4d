package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. The CHECK constraints on
// rides and the partial unique index on bookings are the storage-level
// backstops for the ledger's invariants: seat counters can never leave
// [0, total_seats], and a passenger can hold at most one non-cancelled
// booking per ride.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			phone         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rides (
			id              TEXT PRIMARY KEY,
			owner_id        TEXT NOT NULL REFERENCES users(id),
			origin          TEXT NOT NULL,
			destination     TEXT NOT NULL,
			total_seats     INT NOT NULL CHECK (total_seats > 0),
			available_seats INT NOT NULL CHECK (available_seats >= 0 AND available_seats <= total_seats),
			price_per_seat  NUMERIC(10,2) NOT NULL CHECK (price_per_seat >= 0),
			status          TEXT NOT NULL,
			pickup_time     TIMESTAMPTZ NOT NULL,
			cancelled_at    TIMESTAMPTZ,
			cancel_reason   TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id           TEXT PRIMARY KEY,
			ride_id      TEXT NOT NULL REFERENCES rides(id),
			passenger_id TEXT NOT NULL REFERENCES users(id),
			seats_booked INT NOT NULL CHECK (seats_booked >= 1),
			total_price  NUMERIC(10,2) NOT NULL,
			status       TEXT NOT NULL,
			cancelled_at TIMESTAMPTZ,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS bookings_one_active_per_ride_passenger
			ON bookings (ride_id, passenger_id) WHERE status <> 'CANCELLED'`,
		`CREATE INDEX IF NOT EXISTS bookings_ride_status ON bookings (ride_id, status)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id          TEXT PRIMARY KEY,
			ride_id     TEXT NOT NULL REFERENCES rides(id),
			sender_id   TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT 'USER',
			content     TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS messages_ride ON messages (ride_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
