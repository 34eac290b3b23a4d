package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, ride_id, passenger_id, seats_booked, total_price, status, cancelled_at, created_at`

// Create persists a new booking. The partial unique index on
// (ride_id, passenger_id) WHERE status <> 'CANCELLED' backstops the
// one-active-booking rule under concurrency.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.SeatsBooked,
		booking.TotalPrice,
		booking.Status,
		nullTime(booking.CancelledAt),
		booking.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicateBooking
		}
		return err
	}
	return nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.q.QueryRowContext(ctx, query, id))
}

// GetActiveByRideAndPassenger retrieves the passenger's non-cancelled
// booking on the ride.
func (r *BookingRepository) GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE ride_id = $1 AND passenger_id = $2 AND status <> $3
	`
	return r.scanBooking(r.q.QueryRowContext(ctx, query, rideID, passengerID, domain.BookingStatusCancelled))
}

// ListByPassenger retrieves all bookings made by a passenger, newest first.
func (r *BookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE passenger_id = $1 ORDER BY created_at DESC
	`
	return r.queryBookings(ctx, query, passengerID)
}

// ListConfirmedByRide retrieves all CONFIRMED bookings on a ride.
func (r *BookingRepository) ListConfirmedByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE ride_id = $1 AND status = $2 ORDER BY created_at ASC
	`
	return r.queryBookings(ctx, query, rideID, domain.BookingStatusConfirmed)
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET seats_booked = $1, total_price = $2, status = $3, cancelled_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.SeatsBooked,
		booking.TotalPrice,
		booking.Status,
		nullTime(booking.CancelledAt),
		booking.ID,
	)
	if err != nil {
		return err
	}

	return checkAffected(result, repository.ErrNotFound)
}

// CancelConfirmedByRide flips every CONFIRMED booking on the ride to
// CANCELLED in one statement and returns the affected bookings.
func (r *BookingRepository) CancelConfirmedByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, cancelled_at = NOW()
		WHERE ride_id = $2 AND status = $3
		RETURNING ` + bookingColumns

	rows, err := r.q.QueryContext(ctx, query, domain.BookingStatusCancelled, rideID, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// CompleteConfirmedByRide flips every CONFIRMED booking on the ride to COMPLETED.
func (r *BookingRepository) CompleteConfirmedByRide(ctx context.Context, rideID string) error {
	query := `UPDATE bookings SET status = $1 WHERE ride_id = $2 AND status = $3`

	_, err := r.q.ExecContext(ctx, query, domain.BookingStatusCompleted, rideID, domain.BookingStatusConfirmed)
	return err
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var cancelledAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.SeatsBooked,
		&booking.TotalPrice,
		&booking.Status,
		&cancelledAt,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if cancelledAt.Valid {
		booking.CancelledAt = cancelledAt.Time
	}

	return &booking, nil
}
