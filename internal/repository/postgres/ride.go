package postgres

import (
	"context"
	"database/sql"
	"errors"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, owner_id, origin, destination, total_seats, available_seats, price_per_seat, status, pickup_time, cancelled_at, cancel_reason, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.OwnerID,
		ride.Origin,
		ride.Destination,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.PricePerSeat,
		ride.Status,
		ride.PickupTime,
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanRide(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride with a row-level lock. Must run inside
// a transaction; the lock is held until commit or rollback.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return r.scanRide(r.q.QueryRowContext(ctx, query, id))
}

// ListOpen retrieves rides still accepting bookings, soonest pickup first.
func (r *RideRepository) ListOpen(ctx context.Context) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE status = $1 AND available_seats > 0
		ORDER BY pickup_time ASC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, domain.RideStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := r.scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET origin = $1, destination = $2, total_seats = $3, available_seats = $4,
		    price_per_seat = $5, status = $6, pickup_time = $7, cancelled_at = $8, cancel_reason = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Origin,
		ride.Destination,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.PricePerSeat,
		ride.Status,
		ride.PickupTime,
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.ID,
	)
	if err != nil {
		return err
	}

	return checkAffected(result, repository.ErrNotFound)
}

// ReserveSeats decrements available seats in a single conditional update.
// The WHERE clause makes the check-then-decrement atomic even outside an
// explicit transaction.
func (r *RideRepository) ReserveSeats(ctx context.Context, id string, seats int) error {
	query := `
		UPDATE rides SET available_seats = available_seats - $1
		WHERE id = $2 AND available_seats >= $1
	`

	result, err := r.q.ExecContext(ctx, query, seats, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing ride from an exhausted one.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrSeatIntegrity
	}
	return nil
}

// ReleaseSeats returns seats to the ride. The guard against exceeding
// total_seats turns a corrupted counter into an explicit failure.
func (r *RideRepository) ReleaseSeats(ctx context.Context, id string, seats int) error {
	query := `
		UPDATE rides SET available_seats = available_seats + $1
		WHERE id = $2 AND available_seats + $1 <= total_seats
	`

	result, err := r.q.ExecContext(ctx, query, seats, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrSeatIntegrity
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RideRepository) scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.OwnerID,
		&ride.Origin,
		&ride.Destination,
		&ride.TotalSeats,
		&ride.AvailableSeats,
		&ride.PricePerSeat,
		&ride.Status,
		&ride.PickupTime,
		&cancelledAt,
		&cancelReason,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		ride.CancelReason = cancelReason.String
	}

	return &ride, nil
}
