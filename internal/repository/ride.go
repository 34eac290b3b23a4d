package repository

import (
	"context"

	"carpool/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride and locks its row for the duration
	// of the enclosing transaction. Inside Store.ExecTx this is the
	// serialization point for all seat-counter mutations on the ride.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// ListOpen retrieves rides that are still accepting bookings.
	ListOpen(ctx context.Context) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// ReserveSeats decrements the ride's available seats as a single
	// conditional update. It returns ErrNotFound if the ride does not
	// exist and ErrSeatIntegrity if fewer than seats are available; the
	// caller is expected to have checked availability under lock first.
	ReserveSeats(ctx context.Context, id string, seats int) error

	// ReleaseSeats returns seats to the ride's pool. A release that would
	// exceed TotalSeats fails with ErrSeatIntegrity.
	ReleaseSeats(ctx context.Context, id string, seats int) error
}
