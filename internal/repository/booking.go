package repository

import (
	"context"

	"carpool/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking. Inserting a second active booking for
	// the same (ride, passenger) pair fails with ErrDuplicateBooking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetActiveByRideAndPassenger retrieves the passenger's non-cancelled
	// booking on the ride, or ErrNotFound if there is none.
	GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error)

	// ListByPassenger retrieves all bookings made by a passenger.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error)

	// ListConfirmedByRide retrieves all CONFIRMED bookings on a ride.
	ListConfirmedByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// Update updates an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error

	// CancelConfirmedByRide flips every CONFIRMED booking on the ride to
	// CANCELLED in one statement and returns the affected bookings.
	CancelConfirmedByRide(ctx context.Context, rideID string) ([]*domain.Booking, error)

	// CompleteConfirmedByRide flips every CONFIRMED booking on the ride to
	// COMPLETED.
	CompleteConfirmedByRide(ctx context.Context, rideID string) error
}
