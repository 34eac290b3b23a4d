package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// rideCascadeLockTTL bounds the advisory lock held while a ride
// cancellation cascade runs.
const rideCascadeLockTTL = 30 * time.Second

// BookingLedger owns the lifecycle of a ride's seat inventory and the
// bookings against it. Every operation runs as one storage transaction with
// the ride row locked, so concurrent bookings can never oversell seats and
// a cancellation cascade can never interleave with a new booking.
// Notifications fire only after the transaction commits and are
// best-effort.
type BookingLedger struct {
	store         repository.Store
	cache         redis.CacheStoreInterface
	locks         redis.LockStoreInterface
	notifications *NotificationService
}

// NewBookingLedger creates a new BookingLedger. cache, locks and
// notifications may be nil.
func NewBookingLedger(
	store repository.Store,
	cache redis.CacheStoreInterface,
	locks redis.LockStoreInterface,
	notifications *NotificationService,
) *BookingLedger {
	return &BookingLedger{
		store:         store,
		cache:         cache,
		locks:         locks,
		notifications: notifications,
	}
}

// CreateBookingRequest contains the parameters for booking seats.
type CreateBookingRequest struct {
	RideID      string
	PassengerID string
	Seats       int
}

// CreateBooking reserves seats on a ride for a passenger. Preconditions are
// checked in order, first failure wins: ride exists, passenger is not the
// driver, ride is open, enough seats remain, no active duplicate booking.
// The booking insert and the seat decrement commit atomically.
func (l *BookingLedger) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.PassengerID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Seats < 1 {
		return nil, ErrInvalidSeatCount
	}

	var booking *domain.Booking
	var ride *domain.Ride

	err := l.store.ExecTx(ctx, func(r repository.Repositories) error {
		var err error
		ride, err = r.Rides.GetByIDForUpdate(ctx, req.RideID)
		if err != nil {
			return err
		}

		if ride.OwnerID == req.PassengerID {
			return ErrOwnRideBooking
		}
		if ride.Status != domain.RideStatusAvailable {
			return ErrRideNotOpen
		}
		if ride.AvailableSeats < req.Seats {
			return ErrNotEnoughSeats
		}

		_, err = r.Bookings.GetActiveByRideAndPassenger(ctx, req.RideID, req.PassengerID)
		if err == nil {
			return ErrAlreadyBooked
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := r.Rides.ReserveSeats(ctx, ride.ID, req.Seats); err != nil {
			return err
		}
		ride.AvailableSeats -= req.Seats

		booking = &domain.Booking{
			ID:          uuid.New().String(),
			RideID:      ride.ID,
			PassengerID: req.PassengerID,
			SeatsBooked: req.Seats,
			TotalPrice:  float64(req.Seats) * ride.PricePerSeat,
			Status:      domain.BookingStatusConfirmed,
			CreatedAt:   time.Now(),
		}

		if err := r.Bookings.Create(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrDuplicateBooking) {
				return ErrAlreadyBooked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.invalidateRide(ctx, ride.ID)

	if l.notifications != nil {
		if err := l.notifications.SeatsBooked(ctx, ride, booking); err != nil {
			log.Printf("booking %s: owner notification failed: %v", booking.ID, err)
		}
	}

	return booking, nil
}

// CancelBookingRequest contains the parameters for cancelling a booking.
type CancelBookingRequest struct {
	BookingID   string
	RequesterID string
}

// CancelBooking cancels the requester's booking and returns its seats to
// the ride. A release that would push the counter past total_seats means a
// prior invariant was violated; it surfaces as a storage error rather than
// being clamped.
func (l *BookingLedger) CancelBooking(ctx context.Context, req CancelBookingRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.RequesterID == "" {
		return nil, ErrInvalidUserID
	}

	var booking *domain.Booking
	var ride *domain.Ride

	err := l.store.ExecTx(ctx, func(r repository.Repositories) error {
		var err error
		booking, err = r.Bookings.GetByID(ctx, req.BookingID)
		if err != nil {
			return err
		}

		if booking.PassengerID != req.RequesterID {
			return ErrNotBookingPassenger
		}
		if booking.Status == domain.BookingStatusCancelled {
			return ErrBookingAlreadyCancelled
		}

		ride, err = r.Rides.GetByIDForUpdate(ctx, booking.RideID)
		if err != nil {
			return err
		}

		booking.Status = domain.BookingStatusCancelled
		booking.CancelledAt = time.Now()
		if err := r.Bookings.Update(ctx, booking); err != nil {
			return err
		}

		if err := r.Rides.ReleaseSeats(ctx, ride.ID, booking.SeatsBooked); err != nil {
			return err
		}
		ride.AvailableSeats += booking.SeatsBooked
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.invalidateRide(ctx, ride.ID)

	if l.notifications != nil {
		if err := l.notifications.BookingCancelled(ctx, ride, booking); err != nil {
			log.Printf("booking %s: owner notification failed: %v", booking.ID, err)
		}
	}

	return booking, nil
}

// CancelRideRequest contains the parameters for cancelling a ride.
type CancelRideRequest struct {
	RideID      string
	RequesterID string
	Reason      string
}

// CancelRide cancels a ride and cascades the cancellation to every
// CONFIRMED booking on it. Seats are not restored per booking: the closed
// ride's counter is moot once its status is CANCELLED. The ride flip and
// all booking flips commit in one transaction; one notification per
// affected passenger fires after commit.
func (l *BookingLedger) CancelRide(ctx context.Context, req CancelRideRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.RequesterID == "" {
		return nil, ErrInvalidUserID
	}

	// Advisory lock short-circuits concurrent cascades before they queue
	// up on the row lock. The transaction stays authoritative.
	if l.locks != nil {
		locked, err := l.locks.AcquireRideLock(ctx, req.RideID, rideCascadeLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrInvalidTransition
		}
		defer func() {
			_ = l.locks.ReleaseRideLock(ctx, req.RideID)
		}()
	}

	var ride *domain.Ride
	var cancelled []*domain.Booking

	err := l.store.ExecTx(ctx, func(r repository.Repositories) error {
		var err error
		ride, err = r.Rides.GetByIDForUpdate(ctx, req.RideID)
		if err != nil {
			return err
		}

		if ride.OwnerID != req.RequesterID {
			return ErrNotRideOwner
		}
		if ride.Status.Terminal() {
			return ErrInvalidTransition
		}

		cancelled, err = r.Bookings.CancelConfirmedByRide(ctx, ride.ID)
		if err != nil {
			return err
		}

		ride.Status = domain.RideStatusCancelled
		ride.CancelledAt = time.Now()
		ride.CancelReason = req.Reason
		return r.Rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	l.invalidateRide(ctx, ride.ID)

	if l.notifications != nil {
		for _, booking := range cancelled {
			if err := l.notifications.RideCancelled(ctx, ride, booking, req.Reason); err != nil {
				log.Printf("ride %s: passenger %s notification failed: %v", ride.ID, booking.PassengerID, err)
			}
		}
	}

	return ride, nil
}

// CompleteRide marks a ride COMPLETED and completes its CONFIRMED bookings.
func (l *BookingLedger) CompleteRide(ctx context.Context, rideID, requesterID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if requesterID == "" {
		return nil, ErrInvalidUserID
	}

	var ride *domain.Ride

	err := l.store.ExecTx(ctx, func(r repository.Repositories) error {
		var err error
		ride, err = r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}

		if ride.OwnerID != requesterID {
			return ErrNotRideOwner
		}
		if ride.Status.Terminal() {
			return ErrInvalidTransition
		}

		if err := r.Bookings.CompleteConfirmedByRide(ctx, ride.ID); err != nil {
			return err
		}

		ride.Status = domain.RideStatusCompleted
		return r.Rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	l.invalidateRide(ctx, ride.ID)
	return ride, nil
}

func (l *BookingLedger) invalidateRide(ctx context.Context, rideID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.InvalidateRide(ctx, rideID); err != nil {
		log.Printf("ride %s: cache invalidation failed: %v", rideID, err)
	}
}

// GetBooking retrieves a booking visible to the requester (its passenger
// or the ride's driver).
func (l *BookingLedger) GetBooking(ctx context.Context, bookingID, requesterID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := l.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != requesterID {
		ride, err := l.store.Rides().GetByID(ctx, booking.RideID)
		if err != nil {
			return nil, err
		}
		if ride.OwnerID != requesterID {
			return nil, ErrNotBookingPassenger
		}
	}

	return booking, nil
}

// ListBookings retrieves all bookings made by the requester.
func (l *BookingLedger) ListBookings(ctx context.Context, requesterID string) ([]*domain.Booking, error) {
	if requesterID == "" {
		return nil, ErrInvalidUserID
	}
	return l.store.Bookings().ListByPassenger(ctx, requesterID)
}
