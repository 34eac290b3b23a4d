package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/redis"
	"carpool/internal/repository"
)

// RideService handles ride publishing and status transitions. Cancellation
// and completion touch bookings, so they are delegated to the ledger.
type RideService struct {
	store  repository.Store
	cache  redis.CacheStoreInterface
	ledger *BookingLedger
}

// NewRideService creates a new RideService. cache may be nil.
func NewRideService(store repository.Store, cache redis.CacheStoreInterface, ledger *BookingLedger) *RideService {
	return &RideService{
		store:  store,
		cache:  cache,
		ledger: ledger,
	}
}

// PublishRideRequest contains the parameters for publishing a ride.
type PublishRideRequest struct {
	OwnerID      string
	Origin       string
	Destination  string
	TotalSeats   int
	PricePerSeat float64
	PickupTime   time.Time
}

// PublishRide creates a new ride in AVAILABLE state with all seats free.
func (s *RideService) PublishRide(ctx context.Context, req PublishRideRequest) (*domain.Ride, error) {
	if req.OwnerID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Origin == "" || req.Destination == "" || req.PricePerSeat < 0 || req.PickupTime.IsZero() {
		return nil, ErrInvalidRideDetails
	}
	if req.TotalSeats < 1 {
		return nil, ErrInvalidSeatCount
	}

	if _, err := s.store.Users().GetByID(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		OwnerID:        req.OwnerID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		PricePerSeat:   req.PricePerSeat,
		Status:         domain.RideStatusAvailable,
		PickupTime:     req.PickupTime,
		CreatedAt:      time.Now(),
	}

	if err := s.store.Rides().Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// GetRide retrieves a ride, serving from cache when possible.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cache != nil {
		cached, err := s.cache.GetRide(ctx, rideID)
		if err != nil {
			log.Printf("ride %s: cache read failed: %v", rideID, err)
		} else if cached != nil {
			return cachedToRide(cached), nil
		}
	}

	ride, err := s.store.Rides().GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRide(ctx, rideToCached(ride)); err != nil {
			log.Printf("ride %s: cache write failed: %v", rideID, err)
		}
	}

	return ride, nil
}

// ListOpenRides retrieves rides still accepting bookings.
func (s *RideService) ListOpenRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.store.Rides().ListOpen(ctx)
}

// UpdateRideStatusRequest contains the parameters for a status transition.
type UpdateRideStatusRequest struct {
	RideID      string
	RequesterID string
	Status      string
	Reason      string
}

// UpdateRideStatus applies a ride status transition. CANCELLED runs the
// booking cascade, COMPLETED completes the confirmed bookings, ACTIVE is a
// plain transition from AVAILABLE.
func (s *RideService) UpdateRideStatus(ctx context.Context, req UpdateRideStatusRequest) (*domain.Ride, error) {
	switch domain.RideStatus(strings.ToUpper(req.Status)) {
	case domain.RideStatusCancelled:
		return s.ledger.CancelRide(ctx, CancelRideRequest{
			RideID:      req.RideID,
			RequesterID: req.RequesterID,
			Reason:      req.Reason,
		})
	case domain.RideStatusCompleted:
		return s.ledger.CompleteRide(ctx, req.RideID, req.RequesterID)
	case domain.RideStatusActive:
		return s.activateRide(ctx, req.RideID, req.RequesterID)
	default:
		return nil, ErrInvalidRideStatus
	}
}

// activateRide moves an AVAILABLE ride to ACTIVE (departure underway).
func (s *RideService) activateRide(ctx context.Context, rideID, requesterID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if requesterID == "" {
		return nil, ErrInvalidUserID
	}

	var ride *domain.Ride

	err := s.store.ExecTx(ctx, func(r repository.Repositories) error {
		var err error
		ride, err = r.Rides.GetByIDForUpdate(ctx, rideID)
		if err != nil {
			return err
		}

		if ride.OwnerID != requesterID {
			return ErrNotRideOwner
		}
		if ride.Status != domain.RideStatusAvailable {
			return ErrInvalidTransition
		}

		ride.Status = domain.RideStatusActive
		return r.Rides.Update(ctx, ride)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, rideID)
	}

	return ride, nil
}

func rideToCached(ride *domain.Ride) *redis.CachedRide {
	return &redis.CachedRide{
		ID:             ride.ID,
		OwnerID:        ride.OwnerID,
		Origin:         ride.Origin,
		Destination:    ride.Destination,
		TotalSeats:     ride.TotalSeats,
		AvailableSeats: ride.AvailableSeats,
		PricePerSeat:   ride.PricePerSeat,
		Status:         string(ride.Status),
		PickupTime:     ride.PickupTime.Format(time.RFC3339),
	}
}

func cachedToRide(cached *redis.CachedRide) *domain.Ride {
	pickup, _ := time.Parse(time.RFC3339, cached.PickupTime)
	return &domain.Ride{
		ID:             cached.ID,
		OwnerID:        cached.OwnerID,
		Origin:         cached.Origin,
		Destination:    cached.Destination,
		TotalSeats:     cached.TotalSeats,
		AvailableSeats: cached.AvailableSeats,
		PricePerSeat:   cached.PricePerSeat,
		Status:         domain.RideStatus(cached.Status),
		PickupTime:     pickup,
	}
}
