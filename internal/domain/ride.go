package domain

import "time"

// RideStatus represents the current status of a published ride.
type RideStatus string

const (
	RideStatusAvailable RideStatus = "AVAILABLE"
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// Ride represents a driver-published trip offering a fixed number of seats
// at a fixed per-seat price.
type Ride struct {
	ID             string
	OwnerID        string // driver who published the ride
	Origin         string
	Destination    string
	TotalSeats     int
	AvailableSeats int // 0 <= AvailableSeats <= TotalSeats at all times
	PricePerSeat   float64
	Status         RideStatus
	PickupTime     time.Time
	CreatedAt      time.Time
	CancelledAt    time.Time
	CancelReason   string
}
