package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Active reports whether the booking still holds seats on its ride.
// PENDING is a transient state; bookings are inserted CONFIRMED.
func (s BookingStatus) Active() bool {
	return s != BookingStatusCancelled
}

// Booking represents a passenger's reservation of seats on a ride.
// TotalPrice is fixed at creation time and never recomputed, even if the
// ride's per-seat price changes later.
type Booking struct {
	ID          string
	RideID      string
	PassengerID string
	SeatsBooked int
	TotalPrice  float64
	Status      BookingStatus
	CreatedAt   time.Time
	CancelledAt time.Time
}
