// Package queue defines the domain events published to the message broker
// and the publisher that delivers them. Events are emitted after the
// triggering transaction commits and contain enough information for
// downstream consumers (push, email, analytics) to act without querying
// the primary database.
package queue

// Routing keys for published events.
const (
	RoutingKeyBookingConfirmed = "booking.confirmed"
	RoutingKeyBookingCancelled = "booking.cancelled"
	RoutingKeyRideCancelled    = "ride.cancelled"
)

// BookingEvent is published when a booking is confirmed or cancelled.
type BookingEvent struct {
	BookingID   string  `json:"booking_id"`
	RideID      string  `json:"ride_id"`
	OwnerID     string  `json:"owner_id"`
	PassengerID string  `json:"passenger_id"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	PickupTime  string  `json:"pickup_time"`
	SeatsBooked int     `json:"seats_booked"`
	TotalPrice  float64 `json:"total_price"`
	OccurredAt  string  `json:"occurred_at"`
}

// RideCancelledEvent is published once per affected passenger when a driver
// cancels a ride. RefundAmount is the booking's total price as fixed at
// reservation time.
type RideCancelledEvent struct {
	RideID       string  `json:"ride_id"`
	BookingID    string  `json:"booking_id"`
	PassengerID  string  `json:"passenger_id"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	PickupTime   string  `json:"pickup_time"`
	SeatsHeld    int     `json:"seats_held"`
	RefundAmount float64 `json:"refund_amount"`
	Reason       string  `json:"reason,omitempty"`
	OccurredAt   string  `json:"occurred_at"`
}
