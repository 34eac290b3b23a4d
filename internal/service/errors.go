package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidSeatCount is returned when the requested seat count is below one.
	ErrInvalidSeatCount = errors.New("seat count must be at least 1")

	// ErrInvalidRideDetails is returned when a published ride is missing
	// route, capacity or price information.
	ErrInvalidRideDetails = errors.New("invalid ride details")

	// ErrOwnRideBooking is returned when a driver tries to book their own ride.
	ErrOwnRideBooking = errors.New("cannot book own ride")

	// ErrRideNotOpen is returned when the ride is no longer accepting bookings.
	ErrRideNotOpen = errors.New("ride is not open for booking")

	// ErrNotEnoughSeats is returned when fewer seats are available than requested.
	ErrNotEnoughSeats = errors.New("not enough seats available")

	// ErrAlreadyBooked is returned when the passenger already holds an
	// active booking on the ride.
	ErrAlreadyBooked = errors.New("already booked on this ride")

	// ErrBookingAlreadyCancelled is returned when cancelling a booking twice.
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")

	// ErrNotBookingPassenger is returned when the requester does not own the booking.
	ErrNotBookingPassenger = errors.New("not the passenger of this booking")

	// ErrNotRideOwner is returned when the requester is not the ride's driver.
	ErrNotRideOwner = errors.New("not the owner of this ride")

	// ErrNotRideParticipant is returned when the requester is neither the
	// ride's driver nor an active passenger.
	ErrNotRideParticipant = errors.New("not a participant of this ride")

	// ErrInvalidTransition is returned for a ride status change the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid ride status transition")

	// ErrInvalidRideStatus is returned when the requested status is unknown.
	ErrInvalidRideStatus = errors.New("invalid ride status")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmptyMessage is returned when a message has no content.
	ErrEmptyMessage = errors.New("message content must not be empty")
)
