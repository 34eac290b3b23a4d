package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateBooking is returned when a passenger already holds an
	// active booking on the ride.
	ErrDuplicateBooking = errors.New("active booking already exists for this ride and passenger")

	// ErrSeatIntegrity is returned when a seat-count update would leave a
	// ride with a negative counter or more available seats than its total.
	// It indicates a prior invariant violation and is surfaced as an
	// internal error, never silently clamped.
	ErrSeatIntegrity = errors.New("seat counter integrity violation")

	// ErrDuplicateEmail is returned when registering with an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)
