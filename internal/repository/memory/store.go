// Package memory provides an in-memory repository.Store. It backs the dev
// server mode and the service-level tests, including the concurrency
// property tests: transactions are serialized behind a single mutex, which
// gives the same effective isolation the Postgres store gets from row locks.
package memory

import (
	"context"
	"sync"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// Store is an in-memory implementation of repository.Store.
type Store struct {
	mu sync.Mutex
	d  *data
}

type data struct {
	rides    map[string]domain.Ride
	bookings map[string]domain.Booking
	users    map[string]domain.User
	messages []domain.Message
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{d: &data{
		rides:    make(map[string]domain.Ride),
		bookings: make(map[string]domain.Booking),
		users:    make(map[string]domain.User),
	}}
}

var _ repository.Store = (*Store)(nil)

func (d *data) clone() *data {
	c := &data{
		rides:    make(map[string]domain.Ride, len(d.rides)),
		bookings: make(map[string]domain.Booking, len(d.bookings)),
		users:    make(map[string]domain.User, len(d.users)),
		messages: make([]domain.Message, len(d.messages)),
	}
	for k, v := range d.rides {
		c.rides[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	copy(c.messages, d.messages)
	return c
}

// Rides returns a ride repository that locks the store per call.
func (s *Store) Rides() repository.RideRepository { return &rideRepo{s: s} }

// Bookings returns a booking repository that locks the store per call.
func (s *Store) Bookings() repository.BookingRepository { return &bookingRepo{s: s} }

// Users returns a user repository that locks the store per call.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Messages returns a message repository that locks the store per call.
func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s: s} }

// ExecTx holds the store lock for the duration of fn. On error the data is
// restored from a snapshot, so partial writes never become visible.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	repos := repository.Repositories{
		Rides:    &rideRepo{s: s, inTx: true},
		Bookings: &bookingRepo{s: s, inTx: true},
		Users:    &userRepo{s: s, inTx: true},
		Messages: &messageRepo{s: s, inTx: true},
	}

	if err := fn(repos); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// lock takes the store lock unless the caller already runs inside ExecTx.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
