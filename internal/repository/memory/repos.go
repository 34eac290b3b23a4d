package memory

import (
	"context"
	"sort"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

type rideRepo struct {
	s    *Store
	inTx bool
}

func (r *rideRepo) Create(ctx context.Context, ride *domain.Ride) error {
	defer r.s.lock(r.inTx)()
	r.s.d.rides[ride.ID] = *ride
	return nil
}

func (r *rideRepo) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	defer r.s.lock(r.inTx)()
	return r.getLocked(id)
}

// GetByIDForUpdate is equivalent to GetByID here: ExecTx already holds the
// store lock exclusively.
func (r *rideRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	defer r.s.lock(r.inTx)()
	return r.getLocked(id)
}

func (r *rideRepo) getLocked(id string) (*domain.Ride, error) {
	ride, ok := r.s.d.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ride, nil
}

func (r *rideRepo) ListOpen(ctx context.Context) ([]*domain.Ride, error) {
	defer r.s.lock(r.inTx)()
	var rides []*domain.Ride
	for _, ride := range r.s.d.rides {
		if ride.Status == domain.RideStatusAvailable && ride.AvailableSeats > 0 {
			copied := ride
			rides = append(rides, &copied)
		}
	}
	sort.Slice(rides, func(i, j int) bool { return rides[i].PickupTime.Before(rides[j].PickupTime) })
	return rides, nil
}

func (r *rideRepo) Update(ctx context.Context, ride *domain.Ride) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.d.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.d.rides[ride.ID] = *ride
	return nil
}

func (r *rideRepo) ReserveSeats(ctx context.Context, id string, seats int) error {
	defer r.s.lock(r.inTx)()
	ride, ok := r.s.d.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.AvailableSeats < seats {
		return repository.ErrSeatIntegrity
	}
	ride.AvailableSeats -= seats
	r.s.d.rides[id] = ride
	return nil
}

func (r *rideRepo) ReleaseSeats(ctx context.Context, id string, seats int) error {
	defer r.s.lock(r.inTx)()
	ride, ok := r.s.d.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.AvailableSeats+seats > ride.TotalSeats {
		return repository.ErrSeatIntegrity
	}
	ride.AvailableSeats += seats
	r.s.d.rides[id] = ride
	return nil
}

type bookingRepo struct {
	s    *Store
	inTx bool
}

func (r *bookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	defer r.s.lock(r.inTx)()
	for _, b := range r.s.d.bookings {
		if b.RideID == booking.RideID && b.PassengerID == booking.PassengerID && b.Status.Active() {
			return repository.ErrDuplicateBooking
		}
	}
	r.s.d.bookings[booking.ID] = *booking
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	defer r.s.lock(r.inTx)()
	booking, ok := r.s.d.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &booking, nil
}

func (r *bookingRepo) GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	defer r.s.lock(r.inTx)()
	for _, b := range r.s.d.bookings {
		if b.RideID == rideID && b.PassengerID == passengerID && b.Status.Active() {
			copied := b
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *bookingRepo) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	defer r.s.lock(r.inTx)()
	var bookings []*domain.Booking
	for _, b := range r.s.d.bookings {
		if b.PassengerID == passengerID {
			copied := b
			bookings = append(bookings, &copied)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return bookings, nil
}

func (r *bookingRepo) ListConfirmedByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	defer r.s.lock(r.inTx)()
	return r.confirmedByRideLocked(rideID), nil
}

func (r *bookingRepo) confirmedByRideLocked(rideID string) []*domain.Booking {
	var bookings []*domain.Booking
	for _, b := range r.s.d.bookings {
		if b.RideID == rideID && b.Status == domain.BookingStatusConfirmed {
			copied := b
			bookings = append(bookings, &copied)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings
}

func (r *bookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.d.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.d.bookings[booking.ID] = *booking
	return nil
}

func (r *bookingRepo) CancelConfirmedByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	defer r.s.lock(r.inTx)()
	affected := r.confirmedByRideLocked(rideID)
	now := time.Now()
	for _, b := range affected {
		b.Status = domain.BookingStatusCancelled
		b.CancelledAt = now
		r.s.d.bookings[b.ID] = *b
	}
	return affected, nil
}

func (r *bookingRepo) CompleteConfirmedByRide(ctx context.Context, rideID string) error {
	defer r.s.lock(r.inTx)()
	for _, b := range r.confirmedByRideLocked(rideID) {
		b.Status = domain.BookingStatusCompleted
		r.s.d.bookings[b.ID] = *b
	}
	return nil
}

type userRepo struct {
	s    *Store
	inTx bool
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	defer r.s.lock(r.inTx)()
	for _, u := range r.s.d.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.s.lock(r.inTx)()
	user, ok := r.s.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock(r.inTx)()
	for _, u := range r.s.d.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type messageRepo struct {
	s    *Store
	inTx bool
}

func (r *messageRepo) Create(ctx context.Context, msg *domain.Message) error {
	defer r.s.lock(r.inTx)()
	r.s.d.messages = append(r.s.d.messages, *msg)
	return nil
}

func (r *messageRepo) ListByRide(ctx context.Context, rideID string) ([]*domain.Message, error) {
	defer r.s.lock(r.inTx)()
	var msgs []*domain.Message
	for i := range r.s.d.messages {
		if r.s.d.messages[i].RideID == rideID {
			copied := r.s.d.messages[i]
			msgs = append(msgs, &copied)
		}
	}
	return msgs, nil
}
