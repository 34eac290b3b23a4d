package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/repository/memory"
	"carpool/internal/service"
)

func newLedger(store repository.Store) *service.BookingLedger {
	return service.NewBookingLedger(store, nil, nil, nil)
}

func seedUser(t *testing.T, store repository.Store, id string) {
	t.Helper()
	err := store.Users().Create(context.Background(), &domain.User{
		ID:        id,
		Username:  id,
		Email:     id + "@example.com",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

func seedRide(t *testing.T, store repository.Store, ownerID string, seats int, price float64) *domain.Ride {
	t.Helper()
	ride := &domain.Ride{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Origin:         "Midtown",
		Destination:    "Airport",
		TotalSeats:     seats,
		AvailableSeats: seats,
		PricePerSeat:   price,
		Status:         domain.RideStatusAvailable,
		PickupTime:     time.Now().Add(24 * time.Hour),
		CreatedAt:      time.Now(),
	}
	if err := store.Rides().Create(context.Background(), ride); err != nil {
		t.Fatalf("failed to seed ride: %v", err)
	}
	return ride
}

func mustGetRide(t *testing.T, store repository.Store, id string) *domain.Ride {
	t.Helper()
	ride, err := store.Rides().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get ride %s: %v", id, err)
	}
	return ride
}

func TestCreateBooking_Success(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID:      ride.ID,
		PassengerID: "alice",
		Seats:       2,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", booking.Status)
	}
	if booking.TotalPrice != 200 {
		t.Errorf("expected total price 200, got %.2f", booking.TotalPrice)
	}

	updated := mustGetRide(t, store, ride.ID)
	if updated.AvailableSeats != 2 {
		t.Errorf("expected 2 available seats, got %d", updated.AvailableSeats)
	}
}

func TestCreateBooking_RideNotFound(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(memory.NewStore())

	_, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID:      "no-such-ride",
		PassengerID: "alice",
		Seats:       1,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateBooking_OwnRide(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	_, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID:      ride.ID,
		PassengerID: "driver",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrOwnRideBooking) {
		t.Errorf("expected ErrOwnRideBooking, got %v", err)
	}
}

// The driver booking their own cancelled ride must fail on the ownership
// check, not the status check: preconditions are evaluated in a fixed
// order and the first failure wins.
func TestCreateBooking_PreconditionOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	if _, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID:      ride.ID,
		RequesterID: "driver",
	}); err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	_, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID:      ride.ID,
		PassengerID: "driver",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrOwnRideBooking) {
		t.Errorf("expected ErrOwnRideBooking, got %v", err)
	}

	// A passenger asking for too many seats on a closed ride fails on the
	// status check before the seat check.
	_, err = ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID:      ride.ID,
		PassengerID: "alice",
		Seats:       99,
	})
	if !errors.Is(err, service.ErrRideNotOpen) {
		t.Errorf("expected ErrRideNotOpen, got %v", err)
	}
}

func TestCreateBooking_NotEnoughSeats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 2, 50)

	_, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID:      ride.ID,
		PassengerID: "alice",
		Seats:       3,
	})
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Errorf("expected ErrNotEnoughSeats, got %v", err)
	}

	// The failed attempt must not touch the counter.
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 2 {
		t.Errorf("expected 2 available seats, got %d", got)
	}
}

// Booking exactly the remaining seats is allowed and drives the counter
// to zero; the next booking fails.
func TestCreateBooking_ExactRemainingSeats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 3, 75)

	if _, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 3,
	}); err != nil {
		t.Fatalf("failed to book exact remaining seats: %v", err)
	}

	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 0 {
		t.Errorf("expected 0 available seats, got %d", got)
	}

	_, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "bob", Seats: 1,
	})
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Errorf("expected ErrNotEnoughSeats, got %v", err)
	}
}

func TestCreateBooking_DuplicateActive(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	if _, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 1,
	}); err != nil {
		t.Fatalf("failed to create first booking: %v", err)
	}

	_, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 1,
	})
	if !errors.Is(err, service.ErrAlreadyBooked) {
		t.Errorf("expected ErrAlreadyBooked, got %v", err)
	}
}

// After cancelling, the passenger may book the same ride again.
func TestCreateBooking_RebookAfterCancel(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	first, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 2,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	if _, err := ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: first.ID, RequesterID: "alice",
	}); err != nil {
		t.Fatalf("failed to cancel booking: %v", err)
	}

	if _, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 1,
	}); err != nil {
		t.Fatalf("expected rebooking after cancel to succeed, got %v", err)
	}
}

// Total price is fixed when the booking is created: a later price change on
// the ride must not leak into the existing booking.
func TestCreateBooking_PriceFixedAtCreation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 2,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	updated := mustGetRide(t, store, ride.ID)
	updated.PricePerSeat = 250
	if err := store.Rides().Update(ctx, updated); err != nil {
		t.Fatalf("failed to update ride: %v", err)
	}

	got, err := ledger.GetBooking(ctx, booking.ID, "alice")
	if err != nil {
		t.Fatalf("failed to get booking: %v", err)
	}
	if got.TotalPrice != 200 {
		t.Errorf("expected total price 200, got %.2f", got.TotalPrice)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(memory.NewStore())

	cases := []struct {
		name string
		req  service.CreateBookingRequest
		want error
	}{
		{"missing ride", service.CreateBookingRequest{PassengerID: "a", Seats: 1}, service.ErrInvalidRideID},
		{"missing passenger", service.CreateBookingRequest{RideID: "r", Seats: 1}, service.ErrInvalidUserID},
		{"zero seats", service.CreateBookingRequest{RideID: "r", PassengerID: "a"}, service.ErrInvalidSeatCount},
		{"negative seats", service.CreateBookingRequest{RideID: "r", PassengerID: "a", Seats: -1}, service.ErrInvalidSeatCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.CreateBooking(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCancelBooking_RestoresSeats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 3,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	cancelled, err := ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: booking.ID, RequesterID: "alice",
	})
	if err != nil {
		t.Fatalf("failed to cancel booking: %v", err)
	}

	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt.IsZero() {
		t.Error("expected cancelled_at to be set")
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 4 {
		t.Errorf("expected all 4 seats restored, got %d", got)
	}
}

func TestCancelBooking_NotPassenger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 1,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	// Not even the driver may cancel a passenger's booking directly.
	for _, requester := range []string{"mallory", "driver"} {
		_, err := ledger.CancelBooking(ctx, service.CancelBookingRequest{
			BookingID: booking.ID, RequesterID: requester,
		})
		if !errors.Is(err, service.ErrNotBookingPassenger) {
			t.Errorf("requester %s: expected ErrNotBookingPassenger, got %v", requester, err)
		}
	}
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 2,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	if _, err := ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: booking.ID, RequesterID: "alice",
	}); err != nil {
		t.Fatalf("failed to cancel booking: %v", err)
	}

	_, err = ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: booking.ID, RequesterID: "alice",
	})
	if !errors.Is(err, service.ErrBookingAlreadyCancelled) {
		t.Errorf("expected ErrBookingAlreadyCancelled, got %v", err)
	}

	// The second attempt must not release seats again.
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 4 {
		t.Errorf("expected 4 available seats, got %d", got)
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(memory.NewStore())

	_, err := ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: "no-such-booking", RequesterID: "alice",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelRide_Cascade(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	aliceBooking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 2,
	})
	if err != nil {
		t.Fatalf("failed to create alice's booking: %v", err)
	}
	bobBooking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "bob", Seats: 1,
	})
	if err != nil {
		t.Fatalf("failed to create bob's booking: %v", err)
	}

	cancelled, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID: ride.ID, RequesterID: "driver", Reason: "car broke down",
	})
	if err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	if cancelled.Status != domain.RideStatusCancelled {
		t.Errorf("expected CANCELLED ride, got %s", cancelled.Status)
	}
	if cancelled.CancelReason != "car broke down" {
		t.Errorf("expected cancel reason to be kept, got %q", cancelled.CancelReason)
	}

	// Every confirmed booking is cancelled; the seat counter is left
	// alone because the closed ride no longer sells seats.
	for _, id := range []string{aliceBooking.ID, bobBooking.ID} {
		b, err := store.Bookings().GetByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get booking %s: %v", id, err)
		}
		if b.Status != domain.BookingStatusCancelled {
			t.Errorf("booking %s: expected CANCELLED, got %s", id, b.Status)
		}
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 1 {
		t.Errorf("expected seat counter untouched at 1, got %d", got)
	}

	remaining, err := store.Bookings().ListConfirmedByRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("failed to list confirmed bookings: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected no confirmed bookings after cascade, got %d", len(remaining))
	}
}

func TestCancelRide_NotOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	_, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID: ride.ID, RequesterID: "mallory",
	})
	if !errors.Is(err, service.ErrNotRideOwner) {
		t.Errorf("expected ErrNotRideOwner, got %v", err)
	}
}

func TestCancelRide_AlreadyTerminal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	if _, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID: ride.ID, RequesterID: "driver",
	}); err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	_, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID: ride.ID, RequesterID: "driver",
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

// A booking swept up by the ride cascade cannot be cancelled again by the
// passenger, and no seats move.
func TestCancelBooking_AfterRideCascade(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 2,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	if _, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID: ride.ID, RequesterID: "driver",
	}); err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	_, err = ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: booking.ID, RequesterID: "alice",
	})
	if !errors.Is(err, service.ErrBookingAlreadyCancelled) {
		t.Errorf("expected ErrBookingAlreadyCancelled, got %v", err)
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 2 {
		t.Errorf("expected seat counter untouched at 2, got %d", got)
	}
}

func TestCancelRide_NotifiesEachPassenger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := &capturePublisher{}
	notifications := service.NewNotificationService(store.Messages(), publisher)
	ledger := service.NewBookingLedger(store, nil, nil, notifications)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 6, 80)

	passengers := []string{"alice", "bob", "carol"}
	for _, p := range passengers {
		if _, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
			RideID: ride.ID, PassengerID: p, Seats: 1,
		}); err != nil {
			t.Fatalf("failed to book for %s: %v", p, err)
		}
	}

	publisher.reset()

	if _, err := ledger.CancelRide(ctx, service.CancelRideRequest{
		RideID: ride.ID, RequesterID: "driver", Reason: "weather",
	}); err != nil {
		t.Fatalf("failed to cancel ride: %v", err)
	}

	events := publisher.events()
	if len(events) != len(passengers) {
		t.Fatalf("expected %d ride.cancelled events, got %d", len(passengers), len(events))
	}
	for _, e := range events {
		if e.routingKey != "ride.cancelled" {
			t.Errorf("expected routing key ride.cancelled, got %s", e.routingKey)
		}
	}

	// One SYSTEM message per passenger recorded on the ride.
	messages, err := store.Messages().ListByRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	seen := make(map[string]bool)
	for _, m := range messages {
		if m.Kind == domain.MessageKindSystem && m.SenderID == "driver" {
			seen[m.ReceiverID] = true
		}
	}
	for _, p := range passengers {
		if !seen[p] {
			t.Errorf("expected a cancellation message for %s", p)
		}
	}
}

func TestGetBooking_Visibility(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	booking, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 1,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	for _, requester := range []string{"alice", "driver"} {
		if _, err := ledger.GetBooking(ctx, booking.ID, requester); err != nil {
			t.Errorf("requester %s: expected access, got %v", requester, err)
		}
	}

	if _, err := ledger.GetBooking(ctx, booking.ID, "mallory"); !errors.Is(err, service.ErrNotBookingPassenger) {
		t.Errorf("expected ErrNotBookingPassenger, got %v", err)
	}
}

// Walks the canonical seat lifecycle: bookings drain the counter, a
// cancellation refills it, and a previously rejected passenger gets in.
func TestSeatLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 4, 100)

	a, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "alice", Seats: 2,
	})
	if err != nil {
		t.Fatalf("alice's booking failed: %v", err)
	}
	if a.TotalPrice != 200 {
		t.Errorf("expected alice to pay 200, got %.2f", a.TotalPrice)
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 2 {
		t.Fatalf("expected 2 seats after alice, got %d", got)
	}

	if _, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "bob", Seats: 2,
	}); err != nil {
		t.Fatalf("bob's booking failed: %v", err)
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 0 {
		t.Fatalf("expected 0 seats after bob, got %d", got)
	}

	if _, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "carol", Seats: 1,
	}); !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Fatalf("expected carol to be rejected, got %v", err)
	}

	if _, err := ledger.CancelBooking(ctx, service.CancelBookingRequest{
		BookingID: a.ID, RequesterID: "alice",
	}); err != nil {
		t.Fatalf("alice's cancellation failed: %v", err)
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 2 {
		t.Fatalf("expected 2 seats after alice cancelled, got %d", got)
	}

	c, err := ledger.CreateBooking(ctx, service.CreateBookingRequest{
		RideID: ride.ID, PassengerID: "carol", Seats: 1,
	})
	if err != nil {
		t.Fatalf("carol's retry failed: %v", err)
	}
	if c.TotalPrice != 100 {
		t.Errorf("expected carol to pay 100, got %.2f", c.TotalPrice)
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 1 {
		t.Errorf("expected 1 seat left, got %d", got)
	}
}

// With more single-seat requests than seats, exactly seat-count bookings
// succeed and the counter never goes negative.
func TestConcurrentBookings_NoOversell(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	const seats = 5
	const passengers = 20

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", seats, 100)

	var wg sync.WaitGroup
	errs := make([]error, passengers)

	for i := 0; i < passengers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.CreateBooking(ctx, service.CreateBookingRequest{
				RideID:      ride.ID,
				PassengerID: uuid.New().String(),
				Seats:       1,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrNotEnoughSeats):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != seats {
		t.Errorf("expected %d successful bookings, got %d", seats, succeeded)
	}
	if rejected != passengers-seats {
		t.Errorf("expected %d rejections, got %d", passengers-seats, rejected)
	}
	if got := mustGetRide(t, store, ride.ID).AvailableSeats; got != 0 {
		t.Errorf("expected 0 available seats, got %d", got)
	}

	confirmed, err := store.Bookings().ListConfirmedByRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("failed to list confirmed bookings: %v", err)
	}
	if len(confirmed) != seats {
		t.Errorf("expected %d confirmed bookings, got %d", seats, len(confirmed))
	}
}

// Concurrent booking attempts against a cancelling ride either land before
// the cascade (and get swept) or fail; no confirmed booking survives.
func TestConcurrentCancelRideAndBookings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := newLedger(store)

	seedUser(t, store, "driver")
	ride := seedRide(t, store, "driver", 10, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ledger.CreateBooking(ctx, service.CreateBookingRequest{
				RideID:      ride.ID,
				PassengerID: uuid.New().String(),
				Seats:       1,
			})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = ledger.CancelRide(ctx, service.CancelRideRequest{
			RideID: ride.ID, RequesterID: "driver",
		})
	}()
	wg.Wait()

	confirmed, err := store.Bookings().ListConfirmedByRide(ctx, ride.ID)
	if err != nil {
		t.Fatalf("failed to list confirmed bookings: %v", err)
	}
	if len(confirmed) != 0 {
		t.Errorf("expected no confirmed bookings to survive the cascade, got %d", len(confirmed))
	}
	if got := mustGetRide(t, store, ride.ID).Status; got != domain.RideStatusCancelled {
		t.Errorf("expected CANCELLED ride, got %s", got)
	}
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu       sync.Mutex
	captured []capturedEvent
}

type capturedEvent struct {
	routingKey string
	event      any
}

func (p *capturePublisher) Publish(ctx context.Context, routingKey string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captured = append(p.captured, capturedEvent{routingKey: routingKey, event: event})
	return nil
}

func (p *capturePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captured = nil
}

func (p *capturePublisher) events() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]capturedEvent, len(p.captured))
	copy(out, p.captured)
	return out
}
