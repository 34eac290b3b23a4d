package repository

import "context"

// Repositories bundles the repositories visible inside one transaction.
type Repositories struct {
	Rides    RideRepository
	Bookings BookingRepository
	Users    UserRepository
	Messages MessageRepository
}

// Store is the storage handle passed into the services. ExecTx runs fn
// within a single transaction: either every write made through the supplied
// repositories commits, or none do. The Postgres implementation backs it
// with BeginTx and transaction-scoped repositories; the in-memory
// implementation serializes transactions behind one mutex.
type Store interface {
	Rides() RideRepository
	Bookings() BookingRepository
	Users() UserRepository
	Messages() MessageRepository

	ExecTx(ctx context.Context, fn func(Repositories) error) error
}
