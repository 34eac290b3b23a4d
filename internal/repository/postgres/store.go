package postgres

import (
	"context"
	"database/sql"

	"carpool/internal/repository"
)

// Store is a PostgreSQL implementation of repository.Store.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

// Rides returns a ride repository bound to the connection pool.
func (s *Store) Rides() repository.RideRepository { return NewRideRepository(s.db) }

// Bookings returns a booking repository bound to the connection pool.
func (s *Store) Bookings() repository.BookingRepository { return NewBookingRepository(s.db) }

// Users returns a user repository bound to the connection pool.
func (s *Store) Users() repository.UserRepository { return NewUserRepository(s.db) }

// Messages returns a message repository bound to the connection pool.
func (s *Store) Messages() repository.MessageRepository { return NewMessageRepository(s.db) }

// ExecTx runs fn inside a single database transaction. The repositories
// handed to fn are transaction-scoped; any error rolls everything back.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repositories{
		Rides:    NewRideRepositoryWithTx(tx),
		Bookings: NewBookingRepositoryWithTx(tx),
		Users:    NewUserRepositoryWithTx(tx),
		Messages: NewMessageRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
