package repository

import (
	"context"

	"carpool/internal/domain"
)

// MessageRepository defines the persistence operations for ride-scoped
// messages and system notifications.
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByRide retrieves all messages on a ride, oldest first.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Message, error)
}
