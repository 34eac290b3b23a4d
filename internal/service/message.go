package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// MessageService handles ride-scoped messages between the driver and the
// ride's passengers.
type MessageService struct {
	store repository.Store
}

// NewMessageService creates a new MessageService.
func NewMessageService(store repository.Store) *MessageService {
	return &MessageService{store: store}
}

// PostMessageRequest contains the parameters for sending a message.
type PostMessageRequest struct {
	RideID     string
	SenderID   string
	ReceiverID string
	Content    string
}

// PostMessage sends a message on a ride. Both sender and receiver must be
// participants: the driver or a passenger holding an active booking.
func (s *MessageService) PostMessage(ctx context.Context, req PostMessageRequest) (*domain.Message, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.SenderID == "" || req.ReceiverID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Content == "" {
		return nil, ErrEmptyMessage
	}

	ride, err := s.store.Rides().GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	for _, userID := range []string{req.SenderID, req.ReceiverID} {
		ok, err := s.isParticipant(ctx, ride, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotRideParticipant
		}
	}

	msg := &domain.Message{
		ID:         uuid.New().String(),
		RideID:     ride.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Kind:       domain.MessageKindUser,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}

	if err := s.store.Messages().Create(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// ListMessages retrieves all messages on a ride for a participant.
func (s *MessageService) ListMessages(ctx context.Context, rideID, requesterID string) ([]*domain.Message, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.store.Rides().GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ok, err := s.isParticipant(ctx, ride, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotRideParticipant
	}

	return s.store.Messages().ListByRide(ctx, rideID)
}

func (s *MessageService) isParticipant(ctx context.Context, ride *domain.Ride, userID string) (bool, error) {
	if userID == ride.OwnerID {
		return true, nil
	}
	_, err := s.store.Bookings().GetActiveByRideAndPassenger(ctx, ride.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
