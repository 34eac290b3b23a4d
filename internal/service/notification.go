package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/queue"
	"carpool/internal/repository"
)

// EventPublisher publishes domain events to the message broker.
// Satisfied by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// NotificationService records system notifications as ride-scoped messages
// and publishes the matching events to the broker. Every method is
// best-effort: failures are logged by the caller and never roll back the
// domain operation that triggered them.
type NotificationService struct {
	messages  repository.MessageRepository
	publisher EventPublisher
}

// NewNotificationService creates a new NotificationService. publisher may
// be nil when no broker is configured.
func NewNotificationService(messages repository.MessageRepository, publisher EventPublisher) *NotificationService {
	return &NotificationService{
		messages:  messages,
		publisher: publisher,
	}
}

// SeatsBooked notifies the ride owner that seats were booked.
func (s *NotificationService) SeatsBooked(ctx context.Context, ride *domain.Ride, booking *domain.Booking) error {
	text := fmt.Sprintf("%d seat(s) booked on your ride %s -> %s for %.2f",
		booking.SeatsBooked, ride.Origin, ride.Destination, booking.TotalPrice)

	err := s.record(ctx, ride.ID, booking.PassengerID, ride.OwnerID, text)

	s.publish(ctx, queue.RoutingKeyBookingConfirmed, bookingEvent(ride, booking))
	return err
}

// BookingCancelled notifies the ride owner that a passenger cancelled.
func (s *NotificationService) BookingCancelled(ctx context.Context, ride *domain.Ride, booking *domain.Booking) error {
	text := fmt.Sprintf("Booking of %d seat(s) on your ride %s -> %s was cancelled",
		booking.SeatsBooked, ride.Origin, ride.Destination)

	err := s.record(ctx, ride.ID, booking.PassengerID, ride.OwnerID, text)

	s.publish(ctx, queue.RoutingKeyBookingCancelled, bookingEvent(ride, booking))
	return err
}

// RideCancelled notifies one affected passenger that the driver cancelled
// the ride. The message carries route, schedule, seats held and the refund
// amount fixed at booking time.
func (s *NotificationService) RideCancelled(ctx context.Context, ride *domain.Ride, booking *domain.Booking, reason string) error {
	text := fmt.Sprintf("Ride %s -> %s on %s was cancelled by the driver. Your %d seat(s) are released; refund: %.2f",
		ride.Origin, ride.Destination, ride.PickupTime.Format(time.RFC3339), booking.SeatsBooked, booking.TotalPrice)
	if reason != "" {
		text += ". Reason: " + reason
	}

	err := s.record(ctx, ride.ID, ride.OwnerID, booking.PassengerID, text)

	s.publish(ctx, queue.RoutingKeyRideCancelled, queue.RideCancelledEvent{
		RideID:       ride.ID,
		BookingID:    booking.ID,
		PassengerID:  booking.PassengerID,
		Origin:       ride.Origin,
		Destination:  ride.Destination,
		PickupTime:   ride.PickupTime.Format(time.RFC3339),
		SeatsHeld:    booking.SeatsBooked,
		RefundAmount: booking.TotalPrice,
		Reason:       reason,
		OccurredAt:   time.Now().Format(time.RFC3339),
	})
	return err
}

// record stores the notification as a SYSTEM message.
func (s *NotificationService) record(ctx context.Context, rideID, senderID, receiverID, text string) error {
	if s.messages == nil {
		return nil
	}
	return s.messages.Create(ctx, &domain.Message{
		ID:         uuid.New().String(),
		RideID:     rideID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Kind:       domain.MessageKindSystem,
		Content:    text,
		CreatedAt:  time.Now(),
	})
}

// publish sends the event to the broker, logging failures.
func (s *NotificationService) publish(ctx context.Context, routingKey string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("publish %s failed: %v", routingKey, err)
	}
}

func bookingEvent(ride *domain.Ride, booking *domain.Booking) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:   booking.ID,
		RideID:      ride.ID,
		OwnerID:     ride.OwnerID,
		PassengerID: booking.PassengerID,
		Origin:      ride.Origin,
		Destination: ride.Destination,
		PickupTime:  ride.PickupTime.Format(time.RFC3339),
		SeatsBooked: booking.SeatsBooked,
		TotalPrice:  booking.TotalPrice,
		OccurredAt:  time.Now().Format(time.RFC3339),
	}
}
