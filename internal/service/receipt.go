package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"carpool/internal/repository"
)

// ReceiptService renders PDF receipts for bookings.
type ReceiptService struct {
	store repository.Store
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(store repository.Store) *ReceiptService {
	return &ReceiptService{store: store}
}

// Generate renders the receipt for a booking. Only the booking's passenger
// or the ride's driver may request it.
func (s *ReceiptService) Generate(ctx context.Context, bookingID, requesterID string) ([]byte, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := s.store.Rides().GetByID(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}

	if requesterID != booking.PassengerID && requesterID != ride.OwnerID {
		return nil, ErrNotBookingPassenger
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Booking Receipt")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking: %s", booking.ID),
		fmt.Sprintf("Route: %s -> %s", ride.Origin, ride.Destination),
		fmt.Sprintf("Pickup: %s", ride.PickupTime.Format(time.RFC1123)),
		fmt.Sprintf("Seats: %d", booking.SeatsBooked),
		fmt.Sprintf("Price per seat: %.2f", booking.TotalPrice/float64(booking.SeatsBooked)),
		fmt.Sprintf("Total: %.2f", booking.TotalPrice),
		fmt.Sprintf("Status: %s", booking.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", time.Now().Format(time.RFC1123)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
