package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	ledger         *service.BookingLedger
	receiptService *service.ReceiptService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(ledger *service.BookingLedger, receiptService *service.ReceiptService) *BookingHandler {
	return &BookingHandler{ledger: ledger, receiptService: receiptService}
}

// CreateBookingRequest is the HTTP request body for booking seats.
type CreateBookingRequest struct {
	RideID string `json:"ride_id" binding:"required"`
	Seats  int    `json:"seats" binding:"required,min=1"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID          string     `json:"id"`
	RideID      string     `json:"ride_id"`
	PassengerID string     `json:"passenger_id"`
	SeatsBooked int        `json:"seats_booked"`
	TotalPrice  float64    `json:"total_price"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          booking.ID,
		RideID:      booking.RideID,
		PassengerID: booking.PassengerID,
		SeatsBooked: booking.SeatsBooked,
		TotalPrice:  booking.TotalPrice,
		Status:      string(booking.Status),
		CreatedAt:   booking.CreatedAt,
	}
	if !booking.CancelledAt.IsZero() {
		t := booking.CancelledAt
		resp.CancelledAt = &t
	}
	return resp
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.ledger.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		RideID:      req.RideID,
		PassengerID: middleware.UserID(c),
		Seats:       req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.ledger.GetBooking(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// List handles GET /v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.ledger.ListBookings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingResponse(booking))
	}
	respondJSON(c, http.StatusOK, gin.H{"bookings": out})
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, err := h.ledger.CancelBooking(c.Request.Context(), service.CancelBookingRequest{
		BookingID:   c.Param("id"),
		RequesterID: middleware.UserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// Receipt handles GET /v1/bookings/:id/receipt
func (h *BookingHandler) Receipt(c *gin.Context) {
	bookingID := c.Param("id")

	pdf, err := h.receiptService.Generate(c.Request.Context(), bookingID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", bookingID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
