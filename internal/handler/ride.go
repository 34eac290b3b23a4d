package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// PublishRideRequest is the HTTP request body for publishing a ride.
type PublishRideRequest struct {
	Origin       string    `json:"origin" binding:"required"`
	Destination  string    `json:"destination" binding:"required"`
	TotalSeats   int       `json:"total_seats" binding:"required,min=1"`
	PricePerSeat float64   `json:"price_per_seat" binding:"min=0"`
	PickupTime   time.Time `json:"pickup_time" binding:"required"`
}

// UpdateRideStatusRequest is the HTTP request body for a status transition.
type UpdateRideStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PricePerSeat   float64   `json:"price_per_seat"`
	Status         string    `json:"status"`
	PickupTime     time.Time `json:"pickup_time"`
	CancelReason   string    `json:"cancel_reason,omitempty"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:             ride.ID,
		OwnerID:        ride.OwnerID,
		Origin:         ride.Origin,
		Destination:    ride.Destination,
		TotalSeats:     ride.TotalSeats,
		AvailableSeats: ride.AvailableSeats,
		PricePerSeat:   ride.PricePerSeat,
		Status:         string(ride.Status),
		PickupTime:     ride.PickupTime,
		CancelReason:   ride.CancelReason,
	}
}

// Publish handles POST /v1/rides
func (h *RideHandler) Publish(c *gin.Context) {
	var req PublishRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.PublishRide(c.Request.Context(), service.PublishRideRequest{
		OwnerID:      middleware.UserID(c),
		Origin:       req.Origin,
		Destination:  req.Destination,
		TotalSeats:   req.TotalSeats,
		PricePerSeat: req.PricePerSeat,
		PickupTime:   req.PickupTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// Get handles GET /v1/rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListOpen handles GET /v1/rides
func (h *RideHandler) ListOpen(c *gin.Context) {
	rides, err := h.rideService.ListOpenRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		out = append(out, toRideResponse(ride))
	}
	respondJSON(c, http.StatusOK, gin.H{"rides": out})
}

// UpdateStatus handles PUT /v1/rides/:id/status
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	var req UpdateRideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.UpdateRideStatus(c.Request.Context(), service.UpdateRideStatusRequest{
		RideID:      c.Param("id"),
		RequesterID: middleware.UserID(c),
		Status:      req.Status,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
