package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/repository"
	"carpool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Business-rule failures are returned verbatim; storage failures are logged
// with context and masked as a generic internal error.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: internal error: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Malformed input - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrInvalidRideDetails),
		errors.Is(err, service.ErrInvalidRideStatus),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest

	// Authentication
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Forbidden: authenticated but not authorized for this entity
	case errors.Is(err, service.ErrNotRideOwner),
		errors.Is(err, service.ErrNotBookingPassenger),
		errors.Is(err, service.ErrNotRideParticipant):
		return http.StatusForbidden

	// Conflict: duplicate active booking
	case errors.Is(err, service.ErrAlreadyBooked),
		errors.Is(err, repository.ErrDuplicateBooking),
		errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusConflict

	// Business-rule violations
	case errors.Is(err, service.ErrOwnRideBooking),
		errors.Is(err, service.ErrNotEnoughSeats),
		errors.Is(err, service.ErrRideNotOpen),
		errors.Is(err, service.ErrBookingAlreadyCancelled),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusUnprocessableEntity

	// Storage/transaction failure, including seat-integrity violations
	default:
		return http.StatusInternalServerError
	}
}
