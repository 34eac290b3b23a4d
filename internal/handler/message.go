package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

// MessageHandler handles HTTP requests for ride-scoped messages.
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// PostMessageRequest is the HTTP request body for sending a message.
type PostMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// MessageResponse is the HTTP representation of a message.
type MessageResponse struct {
	ID         string    `json:"id"`
	RideID     string    `json:"ride_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:         msg.ID,
		RideID:     msg.RideID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Kind:       string(msg.Kind),
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
}

// Post handles POST /v1/rides/:id/messages
func (h *MessageHandler) Post(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.messageService.PostMessage(c.Request.Context(), service.PostMessageRequest{
		RideID:     c.Param("id"),
		SenderID:   middleware.UserID(c),
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toMessageResponse(msg))
}

// List handles GET /v1/rides/:id/messages
func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.messageService.ListMessages(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toMessageResponse(msg))
	}
	respondJSON(c, http.StatusOK, gin.H{"messages": out})
}
