package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/service"
)

// MessageHandler ties the contact form and the inbox to MessageService.
type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// RegisterRoutes registers:
//
//	POST /api/messages  (createGuard runs first)
//	GET  /api/messages  (listGuard runs first)
func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup, createGuard, listGuard gin.HandlerFunc) {
	rg.POST("/messages", createGuard, h.CreateMessage)
	rg.GET("/messages", listGuard, h.GetMessages)
}

// CreateMessage handles POST /api/messages
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req service.MessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	msg, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to send message. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages handles GET /api/messages
func (h *MessageHandler) GetMessages(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}
