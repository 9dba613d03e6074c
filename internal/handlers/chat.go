package handlers

import (
	"net/http"

	"github.com/chandankhang/CompTrack/internal/services"
	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the keyword-matched chat responder.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Chat answers a single message. The endpoint is public and the reply shape
// mirrors the request shape even on validation failure. A missing message is
// rejected; a whitespace-only one falls through to the matcher's fallback.
func (h *ChatHandler) Chat(c *gin.Context) {
	type ChatRequest struct {
		Message string `json:"message"`
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"reply": "Please provide a valid message."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": h.chatService.Reply(req.Message)})
}
