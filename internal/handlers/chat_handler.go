package handlers

import (
	"context"
	"net/http"

	"elearning-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	Service *service.ChatService
}

func NewChatHandler(s *service.ChatService) *ChatHandler {
	return &ChatHandler{Service: s}
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.Service.ListChats(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chats)
}

type createChatRequest struct {
	UserMessage string `json:"userMessage"`
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserMessage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User message is required."})
		return
	}

	chat, err := h.Service.CreateChat(context.Background(), req.UserMessage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save chat record due to a server error."})
		return
	}
	c.JSON(http.StatusCreated, chat)
}
