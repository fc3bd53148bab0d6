package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) CreateChat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	chat, err := ch.chatService.CreateChat(c.Request.Context(), userID, taskID, req.Name)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, chat)
}

func (ch *ChatHandler) ListChats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	chats, err := ch.chatService.ListChats(c.Request.Context(), userID, taskID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"chats": chats})
}

func (ch *ChatHandler) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := ch.chatService.JoinChat(c.Request.Context(), userID, chatID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"joined": true})
}

func (ch *ChatHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := ch.chatService.LeaveChat(c.Request.Context(), userID, chatID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"left": true})
}

func (ch *ChatHandler) ListParticipants(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	participants, err := ch.chatService.ListParticipants(c.Request.Context(), userID, chatID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"participants": participants})
}

func (ch *ChatHandler) PostMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	message, err := ch.chatService.PostMessage(c.Request.Context(), userID, chatID, req.Content)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, message)
}

func (ch *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	messages, err := ch.chatService.ListMessages(c.Request.Context(), userID, chatID, limit)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": messages})
}

// AskAssistant lets a participant pull the AI into the group conversation.
func (ch *ChatHandler) AskAssistant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	message, err := ch.chatService.AskAssistant(c.Request.Context(), userID, chatID, req.Question)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, message)
}
