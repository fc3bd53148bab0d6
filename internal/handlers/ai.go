package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/services"
)

type AIHandler struct {
	aiService services.AIService
}

func NewAIHandler(aiService services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Chat is the memory-aware conversation endpoint: context is assembled from
// the user's history before the provider is called, and both turns are
// persisted under the returned session id.
func (ah *AIHandler) Chat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("a message is required"))
		return
	}

	result, sessionID, err := ah.aiService.ChatWithMemory(c.Request.Context(), userID, req.Message, req.SessionID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"message":    result.Response,
		"model":      result.Model,
		"provider":   result.Provider,
		"session_id": sessionID,
		"success":    true,
	})
}

// ChatStream streams raw completion chunks over SSE. No memory assembly or
// caching on this path.
func (ah *AIHandler) ChatStream(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
		Model   string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("a message is required"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	err := ah.aiService.StreamChat(c.Request.Context(), req.Message, req.Model, func(chunk string) error {
		if _, werr := fmt.Fprintf(c.Writer, "data: %s\n\n", chunk); werr != nil {
			return werr
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: %s\n\n", err.Error())
		c.Writer.Flush()
		return
	}
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

func (ah *AIHandler) ExecuteAgent(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	agentName := c.Param("agent_name")
	var req struct {
		Context string `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Context == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("context is required"))
		return
	}

	result, err := ah.aiService.ExecuteAgent(c.Request.Context(), agentName, req.Context)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"response": result.Response,
		"agent":    agentName,
		"model":    result.Model,
		"provider": result.Provider,
		"success":  true,
	})
}

func (ah *AIHandler) ListAgents(c *gin.Context) {
	RespondOK(c, gin.H{"agents": ah.aiService.AvailableAgents()})
}

func (ah *AIHandler) Summarize(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	result, err := ah.aiService.Summarize(c.Request.Context(), req.Content)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": result.Response, "model": result.Model, "provider": result.Provider})
}

func (ah *AIHandler) Analyze(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	result, err := ah.aiService.Analyze(c.Request.Context(), req.Content)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"analysis": result.Response, "model": result.Model, "provider": result.Provider})
}

func (ah *AIHandler) Status(c *gin.Context) {
	RespondOK(c, ah.aiService.Status(c.Request.Context()))
}

func (ah *AIHandler) Models(c *gin.Context) {
	RespondOK(c, gin.H{"models": ah.aiService.Models(c.Request.Context())})
}

func (ah *AIHandler) ClearCache(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	ah.aiService.ClearCache()
	RespondOK(c, gin.H{"cleared": true})
}
