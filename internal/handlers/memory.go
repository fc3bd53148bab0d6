package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/services"
	"github.com/alexhq/alex-backend/internal/types"
)

type MemoryHandler struct {
	memoryService services.MemoryService
}

func NewMemoryHandler(memoryService services.MemoryService) *MemoryHandler {
	return &MemoryHandler{memoryService: memoryService}
}

func (mh *MemoryHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	history, err := mh.memoryService.GetRecentConversations(c.Request.Context(), userID, limit, c.Query("session_id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": history, "count": len(history)})
}

func (mh *MemoryHandler) ClearSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID := c.Param("session_id")
	if sessionID == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("a session id is required"))
		return
	}
	if err := mh.memoryService.ClearSession(c.Request.Context(), userID, sessionID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"cleared": true, "session_id": sessionID})
}

// GetMemories returns one bucket when ?type= is given, otherwise every
// memory organized by type.
func (mh *MemoryHandler) GetMemories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	memoryType := c.Query("type")
	if memoryType != "" {
		memories, err := mh.memoryService.GetMemoriesByType(c.Request.Context(), userID, memoryType)
		if err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, gin.H{"memories": memories, "type": memoryType})
		return
	}
	organized, err := mh.memoryService.GetAllMemories(c.Request.Context(), userID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"memories": organized})
}

func (mh *MemoryHandler) SaveMemory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		MemoryType string   `json:"memory_type"`
		Key        string   `json:"key"`
		Value      string   `json:"value"`
		Confidence *float64 `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if !types.IsValidMemoryType(req.MemoryType) {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("unknown memory type"))
		return
	}
	if req.Key == "" || req.Value == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("key and value are required"))
		return
	}
	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	memory, err := mh.memoryService.SaveMemory(c.Request.Context(), userID, req.MemoryType, req.Key, req.Value, confidence)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, memory)
}

func (mh *MemoryHandler) DeleteMemory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	memoryID, err := uuid.Parse(c.Param("memory_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	deleted, err := mh.memoryService.DeleteMemory(c.Request.Context(), userID, memoryID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	if !deleted {
		RespondError(c, http.StatusNotFound, apierr.CodeNotFound, apierr.NotFound("memory not found"))
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (mh *MemoryHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("a query is required"))
		return
	}
	results, err := mh.memoryService.SearchMemories(c.Request.Context(), userID, req.Query, req.Limit)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"results": results, "count": len(results)})
}

func (mh *MemoryHandler) CreateSummary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		SummaryType string                 `json:"summary_type"`
		Title       string                 `json:"title"`
		Summary     string                 `json:"summary"`
		Metadata    map[string]interface{} `json:"metadata"`
		Date        *time.Time             `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SummaryType == "" || req.Summary == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("summary_type and summary are required"))
		return
	}
	date := time.Time{}
	if req.Date != nil {
		date = *req.Date
	}
	summary, err := mh.memoryService.CreateSummary(c.Request.Context(), userID, req.SummaryType, req.Title, req.Summary, req.Metadata, date)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, summary)
}

func (mh *MemoryHandler) GetSummaries(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		days, _ = strconv.Atoi(raw)
	}
	summaries, err := mh.memoryService.GetSummaries(c.Request.Context(), userID, c.Query("type"), days)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"summaries": summaries, "count": len(summaries)})
}

func (mh *MemoryHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := mh.memoryService.GetMemoryStats(c.Request.Context(), userID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, stats)
}

func (mh *MemoryHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	export, err := mh.memoryService.ExportAll(c.Request.Context(), userID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, export)
}

// ClearAll wipes conversations, memories, summaries and the active session
// for the calling user. There is no undo.
func (mh *MemoryHandler) ClearAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := mh.memoryService.ClearAll(c.Request.Context(), userID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"cleared": true})
}
