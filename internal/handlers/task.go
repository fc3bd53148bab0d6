package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/services"
)

type TaskHandler struct {
	taskService services.TaskService
	aiService   services.AIService
}

func NewTaskHandler(taskService services.TaskService, aiService services.AIService) *TaskHandler {
	return &TaskHandler{taskService: taskService, aiService: aiService}
}

func (th *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		Urgent       bool       `json:"urgent"`
		Deadline     *time.Time `json:"deadline"`
		SupervisorID *uuid.UUID `json:"supervisor_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	task, err := th.taskService.Create(c.Request.Context(), userID, services.TaskCreate{
		Title:        req.Title,
		Description:  req.Description,
		Urgent:       req.Urgent,
		Deadline:     req.Deadline,
		SupervisorID: req.SupervisorID,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, task)
}

func (th *TaskHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tasks, err := th.taskService.List(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"tasks": tasks})
}

func (th *TaskHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	task, err := th.taskService.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, task)
}

func (th *TaskHandler) Update(c *gin.Context) {
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
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Urgent      *bool      `json:"urgent"`
		Deadline    *time.Time `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	task, err := th.taskService.Update(c.Request.Context(), userID, taskID, services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Urgent:      req.Urgent,
		Deadline:    req.Deadline,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, task)
}

func (th *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if err := th.taskService.Delete(c.Request.Context(), userID, taskID); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// SuggestNextSteps asks the AI provider for follow-ups on one task.
func (th *TaskHandler) SuggestNextSteps(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	task, err := th.taskService.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	result, err := th.aiService.SuggestNextSteps(c.Request.Context(), task)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"suggestions": result.Response, "model": result.Model, "provider": result.Provider})
}

// AskAboutTask answers a free-form question with the task as context.
func (th *TaskHandler) AskAboutTask(c *gin.Context) {
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
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Question == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, apierr.Validation("a question is required"))
		return
	}
	task, err := th.taskService.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	result, err := th.aiService.ChatWithTaskContext(c.Request.Context(), req.Question, task)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"answer": result.Response, "model": result.Model, "provider": result.Provider})
}
