package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/providers"
	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/requestdata"
	"github.com/alexhq/alex-backend/internal/types"
)

const (
	summarizeMinChars = 10
	summarizeMaxChars = 50000

	agentTimeout     = 60 * time.Second
	summarizeTimeout = 45 * time.Second
)

type AIStatus struct {
	Available bool       `json:"available"`
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	Cache     CacheStats `json:"cache"`
}

type AIService interface {
	Chat(ctx context.Context, prompt, model string, useCache bool) (*providers.ChatResult, error)
	ChatWithMemory(ctx context.Context, userID uuid.UUID, message, sessionID string) (*providers.ChatResult, string, error)
	StreamChat(ctx context.Context, prompt, model string, onChunk func(chunk string) error) error
	ExecuteAgent(ctx context.Context, agentName, agentContext string) (*providers.ChatResult, error)
	Summarize(ctx context.Context, content string) (*providers.ChatResult, error)
	Analyze(ctx context.Context, content string) (*providers.ChatResult, error)
	SuggestNextSteps(ctx context.Context, task *types.Task) (*providers.ChatResult, error)
	ChatWithTaskContext(ctx context.Context, question string, task *types.Task) (*providers.ChatResult, error)
	ChatWithGroupContext(ctx context.Context, question, taskTitle, recentMessages string) (*providers.ChatResult, error)
	IsAvailable(ctx context.Context) bool
	AvailableAgents() []string
	Models(ctx context.Context) []string
	Status(ctx context.Context) AIStatus
	CacheStats() CacheStats
	ClearCache()
}

type aiService struct {
	log        *logger.Logger
	provider   providers.Provider
	cache      *AICache
	memory     MemoryService
	callLogs   repos.AICallLogRepo
	enableLogs bool
}

// NewAIService binds exactly one provider for the process lifetime. The
// memory service is optional; without it ChatWithMemory degrades to a plain
// chat.
func NewAIService(provider providers.Provider, cache *AICache, memory MemoryService, callLogs repos.AICallLogRepo, log *logger.Logger) AIService {
	return &aiService{
		log:        log.With("service", "AIService"),
		provider:   provider,
		cache:      cache,
		memory:     memory,
		callLogs:   callLogs,
		enableLogs: callLogs != nil,
	}
}

func (s *aiService) effectiveModel(model string) string {
	if model != "" {
		return model
	}
	return s.provider.DefaultModel()
}

// chat is the single funnel for provider calls: cache check, provider
// dispatch, cache write on success only, call log recording.
func (s *aiService) chat(ctx context.Context, prompt string, opts providers.ChatOptions, useCache bool, callType string) (*providers.ChatResult, error) {
	model := s.effectiveModel(opts.Model)

	if s.cache != nil && useCache {
		if cached, ok := s.cache.Get(prompt, model); ok {
			s.recordCall(ctx, callType, model, prompt, cached, nil, true, 0)
			return cached, nil
		}
	}

	start := time.Now()
	result, err := s.provider.Chat(ctx, prompt, opts)
	duration := time.Since(start)

	s.recordCall(ctx, callType, model, prompt, result, err, false, duration)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && useCache {
		s.cache.Set(prompt, model, result)
	}
	return result, nil
}

func (s *aiService) recordCall(ctx context.Context, callType, model, prompt string, result *providers.ChatResult, callErr error, cached bool, duration time.Duration) {
	if !s.enableLogs {
		return
	}

	entry := &types.AICallLog{
		CallType:   callType,
		Provider:   s.provider.Name(),
		Model:      model,
		Prompt:     prompt,
		Success:    callErr == nil,
		Cached:     cached,
		DurationMs: duration.Milliseconds(),
	}
	if rd := requestdata.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		userID := rd.UserID
		entry.UserID = &userID
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if result != nil {
		entry.Response = result.Response
		usage, err := json.Marshal(map[string]int{
			"total_tokens":      result.TokensUsed,
			"prompt_tokens":     result.PromptTokens,
			"completion_tokens": result.CompletionTokens,
		})
		if err == nil {
			entry.Usage = datatypes.JSON(usage)
		}
	}

	if _, err := s.callLogs.Create(ctx, nil, []*types.AICallLog{entry}); err != nil {
		s.log.Warn("Failed to record AI call log", "error", err)
	}
}

func (s *aiService) Chat(ctx context.Context, prompt, model string, useCache bool) (*providers.ChatResult, error) {
	return s.chat(ctx, prompt, providers.ChatOptions{Model: model}, useCache, "chat")
}

// ChatWithMemory assembles the user's context (profile, preferences, recent
// turns, tasks, relevant memories), prompts the provider, and persists both
// sides of the exchange. Contextual turns bypass the cache: the same question
// in a different context must not reuse a stale answer.
func (s *aiService) ChatWithMemory(ctx context.Context, userID uuid.UUID, message, sessionID string) (*providers.ChatResult, string, error) {
	if s.memory == nil {
		result, err := s.Chat(ctx, message, "", true)
		return result, sessionID, err
	}

	sessionID, err := s.memory.ResolveSession(ctx, userID, sessionID)
	if err != nil {
		return nil, "", err
	}

	aiContext, err := s.memory.BuildAIContext(ctx, userID, message, sessionID)
	if err != nil {
		return nil, "", err
	}
	contextBlock := FormatContextForAI(aiContext)

	prompt := message
	if contextBlock != "" {
		prompt = fmt.Sprintf("%s\n\nUser message: %s", contextBlock, message)
	}

	opts := providers.ChatOptions{SystemMessage: systemPrompt}
	result, err := s.chat(ctx, prompt, opts, false, "chat_with_memory")
	if err != nil {
		return nil, "", err
	}

	if err := s.memory.SaveConversation(ctx, userID, types.ChatRoleUser, message, sessionID, 0); err != nil {
		s.log.Warn("Failed to save user turn", "error", err, "user_id", userID)
	}
	if err := s.memory.SaveConversation(ctx, userID, types.ChatRoleAssistant, result.Response, sessionID, result.TokensUsed); err != nil {
		s.log.Warn("Failed to save assistant turn", "error", err, "user_id", userID)
	}

	return result, sessionID, nil
}

func (s *aiService) StreamChat(ctx context.Context, prompt, model string, onChunk func(chunk string) error) error {
	return s.provider.StreamChat(ctx, prompt, providers.ChatOptions{Model: model}, onChunk)
}

// ExecuteAgent rejects unknown agent names before any provider traffic.
// Agent prompts are long, so the call runs with an extended timeout.
func (s *aiService) ExecuteAgent(ctx context.Context, agentName, agentContext string) (*providers.ChatResult, error) {
	prompt, err := AgentPrompt(agentName, agentContext)
	if err != nil {
		return nil, apierr.NotFound("%v", err)
	}
	return s.chat(ctx, prompt, providers.ChatOptions{Timeout: agentTimeout}, true, "agent:"+agentName)
}

func (s *aiService) Summarize(ctx context.Context, content string) (*providers.ChatResult, error) {
	// Bounds count characters, not bytes, so multibyte content is measured
	// the same as ASCII.
	length := utf8.RuneCountInString(content)
	if length < summarizeMinChars {
		return nil, apierr.Validation("content is required and must be at least %d characters", summarizeMinChars)
	}
	if length > summarizeMaxChars {
		return nil, apierr.Validation("content is too long (max %d characters)", summarizeMaxChars)
	}

	prompt, err := TaskPrompt("summarize", map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	return s.chat(ctx, prompt, providers.ChatOptions{Timeout: summarizeTimeout}, true, "summarize")
}

func (s *aiService) Analyze(ctx context.Context, content string) (*providers.ChatResult, error) {
	if content == "" {
		return nil, apierr.Validation("content is required")
	}

	prompt, err := TaskPrompt("analyze", map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	return s.chat(ctx, prompt, providers.ChatOptions{}, true, "analyze")
}

func (s *aiService) SuggestNextSteps(ctx context.Context, task *types.Task) (*providers.ChatResult, error) {
	prompt, err := TaskPrompt("suggest_next_steps", map[string]string{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
	})
	if err != nil {
		return nil, err
	}
	return s.chat(ctx, prompt, providers.ChatOptions{}, true, "suggest_next_steps")
}

func (s *aiService) ChatWithTaskContext(ctx context.Context, question string, task *types.Task) (*providers.ChatResult, error) {
	prompt, err := ChatPrompt("task_context", map[string]string{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"urgent":      fmt.Sprintf("%t", task.Urgent),
		"question":    question,
	})
	if err != nil {
		return nil, err
	}
	return s.chat(ctx, prompt, providers.ChatOptions{}, false, "task_chat")
}

func (s *aiService) ChatWithGroupContext(ctx context.Context, question, taskTitle, recentMessages string) (*providers.ChatResult, error) {
	prompt, err := ChatPrompt("group_chat_context", map[string]string{
		"title":    taskTitle,
		"messages": recentMessages,
		"question": question,
	})
	if err != nil {
		return nil, err
	}
	return s.chat(ctx, prompt, providers.ChatOptions{}, false, "group_chat")
}

func (s *aiService) IsAvailable(ctx context.Context) bool {
	return s.provider.IsAvailable(ctx)
}

func (s *aiService) AvailableAgents() []string {
	return ListAgents()
}

func (s *aiService) Models(ctx context.Context) []string {
	return s.provider.Models(ctx)
}

func (s *aiService) Status(ctx context.Context) AIStatus {
	return AIStatus{
		Available: s.provider.IsAvailable(ctx),
		Provider:  s.provider.Name(),
		Model:     s.provider.DefaultModel(),
		Cache:     s.CacheStats(),
	}
}

func (s *aiService) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.Stats()
}

func (s *aiService) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}
