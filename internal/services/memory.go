package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/types"
)

// UserProfile is the read-only identity slice included in AI context.
type UserProfile struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// AIContext is the composite bundle assembled before prompting a provider.
type AIContext struct {
	UserProfile         *UserProfile                 `json:"user_profile,omitempty"`
	Preferences         []string                     `json:"preferences"`
	RecentConversations []*types.ConversationHistory `json:"recent_conversations"`
	ActiveTasks         []*types.Task                `json:"active_tasks"`
	RelevantMemories    []*types.UserMemory          `json:"relevant_memories"`
	CurrentMessage      string                       `json:"current_message"`
}

type MemoryStats struct {
	TotalConversations int64            `json:"total_conversations"`
	TotalSessions      int64            `json:"total_sessions"`
	TotalMemories      int64            `json:"total_memories"`
	TotalSummaries     int64            `json:"total_summaries"`
	MemoryByType       map[string]int64 `json:"memory_by_type"`
}

type MemoryExport struct {
	Conversations []*types.ConversationHistory   `json:"conversations"`
	Memories      map[string][]*types.UserMemory `json:"memories"`
	Summaries     []*types.ContextSummary        `json:"summaries"`
	ExportedAt    time.Time                      `json:"exported_at"`
}

type MemoryService interface {
	ResolveSession(ctx context.Context, userID uuid.UUID, sessionID string) (string, error)
	SaveConversation(ctx context.Context, userID uuid.UUID, role, message, sessionID string, tokensUsed int) error
	GetRecentConversations(ctx context.Context, userID uuid.UUID, limit int, sessionID string) ([]*types.ConversationHistory, error)
	GetSessionHistory(ctx context.Context, userID uuid.UUID, sessionID string) ([]*types.ConversationHistory, error)
	ClearSession(ctx context.Context, userID uuid.UUID, sessionID string) error
	SaveMemory(ctx context.Context, userID uuid.UUID, memoryType, key, value string, confidence float64) (*types.UserMemory, error)
	GetMemory(ctx context.Context, userID uuid.UUID, memoryType, key string) (*types.UserMemory, error)
	GetMemoriesByType(ctx context.Context, userID uuid.UUID, memoryType string) ([]*types.UserMemory, error)
	GetAllMemories(ctx context.Context, userID uuid.UUID) (map[string][]*types.UserMemory, error)
	DeleteMemory(ctx context.Context, userID, memoryID uuid.UUID) (bool, error)
	SearchMemories(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*types.UserMemory, error)
	BuildAIContext(ctx context.Context, userID uuid.UUID, currentMessage, sessionID string) (*AIContext, error)
	CreateSummary(ctx context.Context, userID uuid.UUID, summaryType, title, summary string, metadata map[string]interface{}, date time.Time) (*types.ContextSummary, error)
	GetSummaries(ctx context.Context, userID uuid.UUID, summaryType string, days int) ([]*types.ContextSummary, error)
	GetMemoryStats(ctx context.Context, userID uuid.UUID) (*MemoryStats, error)
	ExportAll(ctx context.Context, userID uuid.UUID) (*MemoryExport, error)
	ClearAll(ctx context.Context, userID uuid.UUID) error
}

type memoryService struct {
	log           *logger.Logger
	db            *gorm.DB
	conversations repos.ConversationRepo
	memories      repos.UserMemoryRepo
	summaries     repos.ContextSummaryRepo
	users         repos.UserRepo
	tasks         repos.TaskRepo
	sessions      SessionStore
}

func NewMemoryService(
	db *gorm.DB,
	conversations repos.ConversationRepo,
	memories repos.UserMemoryRepo,
	summaries repos.ContextSummaryRepo,
	users repos.UserRepo,
	tasks repos.TaskRepo,
	sessions SessionStore,
	log *logger.Logger,
) MemoryService {
	return &memoryService{
		log:           log.With("service", "MemoryService"),
		db:            db,
		conversations: conversations,
		memories:      memories,
		summaries:     summaries,
		users:         users,
		tasks:         tasks,
		sessions:      sessions,
	}
}

func (s *memoryService) ResolveSession(ctx context.Context, userID uuid.UUID, sessionID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	return s.sessions.GetOrCreate(ctx, userID)
}

func (s *memoryService) SaveConversation(ctx context.Context, userID uuid.UUID, role, message, sessionID string, tokensUsed int) error {
	sessionID, err := s.ResolveSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	_, err = s.conversations.Create(ctx, nil, []*types.ConversationHistory{{
		UserID:     userID,
		SessionID:  sessionID,
		Role:       role,
		Message:    message,
		TokensUsed: tokensUsed,
	}})
	if err != nil {
		s.log.Error("Failed to save conversation turn", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// GetRecentConversations fetches the newest turns and returns them in
// chronological order.
func (s *memoryService) GetRecentConversations(ctx context.Context, userID uuid.UUID, limit int, sessionID string) ([]*types.ConversationHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	newest, err := s.conversations.GetRecent(ctx, nil, userID, sessionID, limit)
	if err != nil {
		return nil, err
	}

	chronological := make([]*types.ConversationHistory, len(newest))
	for i, conv := range newest {
		chronological[len(newest)-1-i] = conv
	}
	return chronological, nil
}

func (s *memoryService) GetSessionHistory(ctx context.Context, userID uuid.UUID, sessionID string) ([]*types.ConversationHistory, error) {
	return s.conversations.ListBySession(ctx, nil, userID, sessionID)
}

func (s *memoryService) ClearSession(ctx context.Context, userID uuid.UUID, sessionID string) error {
	return s.conversations.DeleteBySession(ctx, nil, userID, sessionID)
}

// SaveMemory upserts on (user_id, memory_type, key): an existing triple gets
// its value and confidence overwritten, never a duplicate row.
func (s *memoryService) SaveMemory(ctx context.Context, userID uuid.UUID, memoryType, key, value string, confidence float64) (*types.UserMemory, error) {
	existing, err := s.memories.GetByKey(ctx, nil, userID, memoryType, key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.Value = value
		existing.Confidence = confidence
		existing.UpdatedAt = time.Now().UTC()
		return s.memories.Update(ctx, nil, existing)
	}

	created, err := s.memories.Create(ctx, nil, []*types.UserMemory{{
		UserID:     userID,
		MemoryType: memoryType,
		Key:        key,
		Value:      value,
		Confidence: confidence,
	}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// GetMemory bumps access_count and last_accessed as a side effect of the
// read. Absent memory returns (nil, nil).
func (s *memoryService) GetMemory(ctx context.Context, userID uuid.UUID, memoryType, key string) (*types.UserMemory, error) {
	memory, err := s.memories.GetByKey(ctx, nil, userID, memoryType, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.memories.TouchAccess(ctx, nil, []uuid.UUID{memory.ID}); err != nil {
		s.log.Warn("Failed to update memory access telemetry", "error", err)
	}
	memory.AccessCount++
	memory.LastAccessed = time.Now().UTC()
	return memory, nil
}

func (s *memoryService) GetMemoriesByType(ctx context.Context, userID uuid.UUID, memoryType string) ([]*types.UserMemory, error) {
	return s.memories.ListByUser(ctx, nil, userID, memoryType, 0)
}

func (s *memoryService) GetAllMemories(ctx context.Context, userID uuid.UUID) (map[string][]*types.UserMemory, error) {
	all, err := s.memories.ListByUser(ctx, nil, userID, "", 0)
	if err != nil {
		return nil, err
	}

	organized := map[string][]*types.UserMemory{
		"preferences": {},
		"patterns":    {},
		"insights":    {},
		"goals":       {},
	}
	buckets := map[string]string{
		types.MemoryTypePreference: "preferences",
		types.MemoryTypePattern:    "patterns",
		types.MemoryTypeInsight:    "insights",
		types.MemoryTypeGoal:       "goals",
	}
	for _, memory := range all {
		if bucket, ok := buckets[memory.MemoryType]; ok {
			organized[bucket] = append(organized[bucket], memory)
		}
	}
	return organized, nil
}

func (s *memoryService) DeleteMemory(ctx context.Context, userID, memoryID uuid.UUID) (bool, error) {
	return s.memories.DeleteByID(ctx, nil, userID, memoryID)
}

func (s *memoryService) SearchMemories(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*types.UserMemory, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.memories.SearchByValue(ctx, nil, userID, query, limit)
}

// BuildAIContext assembles every context source sequentially so repeated
// calls with no intervening writes produce identical output.
func (s *memoryService) BuildAIContext(ctx context.Context, userID uuid.UUID, currentMessage, sessionID string) (*AIContext, error) {
	aiContext := &AIContext{
		Preferences:         []string{},
		RecentConversations: []*types.ConversationHistory{},
		ActiveTasks:         []*types.Task{},
		RelevantMemories:    []*types.UserMemory{},
		CurrentMessage:      currentMessage,
	}

	aiContext.UserProfile = s.userProfileContext(ctx, userID)

	preferences, err := s.GetMemoriesByType(ctx, userID, types.MemoryTypePreference)
	if err != nil {
		return nil, err
	}
	for _, pref := range preferences {
		aiContext.Preferences = append(aiContext.Preferences, fmt.Sprintf("%s: %s", pref.Key, pref.Value))
	}

	conversations, err := s.GetRecentConversations(ctx, userID, 10, sessionID)
	if err != nil {
		return nil, err
	}
	aiContext.RecentConversations = conversations

	tasks, err := s.tasks.ListActiveByAssignee(ctx, nil, userID, 10)
	if err != nil {
		return nil, err
	}
	aiContext.ActiveTasks = tasks

	aiContext.RelevantMemories = s.relevantMemories(ctx, userID, currentMessage)

	return aiContext, nil
}

// userProfileContext never fails the context build: an absent user yields an
// empty profile.
func (s *memoryService) userProfileContext(ctx context.Context, userID uuid.UUID) *UserProfile {
	users, err := s.users.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil || len(users) == 0 {
		return nil
	}
	user := users[0]
	return &UserProfile{
		Name:  strings.TrimSpace(user.FirstName + " " + user.LastName),
		Role:  user.Role,
		Email: user.Email,
	}
}

// relevantMemories implements the naive keyword heuristic: words longer than
// 4 characters, first 3 distinct keywords, up to 2 matches each, deduplicated
// by id, capped at 5. Lookup failures yield an empty list, never an error.
func (s *memoryService) relevantMemories(ctx context.Context, userID uuid.UUID, message string) []*types.UserMemory {
	var keywords []string
	seen := map[string]bool{}
	for _, word := range strings.Fields(message) {
		if utf8.RuneCountInString(word) <= 4 {
			continue
		}
		keyword := strings.ToLower(word)
		if seen[keyword] {
			continue
		}
		seen[keyword] = true
		keywords = append(keywords, keyword)
		if len(keywords) == 3 {
			break
		}
	}

	var relevant []*types.UserMemory
	for _, keyword := range keywords {
		matches, err := s.memories.SearchByValue(ctx, nil, userID, keyword, 2)
		if err != nil {
			s.log.Warn("Relevant memory lookup failed", "error", err, "keyword", keyword)
			continue
		}
		relevant = append(relevant, matches...)
	}

	seenIDs := map[uuid.UUID]bool{}
	unique := make([]*types.UserMemory, 0, len(relevant))
	for _, memory := range relevant {
		if seenIDs[memory.ID] {
			continue
		}
		seenIDs[memory.ID] = true
		unique = append(unique, memory)
		if len(unique) == 5 {
			break
		}
	}
	return unique
}

// FormatContextForAI serializes an assembled context into one prompt-ready
// block. Section order is fixed: stable, general information first, the most
// recent turns last, since a token-limited consumer truncates from the end.
func FormatContextForAI(aiContext *AIContext) string {
	var parts []string

	if profile := aiContext.UserProfile; profile != nil {
		parts = append(parts, fmt.Sprintf("User: %s (%s)", profile.Name, profile.Role))
	}

	if len(aiContext.Preferences) > 0 {
		parts = append(parts, "\nUser Preferences:")
		for _, pref := range aiContext.Preferences {
			parts = append(parts, "- "+pref)
		}
	}

	if len(aiContext.ActiveTasks) > 0 {
		parts = append(parts, "\nActive Tasks:")
		tasks := aiContext.ActiveTasks
		if len(tasks) > 5 {
			tasks = tasks[:5]
		}
		for _, task := range tasks {
			marker := "🟢"
			if task.Urgent {
				marker = "🔴"
			}
			parts = append(parts, fmt.Sprintf("%s %s (%s)", marker, task.Title, task.Status))
		}
	}

	if len(aiContext.RelevantMemories) > 0 {
		parts = append(parts, "\nRelevant Past Context:")
		for _, memory := range aiContext.RelevantMemories {
			parts = append(parts, fmt.Sprintf("- %s: %s", memory.Key, memory.Value))
		}
	}

	if len(aiContext.RecentConversations) > 0 {
		parts = append(parts, "\nRecent Conversation:")
		conversations := aiContext.RecentConversations
		if len(conversations) > 5 {
			conversations = conversations[len(conversations)-5:]
		}
		for _, conv := range conversations {
			parts = append(parts, fmt.Sprintf("%s: %s", capitalize(conv.Role), truncateRunes(conv.Message, 100)))
		}
	}

	return strings.Join(parts, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (s *memoryService) CreateSummary(ctx context.Context, userID uuid.UUID, summaryType, title, summary string, metadata map[string]interface{}, date time.Time) (*types.ContextSummary, error) {
	if date.IsZero() {
		date = time.Now().UTC()
	}

	entry := &types.ContextSummary{
		UserID:      userID,
		SummaryType: summaryType,
		Title:       title,
		Summary:     summary,
		Date:        date,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("Failed to encode summary metadata: %w", err)
		}
		entry.Metadata = datatypes.JSON(raw)
	}

	created, err := s.summaries.Create(ctx, nil, []*types.ContextSummary{entry})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *memoryService) GetSummaries(ctx context.Context, userID uuid.UUID, summaryType string, days int) ([]*types.ContextSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.summaries.ListByUser(ctx, nil, userID, summaryType, since)
}

func (s *memoryService) GetMemoryStats(ctx context.Context, userID uuid.UUID) (*MemoryStats, error) {
	totalConversations, err := s.conversations.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	totalSessions, err := s.conversations.CountSessionsByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	totalMemories, err := s.memories.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	totalSummaries, err := s.summaries.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	byType := map[string]int64{}
	for _, memoryType := range []string{
		types.MemoryTypePreference,
		types.MemoryTypePattern,
		types.MemoryTypeInsight,
		types.MemoryTypeGoal,
	} {
		count, err := s.memories.CountByType(ctx, nil, userID, memoryType)
		if err != nil {
			return nil, err
		}
		byType[memoryType] = count
	}

	return &MemoryStats{
		TotalConversations: totalConversations,
		TotalSessions:      totalSessions,
		TotalMemories:      totalMemories,
		TotalSummaries:     totalSummaries,
		MemoryByType:       byType,
	}, nil
}

func (s *memoryService) ExportAll(ctx context.Context, userID uuid.UUID) (*MemoryExport, error) {
	conversations, err := s.conversations.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	memories, err := s.GetAllMemories(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summaries.ListByUser(ctx, nil, userID, "", time.Time{})
	if err != nil {
		return nil, err
	}

	return &MemoryExport{
		Conversations: conversations,
		Memories:      memories,
		Summaries:     summaries,
		ExportedAt:    time.Now().UTC(),
	}, nil
}

// ClearAll removes every row the memory subsystem owns for the user, in one
// transaction so a failure leaves nothing half-deleted.
func (s *memoryService) ClearAll(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.conversations.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.memories.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.summaries.DeleteByUser(ctx, tx, userID)
	})
	if err != nil {
		s.log.Error("Failed to clear memory data", "error", err, "user_id", userID)
		return err
	}
	return s.sessions.Clear(ctx, userID)
}
