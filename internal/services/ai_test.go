package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/providers"
	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/types"
)

type fakeProvider struct {
	calls      int
	result     *providers.ChatResult
	err        error
	lastPrompt string
	lastOpts   providers.ChatOptions
}

func (p *fakeProvider) Name() string         { return "fake" }
func (p *fakeProvider) DefaultModel() string { return "fake-model" }

func (p *fakeProvider) Chat(_ context.Context, prompt string, opts providers.ChatOptions) (*providers.ChatResult, error) {
	p.calls++
	p.lastPrompt = prompt
	p.lastOpts = opts
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &providers.ChatResult{Response: "ok", Model: "fake-model", Provider: "fake"}, nil
}

func (p *fakeProvider) StreamChat(_ context.Context, prompt string, _ providers.ChatOptions, onChunk func(string) error) error {
	p.calls++
	p.lastPrompt = prompt
	return onChunk("chunk")
}

func (p *fakeProvider) IsAvailable(context.Context) bool { return true }
func (p *fakeProvider) Models(context.Context) []string  { return []string{"fake-model"} }

type fakeCallLogs struct {
	entries []*types.AICallLog
}

func (f *fakeCallLogs) Create(_ context.Context, _ *gorm.DB, logs []*types.AICallLog) ([]*types.AICallLog, error) {
	f.entries = append(f.entries, logs...)
	return logs, nil
}

func (f *fakeCallLogs) ListByUser(context.Context, *gorm.DB, uuid.UUID, int) ([]*types.AICallLog, error) {
	return f.entries, nil
}

var _ repos.AICallLogRepo = (*fakeCallLogs)(nil)

type fakeMemory struct {
	MemoryService
	sessionID  string
	aiContext  *AIContext
	savedRoles []string
	savedMsgs  []string
}

func (f *fakeMemory) ResolveSession(_ context.Context, _ uuid.UUID, sessionID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	return f.sessionID, nil
}

func (f *fakeMemory) BuildAIContext(context.Context, uuid.UUID, string, string) (*AIContext, error) {
	if f.aiContext != nil {
		return f.aiContext, nil
	}
	return &AIContext{}, nil
}

func (f *fakeMemory) SaveConversation(_ context.Context, _ uuid.UUID, role, message, _ string, _ int) error {
	f.savedRoles = append(f.savedRoles, role)
	f.savedMsgs = append(f.savedMsgs, message)
	return nil
}

func newTestAIService(t *testing.T, provider providers.Provider, memory MemoryService, callLogs repos.AICallLogRepo) AIService {
	t.Helper()
	cache := NewAICache(time.Hour, testLogger(t))
	return NewAIService(provider, cache, memory, callLogs, testLogger(t))
}

func TestChatUsesCacheOnRepeat(t *testing.T) {
	provider := &fakeProvider{result: &providers.ChatResult{Response: "cached answer", Model: "fake-model"}}
	svc := newTestAIService(t, provider, nil, nil)
	ctx := context.Background()

	first, err := svc.Chat(ctx, "same question", "", true)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	second, err := svc.Chat(ctx, "same question", "", true)
	if err != nil {
		t.Fatalf("Chat (repeat): %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", provider.calls)
	}
	if first.Response != second.Response {
		t.Fatalf("cached response differs")
	}

	// Opting out of the cache always reaches the provider.
	if _, err := svc.Chat(ctx, "same question", "", false); err != nil {
		t.Fatalf("Chat (no cache): %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("provider calls=%d after uncached call, want 2", provider.calls)
	}
}

func TestChatFailureIsNotCached(t *testing.T) {
	provider := &fakeProvider{err: apierr.ServiceUnavailable("fake is down")}
	svc := newTestAIService(t, provider, nil, nil)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, "q", "", true); err == nil {
		t.Fatalf("expected error")
	}
	if stats := svc.CacheStats(); stats.Size != 0 {
		t.Fatalf("failed call was cached, size=%d", stats.Size)
	}

	provider.err = nil
	if _, err := svc.Chat(ctx, "q", "", true); err != nil {
		t.Fatalf("Chat after recovery: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("provider calls=%d, want 2", provider.calls)
	}
}

func TestSummarizeBounds(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestAIService(t, provider, nil, nil)
	ctx := context.Background()

	if _, err := svc.Summarize(ctx, "short"); !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("short content: got %v, want validation error", err)
	}
	if _, err := svc.Summarize(ctx, strings.Repeat("a", 50001)); !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("long content: got %v, want validation error", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider reached %d times on invalid input, want 0", provider.calls)
	}

	if _, err := svc.Summarize(ctx, strings.Repeat("a", 200)); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls=%d, want 1", provider.calls)
	}
	if provider.lastOpts.Timeout != summarizeTimeout {
		t.Fatalf("timeout=%v, want %v", provider.lastOpts.Timeout, summarizeTimeout)
	}
}

func TestSummarizeBoundsCountRunes(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestAIService(t, provider, nil, nil)
	ctx := context.Background()

	// Nine characters in eighteen bytes is still too short.
	if _, err := svc.Summarize(ctx, strings.Repeat("é", 9)); !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("9-rune content: got %v, want validation error", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider reached on short multibyte input")
	}

	// Thirty thousand characters in sixty thousand bytes is within bounds.
	if _, err := svc.Summarize(ctx, strings.Repeat("é", 30000)); err != nil {
		t.Fatalf("30000-rune content: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls=%d, want 1", provider.calls)
	}

	if _, err := svc.Summarize(ctx, strings.Repeat("é", 50001)); !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("50001-rune content: got %v, want validation error", err)
	}
}

func TestExecuteAgentUnknown(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestAIService(t, provider, nil, nil)

	_, err := svc.ExecuteAgent(context.Background(), "world_domination", "ctx")
	if !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("got %v, want not_found", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider reached for unknown agent")
	}
}

func TestExecuteAgentTimeout(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestAIService(t, provider, nil, nil)

	if _, err := svc.ExecuteAgent(context.Background(), "benchmarking", "numbers"); err != nil {
		t.Fatalf("ExecuteAgent: %v", err)
	}
	if provider.lastOpts.Timeout != agentTimeout {
		t.Fatalf("timeout=%v, want %v", provider.lastOpts.Timeout, agentTimeout)
	}
	if !strings.Contains(provider.lastPrompt, "numbers") {
		t.Fatalf("agent context missing from prompt")
	}
}

func TestChatWithMemory(t *testing.T) {
	provider := &fakeProvider{result: &providers.ChatResult{Response: "glad to help", Model: "fake-model", TokensUsed: 7}}
	memory := &fakeMemory{
		sessionID: "session-1",
		aiContext: &AIContext{
			Preferences: []string{"tone: direct"},
		},
	}
	svc := newTestAIService(t, provider, memory, nil)

	result, sessionID, err := svc.ChatWithMemory(context.Background(), uuid.New(), "help me plan", "")
	if err != nil {
		t.Fatalf("ChatWithMemory: %v", err)
	}
	if sessionID != "session-1" {
		t.Fatalf("sessionID=%q, want session-1", sessionID)
	}
	if result.Response != "glad to help" {
		t.Fatalf("response=%q", result.Response)
	}

	// Assembled context precedes the user message in the prompt.
	if !strings.Contains(provider.lastPrompt, "tone: direct") {
		t.Fatalf("context block missing from prompt: %q", provider.lastPrompt)
	}
	if !strings.Contains(provider.lastPrompt, "User message: help me plan") {
		t.Fatalf("user message missing from prompt: %q", provider.lastPrompt)
	}
	if provider.lastOpts.SystemMessage == "" {
		t.Fatalf("system message not set")
	}

	// Both turns persisted, user first.
	if len(memory.savedRoles) != 2 || memory.savedRoles[0] != types.ChatRoleUser || memory.savedRoles[1] != types.ChatRoleAssistant {
		t.Fatalf("saved roles: %v", memory.savedRoles)
	}
	if memory.savedMsgs[0] != "help me plan" || memory.savedMsgs[1] != "glad to help" {
		t.Fatalf("saved messages: %v", memory.savedMsgs)
	}

	// Contextual chats bypass the cache.
	if stats := svc.CacheStats(); stats.Size != 0 {
		t.Fatalf("contextual chat was cached, size=%d", stats.Size)
	}
}

func TestCallLogRecording(t *testing.T) {
	provider := &fakeProvider{}
	callLogs := &fakeCallLogs{}
	svc := newTestAIService(t, provider, nil, callLogs)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, "log me", "", true); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Chat(ctx, "log me", "", true); err != nil {
		t.Fatalf("Chat (cached): %v", err)
	}

	if len(callLogs.entries) != 2 {
		t.Fatalf("entries=%d, want 2", len(callLogs.entries))
	}
	if callLogs.entries[0].Cached || !callLogs.entries[1].Cached {
		t.Fatalf("cached flags wrong: %+v, %+v", callLogs.entries[0], callLogs.entries[1])
	}
	if !callLogs.entries[0].Success {
		t.Fatalf("success flag wrong on provider call")
	}
	if callLogs.entries[0].Provider != "fake" {
		t.Fatalf("provider=%q", callLogs.entries[0].Provider)
	}
}
