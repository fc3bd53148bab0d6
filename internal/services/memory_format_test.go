package services

import (
	"strings"
	"testing"

	"github.com/alexhq/alex-backend/internal/types"
)

func TestFormatContextForAI(t *testing.T) {
	aiContext := &AIContext{
		UserProfile: &UserProfile{Name: "Dana Smith", Role: "manager"},
		Preferences: []string{"tone: concise"},
		ActiveTasks: []*types.Task{
			{Title: "Fix billing", Status: types.TaskStatusTodo, Urgent: true},
			{Title: "Write notes", Status: types.TaskStatusInProgress},
		},
		RelevantMemories: []*types.UserMemory{
			{Key: "work_hours", Value: "prefers mornings"},
		},
		RecentConversations: []*types.ConversationHistory{
			{Role: types.ChatRoleUser, Message: "hello"},
			{Role: types.ChatRoleAssistant, Message: "hi there"},
		},
	}

	want := strings.Join([]string{
		"User: Dana Smith (manager)",
		"\nUser Preferences:",
		"- tone: concise",
		"\nActive Tasks:",
		"🔴 Fix billing (todo)",
		"🟢 Write notes (in_progress)",
		"\nRelevant Past Context:",
		"- work_hours: prefers mornings",
		"\nRecent Conversation:",
		"User: hello",
		"Assistant: hi there",
	}, "\n")

	got := FormatContextForAI(aiContext)
	if got != want {
		t.Fatalf("formatted context mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	// Same input, same output, byte for byte.
	if again := FormatContextForAI(aiContext); again != got {
		t.Fatalf("formatting is not deterministic")
	}
}

func TestFormatContextForAIEmpty(t *testing.T) {
	if got := FormatContextForAI(&AIContext{}); got != "" {
		t.Fatalf("empty context formatted to %q, want empty string", got)
	}
}

func TestFormatContextForAICaps(t *testing.T) {
	aiContext := &AIContext{}
	for i := 0; i < 7; i++ {
		aiContext.ActiveTasks = append(aiContext.ActiveTasks, &types.Task{Title: "t", Status: types.TaskStatusTodo})
		aiContext.RecentConversations = append(aiContext.RecentConversations, &types.ConversationHistory{
			Role:    types.ChatRoleUser,
			Message: strings.Repeat("x", 150),
		})
	}

	got := FormatContextForAI(aiContext)

	if n := strings.Count(got, "🟢 t (todo)"); n != 5 {
		t.Fatalf("task lines=%d, want 5", n)
	}
	if n := strings.Count(got, "User: "); n != 5 {
		t.Fatalf("conversation lines=%d, want 5", n)
	}
	// Messages are cut to 100 runes.
	if strings.Contains(got, strings.Repeat("x", 101)) {
		t.Fatalf("message not truncated")
	}
	if !strings.Contains(got, strings.Repeat("x", 100)) {
		t.Fatalf("truncated message missing")
	}
}
