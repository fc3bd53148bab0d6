package services

import (
	"sort"
	"strings"
	"testing"
)

func TestAgentPromptNormalizesName(t *testing.T) {
	prompt, err := AgentPrompt("Data Analysis", "quarterly numbers")
	if err != nil {
		t.Fatalf("AgentPrompt: %v", err)
	}
	if !strings.Contains(prompt, "quarterly numbers") {
		t.Fatalf("context not substituted: %q", prompt)
	}
	if strings.Contains(prompt, "{context}") {
		t.Fatalf("placeholder left in prompt: %q", prompt)
	}
}

func TestAgentPromptUnknown(t *testing.T) {
	if _, err := AgentPrompt("stock_trading", "x"); err == nil {
		t.Fatalf("expected error for unknown agent")
	}
}

func TestListAgents(t *testing.T) {
	agents := ListAgents()
	want := []string{"benchmarking", "data_analysis", "persona_generation", "report_writing"}
	if len(agents) != len(want) {
		t.Fatalf("got %v, want %v", agents, want)
	}
	if !sort.StringsAreSorted(agents) {
		t.Fatalf("agents not sorted: %v", agents)
	}
	for i := range want {
		if agents[i] != want[i] {
			t.Fatalf("got %v, want %v", agents, want)
		}
	}
}

func TestTaskPromptSubstitution(t *testing.T) {
	prompt, err := TaskPrompt("suggest_next_steps", map[string]string{
		"title":       "Ship report",
		"description": "Final QA pass",
		"status":      "in_progress",
	})
	if err != nil {
		t.Fatalf("TaskPrompt: %v", err)
	}
	for _, fragment := range []string{"Ship report", "Final QA pass", "in_progress"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("missing %q in prompt: %q", fragment, prompt)
		}
	}

	if _, err := TaskPrompt("nope", nil); err == nil {
		t.Fatalf("expected error for unknown task prompt")
	}
}
