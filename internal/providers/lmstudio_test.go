package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newLMStudioForURL(t *testing.T, url string) *LMStudioProvider {
	t.Helper()
	t.Setenv("LMSTUDIO_API_URL", url)
	t.Setenv("LMSTUDIO_MODEL", "local-model")
	return NewLMStudioProvider(testLogger(t))
}

func TestLMStudioChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var in chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(in.Messages) != 2 {
			t.Fatalf("messages=%d, want system+user", len(in.Messages))
		}
		if in.Messages[0].Role != "system" || in.Messages[1].Role != "user" || in.Messages[1].Content != "hello" {
			t.Fatalf("unexpected messages: %+v", in.Messages)
		}
		fmt.Fprint(w, `{
			"model": "local-model",
			"choices": [{"message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
		}`)
	}))
	defer srv.Close()

	p := newLMStudioForURL(t, srv.URL)
	result, err := p.Chat(context.Background(), "hello", ChatOptions{SystemMessage: "be brief"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "hi" || result.FinishReason != "stop" {
		t.Fatalf("result: %+v", result)
	}
	if result.TokensUsed != 7 || result.PromptTokens != 5 || result.CompletionTokens != 2 {
		t.Fatalf("token counts: %+v", result)
	}
	if result.Provider != NameLMStudio {
		t.Fatalf("provider=%q", result.Provider)
	}
}

func TestLMStudioChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"model": "local-model", "choices": []}`)
	}))
	defer srv.Close()

	p := newLMStudioForURL(t, srv.URL)
	if _, err := p.Chat(context.Background(), "hello", ChatOptions{}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}

func TestLMStudioStreamChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in chatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if !in.Stream {
			t.Fatalf("expected stream=true")
		}
		fmt.Fprintln(w, `data: {"choices":[{"delta":{"content":"Hel"}}]}`)
		fmt.Fprintln(w, `: keep-alive comment`)
		fmt.Fprintln(w, `data: this is not json`)
		fmt.Fprintln(w, `data: {"choices":[{"delta":{"content":"lo"}}]}`)
		fmt.Fprintln(w, `data: [DONE]`)
		fmt.Fprintln(w, `data: {"choices":[{"delta":{"content":"never delivered"}}]}`)
	}))
	defer srv.Close()

	p := newLMStudioForURL(t, srv.URL)
	var chunks []string
	err := p.StreamChat(context.Background(), "hello", ChatOptions{}, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
		t.Fatalf("chunks=%v", chunks)
	}
}

func TestLMStudioAvailability(t *testing.T) {
	loaded := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if loaded {
			fmt.Fprint(w, `{"data":[{"id":"qwen2-7b"}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	p := newLMStudioForURL(t, srv.URL)
	if !p.IsAvailable(context.Background()) {
		t.Fatalf("expected available with a loaded model")
	}
	if models := p.Models(context.Background()); len(models) != 1 || models[0] != "qwen2-7b" {
		t.Fatalf("models=%v", models)
	}

	// A running server with nothing loaded cannot serve chat.
	loaded = false
	if p.IsAvailable(context.Background()) {
		t.Fatalf("expected unavailable with no loaded models")
	}
}
