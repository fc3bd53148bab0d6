package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIProvider(testLogger(t)); err == nil {
		t.Fatalf("expected error without OPENAI_API_KEY")
	}
}

func TestOpenAIChatSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("Authorization=%q", got)
		}
		fmt.Fprint(w, `{
			"model": "gpt-3.5-turbo",
			"choices": [{"message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`)
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	p, err := NewOpenAIProvider(testLogger(t))
	if err != nil {
		t.Fatalf("NewOpenAIProvider: %v", err)
	}

	result, err := p.Chat(context.Background(), "hello", ChatOptions{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "hi" || result.Provider != NameOpenAI || result.TokensUsed != 2 {
		t.Fatalf("result: %+v", result)
	}
}
