package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newOllamaForURL(t *testing.T, url string) *OllamaProvider {
	t.Helper()
	t.Setenv("AI_API_URL", url)
	t.Setenv("AI_MODEL", "phi3")
	return NewOllamaProvider(testLogger(t))
}

func TestOllamaChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var in ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in.Model != "phi3" || in.Prompt != "hello" || in.Stream {
			t.Fatalf("unexpected request: %+v", in)
		}
		if in.System != "be brief" {
			t.Fatalf("system=%q", in.System)
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Model:           "phi3",
			Response:        "hi",
			Done:            true,
			PromptEvalCount: 3,
			EvalCount:       4,
		})
	}))
	defer srv.Close()

	p := newOllamaForURL(t, srv.URL)
	result, err := p.Chat(context.Background(), "hello", ChatOptions{SystemMessage: "be brief"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "hi" {
		t.Fatalf("response=%q", result.Response)
	}
	if result.TokensUsed != 7 || result.PromptTokens != 3 || result.CompletionTokens != 4 {
		t.Fatalf("token counts: %+v", result)
	}
	if result.Provider != NameOllama {
		t.Fatalf("provider=%q", result.Provider)
	}
}

func TestOllamaChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := newOllamaForURL(t, srv.URL)
	_, err := p.Chat(context.Background(), "hello", ChatOptions{})
	if !apierr.HasCode(err, apierr.CodeProvider) {
		t.Fatalf("got %v, want provider_error", err)
	}
	if apierr.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("status=%d, want upstream 404 passed through", apierr.StatusOf(err))
	}
}

func TestOllamaChatConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newOllamaForURL(t, url)
	_, err := p.Chat(context.Background(), "hello", ChatOptions{})
	if !apierr.HasCode(err, apierr.CodeServiceUnavailable) {
		t.Fatalf("got %v, want service_unavailable", err)
	}
	if apierr.StatusOf(err) != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", apierr.StatusOf(err))
	}
}

func TestOllamaChatTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := newOllamaForURL(t, srv.URL)
	_, err := p.Chat(context.Background(), "hello", ChatOptions{Timeout: 50 * time.Millisecond})
	if !apierr.HasCode(err, apierr.CodeUpstreamTimeout) {
		t.Fatalf("got %v, want upstream_timeout", err)
	}
	if apierr.StatusOf(err) != http.StatusGatewayTimeout {
		t.Fatalf("status=%d, want 504", apierr.StatusOf(err))
	}
}

func TestOllamaStreamChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in ollamaGenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if !in.Stream {
			t.Fatalf("expected stream=true")
		}
		fmt.Fprintln(w, `{"response":"Hel","done":false}`)
		fmt.Fprintln(w, `not json at all`)
		fmt.Fprintln(w, `{"response":"lo","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
		fmt.Fprintln(w, `{"response":"never delivered","done":false}`)
	}))
	defer srv.Close()

	p := newOllamaForURL(t, srv.URL)
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

func TestOllamaModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[{"name":"phi3"},{"name":"llama3"}]}`)
	}))
	defer srv.Close()

	p := newOllamaForURL(t, srv.URL)
	models := p.Models(context.Background())
	if len(models) != 2 || models[0] != "phi3" || models[1] != "llama3" {
		t.Fatalf("models=%v", models)
	}
	if !p.IsAvailable(context.Background()) {
		t.Fatalf("expected available")
	}
}

func TestOllamaModelsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newOllamaForURL(t, url)
	models := p.Models(context.Background())
	if len(models) != 1 || models[0] != "phi3" {
		t.Fatalf("models=%v, want default fallback", models)
	}
	if p.IsAvailable(context.Background()) {
		t.Fatalf("expected unavailable")
	}
}
