package providers

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/alexhq/alex-backend/internal/apierr"
)

// Provider names as reported in responses and call logs.
const (
	NameOllama   = "ollama"
	NameLMStudio = "lmstudio"
	NameOpenAI   = "openai"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatOptions struct {
	Model         string
	Timeout       time.Duration
	Temperature   *float64
	MaxTokens     *int
	SystemMessage string
	History       []Message
}

type ChatResult struct {
	Response         string                 `json:"response"`
	Model            string                 `json:"model"`
	Provider         string                 `json:"provider"`
	TokensUsed       int                    `json:"tokens_used"`
	PromptTokens     int                    `json:"prompt_tokens,omitempty"`
	CompletionTokens int                    `json:"completion_tokens,omitempty"`
	FinishReason     string                 `json:"finish_reason,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Provider is one LLM backend. Chat blocks for the full completion;
// StreamChat invokes onChunk for each delta as it arrives and returns once the
// stream terminates.
type Provider interface {
	Name() string
	DefaultModel() string
	Chat(ctx context.Context, prompt string, opts ChatOptions) (*ChatResult, error)
	StreamChat(ctx context.Context, prompt string, opts ChatOptions, onChunk func(chunk string) error) error
	IsAvailable(ctx context.Context) bool
	Models(ctx context.Context) []string
}

// mapTransportError translates transport failures into the API error
// taxonomy: timeouts become 504, everything else that never produced an HTTP
// response (refused connection, DNS failure) becomes 503.
func mapTransportError(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.UpstreamTimeout("%s request timed out: %v", name, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierr.UpstreamTimeout("%s request timed out: %v", name, err)
	}
	return apierr.ServiceUnavailable("%s unavailable: %v", name, err)
}
