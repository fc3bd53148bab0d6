package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/utils"
)

// LMStudioProvider talks to a local LM Studio server through its
// OpenAI-compatible API. Default port is 1234.
type LMStudioProvider struct {
	log          *logger.Logger
	apiURL       string
	defaultModel string
	timeout      time.Duration
	temperature  float64
	maxTokens    int
	httpClient   *http.Client
}

func NewLMStudioProvider(log *logger.Logger) *LMStudioProvider {
	apiURL := utils.GetEnv("LMSTUDIO_API_URL", "http://localhost:1234/v1", log)
	defaultModel := utils.GetEnv("LMSTUDIO_MODEL", "local-model", log)
	timeoutSec := utils.GetEnvAsInt("LMSTUDIO_TIMEOUT", 60, log)
	temperature := utils.GetEnvAsFloat("LMSTUDIO_TEMPERATURE", 0.7, log)
	maxTokens := utils.GetEnvAsInt("LMSTUDIO_MAX_TOKENS", 2048, log)

	return &LMStudioProvider{
		log:          log.With("provider", NameLMStudio),
		apiURL:       strings.TrimRight(apiURL, "/"),
		defaultModel: defaultModel,
		timeout:      time.Duration(timeoutSec) * time.Second,
		temperature:  temperature,
		maxTokens:    maxTokens,
		httpClient:   &http.Client{},
	}
}

func (p *LMStudioProvider) Name() string { return NameLMStudio }

func (p *LMStudioProvider) DefaultModel() string { return p.defaultModel }

func (p *LMStudioProvider) buildRequest(prompt string, opts ChatOptions, stream bool) chatCompletionRequest {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	temperature := p.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := p.maxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}
	return chatCompletionRequest{
		Model:       model,
		Messages:    buildMessages(prompt, opts),
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Stream:      stream,
	}
}

func (p *LMStudioProvider) effectiveTimeout(opts ChatOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return p.timeout
}

func (p *LMStudioProvider) Chat(ctx context.Context, prompt string, opts ChatOptions) (*ChatResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.effectiveTimeout(opts))
	defer cancel()

	reqBody := p.buildRequest(prompt, opts, false)
	parsed, err := postChatCompletion(ctx, p.httpClient, NameLMStudio, p.apiURL+"/chat/completions", "", reqBody)
	if err != nil {
		p.log.Error("LM Studio request failed", "error", err)
		return nil, err
	}

	choice := parsed.Choices[0]
	model := parsed.Model
	if model == "" {
		model = reqBody.Model
	}
	return &ChatResult{
		Response:         choice.Message.Content,
		Model:            model,
		Provider:         NameLMStudio,
		TokensUsed:       parsed.Usage.TotalTokens,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		FinishReason:     choice.FinishReason,
	}, nil
}

func (p *LMStudioProvider) StreamChat(ctx context.Context, prompt string, opts ChatOptions, onChunk func(chunk string) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.effectiveTimeout(opts))
	defer cancel()

	reqBody := p.buildRequest(prompt, opts, true)
	if err := streamChatCompletion(ctx, p.httpClient, NameLMStudio, p.apiURL+"/chat/completions", "", reqBody, onChunk); err != nil {
		p.log.Error("LM Studio streaming request failed", "error", err)
		return err
	}
	return nil
}

// IsAvailable reports ready only when the server responds and at least one
// model is loaded.
func (p *LMStudioProvider) IsAvailable(ctx context.Context) bool {
	return len(p.loadedModels(ctx)) > 0
}

func (p *LMStudioProvider) Models(ctx context.Context) []string {
	return p.loadedModels(ctx)
}

func (p *LMStudioProvider) loadedModels(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/models", nil)
	if err != nil {
		return nil
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Debug("LM Studio not available", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		p.log.Warn("Could not parse LM Studio model list", "error", err)
		return nil
	}

	names := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		names = append(names, m.ID)
	}
	return names
}
