package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/utils"
)

type OpenAIProvider struct {
	log          *logger.Logger
	baseURL      string
	apiKey       string
	defaultModel string
	timeout      time.Duration
	temperature  float64
	maxTokens    int
	httpClient   *http.Client
}

func NewOpenAIProvider(log *logger.Logger) (*OpenAIProvider, error) {
	apiKey := utils.GetEnv("OPENAI_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", log)
	defaultModel := utils.GetEnv("OPENAI_MODEL", "gpt-3.5-turbo", log)
	timeoutSec := utils.GetEnvAsInt("OPENAI_TIMEOUT", 30, log)
	temperature := utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.7, log)
	maxTokens := utils.GetEnvAsInt("OPENAI_MAX_TOKENS", 2048, log)

	p := &OpenAIProvider{
		log:          log.With("provider", NameOpenAI),
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		defaultModel: defaultModel,
		timeout:      time.Duration(timeoutSec) * time.Second,
		temperature:  temperature,
		maxTokens:    maxTokens,
		httpClient:   &http.Client{},
	}
	p.log.Info("OpenAI provider initialized", "model", defaultModel)
	return p, nil
}

func (p *OpenAIProvider) Name() string { return NameOpenAI }

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

func (p *OpenAIProvider) buildRequest(prompt string, opts ChatOptions, stream bool) chatCompletionRequest {
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

func (p *OpenAIProvider) effectiveTimeout(opts ChatOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return p.timeout
}

func (p *OpenAIProvider) Chat(ctx context.Context, prompt string, opts ChatOptions) (*ChatResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.effectiveTimeout(opts))
	defer cancel()

	reqBody := p.buildRequest(prompt, opts, false)
	parsed, err := postChatCompletion(ctx, p.httpClient, NameOpenAI, p.baseURL+"/chat/completions", p.apiKey, reqBody)
	if err != nil {
		p.log.Error("OpenAI request failed", "error", err)
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
		Provider:         NameOpenAI,
		TokensUsed:       parsed.Usage.TotalTokens,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		FinishReason:     choice.FinishReason,
	}, nil
}

func (p *OpenAIProvider) StreamChat(ctx context.Context, prompt string, opts ChatOptions, onChunk func(chunk string) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.effectiveTimeout(opts))
	defer cancel()

	reqBody := p.buildRequest(prompt, opts, true)
	if err := streamChatCompletion(ctx, p.httpClient, NameOpenAI, p.baseURL+"/chat/completions", p.apiKey, reqBody, onChunk); err != nil {
		p.log.Error("OpenAI streaming request failed", "error", err)
		return err
	}
	return nil
}

func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if p.apiKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Debug("OpenAI availability check failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *OpenAIProvider) Models(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return []string{p.defaultModel}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn("Could not fetch OpenAI models", "error", err)
		return []string{p.defaultModel}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []string{p.defaultModel}
	}

	var parsed struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return []string{p.defaultModel}
	}

	names := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		names = append(names, m.ID)
	}
	if len(names) == 0 {
		return []string{p.defaultModel}
	}
	return names
}
