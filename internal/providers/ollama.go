package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/utils"
)

type OllamaProvider struct {
	log          *logger.Logger
	apiURL       string
	defaultModel string
	timeout      time.Duration
	httpClient   *http.Client
}

func NewOllamaProvider(log *logger.Logger) *OllamaProvider {
	apiURL := utils.GetEnv("AI_API_URL", "http://localhost:11434", log)
	defaultModel := utils.GetEnv("AI_MODEL", "phi3", log)
	timeoutSec := utils.GetEnvAsInt("AI_TIMEOUT", 30, log)

	return &OllamaProvider{
		log:          log.With("provider", NameOllama),
		apiURL:       strings.TrimRight(apiURL, "/"),
		defaultModel: defaultModel,
		timeout:      time.Duration(timeoutSec) * time.Second,
		httpClient:   &http.Client{},
	}
}

func (p *OllamaProvider) Name() string { return NameOllama }

func (p *OllamaProvider) DefaultModel() string { return p.defaultModel }

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	System  string                 `json:"system,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	CreatedAt       string `json:"created_at"`
	TotalDuration   int64  `json:"total_duration"`
	LoadDuration    int64  `json:"load_duration"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (p *OllamaProvider) buildRequest(prompt string, opts ChatOptions, stream bool) ollamaGenerateRequest {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	req := ollamaGenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: stream,
		System: opts.SystemMessage,
	}
	options := map[string]interface{}{}
	if opts.Temperature != nil {
		options["temperature"] = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		options["num_predict"] = *opts.MaxTokens
	}
	if len(options) > 0 {
		req.Options = options
	}
	return req
}

func (p *OllamaProvider) effectiveTimeout(opts ChatOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return p.timeout
}

func (p *OllamaProvider) Chat(ctx context.Context, prompt string, opts ChatOptions) (*ChatResult, error) {
	reqBody := p.buildRequest(prompt, opts, false)

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("Failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.effectiveTimeout(opts))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("Failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Error("Ollama request failed", "error", err)
		return nil, mapTransportError(NameOllama, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apierr.Provider(resp.StatusCode, "ollama error: %s", strings.TrimSpace(string(body)))
	}

	var parsed ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apierr.Provider(http.StatusBadGateway, "ollama returned malformed response: %v", err)
	}

	model := parsed.Model
	if model == "" {
		model = reqBody.Model
	}
	return &ChatResult{
		Response:         parsed.Response,
		Model:            model,
		Provider:         NameOllama,
		TokensUsed:       parsed.PromptEvalCount + parsed.EvalCount,
		PromptTokens:     parsed.PromptEvalCount,
		CompletionTokens: parsed.EvalCount,
		Metadata: map[string]interface{}{
			"created_at":        parsed.CreatedAt,
			"total_duration":    parsed.TotalDuration,
			"load_duration":     parsed.LoadDuration,
			"prompt_eval_count": parsed.PromptEvalCount,
			"eval_count":        parsed.EvalCount,
		},
	}, nil
}

// StreamChat reads newline-delimited JSON from /api/generate. Unparseable
// lines are skipped; a chunk with done=true ends the stream.
func (p *OllamaProvider) StreamChat(ctx context.Context, prompt string, opts ChatOptions, onChunk func(chunk string) error) error {
	reqBody := p.buildRequest(prompt, opts, true)

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("Failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.effectiveTimeout(opts))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("Failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Error("Ollama streaming request failed", "error", err)
		return mapTransportError(NameOllama, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apierr.Provider(resp.StatusCode, "ollama error: %s", strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk ollamaGenerateResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		if chunk.Response != "" {
			if err := onChunk(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return mapTransportError(NameOllama, err)
	}
	return nil
}

func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Debug("Ollama availability check failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *OllamaProvider) Models(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/api/tags", nil)
	if err != nil {
		return []string{p.defaultModel}
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn("Could not fetch Ollama models", "error", err)
		return []string{p.defaultModel}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []string{p.defaultModel}
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		p.log.Warn("Could not parse Ollama model list", "error", err)
		return []string{p.defaultModel}
	}

	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		return []string{p.defaultModel}
	}
	return names
}
