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

	"github.com/alexhq/alex-backend/internal/apierr"
)

// Wire types for the OpenAI chat-completions format, shared by every backend
// that speaks it.

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// buildMessages assembles the message list in the order system prompt,
// prior history, then the current user turn.
func buildMessages(prompt string, opts ChatOptions) []Message {
	messages := make([]Message, 0, len(opts.History)+2)
	if opts.SystemMessage != "" {
		messages = append(messages, Message{Role: "system", Content: opts.SystemMessage})
	}
	messages = append(messages, opts.History...)
	messages = append(messages, Message{Role: "user", Content: prompt})
	return messages
}

func postChatCompletion(ctx context.Context, client *http.Client, name, url, apiKey string, reqBody chatCompletionRequest) (*chatCompletionResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("Failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("Failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, mapTransportError(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apierr.Provider(resp.StatusCode, "%s error: %s", name, strings.TrimSpace(string(body)))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apierr.Provider(http.StatusBadGateway, "%s returned malformed response: %v", name, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, apierr.Provider(http.StatusBadGateway, "%s returned no choices", name)
	}
	return &parsed, nil
}

// streamChatCompletion reads an SSE stream of chat-completion chunks. Lines
// that fail to parse are skipped; "[DONE]" terminates the stream.
func streamChatCompletion(ctx context.Context, client *http.Client, name, url, apiKey string, reqBody chatCompletionRequest, onChunk func(chunk string) error) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("Failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("Failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return mapTransportError(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apierr.Provider(resp.StatusCode, "%s error: %s", name, strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return nil
		}
		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := onChunk(content); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return mapTransportError(name, err)
	}
	return nil
}
