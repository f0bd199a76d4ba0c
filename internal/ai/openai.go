package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	GroqBaseURL       = "https://api.groq.com/openai/v1"
)

// FreeOpenRouterModels are models usable without API credits, tried in
// order when the configured model fails.
var FreeOpenRouterModels = []string{
	"deepseek/deepseek-chat",
	"meta-llama/llama-3.1-8b-instruct:free",
	"qwen/qwen-2-7b-instruct:free",
	"mistralai/mistral-7b-instruct:free",
}

// HTTPClient is an abstraction for making HTTP requests.
// The implementation is usually Go's stdlib http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatCompletionProvider speaks the OpenAI-compatible chat completions
// protocol. Both OpenRouter and Groq expose it.
type ChatCompletionProvider struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	fallbacks  []string
	httpClient HTTPClient
}

func NewOpenRouterProvider(apiKey, model string, httpClient HTTPClient) *ChatCompletionProvider {
	if model == "" {
		model = FreeOpenRouterModels[0]
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatCompletionProvider{
		name:       "openrouter",
		baseURL:    OpenRouterBaseURL,
		apiKey:     apiKey,
		model:      model,
		fallbacks:  FreeOpenRouterModels,
		httpClient: httpClient,
	}
}

func NewGroqProvider(apiKey, model string, httpClient HTTPClient) *ChatCompletionProvider {
	if model == "" {
		model = "llama3-8b-8192"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatCompletionProvider{
		name:       "groq",
		baseURL:    GroqBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

var _ Provider = (*ChatCompletionProvider)(nil)

func (p *ChatCompletionProvider) Name() string { return p.name }

// Model returns the primary model the provider targets.
func (p *ChatCompletionProvider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *ChatCompletionProvider) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	text, err := p.complete(ctx, p.model, messages)
	if err == nil {
		return text, nil
	}

	// Walk the free-model fallback list, skipping the one that failed.
	for _, model := range p.fallbacks {
		if model == p.model {
			continue
		}
		if text, ferr := p.complete(ctx, model, messages); ferr == nil {
			return text, nil
		}
	}
	return "", err
}

// Complete runs a raw multi-turn conversation against the primary model.
// Used by the agent service, which manages its own history.
func (p *ChatCompletionProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	converted := make([]chatMessage, len(messages))
	for i, m := range messages {
		converted[i] = chatMessage(m)
	}
	return p.complete(ctx, p.model, converted)
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *ChatCompletionProvider) complete(ctx context.Context, model string, messages []chatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%s returned status %d: %s", p.name, resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode %s response: %w", p.name, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}
	return parsed.Choices[0].Message.Content, nil
}
