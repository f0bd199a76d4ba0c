package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mangabot/manga/internal/config"
)

// Service routes prompts to the configured providers, falling back down
// the chain when the preferred one errors.
type Service struct {
	providers []Provider
}

// NewServiceFromConfig builds the provider chain. In auto mode the order
// is Gemini, Groq, OpenRouter; naming a provider moves it to the front.
func NewServiceFromConfig(ctx context.Context, cfg *config.AIConfig) *Service {
	var gemini, groq, openrouter Provider

	if cfg.GeminiAPIKey != "" {
		p, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("failed to init gemini provider", "error", err)
		} else {
			gemini = p
		}
	}
	if cfg.GroqAPIKey != "" {
		groq = NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, nil)
	}
	if cfg.OpenRouterAPIKey != "" {
		openrouter = NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, nil)
	}

	var chain []Provider
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "groq":
		chain = orderProviders(groq, openrouter, gemini)
	case "openrouter", "or":
		chain = orderProviders(openrouter, groq, gemini)
	case "gemini", "google":
		chain = orderProviders(gemini, groq, openrouter)
	default:
		// Auto mode: Gemini -> Groq -> OpenRouter.
		chain = orderProviders(gemini, groq, openrouter)
	}

	svc := &Service{providers: chain}
	if len(chain) == 0 {
		slog.Warn("no AI provider configured; chat features disabled")
	} else {
		slog.Info("AI service initialized", "provider", chain[0].Name(), "fallbacks", len(chain)-1)
	}
	return svc
}

// NewAgentProvider picks the chat-completion provider the agent uses for
// multi-turn conversations. Groq wins when configured; OpenRouter covers
// the rest. Gemini is excluded because the agent needs the raw message
// history interface.
func NewAgentProvider(cfg *config.AIConfig) *ChatCompletionProvider {
	if cfg.GroqAPIKey != "" {
		return NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, nil)
	}
	if cfg.OpenRouterAPIKey != "" {
		return NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, nil)
	}
	return nil
}

// NewService builds a service from an explicit provider chain, primarily
// for tests.
func NewService(providers ...Provider) *Service {
	return &Service{providers: providers}
}

func orderProviders(providers ...Provider) []Provider {
	var chain []Provider
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return chain
}

// Enabled reports whether any provider is usable.
func (s *Service) Enabled() bool {
	return len(s.providers) > 0
}

// ProviderName names the preferred provider, or "none".
func (s *Service) ProviderName() string {
	if len(s.providers) == 0 {
		return "none"
	}
	return s.providers[0].Name()
}

// Generate runs the prompt through the provider chain.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if len(s.providers) == 0 {
		return "", ErrDisabled
	}

	var errs []error
	for _, p := range s.providers {
		text, err := p.Generate(ctx, SystemPrompt, prompt)
		if err == nil {
			return text, nil
		}
		slog.Warn("provider failed, trying next", "provider", p.Name(), "error", err)
		errs = append(errs, err)
	}
	return "", fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}

// ChatResponse answers a text-channel message in persona.
func (s *Service) ChatResponse(ctx context.Context, username, message string) (string, error) {
	prompt := fmt.Sprintf(
		"You are Manga, a friendly Discord bot assistant.\nUser '%s' says: %q\nReply helpfully and concisely (1-2 sentences).",
		username, message,
	)
	return s.Generate(ctx, prompt)
}

// VoiceResponse answers a transcribed voice utterance, kept short for TTS.
func (s *Service) VoiceResponse(ctx context.Context, username, speech string) (string, error) {
	prompt := fmt.Sprintf(
		"You are Manga, a voice assistant in a Discord voice chat.\nUser '%s' said: %q\nReply conversationally in 1-2 short sentences. Be friendly and natural.",
		username, speech,
	)
	return s.Generate(ctx, prompt)
}
