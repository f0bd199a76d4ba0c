package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// AIConfig selects and configures the chat model providers.
// Provider is one of auto, gemini, groq, openrouter. In auto mode the
// service prefers Gemini, then Groq, then OpenRouter.
type AIConfig struct {
	Provider string `env:"AI_PROVIDER, default=auto"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL, default=gemini-1.5-flash"`

	GroqAPIKey string `env:"GROQ_API_KEY"`
	GroqModel  string `env:"GROQ_MODEL, default=llama3-8b-8192"`

	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `env:"OPENROUTER_MODEL"`
}

func NewAIConfigFromEnv() (*AIConfig, error) {
	var cfg AIConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
