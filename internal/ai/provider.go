package ai

import (
	"context"
	"errors"
)

// ErrDisabled is returned when no provider has an API key configured.
var ErrDisabled = errors.New("ai service is not configured")

// Provider generates a completion for a prompt. Implementations wrap one
// upstream model API.
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// SystemPrompt is the Manga persona applied to every request.
const SystemPrompt = "You are Manga, a Discord bot assistant. " +
	"Be accurate, concise, and action-oriented."
