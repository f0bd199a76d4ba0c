// Package agent exposes a general-purpose LLM agent over OpenRouter with
// per-user conversation memory kept in Redis.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mangabot/manga/internal/ai"
	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned when no OpenRouter key is configured.
var ErrDisabled = errors.New("llm agent is not configured; set OPENROUTER_API_KEY")

const (
	// maxHistoryTurns bounds the stored conversation per user.
	maxHistoryTurns = 20
	historyTTL      = 24 * time.Hour
)

type Service struct {
	provider *ai.ChatCompletionProvider
	rdb      *redis.Client
}

// NewService builds the agent. rdb may be nil, in which case chat runs
// without cross-message memory.
func NewService(provider *ai.ChatCompletionProvider, rdb *redis.Client) *Service {
	return &Service{provider: provider, rdb: rdb}
}

func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Prompt sends a single free-standing prompt.
func (s *Service) Prompt(ctx context.Context, message string) (string, error) {
	if s.provider == nil {
		return "", ErrDisabled
	}
	return s.provider.Complete(ctx, []ai.Message{
		{Role: "user", Content: message},
	})
}

// Task wraps the message with the agent task framing.
func (s *Service) Task(ctx context.Context, task string) (string, error) {
	prompt := fmt.Sprintf(
		"You are an AI agent assistant. Execute this task:\n\nTask: %s\n\nProvide a clear, actionable response. If the task requires multiple steps, list them clearly.",
		task,
	)
	return s.Prompt(ctx, prompt)
}

func historyKey(conversationID string) string {
	return "manga:agent:history:" + conversationID
}

// Chat continues the conversation identified by conversationID, loading
// and persisting the history in Redis.
func (s *Service) Chat(ctx context.Context, conversationID, message string) (string, error) {
	if s.provider == nil {
		return "", ErrDisabled
	}
	if s.rdb == nil {
		return s.Prompt(ctx, message)
	}

	key := historyKey(conversationID)
	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to load conversation history: %w", err)
	}

	history := make([]ai.Message, 0, len(raw)+1)
	for _, entry := range raw {
		var m ai.Message
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			continue
		}
		history = append(history, m)
	}
	history = append(history, ai.Message{Role: "user", Content: message})

	reply, err := s.provider.Complete(ctx, history)
	if err != nil {
		return "", err
	}

	userTurn, _ := json.Marshal(ai.Message{Role: "user", Content: message})
	assistantTurn, _ := json.Marshal(ai.Message{Role: "assistant", Content: reply})

	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, userTurn, assistantTurn)
		pipe.LTrim(ctx, key, int64(-2*maxHistoryTurns), -1)
		pipe.Expire(ctx, key, historyTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to persist conversation history: %w", err)
	}

	return reply, nil
}

// Clear deletes the stored conversation.
func (s *Service) Clear(ctx context.Context, conversationID string) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, historyKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// ListModels renders the free model table for the models command.
func (s *Service) ListModels() string {
	var b strings.Builder
	b.WriteString("**Free OpenRouter Models:**\n")
	current := ""
	if s.provider != nil {
		current = s.provider.Model()
	}
	for _, m := range ai.FreeOpenRouterModels {
		marker := "  "
		if m == current {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s`%s`\n", marker, m)
	}
	b.WriteString("\nSet model with `OPENROUTER_MODEL=model-name`")
	return b.String()
}
