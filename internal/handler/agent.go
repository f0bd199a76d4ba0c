package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mangabot/manga/internal/agent"
)

// AgentCommands expose the conversational agent with per-channel memory.
func AgentCommands(svc *agent.Service) []*Command {
	return []*Command{
		{
			Name:        "chat",
			Aliases:     []string{"c"},
			Description: "Talk to the agent; it remembers this channel's conversation",
			Usage:       "<message>",
			Run: func(c *Context) error {
				message := strings.TrimSpace(c.Raw)
				if message == "" {
					return Userf("Say something.")
				}
				_ = c.Session.ChannelTyping(c.Message.ChannelID)
				reply, err := svc.Chat(c.Ctx, c.Message.ChannelID, message)
				if errors.Is(err, agent.ErrDisabled) {
					return Userf("The agent is not configured.")
				}
				if err != nil {
					return fmt.Errorf("agent chat: %w", err)
				}
				return c.Reply(reply)
			},
		},
		{
			Name:        "task",
			Description: "Give the agent a one-shot task with no memory",
			Usage:       "<task>",
			Run: func(c *Context) error {
				task := strings.TrimSpace(c.Raw)
				if task == "" {
					return Userf("What task?")
				}
				_ = c.Session.ChannelTyping(c.Message.ChannelID)
				reply, err := svc.Task(c.Ctx, task)
				if errors.Is(err, agent.ErrDisabled) {
					return Userf("The agent is not configured.")
				}
				if err != nil {
					return fmt.Errorf("agent task: %w", err)
				}
				return c.Reply(reply)
			},
		},
		{
			Name:        "clearchat",
			Description: "Forget this channel's conversation",
			Run: func(c *Context) error {
				if err := svc.Clear(c.Ctx, c.Message.ChannelID); err != nil {
					if errors.Is(err, agent.ErrDisabled) {
						return Userf("The agent is not configured.")
					}
					return fmt.Errorf("clearing history: %w", err)
				}
				return c.Reply("Forgotten.")
			},
		},
		{
			Name:        "models",
			Description: "Show which AI models I fall back through",
			Run: func(c *Context) error {
				return c.Reply(svc.ListModels())
			},
		},
	}
}
