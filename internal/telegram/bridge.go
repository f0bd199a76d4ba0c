// Package telegram bridges the bot to Telegram: status commands, voice
// channel control, and AI chat from a Telegram conversation.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mangabot/manga/internal/ai"
	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/voice"
)

// DiscordStatus reports the Discord side of the bridge.
type DiscordStatus interface {
	// Connected reports whether the Discord session is up and how many
	// guilds it sees.
	Connected() (bool, int)
}

// Bridge relays Telegram messages to the bot's services.
type Bridge struct {
	bot     *tgbotapi.BotAPI
	ai      *ai.Service
	voice   *voice.Handler
	discord DiscordStatus
	started time.Time

	// homeGuildID is the guild that /join and /leave act on. The first
	// guild the Discord session reports is used.
	homeGuildID func() string
}

func NewBridge(
	cfg *config.TelegramConfig,
	aiSvc *ai.Service,
	vh *voice.Handler,
	discord DiscordStatus,
	homeGuildID func() string,
) (*Bridge, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	if cfg.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.WebhookURL)
		if err != nil {
			return nil, fmt.Errorf("building webhook config: %w", err)
		}
		if _, err := bot.Request(wh); err != nil {
			return nil, fmt.Errorf("registering webhook: %w", err)
		}
		slog.Info("telegram webhook registered", "url", cfg.WebhookURL)
	} else if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		slog.Warn("failed to clear telegram webhook", "error", err)
	}

	return &Bridge{
		bot:         bot,
		ai:          aiSvc,
		voice:       vh,
		discord:     discord,
		started:     time.Now(),
		homeGuildID: homeGuildID,
	}, nil
}

// Run long-polls for updates until the context is canceled. Do not call
// it when a webhook is registered; route updates through HandleUpdate
// instead.
func (b *Bridge) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.bot.GetUpdatesChan(cfg)
	slog.Info("telegram bridge polling", "username", b.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update, from polling or the webhook.
func (b *Bridge) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	var reply string
	if msg.IsCommand() {
		reply = b.runCommand(ctx, msg)
	} else {
		reply = b.chat(ctx, msg)
	}
	if reply == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.bot.Send(out); err != nil {
		slog.Error("telegram send failed", "chatID", msg.Chat.ID, "error", err)
	}
}

func (b *Bridge) runCommand(ctx context.Context, msg *tgbotapi.Message) string {
	switch msg.Command() {
	case "start":
		return "Hello. I am Manga, a Discord voice assistant. Use /help to see what I can do from here."
	case "help":
		return strings.Join([]string{
			"/status - Discord connection status",
			"/ping - check that I am alive",
			"/join - join my home voice channel",
			"/leave - leave the voice channel",
			"/say <text> - speak in the voice channel",
			"Anything else is a chat message for the AI.",
		}, "\n")
	case "ping":
		return "Pong."
	case "status":
		connected, guilds := b.discord.Connected()
		state := "disconnected"
		if connected {
			state = fmt.Sprintf("connected to %d servers", guilds)
		}
		return fmt.Sprintf("Discord: %s. Up for %s.", state, time.Since(b.started).Round(time.Second))
	case "join":
		guildID := b.homeGuildID()
		if guildID == "" {
			return "I am not in any Discord server."
		}
		channelID, err := b.voice.FindHomeChannel(guildID)
		if err != nil {
			return "I could not find my home voice channel."
		}
		if err := b.voice.Join(guildID, channelID, ""); err != nil {
			slog.Error("telegram-initiated join failed", "error", err)
			return "Joining failed."
		}
		return "Joined the voice channel."
	case "leave":
		guildID := b.homeGuildID()
		if guildID == "" {
			return "I am not in any Discord server."
		}
		if err := b.voice.Leave(guildID, true); err != nil {
			slog.Error("telegram-initiated leave failed", "error", err)
			return "Leaving failed."
		}
		return "Left the voice channel."
	case "say":
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			return "Say what? /say hello"
		}
		guildID := b.homeGuildID()
		vc := b.voice.Connection(guildID)
		if vc == nil {
			return "I am not in a voice channel."
		}
		if err := b.voice.Say(ctx, guildID, text); err != nil {
			slog.Error("telegram-initiated say failed", "error", err)
			return "Speaking failed."
		}
		return "Said it."
	default:
		return "Unknown command. Try /help."
	}
}

func (b *Bridge) chat(ctx context.Context, msg *tgbotapi.Message) string {
	if !b.ai.Enabled() {
		return "My AI brain is not configured."
	}
	username := msg.From.UserName
	if username == "" {
		username = msg.From.FirstName
	}
	reply, err := b.ai.ChatResponse(ctx, username, msg.Text)
	if err != nil {
		slog.Error("telegram chat failed", "error", err)
		return "I have nothing to say right now."
	}
	return reply
}
