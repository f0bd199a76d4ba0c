// Package handler routes prefix commands from Discord messages to their
// implementations and enforces per-guild permissions and overrides.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/ai"
	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/repository"
)

// Context carries everything a command invocation needs.
type Context struct {
	Ctx     context.Context
	Session *discordgo.Session
	Message *discordgo.MessageCreate
	Args    []string
	// Raw is the message content after the command name, untokenized.
	Raw string

	router *Router
}

// Arg returns the i-th argument or an empty string.
func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// RestFrom joins the arguments from index i onward.
func (c *Context) RestFrom(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// Reply sends plain text to the invoking channel.
func (c *Context) Reply(text string) error {
	msg, err := c.Session.ChannelMessageSend(c.Message.ChannelID, text)
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	c.router.scheduleLogDelete(c.Session, c.Message.ChannelID, msg.ID)
	return nil
}

// ReplyEmbed sends an embed to the invoking channel.
func (c *Context) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	msg, err := c.Session.ChannelMessageSendEmbed(c.Message.ChannelID, embed)
	if err != nil {
		return fmt.Errorf("sending embed reply: %w", err)
	}
	c.router.scheduleLogDelete(c.Session, c.Message.ChannelID, msg.ID)
	return nil
}

// FirstMention returns the first mentioned user, or nil.
func (c *Context) FirstMention() *discordgo.User {
	if len(c.Message.Mentions) == 0 {
		return nil
	}
	return c.Message.Mentions[0]
}

// RunFunc executes a command. Returning a *UserError shows the message to
// the invoker; any other error is logged and reported generically.
type RunFunc func(*Context) error

// Command is one registered prefix command.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Level       repository.Level
	Run         RunFunc
}

// Router dispatches prefix commands and the mention-to-chat fallback.
type Router struct {
	prefix         string
	auth           repository.AuthStore
	ai             *ai.Service
	logChannels    map[string]struct{}
	logDeleteAfter time.Duration

	commands map[string]*Command
	ordered  []*Command
}

func NewRouter(cfg *config.DiscordConfig, auth repository.AuthStore, aiSvc *ai.Service) *Router {
	return &Router{
		prefix:         cfg.Prefix,
		auth:           auth,
		ai:             aiSvc,
		logChannels:    cfg.LogChannelSet(),
		logDeleteAfter: time.Duration(cfg.LogAutoDeleteSeconds) * time.Second,
		commands:       make(map[string]*Command),
	}
}

// Register adds commands to the router. Aliases share the command entry.
func (r *Router) Register(cmds ...*Command) {
	for _, cmd := range cmds {
		r.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			r.commands[alias] = cmd
		}
		r.ordered = append(r.ordered, cmd)
	}
}

// Commands returns registered commands in registration order.
func (r *Router) Commands() []*Command {
	return r.ordered
}

// Lookup resolves a name or alias to its command.
func (r *Router) Lookup(name string) *Command {
	return r.commands[strings.ToLower(name)]
}

// MessageCreate is the discordgo handler entry point.
func (r *Router) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	blocked, err := r.auth.InList(ctx, m.GuildID, m.Author.ID, repository.ListBlacklist)
	if err != nil {
		slog.Error("blacklist lookup failed", "guildID", m.GuildID, "error", err)
	}
	if blocked {
		return
	}

	if !strings.HasPrefix(m.Content, r.prefix) {
		if r.mentionsBot(s, m) {
			r.chat(ctx, s, m)
		}
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, r.prefix))
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	cmd := r.Lookup(name)
	if cmd == nil {
		return
	}

	c := &Context{
		Ctx:     ctx,
		Session: s,
		Message: m,
		Args:    fields[1:],
		Raw:     strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(m.Content, r.prefix), fields[0])),
		router:  r,
	}

	level, err := repository.ResolveLevel(ctx, r.auth, m.GuildID, m.Author.ID)
	if err != nil {
		slog.Error("level lookup failed", "guildID", m.GuildID, "error", err)
		return
	}

	allowed, reason := r.checkOverride(ctx, m, cmd, level)
	if !allowed {
		if reason != "" {
			_ = c.Reply(reason)
		}
		return
	}

	if level < cmd.Level {
		_ = c.Reply(fmt.Sprintf("The `%s` command requires %s access.", cmd.Name, cmd.Level))
		return
	}

	if err := cmd.Run(c); err != nil {
		var userErr *UserError
		if asUserError(err, &userErr) {
			_ = c.Reply(userErr.Message)
			return
		}
		slog.Error("command failed", "command", cmd.Name, "guildID", m.GuildID, "error", err)
		_ = c.Reply("Something went wrong running that command.")
	}
}

// checkOverride applies per-guild command overrides. Admins and above
// bypass disables.
func (r *Router) checkOverride(
	ctx context.Context,
	m *discordgo.MessageCreate,
	cmd *Command,
	level repository.Level,
) (bool, string) {
	override, err := r.auth.Override(ctx, m.GuildID, cmd.Name)
	if err != nil {
		slog.Error("override lookup failed", "guildID", m.GuildID, "command", cmd.Name, "error", err)
		return true, ""
	}
	if override == nil {
		return true, ""
	}

	if !override.Enabled && level < repository.LevelAdmin {
		return false, fmt.Sprintf("The `%s` command is disabled on this server.", cmd.Name)
	}

	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}
	if !override.Allows(m.Author.ID, roles) && level < repository.LevelAdmin {
		return false, "You are not allowed to use that command."
	}
	return true, ""
}

func (r *Router) mentionsBot(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if s.State.User == nil {
		return false
	}
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			return true
		}
	}
	return false
}

// chat answers a mention with the AI persona.
func (r *Router) chat(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if !r.ai.Enabled() {
		return
	}

	content := m.Content
	for _, u := range m.Mentions {
		content = strings.ReplaceAll(content, "<@"+u.ID+">", "")
		content = strings.ReplaceAll(content, "<@!"+u.ID+">", "")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	_ = s.ChannelTyping(m.ChannelID)
	reply, err := r.ai.ChatResponse(ctx, m.Author.Username, content)
	if err != nil {
		slog.Error("chat response failed", "guildID", m.GuildID, "error", err)
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		slog.Warn("failed to send chat reply", "guildID", m.GuildID, "error", err)
	}
}

// scheduleLogDelete removes bot messages from log channels after the
// configured delay.
func (r *Router) scheduleLogDelete(s *discordgo.Session, channelID, messageID string) {
	if r.logDeleteAfter <= 0 || len(r.logChannels) == 0 {
		return
	}
	channel, err := s.State.Channel(channelID)
	if err != nil {
		channel, err = s.Channel(channelID)
		if err != nil {
			return
		}
	}
	if _, ok := r.logChannels[strings.ToLower(channel.Name)]; !ok {
		return
	}
	go func() {
		time.Sleep(r.logDeleteAfter)
		if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
			slog.Debug("log cleanup delete failed", "channelID", channelID, "error", err)
		}
	}()
}

// NewSession builds a discordgo session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent
	s.State.TrackVoice = true
	return s, nil
}
