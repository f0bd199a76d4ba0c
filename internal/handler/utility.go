package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/ai"
	"github.com/mangabot/manga/internal/presenters"
	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/util"
)

// UtilityCommands are informational and text-transforming commands.
func UtilityCommands(store repository.AuthStore, aiSvc *ai.Service, startedAt time.Time) []*Command {
	aiCommand := func(name, description, usage string, prompt func(c *Context) (string, error), aliases ...string) *Command {
		return &Command{
			Name:        name,
			Aliases:     aliases,
			Description: description,
			Usage:       usage,
			Run: func(c *Context) error {
				if aiSvc == nil || !aiSvc.Enabled() {
					return Userf("AI is not available.")
				}
				p, err := prompt(c)
				if err != nil {
					return err
				}
				_ = c.Session.ChannelTyping(c.Message.ChannelID)
				reply, err := aiSvc.Generate(c.Ctx, p)
				if err != nil {
					return fmt.Errorf("generating reply: %w", err)
				}
				if len(reply) > 2000 {
					reply = reply[:2000]
				}
				return c.Reply(reply)
			},
		}
	}
	textCommand := func(name, description string, transform func(string) string) *Command {
		return &Command{
			Name:        name,
			Description: description,
			Usage:       "<text>",
			Run: func(c *Context) error {
				text := strings.TrimSpace(c.Raw)
				if text == "" {
					return Userf("Give me some text.")
				}
				out := transform(text)
				if len(out) > 2000 {
					out = out[:2000]
				}
				return c.Reply(out)
			},
		}
	}

	return []*Command{
		{
			Name:        "ping",
			Description: "Check that I am alive",
			Run: func(c *Context) error {
				latency := c.Session.HeartbeatLatency()
				return c.Reply(fmt.Sprintf("Pong! %dms", latency.Milliseconds()))
			},
		},
		{
			Name:        "whois",
			Aliases:     []string{"userinfo"},
			Description: "Show info about a member",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				userID := c.Message.Author.ID
				if u := c.FirstMention(); u != nil {
					userID = u.ID
				}
				member, err := c.Session.GuildMember(c.Message.GuildID, userID)
				if err != nil {
					return fmt.Errorf("fetching member: %w", err)
				}
				level, err := repository.ResolveLevel(c.Ctx, store, c.Message.GuildID, userID)
				if err != nil {
					return fmt.Errorf("resolving level: %w", err)
				}
				return c.ReplyEmbed(presenters.BuildWhoisEmbed(member, level))
			},
		},
		{
			Name:        "serverinfo",
			Aliases:     []string{"server"},
			Description: "Show info about this server",
			Run: func(c *Context) error {
				guild, err := c.Session.State.Guild(c.Message.GuildID)
				if err != nil {
					guild, err = c.Session.Guild(c.Message.GuildID)
					if err != nil {
						return fmt.Errorf("fetching guild: %w", err)
					}
				}
				return c.ReplyEmbed(presenters.BuildServerInfoEmbed(guild))
			},
		},
		{
			Name:        "avatar",
			Description: "Show a member's avatar",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				user := c.Message.Author
				if u := c.FirstMention(); u != nil {
					user = u
				}
				return c.Reply(user.AvatarURL("1024"))
			},
		},
		{
			Name:        "uptime",
			Description: "How long I have been running",
			Run: func(c *Context) error {
				return c.Reply("Up for " + time.Since(startedAt).Round(time.Second).String() + ".")
			},
		},
		{
			Name:        "poll",
			Description: "Start a thumbs-up/down poll",
			Usage:       "<question>",
			Run: func(c *Context) error {
				question := strings.TrimSpace(c.Raw)
				if question == "" {
					return Userf("Poll about what?")
				}
				msg, err := c.Session.ChannelMessageSendEmbed(c.Message.ChannelID, &discordgo.MessageEmbed{
					Title:       "📊 Poll",
					Description: question,
					Color:       presenters.ColorInfo,
					Footer: &discordgo.MessageEmbedFooter{
						Text: "Asked by " + c.Message.Author.Username,
					},
				})
				if err != nil {
					return fmt.Errorf("sending poll: %w", err)
				}
				for _, emoji := range []string{"👍", "👎"} {
					if err := c.Session.MessageReactionAdd(c.Message.ChannelID, msg.ID, emoji); err != nil {
						return fmt.Errorf("adding poll reaction: %w", err)
					}
				}
				return nil
			},
		},
		aiCommand("gpt", "Ask the AI a question", "<question>", func(c *Context) (string, error) {
			text := strings.TrimSpace(c.Raw)
			if text == "" {
				return "", Userf("Ask me something.")
			}
			return fmt.Sprintf(
				"You are Manga, a friendly Discord bot assistant.\nUser '%s' asks: %q\nAnswer helpfully and concisely.",
				c.Message.Author.Username, text,
			), nil
		}, "ai", "ask"),
		aiCommand("translate", "Translate text to another language", "<lang> <text>", func(c *Context) (string, error) {
			lang := c.Arg(0)
			text := c.RestFrom(1)
			if lang == "" || strings.TrimSpace(text) == "" {
				return "", Userf("Try `translate french good morning`.")
			}
			return fmt.Sprintf("Translate this to %s, reply with only the translation: %q", lang, text), nil
		}),
		aiCommand("define", "Define a word", "<word>", func(c *Context) (string, error) {
			word := strings.TrimSpace(c.Raw)
			if word == "" {
				return "", Userf("Define what?")
			}
			return fmt.Sprintf("Define %q concisely.", word), nil
		}),
		aiCommand("urban", "Slang definition of a word", "<word>", func(c *Context) (string, error) {
			word := strings.TrimSpace(c.Raw)
			if word == "" {
				return "", Userf("Define what?")
			}
			return fmt.Sprintf("Give a funny Urban Dictionary style definition for %q. Keep it clean.", word), nil
		}),
		{
			Name:        "math",
			Aliases:     []string{"calc"},
			Description: "Evaluate an arithmetic expression",
			Usage:       "<expression>",
			Run: func(c *Context) error {
				expr := strings.TrimSpace(c.Raw)
				if expr == "" {
					return Userf("Give me an expression, like `math (2+3)*4`.")
				}
				result, err := util.EvalArithmetic(expr)
				if err != nil {
					return Userf("I can't evaluate `%s`.", expr)
				}
				return c.Reply(fmt.Sprintf("🧮 %s", util.FormatNumber(result)))
			},
		},
		textCommand("emojify", "Rewrite text as emoji letters", util.Emojify),
		textCommand("morse", "Encode text as morse code", util.Morse),
		textCommand("flip", "Turn text upside down", util.Flip),
		textCommand("scramble", "Shuffle the middle of every word", util.Scramble),
	}
}
