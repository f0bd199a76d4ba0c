package handler

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/presenters"
	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/util"
	"github.com/mangabot/manga/internal/voice"
)

// TrollCommands are mischief commands gated to trusted users. The sound
// argument may be nil when no blob storage is configured.
func TrollCommands(vh *voice.Handler, sb *Sounds) []*Command {
	return []*Command{
		{
			Name:        "jumpscare",
			Description: "Join the loudest channel and play a scare sound",
			Usage:       "[sound]",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				if sb == nil {
					return Userf("The soundboard is not configured.")
				}
				name := c.Arg(0)
				if name == "" {
					name = "jumpscare"
				}

				// Follow the target user's channel if mentioned,
				// otherwise use the invoker's.
				targetID := c.Message.Author.ID
				if u := c.FirstMention(); u != nil {
					targetID = u.ID
				}
				channelID, err := memberVoiceChannel(c.Session, c.Message.GuildID, targetID)
				if err != nil {
					return err
				}
				if channelID == "" {
					return Userf("Nobody to scare there.")
				}
				if err := vh.Join(c.Message.GuildID, channelID, c.Message.ChannelID); err != nil {
					return err
				}
				return sb.Play(c.Ctx, c.Message.GuildID, name)
			},
		},
		{
			Name:        "mock",
			Description: "Repeat the last message in mocking case",
			Run: func(c *Context) error {
				messages, err := c.Session.ChannelMessages(c.Message.ChannelID, 1, c.Message.ID, "", "")
				if err != nil || len(messages) == 0 {
					return Userf("Nothing to mock.")
				}
				mocked := util.MockCase(messages[0].Content)
				if mocked == "" {
					return Userf("Nothing to mock.")
				}
				return c.Reply(mocked)
			},
		},
		{
			Name:        "fliptable",
			Description: "Flip a table",
			Run: func(c *Context) error {
				return c.Reply("(╯°□°)╯︵ ┻━┻")
			},
		},
		{
			Name:        "ghostping",
			Description: "Ping someone and delete the evidence",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to ghost ping.")
				}
				msg, err := c.Session.ChannelMessageSend(c.Message.ChannelID, user.Mention())
				if err != nil {
					return fmt.Errorf("sending ping: %w", err)
				}
				if err := c.Session.ChannelMessageDelete(c.Message.ChannelID, msg.ID); err != nil {
					return fmt.Errorf("deleting ping: %w", err)
				}
				return c.Session.ChannelMessageDelete(c.Message.ChannelID, c.Message.ID)
			},
		},
		{
			Name:        "fakeban",
			Description: "Send a fake ban announcement",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to fake-ban.")
				}
				return c.ReplyEmbed(&discordgo.MessageEmbed{
					Title:       "🚨 USER BANNED 🚨",
					Description: fmt.Sprintf("**%s** has been banned from the server!", user.Username),
					Color:       presenters.ColorWarning,
					Footer: &discordgo.MessageEmbedFooter{
						Text: "Reason: Being too cool (just kidding)",
					},
				})
			},
		},
		{
			Name:        "slap",
			Description: "Slap someone",
			Usage:       "@user",
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to slap.")
				}
				return c.Reply(fmt.Sprintf("**%s** slaps **%s**! 👋", c.Message.Author.Username, user.Username))
			},
		},
		{
			Name:        "mimic",
			Description: "Copy a member's nickname",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to mimic.")
				}
				name := user.Username
				if member, err := c.Session.State.Member(c.Message.GuildID, user.ID); err == nil && member.Nick != "" {
					name = member.Nick
				}
				if err := c.Session.GuildMemberNickname(c.Message.GuildID, "@me", name); err != nil {
					return fmt.Errorf("changing nickname: %w", err)
				}
				return c.Reply(fmt.Sprintf("🥸 I am now **%s**!", name))
			},
		},
		{
			Name:        "sayas",
			Description: "Make me say something and delete the evidence",
			Usage:       "<text>",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				if c.Raw == "" {
					return Userf("Say what?")
				}
				if err := c.Session.ChannelMessageDelete(c.Message.ChannelID, c.Message.ID); err != nil {
					return fmt.Errorf("deleting invocation: %w", err)
				}
				return c.Reply(c.Raw)
			},
		},
	}
}
