package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mangabot/manga/internal/generator"
	"github.com/mangabot/manga/internal/presenters"
	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/schedule"
)

const maxPurge = 100

// AdminCommands covers moderation and scheduling.
func AdminCommands(reminders repository.ReminderStore, ids generator.Generator[string]) []*Command {
	return []*Command{
		{
			Name:        "purge",
			Aliases:     []string{"clear"},
			Description: "Delete recent messages in this channel",
			Usage:       "<count>",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				count, err := strconv.Atoi(c.Arg(0))
				if err != nil || count < 1 {
					return Userf("How many? Try `purge 10`.")
				}
				if count > maxPurge {
					count = maxPurge
				}
				messages, err := c.Session.ChannelMessages(c.Message.ChannelID, count, c.Message.ID, "", "")
				if err != nil {
					return fmt.Errorf("listing messages: %w", err)
				}
				ids := make([]string, 0, len(messages)+1)
				ids = append(ids, c.Message.ID)
				for _, m := range messages {
					ids = append(ids, m.ID)
				}
				if err := c.Session.ChannelMessagesBulkDelete(c.Message.ChannelID, ids); err != nil {
					return fmt.Errorf("bulk delete: %w", err)
				}
				return nil
			},
		},
		{
			Name:        "timeout",
			Description: "Time a member out",
			Usage:       "@user <minutes>",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to time out.")
				}
				minutes, err := strconv.Atoi(c.Arg(1))
				if err != nil || minutes < 1 {
					minutes = 5
				}
				until := time.Now().Add(time.Duration(minutes) * time.Minute)
				if err := c.Session.GuildMemberTimeout(c.Message.GuildID, user.ID, &until); err != nil {
					return fmt.Errorf("timing out member: %w", err)
				}
				return c.Reply(fmt.Sprintf("Timed out %s for %d minutes.", user.Username, minutes))
			},
		},
		{
			Name:        "kick",
			Description: "Kick a member from the server",
			Usage:       "@user [reason]",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to kick.")
				}
				reason := c.RestFrom(1)
				if err := c.Session.GuildMemberDeleteWithReason(c.Message.GuildID, user.ID, reason); err != nil {
					return fmt.Errorf("kicking member: %w", err)
				}
				return c.Reply(fmt.Sprintf("Kicked %s.", user.Username))
			},
		},
		{
			Name:        "untimeout",
			Description: "Remove a member's timeout",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone.")
				}
				if err := c.Session.GuildMemberTimeout(c.Message.GuildID, user.ID, nil); err != nil {
					return fmt.Errorf("clearing timeout: %w", err)
				}
				return c.Reply(fmt.Sprintf("%s is no longer timed out.", user.Username))
			},
		},
		{
			Name:        "ban",
			Description: "Ban a member from the server",
			Usage:       "@user [reason]",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to ban.")
				}
				reason := c.RestFrom(1)
				if err := c.Session.GuildBanCreateWithReason(c.Message.GuildID, user.ID, reason, 0); err != nil {
					return fmt.Errorf("banning member: %w", err)
				}
				return c.Reply(fmt.Sprintf("Banned %s.", user.Username))
			},
		},
		{
			Name:        "unban",
			Description: "Unban a user by ID",
			Usage:       "<user-id>",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				userID := c.Arg(0)
				if userID == "" {
					return Userf("Give me the user ID to unban.")
				}
				if err := c.Session.GuildBanDelete(c.Message.GuildID, userID); err != nil {
					return Userf("Could not unban `%s`. Is the ID on the ban list?", userID)
				}
				return c.Reply("Unbanned.")
			},
		},
		{
			Name:        "move",
			Description: "Move a member to your voice channel",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to move.")
				}
				channelID, err := memberVoiceChannel(c.Session, c.Message.GuildID, c.Message.Author.ID)
				if err != nil {
					return err
				}
				if channelID == "" {
					return Userf("Join a voice channel first.")
				}
				if err := c.Session.GuildMemberMove(c.Message.GuildID, user.ID, &channelID); err != nil {
					return fmt.Errorf("moving member: %w", err)
				}
				return c.Reply(fmt.Sprintf("Moved %s.", user.Username))
			},
		},
		{
			Name:        "muteall",
			Description: "Server-mute everyone in your voice channel",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				return setChannelMute(c, true)
			},
		},
		{
			Name:        "unmuteall",
			Description: "Unmute everyone in your voice channel",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				return setChannelMute(c, false)
			},
		},
		{
			Name:        "deafen",
			Description: "Server-deafen a member in voice",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				return setServerDeaf(c, true)
			},
		},
		{
			Name:        "undeafen",
			Description: "Remove a member's server deafen",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				return setServerDeaf(c, false)
			},
		},
		{
			Name:        "addrole",
			Description: "Give a member a role",
			Usage:       "@user @role",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				return changeRole(c, true)
			},
		},
		{
			Name:        "removerole",
			Description: "Take a role from a member",
			Usage:       "@user @role",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				return changeRole(c, false)
			},
		},
		{
			Name:        "dm",
			Description: "Send a member a direct message",
			Usage:       "@user <message>",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				user := c.FirstMention()
				if user == nil {
					return Userf("Mention someone to message.")
				}
				text := c.RestFrom(1)
				if strings.TrimSpace(text) == "" {
					return Userf("The message is empty.")
				}
				channel, err := c.Session.UserChannelCreate(user.ID)
				if err != nil {
					return fmt.Errorf("opening DM channel: %w", err)
				}
				if _, err := c.Session.ChannelMessageSend(channel.ID, text); err != nil {
					return fmt.Errorf("sending DM: %w", err)
				}
				return c.Reply(fmt.Sprintf("Sent a DM to %s.", user.Username))
			},
		},
		{
			Name:        "vmute",
			Description: "Server-mute a member in voice",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				return setServerMute(c, true)
			},
		},
		{
			Name:        "vunmute",
			Description: "Remove a member's server voice mute",
			Usage:       "@user",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				return setServerMute(c, false)
			},
		},
		{
			Name:        "remind",
			Aliases:     []string{"remindme"},
			Description: "Schedule a reminder in this channel",
			Usage:       "in 10m <message> | at 15:04 <message>",
			Run: func(c *Context) error {
				when, message, err := splitReminder(c.Raw)
				if err != nil {
					return err
				}
				runAt, err := schedule.ParseWhen(when, time.Now())
				if err != nil {
					return Userf("I do not understand `%s`. Try `remind in 10m take a break`.", when)
				}
				id, err := ids.Next()
				if err != nil {
					return fmt.Errorf("generating reminder ID: %w", err)
				}
				err = reminders.Save(c.Ctx, repository.Reminder{
					ID:        id,
					GuildID:   c.Message.GuildID,
					ChannelID: c.Message.ChannelID,
					UserID:    c.Message.Author.ID,
					Message:   message,
					RunTime:   runAt.UTC(),
				})
				if err != nil {
					return fmt.Errorf("saving reminder: %w", err)
				}
				return c.Reply(fmt.Sprintf("Reminder set for %s.", runAt.UTC().Format(time.RFC822)))
			},
		},
		{
			Name:        "reminders",
			Description: "List upcoming reminders for this server",
			Run: func(c *Context) error {
				upcoming, err := reminders.ListUpcoming(c.Ctx, c.Message.GuildID)
				if err != nil {
					return fmt.Errorf("listing reminders: %w", err)
				}
				return c.ReplyEmbed(presenters.BuildReminderEmbed(upcoming))
			},
		},
		{
			Name:        "announce",
			Description: "Schedule a recurring announcement in this channel",
			Usage:       "<cron> | <message>",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				parts := strings.SplitN(c.Raw, "|", 2)
				if len(parts) != 2 {
					return Userf("Try `announce 0 9 * * 1 | weekly standup`.")
				}
				cron := strings.TrimSpace(parts[0])
				message := strings.TrimSpace(parts[1])
				if err := schedule.ValidateCron(cron); err != nil {
					return Userf("Invalid cron expression `%s`.", cron)
				}
				if message == "" {
					return Userf("The announcement needs a message.")
				}

				// Persist the next occurrence; the pump re-arms it on
				// delivery via the stored cron suffix.
				next, err := schedule.NextRunTimes(cron, 1)
				if err != nil {
					return Userf("Invalid cron expression `%s`.", cron)
				}
				if len(next) == 0 {
					return Userf("`%s` never runs again. Check the year field.", cron)
				}
				id, err := ids.Next()
				if err != nil {
					return fmt.Errorf("generating announcement ID: %w", err)
				}
				err = reminders.Save(c.Ctx, repository.Reminder{
					ID:        id,
					GuildID:   c.Message.GuildID,
					ChannelID: c.Message.ChannelID,
					UserID:    c.Message.Author.ID,
					Message:   message + schedule.CronSuffix + cron,
					RunTime:   next[0],
				})
				if err != nil {
					return fmt.Errorf("saving announcement: %w", err)
				}
				return c.Reply(fmt.Sprintf("Announcement scheduled, first run %s.", next[0].Format(time.RFC822)))
			},
		},
	}
}

// setChannelMute server-mutes or unmutes every non-bot member sharing the
// invoker's voice channel.
func setChannelMute(c *Context, mute bool) error {
	channelID, err := memberVoiceChannel(c.Session, c.Message.GuildID, c.Message.Author.ID)
	if err != nil {
		return err
	}
	if channelID == "" {
		return Userf("Join a voice channel first.")
	}

	guild, err := c.Session.State.Guild(c.Message.GuildID)
	if err != nil {
		return fmt.Errorf("guild state: %w", err)
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		if member, err := c.Session.State.Member(c.Message.GuildID, vs.UserID); err == nil && member.User != nil && member.User.Bot {
			continue
		}
		if err := c.Session.GuildMemberMute(c.Message.GuildID, vs.UserID, mute); err == nil {
			count++
		}
	}

	if mute {
		return c.Reply(fmt.Sprintf("Muted %d members.", count))
	}
	return c.Reply(fmt.Sprintf("Unmuted %d members.", count))
}

func setServerDeaf(c *Context, deaf bool) error {
	user := c.FirstMention()
	if user == nil {
		return Userf("Mention someone.")
	}
	if err := c.Session.GuildMemberDeafen(c.Message.GuildID, user.ID, deaf); err != nil {
		return fmt.Errorf("setting server deafen: %w", err)
	}
	if deaf {
		return c.Reply(fmt.Sprintf("Deafened %s.", user.Username))
	}
	return c.Reply(fmt.Sprintf("Undeafened %s.", user.Username))
}

// changeRole adds or removes the first mentioned role on the first
// mentioned user.
func changeRole(c *Context, add bool) error {
	user := c.FirstMention()
	if user == nil {
		return Userf("Mention a user.")
	}
	if len(c.Message.MentionRoles) == 0 {
		return Userf("Mention the role as well.")
	}
	roleID := c.Message.MentionRoles[0]

	var err error
	if add {
		err = c.Session.GuildMemberRoleAdd(c.Message.GuildID, user.ID, roleID)
	} else {
		err = c.Session.GuildMemberRoleRemove(c.Message.GuildID, user.ID, roleID)
	}
	if err != nil {
		return fmt.Errorf("changing role: %w", err)
	}
	if add {
		return c.Reply(fmt.Sprintf("Added the role to %s.", user.Username))
	}
	return c.Reply(fmt.Sprintf("Removed the role from %s.", user.Username))
}

func setServerMute(c *Context, mute bool) error {
	user := c.FirstMention()
	if user == nil {
		return Userf("Mention someone.")
	}
	if err := c.Session.GuildMemberMute(c.Message.GuildID, user.ID, mute); err != nil {
		return fmt.Errorf("setting server mute: %w", err)
	}
	if mute {
		return c.Reply(fmt.Sprintf("Muted %s.", user.Username))
	}
	return c.Reply(fmt.Sprintf("Unmuted %s.", user.Username))
}

// splitReminder separates the "when" clause from the message, e.g.
// "in 10m take a break" or "at 15:04 standup".
func splitReminder(raw string) (when, message string, err error) {
	fields := strings.Fields(raw)
	if len(fields) < 3 {
		return "", "", Userf("Try `remind in 10m take a break`.")
	}
	switch fields[0] {
	case "in", "at":
		when = fields[0] + " " + fields[1]
		message = strings.Join(fields[2:], " ")
	default:
		return "", "", Userf("Reminders start with `in` or `at`.")
	}
	if strings.TrimSpace(message) == "" {
		return "", "", Userf("The reminder needs a message.")
	}
	return when, message, nil
}
