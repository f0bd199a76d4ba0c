// Package presenters builds the Discord embeds and messages the bot
// sends, kept free of session state so they are easy to test.
package presenters

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/repository"
)

const (
	ColorPrimary = 0x9B59B6
	ColorInfo    = 0x3498DB
	ColorWarning = 0xE67E22
)

// BuildHelpEmbed lists commands grouped in registration order.
type HelpEntry struct {
	Name        string
	Description string
	Usage       string
	Level       repository.Level
}

func BuildHelpEmbed(prefix string, entries []HelpEntry) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("`")
		b.WriteString(prefix)
		b.WriteString(e.Name)
		if e.Usage != "" {
			b.WriteString(" ")
			b.WriteString(e.Usage)
		}
		b.WriteString("` — ")
		b.WriteString(e.Description)
		if e.Level > repository.LevelEveryone {
			b.WriteString(fmt.Sprintf(" *(%s)*", e.Level))
		}
		b.WriteString("\n")
	}
	return &discordgo.MessageEmbed{
		Title:       "Commands",
		Description: b.String(),
		Color:       ColorPrimary,
	}
}

func BuildWhoisEmbed(member *discordgo.Member, level repository.Level) *discordgo.MessageEmbed {
	user := member.User
	name := user.Username
	if member.Nick != "" {
		name = member.Nick
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Username", Value: user.Username, Inline: true},
		{Name: "ID", Value: user.ID, Inline: true},
		{Name: "Access", Value: level.String(), Inline: true},
	}
	if !member.JoinedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Joined",
			Value:  member.JoinedAt.Format("2006-01-02"),
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  name,
		Color:  ColorInfo,
		Fields: fields,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL("256"),
		},
	}
}

func BuildServerInfoEmbed(guild *discordgo.Guild) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: guild.Name,
		Color: ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: guild.ID, Inline: true},
			{Name: "Members", Value: fmt.Sprintf("%d", guild.MemberCount), Inline: true},
			{Name: "Channels", Value: fmt.Sprintf("%d", len(guild.Channels)), Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", len(guild.Roles)), Inline: true},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: guild.IconURL("256"),
		},
	}
}

// BuildVoiceStatusEmbed describes the active voice session.
func BuildVoiceStatusEmbed(channelName, voiceName string, listening bool) *discordgo.MessageEmbed {
	state := "not listening"
	if listening {
		state = "listening"
	}
	return &discordgo.MessageEmbed{
		Title: "Voice status",
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: channelName, Inline: true},
			{Name: "Voice", Value: voiceName, Inline: true},
			{Name: "Assistant", Value: state, Inline: true},
		},
	}
}

// BuildAuthEmbed summarizes a guild's access configuration.
func BuildAuthEmbed(owner string, admins, mods, blacklist, whitelist, autokick []string) *discordgo.MessageEmbed {
	if owner == "" {
		owner = "unset"
	} else {
		owner = mention(owner)
	}
	return &discordgo.MessageEmbed{
		Title: "Access configuration",
		Color: ColorWarning,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: owner},
			{Name: "Admins", Value: mentionList(admins), Inline: true},
			{Name: "Moderators", Value: mentionList(mods), Inline: true},
			{Name: "Blacklist", Value: mentionList(blacklist), Inline: true},
			{Name: "Whitelist", Value: mentionList(whitelist), Inline: true},
			{Name: "Auto-kick", Value: mentionList(autokick), Inline: true},
		},
	}
}

// BuildReminderEmbed lists a guild's upcoming reminders.
func BuildReminderEmbed(reminders []repository.Reminder) *discordgo.MessageEmbed {
	if len(reminders) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "Reminders",
			Description: "No reminders scheduled.",
			Color:       ColorInfo,
		}
	}
	var b strings.Builder
	for _, r := range reminders {
		fmt.Fprintf(&b, "**%s** — %s (for %s)\n",
			r.RunTime.UTC().Format(time.RFC822),
			r.Message,
			mention(r.UserID),
		)
	}
	return &discordgo.MessageEmbed{
		Title:       "Reminders",
		Description: b.String(),
		Color:       ColorInfo,
	}
}

// BuildSoundListEmbed lists the guild's stored sounds with their sizes.
func BuildSoundListEmbed(sounds []repository.Sound) *discordgo.MessageEmbed {
	if len(sounds) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "Sounds",
			Description: "No sounds uploaded.",
			Color:       ColorInfo,
		}
	}
	var b strings.Builder
	var total int64
	for _, s := range sounds {
		fmt.Fprintf(&b, "**%s** — %s\n", s.Name, formatSize(s.FileSize))
		total += s.FileSize
	}
	return &discordgo.MessageEmbed{
		Title:       "Sounds",
		Description: b.String(),
		Color:       ColorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Total: " + formatSize(total),
		},
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func mentionList(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = mention(id)
	}
	return strings.Join(mentions, " ")
}
