package handler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/presenters"
	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/stt"
	"github.com/mangabot/manga/internal/tts"
	"github.com/mangabot/manga/internal/voice"
)

func languageCodes() []string {
	codes := make([]string, 0, len(stt.SupportedLanguages))
	for code := range stt.SupportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// memberVoiceChannel finds the voice channel a member is currently in.
func memberVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("guild state: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", nil
}

// VoiceCommands controls joining, leaving, listening, and speaking.
func VoiceCommands(vh *voice.Handler, ttsSvc *tts.Service, sttSvc *stt.Service) []*Command {
	return []*Command{
		{
			Name:        "join",
			Aliases:     []string{"summon"},
			Description: "Join your voice channel and start listening",
			Run: func(c *Context) error {
				channelID, err := memberVoiceChannel(c.Session, c.Message.GuildID, c.Message.Author.ID)
				if err != nil {
					return err
				}
				if channelID == "" {
					return Userf("Join a voice channel first.")
				}
				if err := vh.Join(c.Message.GuildID, channelID, c.Message.ChannelID); err != nil {
					return err
				}
				return c.Reply("Listening. Say the trigger word to talk to me.")
			},
		},
		{
			Name:        "leave",
			Aliases:     []string{"disconnect", "dc"},
			Description: "Leave the voice channel",
			Run: func(c *Context) error {
				if err := vh.Leave(c.Message.GuildID, true); err != nil {
					return err
				}
				return c.Reply("Left the voice channel.")
			},
		},
		{
			Name:        "listen",
			Description: "Toggle the voice assistant without disconnecting",
			Usage:       "on|off",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				var on bool
				switch c.Arg(0) {
				case "on":
					on = true
				case "off":
					on = false
				default:
					return Userf("Try `listen on` or `listen off`.")
				}
				if !vh.SetListening(c.Message.GuildID, on) {
					return Userf("I am not in a voice channel.")
				}
				if on {
					return c.Reply("Listening again.")
				}
				return c.Reply("Ears closed.")
			},
		},
		{
			Name:        "voicestatus",
			Aliases:     []string{"vstatus"},
			Description: "Show the current voice session",
			Run: func(c *Context) error {
				channelID, voiceName, listening, connected := vh.Status(c.Message.GuildID)
				if !connected {
					return c.Reply("Not connected to voice.")
				}
				channelName := channelID
				if ch, err := c.Session.State.Channel(channelID); err == nil {
					channelName = ch.Name
				}
				return c.ReplyEmbed(presenters.BuildVoiceStatusEmbed(channelName, voiceName, listening))
			},
		},
		{
			Name:        "say",
			Aliases:     []string{"speak"},
			Description: "Speak text in the voice channel",
			Usage:       "<text>",
			Run: func(c *Context) error {
				text := strings.TrimSpace(c.Raw)
				if text == "" {
					return Userf("Say what? Try `say hello`.")
				}
				vc := vh.Connection(c.Message.GuildID)
				if vc == nil {
					return Userf("I am not in a voice channel.")
				}
				_, voiceName, _, _ := vh.Status(c.Message.GuildID)
				return ttsSvc.Speak(c.Ctx, vc, text, voiceName)
			},
		},
		{
			Name:        "voice",
			Description: "Change the speaking voice",
			Usage:       "<name>",
			Run: func(c *Context) error {
				name := strings.ToLower(c.Arg(0))
				if name == "" {
					return Userf("Available voices: %s", strings.Join(tts.VoiceNames, ", "))
				}
				if !vh.SetVoice(c.Message.GuildID, name) {
					return Userf("Unknown voice `%s`. Available: %s", name, strings.Join(tts.VoiceNames, ", "))
				}
				return c.Reply("Voice changed to " + name + ".")
			},
		},
		{
			Name:        "language",
			Aliases:     []string{"lang"},
			Description: "Set the speech recognition language",
			Usage:       "<code>",
			Run: func(c *Context) error {
				code := strings.ToLower(c.Arg(0))
				if code == "" {
					return Userf("Current language: `%s`. Supported: %s",
						sttSvc.Language(), strings.Join(languageCodes(), ", "))
				}
				if !sttSvc.SetLanguage(code) {
					return Userf("Unsupported language `%s`. Supported: %s",
						code, strings.Join(languageCodes(), ", "))
				}
				return c.Reply("Recognition language set to " + code + ".")
			},
		},
	}
}
