package config

import (
	"context"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type DiscordConfig struct {
	Token  string `env:"DISCORD_TOKEN, required"`
	Prefix string `env:"COMMAND_PREFIX, default=!"`

	// HomeVoiceChannel is the voice channel the bot parks in and rejoins
	// after an unexpected disconnect.
	HomeVoiceChannel string `env:"HOME_VOICE_CHANNEL, default=Manga_bot"`

	// Bot messages sent to these channels are deleted after
	// LogAutoDeleteSeconds. Zero disables the cleanup.
	LogChannels          string `env:"LOG_AUTO_DELETE_CHANNELS, default=manga-logs,logs"`
	LogAutoDeleteSeconds int    `env:"LOG_AUTO_DELETE_SECONDS, default=10800"`

	// AutoJoinUserID triggers a join-and-play of AutoPlaySound when that
	// user enters a voice channel. Empty disables the behavior.
	AutoJoinUserID string `env:"AUTO_JOIN_USER_ID"`
	AutoPlaySound  string `env:"AUTO_PLAY_SOUND, default=welcome"`
}

func NewDiscordConfigFromEnv() (*DiscordConfig, error) {
	var cfg DiscordConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LogChannelSet returns the lowercased log channel names as a set.
func (c *DiscordConfig) LogChannelSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range strings.Split(c.LogChannels, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}
