package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

type VoiceConfig struct {
	// TriggerWord activates the assistant when heard at the start of an
	// utterance, e.g. "manga mute dave".
	TriggerWord string `env:"VOICE_TRIGGER_WORD, default=manga"`

	VerboseLogs bool `env:"VOICE_VERBOSE_LOGS"`
}

func NewVoiceConfigFromEnv() (*VoiceConfig, error) {
	var cfg VoiceConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
