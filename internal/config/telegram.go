package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

type TelegramConfig struct {
	Token string `env:"TELEGRAM_TOKEN"`

	// WebhookURL switches the bridge from long polling to webhook intake
	// on the bot's own web server (POST /telegram).
	WebhookURL string `env:"TELEGRAM_WEBHOOK_URL"`
}

func NewTelegramConfigFromEnv() (*TelegramConfig, error) {
	var cfg TelegramConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *TelegramConfig) Configured() bool {
	return c.Token != ""
}
