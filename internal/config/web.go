package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// WebConfig drives the health server and the self keep-alive pinger that
// holds the hosting platform awake.
type WebConfig struct {
	Port              int           `env:"PORT, default=7860"`
	SpaceHost         string        `env:"SPACE_HOST"`
	KeepAliveInterval time.Duration `env:"KEEP_ALIVE_INTERVAL, default=1m"`
}

func NewWebConfigFromEnv() (*WebConfig, error) {
	var cfg WebConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HealthURL is the endpoint the keep-alive task pings. The external space
// hostname wins over localhost so the platform sees real traffic.
func (c *WebConfig) HealthURL() string {
	if c.SpaceHost != "" {
		return fmt.Sprintf("https://%s/health", c.SpaceHost)
	}
	return fmt.Sprintf("http://localhost:%d/health", c.Port)
}
