// The worker delivers reminder jobs from the Redis stream to Discord.
// It can run alongside the bot or replace the bot's in-process consumer
// when deliveries should survive bot restarts.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/worker"
)

type discordNotifier struct {
	session *discordgo.Session
}

func (n *discordNotifier) Notify(_ context.Context, job worker.ReminderJob) error {
	content := fmt.Sprintf("<@%s> %s", job.UserID, job.DisplayMessage())
	_, err := n.session.ChannelMessageSend(job.ChannelID, content)
	return err
}

func runWorkerForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	redisCfg, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}
	if !redisCfg.Configured() {
		return fmt.Errorf("REDIS_ADDR must be set for the worker")
	}
	discordCfg, err := config.NewDiscordConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load discord config: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisCfg.Addr, Password: redisCfg.Password})
	defer rdb.Close()

	session, err := discordgo.New("Bot " + discordCfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("failed to close session", "error", err)
		}
	}()

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	consumer, err := worker.NewConsumer(rdb, &discordNotifier{session: session}, hostname)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("reminder worker running", "consumer", hostname)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}
	return nil
}

func main() {
	if err := runWorkerForever(); err != nil {
		log.Fatalf("failed to run worker: %v", err)
	}
}
