package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"github.com/mangabot/manga/internal/agent"
	"github.com/mangabot/manga/internal/ai"
	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/datalayer"
	"github.com/mangabot/manga/internal/generator"
	"github.com/mangabot/manga/internal/handler"
	"github.com/mangabot/manga/internal/schedule"
	"github.com/mangabot/manga/internal/stt"
	"github.com/mangabot/manga/internal/telegram"
	"github.com/mangabot/manga/internal/tts"
	"github.com/mangabot/manga/internal/voice"
	"github.com/mangabot/manga/internal/web"
	"github.com/mangabot/manga/internal/worker"
)

// discordStatus adapts the session for the web server and the Telegram
// bridge.
type discordStatus struct {
	session *discordgo.Session
}

func (d *discordStatus) Connected() (bool, int) {
	if d.session == nil || d.session.State == nil || d.session.State.User == nil {
		return false, 0
	}
	return true, len(d.session.State.Guilds)
}

func (d *discordStatus) firstGuildID() string {
	if d.session == nil || d.session.State == nil {
		return ""
	}
	guilds := d.session.State.Guilds
	if len(guilds) == 0 {
		return ""
	}
	return guilds[0].ID
}

// sessionNotifier delivers reminder jobs to their Discord channels.
type sessionNotifier struct {
	session *discordgo.Session
}

func (n *sessionNotifier) Notify(_ context.Context, job worker.ReminderJob) error {
	content := fmt.Sprintf("<@%s> %s", job.UserID, job.DisplayMessage())
	_, err := n.session.ChannelMessageSend(job.ChannelID, content)
	return err
}

func runBotForever() error {
	if err := config.LoadEnv(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("No .env file found, continuing without it")
		} else {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := datalayer.OpenStores(ctx)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer stores.Close()

	discordCfg, err := config.NewDiscordConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load discord config: %w", err)
	}
	voiceCfg, err := config.NewVoiceConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load voice config: %w", err)
	}
	aiCfg, err := config.NewAIConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load ai config: %w", err)
	}
	webCfg, err := config.NewWebConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load web config: %w", err)
	}
	telegramCfg, err := config.NewTelegramConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load telegram config: %w", err)
	}
	redisCfg, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}

	session, err := handler.NewSession(discordCfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	aiSvc := ai.NewServiceFromConfig(ctx, aiCfg)
	if aiSvc.Enabled() {
		slog.Info("AI responses enabled", "provider", aiSvc.ProviderName())
	} else {
		slog.Warn("no AI provider configured, chat responses disabled")
	}

	sttSvc := stt.NewService(nil)
	ttsSvc := tts.NewService(tts.NewEdgeSynthesizer())

	voiceHandler := voice.NewHandler(session, discordCfg, voiceCfg, sttSvc, ttsSvc, aiSvc, stores.Auth)

	notifier := &sessionNotifier{session: session}

	var rdb *redis.Client
	var jobHandler worker.JobHandler = &worker.DirectJobHandler{Notifier: notifier}
	if redisCfg.Configured() {
		rdb = redis.NewClient(&redis.Options{Addr: redisCfg.Addr, Password: redisCfg.Password})
		jobHandler, err = worker.NewRedisJobHandler(rdb)
		if err != nil {
			return fmt.Errorf("failed to create redis job handler: %w", err)
		}
		defer rdb.Close()
	} else {
		slog.Warn("redis not configured, reminders will be delivered in-process")
	}

	router := handler.NewRouter(discordCfg, stores.Auth, aiSvc)
	router.Register(handler.VoiceCommands(voiceHandler, ttsSvc, sttSvc)...)
	router.Register(handler.AuthCommands(stores.Auth)...)
	router.Register(handler.AdminCommands(stores.Reminders, &generator.UUIDV4Generator{})...)
	router.Register(handler.UtilityCommands(stores.Auth, aiSvc, time.Now())...)
	router.Register(handler.FunCommands(aiSvc)...)

	minioCfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load minio config: %w", err)
	}
	var sounds *handler.Sounds
	if minioCfg.Configured() {
		blobs, err := datalayer.NewMinioStorage(minioCfg)
		if err != nil {
			return fmt.Errorf("failed to create minio storage: %w", err)
		}
		if err := blobs.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure minio bucket: %w", err)
		}
		sounds = handler.NewSounds(stores.Sounds, blobs, voiceHandler)
		voiceHandler.SetSoundPlayer(sounds)
		router.Register(handler.SoundCommands(sounds)...)
	} else {
		slog.Warn("minio not configured, soundboard disabled")
	}
	router.Register(handler.TrollCommands(voiceHandler, sounds)...)

	agentSvc := agent.NewService(ai.NewAgentProvider(aiCfg), rdb)
	if agentSvc.Enabled() {
		router.Register(handler.AgentCommands(agentSvc)...)
	}

	router.Register(handler.HelpCommand(router))

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "username", r.User.Username, "userID", r.User.ID)
	})
	session.AddHandler(router.MessageCreate)
	session.AddHandler(voiceHandler.HandleVoiceStateUpdate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("failed to close session", "error", err)
		}
	}()

	status := &discordStatus{session: session}

	bridge, err := telegram.NewBridge(telegramCfg, aiSvc, voiceHandler, status, status.firstGuildID)
	if err != nil {
		return fmt.Errorf("failed to create telegram bridge: %w", err)
	}
	if bridge != nil && telegramCfg.WebhookURL == "" {
		go bridge.Run(ctx)
	}

	go schedule.Pump(ctx, stores.Reminders, jobHandler)

	if rdb != nil {
		consumer, err := worker.NewConsumer(rdb, notifier, "bot")
		if err != nil {
			return fmt.Errorf("failed to create reminder consumer: %w", err)
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("reminder consumer stopped", "error", err)
			}
		}()
	}

	go web.KeepAlive(ctx, webCfg)

	server := web.NewServer(webCfg, bridge, status)
	return server.Run(ctx)
}

func main() {
	if err := runBotForever(); err != nil {
		log.Fatalf("failed to run bot: %v", err)
	}
}
