// Package web serves the health endpoint the hosting platform probes,
// the Telegram webhook intake, and a small status page.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/telegram"
)

// Server wraps the HTTP surface of the bot.
type Server struct {
	cfg     *config.WebConfig
	bridge  *telegram.Bridge
	discord telegram.DiscordStatus
	started time.Time
	http    *http.Server
}

func NewServer(cfg *config.WebConfig, bridge *telegram.Bridge, discord telegram.DiscordStatus) *Server {
	s := &Server{
		cfg:     cfg,
		bridge:  bridge,
		discord: discord,
		started: time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.POST("/telegram", s.telegramWebhook)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(c *gin.Context) {
	connected, guilds := s.discord.Connected()
	state := "disconnected"
	if connected {
		state = "connected"
	}
	c.String(http.StatusOK, "Manga is running.\nDiscord: %s (%d servers)\nUptime: %s\n",
		state, guilds, time.Since(s.started).Round(time.Second))
}

func (s *Server) health(c *gin.Context) {
	connected, guilds := s.discord.Connected()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"discord": connected,
		"guilds":  guilds,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) telegramWebhook(c *gin.Context) {
	if s.bridge == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "telegram bridge not configured"})
		return
	}
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed update"})
		return
	}
	go s.bridge.HandleUpdate(context.Background(), update)
	c.Status(http.StatusOK)
}
