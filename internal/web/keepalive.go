package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mangabot/manga/internal/config"
)

// KeepAlive pings the health endpoint on an interval so the hosting
// platform does not idle the container out.
func KeepAlive(ctx context.Context, cfg *config.WebConfig) {
	url := cfg.HealthURL()
	client := &http.Client{Timeout: 10 * time.Second}

	ticker := time.NewTicker(cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				slog.Error("building keep-alive request failed", "error", err)
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				slog.Warn("keep-alive ping failed", "url", url, "error", err)
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				slog.Warn("keep-alive ping returned non-200", "url", url, "status", resp.Status)
			}
		}
	}
}
