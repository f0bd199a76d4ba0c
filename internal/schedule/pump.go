package schedule

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mangabot/manga/internal/repository"
	"github.com/mangabot/manga/internal/worker"
)

// CronSuffix marks a recurring reminder. The text after the marker is
// the cron expression used to schedule the next run.
const CronSuffix = worker.CronSuffix

// PumpInterval is how often due reminders are pulled from storage.
const PumpInterval = 15 * time.Second

// Pump polls the reminder store and hands due reminders to the job
// handler. PullDue removes what it returns, so a delivered reminder
// never fires twice.
func Pump(ctx context.Context, store repository.ReminderStore, handler worker.JobHandler) {
	ticker := time.NewTicker(PumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := store.PullDue(ctx, time.Now().UTC())
			if err != nil {
				slog.Error("pulling due reminders failed", "error", err)
				continue
			}
			if len(due) == 0 {
				continue
			}
			if err := worker.HandleDue(ctx, handler, due); err != nil {
				slog.Error("handing off due reminders failed", "count", len(due), "error", err)
			}
			rearm(ctx, store, due)
		}
	}
}

// rearm re-saves recurring reminders at their next cron occurrence.
func rearm(ctx context.Context, store repository.ReminderStore, delivered []repository.Reminder) {
	for _, r := range delivered {
		idx := strings.LastIndex(r.Message, CronSuffix)
		if idx < 0 {
			continue
		}
		cron := strings.TrimSpace(r.Message[idx+len(CronSuffix):])
		next, err := NextRunTimes(cron, 1)
		if err != nil || len(next) == 0 {
			slog.Warn("recurring reminder has invalid cron", "reminderID", r.ID, "cron", cron)
			continue
		}
		r.RunTime = next[0]
		if err := store.Save(ctx, r); err != nil {
			slog.Error("re-arming recurring reminder failed", "reminderID", r.ID, "error", err)
		}
	}
}
