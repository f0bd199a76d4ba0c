// Package worker moves due reminders through Redis streams so delivery
// survives bot restarts and can run in a separate process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mangabot/manga/internal/repository"
)

const (
	ReminderStream = "reminder_jobs"
	reminderGroup  = "reminder_delivery_group"

	// CronSuffix marks a recurring reminder. The text after the marker
	// is the cron expression that schedules the next run.
	CronSuffix = "\ncron:"
)

// ReminderJob is one due reminder on its way to a channel.
type ReminderJob struct {
	ID        string
	GuildID   string
	ChannelID string
	UserID    string
	Message   string
	RunTime   time.Time
}

func jobFromReminder(r repository.Reminder) ReminderJob {
	return ReminderJob{
		ID:        r.ID,
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Message:   r.Message,
		RunTime:   r.RunTime,
	}
}

// DisplayMessage returns the reminder text without the recurring-cron
// marker.
func (j ReminderJob) DisplayMessage() string {
	if idx := strings.LastIndex(j.Message, CronSuffix); idx >= 0 {
		return j.Message[:idx]
	}
	return j.Message
}

// JobHandler accepts due reminders for delivery.
type JobHandler interface {
	HandleJobs(ctx context.Context, jobs ...ReminderJob) error
}

// PrintingJobHandler logs jobs instead of delivering them. Useful when
// Redis is not configured.
type PrintingJobHandler struct{}

func (h *PrintingJobHandler) HandleJobs(ctx context.Context, jobs ...ReminderJob) error {
	for _, job := range jobs {
		slog.InfoContext(
			ctx,
			"handling reminder job",
			slog.String("reminderID", job.ID),
			slog.String("guildID", job.GuildID),
			slog.String("channelID", job.ChannelID),
			slog.String("runAt", job.RunTime.Format("2006-01-02 15:04:05")),
		)
	}
	return nil
}

// RedisJobHandler appends due reminders to the delivery stream.
type RedisJobHandler struct {
	client *redis.Client
}

func NewRedisJobHandler(client *redis.Client) (*RedisJobHandler, error) {
	err := client.XGroupCreateMkStream(context.Background(), ReminderStream, reminderGroup, "$").Err()
	if err != nil && err != redis.Nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return nil, err
	}
	return &RedisJobHandler{client: client}, nil
}

func (h *RedisJobHandler) HandleJobs(ctx context.Context, jobs ...ReminderJob) error {
	_, err := h.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, job := range jobs {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: ReminderStream,
				Values: map[string]any{
					"reminderID": job.ID,
					"guildID":    job.GuildID,
					"channelID":  job.ChannelID,
					"userID":     job.UserID,
					"message":    job.Message,
					"runAt":      job.RunTime.Format(time.RFC3339),
				},
			})
		}
		return nil
	})
	return err
}

// HandleDue converts reminders to jobs and hands them off.
func HandleDue(ctx context.Context, handler JobHandler, reminders []repository.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	jobs := make([]ReminderJob, len(reminders))
	for i, r := range reminders {
		jobs[i] = jobFromReminder(r)
	}
	return handler.HandleJobs(ctx, jobs...)
}

// Notifier posts a reminder message to its channel. The bot's Discord
// session provides the implementation.
type Notifier interface {
	Notify(ctx context.Context, job ReminderJob) error
}

// DirectJobHandler delivers jobs immediately without going through
// Redis. Used when no Redis instance is configured.
type DirectJobHandler struct {
	Notifier Notifier
}

func (h *DirectJobHandler) HandleJobs(ctx context.Context, jobs ...ReminderJob) error {
	var errs []error
	for _, job := range jobs {
		if err := h.Notifier.Notify(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("delivering reminder %s: %w", job.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Consumer reads reminder jobs from the stream and delivers them.
type Consumer struct {
	client   *redis.Client
	notifier Notifier
	name     string
}

func NewConsumer(client *redis.Client, notifier Notifier, name string) (*Consumer, error) {
	err := client.XGroupCreateMkStream(context.Background(), ReminderStream, reminderGroup, "$").Err()
	if err != nil && err != redis.Nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return nil, err
	}
	return &Consumer{client: client, notifier: notifier, name: name}, nil
}

// Run blocks, reading and delivering jobs until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    reminderGroup,
			Consumer: c.name,
			Streams:  []string{ReminderStream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("reading reminder stream failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				job, err := parseJob(msg.Values)
				if err != nil {
					slog.Error("malformed reminder job", "messageID", msg.ID, "error", err)
					c.ack(ctx, msg.ID)
					continue
				}
				if err := c.notifier.Notify(ctx, job); err != nil {
					slog.Error("reminder delivery failed", "reminderID", job.ID, "error", err)
					continue
				}
				c.ack(ctx, msg.ID)
			}
		}
	}
}

func (c *Consumer) ack(ctx context.Context, messageID string) {
	if err := c.client.XAck(ctx, ReminderStream, reminderGroup, messageID).Err(); err != nil {
		slog.Warn("failed to ack reminder job", "messageID", messageID, "error", err)
	}
}

func parseJob(values map[string]any) (ReminderJob, error) {
	job := ReminderJob{
		ID:        stringValue(values, "reminderID"),
		GuildID:   stringValue(values, "guildID"),
		ChannelID: stringValue(values, "channelID"),
		UserID:    stringValue(values, "userID"),
		Message:   stringValue(values, "message"),
	}
	if job.ChannelID == "" {
		return job, fmt.Errorf("job missing channelID")
	}
	if raw := stringValue(values, "runAt"); raw != "" {
		runAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return job, fmt.Errorf("invalid runAt %q: %w", raw, err)
		}
		job.RunTime = runAt
	}
	return job, nil
}

func stringValue(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
