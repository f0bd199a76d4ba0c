package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mangabot/manga/internal/repository"
)

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "plain reminder",
			message:  "take out the trash",
			expected: "take out the trash",
		},
		{
			name:     "recurring marker stripped",
			message:  "weekly standup" + CronSuffix + "0 9 * * 1",
			expected: "weekly standup",
		},
		{
			name:     "empty message",
			message:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := ReminderJob{Message: tt.message}
			if got := job.DisplayMessage(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseJob(t *testing.T) {
	runAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("complete job", func(t *testing.T) {
		job, err := parseJob(map[string]any{
			"reminderID": "abc",
			"guildID":    "1",
			"channelID":  "2",
			"userID":     "3",
			"message":    "hello",
			"runAt":      runAt.Format(time.RFC3339),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.ID != "abc" || job.ChannelID != "2" || job.Message != "hello" {
			t.Errorf("unexpected job: %+v", job)
		}
		if !job.RunTime.Equal(runAt) {
			t.Errorf("expected run time %v, got %v", runAt, job.RunTime)
		}
	})

	t.Run("missing channel", func(t *testing.T) {
		_, err := parseJob(map[string]any{"reminderID": "abc"})
		if err == nil {
			t.Error("expected error for missing channelID")
		}
	})

	t.Run("bad runAt", func(t *testing.T) {
		_, err := parseJob(map[string]any{
			"channelID": "2",
			"runAt":     "yesterday",
		})
		if err == nil {
			t.Error("expected error for invalid runAt")
		}
	})

	t.Run("non-string values ignored", func(t *testing.T) {
		job, err := parseJob(map[string]any{
			"channelID": "2",
			"userID":    42,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.UserID != "" {
			t.Errorf("expected empty userID, got %q", job.UserID)
		}
	})
}

type recordingNotifier struct {
	jobs   []ReminderJob
	failID string
}

func (n *recordingNotifier) Notify(_ context.Context, job ReminderJob) error {
	if job.ID == n.failID {
		return errors.New("delivery refused")
	}
	n.jobs = append(n.jobs, job)
	return nil
}

func TestDirectJobHandler(t *testing.T) {
	notifier := &recordingNotifier{failID: "bad"}
	handler := &DirectJobHandler{Notifier: notifier}

	err := handler.HandleJobs(
		context.Background(),
		ReminderJob{ID: "one", ChannelID: "2"},
		ReminderJob{ID: "bad", ChannelID: "2"},
		ReminderJob{ID: "two", ChannelID: "2"},
	)
	if err == nil {
		t.Error("expected an error for the failed delivery")
	}
	if len(notifier.jobs) != 2 {
		t.Fatalf("expected 2 delivered jobs, got %d", len(notifier.jobs))
	}
	if notifier.jobs[0].ID != "one" || notifier.jobs[1].ID != "two" {
		t.Errorf("unexpected delivery order: %+v", notifier.jobs)
	}
}

type capturingHandler struct {
	jobs []ReminderJob
}

func (h *capturingHandler) HandleJobs(_ context.Context, jobs ...ReminderJob) error {
	h.jobs = append(h.jobs, jobs...)
	return nil
}

func TestHandleDue(t *testing.T) {
	handler := &capturingHandler{}

	if err := HandleDue(context.Background(), handler, nil); err != nil {
		t.Fatalf("unexpected error for empty batch: %v", err)
	}
	if len(handler.jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(handler.jobs))
	}

	reminders := []repository.Reminder{
		{ID: "a", GuildID: "1", ChannelID: "2", UserID: "3", Message: "hi"},
		{ID: "b", GuildID: "1", ChannelID: "2", UserID: "3", Message: "bye"},
	}
	if err := HandleDue(context.Background(), handler, reminders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(handler.jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(handler.jobs))
	}
	if handler.jobs[0].ID != "a" || handler.jobs[1].Message != "bye" {
		t.Errorf("unexpected jobs: %+v", handler.jobs)
	}
}
