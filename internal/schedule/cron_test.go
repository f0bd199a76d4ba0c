package schedule_test

import (
	"testing"
	"time"

	"github.com/mangabot/manga/internal/schedule"
)

func TestNextRunTimesAfterSuccess(t *testing.T) {
	table := []struct {
		cron  string
		after time.Time
		n     int
		want  []time.Time
	}{
		{
			cron:  "0 0 * * *", // Every day at midnight
			after: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
			n:     3,
			want: []time.Time{
				time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			cron:  "*/5 * * * *", // Every 5 minutes
			after: time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC),
			n:     2,
			want: []time.Time{
				time.Date(2025, 8, 29, 12, 5, 0, 0, time.UTC),
				time.Date(2025, 8, 29, 12, 10, 0, 0, time.UTC),
			},
		},
		{
			cron:  "0 9 * * 1", // Every Monday at 9 AM
			after: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
			n:     2,
			want: []time.Time{
				time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC),
				time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tc := range table {
		t.Run(tc.cron, func(t *testing.T) {
			got, err := schedule.NextRunTimesAfter(tc.cron, tc.after, tc.n)
			if err != nil {
				t.Fatalf("NextRunTimesAfter(%q, %v, %d) returned error: %v", tc.cron, tc.after, tc.n, err)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("NextRunTimesAfter(%q, %v, %d) = %v; want %v", tc.cron, tc.after, tc.n, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNextRunTimesAfterFailure(t *testing.T) {
	table := []struct {
		cron  string
		after time.Time
		n     int
	}{
		{
			cron:  "invalid cron",
			after: time.Now(),
			n:     3,
		},
		{
			cron:  "0 0 * * *",
			after: time.Now(),
			n:     -1,
		},
	}

	for _, tc := range table {
		t.Run(tc.cron, func(t *testing.T) {
			got, err := schedule.NextRunTimesAfter(tc.cron, tc.after, tc.n)
			if err == nil {
				t.Fatalf("NextRunTimesAfter(%q, %v, %d) expected error but got result: %v", tc.cron, tc.after, tc.n, got)
			}
		})
	}
}

func TestNextRunTimesAfterExhausted(t *testing.T) {
	// The 7-field year form parses but has no occurrence after the cutoff.
	got, err := schedule.NextRunTimesAfter("0 0 0 1 1 * 2020", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no run times, got %v", got)
	}
}

func TestValidateCron(t *testing.T) {
	if err := schedule.ValidateCron("0 0 * * *"); err != nil {
		t.Errorf("ValidateCron rejected valid expression: %v", err)
	}
	if err := schedule.ValidateCron("not a cron"); err == nil {
		t.Error("ValidateCron accepted garbage")
	}
}
