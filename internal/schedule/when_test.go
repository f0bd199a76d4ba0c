package schedule_test

import (
	"testing"
	"time"

	"github.com/mangabot/manga/internal/schedule"
)

func TestParseWhen(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	table := []struct {
		name  string
		input string
		want  time.Time
		err   bool
	}{
		{
			name:  "duration",
			input: "in 10m",
			want:  now.Add(10 * time.Minute),
		},
		{
			name:  "compound duration",
			input: "in 2h 30m",
			want:  now.Add(2*time.Hour + 30*time.Minute),
		},
		{
			name:  "clock time later today",
			input: "at 15:04",
			want:  time.Date(2025, 6, 1, 15, 4, 0, 0, time.UTC),
		},
		{
			name:  "clock time already passed rolls to tomorrow",
			input: "at 09:00",
			want:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "cron expression",
			input: "0 0 * * *",
			want:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "negative duration",
			input: "in -5m",
			err:   true,
		},
		{
			name:  "garbage",
			input: "whenever",
			err:   true,
		},
		{
			name:  "cron pinned to a past year",
			input: "0 0 0 1 1 * 2020",
			err:   true,
		},
	}

	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			got, err := schedule.ParseWhen(tc.input, now)
			if tc.err {
				if err == nil {
					t.Fatalf("ParseWhen(%q) expected error, got %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWhen(%q) returned error: %v", tc.input, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseWhen(%q) = %v; want %v", tc.input, got, tc.want)
			}
		})
	}
}
