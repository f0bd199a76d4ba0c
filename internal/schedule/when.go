package schedule

import (
	"fmt"
	"strings"
	"time"
)

// ParseWhen turns reminder phrasing into a concrete run time:
//
//	"in 10m", "in 2h30m"  a duration from now
//	"at 15:04"            the next occurrence of that wall-clock time
//	anything else         tried as a cron expression, first run time
func ParseWhen(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)

	if rest, ok := strings.CutPrefix(input, "in "); ok {
		d, err := time.ParseDuration(strings.ReplaceAll(rest, " ", ""))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid duration %q: %w", rest, err)
		}
		if d <= 0 {
			return time.Time{}, fmt.Errorf("duration must be positive")
		}
		return now.Add(d), nil
	}

	if rest, ok := strings.CutPrefix(input, "at "); ok {
		clock, err := time.Parse("15:04", strings.TrimSpace(rest))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", rest, err)
		}
		runAt := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if !runAt.After(now) {
			runAt = runAt.Add(24 * time.Hour)
		}
		return runAt, nil
	}

	times, err := NextRunTimesAfter(input, now.UTC(), 1)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a duration, clock time, or cron expression: %w", err)
	}
	// A parseable expression can still have no future occurrence, e.g. a
	// seven-field form pinned to a past year.
	if len(times) == 0 {
		return time.Time{}, fmt.Errorf("cron expression %q never runs again", input)
	}
	return times[0], nil
}
