package handler

import (
	"errors"
	"testing"

	"github.com/mangabot/manga/internal/repository"
)

func TestCheckStorageAvailable(t *testing.T) {
	tc := []struct {
		name      string
		sounds    []repository.Sound
		requested int64
		max       int64
		wantErr   bool
	}{
		{
			name:      "fits in empty storage",
			requested: 100,
			max:       1000,
		},
		{
			name: "fits alongside existing sounds",
			sounds: []repository.Sound{
				{FileSize: 400},
				{FileSize: 400},
			},
			requested: 200,
			max:       1000,
		},
		{
			name: "exceeds the limit",
			sounds: []repository.Sound{
				{FileSize: 900},
			},
			requested: 200,
			max:       1000,
			wantErr:   true,
		},
	}

	for _, test := range tc {
		t.Run(test.name, func(t *testing.T) {
			err := CheckStorageAvailable(test.sounds, test.requested, test.max)
			if test.wantErr {
				var limitErr *StorageLimitError
				if !errors.As(err, &limitErr) {
					t.Fatalf("expected StorageLimitError, got %v", err)
				}
				if limitErr.Requested != test.requested {
					t.Errorf("Requested = %d, want %d", limitErr.Requested, test.requested)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tc := []struct {
		filename string
		want     string
	}{
		{"welcome.mp3", ".mp3"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
	}
	for _, test := range tc {
		if got := extension(test.filename); got != test.want {
			t.Errorf("extension(%q) = %q, want %q", test.filename, got, test.want)
		}
	}
}

func TestSplitReminder(t *testing.T) {
	tc := []struct {
		raw      string
		wantWhen string
		wantMsg  string
		wantErr  bool
	}{
		{raw: "in 10m take a break", wantWhen: "in 10m", wantMsg: "take a break"},
		{raw: "at 15:04 standup", wantWhen: "at 15:04", wantMsg: "standup"},
		{raw: "tomorrow do stuff", wantErr: true},
		{raw: "in 10m", wantErr: true},
	}
	for _, test := range tc {
		when, msg, err := splitReminder(test.raw)
		if test.wantErr {
			if err == nil {
				t.Errorf("splitReminder(%q) expected error", test.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitReminder(%q) returned error: %v", test.raw, err)
			continue
		}
		if when != test.wantWhen || msg != test.wantMsg {
			t.Errorf("splitReminder(%q) = %q, %q; want %q, %q", test.raw, when, msg, test.wantWhen, test.wantMsg)
		}
	}
}
