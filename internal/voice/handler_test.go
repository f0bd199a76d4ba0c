package voice

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/tts"
)

func TestConsumeManualLeave(t *testing.T) {
	h := &Handler{
		conns:        make(map[string]*guildVoice),
		manualLeaves: make(map[string]time.Time),
	}

	// A disconnect with no recorded leave should rejoin.
	if h.consumeManualLeave("guild") {
		t.Error("expected no manual leave on a fresh handler")
	}

	// Leave without a connection must not poison a later disconnect.
	if err := h.Leave("guild", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.consumeManualLeave("guild") {
		t.Error("leave without a connection should not record a manual leave")
	}

	// A deliberate disconnect suppresses exactly one gateway echo.
	h.manualLeaves["guild"] = time.Now()
	if !h.consumeManualLeave("guild") {
		t.Error("expected the recorded leave to count as manual")
	}
	if h.consumeManualLeave("guild") {
		t.Error("marker should be gone after the first read")
	}

	// Markers older than the window no longer suppress the rejoin.
	h.manualLeaves["guild"] = time.Now().Add(-manualLeaveWindow - time.Second)
	if h.consumeManualLeave("guild") {
		t.Error("stale marker should not count as manual")
	}
}

func TestNextVoice(t *testing.T) {
	seen := map[string]bool{}
	current := tts.VoiceNames[0]
	for range len(tts.VoiceNames) {
		seen[current] = true
		current = nextVoice(current)
	}
	if len(seen) != len(tts.VoiceNames) {
		t.Errorf("cycle visited %d of %d voices", len(seen), len(tts.VoiceNames))
	}
	if current != tts.VoiceNames[0] {
		t.Errorf("expected cycle to wrap to %q, got %q", tts.VoiceNames[0], current)
	}

	if got := nextVoice("not-a-voice"); got != tts.VoiceNames[0] {
		t.Errorf("unknown voice should reset to %q, got %q", tts.VoiceNames[0], got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		member   *discordgo.Member
		expected string
	}{
		{
			name: "nick wins",
			member: &discordgo.Member{
				Nick: "Nicky",
				User: &discordgo.User{Username: "user", GlobalName: "Global"},
			},
			expected: "Nicky",
		},
		{
			name: "global name over username",
			member: &discordgo.Member{
				User: &discordgo.User{Username: "user", GlobalName: "Global"},
			},
			expected: "Global",
		},
		{
			name: "username fallback",
			member: &discordgo.Member{
				User: &discordgo.User{Username: "user"},
			},
			expected: "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.member); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
