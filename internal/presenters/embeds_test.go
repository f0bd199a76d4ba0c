package presenters

import (
	"strings"
	"testing"
	"time"

	"github.com/mangabot/manga/internal/repository"
)

func TestBuildHelpEmbed(t *testing.T) {
	embed := BuildHelpEmbed("!", []HelpEntry{
		{Name: "join", Description: "Join your voice channel"},
		{Name: "kick", Usage: "@user", Description: "Kick a member", Level: repository.LevelModerator},
	})
	if !strings.Contains(embed.Description, "`!join`") {
		t.Errorf("help missing join entry: %q", embed.Description)
	}
	if !strings.Contains(embed.Description, "(moderator)") {
		t.Errorf("help missing level annotation: %q", embed.Description)
	}
}

func TestBuildSoundListEmbed(t *testing.T) {
	embed := BuildSoundListEmbed(nil)
	if embed.Description != "No sounds uploaded." {
		t.Errorf("empty list description = %q", embed.Description)
	}

	embed = BuildSoundListEmbed([]repository.Sound{
		{Name: "welcome", FileSize: 2 << 20},
		{Name: "bye", FileSize: 512},
	})
	if !strings.Contains(embed.Description, "welcome") || !strings.Contains(embed.Description, "2.0 MB") {
		t.Errorf("sound list description = %q", embed.Description)
	}
	if embed.Footer == nil || !strings.Contains(embed.Footer.Text, "Total:") {
		t.Error("sound list missing total footer")
	}
}

func TestBuildReminderEmbed(t *testing.T) {
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	embed := BuildReminderEmbed([]repository.Reminder{
		{UserID: "42", Message: "stand up", RunTime: when},
	})
	if !strings.Contains(embed.Description, "stand up") {
		t.Errorf("reminder description = %q", embed.Description)
	}
	if !strings.Contains(embed.Description, "<@42>") {
		t.Errorf("reminder missing mention: %q", embed.Description)
	}
}

func TestBuildAuthEmbedEmptyLists(t *testing.T) {
	embed := BuildAuthEmbed("", nil, nil, nil, nil, nil)
	if embed.Fields[0].Value != "unset" {
		t.Errorf("owner field = %q", embed.Fields[0].Value)
	}
	if embed.Fields[1].Value != "none" {
		t.Errorf("admins field = %q", embed.Fields[1].Value)
	}
}
