package handler

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/generator"
)

func findCommand(t *testing.T, cmds []*Command, name string) *Command {
	t.Helper()
	for _, cmd := range cmds {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func announceContext(raw string) *Context {
	return &Context{
		Ctx: context.Background(),
		Message: &discordgo.MessageCreate{
			Message: &discordgo.Message{
				GuildID:   "guild",
				ChannelID: "channel",
				Author:    &discordgo.User{ID: "user"},
			},
		},
		Raw: raw,
	}
}

func TestAnnounceRejectsBadSchedules(t *testing.T) {
	announce := findCommand(t, AdminCommands(nil, &generator.UUIDV4Generator{}), "announce")

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "missing separator",
			raw:  "0 9 * * 1 weekly standup",
		},
		{
			name: "invalid expression",
			raw:  "not a cron | hello",
		},
		{
			name: "empty message",
			raw:  "0 9 * * 1 | ",
		},
		{
			// Parses fine but the year field is in the past, so there is
			// no next occurrence to schedule.
			name: "exhausted year field",
			raw:  "0 0 0 1 1 * 2020 | happy new year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := announce.Run(announceContext(tt.raw))
			var userErr *UserError
			if !asUserError(err, &userErr) {
				t.Fatalf("expected a user-facing error, got %v", err)
			}
		})
	}
}
