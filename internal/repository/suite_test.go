package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mangabot/manga/internal/generator"
	"github.com/mangabot/manga/internal/repository"
)

var ids = generator.UUIDV4Generator{}

// testAuthStore exercises an AuthStore implementation end to end. Both
// backends run the same suite.
func testAuthStore(t *testing.T, store repository.AuthStore) {
	ctx := context.Background()
	const guildID = "guild-auth"

	t.Run("owner", func(t *testing.T) {
		owner, err := store.Owner(ctx, guildID)
		if err != nil {
			t.Fatalf("Owner on empty guild: %v", err)
		}
		if owner != "" {
			t.Fatalf("expected no owner, got %q", owner)
		}

		if err := store.SetOwner(ctx, guildID, "user-1"); err != nil {
			t.Fatalf("SetOwner: %v", err)
		}
		// Transfers overwrite.
		if err := store.SetOwner(ctx, guildID, "user-2"); err != nil {
			t.Fatalf("SetOwner transfer: %v", err)
		}
		owner, err = store.Owner(ctx, guildID)
		if err != nil {
			t.Fatalf("Owner: %v", err)
		}
		if owner != "user-2" {
			t.Errorf("owner = %q, want user-2", owner)
		}
	})

	t.Run("roles", func(t *testing.T) {
		if err := store.AddRole(ctx, guildID, "mod-1", repository.RoleModerator); err != nil {
			t.Fatalf("AddRole: %v", err)
		}
		has, err := store.HasRole(ctx, guildID, "mod-1", repository.RoleModerator)
		if err != nil {
			t.Fatalf("HasRole: %v", err)
		}
		if !has {
			t.Error("expected mod-1 to hold moderator")
		}

		has, err = store.HasRole(ctx, guildID, "mod-1", repository.RoleAdmin)
		if err != nil {
			t.Fatalf("HasRole admin: %v", err)
		}
		if has {
			t.Error("mod-1 must not hold admin")
		}

		members, err := store.ListRole(ctx, guildID, repository.RoleModerator)
		if err != nil {
			t.Fatalf("ListRole: %v", err)
		}
		if diff := cmp.Diff([]string{"mod-1"}, members); diff != "" {
			t.Errorf("moderators mismatch (-want +got):\n%s", diff)
		}

		if err := store.RemoveRole(ctx, guildID, "mod-1", repository.RoleModerator); err != nil {
			t.Fatalf("RemoveRole: %v", err)
		}
		has, err = store.HasRole(ctx, guildID, "mod-1", repository.RoleModerator)
		if err != nil {
			t.Fatalf("HasRole after removal: %v", err)
		}
		if has {
			t.Error("role survived removal")
		}
	})

	t.Run("lists", func(t *testing.T) {
		if err := store.AddToList(ctx, guildID, "bad-1", repository.ListBlacklist); err != nil {
			t.Fatalf("AddToList: %v", err)
		}
		// Adding twice must not error.
		if err := store.AddToList(ctx, guildID, "bad-1", repository.ListBlacklist); err != nil {
			t.Fatalf("AddToList twice: %v", err)
		}

		in, err := store.InList(ctx, guildID, "bad-1", repository.ListBlacklist)
		if err != nil {
			t.Fatalf("InList: %v", err)
		}
		if !in {
			t.Error("expected bad-1 in blacklist")
		}

		in, err = store.InList(ctx, guildID, "bad-1", repository.ListWhitelist)
		if err != nil {
			t.Fatalf("InList whitelist: %v", err)
		}
		if in {
			t.Error("bad-1 must not be whitelisted")
		}

		if err := store.RemoveFromList(ctx, guildID, "bad-1", repository.ListBlacklist); err != nil {
			t.Fatalf("RemoveFromList: %v", err)
		}
		members, err := store.ListMembers(ctx, guildID, repository.ListBlacklist)
		if err != nil {
			t.Fatalf("ListMembers: %v", err)
		}
		if len(members) != 0 {
			t.Errorf("blacklist not empty after removal: %v", members)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		override, err := store.Override(ctx, guildID, "missing")
		if err != nil {
			t.Fatalf("Override on missing command: %v", err)
		}
		if override != nil {
			t.Fatalf("expected nil override, got %+v", override)
		}

		want := repository.CommandOverride{
			Command:      "jumpscare",
			Enabled:      true,
			AllowedRoles: []string{"role-1"},
			AllowedUsers: []string{"user-1", "user-2"},
		}
		if err := store.SetOverride(ctx, guildID, want); err != nil {
			t.Fatalf("SetOverride: %v", err)
		}
		// Upserts replace.
		want.Enabled = false
		if err := store.SetOverride(ctx, guildID, want); err != nil {
			t.Fatalf("SetOverride upsert: %v", err)
		}

		got, err := store.Override(ctx, guildID, "jumpscare")
		if err != nil {
			t.Fatalf("Override: %v", err)
		}
		if diff := cmp.Diff(&want, got); diff != "" {
			t.Errorf("override mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("resolve level", func(t *testing.T) {
		if err := store.SetOwner(ctx, guildID, "the-owner"); err != nil {
			t.Fatalf("SetOwner: %v", err)
		}
		if err := store.AddRole(ctx, guildID, "the-admin", repository.RoleAdmin); err != nil {
			t.Fatalf("AddRole: %v", err)
		}

		cases := []struct {
			userID string
			want   repository.Level
		}{
			{"the-owner", repository.LevelOwner},
			{"the-admin", repository.LevelAdmin},
			{"rando", repository.LevelEveryone},
		}
		for _, c := range cases {
			got, err := repository.ResolveLevel(ctx, store, guildID, c.userID)
			if err != nil {
				t.Fatalf("ResolveLevel(%s): %v", c.userID, err)
			}
			if got != c.want {
				t.Errorf("ResolveLevel(%s) = %v, want %v", c.userID, got, c.want)
			}
		}
	})
}

// testReminderStore exercises a ReminderStore implementation.
func testReminderStore(t *testing.T, store repository.ReminderStore) {
	ctx := context.Background()
	const guildID = "guild-reminders"
	now := time.Now().UTC().Truncate(time.Second)

	save := func(t *testing.T, runAt time.Time, message string) repository.Reminder {
		t.Helper()
		id, _ := ids.Next()
		r := repository.Reminder{
			ID:        id,
			GuildID:   guildID,
			ChannelID: "channel-1",
			UserID:    "user-1",
			Message:   message,
			RunTime:   runAt,
		}
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
		return r
	}

	past := save(t, now.Add(-time.Minute), "already due")
	future := save(t, now.Add(time.Hour), "not yet")

	upcoming, err := store.ListUpcoming(ctx, guildID)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("ListUpcoming returned %d reminders, want 2", len(upcoming))
	}

	due, err := store.PullDue(ctx, now)
	if err != nil {
		t.Fatalf("PullDue: %v", err)
	}
	if len(due) != 1 || due[0].ID != past.ID {
		t.Fatalf("PullDue = %+v, want only %s", due, past.ID)
	}

	// PullDue removes what it returns.
	due, err = store.PullDue(ctx, now)
	if err != nil {
		t.Fatalf("second PullDue: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("second PullDue returned %d reminders, want 0", len(due))
	}

	upcoming, err = store.ListUpcoming(ctx, guildID)
	if err != nil {
		t.Fatalf("ListUpcoming after pull: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != future.ID {
		t.Errorf("ListUpcoming after pull = %+v, want only %s", upcoming, future.ID)
	}
}

// testSoundStore exercises a SoundStore implementation.
func testSoundStore(t *testing.T, store repository.SoundStore) {
	ctx := context.Background()
	const guildID = "guild-sounds"

	sound := repository.Sound{
		GuildID:   guildID,
		Name:      "welcome",
		ObjectKey: "sounds/abc",
		FileSize:  1024,
	}
	if err := store.Save(ctx, sound); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, guildID, "welcome")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(&sound, got); diff != "" {
		t.Errorf("sound mismatch (-want +got):\n%s", diff)
	}

	missing, err := store.Get(ctx, guildID, "nope")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("Get missing = %+v, want nil", missing)
	}

	list, err := store.List(ctx, guildID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List returned %d sounds, want 1", len(list))
	}

	if err := store.Delete(ctx, guildID, "welcome"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, err = store.List(ctx, guildID)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List after delete returned %d sounds, want 0", len(list))
	}
}
