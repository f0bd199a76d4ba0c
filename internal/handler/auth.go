package handler

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mangabot/manga/internal/presenters"
	"github.com/mangabot/manga/internal/repository"
)

// targetUser resolves the command target: a mention first, then a raw ID.
func targetUser(c *Context, arg string) (*discordgo.User, error) {
	if u := c.FirstMention(); u != nil {
		return u, nil
	}
	if arg == "" {
		return nil, Userf("Mention a user or give their ID.")
	}
	u, err := c.Session.User(arg)
	if err != nil {
		return nil, Userf("No user found for `%s`.", arg)
	}
	return u, nil
}

func listCommand(name, alias, description string, kind repository.ListKind, store repository.AuthStore) *Command {
	var aliases []string
	if alias != "" {
		aliases = []string{alias}
	}
	return &Command{
		Name:        name,
		Aliases:     aliases,
		Description: description,
		Usage:       "add|remove|list [@user]",
		Level:       repository.LevelModerator,
		Run: func(c *Context) error {
			switch c.Arg(0) {
			case "add":
				user, err := targetUser(c, c.Arg(1))
				if err != nil {
					return err
				}
				if err := store.AddToList(c.Ctx, c.Message.GuildID, user.ID, kind); err != nil {
					return fmt.Errorf("adding to %s: %w", kind, err)
				}
				return c.Reply(fmt.Sprintf("Added %s to the %s.", user.Username, name))
			case "remove":
				user, err := targetUser(c, c.Arg(1))
				if err != nil {
					return err
				}
				if err := store.RemoveFromList(c.Ctx, c.Message.GuildID, user.ID, kind); err != nil {
					return fmt.Errorf("removing from %s: %w", kind, err)
				}
				return c.Reply(fmt.Sprintf("Removed %s from the %s.", user.Username, name))
			case "list", "":
				members, err := store.ListMembers(c.Ctx, c.Message.GuildID, kind)
				if err != nil {
					return fmt.Errorf("listing %s: %w", kind, err)
				}
				if len(members) == 0 {
					return c.Reply(fmt.Sprintf("The %s is empty.", name))
				}
				mentions := make([]string, len(members))
				for i, id := range members {
					mentions[i] = "<@" + id + ">"
				}
				return c.Reply(strings.Join(mentions, " "))
			default:
				return Userf("Try `%s add @user`, `%s remove @user`, or `%s list`.", name, name, name)
			}
		},
	}
}

func roleCommand(name, description string, role repository.Role, store repository.AuthStore) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Usage:       "add|remove|list [@user]",
		Level:       repository.LevelAdmin,
		Run: func(c *Context) error {
			switch c.Arg(0) {
			case "add":
				user, err := targetUser(c, c.Arg(1))
				if err != nil {
					return err
				}
				if err := store.AddRole(c.Ctx, c.Message.GuildID, user.ID, role); err != nil {
					return fmt.Errorf("granting %s: %w", role, err)
				}
				return c.Reply(fmt.Sprintf("%s is now a %s.", user.Username, role))
			case "remove":
				user, err := targetUser(c, c.Arg(1))
				if err != nil {
					return err
				}
				if err := store.RemoveRole(c.Ctx, c.Message.GuildID, user.ID, role); err != nil {
					return fmt.Errorf("revoking %s: %w", role, err)
				}
				return c.Reply(fmt.Sprintf("%s is no longer a %s.", user.Username, role))
			case "list", "":
				members, err := store.ListRole(c.Ctx, c.Message.GuildID, role)
				if err != nil {
					return fmt.Errorf("listing %s: %w", role, err)
				}
				if len(members) == 0 {
					return c.Reply(fmt.Sprintf("No users hold the %s role.", role))
				}
				mentions := make([]string, len(members))
				for i, id := range members {
					mentions[i] = "<@" + id + ">"
				}
				return c.Reply(strings.Join(mentions, " "))
			default:
				return Userf("Try `%s add @user`, `%s remove @user`, or `%s list`.", name, name, name)
			}
		},
	}
}

// AuthCommands manages ownership, roles, lists, and command overrides.
func AuthCommands(store repository.AuthStore) []*Command {
	return []*Command{
		{
			Name:        "owner",
			Description: "Claim or transfer bot ownership in this server",
			Usage:       "[@user]",
			Run: func(c *Context) error {
				current, err := store.Owner(c.Ctx, c.Message.GuildID)
				if err != nil {
					return fmt.Errorf("resolving owner: %w", err)
				}

				// Unclaimed guilds can be claimed by anyone; after
				// that only the owner can transfer.
				target := c.Message.Author
				if u := c.FirstMention(); u != nil {
					target = u
				}
				if current != "" && current != c.Message.Author.ID {
					return Userf("This server already has an owner.")
				}
				if err := store.SetOwner(c.Ctx, c.Message.GuildID, target.ID); err != nil {
					return fmt.Errorf("setting owner: %w", err)
				}
				return c.Reply(fmt.Sprintf("%s now owns me on this server.", target.Username))
			},
		},
		roleCommand("admin", "Manage bot admins", repository.RoleAdmin, store),
		roleCommand("mod", "Manage bot moderators", repository.RoleModerator, store),
		listCommand("blacklist", "bl", "Users the bot ignores entirely", repository.ListBlacklist, store),
		listCommand("whitelist", "wl", "Users trusted with extra commands", repository.ListWhitelist, store),
		listCommand("verify", "", "Verified users", repository.ListVerified, store),
		listCommand("autokick", "ak", "Users kicked from voice on sight", repository.ListAutoKick, store),
		{
			Name:        "disable",
			Description: "Disable a command on this server",
			Usage:       "<command>",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				return setOverrideEnabled(c, store, false)
			},
		},
		{
			Name:        "enable",
			Description: "Re-enable a disabled command",
			Usage:       "<command>",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				return setOverrideEnabled(c, store, true)
			},
		},
		{
			Name:        "restrict",
			Description: "Limit a command to specific users or roles",
			Usage:       "<command> [@user|@role ...]",
			Level:       repository.LevelAdmin,
			Run: func(c *Context) error {
				name := strings.ToLower(c.Arg(0))
				if name == "" {
					return Userf("Which command? Try `restrict <command> @user`.")
				}
				override := repository.CommandOverride{Command: name, Enabled: true}
				for _, u := range c.Message.Mentions {
					override.AllowedUsers = append(override.AllowedUsers, u.ID)
				}
				for _, r := range c.Message.MentionRoles {
					override.AllowedRoles = append(override.AllowedRoles, r)
				}
				if err := store.SetOverride(c.Ctx, c.Message.GuildID, override); err != nil {
					return fmt.Errorf("saving override: %w", err)
				}
				if len(override.AllowedUsers) == 0 && len(override.AllowedRoles) == 0 {
					return c.Reply(fmt.Sprintf("Restrictions on `%s` cleared.", name))
				}
				return c.Reply(fmt.Sprintf("Command `%s` restricted.", name))
			},
		},
		{
			Name:        "auth",
			Description: "Show this server's access configuration",
			Level:       repository.LevelModerator,
			Run: func(c *Context) error {
				guildID := c.Message.GuildID
				owner, err := store.Owner(c.Ctx, guildID)
				if err != nil {
					return fmt.Errorf("resolving owner: %w", err)
				}
				admins, err := store.ListRole(c.Ctx, guildID, repository.RoleAdmin)
				if err != nil {
					return fmt.Errorf("listing admins: %w", err)
				}
				mods, err := store.ListRole(c.Ctx, guildID, repository.RoleModerator)
				if err != nil {
					return fmt.Errorf("listing moderators: %w", err)
				}
				blacklist, err := store.ListMembers(c.Ctx, guildID, repository.ListBlacklist)
				if err != nil {
					return fmt.Errorf("listing blacklist: %w", err)
				}
				whitelist, err := store.ListMembers(c.Ctx, guildID, repository.ListWhitelist)
				if err != nil {
					return fmt.Errorf("listing whitelist: %w", err)
				}
				autokick, err := store.ListMembers(c.Ctx, guildID, repository.ListAutoKick)
				if err != nil {
					return fmt.Errorf("listing autokick: %w", err)
				}
				return c.ReplyEmbed(presenters.BuildAuthEmbed(owner, admins, mods, blacklist, whitelist, autokick))
			},
		},
	}
}

func setOverrideEnabled(c *Context, store repository.AuthStore, enabled bool) error {
	name := strings.ToLower(c.Arg(0))
	if name == "" {
		return Userf("Which command?")
	}
	override, err := store.Override(c.Ctx, c.Message.GuildID, name)
	if err != nil {
		return fmt.Errorf("loading override: %w", err)
	}
	if override == nil {
		override = &repository.CommandOverride{Command: name}
	}
	override.Enabled = enabled
	if err := store.SetOverride(c.Ctx, c.Message.GuildID, *override); err != nil {
		return fmt.Errorf("saving override: %w", err)
	}
	if enabled {
		return c.Reply(fmt.Sprintf("Command `%s` enabled.", name))
	}
	return c.Reply(fmt.Sprintf("Command `%s` disabled.", name))
}
