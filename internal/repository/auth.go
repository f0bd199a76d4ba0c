package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// Role is a granted bot role within a guild, independent of Discord's own
// permission system.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// ListKind is one of the per-guild user lists.
type ListKind string

const (
	ListBlacklist ListKind = "blacklist"
	ListWhitelist ListKind = "whitelist"
	ListVerified  ListKind = "verified"
	ListAutoKick  ListKind = "autokick"
)

// Level is the resolved permission tier of a user.
type Level int

const (
	LevelEveryone Level = iota
	LevelModerator
	LevelAdmin
	LevelOwner
)

func (l Level) String() string {
	switch l {
	case LevelOwner:
		return "owner"
	case LevelAdmin:
		return "admin"
	case LevelModerator:
		return "moderator"
	default:
		return "everyone"
	}
}

// CommandOverride gates a single command within a guild. An override with
// Enabled=false disables the command outright; non-empty allow lists
// restrict it to those roles or users.
type CommandOverride struct {
	Command      string
	Enabled      bool
	AllowedRoles []string
	AllowedUsers []string
}

// AuthStore persists per-guild ownership, granted roles, user lists, and
// command overrides. Implementations exist for Postgres and SQLite.
type AuthStore interface {
	Backend() string

	SetOwner(ctx context.Context, guildID, userID string) error
	Owner(ctx context.Context, guildID string) (string, error)

	AddRole(ctx context.Context, guildID, userID string, role Role) error
	RemoveRole(ctx context.Context, guildID, userID string, role Role) error
	HasRole(ctx context.Context, guildID, userID string, role Role) (bool, error)
	ListRole(ctx context.Context, guildID string, role Role) ([]string, error)

	AddToList(ctx context.Context, guildID, userID string, list ListKind) error
	RemoveFromList(ctx context.Context, guildID, userID string, list ListKind) error
	InList(ctx context.Context, guildID, userID string, list ListKind) (bool, error)
	ListMembers(ctx context.Context, guildID string, list ListKind) ([]string, error)

	SetOverride(ctx context.Context, guildID string, override CommandOverride) error
	Override(ctx context.Context, guildID, command string) (*CommandOverride, error)
}

// ResolveLevel computes the permission tier of a user in a guild.
// Owner outranks admin outranks moderator.
func ResolveLevel(ctx context.Context, store AuthStore, guildID, userID string) (Level, error) {
	owner, err := store.Owner(ctx, guildID)
	if err != nil {
		return LevelEveryone, fmt.Errorf("failed to resolve owner: %w", err)
	}
	if owner != "" && owner == userID {
		return LevelOwner, nil
	}

	isAdmin, err := store.HasRole(ctx, guildID, userID, RoleAdmin)
	if err != nil {
		return LevelEveryone, fmt.Errorf("failed to resolve admin role: %w", err)
	}
	if isAdmin {
		return LevelAdmin, nil
	}

	isMod, err := store.HasRole(ctx, guildID, userID, RoleModerator)
	if err != nil {
		return LevelEveryone, fmt.Errorf("failed to resolve moderator role: %w", err)
	}
	if isMod {
		return LevelModerator, nil
	}
	return LevelEveryone, nil
}

// Allows reports whether the override permits the given user. Role IDs are
// the caller's Discord role IDs.
func (o *CommandOverride) Allows(userID string, roleIDs []string) bool {
	if o == nil {
		return true
	}
	if !o.Enabled {
		return false
	}
	if len(o.AllowedRoles) == 0 && len(o.AllowedUsers) == 0 {
		return true
	}
	for _, id := range o.AllowedUsers {
		if id == userID {
			return true
		}
	}
	for _, allowed := range o.AllowedRoles {
		for _, id := range roleIDs {
			if id == allowed {
				return true
			}
		}
	}
	return false
}

func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalIDs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
