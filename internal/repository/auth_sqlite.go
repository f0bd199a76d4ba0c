package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteAuthStore is the fallback store used when Postgres is not
// configured. It shares the migration schema with the Postgres store.
type SQLiteAuthStore struct {
	db *sql.DB
}

func NewSQLiteAuthStore(db *sql.DB) *SQLiteAuthStore {
	return &SQLiteAuthStore{db: db}
}

var _ AuthStore = (*SQLiteAuthStore)(nil)

func (s *SQLiteAuthStore) Backend() string { return "sqlite" }

func (s *SQLiteAuthStore) SetOwner(ctx context.Context, guildID, userID string) error {
	const query = `
	INSERT INTO guild_settings (guild_id, owner_id)
	VALUES (?, ?)
	ON CONFLICT (guild_id) DO UPDATE SET owner_id = excluded.owner_id
	`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to set owner: %w", err)
	}
	return nil
}

func (s *SQLiteAuthStore) Owner(ctx context.Context, guildID string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM guild_settings WHERE guild_id = ?`, guildID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query owner: %w", err)
	}
	return owner, nil
}

func (s *SQLiteAuthStore) AddRole(ctx context.Context, guildID, userID string, role Role) error {
	const query = `
	INSERT INTO auth_role (guild_id, user_id, role)
	VALUES (?, ?, ?)
	ON CONFLICT (guild_id, user_id, role) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID, string(role)); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

func (s *SQLiteAuthStore) RemoveRole(ctx context.Context, guildID, userID string, role Role) error {
	const query = `DELETE FROM auth_role WHERE guild_id = ? AND user_id = ? AND role = ?`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID, string(role)); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}

func (s *SQLiteAuthStore) HasRole(ctx context.Context, guildID, userID string, role Role) (bool, error) {
	const query = `SELECT 1 FROM auth_role WHERE guild_id = ? AND user_id = ? AND role = ?`
	var one int
	err := s.db.QueryRowContext(ctx, query, guildID, userID, string(role)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query role: %w", err)
	}
	return true, nil
}

func (s *SQLiteAuthStore) ListRole(ctx context.Context, guildID string, role Role) ([]string, error) {
	const query = `SELECT user_id FROM auth_role WHERE guild_id = ? AND role = ? ORDER BY user_id`
	rows, err := s.db.QueryContext(ctx, query, guildID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list role: %w", err)
	}
	defer rows.Close()
	return scanSQLIDs(rows)
}

func (s *SQLiteAuthStore) AddToList(ctx context.Context, guildID, userID string, list ListKind) error {
	const query = `
	INSERT INTO auth_list (guild_id, user_id, list)
	VALUES (?, ?, ?)
	ON CONFLICT (guild_id, user_id, list) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID, string(list)); err != nil {
		return fmt.Errorf("failed to add to %s: %w", list, err)
	}
	return nil
}

func (s *SQLiteAuthStore) RemoveFromList(ctx context.Context, guildID, userID string, list ListKind) error {
	const query = `DELETE FROM auth_list WHERE guild_id = ? AND user_id = ? AND list = ?`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID, string(list)); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", list, err)
	}
	return nil
}

func (s *SQLiteAuthStore) InList(ctx context.Context, guildID, userID string, list ListKind) (bool, error) {
	const query = `SELECT 1 FROM auth_list WHERE guild_id = ? AND user_id = ? AND list = ?`
	var one int
	err := s.db.QueryRowContext(ctx, query, guildID, userID, string(list)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", list, err)
	}
	return true, nil
}

func (s *SQLiteAuthStore) ListMembers(ctx context.Context, guildID string, list ListKind) ([]string, error) {
	const query = `SELECT user_id FROM auth_list WHERE guild_id = ? AND list = ? ORDER BY user_id`
	rows, err := s.db.QueryContext(ctx, query, guildID, string(list))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", list, err)
	}
	defer rows.Close()
	return scanSQLIDs(rows)
}

func (s *SQLiteAuthStore) SetOverride(ctx context.Context, guildID string, override CommandOverride) error {
	roles, err := marshalIDs(override.AllowedRoles)
	if err != nil {
		return fmt.Errorf("failed to marshal allowed roles: %w", err)
	}
	users, err := marshalIDs(override.AllowedUsers)
	if err != nil {
		return fmt.Errorf("failed to marshal allowed users: %w", err)
	}

	const query = `
	INSERT INTO command_override (guild_id, command, enabled, allowed_roles, allowed_users)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (guild_id, command) DO UPDATE SET
		enabled = excluded.enabled,
		allowed_roles = excluded.allowed_roles,
		allowed_users = excluded.allowed_users
	`
	if _, err := s.db.ExecContext(ctx, query, guildID, override.Command, override.Enabled, roles, users); err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}
	return nil
}

func (s *SQLiteAuthStore) Override(ctx context.Context, guildID, command string) (*CommandOverride, error) {
	const query = `
	SELECT enabled, allowed_roles, allowed_users
	FROM command_override WHERE guild_id = ? AND command = ?
	`
	var (
		enabled  bool
		rolesRaw string
		usersRaw string
	)
	err := s.db.QueryRowContext(ctx, query, guildID, command).Scan(&enabled, &rolesRaw, &usersRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query override: %w", err)
	}

	roles, err := unmarshalIDs(rolesRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal allowed roles: %w", err)
	}
	users, err := unmarshalIDs(usersRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal allowed users: %w", err)
	}

	return &CommandOverride{
		Command:      command,
		Enabled:      enabled,
		AllowedRoles: roles,
		AllowedUsers: users,
	}, nil
}

func scanSQLIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
