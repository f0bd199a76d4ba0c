package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresAuthStore struct {
	db *pgxpool.Pool
}

func NewPostgresAuthStore(db *pgxpool.Pool) *PostgresAuthStore {
	return &PostgresAuthStore{db: db}
}

var _ AuthStore = (*PostgresAuthStore)(nil)

func (s *PostgresAuthStore) Backend() string { return "postgres" }

func (s *PostgresAuthStore) SetOwner(ctx context.Context, guildID, userID string) error {
	const query = `
	INSERT INTO guild_settings (guild_id, owner_id)
	VALUES ($1, $2)
	ON CONFLICT (guild_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
	`
	if _, err := s.db.Exec(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to set owner: %w", err)
	}
	return nil
}

func (s *PostgresAuthStore) Owner(ctx context.Context, guildID string) (string, error) {
	const query = `SELECT owner_id FROM guild_settings WHERE guild_id = $1`
	var owner string
	err := s.db.QueryRow(ctx, query, guildID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query owner: %w", err)
	}
	return owner, nil
}

func (s *PostgresAuthStore) AddRole(ctx context.Context, guildID, userID string, role Role) error {
	const query = `
	INSERT INTO auth_role (guild_id, user_id, role)
	VALUES ($1, $2, $3)
	ON CONFLICT (guild_id, user_id, role) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query, guildID, userID, string(role)); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

func (s *PostgresAuthStore) RemoveRole(ctx context.Context, guildID, userID string, role Role) error {
	const query = `DELETE FROM auth_role WHERE guild_id = $1 AND user_id = $2 AND role = $3`
	if _, err := s.db.Exec(ctx, query, guildID, userID, string(role)); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}

func (s *PostgresAuthStore) HasRole(ctx context.Context, guildID, userID string, role Role) (bool, error) {
	const query = `SELECT 1 FROM auth_role WHERE guild_id = $1 AND user_id = $2 AND role = $3`
	var one int
	err := s.db.QueryRow(ctx, query, guildID, userID, string(role)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query role: %w", err)
	}
	return true, nil
}

func (s *PostgresAuthStore) ListRole(ctx context.Context, guildID string, role Role) ([]string, error) {
	const query = `SELECT user_id FROM auth_role WHERE guild_id = $1 AND role = $2 ORDER BY user_id`
	rows, err := s.db.Query(ctx, query, guildID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list role: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *PostgresAuthStore) AddToList(ctx context.Context, guildID, userID string, list ListKind) error {
	const query = `
	INSERT INTO auth_list (guild_id, user_id, list)
	VALUES ($1, $2, $3)
	ON CONFLICT (guild_id, user_id, list) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query, guildID, userID, string(list)); err != nil {
		return fmt.Errorf("failed to add to %s: %w", list, err)
	}
	return nil
}

func (s *PostgresAuthStore) RemoveFromList(ctx context.Context, guildID, userID string, list ListKind) error {
	const query = `DELETE FROM auth_list WHERE guild_id = $1 AND user_id = $2 AND list = $3`
	if _, err := s.db.Exec(ctx, query, guildID, userID, string(list)); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", list, err)
	}
	return nil
}

func (s *PostgresAuthStore) InList(ctx context.Context, guildID, userID string, list ListKind) (bool, error) {
	const query = `SELECT 1 FROM auth_list WHERE guild_id = $1 AND user_id = $2 AND list = $3`
	var one int
	err := s.db.QueryRow(ctx, query, guildID, userID, string(list)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query %s: %w", list, err)
	}
	return true, nil
}

func (s *PostgresAuthStore) ListMembers(ctx context.Context, guildID string, list ListKind) ([]string, error) {
	const query = `SELECT user_id FROM auth_list WHERE guild_id = $1 AND list = $2 ORDER BY user_id`
	rows, err := s.db.Query(ctx, query, guildID, string(list))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", list, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *PostgresAuthStore) SetOverride(ctx context.Context, guildID string, override CommandOverride) error {
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
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (guild_id, command) DO UPDATE SET
		enabled = EXCLUDED.enabled,
		allowed_roles = EXCLUDED.allowed_roles,
		allowed_users = EXCLUDED.allowed_users
	`
	if _, err := s.db.Exec(ctx, query, guildID, override.Command, override.Enabled, roles, users); err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}
	return nil
}

func (s *PostgresAuthStore) Override(ctx context.Context, guildID, command string) (*CommandOverride, error) {
	const query = `
	SELECT enabled, allowed_roles, allowed_users
	FROM command_override WHERE guild_id = $1 AND command = $2
	`
	var (
		enabled  bool
		rolesRaw string
		usersRaw string
	)
	err := s.db.QueryRow(ctx, query, guildID, command).Scan(&enabled, &rolesRaw, &usersRaw)
	if errors.Is(err, pgx.ErrNoRows) {
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

func scanIDs(rows pgx.Rows) ([]string, error) {
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
