package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sound is a named clip uploaded to a guild's soundboard. The audio bytes
// live in blob storage under ObjectKey.
type Sound struct {
	GuildID   string
	Name      string
	ObjectKey string
	FileSize  int64
}

type SoundStore interface {
	Save(ctx context.Context, sound Sound) error
	Get(ctx context.Context, guildID, name string) (*Sound, error)
	List(ctx context.Context, guildID string) ([]Sound, error)
	Delete(ctx context.Context, guildID, name string) error
}

type PostgresSoundStore struct {
	db *pgxpool.Pool
}

func NewPostgresSoundStore(db *pgxpool.Pool) *PostgresSoundStore {
	return &PostgresSoundStore{db: db}
}

var _ SoundStore = (*PostgresSoundStore)(nil)

func (s *PostgresSoundStore) Save(ctx context.Context, sound Sound) error {
	const query = `
	INSERT INTO sound (guild_id, name, object_key, file_size)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (guild_id, name) DO UPDATE SET
		object_key = EXCLUDED.object_key,
		file_size = EXCLUDED.file_size
	`
	if _, err := s.db.Exec(ctx, query, sound.GuildID, sound.Name, sound.ObjectKey, sound.FileSize); err != nil {
		return fmt.Errorf("failed to save sound: %w", err)
	}
	return nil
}

func (s *PostgresSoundStore) Get(ctx context.Context, guildID, name string) (*Sound, error) {
	const query = `SELECT guild_id, name, object_key, file_size FROM sound WHERE guild_id = $1 AND name = $2`
	var sound Sound
	err := s.db.QueryRow(ctx, query, guildID, name).Scan(&sound.GuildID, &sound.Name, &sound.ObjectKey, &sound.FileSize)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sound: %w", err)
	}
	return &sound, nil
}

func (s *PostgresSoundStore) List(ctx context.Context, guildID string) ([]Sound, error) {
	const query = `SELECT guild_id, name, object_key, file_size FROM sound WHERE guild_id = $1 ORDER BY name`
	rows, err := s.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sounds: %w", err)
	}
	defer rows.Close()

	var sounds []Sound
	for rows.Next() {
		var sound Sound
		if err := rows.Scan(&sound.GuildID, &sound.Name, &sound.ObjectKey, &sound.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan sound: %w", err)
		}
		sounds = append(sounds, sound)
	}
	return sounds, rows.Err()
}

func (s *PostgresSoundStore) Delete(ctx context.Context, guildID, name string) error {
	const query = `DELETE FROM sound WHERE guild_id = $1 AND name = $2`
	if _, err := s.db.Exec(ctx, query, guildID, name); err != nil {
		return fmt.Errorf("failed to delete sound: %w", err)
	}
	return nil
}

type SQLiteSoundStore struct {
	db *sql.DB
}

func NewSQLiteSoundStore(db *sql.DB) *SQLiteSoundStore {
	return &SQLiteSoundStore{db: db}
}

var _ SoundStore = (*SQLiteSoundStore)(nil)

func (s *SQLiteSoundStore) Save(ctx context.Context, sound Sound) error {
	const query = `
	INSERT INTO sound (guild_id, name, object_key, file_size)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (guild_id, name) DO UPDATE SET
		object_key = excluded.object_key,
		file_size = excluded.file_size
	`
	if _, err := s.db.ExecContext(ctx, query, sound.GuildID, sound.Name, sound.ObjectKey, sound.FileSize); err != nil {
		return fmt.Errorf("failed to save sound: %w", err)
	}
	return nil
}

func (s *SQLiteSoundStore) Get(ctx context.Context, guildID, name string) (*Sound, error) {
	const query = `SELECT guild_id, name, object_key, file_size FROM sound WHERE guild_id = ? AND name = ?`
	var sound Sound
	err := s.db.QueryRowContext(ctx, query, guildID, name).Scan(&sound.GuildID, &sound.Name, &sound.ObjectKey, &sound.FileSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sound: %w", err)
	}
	return &sound, nil
}

func (s *SQLiteSoundStore) List(ctx context.Context, guildID string) ([]Sound, error) {
	const query = `SELECT guild_id, name, object_key, file_size FROM sound WHERE guild_id = ? ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sounds: %w", err)
	}
	defer rows.Close()

	var sounds []Sound
	for rows.Next() {
		var sound Sound
		if err := rows.Scan(&sound.GuildID, &sound.Name, &sound.ObjectKey, &sound.FileSize); err != nil {
			return nil, fmt.Errorf("failed to scan sound: %w", err)
		}
		sounds = append(sounds, sound)
	}
	return sounds, rows.Err()
}

func (s *SQLiteSoundStore) Delete(ctx context.Context, guildID, name string) error {
	const query = `DELETE FROM sound WHERE guild_id = ? AND name = ?`
	if _, err := s.db.ExecContext(ctx, query, guildID, name); err != nil {
		return fmt.Errorf("failed to delete sound: %w", err)
	}
	return nil
}
