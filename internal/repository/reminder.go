package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Reminder struct {
	ID        string
	GuildID   string
	ChannelID string
	UserID    string
	Message   string
	RunTime   time.Time
}

// ReminderStore persists reminders until the scheduler pump hands them to
// the delivery worker.
type ReminderStore interface {
	Save(ctx context.Context, r Reminder) error
	// PullDue returns reminders due at or before the cutoff and marks
	// them delivered in the same transaction.
	PullDue(ctx context.Context, cutoff time.Time) ([]Reminder, error)
	ListUpcoming(ctx context.Context, guildID string) ([]Reminder, error)
}

type PostgresReminderStore struct {
	db *pgxpool.Pool
}

func NewPostgresReminderStore(db *pgxpool.Pool) *PostgresReminderStore {
	return &PostgresReminderStore{db: db}
}

var _ ReminderStore = (*PostgresReminderStore)(nil)

func (s *PostgresReminderStore) Save(ctx context.Context, r Reminder) error {
	const query = `
	INSERT INTO reminder (id, guild_id, channel_id, user_id, message, run_time)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		message = EXCLUDED.message,
		run_time = EXCLUDED.run_time,
		delivered = FALSE
	`
	_, err := s.db.Exec(ctx, query, r.ID, r.GuildID, r.ChannelID, r.UserID, r.Message, r.RunTime.UTC())
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

func (s *PostgresReminderStore) PullDue(ctx context.Context, cutoff time.Time) ([]Reminder, error) {
	const query = `
	UPDATE reminder SET delivered = TRUE
	WHERE delivered = FALSE AND run_time <= $1
	RETURNING id, guild_id, channel_id, user_id, message, run_time
	`
	rows, err := s.db.Query(ctx, query, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to pull due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (s *PostgresReminderStore) ListUpcoming(ctx context.Context, guildID string) ([]Reminder, error) {
	const query = `
	SELECT id, guild_id, channel_id, user_id, message, run_time
	FROM reminder
	WHERE guild_id = $1 AND delivered = FALSE
	ORDER BY run_time
	`
	rows, err := s.db.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func scanReminders(rows pgx.Rows) ([]Reminder, error) {
	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.GuildID, &r.ChannelID, &r.UserID, &r.Message, &r.RunTime); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

type SQLiteReminderStore struct {
	db *sql.DB
}

func NewSQLiteReminderStore(db *sql.DB) *SQLiteReminderStore {
	return &SQLiteReminderStore{db: db}
}

var _ ReminderStore = (*SQLiteReminderStore)(nil)

func (s *SQLiteReminderStore) Save(ctx context.Context, r Reminder) error {
	const query = `
	INSERT INTO reminder (id, guild_id, channel_id, user_id, message, run_time)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		message = excluded.message,
		run_time = excluded.run_time,
		delivered = FALSE
	`
	_, err := s.db.ExecContext(ctx, query, r.ID, r.GuildID, r.ChannelID, r.UserID, r.Message, r.RunTime.UTC())
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

func (s *SQLiteReminderStore) PullDue(ctx context.Context, cutoff time.Time) (reminders []Reminder, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, rbErr)
		}
	}()

	const selectQuery = `
	SELECT id, guild_id, channel_id, user_id, message, run_time
	FROM reminder
	WHERE delivered = FALSE AND run_time <= ?
	`
	rows, err := tx.QueryContext(ctx, selectQuery, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to pull due reminders: %w", err)
	}
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.GuildID, &r.ChannelID, &r.UserID, &r.Message, &r.RunTime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, r := range reminders {
		if _, err := tx.ExecContext(ctx, `UPDATE reminder SET delivered = TRUE WHERE id = ?`, r.ID); err != nil {
			return nil, fmt.Errorf("failed to mark reminder delivered: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return reminders, nil
}

func (s *SQLiteReminderStore) ListUpcoming(ctx context.Context, guildID string) ([]Reminder, error) {
	const query = `
	SELECT id, guild_id, channel_id, user_id, message, run_time
	FROM reminder
	WHERE guild_id = ? AND delivered = FALSE
	ORDER BY run_time
	`
	rows, err := s.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.GuildID, &r.ChannelID, &r.UserID, &r.Message, &r.RunTime); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
