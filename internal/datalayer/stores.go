package datalayer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mangabot/manga/internal/config"
	"github.com/mangabot/manga/internal/repository"
)

// Stores bundles the persistence layer behind one open call. Postgres is
// used when configured; otherwise the SQLite file under DATA_DIR.
type Stores struct {
	Auth      repository.AuthStore
	Reminders repository.ReminderStore
	Sounds    repository.SoundStore

	close func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to whichever backend the environment configures
// and runs migrations.
func OpenStores(ctx context.Context) (*Stores, error) {
	pgCfg, err := config.NewPostgresConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading postgres config: %w", err)
	}

	if pgCfg.Configured() {
		pool, err := NewPostgresPool(ctx, pgCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := MigratePostgres(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
		slog.Info("using postgres storage", "host", pgCfg.Host)
		return &Stores{
			Auth:      repository.NewPostgresAuthStore(pool),
			Reminders: repository.NewPostgresReminderStore(pool),
			Sounds:    repository.NewPostgresSoundStore(pool),
			close:     pool.Close,
		}, nil
	}

	sqliteCfg, err := config.NewSQLiteConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading sqlite config: %w", err)
	}
	db, err := OpenSQLite(sqliteCfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if err := MigrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}
	slog.Info("using sqlite storage", "dataDir", sqliteCfg.DataDir)
	return &Stores{
		Auth:      repository.NewSQLiteAuthStore(db),
		Reminders: repository.NewSQLiteReminderStore(db),
		Sounds:    repository.NewSQLiteSoundStore(db),
		close:     func() { db.Close() },
	}, nil
}
