package repository_test

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mangabot/manga/internal/datalayer"
	"github.com/mangabot/manga/internal/repository"
)

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := datalayer.MigrateSQLite(db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db
}

func TestSQLiteAuthStore(t *testing.T) {
	testAuthStore(t, repository.NewSQLiteAuthStore(newSQLiteDB(t)))
}

func TestSQLiteReminderStore(t *testing.T) {
	testReminderStore(t, repository.NewSQLiteReminderStore(newSQLiteDB(t)))
}

func TestSQLiteSoundStore(t *testing.T) {
	testSoundStore(t, repository.NewSQLiteSoundStore(newSQLiteDB(t)))
}
