package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/mangabot/manga/internal/datalayer"
	"github.com/mangabot/manga/internal/repository"
)

var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	pgConnStr   string
	pgStartErr  error
)

// usePostgres provisions (or reuses) a Postgres container with the
// schema migrated. Tests share the instance; use distinct guild IDs.
func usePostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("SKIP_CONTAINER_TESTS") != "" {
		t.Skip("container tests disabled")
	}

	pgOnce.Do(func() {
		ctx := context.Background()
		pgContainer, pgStartErr = postgres.Run(
			ctx,
			"postgres",
			postgres.WithDatabase("manga"),
			postgres.WithUsername("user"),
			postgres.WithPassword("password"),
			postgres.BasicWaitStrategies(),
		)
		if pgStartErr != nil {
			return
		}
		pgConnStr, pgStartErr = pgContainer.ConnectionString(ctx)
		if pgStartErr != nil {
			return
		}

		pool, err := pgxpool.New(ctx, pgConnStr)
		if err != nil {
			pgStartErr = err
			return
		}
		defer pool.Close()
		pgStartErr = datalayer.MigratePostgres(pool)
	})
	if pgStartErr != nil {
		t.Fatalf("failed to start postgres container: %v", pgStartErr)
	}

	pool, err := pgxpool.New(context.Background(), pgConnStr)
	if err != nil {
		t.Fatalf("failed to create postgres pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresAuthStore(t *testing.T) {
	testAuthStore(t, repository.NewPostgresAuthStore(usePostgres(t)))
}

func TestPostgresReminderStore(t *testing.T) {
	testReminderStore(t, repository.NewPostgresReminderStore(usePostgres(t)))
}

func TestPostgresSoundStore(t *testing.T) {
	testSoundStore(t, repository.NewPostgresSoundStore(usePostgres(t)))
}

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}
