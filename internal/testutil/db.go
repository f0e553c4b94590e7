// Package testutil holds shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/fxpool/internal/db/migrations"
)

// TestDSNEnv names an existing database to test against instead of a
// container. The database must be disposable: SetupTestDB migrates it and
// truncates effect_definitions on every call.
const TestDSNEnv = "FXPOOL_TEST_DSN"

// SetupTestDB returns a migrated pool with an empty effect_definitions table.
// It uses FXPOOL_TEST_DSN when set, otherwise it starts a PostgreSQL
// testcontainer. The test is skipped when neither is available. Cleanup is
// automatic.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv(TestDSNEnv)
	if dsn == "" {
		if testing.Short() {
			t.Skipf("short mode and %s not set", TestDSNEnv)
		}
		testcontainers.SkipIfProviderIsNotHealthy(t)

		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("starting postgres container: %v", err)
		}
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Logf("terminating postgres container: %v", err)
			}
		})

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("getting connection string: %v", err)
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to test db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := runMigrations(pool); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	if _, err := pool.Exec(ctx, "TRUNCATE effect_definitions"); err != nil {
		t.Fatalf("truncating effect_definitions: %v", err)
	}

	return pool
}

func runMigrations(pool *pgxpool.Pool) error {
	connStr := stdlib.RegisterConnConfig(pool.Config().ConnConfig)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	return nil
}
