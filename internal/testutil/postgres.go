// Package testutil provides test helpers for container-backed stores.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool. The test is skipped under -short.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// JournalSchema mirrors migrations/000001_create_event_journal.up.sql.
const JournalSchema = `
	CREATE TABLE IF NOT EXISTS event_journal (
		id          BIGSERIAL   PRIMARY KEY,
		game_id     TEXT        NOT NULL,
		record      JSONB       NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_event_journal_game ON event_journal (game_id, id);
`

// ApplyMigrations creates the journal schema directly, without the migrate tool.
//
// Precondition: Pool must be connected.
// Postcondition: The event_journal table exists in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	start := time.Now()
	if _, err := pc.RawPool.Exec(context.Background(), JournalSchema); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// NewPool starts a migrated PostgreSQL container and returns its Pool.
func NewPool(t *testing.T) *postgres.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.Pool
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
