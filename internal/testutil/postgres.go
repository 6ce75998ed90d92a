// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rgault/duskfall/internal/config"
	"github.com/rgault/duskfall/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns a
// connected Pool. The test is skipped when Docker is unavailable.
//
// Postcondition: Returns a running container with a connected pool, or skips
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
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
		t.Skipf("starting postgres container (docker unavailable?): %v", err)
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

// ApplyMigrations runs the schema creation SQL directly for tests. This
// avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The battle_reports table exists in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS battle_reports (
			id           BIGSERIAL    PRIMARY KEY,
			combat_id    VARCHAR(64)  NOT NULL UNIQUE,
			encounter_id VARCHAR(64)  NOT NULL,
			player_name  VARCHAR(128) NOT NULL,
			outcome      VARCHAR(16)  NOT NULL,
			rounds       INTEGER      NOT NULL,
			xp           INTEGER      NOT NULL,
			gold         INTEGER      NOT NULL,
			loot         JSONB        NOT NULL DEFAULT '[]',
			log_tail     JSONB        NOT NULL DEFAULT '[]',
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_battle_reports_encounter
			ON battle_reports (encounter_id, created_at DESC);`

	if _, err := pc.RawPool.Exec(ctx, schema); err != nil {
		t.Fatalf("applying test schema: %v", err)
	}
}
