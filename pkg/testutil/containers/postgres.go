//go:build integration

// Package containers starts throwaway infrastructure for integration tests.
package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

// schema mirrors the production tables the verification stores touch.
const schema = `
CREATE TABLE users (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	wwcc_status TEXT NOT NULL DEFAULT 'unset',
	police_check_status TEXT NOT NULL DEFAULT 'unset',
	identity_status TEXT NOT NULL DEFAULT 'unset',
	wwcc_last_checked TIMESTAMPTZ
);

CREATE TABLE verification_checks (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	check_type TEXT NOT NULL,
	status TEXT NOT NULL,
	document_url TEXT,
	verification_data JSONB,
	verified_at TIMESTAMPTZ,
	expires_at TIMESTAMPTZ,
	auto_verified BOOLEAN NOT NULL DEFAULT FALSE,
	manual_review_required BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX idx_verification_checks_user ON verification_checks (user_id, created_at DESC);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// verification schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("careguard_test"),
		tcpostgres.WithUsername("careguard"),
		tcpostgres.WithPassword("careguard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, DB: db}
	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})
	return pc
}

// Truncate clears all rows between tests.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `TRUNCATE verification_checks, users`)
	return err
}
