//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"bloodbank/internal/platform/database"
	"bloodbank/internal/platform/migrate"
	id "bloodbank/pkg/domain"
)

// registryTables lists every migrated table, children before parents.
var registryTables = []string{"audit_events", "token_revocations", "donors", "users"}

// PostgresContainer is a Postgres server with the registry schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	c, err := postgres.Run(ctx, "postgres:18-alpine",
		postgres.WithDatabase("bloodbank_test"),
		postgres.WithUsername("bloodbank"),
		postgres.WithPassword("bloodbank_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, abandon(ctx, c, fmt.Errorf("postgres dsn: %w", err))
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, abandon(ctx, c, fmt.Errorf("postgres open: %w", err))
	}
	if err := migrate.Up(ctx, db, database.Postgres, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		_ = db.Close()
		return nil, abandon(ctx, c, fmt.Errorf("postgres migrate: %w", err))
	}
	return &PostgresContainer{Container: c, DSN: dsn, DB: db}, nil
}

// TruncateTables empties the named tables. With no arguments every registry
// table is cleared.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		tables = registryTables
	}
	if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("truncate %v: %w", tables, err)
	}
	return nil
}

// TruncateModuleTables clears every registry table.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	return p.TruncateTables(ctx)
}

// CreateTestUser inserts an active account with the given role so donor rows
// have an owner to reference.
func (p *PostgresContainer) CreateTestUser(ctx context.Context, t testing.TB, role string) id.UserID {
	t.Helper()
	userID := uuid.New()
	email := fmt.Sprintf("owner-%s@example.com", userID.String()[:8])
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, 'x', $3, true, NOW(), NOW())`,
		userID, email, role)
	if err != nil {
		t.Fatalf("insert test user: %v", err)
	}
	return id.UserID(userID)
}
