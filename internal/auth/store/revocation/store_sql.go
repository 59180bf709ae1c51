package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloodbank/internal/platform/database"
	"bloodbank/pkg/requestcontext"
)

// SQLTRL persists revoked token JTIs in PostgreSQL or SQLite.
type SQLTRL struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQLTRL constructs a database-backed token revocation list.
func NewSQLTRL(db *sql.DB, dialect database.Dialect) *SQLTRL {
	return &SQLTRL{db: db, dialect: dialect}
}

// RevokeToken adds a token to the revocation list with TTL.
func (t *SQLTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateRevocation(jti, ttl); err != nil {
		return err
	}
	expiresAt := requestcontext.Now(ctx).Add(ttl).UTC()
	query := t.dialect.Rebind(`
		INSERT INTO token_revocations (jti, expires_at)
		VALUES (?, ?)
		ON CONFLICT (jti) DO UPDATE SET
			expires_at = excluded.expires_at
	`)
	if _, err := t.db.ExecContext(ctx, query, jti, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks if a token is in the revocation list.
func (t *SQLTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := t.db.QueryRowContext(ctx, t.dialect.Rebind(`SELECT expires_at FROM token_revocations WHERE jti = ?`), jti).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return requestcontext.Now(ctx).Before(expiresAt), nil
}

// PurgeExpired deletes rows whose expiry is at or before now.
func (t *SQLTRL) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := t.db.ExecContext(ctx, t.dialect.Rebind(`DELETE FROM token_revocations WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired revocations: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired revocations rows: %w", err)
	}
	return int(rows), nil
}
