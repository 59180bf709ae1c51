package revocation

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/platform/database"
	"bloodbank/internal/platform/migrate"
	"bloodbank/pkg/requestcontext"
)

func newSQLiteTRL(t *testing.T) *SQLTRL {
	t.Helper()
	db, err := sql.Open("sqlite3", database.SQLiteDSN(filepath.Join(t.TempDir(), "trl.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migrate.Up(context.Background(), db, database.SQLite, quiet))
	return NewSQLTRL(db, database.SQLite)
}

func TestSQLTRL(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	at := func(offset time.Duration) context.Context {
		return requestcontext.WithTime(context.Background(), now.Add(offset))
	}

	t.Run("revoke then check", func(t *testing.T) {
		trl := newSQLiteTRL(t)
		require.NoError(t, trl.RevokeToken(at(0), "jti-1", time.Hour))

		revoked, err := trl.IsRevoked(at(30*time.Minute), "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = trl.IsRevoked(at(2*time.Hour), "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("unknown jti", func(t *testing.T) {
		trl := newSQLiteTRL(t)
		revoked, err := trl.IsRevoked(at(0), "nope")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoking twice extends expiry", func(t *testing.T) {
		trl := newSQLiteTRL(t)
		require.NoError(t, trl.RevokeToken(at(0), "jti-2", time.Minute))
		require.NoError(t, trl.RevokeToken(at(0), "jti-2", time.Hour))

		revoked, err := trl.IsRevoked(at(10*time.Minute), "jti-2")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("purge expired", func(t *testing.T) {
		trl := newSQLiteTRL(t)
		require.NoError(t, trl.RevokeToken(at(0), "old", time.Minute))
		require.NoError(t, trl.RevokeToken(at(0), "fresh", time.Hour))

		purged, err := trl.PurgeExpired(context.Background(), now.Add(10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, purged)

		revoked, err := trl.IsRevoked(at(10*time.Minute), "fresh")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}
