package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hangeul-lab/authoring/internal/platform/postgres"
)

// Open connects to the test database and applies all migrations. The
// connection is closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := DatabaseURL()
	if dsn == "" {
		if IsCI() {
			t.Fatalf("no test database configured: set %s or %s", EnvTestDatabaseURL, EnvDatabaseURL)
		}
		t.Skipf("%s not set; skipping database test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open test database %s: %v", MaskURL(dsn), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping test database %s: %v", MaskURL(dsn), err)
	}
	if err := postgres.Migrate(ctx, db, nil); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards, also
// when fn panics.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin test transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("rollback test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
