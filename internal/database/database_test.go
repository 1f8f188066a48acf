package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kanban/internal/database"
	"kanban/internal/testutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dsn string

func TestMain(m *testing.M) {
	var teardown func()
	var err error
	dsn, teardown, err = testutil.StartPostgres(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres unavailable, skipping integration tests: %v\n", err)
		os.Exit(m.Run())
	}
	code := m.Run()
	teardown()
	os.Exit(code)
}

func open(t *testing.T) database.Service {
	t.Helper()
	if dsn == "" {
		t.Skip("postgres not available")
	}
	srv, err := database.New(context.Background(), dsn, 2)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestNew(t *testing.T) {
	srv := open(t)
	assert.NotNil(t, srv.DB())
}

func TestHealth(t *testing.T) {
	srv := open(t)

	stats := srv.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "It's healthy", stats["message"])
	assert.Contains(t, stats, "open_connections")
}

func TestHealth_AfterClose(t *testing.T) {
	if dsn == "" {
		t.Skip("postgres not available")
	}
	srv, err := database.New(context.Background(), dsn, 1)
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	stats := srv.Health()
	assert.Equal(t, "down", stats["status"])
}

func TestWithTx(t *testing.T) {
	srv := open(t)
	ctx := context.Background()
	email := "tx@example.com"

	boom := errors.New("boom")
	err := srv.WithTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (email, password) VALUES ($1, 'x')`, email)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, srv.DB().QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = $1`, email).Scan(&n))
	assert.Zero(t, n)

	err = srv.WithTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (email, password) VALUES ($1, 'x')`, email)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, srv.DB().QueryRowContext(ctx, `SELECT count(*) FROM users WHERE email = $1`, email).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestMigrator_Version(t *testing.T) {
	if dsn == "" {
		t.Skip("postgres not available")
	}
	mg, err := database.NewMigrator(dsn)
	require.NoError(t, err)
	defer mg.Close()

	version, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 1, version)

	// Up is idempotent.
	require.NoError(t, mg.Up())
}
