// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"kanban/internal/database"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbName = "kanban"
	dbUser = "kanban"
	dbPwd  = "kanban"
)

// StartPostgres runs a disposable postgres container, applies the schema
// migrations and returns the DSN together with a teardown func.
func StartPostgres(ctx context.Context) (dsn string, teardown func(), err error) {
	defer func() {
		// testcontainers panics when no docker host can be found.
		if r := recover(); r != nil {
			err = fmt.Errorf("start postgres container: %v", r)
		}
	}()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}
	teardown = func() {
		_ = ctr.Terminate(context.Background())
	}

	dsn, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		teardown()
		return "", nil, fmt.Errorf("postgres connection string: %w", err)
	}
	if err := database.MigrateUp(dsn); err != nil {
		teardown()
		return "", nil, err
	}
	return dsn, teardown, nil
}
