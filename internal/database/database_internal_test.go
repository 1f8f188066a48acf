package database

import (
	"errors"
	"kanban/internal/apperr"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/kanban?sslmode=disable":   "pgx5://u:p@localhost:5432/kanban?sslmode=disable",
		"postgresql://u:p@localhost:5432/kanban?sslmode=disable": "pgx5://u:p@localhost:5432/kanban?sslmode=disable",
		"pgx5://u:p@db/kanban":                                   "pgx5://u:p@db/kanban",
	}
	for in, want := range cases {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError("noop", nil))

	for _, code := range []string{pgUniqueViolation, pgSerializationFailed, pgDeadlockDetected, pgForeignKeyViolation} {
		err := MapError("error moving task", &pgconn.PgError{Code: code})
		assert.True(t, apperr.Is(err, apperr.CodeConflict), code)
		var pgErr *pgconn.PgError
		assert.True(t, errors.As(err, &pgErr), code)
	}

	plain := MapError("error getting board", errors.New("connection refused"))
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(plain))
	assert.Contains(t, plain.Error(), "error getting board")
}
