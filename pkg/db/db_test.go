package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"roomstatus/pkg/config"
)

func TestRuntimeConnString_PrefersDatabaseURL(t *testing.T) {
	cfg := config.Config{
		DatabaseURL: "postgres://pooler/db?pgbouncer=true",
		DB:          config.DBConfig{Host: "h", Port: "1", Name: "n", User: "u", Password: "p"},
	}
	assert.Equal(t, cfg.DatabaseURL, runtimeConnString(cfg))
	assert.Equal(t, cfg.DatabaseURL, migrationConnString(cfg))

	cfg.DirectURL = "postgres://direct/db"
	assert.Equal(t, cfg.DirectURL, migrationConnString(cfg))
}

func TestDSN_DefaultsSSLMode(t *testing.T) {
	got := dsn(config.DBConfig{Host: "localhost", Port: "5432", Name: "rs", User: "u", Password: "p"})
	assert.Equal(t, "postgres://u:p@localhost:5432/rs?sslmode=disable", got)
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "room_statuses_name_key"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "room_statuses_name_key"))
	assert.False(t, IsUniqueViolation(err, "other"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsForeignKeyViolation(err))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
}

func TestCommitError_KeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "40001"}
	err := commitError(cause)

	assert.ErrorIs(t, err, errCommit)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(errors.New("body failed"), errCommit))
}
