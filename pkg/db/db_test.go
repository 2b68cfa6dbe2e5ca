package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"outingpass/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert booking: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error is not a unique violation")
	}
	if !IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows")
	}
}

func TestConnStrings(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}}
	if got := runtimeConnString(cfg); got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Fatalf("unexpected dsn: %s", got)
	}
	cfg.DatabaseURL = "postgres://pooler/db?pgbouncer=true"
	cfg.DirectURL = "postgres://direct/db"
	if got := runtimeConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("expected DATABASE_URL, got %s", got)
	}
	if got := migrationConnString(cfg); got != cfg.DirectURL {
		t.Fatalf("expected DIRECT_URL, got %s", got)
	}
}
